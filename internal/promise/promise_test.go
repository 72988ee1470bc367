package promise

import (
	"testing"
)

func eqString(a, b string) bool { return a == b }

func TestNewIsEmpty(t *testing.T) {
	p := New[int, string]()
	if !p.IsEmpty() || p.Status() != Empty {
		t.Fatalf("New() status = %v, want Empty", p.Status())
	}
	if _, ok := p.Resolved(); ok {
		t.Fatal("Resolved() ok on empty promise")
	}
	if _, ok := p.Rejected(); ok {
		t.Fatal("Rejected() ok on empty promise")
	}
}

func TestCompletionOnNonPendingIsNoop(t *testing.T) {
	tests := []struct {
		name  string
		setup func() (Promise[int, string], Key)
	}{
		{
			name: "empty",
			setup: func() (Promise[int, string], Key) {
				return New[int, string](), 1
			},
		},
		{
			name: "resolved",
			setup: func() (Promise[int, string], Key) {
				var p Promise[int, string]
				k := p.ToPending()
				p.Resolve(k, 10)
				return p, k
			},
		},
		{
			name: "rejected",
			setup: func() (Promise[int, string], Key) {
				var p Promise[int, string]
				k := p.ToPending()
				p.Reject(k, "boom")
				return p, k
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, key := tt.setup()
			before := p

			if p.Resolve(key, 99) {
				t.Fatal("Resolve() = true, want false")
			}
			if p.Reject(key, "late") {
				t.Fatal("Reject() = true, want false")
			}
			if !p.Equal(before, func(a, b int) bool { return a == b }, eqString) {
				t.Fatalf("state changed: got %v, want %v", p, before)
			}
		})
	}
}

func TestPendingThenResolve(t *testing.T) {
	var p Promise[string, string]
	key := p.ToPending()
	if !p.IsPending() {
		t.Fatalf("status = %v, want Pending", p.Status())
	}
	if got, ok := p.PendingKey(); !ok || got != key {
		t.Fatalf("PendingKey() = %d, %v; want %d, true", got, ok, key)
	}

	if !p.Resolve(key, "done") {
		t.Fatal("Resolve() = false, want true")
	}
	v, ok := p.Resolved()
	if !ok || v != "done" {
		t.Fatalf("Resolved() = %q, %v; want done, true", v, ok)
	}
}

func TestPendingThenReject(t *testing.T) {
	var p Promise[int, string]
	key := p.ToPending()
	if !p.Reject(key, "not found") {
		t.Fatal("Reject() = false, want true")
	}
	e, ok := p.Rejected()
	if !ok || e != "not found" {
		t.Fatalf("Rejected() = %q, %v", e, ok)
	}
	if p.IsResolved() {
		t.Fatal("rejected promise reports resolved")
	}
}

func TestStaleResolutionDropped(t *testing.T) {
	var p Promise[string, string]
	first := p.ToPending()
	second := p.ToPending()

	if first == second {
		t.Fatal("ToPending() returned the same key twice")
	}
	if p.Resolve(first, "old") {
		t.Fatal("stale Resolve() = true, want false")
	}
	if got, ok := p.PendingKey(); !ok || got != second {
		t.Fatalf("after stale resolve: status %v key %d, want Pending(%d)", p.Status(), got, second)
	}
	if p.Reject(first, "old error") {
		t.Fatal("stale Reject() = true, want false")
	}
	if !p.Resolve(second, "new") {
		t.Fatal("current Resolve() = false, want true")
	}
	if v, _ := p.Resolved(); v != "new" {
		t.Fatalf("Resolved() = %q, want new", v)
	}
}

func TestToPendingDiscardsResult(t *testing.T) {
	var p Promise[int, string]
	k := p.ToPending()
	p.Resolve(k, 42)

	p.ToPending()
	if _, ok := p.Resolved(); ok {
		t.Fatal("previous value survived ToPending")
	}
}

func TestUpdateAndReset(t *testing.T) {
	var p Promise[int, string]
	if p.Update(func(n int) int { return n + 1 }) {
		t.Fatal("Update() on empty promise = true")
	}

	k := p.ToPending()
	p.Resolve(k, 1)
	if !p.Update(func(n int) int { return n + 1 }) {
		t.Fatal("Update() on resolved promise = false")
	}
	if v, _ := p.Resolved(); v != 2 {
		t.Fatalf("Resolved() = %d, want 2", v)
	}

	p.Reset()
	if !p.IsEmpty() {
		t.Fatalf("after Reset status = %v, want Empty", p.Status())
	}
}

func TestEqual(t *testing.T) {
	eqInt := func(a, b int) bool { return a == b }

	var pending Promise[int, string]
	pending.ToPending()
	var otherPending Promise[int, string]
	otherPending.ToPending()

	var resolved Promise[int, string]
	resolved.Resolve(resolved.ToPending(), 5)
	var sameValue Promise[int, string]
	sameValue.Resolve(sameValue.ToPending(), 5)

	var rejected Promise[int, string]
	rejected.Reject(rejected.ToPending(), "x")

	tests := []struct {
		name string
		a, b Promise[int, string]
		want bool
	}{
		{"both empty", New[int, string](), New[int, string](), true},
		{"empty vs pending", New[int, string](), pending, false},
		{"same pending key", pending, pending, true},
		{"different pending keys", pending, otherPending, false},
		{"resolved same value", resolved, sameValue, true},
		{"resolved vs rejected", resolved, rejected, false},
		{"rejected self", rejected, rejected, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Equal(tt.b, eqInt, eqString); got != tt.want {
				t.Fatalf("Equal() = %v, want %v", got, tt.want)
			}
		})
	}
}
