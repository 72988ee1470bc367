package seq

import (
	"encoding/json"
	"testing"

	"github.com/go-test/deep"
)

func TestVectorAppendSharesStructure(t *testing.T) {
	base := NewVector(1, 2, 3)
	grown := base.Append(4)

	if base.Len() != 3 {
		t.Fatalf("base.Len() = %d, want 3", base.Len())
	}
	if grown.Len() != 4 || grown.At(3) != 4 {
		t.Fatalf("grown = %v, want [1 2 3 4]", grown.Items())
	}
	if diff := deep.Equal(base.Items(), []int{1, 2, 3}); diff != nil {
		t.Fatal(diff)
	}
}

func TestVectorEqual(t *testing.T) {
	eq := Comparable[string]()
	a := NewVector("x", "y")

	tests := []struct {
		name  string
		other Vector[string]
		want  bool
	}{
		{name: "same list", other: a, want: true},
		{name: "same content", other: NewVector("x", "y"), want: true},
		{name: "different length", other: NewVector("x"), want: false},
		{name: "different content", other: NewVector("x", "z"), want: false},
		{name: "empty", other: Vector[string]{}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := a.Equal(tt.other, eq); got != tt.want {
				t.Fatalf("Equal() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestVectorEqualSkipsElementsWhenShared(t *testing.T) {
	v := NewVector(1, 2, 3)
	calls := 0
	eq := func(a, b int) bool {
		calls++
		return a == b
	}

	if !v.Equal(v, eq) {
		t.Fatal("vector not equal to itself")
	}
	if calls != 0 {
		t.Fatalf("eq called %d times for shared vectors, want 0", calls)
	}
}

func TestVectorZeroValue(t *testing.T) {
	var v Vector[int]
	if !v.IsEmpty() {
		t.Fatal("zero vector should be empty")
	}
	if _, ok := v.Last(); ok {
		t.Fatal("Last() on empty vector returned ok")
	}
	if !v.Equal(NewVector[int](), Comparable[int]()) {
		t.Fatal("zero vector should equal NewVector()")
	}
	if got := v.Append(7).Items(); len(got) != 1 || got[0] != 7 {
		t.Fatalf("Append on zero vector = %v", got)
	}
	if got := NewVector(2, 3).Prepend(1).Items(); len(got) != 3 || got[0] != 1 {
		t.Fatalf("Prepend = %v", got)
	}
}

func TestVectorSliceAndFilter(t *testing.T) {
	v := NewVector(1, 2, 3, 4, 5)

	if diff := deep.Equal(v.Slice(1, 3).Items(), []int{2, 3}); diff != nil {
		t.Fatal(diff)
	}
	even := v.Filter(func(n int) bool { return n%2 == 0 })
	if diff := deep.Equal(even.Items(), []int{2, 4}); diff != nil {
		t.Fatal(diff)
	}
	if !v.Slice(2, 2).IsEmpty() {
		t.Fatal("empty slice should be empty")
	}
}

func TestVectorJSON(t *testing.T) {
	v := NewVector("a", "b")
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(data) != `["a","b"]` {
		t.Fatalf("Marshal = %s", data)
	}

	var decoded Vector[string]
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !decoded.Equal(v, Comparable[string]()) {
		t.Fatalf("decoded = %v, want %v", decoded.Items(), v.Items())
	}
}

type id string

func TestSet(t *testing.T) {
	var s Set[id]
	if s.Has("a") || s.Len() != 0 {
		t.Fatal("zero set should be empty")
	}

	s1 := s.Add("a").Add("b")
	s2 := s1.Delete("a")

	if !s1.Has("a") || !s1.Has("b") || s1.Len() != 2 {
		t.Fatalf("s1 = %v, want [a b]", s1.Items())
	}
	if s2.Has("a") || !s2.Has("b") {
		t.Fatalf("s2 = %v, want [b]", s2.Items())
	}
	if diff := deep.Equal(s1.Items(), []id{"a", "b"}); diff != nil {
		t.Fatal(diff)
	}
}

func TestSetEqual(t *testing.T) {
	a := NewSet[id]("x", "y")

	if !a.Equal(a) {
		t.Fatal("set not equal to itself")
	}
	if !a.Equal(NewSet[id]("y", "x")) {
		t.Fatal("sets with same keys should be equal regardless of order")
	}
	if a.Equal(NewSet[id]("x")) {
		t.Fatal("sets with different keys should differ")
	}
	if !NewSet[id]().Equal(Set[id]{}) {
		t.Fatal("empty set should equal zero set")
	}
	if same := a.Add("x"); !same.Equal(a) {
		t.Fatal("adding an existing key should not change the set")
	}
}
