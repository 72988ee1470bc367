// Package promise provides an asynchronous result cell that tracks a single
// fetch through Empty, Pending, Resolved and Rejected.
//
// Each call to ToPending hands out a fresh Key. Whoever completes the request
// must pass that key back to Resolve or Reject; a completion carrying any
// other key is stale and dropped. This keeps "most recent request wins" at
// every call site without locking.
package promise

import (
	"fmt"
	"log/slog"
	"sync/atomic"
)

// Status identifies which state a Promise is in.
type Status int

const (
	Empty Status = iota
	Pending
	Resolved
	Rejected
)

// String returns a human-readable representation of the status
func (s Status) String() string {
	switch s {
	case Empty:
		return "Empty"
	case Pending:
		return "Pending"
	case Resolved:
		return "Resolved"
	case Rejected:
		return "Rejected"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Key tags a pending request. Keys are unique for the process lifetime.
type Key uint64

var lastKey atomic.Uint64

func nextKey() Key {
	return Key(lastKey.Add(1))
}

// Promise is a four-state cell. The zero value is Empty.
//
// Promise is a value type: copying it snapshots the state. Payloads are
// expected to be immutable or shared handles.
type Promise[T, E any] struct {
	status Status
	key    Key
	value  T
	err    E
}

// New returns an Empty promise.
func New[T, E any]() Promise[T, E] {
	return Promise[T, E]{}
}

// ToPending starts a new request from any state, discarding any previous
// result, and returns the key the completion must present.
func (p *Promise[T, E]) ToPending() Key {
	var (
		zeroT T
		zeroE E
	)
	p.status = Pending
	p.key = nextKey()
	p.value = zeroT
	p.err = zeroE
	return p.key
}

// Resolve moves a pending promise to Resolved. It returns false and leaves
// the promise unchanged if the promise is not pending or key is stale.
func (p *Promise[T, E]) Resolve(key Key, value T) bool {
	if !p.accepts(key, "resolve") {
		return false
	}
	p.status = Resolved
	p.value = value
	return true
}

// Reject moves a pending promise to Rejected. Same rules as Resolve.
func (p *Promise[T, E]) Reject(key Key, err E) bool {
	if !p.accepts(key, "reject") {
		return false
	}
	p.status = Rejected
	p.err = err
	return true
}

func (p *Promise[T, E]) accepts(key Key, op string) bool {
	switch {
	case p.status != Pending:
		slog.Warn("promise: completion on non-pending slot ignored",
			"op", op, "status", p.status, "key", uint64(key))
		return false
	case p.key != key:
		slog.Debug("promise: stale completion dropped",
			"op", op, "key", uint64(key), "current", uint64(p.key))
		return false
	}
	return true
}

// Update replaces the resolved value with fn(value). It is a no-op unless
// the promise is Resolved.
func (p *Promise[T, E]) Update(fn func(T) T) bool {
	if p.status != Resolved {
		return false
	}
	p.value = fn(p.value)
	return true
}

// Reset returns the promise to Empty.
func (p *Promise[T, E]) Reset() {
	*p = Promise[T, E]{}
}

// Status returns the current state.
func (p Promise[T, E]) Status() Status { return p.status }

func (p Promise[T, E]) IsEmpty() bool    { return p.status == Empty }
func (p Promise[T, E]) IsPending() bool  { return p.status == Pending }
func (p Promise[T, E]) IsResolved() bool { return p.status == Resolved }
func (p Promise[T, E]) IsRejected() bool { return p.status == Rejected }

// PendingKey returns the key of the outstanding request, if any.
func (p Promise[T, E]) PendingKey() (Key, bool) {
	if p.status != Pending {
		return 0, false
	}
	return p.key, true
}

// Resolved returns the value when the promise is Resolved.
func (p Promise[T, E]) Resolved() (T, bool) {
	if p.status != Resolved {
		var zero T
		return zero, false
	}
	return p.value, true
}

// Rejected returns the error when the promise is Rejected.
func (p Promise[T, E]) Rejected() (E, bool) {
	if p.status != Rejected {
		var zero E
		return zero, false
	}
	return p.err, true
}

// Equal reports whether both promises are in the same state with equal
// payloads. Pending promises are equal only when they wait on the same key.
func (p Promise[T, E]) Equal(other Promise[T, E], eqValue func(a, b T) bool, eqErr func(a, b E) bool) bool {
	if p.status != other.status {
		return false
	}
	switch p.status {
	case Pending:
		return p.key == other.key
	case Resolved:
		return eqValue(p.value, other.value)
	case Rejected:
		return eqErr(p.err, other.err)
	default:
		return true
	}
}

// String implements fmt.Stringer.
func (p Promise[T, E]) String() string {
	switch p.status {
	case Pending:
		return fmt.Sprintf("Pending(%d)", p.key)
	case Rejected:
		return fmt.Sprintf("Rejected(%v)", p.err)
	default:
		return p.status.String()
	}
}
