package seq

import (
	"encoding/json"

	"github.com/benbjohnson/immutable"
)

// Vector is a persistent ordered sequence. Mutating methods return a new
// Vector that shares structure with the receiver, so snapshots of a state
// tree can hold the same Vector without copying it.
//
// The zero value is an empty vector.
type Vector[T any] struct {
	list *immutable.List[T]
}

// NewVector returns a vector holding items in order.
func NewVector[T any](items ...T) Vector[T] {
	if len(items) == 0 {
		return Vector[T]{}
	}
	return Vector[T]{list: immutable.NewList(items...)}
}

// Len returns the number of elements.
func (v Vector[T]) Len() int {
	if v.list == nil {
		return 0
	}
	return v.list.Len()
}

// IsEmpty reports whether the vector has no elements.
func (v Vector[T]) IsEmpty() bool { return v.Len() == 0 }

// At returns the element at index i. It panics if i is out of range.
func (v Vector[T]) At(i int) T {
	if v.list == nil {
		panic("seq: index out of range on empty vector")
	}
	return v.list.Get(i)
}

// Last returns the final element, if any.
func (v Vector[T]) Last() (T, bool) {
	var zero T
	if v.Len() == 0 {
		return zero, false
	}
	return v.list.Get(v.list.Len() - 1), true
}

// Append returns a vector with item added at the end.
func (v Vector[T]) Append(item T) Vector[T] {
	if v.list == nil {
		return Vector[T]{list: immutable.NewList(item)}
	}
	return Vector[T]{list: v.list.Append(item)}
}

// Prepend returns a vector with item added at the front.
func (v Vector[T]) Prepend(item T) Vector[T] {
	if v.list == nil {
		return Vector[T]{list: immutable.NewList(item)}
	}
	return Vector[T]{list: v.list.Prepend(item)}
}

// Set returns a vector with the element at index i replaced.
func (v Vector[T]) Set(i int, item T) Vector[T] {
	if v.list == nil {
		panic("seq: index out of range on empty vector")
	}
	return Vector[T]{list: v.list.Set(i, item)}
}

// Slice returns the elements in [start, end).
func (v Vector[T]) Slice(start, end int) Vector[T] {
	if start == end {
		return Vector[T]{}
	}
	return Vector[T]{list: v.list.Slice(start, end)}
}

// Filter returns a vector of the elements for which keep returns true.
func (v Vector[T]) Filter(keep func(T) bool) Vector[T] {
	var out []T
	v.Each(func(_ int, item T) bool {
		if keep(item) {
			out = append(out, item)
		}
		return true
	})
	return NewVector(out...)
}

// Each calls fn for every element in order until fn returns false.
func (v Vector[T]) Each(fn func(i int, item T) bool) {
	if v.list == nil {
		return
	}
	itr := v.list.Iterator()
	for !itr.Done() {
		i, item := itr.Next()
		if !fn(i, item) {
			return
		}
	}
}

// Items copies the elements into a new slice.
func (v Vector[T]) Items() []T {
	items := make([]T, 0, v.Len())
	v.Each(func(_ int, item T) bool {
		items = append(items, item)
		return true
	})
	return items
}

// Same reports whether both vectors share the same underlying list.
func (v Vector[T]) Same(other Vector[T]) bool {
	return v.list == other.list
}

// Equal compares two vectors element-wise with eq. Vectors sharing the same
// underlying list compare equal without visiting elements.
func (v Vector[T]) Equal(other Vector[T], eq func(a, b T) bool) bool {
	if v.Same(other) {
		return true
	}
	if v.Len() != other.Len() {
		return false
	}
	equal := true
	v.Each(func(i int, item T) bool {
		equal = eq(item, other.list.Get(i))
		return equal
	})
	return equal
}

// MarshalJSON encodes the vector as a JSON array.
func (v Vector[T]) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Items())
}

// UnmarshalJSON decodes a JSON array into a fresh vector.
func (v *Vector[T]) UnmarshalJSON(data []byte) error {
	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	*v = NewVector(items...)
	return nil
}

// Comparable returns an equality func for comparable element types.
func Comparable[T comparable]() func(a, b T) bool {
	return func(a, b T) bool { return a == b }
}
