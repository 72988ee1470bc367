package seq

import (
	"hash/fnv"
	"sort"

	"github.com/benbjohnson/immutable"
)

// Set is a persistent set of string-like keys. Like Vector, every mutation
// returns a new Set sharing structure with the old one.
//
// The zero value is an empty set.
type Set[K ~string] struct {
	set immutable.Set[K]
	// rev changes on every mutation; two sets with the same rev are the same
	// lineage and hold the same keys.
	rev *int
}

type stringHasher[K ~string] struct{}

func (stringHasher[K]) Hash(key K) uint32 {
	h := fnv.New32a()
	h.Write([]byte(key))
	return h.Sum32()
}

func (stringHasher[K]) Equal(a, b K) bool { return a == b }

// NewSet returns a set containing keys.
func NewSet[K ~string](keys ...K) Set[K] {
	return Set[K]{
		set: immutable.NewSet[K](stringHasher[K]{}, keys...),
		rev: new(int),
	}
}

func (s Set[K]) init() Set[K] {
	if s.rev == nil {
		return NewSet[K]()
	}
	return s
}

// Add returns a set that also contains key.
func (s Set[K]) Add(key K) Set[K] {
	s = s.init()
	if s.set.Has(key) {
		return s
	}
	return Set[K]{set: s.set.Add(key), rev: new(int)}
}

// Delete returns a set without key.
func (s Set[K]) Delete(key K) Set[K] {
	s = s.init()
	if !s.set.Has(key) {
		return s
	}
	return Set[K]{set: s.set.Delete(key), rev: new(int)}
}

// Has reports whether key is in the set.
func (s Set[K]) Has(key K) bool {
	if s.rev == nil {
		return false
	}
	return s.set.Has(key)
}

// Len returns the number of keys.
func (s Set[K]) Len() int {
	if s.rev == nil {
		return 0
	}
	return s.set.Len()
}

// Items returns the keys in ascending order.
func (s Set[K]) Items() []K {
	if s.rev == nil {
		return nil
	}
	items := s.set.Items()
	sort.Slice(items, func(i, j int) bool { return items[i] < items[j] })
	return items
}

// Equal reports whether both sets hold the same keys.
func (s Set[K]) Equal(other Set[K]) bool {
	if s.rev == other.rev {
		return true
	}
	if s.Len() != other.Len() {
		return false
	}
	for _, key := range s.Items() {
		if !other.Has(key) {
			return false
		}
	}
	return true
}
