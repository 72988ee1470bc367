package domain

import (
	"maps"
	"slices"

	"github.com/mmcdole/cadence/internal/seq"
)

// SearchResults groups the matches for one query
type SearchResults struct {
	Artists seq.Vector[Artist] `json:"artists"`
	Albums  seq.Vector[Album]  `json:"albums"`
	Tracks  seq.Vector[*Track] `json:"tracks"`

	// Highlights maps a result's id to the rune positions of its name that
	// matched the query
	Highlights map[string][]int `json:"highlights,omitempty"`
}

// Highlight returns the matched rune positions in the name of item id
func (r SearchResults) Highlight(id string) []int {
	return r.Highlights[id]
}

// IsEmpty reports whether nothing matched
func (r SearchResults) IsEmpty() bool {
	return r.Artists.IsEmpty() && r.Albums.IsEmpty() && r.Tracks.IsEmpty()
}

// Equal compares two result sets
func (r SearchResults) Equal(other SearchResults) bool {
	return r.Artists.Equal(other.Artists, Artist.Equal) &&
		r.Albums.Equal(other.Albums, Album.Equal) &&
		r.Tracks.Equal(other.Tracks, SameTrack) &&
		maps.EqualFunc(r.Highlights, other.Highlights, slices.Equal[[]int])
}
