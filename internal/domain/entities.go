package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/mmcdole/cadence/internal/seq"
)

// Payload values are immutable once constructed. Tracks and albums are
// shared between views by pointer; never modify a value reachable from the
// state tree, build a new one instead.

// TrackID identifies a track within the catalog
type TrackID string

// AudioDuration is the length of a track or a playback position
type AudioDuration time.Duration

// Duration returns the value as a time.Duration
func (d AudioDuration) Duration() time.Duration { return time.Duration(d) }

// String formats the duration as m:ss, or h:mm:ss past an hour
func (d AudioDuration) String() string {
	total := int(time.Duration(d).Seconds())
	h, m, s := total/3600, (total/60)%60, total%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// Image is a piece of artwork
type Image struct {
	URL    string `json:"url"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
}

// ArtistLink is a lightweight reference to an artist
type ArtistLink struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// AlbumLink is a lightweight reference to an album
type AlbumLink struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Track is a playable audio item
type Track struct {
	ID          TrackID                `json:"id"`
	Name        string                 `json:"name"`
	Album       AlbumLink              `json:"album"`
	Artists     seq.Vector[ArtistLink] `json:"artists"`
	Duration    AudioDuration          `json:"duration"`
	TrackNumber int                    `json:"track_number,omitempty"`
	DiscNumber  int                    `json:"disc_number,omitempty"`
	Path        string                 `json:"path"` // Local file backing the track
}

// ArtistName returns the artist names joined for display
func (t *Track) ArtistName() string {
	return joinArtists(t.Artists)
}

// Equal compares two tracks by value
func (t *Track) Equal(other *Track) bool {
	return t.ID == other.ID &&
		t.Name == other.Name &&
		t.Album == other.Album &&
		t.Duration == other.Duration &&
		t.TrackNumber == other.TrackNumber &&
		t.DiscNumber == other.DiscNumber &&
		t.Path == other.Path &&
		t.Artists.Equal(other.Artists, seq.Comparable[ArtistLink]())
}

// SameTrack compares two shared track handles. Handles to the same value are
// equal without inspecting contents.
func SameTrack(a, b *Track) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return a.Equal(b)
}

// AlbumType distinguishes release kinds
type AlbumType int

const (
	AlbumTypeAlbum AlbumType = iota
	AlbumTypeSingle
	AlbumTypeCompilation
)

// String returns a human-readable representation of the album type
func (a AlbumType) String() string {
	switch a {
	case AlbumTypeAlbum:
		return "Album"
	case AlbumTypeSingle:
		return "Single"
	case AlbumTypeCompilation:
		return "Compilation"
	default:
		return "Unknown"
	}
}

// Album is a release and its tracks
type Album struct {
	ID          string                 `json:"id"`
	Name        string                 `json:"name"`
	AlbumType   AlbumType              `json:"album_type"`
	Artists     seq.Vector[ArtistLink] `json:"artists"`
	Images      seq.Vector[Image]      `json:"images"`
	ReleaseYear int                    `json:"release_year,omitempty"`
	Genre       string                 `json:"genre,omitempty"`
	Tracks      seq.Vector[*Track]     `json:"tracks"`
}

// Link returns a reference to the album
func (a Album) Link() AlbumLink {
	return AlbumLink{ID: a.ID, Name: a.Name}
}

// ArtistName returns the artist names joined for display
func (a Album) ArtistName() string {
	return joinArtists(a.Artists)
}

// Duration sums the track durations
func (a Album) Duration() AudioDuration {
	var total AudioDuration
	a.Tracks.Each(func(_ int, t *Track) bool {
		total += t.Duration
		return true
	})
	return total
}

// Equal compares two albums by value, with identity shortcuts for tracks
func (a Album) Equal(other Album) bool {
	return a.ID == other.ID &&
		a.Name == other.Name &&
		a.AlbumType == other.AlbumType &&
		a.ReleaseYear == other.ReleaseYear &&
		a.Genre == other.Genre &&
		a.Artists.Equal(other.Artists, seq.Comparable[ArtistLink]()) &&
		a.Images.Equal(other.Images, seq.Comparable[Image]()) &&
		a.Tracks.Equal(other.Tracks, SameTrack)
}

// Artist is a performer
type Artist struct {
	ID     string            `json:"id"`
	Name   string            `json:"name"`
	Images seq.Vector[Image] `json:"images"`
}

// Link returns a reference to the artist
func (a Artist) Link() ArtistLink {
	return ArtistLink{ID: a.ID, Name: a.Name}
}

// Equal compares two artists by value
func (a Artist) Equal(other Artist) bool {
	return a.ID == other.ID &&
		a.Name == other.Name &&
		a.Images.Equal(other.Images, seq.Comparable[Image]())
}

func joinArtists(artists seq.Vector[ArtistLink]) string {
	names := make([]string, 0, artists.Len())
	artists.Each(func(_ int, a ArtistLink) bool {
		names = append(names, a.Name)
		return true
	})
	return strings.Join(names, ", ")
}
