package domain

import "github.com/mmcdole/cadence/internal/seq"

// Playlist is a user-curated track list
type Playlist struct {
	ID         string            `json:"id"`
	Name       string            `json:"name"`
	Images     seq.Vector[Image] `json:"images"`
	TrackCount int               `json:"track_count"`
}

// Equal compares two playlists by value
func (p Playlist) Equal(other Playlist) bool {
	return p.ID == other.ID &&
		p.Name == other.Name &&
		p.TrackCount == other.TrackCount &&
		p.Images.Equal(other.Images, seq.Comparable[Image]())
}

// PlaylistEntry is one line of a playlist file, before it is matched
// against the library
type PlaylistEntry struct {
	Path     string        // Absolute path of the referenced file
	Title    string        // Display title from the playlist, if any
	Duration AudioDuration // Length from the playlist, zero if unknown
}
