package domain

import "fmt"

// ListItem is implemented by everything a list row can show: tracks, albums,
// artists and playlists. It gives the views a common API for display and
// drill-down across content types.
type ListItem interface {
	// GetID returns the unique identifier for this item
	GetID() string

	// GetTitle returns the display title
	GetTitle() string

	// GetDescription returns secondary info for display (artist, year, track count)
	GetDescription() string

	// GetItemType returns the type identifier: "track", "album", "artist", "playlist"
	GetItemType() string

	// CanDrillDown returns true if selecting the item opens a detail page
	CanDrillDown() bool
}

func (t *Track) GetID() string          { return string(t.ID) }
func (t *Track) GetTitle() string       { return t.Name }
func (t *Track) GetDescription() string { return t.ArtistName() }
func (t *Track) GetItemType() string    { return "track" }
func (t *Track) CanDrillDown() bool     { return false }

func (a Album) GetID() string    { return a.ID }
func (a Album) GetTitle() string { return a.Name }
func (a Album) GetDescription() string {
	if a.ReleaseYear > 0 {
		return fmt.Sprintf("%s · %d", a.ArtistName(), a.ReleaseYear)
	}
	return a.ArtistName()
}
func (a Album) GetItemType() string { return "album" }
func (a Album) CanDrillDown() bool  { return true }

func (a Artist) GetID() string          { return a.ID }
func (a Artist) GetTitle() string       { return a.Name }
func (a Artist) GetDescription() string { return "Artist" }
func (a Artist) GetItemType() string    { return "artist" }
func (a Artist) CanDrillDown() bool     { return true }

func (p Playlist) GetID() string    { return p.ID }
func (p Playlist) GetTitle() string { return p.Name }
func (p Playlist) GetDescription() string {
	if p.TrackCount == 1 {
		return "1 track"
	}
	return fmt.Sprintf("%d tracks", p.TrackCount)
}
func (p Playlist) GetItemType() string { return "playlist" }
func (p Playlist) CanDrillDown() bool  { return true }
