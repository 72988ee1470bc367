package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/cadence/internal/domain"
	"github.com/mmcdole/cadence/internal/promise"
)

// Message types for the TUI. Responses to a state slot request carry the
// promise key handed out when the slot went pending; Update passes it back
// so a late response for a superseded request is dropped by the slot.

// ErrMsg represents an error
type ErrMsg struct {
	Err     error
	Context string
}

// Error implements the error interface
func (e ErrMsg) Error() string {
	if e.Context != "" {
		return e.Context + ": " + e.Err.Error()
	}
	return e.Err.Error()
}

// TickMsg is sent periodically to refresh the playback position
type TickMsg struct{}

// ClearStatusMsg signals to clear the status message
type ClearStatusMsg struct{}

// ScanProgressMsg reports library scan progress. Scans stream these until one
// arrives with Done set; NextCmd reads the next one.
type ScanProgressMsg struct {
	Scanned int
	Done    bool
	Result  domain.ScanResult
	Err     error
	NextCmd tea.Cmd
}

// SearchResultsMsg delivers the results of a search request
type SearchResultsMsg struct {
	Key     promise.Key
	Query   string
	Results domain.SearchResults
	Err     error
}

// AlbumLoadedMsg delivers an album page
type AlbumLoadedMsg struct {
	Key   promise.Key
	Album domain.Album
	Err   error
}

// ArtistLoadedMsg delivers artist metadata
type ArtistLoadedMsg struct {
	Key    promise.Key
	Artist domain.Artist
	Err    error
}

// ArtistAlbumsLoadedMsg delivers an artist's albums
type ArtistAlbumsLoadedMsg struct {
	Key    promise.Key
	Albums []domain.Album
	Err    error
}

// ArtistTopTracksLoadedMsg delivers an artist's top tracks
type ArtistTopTracksLoadedMsg struct {
	Key    promise.Key
	Tracks []*domain.Track
	Err    error
}

// PlaylistLoadedMsg delivers playlist metadata
type PlaylistLoadedMsg struct {
	Key      promise.Key
	Playlist domain.Playlist
	Err      error
}

// PlaylistTracksLoadedMsg delivers the tracks of a playlist
type PlaylistTracksLoadedMsg struct {
	Key    promise.Key
	Tracks []*domain.Track
	Err    error
}

// SavedTracksLoadedMsg delivers the saved tracks
type SavedTracksLoadedMsg struct {
	Key    promise.Key
	Tracks []*domain.Track
	Err    error
}

// SavedAlbumsLoadedMsg delivers the saved albums
type SavedAlbumsLoadedMsg struct {
	Key    promise.Key
	Albums []domain.Album
	Err    error
}

// PlaylistsLoadedMsg delivers all playlists
type PlaylistsLoadedMsg struct {
	Key       promise.Key
	Playlists []domain.Playlist
	Err       error
}

// PlaybackStartedMsg signals that the player was launched
type PlaybackStartedMsg struct {
	Session domain.PlaybackSession
}

// PlaybackPausedMsg signals that the player of a session was stopped at
// Position
type PlaybackPausedMsg struct {
	SessionID uint64
	Position  domain.AudioDuration
}

// TrackEndedMsg signals that the player of a session exited by itself
type TrackEndedMsg struct {
	SessionID uint64
	Err       error
}

// TrackSavedMsg signals that a track was saved or unsaved
type TrackSavedMsg struct {
	Track *domain.Track
	Saved bool
}

// AlbumSavedMsg signals that an album was saved or unsaved
type AlbumSavedMsg struct {
	Album domain.Album
	Saved bool
}

// PlaylistCreatedMsg signals that the queue was written as a playlist
type PlaylistCreatedMsg struct {
	Playlist domain.Playlist
}
