// Package state is the application state tree.
//
// A State is a value. Copying it is cheap because every collection inside is
// persistent and every payload is a shared, immutable handle, so the render
// loop can keep the previous copy and compare it with Equal to decide whether
// anything needs to be redrawn.
//
// All mutations happen on one goroutine (the bubbletea Update loop). Nothing
// here blocks or locks.
package state

import (
	"github.com/mmcdole/cadence/internal/config"
	"github.com/mmcdole/cadence/internal/domain"
	"github.com/mmcdole/cadence/internal/promise"
	"github.com/mmcdole/cadence/internal/seq"
)

// State is the root of the tree. Every sub-state is always present; "not
// loaded yet" is an Empty promise, never a missing record.
type State struct {
	Route    domain.Route
	History  seq.Vector[domain.Navigation]
	Config   config.Config
	Playback Playback
	Queue    PlaybackCtx
	Search   Search
	Album    AlbumDetail
	Artist   ArtistDetail
	Playlist PlaylistDetail
	Library  Library
	TrackCtx TrackCtx

	// Saves and unsaves applied while Library.SavedTracks was pending. The
	// list being fetched may predate them, so they are replayed onto it.
	// Not part of Equal: nothing on screen depends on it.
	savedEdits seq.Vector[savedEdit]
}

type savedEdit struct {
	track *domain.Track
	saved bool
}

// New returns a fully populated tree with every slot Empty
func New(cfg config.Config) State {
	return State{
		Route:    domain.RouteHome,
		History:  seq.NewVector[domain.Navigation](),
		Config:   cfg,
		TrackCtx: TrackCtx{SavedTracks: seq.NewSet[domain.TrackID]()},
	}
}

// Default returns New with the default configuration
func Default() State {
	return New(*config.DefaultConfig())
}

// === Playback transitions ===
//
// These are the only mutators of Playback and TrackCtx.PlaybackItem. Each one
// updates both in the same call.

// SetPlaybackPlaying starts or switches to track
func (s *State) SetPlaybackPlaying(track *domain.Track) {
	s.Playback.IsPlaying = true
	s.Playback.Item = track
	s.Playback.Progress = 0
	s.Playback.HasProgress = false
	s.TrackCtx.PlaybackItem = track
}

// SetPlaybackProgress records the current position. Progress reported while
// stopped is dropped so a stopped player never carries a position.
func (s *State) SetPlaybackProgress(progress domain.AudioDuration) {
	if s.Playback.Item == nil {
		return
	}
	s.Playback.Progress = progress
	s.Playback.HasProgress = true
}

// SetPlaybackPaused pauses; the item and progress are kept
func (s *State) SetPlaybackPaused() {
	s.Playback.IsPlaying = false
}

// SetPlaybackStopped clears the item and progress
func (s *State) SetPlaybackStopped() {
	s.Playback.IsPlaying = false
	s.Playback.Item = nil
	s.Playback.Progress = 0
	s.Playback.HasProgress = false
	s.TrackCtx.PlaybackItem = nil
}

// SetQueue replaces the play queue. It does not start playback.
func (s *State) SetQueue(tracks TrackList, position int) {
	s.Queue = PlaybackCtx{Tracks: tracks, Position: position}
}

// AdvanceQueue moves the queue by one track forward (or backward) and returns
// the new current track.
func (s *State) AdvanceQueue(forward bool) (*domain.Track, bool) {
	var (
		next PlaybackCtx
		ok   bool
	)
	if forward {
		next, ok = s.Queue.Next()
	} else {
		next, ok = s.Queue.Previous()
	}
	if !ok {
		return nil, false
	}
	s.Queue = next
	return next.Current()
}

// === Saved tracks ===
//
// Library.SavedTracks is the source of truth; TrackCtx.SavedTracks mirrors
// its ids and is refreshed by the same calls.

// ResolveSavedTracks completes a saved-tracks request. Tracks saved or
// unsaved while the request was in flight keep their new state.
func (s *State) ResolveSavedTracks(key promise.Key, tracks TrackList) bool {
	if k, ok := s.Library.SavedTracks.PendingKey(); !ok || k != key {
		// Let the slot log the stale completion
		return s.Library.SavedTracks.Resolve(key, tracks)
	}
	s.savedEdits.Each(func(_ int, e savedEdit) bool {
		tracks = tracks.Filter(func(t *domain.Track) bool { return t.ID != e.track.ID })
		if e.saved {
			tracks = tracks.Prepend(e.track)
		}
		return true
	})
	s.savedEdits = seq.Vector[savedEdit]{}
	if !s.Library.SavedTracks.Resolve(key, tracks) {
		return false
	}
	ids := seq.NewSet[domain.TrackID]()
	tracks.Each(func(_ int, t *domain.Track) bool {
		ids = ids.Add(t.ID)
		return true
	})
	s.TrackCtx.SavedTracks = ids
	return true
}

// SaveTrack marks track as saved. It goes to the front of the saved list,
// matching the newest-first order the library loads them in.
func (s *State) SaveTrack(track *domain.Track) {
	if s.TrackCtx.SavedTracks.Has(track.ID) {
		return
	}
	s.TrackCtx.SavedTracks = s.TrackCtx.SavedTracks.Add(track.ID)
	if s.Library.SavedTracks.IsPending() {
		s.savedEdits = s.savedEdits.Append(savedEdit{track: track, saved: true})
	}
	s.Library.SavedTracks.Update(func(list TrackList) TrackList {
		return list.Prepend(track)
	})
}

// UnsaveTrack removes id from the saved tracks
func (s *State) UnsaveTrack(id domain.TrackID) {
	s.TrackCtx.SavedTracks = s.TrackCtx.SavedTracks.Delete(id)
	if s.Library.SavedTracks.IsPending() {
		s.savedEdits = s.savedEdits.Append(savedEdit{track: &domain.Track{ID: id}})
	}
	s.Library.SavedTracks.Update(func(list TrackList) TrackList {
		return list.Filter(func(t *domain.Track) bool { return t.ID != id })
	})
}

// === Navigation ===

// CurrentNavigation returns the active history entry
func (s *State) CurrentNavigation() domain.Navigation {
	if nav, ok := s.History.Last(); ok {
		return nav
	}
	return domain.NavigateHome
}

// Navigate pushes nav onto the history and makes it current
func (s *State) Navigate(nav domain.Navigation) {
	if cur, ok := s.History.Last(); ok && cur == nav {
		return
	}
	s.History = s.History.Append(nav)
	s.Route = nav.Route
}

// NavigateBack drops the current entry and returns the one now current.
// It returns false when there is nothing to go back from.
func (s *State) NavigateBack() (domain.Navigation, bool) {
	n := s.History.Len()
	if n == 0 {
		return domain.NavigateHome, false
	}
	s.History = s.History.Slice(0, n-1)
	nav := s.CurrentNavigation()
	s.Route = nav.Route
	return nav, true
}

// Equal reports whether two snapshots hold the same state. Shared handles
// and shared collections short-circuit without walking their contents.
func (s State) Equal(other State) bool {
	return s.Route == other.Route &&
		s.History.Equal(other.History, seq.Comparable[domain.Navigation]()) &&
		s.Config.Equal(other.Config) &&
		s.Playback.Equal(other.Playback) &&
		s.Queue.Equal(other.Queue) &&
		s.Search.Equal(other.Search) &&
		s.Album.Equal(other.Album) &&
		s.Artist.Equal(other.Artist) &&
		s.Playlist.Equal(other.Playlist) &&
		s.Library.Equal(other.Library) &&
		s.TrackCtx.Equal(other.TrackCtx)
}
