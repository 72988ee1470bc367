package state

import (
	"math/rand"
	"testing"
	"time"

	"github.com/go-test/deep"
	"github.com/mmcdole/cadence/internal/domain"
	"github.com/mmcdole/cadence/internal/seq"
)

func track(id string) *domain.Track {
	return &domain.Track{
		ID:      domain.TrackID(id),
		Name:    "Track " + id,
		Artists: seq.NewVector(domain.ArtistLink{ID: "artist", Name: "Artist"}),
	}
}

func assertPlaybackInvariants(t *testing.T, s *State) {
	t.Helper()

	if s.TrackCtx.PlaybackItem != s.Playback.Item {
		t.Fatalf("TrackCtx.PlaybackItem = %p, Playback.Item = %p; want same handle",
			s.TrackCtx.PlaybackItem, s.Playback.Item)
	}
	if s.Playback.Item == nil && (s.Playback.IsPlaying || s.Playback.HasProgress) {
		t.Fatalf("stopped playback has is_playing=%v progress=%v",
			s.Playback.IsPlaying, s.Playback.HasProgress)
	}
}

func TestDefaultIsFullyPopulated(t *testing.T) {
	s := Default()

	if s.Route != domain.RouteHome {
		t.Errorf("Route = %v, want Home", s.Route)
	}
	if s.Playback.Status() != PlaybackStopped {
		t.Errorf("Playback.Status() = %v, want Stopped", s.Playback.Status())
	}
	slots := map[string]bool{
		"search.results":    s.Search.Results.IsEmpty(),
		"album.album":       s.Album.Album.IsEmpty(),
		"artist.artist":     s.Artist.Artist.IsEmpty(),
		"artist.albums":     s.Artist.Albums.IsEmpty(),
		"artist.top_tracks": s.Artist.TopTracks.IsEmpty(),
		"playlist.playlist": s.Playlist.Playlist.IsEmpty(),
		"playlist.tracks":   s.Playlist.Tracks.IsEmpty(),
		"library.albums":    s.Library.SavedAlbums.IsEmpty(),
		"library.tracks":    s.Library.SavedTracks.IsEmpty(),
		"library.playlists": s.Library.Playlists.IsEmpty(),
	}
	for name, empty := range slots {
		if !empty {
			t.Errorf("%s is not Empty", name)
		}
	}
	assertPlaybackInvariants(t, &s)
}

func TestPlaybackScenario(t *testing.T) {
	s := Default()
	a := track("a")

	// Scenario 1: play
	s.SetPlaybackPlaying(a)
	if !s.Playback.IsPlaying {
		t.Fatal("IsPlaying = false after SetPlaybackPlaying")
	}
	if s.Playback.Item != a || s.TrackCtx.PlaybackItem != a {
		t.Fatal("playing item is not the handle that was passed in")
	}
	if s.Playback.Status() != PlaybackPlaying {
		t.Fatalf("Status() = %v, want Playing", s.Playback.Status())
	}
	assertPlaybackInvariants(t, &s)

	s.SetPlaybackProgress(domain.AudioDuration(12 * time.Second))
	if p, ok := s.Playback.CurrentProgress(); !ok || p.String() != "0:12" {
		t.Fatalf("CurrentProgress() = %v, %v", p, ok)
	}

	// Scenario 2: pause keeps the item and progress
	s.SetPlaybackPaused()
	if s.Playback.IsPlaying {
		t.Fatal("IsPlaying = true after pause")
	}
	if s.Playback.Item != a {
		t.Fatal("pause dropped the item")
	}
	if !s.Playback.HasProgress {
		t.Fatal("pause dropped the progress")
	}
	if s.Playback.Status() != PlaybackPaused {
		t.Fatalf("Status() = %v, want Paused", s.Playback.Status())
	}
	assertPlaybackInvariants(t, &s)

	// Scenario 3: stop clears everything
	s.SetPlaybackStopped()
	if s.Playback.Item != nil || s.Playback.HasProgress || s.TrackCtx.PlaybackItem != nil {
		t.Fatalf("stop left state behind: %+v", s.Playback)
	}
	assertPlaybackInvariants(t, &s)
}

func TestPlayingClearsProgress(t *testing.T) {
	s := Default()
	s.SetPlaybackPlaying(track("a"))
	s.SetPlaybackProgress(domain.AudioDuration(time.Minute))

	b := track("b")
	s.SetPlaybackPlaying(b)
	if s.Playback.HasProgress {
		t.Fatal("switching tracks kept the old progress")
	}
	if !s.TrackCtx.IsPlaying(b) {
		t.Fatal("TrackCtx does not report the new track as playing")
	}
}

func TestRandomTransitionsKeepInvariants(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	tracks := []*domain.Track{track("a"), track("b"), track("c")}
	s := Default()

	for i := 0; i < 500; i++ {
		switch rng.Intn(4) {
		case 0:
			s.SetPlaybackPlaying(tracks[rng.Intn(len(tracks))])
		case 1:
			s.SetPlaybackProgress(domain.AudioDuration(time.Duration(rng.Intn(300)) * time.Second))
		case 2:
			s.SetPlaybackPaused()
		case 3:
			s.SetPlaybackStopped()
		}
		assertPlaybackInvariants(t, &s)
	}
}

func TestSearchScenario(t *testing.T) {
	s := Default()
	if !s.Search.Results.IsEmpty() {
		t.Fatal("search results should start Empty")
	}

	key := s.Search.Request("miles")
	if s.Search.Input != "miles" || !s.Search.Results.IsPending() {
		t.Fatalf("after Request: input=%q status=%v", s.Search.Input, s.Search.Results.Status())
	}

	results := domain.SearchResults{Tracks: seq.NewVector(track("so-what"))}
	if !s.Search.Results.Resolve(key, results) {
		t.Fatal("Resolve() = false")
	}
	got, ok := s.Search.Results.Resolved()
	if !ok {
		t.Fatal("Resolved() not ok")
	}
	if !got.Tracks.Same(results.Tracks) {
		t.Fatal("resolved results are not the supplied value")
	}
}

func TestStaleAlbumResponseIgnored(t *testing.T) {
	s := Default()
	first := s.Album.Request("album-1")
	second := s.Album.Request("album-2")

	if s.Album.Album.Resolve(first, domain.Album{ID: "album-1"}) {
		t.Fatal("stale album resolved")
	}
	if key, ok := s.Album.Album.PendingKey(); !ok || key != second {
		t.Fatal("album slot is no longer pending on the newest request")
	}
	if s.Album.ID != "album-2" {
		t.Fatalf("ID = %q, want album-2", s.Album.ID)
	}
}

func TestArtistAndPlaylistRequests(t *testing.T) {
	s := Default()

	ak := s.Artist.Request("artist-1")
	if !s.Artist.Artist.IsPending() || !s.Artist.Albums.IsPending() || !s.Artist.TopTracks.IsPending() {
		t.Fatal("artist request did not mark all slots pending")
	}
	s.Artist.Artist.Resolve(ak.Artist, domain.Artist{ID: "artist-1"})
	s.Artist.TopTracks.Reject(ak.TopTracks, "network down")
	if msg, ok := s.Artist.TopTracks.Rejected(); !ok || msg != "network down" {
		t.Fatalf("TopTracks.Rejected() = %q, %v", msg, ok)
	}
	if !s.Artist.Albums.IsPending() {
		t.Fatal("albums slot should still be pending")
	}

	pk := s.Playlist.Request("pl")
	if pk.Playlist == pk.Tracks {
		t.Fatal("playlist slots share a key")
	}
}

func TestSavedTracksSync(t *testing.T) {
	s := Default()
	a, b := track("a"), track("b")

	keys := s.Library.Request()
	if !s.ResolveSavedTracks(keys.SavedTracks, seq.NewVector(a)) {
		t.Fatal("ResolveSavedTracks() = false")
	}
	if !s.TrackCtx.IsSaved(a) || s.TrackCtx.IsSaved(b) {
		t.Fatal("TrackCtx.SavedTracks not in step with library")
	}

	s.SaveTrack(b)
	list, _ := s.Library.SavedTracks.Resolved()
	if list.Len() != 2 || list.At(0) != b || !s.TrackCtx.IsSaved(b) {
		t.Fatalf("after SaveTrack: library has %d tracks, saved(b)=%v", list.Len(), s.TrackCtx.IsSaved(b))
	}

	s.UnsaveTrack(a.ID)
	list, _ = s.Library.SavedTracks.Resolved()
	if list.Len() != 1 || list.At(0) != b || s.TrackCtx.IsSaved(a) {
		t.Fatal("UnsaveTrack did not remove the track from both places")
	}

	if s.ResolveSavedTracks(keys.SavedTracks, seq.NewVector(a)) {
		t.Fatal("resolving an already resolved slot succeeded")
	}
}

func TestNavigation(t *testing.T) {
	s := Default()
	album := domain.Navigation{Route: domain.RouteAlbumDetail, Target: "x", Title: "X"}
	artist := domain.Navigation{Route: domain.RouteArtistDetail, Target: "y", Title: "Y"}

	s.Navigate(album)
	s.Navigate(album) // duplicate is ignored
	s.Navigate(artist)

	if diff := deep.Equal(s.History.Items(), []domain.Navigation{album, artist}); diff != nil {
		t.Fatal(diff)
	}
	if s.Route != domain.RouteArtistDetail {
		t.Fatalf("Route = %v, want Artist", s.Route)
	}

	nav, ok := s.NavigateBack()
	if !ok || nav != album || s.Route != domain.RouteAlbumDetail {
		t.Fatalf("NavigateBack() = %+v, %v; route %v", nav, ok, s.Route)
	}
	nav, ok = s.NavigateBack()
	if !ok || nav != domain.NavigateHome || s.Route != domain.RouteHome {
		t.Fatalf("NavigateBack() to root = %+v, %v", nav, ok)
	}
	if _, ok := s.NavigateBack(); ok {
		t.Fatal("NavigateBack() on empty history = true")
	}
}

func TestQueue(t *testing.T) {
	s := Default()
	a, b := track("a"), track("b")
	s.SetQueue(seq.NewVector(a, b), 0)

	if cur, ok := s.Queue.Current(); !ok || cur != a {
		t.Fatal("Current() is not the first track")
	}
	if next, ok := s.AdvanceQueue(true); !ok || next != b {
		t.Fatal("AdvanceQueue(true) did not move to b")
	}
	if _, ok := s.AdvanceQueue(true); ok {
		t.Fatal("AdvanceQueue past the end succeeded")
	}
	if prev, ok := s.AdvanceQueue(false); !ok || prev != a {
		t.Fatal("AdvanceQueue(false) did not move back to a")
	}
}

func TestEqualIndependentConstruction(t *testing.T) {
	shared := track("a")
	tracks := seq.NewVector(shared)

	build := func(order int) State {
		s := Default()
		steps := []func(){
			func() { s.SetPlaybackPlaying(shared) },
			func() { s.SetQueue(tracks, 0) },
			func() { s.Navigate(domain.Navigation{Route: domain.RouteLibrary, Title: "Library"}) },
		}
		if order == 1 {
			steps[0], steps[2] = steps[2], steps[0]
		}
		for _, step := range steps {
			step()
		}
		return s
	}

	a, b := build(0), build(1)
	if !a.Equal(b) {
		t.Fatal("states with identical content built in different order are not equal")
	}

	b.SetPlaybackPaused()
	if a.Equal(b) {
		t.Fatal("states differing in playback compare equal")
	}

	// A pending slot is identified by its request key. Two trees waiting on
	// the same query issued separately are waiting on different requests.
	c, d := build(0), build(0)
	c.Search.Request("blue")
	d.Search.Request("blue")
	if c.Equal(d) {
		t.Error("separately issued requests compare equal")
	}
	e := c
	if !c.Equal(e) {
		t.Error("copy of a tree with a pending request is not equal")
	}
}

func TestSavedTracksEditedWhileLoading(t *testing.T) {
	s := Default()
	a, b, c := track("a"), track("b"), track("c")

	// The fetch reads [a c] before b is saved and a is unsaved
	keys := s.Library.Request()
	s.SaveTrack(b)
	s.UnsaveTrack(a.ID)
	if !s.ResolveSavedTracks(keys.SavedTracks, seq.NewVector(a, c)) {
		t.Fatal("ResolveSavedTracks() = false")
	}

	list, _ := s.Library.SavedTracks.Resolved()
	if diff := deep.Equal(list.Items(), []*domain.Track{b, c}); diff != nil {
		t.Fatal(diff)
	}
	if !s.TrackCtx.IsSaved(b) || !s.TrackCtx.IsSaved(c) || s.TrackCtx.IsSaved(a) {
		t.Error("TrackCtx.SavedTracks lost an edit made during the fetch")
	}

	// Edits are replayed once; a later fetch is taken as is
	keys = s.Library.Request()
	if !s.ResolveSavedTracks(keys.SavedTracks, seq.NewVector(a)) {
		t.Fatal("second ResolveSavedTracks() = false")
	}
	list, _ = s.Library.SavedTracks.Resolved()
	if list.Len() != 1 || list.At(0) != a {
		t.Errorf("second fetch resolved to %d tracks", list.Len())
	}
}

func TestSavedTracksStaleResolveKeepsEdits(t *testing.T) {
	s := Default()
	b := track("b")

	stale := s.Library.Request()
	current := s.Library.Request()
	s.SaveTrack(b)

	if s.ResolveSavedTracks(stale.SavedTracks, seq.NewVector[*domain.Track]()) {
		t.Fatal("stale ResolveSavedTracks() = true")
	}
	if !s.ResolveSavedTracks(current.SavedTracks, seq.NewVector[*domain.Track]()) {
		t.Fatal("ResolveSavedTracks() = false")
	}
	list, _ := s.Library.SavedTracks.Resolved()
	if list.Len() != 1 || list.At(0) != b {
		t.Errorf("saved tracks = %d, want the track saved during the fetch", list.Len())
	}
}

func TestEqualDetectsSlotChanges(t *testing.T) {
	a := Default()
	b := a

	if !a.Equal(b) {
		t.Fatal("copy is not equal to original")
	}

	key := b.Search.Request("q")
	if a.Equal(b) {
		t.Fatal("pending search not detected")
	}

	snapshot := b
	b.Search.Results.Resolve(key, domain.SearchResults{})
	if snapshot.Equal(b) {
		t.Fatal("resolution not detected")
	}
	if !snapshot.Search.Results.IsPending() {
		t.Fatal("snapshot was mutated through the copy")
	}
}
