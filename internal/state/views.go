package state

import (
	"github.com/mmcdole/cadence/internal/domain"
	"github.com/mmcdole/cadence/internal/promise"
	"github.com/mmcdole/cadence/internal/seq"
)

// Views hold the slots for one request context each. They never start a
// fetch themselves: the caller changes the key through Request, gets back the
// promise keys, and completes the slots with those keys when the fetch
// returns. A completion for an older key is dropped by the slot.

type (
	TrackList    = seq.Vector[*domain.Track]
	AlbumList    = seq.Vector[domain.Album]
	PlaylistList = seq.Vector[domain.Playlist]
)

func eqString(a, b string) bool { return a == b }

func eqTrackList(a, b TrackList) bool { return a.Equal(b, domain.SameTrack) }

func eqAlbumList(a, b AlbumList) bool { return a.Equal(b, domain.Album.Equal) }

func eqPlaylistList(a, b PlaylistList) bool { return a.Equal(b, domain.Playlist.Equal) }

// Search is the search view
type Search struct {
	Input   string
	Results promise.Promise[domain.SearchResults, string]
}

// Request records the query and marks the results pending
func (s *Search) Request(input string) promise.Key {
	s.Input = input
	return s.Results.ToPending()
}

// Equal compares two search views
func (s Search) Equal(other Search) bool {
	return s.Input == other.Input &&
		s.Results.Equal(other.Results, domain.SearchResults.Equal, eqString)
}

// Library is the user's saved collection
type Library struct {
	SavedAlbums promise.Promise[AlbumList, string]
	SavedTracks promise.Promise[TrackList, string]
	Playlists   promise.Promise[PlaylistList, string]
}

// LibraryKeys are the pending keys of a full library refresh
type LibraryKeys struct {
	SavedAlbums promise.Key
	SavedTracks promise.Key
	Playlists   promise.Key
}

// Request marks every library slot pending
func (l *Library) Request() LibraryKeys {
	return LibraryKeys{
		SavedAlbums: l.SavedAlbums.ToPending(),
		SavedTracks: l.SavedTracks.ToPending(),
		Playlists:   l.Playlists.ToPending(),
	}
}

// Equal compares two library views
func (l Library) Equal(other Library) bool {
	return l.SavedAlbums.Equal(other.SavedAlbums, eqAlbumList, eqString) &&
		l.SavedTracks.Equal(other.SavedTracks, eqTrackList, eqString) &&
		l.Playlists.Equal(other.Playlists, eqPlaylistList, eqString)
}

// AlbumDetail is the album page
type AlbumDetail struct {
	ID    string
	Album promise.Promise[domain.Album, string]
}

// Request switches the page to album id and marks it pending
func (a *AlbumDetail) Request(id string) promise.Key {
	a.ID = id
	return a.Album.ToPending()
}

// Equal compares two album pages
func (a AlbumDetail) Equal(other AlbumDetail) bool {
	return a.ID == other.ID &&
		a.Album.Equal(other.Album, domain.Album.Equal, eqString)
}

// ArtistDetail is the artist page
type ArtistDetail struct {
	ID        string
	Artist    promise.Promise[domain.Artist, string]
	Albums    promise.Promise[AlbumList, string]
	TopTracks promise.Promise[TrackList, string]
}

// ArtistKeys are the pending keys of an artist page request
type ArtistKeys struct {
	Artist    promise.Key
	Albums    promise.Key
	TopTracks promise.Key
}

// Request switches the page to artist id and marks all slots pending
func (a *ArtistDetail) Request(id string) ArtistKeys {
	a.ID = id
	return ArtistKeys{
		Artist:    a.Artist.ToPending(),
		Albums:    a.Albums.ToPending(),
		TopTracks: a.TopTracks.ToPending(),
	}
}

// Equal compares two artist pages
func (a ArtistDetail) Equal(other ArtistDetail) bool {
	return a.ID == other.ID &&
		a.Artist.Equal(other.Artist, domain.Artist.Equal, eqString) &&
		a.Albums.Equal(other.Albums, eqAlbumList, eqString) &&
		a.TopTracks.Equal(other.TopTracks, eqTrackList, eqString)
}

// PlaylistDetail is the playlist page
type PlaylistDetail struct {
	ID       string
	Playlist promise.Promise[domain.Playlist, string]
	Tracks   promise.Promise[TrackList, string]
}

// PlaylistKeys are the pending keys of a playlist page request
type PlaylistKeys struct {
	Playlist promise.Key
	Tracks   promise.Key
}

// Request switches the page to playlist id and marks both slots pending
func (p *PlaylistDetail) Request(id string) PlaylistKeys {
	p.ID = id
	return PlaylistKeys{
		Playlist: p.Playlist.ToPending(),
		Tracks:   p.Tracks.ToPending(),
	}
}

// Equal compares two playlist pages
func (p PlaylistDetail) Equal(other PlaylistDetail) bool {
	return p.ID == other.ID &&
		p.Playlist.Equal(other.Playlist, domain.Playlist.Equal, eqString) &&
		p.Tracks.Equal(other.Tracks, eqTrackList, eqString)
}

// TrackCtx is what a track row needs to render itself: the playing track and
// the saved-track ids. State keeps it in step with Playback.Item and
// Library.SavedTracks.
type TrackCtx struct {
	PlaybackItem *domain.Track
	SavedTracks  seq.Set[domain.TrackID]
}

// IsPlaying reports whether t is the current playback item
func (c TrackCtx) IsPlaying(t *domain.Track) bool {
	return c.PlaybackItem != nil && t != nil && c.PlaybackItem.ID == t.ID
}

// IsSaved reports whether t is in the saved tracks
func (c TrackCtx) IsSaved(t *domain.Track) bool {
	return t != nil && c.SavedTracks.Has(t.ID)
}

// Equal compares two contexts
func (c TrackCtx) Equal(other TrackCtx) bool {
	return domain.SameTrack(c.PlaybackItem, other.PlaybackItem) &&
		c.SavedTracks.Equal(other.SavedTracks)
}
