package domain

import "context"

// CatalogRepository provides read access to the music catalog.
// Returned tracks are shared handles: the same logical track is the same
// *Track across every call.
type CatalogRepository interface {
	// Search matches artists, albums and tracks against a free-text query
	Search(ctx context.Context, query string) (SearchResults, error)

	// GetTrack returns a single track
	GetTrack(ctx context.Context, id TrackID) (*Track, error)

	// GetAlbum returns an album with its tracks
	GetAlbum(ctx context.Context, id string) (Album, error)

	// GetArtist returns artist metadata
	GetArtist(ctx context.Context, id string) (Artist, error)

	// GetArtistAlbums returns the artist's albums, newest first
	GetArtistAlbums(ctx context.Context, id string) ([]Album, error)

	// GetArtistTopTracks returns a short list of the artist's tracks
	GetArtistTopTracks(ctx context.Context, id string) ([]*Track, error)

	// GetPlaylists returns all playlists
	GetPlaylists(ctx context.Context) ([]Playlist, error)

	// GetPlaylist returns playlist metadata
	GetPlaylist(ctx context.Context, id string) (Playlist, error)

	// GetPlaylistTracks returns the tracks of a playlist in order
	GetPlaylistTracks(ctx context.Context, id string) ([]*Track, error)
}
