// Package catalog serves the music catalog from a local directory tree.
//
// A scan walks the music directory, reads tags with dhowden/tag (falling
// back to the Artist/Album/NN Title layout), loads m3u playlists, and builds
// an immutable snapshot of tracks, albums and artists with search indexes.
// Tag reads are cached in the library store keyed by path and mod time, so a
// rescan only opens files that changed.
package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/mmcdole/cadence/internal/domain"
)

// Catalog implements domain.CatalogRepository over a music directory
type Catalog struct {
	musicDir    string
	playlistDir string
	store       domain.LibraryStore
	logger      *slog.Logger

	mu  sync.RWMutex
	lib *library
}

var _ domain.CatalogRepository = (*Catalog)(nil)

// New creates a catalog. Nothing is read until Scan. store may be nil to
// disable the scan cache.
func New(musicDir, playlistDir string, store domain.LibraryStore, logger *slog.Logger) *Catalog {
	if logger == nil {
		logger = slog.Default()
	}
	return &Catalog{
		musicDir:    cleanDir(musicDir),
		playlistDir: cleanDir(playlistDir),
		store:       store,
		logger:      logger,
		lib:         emptyLibrary(),
	}
}

func cleanDir(dir string) string {
	if dir == "" {
		return ""
	}
	if abs, err := filepath.Abs(dir); err == nil {
		return abs
	}
	return filepath.Clean(dir)
}

func (c *Catalog) snapshot() *library {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lib
}

// Scan reads the music and playlist directories and replaces the catalog.
// Handles returned before the scan stay valid but are not reused by it.
func (c *Catalog) Scan(ctx context.Context, onProgress domain.ProgressFunc) (domain.ScanResult, error) {
	if c.musicDir == "" {
		return domain.ScanResult{}, domain.ErrNotConfigured
	}
	if _, err := os.Stat(c.musicDir); err != nil {
		return domain.ScanResult{}, fmt.Errorf("music directory: %w", err)
	}

	records, cached, err := c.scanFiles(ctx, c.musicDir, onProgress)
	if err != nil {
		return domain.ScanResult{}, fmt.Errorf("scan %s: %w", c.musicDir, err)
	}
	playlists := c.readPlaylists(c.playlistDir)
	lib := buildLibrary(records, playlists, c.logger)

	c.mu.Lock()
	c.lib = lib
	c.mu.Unlock()

	result := domain.ScanResult{
		Tracks:    len(lib.tracks),
		Cached:    cached,
		Albums:    len(lib.albums),
		Artists:   len(lib.artists),
		Playlists: len(lib.playlists),
	}
	c.logger.Info("library scanned",
		"tracks", result.Tracks, "cached", result.Cached,
		"albums", result.Albums, "artists", result.Artists, "playlists", result.Playlists)
	return result, nil
}

// Rescan drops cached tag reads and scans again. With full set every record
// under the music directory is dropped; otherwise only those under dir.
// Saved tracks and albums are kept.
func (c *Catalog) Rescan(ctx context.Context, dir string, full bool, onProgress domain.ProgressFunc) (domain.ScanResult, error) {
	if full {
		dir = c.musicDir
	}
	if c.store != nil && dir != "" {
		c.store.InvalidateDir(dir)
	}
	return c.Scan(ctx, onProgress)
}

// AlbumDir returns the directory holding an album's files
func (c *Catalog) AlbumDir(id string) (string, bool) {
	dir, ok := c.snapshot().albumDirs[id]
	return dir, ok
}

// Search matches artists, albums and tracks against query
func (c *Catalog) Search(ctx context.Context, query string) (domain.SearchResults, error) {
	if err := ctx.Err(); err != nil {
		return domain.SearchResults{}, err
	}
	return c.snapshot().search(query), nil
}

// GetTrack returns a single track
func (c *Catalog) GetTrack(ctx context.Context, id domain.TrackID) (*domain.Track, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	t, ok := c.snapshot().tracks[id]
	if !ok {
		return nil, fmt.Errorf("track %s: %w", id, domain.ErrNotFound)
	}
	return t, nil
}

// GetAlbum returns an album with its tracks
func (c *Catalog) GetAlbum(ctx context.Context, id string) (domain.Album, error) {
	if err := ctx.Err(); err != nil {
		return domain.Album{}, err
	}
	a, ok := c.snapshot().albums[id]
	if !ok {
		return domain.Album{}, fmt.Errorf("album %s: %w", id, domain.ErrNotFound)
	}
	return a, nil
}

// GetArtist returns artist metadata
func (c *Catalog) GetArtist(ctx context.Context, id string) (domain.Artist, error) {
	if err := ctx.Err(); err != nil {
		return domain.Artist{}, err
	}
	a, ok := c.snapshot().artists[id]
	if !ok {
		return domain.Artist{}, fmt.Errorf("artist %s: %w", id, domain.ErrNotFound)
	}
	return a, nil
}

// GetArtistAlbums returns the albums credited to the artist, newest first
func (c *Catalog) GetArtistAlbums(ctx context.Context, id string) ([]domain.Album, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	lib := c.snapshot()
	if _, ok := lib.artists[id]; !ok {
		return nil, fmt.Errorf("artist %s: %w", id, domain.ErrNotFound)
	}
	return lib.artistAlbums[id], nil
}

// GetArtistTopTracks returns the artist's tracks from the newest albums
func (c *Catalog) GetArtistTopTracks(ctx context.Context, id string) ([]*domain.Track, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	lib := c.snapshot()
	if _, ok := lib.artists[id]; !ok {
		return nil, fmt.Errorf("artist %s: %w", id, domain.ErrNotFound)
	}
	return lib.topTracks(id), nil
}

// GetPlaylists returns all playlists sorted by name
func (c *Catalog) GetPlaylists(ctx context.Context) ([]domain.Playlist, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return c.snapshot().playlists, nil
}

// GetPlaylist returns playlist metadata
func (c *Catalog) GetPlaylist(ctx context.Context, id string) (domain.Playlist, error) {
	if err := ctx.Err(); err != nil {
		return domain.Playlist{}, err
	}
	for _, p := range c.snapshot().playlists {
		if p.ID == id {
			return p, nil
		}
	}
	return domain.Playlist{}, fmt.Errorf("playlist %s: %w", id, domain.ErrNotFound)
}

// GetPlaylistTracks returns the tracks of a playlist in file order
func (c *Catalog) GetPlaylistTracks(ctx context.Context, id string) ([]*domain.Track, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	tracks, ok := c.snapshot().playlistTracks[id]
	if !ok {
		return nil, fmt.Errorf("playlist %s: %w", id, domain.ErrNotFound)
	}
	return tracks, nil
}

// SavePlaylist writes tracks to a new m3u file in the playlist directory and
// adds it to the catalog. An existing playlist with the same name is
// overwritten.
func (c *Catalog) SavePlaylist(ctx context.Context, name string, tracks []*domain.Track) (domain.Playlist, error) {
	if err := ctx.Err(); err != nil {
		return domain.Playlist{}, err
	}
	if c.playlistDir == "" {
		return domain.Playlist{}, domain.ErrNotConfigured
	}
	if err := os.MkdirAll(c.playlistDir, 0755); err != nil {
		return domain.Playlist{}, fmt.Errorf("failed to create playlist directory: %w", err)
	}

	path := filepath.Join(c.playlistDir, playlistFileName(name))
	if err := writePlaylist(path, tracks); err != nil {
		return domain.Playlist{}, err
	}

	entries, err := parsePlaylist(path)
	if err != nil {
		return domain.Playlist{}, err
	}
	pf := playlistFile{
		playlist: domain.Playlist{ID: hashID("playlist", path), Name: playlistName(path)},
		path:     path,
		entries:  entries,
	}

	c.mu.Lock()
	c.lib = c.lib.withPlaylist(pf, c.logger)
	lib := c.lib
	c.mu.Unlock()

	c.logger.Info("saved playlist", "name", pf.playlist.Name, "path", path, "tracks", len(tracks))
	p := pf.playlist
	p.TrackCount = len(lib.playlistTracks[p.ID])
	return p, nil
}
