package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/mmcdole/cadence/internal/domain"
)

// catalog is the part of the catalog the services use (consumer-defined interface)
type catalog interface {
	domain.CatalogRepository
	Scan(ctx context.Context, onProgress domain.ProgressFunc) (domain.ScanResult, error)
	Rescan(ctx context.Context, dir string, full bool, onProgress domain.ProgressFunc) (domain.ScanResult, error)
	AlbumDir(id string) (string, bool)
	SavePlaylist(ctx context.Context, name string, tracks []*domain.Track) (domain.Playlist, error)
}

// savedStore persists the saved track and album ids (consumer-defined interface)
type savedStore interface {
	SavedTrackIDs() []domain.TrackID
	SaveSavedTrackIDs(ids []domain.TrackID) error
	SavedAlbumIDs() []string
	SaveSavedAlbumIDs(ids []string) error
}

// LibraryService handles catalog browsing and the saved collection
type LibraryService struct {
	catalog catalog
	saved   savedStore
	logger  *slog.Logger

	// Serializes read-modify-write of the saved id lists
	savedMu sync.Mutex
}

// NewLibraryService creates a new library service
func NewLibraryService(catalog catalog, saved savedStore, logger *slog.Logger) *LibraryService {
	if logger == nil {
		logger = slog.Default()
	}
	return &LibraryService{
		catalog: catalog,
		saved:   saved,
		logger:  logger,
	}
}

// Scan indexes the music directory, reusing cached tag reads
func (s *LibraryService) Scan(ctx context.Context, onProgress domain.ProgressFunc) (domain.ScanResult, error) {
	return s.catalog.Scan(ctx, onProgress)
}

// Rescan drops the cached tag reads of one album, or of everything when
// albumID is empty, and scans again.
func (s *LibraryService) Rescan(ctx context.Context, albumID string, onProgress domain.ProgressFunc) (domain.ScanResult, error) {
	if albumID == "" {
		s.logger.Info("rescanning library")
		return s.catalog.Rescan(ctx, "", true, onProgress)
	}
	dir, ok := s.catalog.AlbumDir(albumID)
	if !ok {
		return domain.ScanResult{}, fmt.Errorf("album %s: %w", albumID, domain.ErrNotFound)
	}
	s.logger.Info("rescanning album", "albumID", albumID, "dir", dir)
	return s.catalog.Rescan(ctx, dir, false, onProgress)
}

// GetAlbum returns an album with its tracks
func (s *LibraryService) GetAlbum(ctx context.Context, id string) (domain.Album, error) {
	album, err := s.catalog.GetAlbum(ctx, id)
	if err != nil {
		s.logger.Error("failed to load album", "error", err, "albumID", id)
	}
	return album, err
}

// GetArtist returns artist metadata
func (s *LibraryService) GetArtist(ctx context.Context, id string) (domain.Artist, error) {
	artist, err := s.catalog.GetArtist(ctx, id)
	if err != nil {
		s.logger.Error("failed to load artist", "error", err, "artistID", id)
	}
	return artist, err
}

// GetArtistAlbums returns the artist's albums, newest first
func (s *LibraryService) GetArtistAlbums(ctx context.Context, id string) ([]domain.Album, error) {
	return s.catalog.GetArtistAlbums(ctx, id)
}

// GetArtistTopTracks returns a short list of the artist's tracks
func (s *LibraryService) GetArtistTopTracks(ctx context.Context, id string) ([]*domain.Track, error) {
	return s.catalog.GetArtistTopTracks(ctx, id)
}

// === Saved collection ===

// GetSavedTracks returns the saved tracks, most recently saved first.
// Ids whose files left the library are skipped.
func (s *LibraryService) GetSavedTracks(ctx context.Context) ([]*domain.Track, error) {
	ids := s.saved.SavedTrackIDs()
	tracks := make([]*domain.Track, 0, len(ids))
	for i := len(ids) - 1; i >= 0; i-- {
		t, err := s.catalog.GetTrack(ctx, ids[i])
		if errors.Is(err, domain.ErrNotFound) {
			s.logger.Debug("saved track no longer in library", "trackID", ids[i])
			continue
		}
		if err != nil {
			return nil, err
		}
		tracks = append(tracks, t)
	}
	return tracks, nil
}

// GetSavedAlbums returns the saved albums, most recently saved first
func (s *LibraryService) GetSavedAlbums(ctx context.Context) ([]domain.Album, error) {
	ids := s.saved.SavedAlbumIDs()
	albums := make([]domain.Album, 0, len(ids))
	for i := len(ids) - 1; i >= 0; i-- {
		a, err := s.catalog.GetAlbum(ctx, ids[i])
		if errors.Is(err, domain.ErrNotFound) {
			s.logger.Debug("saved album no longer in library", "albumID", ids[i])
			continue
		}
		if err != nil {
			return nil, err
		}
		albums = append(albums, a)
	}
	return albums, nil
}

// SaveTrack adds a track to the saved tracks
func (s *LibraryService) SaveTrack(ctx context.Context, id domain.TrackID) error {
	if _, err := s.catalog.GetTrack(ctx, id); err != nil {
		return err
	}
	s.savedMu.Lock()
	defer s.savedMu.Unlock()

	ids := s.saved.SavedTrackIDs()
	if slices.Contains(ids, id) {
		return nil
	}
	if err := s.saved.SaveSavedTrackIDs(append(ids, id)); err != nil {
		return fmt.Errorf("failed to save track: %w", err)
	}
	s.logger.Info("saved track", "trackID", id)
	return nil
}

// UnsaveTrack removes a track from the saved tracks
func (s *LibraryService) UnsaveTrack(ctx context.Context, id domain.TrackID) error {
	s.savedMu.Lock()
	defer s.savedMu.Unlock()

	ids := s.saved.SavedTrackIDs()
	kept := slices.DeleteFunc(slices.Clone(ids), func(x domain.TrackID) bool { return x == id })
	if len(kept) == len(ids) {
		return nil
	}
	if err := s.saved.SaveSavedTrackIDs(kept); err != nil {
		return fmt.Errorf("failed to unsave track: %w", err)
	}
	s.logger.Info("unsaved track", "trackID", id)
	return nil
}

// SaveAlbum adds an album to the saved albums
func (s *LibraryService) SaveAlbum(ctx context.Context, id string) error {
	if _, err := s.catalog.GetAlbum(ctx, id); err != nil {
		return err
	}
	s.savedMu.Lock()
	defer s.savedMu.Unlock()

	ids := s.saved.SavedAlbumIDs()
	if slices.Contains(ids, id) {
		return nil
	}
	if err := s.saved.SaveSavedAlbumIDs(append(ids, id)); err != nil {
		return fmt.Errorf("failed to save album: %w", err)
	}
	s.logger.Info("saved album", "albumID", id)
	return nil
}

// UnsaveAlbum removes an album from the saved albums
func (s *LibraryService) UnsaveAlbum(ctx context.Context, id string) error {
	s.savedMu.Lock()
	defer s.savedMu.Unlock()

	ids := s.saved.SavedAlbumIDs()
	kept := slices.DeleteFunc(slices.Clone(ids), func(x string) bool { return x == id })
	if len(kept) == len(ids) {
		return nil
	}
	if err := s.saved.SaveSavedAlbumIDs(kept); err != nil {
		return fmt.Errorf("failed to unsave album: %w", err)
	}
	s.logger.Info("unsaved album", "albumID", id)
	return nil
}

// IsAlbumSaved reports whether the album is in the saved albums
func (s *LibraryService) IsAlbumSaved(id string) bool {
	return slices.Contains(s.saved.SavedAlbumIDs(), id)
}
