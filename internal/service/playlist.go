package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mmcdole/cadence/internal/domain"
)

// PlaylistService provides playlist reads and saving the queue as a playlist
type PlaylistService struct {
	catalog catalog
	logger  *slog.Logger
}

// NewPlaylistService creates a new playlist service
func NewPlaylistService(catalog catalog, logger *slog.Logger) *PlaylistService {
	if logger == nil {
		logger = slog.Default()
	}
	return &PlaylistService{
		catalog: catalog,
		logger:  logger,
	}
}

// GetPlaylists returns all playlists
func (s *PlaylistService) GetPlaylists(ctx context.Context) ([]domain.Playlist, error) {
	return s.catalog.GetPlaylists(ctx)
}

// GetPlaylist returns playlist metadata
func (s *PlaylistService) GetPlaylist(ctx context.Context, id string) (domain.Playlist, error) {
	return s.catalog.GetPlaylist(ctx, id)
}

// GetPlaylistTracks returns the tracks of a playlist in order
func (s *PlaylistService) GetPlaylistTracks(ctx context.Context, id string) ([]*domain.Track, error) {
	return s.catalog.GetPlaylistTracks(ctx, id)
}

// CreatePlaylist writes tracks to a playlist named title
func (s *PlaylistService) CreatePlaylist(ctx context.Context, title string, tracks []*domain.Track) (domain.Playlist, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return domain.Playlist{}, fmt.Errorf("playlist title is empty")
	}
	if len(tracks) == 0 {
		return domain.Playlist{}, fmt.Errorf("playlist %q has no tracks", title)
	}

	p, err := s.catalog.SavePlaylist(ctx, title, tracks)
	if err != nil {
		s.logger.Error("failed to create playlist", "error", err, "title", title)
		return domain.Playlist{}, err
	}
	return p, nil
}
