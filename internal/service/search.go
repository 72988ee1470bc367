package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/mmcdole/cadence/internal/domain"
)

// SearchService runs catalog searches
type SearchService struct {
	repo   domain.CatalogRepository
	logger *slog.Logger
}

// NewSearchService creates a new search service
func NewSearchService(repo domain.CatalogRepository, logger *slog.Logger) *SearchService {
	if logger == nil {
		logger = slog.Default()
	}
	return &SearchService{
		repo:   repo,
		logger: logger,
	}
}

// Search matches artists, albums and tracks. A blank query matches nothing.
func (s *SearchService) Search(ctx context.Context, query string) (domain.SearchResults, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return domain.SearchResults{}, nil
	}

	s.logger.Debug("searching", "query", query)

	results, err := s.repo.Search(ctx, query)
	if err != nil {
		s.logger.Error("search failed", "error", err, "query", query)
		return domain.SearchResults{}, err
	}

	s.logger.Debug("search complete", "query", query,
		"artists", results.Artists.Len(), "albums", results.Albums.Len(), "tracks", results.Tracks.Len())
	return results, nil
}
