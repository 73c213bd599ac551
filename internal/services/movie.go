package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"dateflix-backend/internal/models"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Catalog is the movie source adapter
type Catalog interface {
	Trending(ctx context.Context, page int) (*models.MoviePage, error)
	Popular(ctx context.Context, page int) (*models.MoviePage, error)
	Search(ctx context.Context, query string, page int) (*models.MoviePage, error)
	Discover(ctx context.Context, genreID, page int) (*models.MoviePage, error)
	Details(ctx context.Context, movieID int64) (*models.Movie, error)
}

// MovieService serves catalog listings through a redis cache.
// Listing failures produce an empty page so screens keep rendering.
type MovieService struct {
	catalog Catalog
	cache   *redis.Client
	ttl     time.Duration
}

// NewMovieService creates a new movie service. A nil cache disables caching.
func NewMovieService(catalog Catalog, cache *redis.Client, ttl time.Duration) *MovieService {
	return &MovieService{catalog: catalog, cache: cache, ttl: ttl}
}

// Trending returns the weekly trending movies
func (s *MovieService) Trending(ctx context.Context, page int) *models.MoviePage {
	return s.listing(ctx, listingKey("trending", "", page), page, func() (*models.MoviePage, error) {
		return s.catalog.Trending(ctx, page)
	})
}

// Popular returns the popular movies
func (s *MovieService) Popular(ctx context.Context, page int) *models.MoviePage {
	return s.listing(ctx, listingKey("popular", "", page), page, func() (*models.MoviePage, error) {
		return s.catalog.Popular(ctx, page)
	})
}

// Search returns movies matching query. An empty query yields an empty page.
func (s *MovieService) Search(ctx context.Context, query string, page int) *models.MoviePage {
	query = strings.TrimSpace(query)
	if query == "" {
		return emptyPage(page)
	}
	return s.listing(ctx, listingKey("search", strings.ToLower(query), page), page, func() (*models.MoviePage, error) {
		return s.catalog.Search(ctx, query, page)
	})
}

// Discover returns movies of one genre
func (s *MovieService) Discover(ctx context.Context, genreID, page int) *models.MoviePage {
	return s.listing(ctx, listingKey("discover", strconv.Itoa(genreID), page), page, func() (*models.MoviePage, error) {
		return s.catalog.Discover(ctx, genreID, page)
	})
}

// Details returns a single movie
func (s *MovieService) Details(ctx context.Context, movieID int64) (*models.Movie, error) {
	key := fmt.Sprintf("catalog:movie:%d", movieID)

	var cached models.Movie
	if s.readCache(ctx, key, &cached) {
		return &cached, nil
	}

	movie, err := s.catalog.Details(ctx, movieID)
	if err != nil {
		return nil, err
	}
	s.writeCache(ctx, key, movie)
	return movie, nil
}

func (s *MovieService) listing(ctx context.Context, key string, pageNum int, fetch func() (*models.MoviePage, error)) *models.MoviePage {
	var cached models.MoviePage
	if s.readCache(ctx, key, &cached) {
		return &cached
	}

	page, err := fetch()
	if err != nil {
		log.Error().Err(err).Str("cache_key", key).Msg("Failed to fetch movies from catalog")
		return emptyPage(pageNum)
	}
	if len(page.Results) > 0 {
		s.writeCache(ctx, key, page)
	}
	return page
}

func (s *MovieService) readCache(ctx context.Context, key string, dest any) bool {
	if s.cache == nil {
		return false
	}
	raw, err := s.cache.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Warn().Err(err).Str("cache_key", key).Msg("Catalog cache read failed")
		}
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		log.Warn().Err(err).Str("cache_key", key).Msg("Discarding corrupt catalog cache entry")
		return false
	}
	return true
}

func (s *MovieService) writeCache(ctx context.Context, key string, value any) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, raw, s.ttl).Err(); err != nil {
		log.Warn().Err(err).Str("cache_key", key).Msg("Catalog cache write failed")
	}
}

func listingKey(kind, arg string, page int) string {
	if page < 1 {
		page = 1
	}
	return fmt.Sprintf("catalog:%s:%s:%d", kind, arg, page)
}

func emptyPage(page int) *models.MoviePage {
	if page < 1 {
		page = 1
	}
	return &models.MoviePage{Page: page, Results: []models.Movie{}}
}
