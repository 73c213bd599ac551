package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"dateflix-backend/internal/apperrors"
	"dateflix-backend/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCatalog struct {
	mu    sync.Mutex
	calls map[string]int
	err   error
	empty bool
}

func (c *fakeCatalog) record(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.calls == nil {
		c.calls = make(map[string]int)
	}
	c.calls[name]++
}

func (c *fakeCatalog) count(name string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[name]
}

func (c *fakeCatalog) page(page int) (*models.MoviePage, error) {
	if c.err != nil {
		return nil, c.err
	}
	if c.empty {
		return &models.MoviePage{Page: page, Results: []models.Movie{}}, nil
	}
	return &models.MoviePage{
		Page:         page,
		TotalPages:   3,
		TotalResults: 2,
		Results:      []models.Movie{movie(1, "Heat"), movie(2, "Alien")},
	}, nil
}

func (c *fakeCatalog) Trending(_ context.Context, page int) (*models.MoviePage, error) {
	c.record("trending")
	return c.page(page)
}

func (c *fakeCatalog) Popular(_ context.Context, page int) (*models.MoviePage, error) {
	c.record("popular")
	return c.page(page)
}

func (c *fakeCatalog) Search(_ context.Context, _ string, page int) (*models.MoviePage, error) {
	c.record("search")
	return c.page(page)
}

func (c *fakeCatalog) Discover(_ context.Context, _, page int) (*models.MoviePage, error) {
	c.record("discover")
	return c.page(page)
}

func (c *fakeCatalog) Details(_ context.Context, movieID int64) (*models.Movie, error) {
	c.record("details")
	if c.err != nil {
		return nil, c.err
	}
	m := movie(movieID, "Heat")
	return &m, nil
}

func newCachedMovieService(t *testing.T, catalog Catalog) (*MovieService, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewMovieService(catalog, client, time.Minute), mr
}

func TestMovieListingIsCached(t *testing.T) {
	catalog := &fakeCatalog{}
	svc, mr := newCachedMovieService(t, catalog)
	ctx := context.Background()

	first := svc.Trending(ctx, 1)
	require.Len(t, first.Results, 2)
	second := svc.Trending(ctx, 1)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, catalog.count("trending"))
	assert.True(t, mr.Exists("catalog:trending::1"))

	svc.Trending(ctx, 2)
	assert.Equal(t, 2, catalog.count("trending"))

	mr.FastForward(2 * time.Minute)
	svc.Trending(ctx, 1)
	assert.Equal(t, 3, catalog.count("trending"))
}

func TestMovieListingFailureYieldsEmptyPage(t *testing.T) {
	catalog := &fakeCatalog{err: apperrors.Upstream("catalog down", errors.New("503"))}
	svc, mr := newCachedMovieService(t, catalog)
	ctx := context.Background()

	for _, page := range []*models.MoviePage{
		svc.Trending(ctx, 1),
		svc.Popular(ctx, 1),
		svc.Search(ctx, "heat", 1),
		svc.Discover(ctx, 28, 1),
	} {
		require.NotNil(t, page)
		assert.NotNil(t, page.Results)
		assert.Empty(t, page.Results)
	}
	assert.Empty(t, mr.Keys())
}

func TestMovieListingFailureKeepsRequestedPage(t *testing.T) {
	catalog := &fakeCatalog{err: apperrors.Upstream("catalog down", errors.New("503"))}
	svc := NewMovieService(catalog, nil, time.Minute)
	ctx := context.Background()

	assert.Equal(t, 3, svc.Trending(ctx, 3).Page)
	assert.Equal(t, 4, svc.Popular(ctx, 4).Page)
	assert.Equal(t, 2, svc.Search(ctx, "heat", 2).Page)
	assert.Equal(t, 5, svc.Discover(ctx, 28, 5).Page)
	assert.Equal(t, 1, svc.Trending(ctx, 0).Page)
}

func TestMovieEmptyPagesNotCached(t *testing.T) {
	catalog := &fakeCatalog{empty: true}
	svc, mr := newCachedMovieService(t, catalog)

	svc.Popular(context.Background(), 1)
	assert.Empty(t, mr.Keys())
}

func TestMovieSearchBlankQuery(t *testing.T) {
	catalog := &fakeCatalog{}
	svc := NewMovieService(catalog, nil, time.Minute)

	page := svc.Search(context.Background(), "   ", 1)
	assert.Empty(t, page.Results)
	assert.Zero(t, catalog.count("search"))
}

func TestMovieWithoutCache(t *testing.T) {
	catalog := &fakeCatalog{}
	svc := NewMovieService(catalog, nil, time.Minute)
	ctx := context.Background()

	svc.Discover(ctx, 28, 1)
	svc.Discover(ctx, 28, 1)
	assert.Equal(t, 2, catalog.count("discover"))
}

func TestMovieDetails(t *testing.T) {
	catalog := &fakeCatalog{}
	svc, mr := newCachedMovieService(t, catalog)
	ctx := context.Background()

	m, err := svc.Details(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, int64(7), m.ID)

	_, err = svc.Details(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, 1, catalog.count("details"))
	assert.True(t, mr.Exists("catalog:movie:7"))

	catalog.err = apperrors.ErrMovieNotFound
	_, err = svc.Details(ctx, 8)
	assert.ErrorIs(t, err, apperrors.ErrMovieNotFound)
}

func TestMovieCorruptCacheEntry(t *testing.T) {
	catalog := &fakeCatalog{}
	svc, mr := newCachedMovieService(t, catalog)
	require.NoError(t, mr.Set("catalog:popular::1", "{not json"))

	page := svc.Popular(context.Background(), 1)
	assert.Len(t, page.Results, 2)
	assert.Equal(t, 1, catalog.count("popular"))
}
