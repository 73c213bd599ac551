package tmdb

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"dateflix-backend/internal/apperrors"
	"dateflix-backend/internal/metrics"
	"dateflix-backend/internal/models"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// maxBodyBytes caps how much of a catalog response is read
const maxBodyBytes = 4 << 20

// Client calls the TMDB v3 API. Responses that are empty or not JSON are
// treated as empty results rather than errors.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a catalog client paced at requestsPerSecond
func NewClient(baseURL, apiKey string, timeout time.Duration, requestsPerSecond float64) *Client {
	burst := int(requestsPerSecond)
	if burst < 1 {
		burst = 1
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(rate.Limit(requestsPerSecond), burst),
	}
}

// Trending calls GET /trending/movie/week
func (c *Client) Trending(ctx context.Context, page int) (*models.MoviePage, error) {
	return c.listing(ctx, "trending", "/trending/movie/week", pageParams(page))
}

// Popular calls GET /movie/popular
func (c *Client) Popular(ctx context.Context, page int) (*models.MoviePage, error) {
	return c.listing(ctx, "popular", "/movie/popular", pageParams(page))
}

// Search calls GET /search/movie
func (c *Client) Search(ctx context.Context, query string, page int) (*models.MoviePage, error) {
	params := pageParams(page)
	params.Set("query", query)
	return c.listing(ctx, "search", "/search/movie", params)
}

// Discover calls GET /discover/movie filtered by genre
func (c *Client) Discover(ctx context.Context, genreID, page int) (*models.MoviePage, error) {
	params := pageParams(page)
	params.Set("with_genres", strconv.Itoa(genreID))
	return c.listing(ctx, "discover", "/discover/movie", params)
}

// Details calls GET /movie/{id}
func (c *Client) Details(ctx context.Context, movieID int64) (*models.Movie, error) {
	body, status, err := c.get(ctx, "details", fmt.Sprintf("/movie/%d", movieID), url.Values{})
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return nil, apperrors.ErrMovieNotFound
	}
	if err := checkStatus(status, body, "/movie/{id}"); err != nil {
		return nil, err
	}

	var movie models.Movie
	if !decodeTolerant(body, &movie) || movie.ID == 0 {
		return nil, apperrors.ErrMovieNotFound
	}
	return &movie, nil
}

func (c *Client) listing(ctx context.Context, endpoint, path string, params url.Values) (*models.MoviePage, error) {
	body, status, err := c.get(ctx, endpoint, path, params)
	if err != nil {
		return nil, err
	}
	if err := checkStatus(status, body, path); err != nil {
		return nil, err
	}

	page := &models.MoviePage{}
	if !decodeTolerant(body, page) {
		log.Debug().Str("path", path).Msg("Catalog returned an empty or non-JSON body")
		page = &models.MoviePage{}
	}
	if page.Results == nil {
		page.Results = []models.Movie{}
	}
	return page, nil
}

func (c *Client) get(ctx context.Context, endpoint, path string, params url.Values) ([]byte, int, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, 0, apperrors.Upstream("tmdb "+path, err)
	}

	params.Set("api_key", c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return nil, 0, fmt.Errorf("tmdb %s: build request: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	metrics.CatalogRequestDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.CatalogRequests.WithLabelValues(endpoint, "error").Inc()
		return nil, 0, apperrors.Upstream("tmdb "+path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		metrics.CatalogRequests.WithLabelValues(endpoint, "error").Inc()
		return nil, 0, apperrors.Upstream("tmdb "+path+": read body", err)
	}
	metrics.CatalogRequests.WithLabelValues(endpoint, strconv.Itoa(resp.StatusCode)).Inc()
	return body, resp.StatusCode, nil
}

// checkStatus returns an error if the status is not 2xx.
// It includes the upstream body for debugging.
func checkStatus(status int, body []byte, path string) error {
	if status >= 200 && status < 300 {
		return nil
	}
	return apperrors.Upstream(
		fmt.Sprintf("tmdb %s returned %d", path, status),
		fmt.Errorf("%s", truncate(body, 256)),
	)
}

// decodeTolerant unmarshals body into v and reports whether it held JSON
func decodeTolerant(body []byte, v any) bool {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return false
	}
	return json.Unmarshal(body, v) == nil
}

func pageParams(page int) url.Values {
	if page < 1 {
		page = 1
	}
	return url.Values{"page": []string{strconv.Itoa(page)}}
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		return string(b[:n])
	}
	return string(b)
}
