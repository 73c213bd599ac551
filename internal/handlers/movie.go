package handlers

import (
	"context"
	"net/http"
	"strconv"

	"dateflix-backend/internal/apperrors"
	"dateflix-backend/internal/models"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// MovieCatalog is what the movie endpoints need from the movie service.
// Listings never fail; they degrade to an empty page.
type MovieCatalog interface {
	Trending(ctx context.Context, page int) *models.MoviePage
	Popular(ctx context.Context, page int) *models.MoviePage
	Search(ctx context.Context, query string, page int) *models.MoviePage
	Discover(ctx context.Context, genreID, page int) *models.MoviePage
	Details(ctx context.Context, movieID int64) (*models.Movie, error)
}

// MovieHandler serves catalog listings
type MovieHandler struct {
	movies MovieCatalog
}

// NewMovieHandler creates a new movie handler
func NewMovieHandler(movies MovieCatalog) *MovieHandler {
	return &MovieHandler{movies: movies}
}

// Trending handles GET /api/v1/movies/trending
func (h *MovieHandler) Trending(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.movies.Trending(r.Context(), pageParam(r)))
}

// Popular handles GET /api/v1/movies/popular
func (h *MovieHandler) Popular(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.movies.Popular(r.Context(), pageParam(r)))
}

// Search handles GET /api/v1/movies/search?query=
func (h *MovieHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	respondJSON(w, http.StatusOK, h.movies.Search(r.Context(), query, pageParam(r)))
}

// Discover handles GET /api/v1/movies/discover?genre=
func (h *MovieHandler) Discover(w http.ResponseWriter, r *http.Request) {
	genreID, err := strconv.Atoi(r.URL.Query().Get("genre"))
	if err != nil || genreID <= 0 {
		respondError(w, apperrors.CodeInvalidArgument, "genre must be a positive integer", http.StatusBadRequest)
		return
	}
	respondJSON(w, http.StatusOK, h.movies.Discover(r.Context(), genreID, pageParam(r)))
}

// Details handles GET /api/v1/movies/{movie_id}
func (h *MovieHandler) Details(w http.ResponseWriter, r *http.Request) {
	movieID, err := strconv.ParseInt(chi.URLParam(r, "movie_id"), 10, 64)
	if err != nil || movieID <= 0 {
		respondError(w, apperrors.CodeInvalidArgument, "movie_id must be a positive integer", http.StatusBadRequest)
		return
	}

	movie, err := h.movies.Details(r.Context(), movieID)
	if err != nil {
		log.Error().Err(err).Int64("movie_id", movieID).Msg("Failed to load movie")
		respondAppError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, movie)
}
