package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dateflix-backend/internal/config"
	"dateflix-backend/internal/handlers"
	"dateflix-backend/internal/middleware"
	"dateflix-backend/internal/repository"
	"dateflix-backend/internal/services"
	"dateflix-backend/internal/tmdb"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func Run() {
	// Load configuration
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", configPath).Msg("Failed to load configuration")
	}

	// Setup logger
	setupLogger(cfg.Log.Level)

	ctx := context.Background()

	// Connect to database
	db, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	if err := db.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to ping database")
	}
	log.Info().Msg("Database connection established")

	if cfg.Database.Migrate {
		if err := repository.Migrate(ctx, db); err != nil {
			log.Fatal().Err(err).Msg("Failed to apply schema")
		}
		log.Info().Msg("Database schema applied")
	}

	// Catalog cache is optional
	var cache *redis.Client
	if cfg.Redis.Addr != "" {
		cache = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer cache.Close()

		if err := cache.Ping(ctx).Err(); err != nil {
			log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("Redis unavailable, catalog cache disabled")
			cache = nil
		} else {
			log.Info().Str("addr", cfg.Redis.Addr).Msg("Redis connection established")
		}
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	swipeRepo := repository.NewSwipeRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	invitationRepo := repository.NewInvitationRepository(db)
	matchRepo := repository.NewMatchRepository(db)

	// Event listeners
	wsHub := services.NewWSHub()
	listeners := services.Listeners{wsHub}

	if cfg.APNs.KeyPath != "" {
		pusher, err := services.NewPusher(cfg.APNs, userRepo)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create push notifier")
		}
		listeners = append(listeners, pusher)
		log.Info().Bool("production", cfg.APNs.Production).Msg("Push notifications enabled")
	}

	var posters services.PosterSigner
	if cfg.AWS.S3Bucket != "" {
		archive, err := services.NewPosterArchive(ctx, cfg.AWS, cfg.TMDB.ImageBaseURL, matchRepo)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create poster archive")
		}
		listeners = append(listeners, archive)
		posters = archive
		log.Info().Str("bucket", cfg.AWS.S3Bucket).Msg("Poster archive enabled")
	}

	// Initialize services
	catalog := tmdb.NewClient(cfg.TMDB.BaseURL, cfg.TMDB.APIKey, cfg.TMDB.Timeout, cfg.TMDB.RequestsPerSecond)
	background := services.NewBackground()

	identityVerifier, err := services.NewIdentityVerifier(cfg.Identity)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load identity provider key")
	}
	userService := services.NewUserService(userRepo, cfg.JWT.Secret, cfg.JWT.TTL)
	movieService := services.NewMovieService(catalog, cache, cfg.Redis.CacheTTL)
	matchService := services.NewMatchService(services.MatchDependencies{
		Sessions:   sessionRepo,
		Swipes:     swipeRepo,
		Matches:    matchRepo,
		Listeners:  listeners,
		Posters:    posters,
		Background: background,
	})
	swipeService := services.NewSwipeService(userRepo, swipeRepo, matchService)
	invitationService := services.NewInvitationService(services.InvitationDependencies{
		Invitations: invitationRepo,
		Sessions:    sessionRepo,
		Listeners:   listeners,
		Background:  background,
		CodeLength:  cfg.Invitations.CodeLength,
		TTL:         cfg.Invitations.TTL,
	})
	sessionService := services.NewSessionService(sessionRepo)
	statsService := services.NewStatsService(swipeRepo, matchRepo, sessionRepo)

	// Initialize handlers
	userHandler := handlers.NewUserHandler(userService, identityVerifier)
	movieHandler := handlers.NewMovieHandler(movieService)
	swipeHandler := handlers.NewSwipeHandler(swipeService)
	matchHandler := handlers.NewMatchHandler(matchService)
	invitationHandler := handlers.NewInvitationHandler(invitationService)
	sessionHandler := handlers.NewSessionHandler(sessionService)
	statsHandler := handlers.NewStatsHandler(statsService)
	wsHandler := handlers.NewWebSocketHandler(wsHub, userService, sessionService)

	// Setup router
	r := chi.NewRouter()

	// Middleware
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", promhttp.Handler())

	// Routes
	r.Route("/api/v1", func(r chi.Router) {
		// Public routes
		r.Post("/users/sync", userHandler.Sync)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthMiddleware(userService))

			r.Get("/me", userHandler.Me)
			r.Put("/me/push-token", userHandler.UpdatePushToken)

			r.Route("/movies", func(r chi.Router) {
				r.Get("/trending", movieHandler.Trending)
				r.Get("/popular", movieHandler.Popular)
				r.Get("/search", movieHandler.Search)
				r.Get("/discover", movieHandler.Discover)
				r.Get("/{movie_id}", movieHandler.Details)
			})

			r.Post("/swipes", swipeHandler.Create)

			r.Get("/matches", matchHandler.List)
			r.Patch("/matches/{match_id}/watched", matchHandler.SetWatched)

			r.Post("/invitations", invitationHandler.Create)
			r.Get("/invitations", invitationHandler.List)
			r.Post("/invitations/accept", invitationHandler.Accept)

			r.Get("/sessions", sessionHandler.List)
			r.Delete("/sessions/{session_id}", sessionHandler.Deactivate)

			r.Get("/stats", statsHandler.Get)
		})
	})

	// WebSocket route
	r.Get("/ws", wsHandler.HandleWebSocket)

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("host", cfg.Server.Host).
			Int("port", cfg.Server.Port).
			Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	// Let match and invitation follow-ups finish before the pool closes
	background.Wait()

	log.Info().Msg("Server exited")
}

// setupLogger configures zerolog logger
func setupLogger(level string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
