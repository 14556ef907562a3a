package api

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/podica/podica/internal/api/handlers"
	"github.com/podica/podica/internal/api/middleware"
	"github.com/podica/podica/internal/auth"
	"github.com/podica/podica/internal/cache"
	"github.com/podica/podica/internal/config"
	"github.com/podica/podica/internal/embedding"
	"github.com/podica/podica/internal/episode"
	"github.com/podica/podica/internal/library"
	"github.com/podica/podica/internal/llm"
	"github.com/podica/podica/internal/profile"
	"github.com/podica/podica/internal/queue"
	"github.com/podica/podica/internal/tts"
	"github.com/podica/podica/internal/vectorstore"
)

type Router struct {
	mux    *chi.Mux
	db     *pgxpool.Pool
	redis  *redis.Client
	cfg    *config.Config
	jwt    *auth.JWTMiddleware
	apikey *auth.APIKeyMiddleware
	llmGW  llm.Gateway
}

func NewRouter(db *pgxpool.Pool, rdb *redis.Client, cfg *config.Config) *Router {
	return &Router{
		mux:    chi.NewRouter(),
		db:     db,
		redis:  rdb,
		cfg:    cfg,
		jwt:    auth.NewJWTMiddleware(cfg.Auth.JWTSecret),
		apikey: auth.NewAPIKeyMiddleware(cfg.Auth.APIKeyHeader, cfg.Auth.APIKeys),
		llmGW:  llm.NewGateway(cfg.LLM),
	}
}

func (rt *Router) Setup() (http.Handler, error) {
	r := rt.mux

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging(slog.Default()))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS([]string{"*"}))

	rl := middleware.NewRateLimiter(100, 200)
	r.Use(rl.Limit)

	// Health endpoints (no auth)
	health := handlers.NewHealthHandler(rt.db, rt.redis)
	r.Get("/healthz", health.Healthz)
	r.Get("/readyz", health.Readyz)

	// Voice profile configuration is loaded once at startup. A broken
	// config file should stop the server rather than fail every request.
	speakers, err := profile.LoadSpeakerConfig(rt.cfg.Profiles.SpeakersPath)
	if err != nil {
		return nil, fmt.Errorf("load speaker config: %w", err)
	}
	emotions, err := profile.LoadEmotionConfig(rt.cfg.Profiles.EmotionsPath)
	if err != nil {
		return nil, fmt.Errorf("load emotion config: %w", err)
	}
	speeds, err := profile.LoadSpeedConfig(rt.cfg.Profiles.SpeedsPath)
	if err != nil {
		return nil, fmt.Errorf("load speed config: %w", err)
	}

	// Initialize services
	episodeSvc := episode.NewService(rt.db)
	queueClient := queue.NewClient(rt.cfg.Redis)
	registry := tts.NewRegistryFromConfig(rt.cfg.TTS)

	vs := vectorstore.NewPgVectorStore(rt.db)
	embedSvc := embedding.NewService(rt.llmGW, rt.cfg.Library.EmbeddingModel)
	librarySvc := library.NewService(rt.db, vs, embedSvc)

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		// Auth: try API key first, then JWT
		r.Use(rt.apikey.Authenticate)
		r.Use(rt.jwt.Authenticate)

		// Episode routes
		episodeH := handlers.NewEpisodeHandler(episodeSvc, queueClient, speakers, cache.NewCache(rt.redis))
		r.Route("/episodes", func(r chi.Router) {
			r.Post("/", episodeH.Create)
			r.Get("/", episodeH.List)
			r.Get("/{id}", episodeH.Get)
			r.Get("/{id}/status", episodeH.Status)
			r.Get("/{id}/download", episodeH.Download)
			r.Delete("/{id}", episodeH.Delete)
		})

		// Profile routes
		profileH := handlers.NewProfileHandler(speakers, emotions, speeds)
		r.Route("/profiles", func(r chi.Router) {
			r.Get("/", profileH.List)
			r.Get("/emotions", profileH.Emotions)
			r.Get("/speeds", profileH.Speeds)
			r.Get("/{name}", profileH.Get)
		})

		// Voice capability routes
		voiceH := handlers.NewVoiceHandler(registry)
		r.Get("/voices", voiceH.List)

		// Content library routes
		libraryH := handlers.NewLibraryHandler(librarySvc, queueClient)
		r.Route("/library", func(r chi.Router) {
			r.Post("/", libraryH.Upload)
			r.Post("/url", libraryH.IngestURL)
			r.Get("/", libraryH.List)
			r.Post("/search", libraryH.Search)
			r.Get("/{id}", libraryH.Get)
			r.Delete("/{id}", libraryH.Delete)
		})
	})

	return r, nil
}
