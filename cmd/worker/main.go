package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/podica/podica/internal/cache"
	"github.com/podica/podica/internal/config"
	"github.com/podica/podica/internal/database"
	"github.com/podica/podica/internal/embedding"
	"github.com/podica/podica/internal/episode"
	"github.com/podica/podica/internal/library"
	"github.com/podica/podica/internal/llm"
	"github.com/podica/podica/internal/notify"
	"github.com/podica/podica/internal/queue"
	"github.com/podica/podica/internal/queue/workers"
	"github.com/podica/podica/internal/storage"
	"github.com/podica/podica/internal/tts"
	"github.com/podica/podica/internal/vectorstore"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	db, err := database.NewPool(ctx, cfg.Database)
	if err != nil {
		slog.Error("database unavailable", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()

	gateway := llm.NewGateway(cfg.LLM)
	vs := vectorstore.NewPgVectorStore(db)
	embedSvc := embedding.NewService(gateway, cfg.Library.EmbeddingModel)
	librarySvc := library.NewService(db, vs, embedSvc)

	// Audio uploads are skipped when no object store is configured; the
	// final file still lands on local disk under OUTPUT_DIR.
	var store storage.Storage
	if cfg.Storage.SupabaseURL != "" {
		store = storage.NewSupabaseStorage(cfg.Storage.SupabaseURL, cfg.Storage.SupabaseKey)
	}

	episodeWorker, err := workers.NewEpisodeWorker(workers.EpisodeWorkerDeps{
		Episodes: episode.NewService(db),
		Gateway:  gateway,
		Registry: tts.NewRegistryFromConfig(cfg.TTS),
		Library:  librarySvc,
		Cache:    cache.NewCache(rdb),
		Storage:  store,
		Notifier: notify.NewNotifier(cfg.Notify.Secret),
		Config:   cfg,
	})
	if err != nil {
		slog.Error("failed to build episode worker", "error", err)
		os.Exit(1)
	}

	ingestWorker := workers.NewIngestWorker(librarySvc)

	srv := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		},
		asynq.Config{
			// Generation runs are LLM- and TTS-bound, so modest
			// concurrency keeps provider rate limits manageable.
			Concurrency: 4,
			Queues: map[string]int{
				"critical": 6,
				"default":  3,
				"low":      1,
			},
		},
	)

	registry := queue.NewHandlersRegistry()
	registry.Register(queue.TypeEpisodeGenerate, asynq.HandlerFunc(episodeWorker.ProcessTask))
	registry.Register(queue.TypeSourceIngest, asynq.HandlerFunc(ingestWorker.ProcessTask))

	slog.Info("starting worker", "concurrency", 4)
	if err := srv.Run(registry.Mux()); err != nil {
		slog.Error("worker error", "error", err)
		os.Exit(1)
	}
}
