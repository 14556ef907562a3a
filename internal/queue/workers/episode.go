package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/podica/podica/internal/cache"
	"github.com/podica/podica/internal/config"
	"github.com/podica/podica/internal/episode"
	"github.com/podica/podica/internal/library"
	"github.com/podica/podica/internal/llm"
	"github.com/podica/podica/internal/models"
	"github.com/podica/podica/internal/notify"
	"github.com/podica/podica/internal/pipeline"
	"github.com/podica/podica/internal/profile"
	"github.com/podica/podica/internal/queue"
	"github.com/podica/podica/internal/storage"
	"github.com/podica/podica/internal/tts"
	"github.com/podica/podica/pkg/textextract"
)

// EpisodeWorker runs the generation pipeline for queued episodes.
type EpisodeWorker struct {
	episodes *episode.Service
	gateway  llm.Gateway
	registry *tts.Registry
	library  *library.Service
	cache    *cache.Cache
	storage  storage.Storage
	notifier *notify.Notifier
	cfg      *config.Config

	speakers *profile.SpeakerConfig
	emotions *profile.EmotionConfig
	speeds   *profile.SpeedConfig
}

type EpisodeWorkerDeps struct {
	Episodes *episode.Service
	Gateway  llm.Gateway
	Registry *tts.Registry
	Library  *library.Service
	Cache    *cache.Cache
	Storage  storage.Storage
	Notifier *notify.Notifier
	Config   *config.Config
}

func NewEpisodeWorker(deps EpisodeWorkerDeps) (*EpisodeWorker, error) {
	speakers, err := profile.LoadSpeakerConfig(deps.Config.Profiles.SpeakersPath)
	if err != nil {
		return nil, fmt.Errorf("load speaker config: %w", err)
	}
	emotions, err := profile.LoadEmotionConfig(deps.Config.Profiles.EmotionsPath)
	if err != nil {
		return nil, fmt.Errorf("load emotion config: %w", err)
	}
	speeds, err := profile.LoadSpeedConfig(deps.Config.Profiles.SpeedsPath)
	if err != nil {
		return nil, fmt.Errorf("load speed config: %w", err)
	}

	return &EpisodeWorker{
		episodes: deps.Episodes,
		gateway:  deps.Gateway,
		registry: deps.Registry,
		library:  deps.Library,
		cache:    deps.Cache,
		storage:  deps.Storage,
		notifier: deps.Notifier,
		cfg:      deps.Config,
		speakers: speakers,
		emotions: emotions,
		speeds:   speeds,
	}, nil
}

func (w *EpisodeWorker) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload queue.EpisodeGeneratePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}
	id, err := uuid.Parse(payload.EpisodeID)
	if err != nil {
		return fmt.Errorf("parse episode ID: %w", err)
	}

	ep, err := w.episodes.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("get episode: %w", err)
	}
	if err := w.episodes.MarkGenerating(ctx, id); err != nil {
		return err
	}

	slog.Info("generating episode", "episode_id", id, "name", ep.Name)

	if err := w.generate(ctx, ep, payload); err != nil {
		slog.Error("episode generation failed", "episode_id", id, "error", err)
		if dbErr := w.episodes.MarkFailed(ctx, id, err.Error()); dbErr != nil {
			slog.Error("could not mark episode failed", "episode_id", id, "error", dbErr)
		}
		w.sendCallback(ctx, ep, models.EpisodeStatusFailed, "", err.Error())
		return err
	}
	return nil
}

func (w *EpisodeWorker) generate(ctx context.Context, ep *models.Episode, payload queue.EpisodeGeneratePayload) error {
	prof, err := w.speakers.Profile(ep.ProfileName)
	if err != nil {
		return err
	}

	content := payload.Content
	for _, url := range payload.SourceURL {
		extracted, err := w.resolveURL(ctx, url)
		if err != nil {
			return fmt.Errorf("resolve source %s: %w", url, err)
		}
		content = append(content, extracted)
	}

	// Related library material rides along as extra context. The library
	// being empty or unreachable does not block the run.
	if w.library != nil {
		related, err := w.library.BriefingContext(ctx, ep.Briefing, w.cfg.Library.TopK)
		if err != nil {
			slog.Warn("library context unavailable", "episode_id", ep.ID, "error", err)
		} else {
			content = append(content, related...)
		}
	}

	runner := w.newRunner(ctx, ep.ID)

	st := &pipeline.State{
		EpisodeName: ep.Name,
		OutputDir:   filepath.Join(w.cfg.Pipeline.OutputDir, ep.ID.String()),
		Content:     content,
		Briefing:    ep.Briefing,
		NumSegments: ep.NumSegments,
		Language:    ep.Language,
		Dialect:     ep.Dialect,
		Profile:     prof,
		Emotions:    w.emotions,
		Speeds:      w.speeds,
	}
	if err := runner.Run(ctx, st); err != nil {
		return err
	}

	storageURL, err := w.upload(ctx, ep, st.FinalPath)
	if err != nil {
		return err
	}

	transcript, err := json.Marshal(st.Transcript)
	if err != nil {
		return fmt.Errorf("marshal transcript: %w", err)
	}
	if err := w.episodes.MarkCompleted(ctx, ep.ID, st.FinalPath, storageURL, transcript); err != nil {
		return err
	}

	w.sendCallback(ctx, ep, models.EpisodeStatusCompleted, storageURL, "")
	return nil
}

func (w *EpisodeWorker) newRunner(ctx context.Context, episodeID uuid.UUID) *pipeline.Runner {
	llmCfg := w.cfg.LLM
	qaProvider, qaModel := llmCfg.StageModel(llmCfg.QAProvider, llmCfg.QAModel)
	outProvider, outModel := llmCfg.StageModel(llmCfg.OutlineProvider, llmCfg.OutlineModel)
	trProvider, trModel := llmCfg.StageModel(llmCfg.TranscriptProvider, llmCfg.TranscriptModel)

	cfg := pipeline.DefaultConfig()
	cfg.BatchSize = w.cfg.Pipeline.BatchSize
	cfg.BatchPause = w.cfg.Pipeline.BatchPause

	runner := pipeline.NewRunner(
		llm.NewInvoker(w.gateway, qaProvider, qaModel, 2000),
		llm.NewInvoker(w.gateway, outProvider, outModel, 2000),
		llm.NewInvoker(w.gateway, trProvider, trModel, 5000),
		w.registry,
		cfg,
	)
	runner.OnStage = func(stage string) {
		if err := w.episodes.UpdateStage(ctx, episodeID, stage); err != nil {
			slog.Warn("could not record stage", "episode_id", episodeID, "error", err)
		}
		if w.cache != nil {
			_ = w.cache.Set(ctx, episode.ProgressKey(episodeID), stage, time.Hour)
		}
	}
	return runner
}

func (w *EpisodeWorker) resolveURL(ctx context.Context, url string) (string, error) {
	extracted, err := textextract.FetchURL(ctx, url)
	if err != nil {
		return "", err
	}
	// Fetched sources also land in the library for future runs.
	if w.library != nil {
		title := extracted.Metadata["title"]
		if title == "" {
			title = url
		}
		if _, err := w.library.Ingest(ctx, library.IngestRequest{
			Title:  title,
			Origin: url,
			Text:   extracted.Content,
		}); err != nil {
			slog.Warn("could not ingest episode source", "url", url, "error", err)
		}
	}
	return extracted.Content, nil
}

// upload pushes the combined file to object storage when configured and
// returns its public URL. Without storage the local path is the result.
func (w *EpisodeWorker) upload(ctx context.Context, ep *models.Episode, finalPath string) (string, error) {
	if w.storage == nil {
		return "", nil
	}

	f, err := os.Open(finalPath)
	if err != nil {
		return "", fmt.Errorf("open final file: %w", err)
	}
	defer f.Close()

	path := fmt.Sprintf("%s/%s.mp3", ep.ID, ep.Name)
	if err := w.storage.Upload(ctx, w.cfg.Storage.Bucket, path, f, "audio/mpeg"); err != nil {
		return "", fmt.Errorf("upload episode: %w", err)
	}
	return w.storage.GetPublicURL(w.cfg.Storage.Bucket, path), nil
}

func (w *EpisodeWorker) sendCallback(ctx context.Context, ep *models.Episode, status, outputURL, cause string) {
	if ep.CallbackURL == "" || w.notifier == nil {
		return
	}
	event := notify.EpisodeEvent{
		EpisodeID: ep.ID,
		Name:      ep.Name,
		Status:    status,
		OutputURL: outputURL,
		Error:     cause,
		At:        time.Now().UTC(),
	}
	if err := w.notifier.Send(ctx, ep.CallbackURL, event); err != nil {
		slog.Warn("callback not delivered", "episode_id", ep.ID, "error", err)
	}
}
