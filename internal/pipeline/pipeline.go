package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/podica/podica/internal/profile"
	"github.com/podica/podica/internal/tts"
)

// ChatModel is the language-model collaborator: one prompt in, one raw
// completion out. llm.Invoker satisfies it.
type ChatModel interface {
	Invoke(ctx context.Context, prompt string) (string, error)
}

// SynthesizerSource resolves a synthesis backend by provider and model.
// tts.Registry satisfies it.
type SynthesizerSource interface {
	Synthesizer(provider, model string) (tts.Synthesizer, error)
}

// Config tunes the pipeline's batching, retries and preprocessing
// thresholds. All fields have working defaults from DefaultConfig.
type Config struct {
	BatchSize  int
	BatchPause time.Duration

	ParseAttempts int
	ParsePause    time.Duration
	SynthAttempts int
	SynthPause    time.Duration

	// Content items longer than SummaryThreshold runes are summarized;
	// items of at least PassThreshold runes pass through untouched.
	SummaryThreshold int
	PassThreshold    int
}

func DefaultConfig() Config {
	return Config{
		BatchSize:        5,
		BatchPause:       time.Second,
		ParseAttempts:    3,
		ParsePause:       time.Second,
		SynthAttempts:    5,
		SynthPause:       3 * time.Second,
		SummaryThreshold: 5000,
		PassThreshold:    500,
	}
}

// Runner executes the episode generation pipeline: preprocess, outline,
// transcript, synthesis, combine.
type Runner struct {
	QAModel         ChatModel
	OutlineModel    ChatModel
	TranscriptModel ChatModel
	Synthesizers    SynthesizerSource

	Config Config
	Logger *slog.Logger

	// Sleep is used for all retry and batch pauses. Nil means time.Sleep.
	Sleep func(time.Duration)

	// OnStage, when set, is called with the stage name before each stage
	// starts. Workers use it to report progress.
	OnStage func(stage string)
}

func NewRunner(qa, outline, transcript ChatModel, synths SynthesizerSource, cfg Config) *Runner {
	return &Runner{
		QAModel:         qa,
		OutlineModel:    outline,
		TranscriptModel: transcript,
		Synthesizers:    synths,
		Config:          cfg,
		Logger:          slog.Default(),
		Sleep:           time.Sleep,
	}
}

func (r *Runner) sleep(d time.Duration) {
	if r.Sleep != nil {
		r.Sleep(d)
	} else {
		time.Sleep(d)
	}
}

func (r *Runner) parseRetry() retryPolicy {
	return retryPolicy{
		attempts: r.Config.ParseAttempts,
		pause:    r.Config.ParsePause,
		sleep:    r.sleep,
		logger:   r.Logger,
	}
}

func (r *Runner) synthRetry() retryPolicy {
	return retryPolicy{
		attempts: r.Config.SynthAttempts,
		pause:    r.Config.SynthPause,
		sleep:    r.sleep,
		logger:   r.Logger,
	}
}

func (r *Runner) stage(name string) {
	if r.OnStage != nil {
		r.OnStage(name)
	}
	r.Logger.Info("pipeline stage", "stage", name)
}

// Run executes all stages in order. Each stage writes its own output
// fields on the state and nothing else; a stage error aborts the run with
// earlier outputs (including clips on disk) left intact.
func (r *Runner) Run(ctx context.Context, st *State) error {
	if err := st.validate(); err != nil {
		return fmt.Errorf("pipeline: %w", err)
	}
	if st.Speeds == nil {
		st.Speeds = profile.DefaultSpeedConfig()
	}

	r.stage("preprocess")
	content, err := r.Preprocess(ctx, st)
	if err != nil {
		return fmt.Errorf("preprocess: %w", err)
	}
	st.Content = content

	r.stage("outline")
	outline, err := r.GenerateOutline(ctx, st)
	if err != nil {
		return fmt.Errorf("outline: %w", err)
	}
	st.Outline = outline

	r.stage("transcript")
	transcript, err := r.GenerateTranscript(ctx, st)
	if err != nil {
		return fmt.Errorf("transcript: %w", err)
	}
	st.Transcript = transcript

	r.stage("synthesize")
	clips, err := r.Synthesize(ctx, st)
	if err != nil {
		return fmt.Errorf("synthesize: %w", err)
	}
	st.ClipPaths = clips

	r.stage("combine")
	final, err := r.Combine(st)
	if err != nil {
		return fmt.Errorf("combine: %w", err)
	}
	st.FinalPath = final

	r.Logger.Info("episode generated",
		"episode", st.EpisodeName,
		"segments", len(st.Outline.Segments),
		"lines", len(st.Transcript),
		"output", st.FinalPath)
	return nil
}
