package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/podica/podica/internal/config"
	"github.com/podica/podica/internal/llm"
	"github.com/podica/podica/internal/pipeline"
	"github.com/podica/podica/internal/profile"
	"github.com/podica/podica/internal/tts"
	"github.com/podica/podica/pkg/textextract"
)

type generateOptions struct {
	name        string
	briefing    string
	content     []string
	urls        []string
	segments    int
	language    string
	dialect     string
	profileName string
	outputDir   string
}

// newGenerateCmd runs one episode generation locally, without the API
// server, database or queue. Provider credentials still come from the
// environment.
func newGenerateCmd() *cobra.Command {
	opts := generateOptions{}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate one podcast episode from local files or URLs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.name, "name", "", "episode name (required)")
	f.StringVar(&opts.briefing, "briefing", "", "episode briefing (required)")
	f.StringArrayVar(&opts.content, "content", nil, "content file path or inline text (repeatable)")
	f.StringArrayVar(&opts.urls, "url", nil, "content URL to fetch (repeatable)")
	f.IntVar(&opts.segments, "segments", 3, "number of outline segments")
	f.StringVar(&opts.language, "language", "english", "episode language")
	f.StringVar(&opts.dialect, "dialect", "", "regional dialect tag")
	f.StringVar(&opts.profileName, "profile", "default", "speaker profile name")
	f.StringVar(&opts.outputDir, "output", "output", "output directory")

	cobra.CheckErr(cmd.MarkFlagRequired("name"))
	cobra.CheckErr(cmd.MarkFlagRequired("briefing"))

	return cmd
}

func runGenerate(cmd *cobra.Command, opts generateOptions) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	speakers, err := profile.LoadSpeakerConfig(cfg.Profiles.SpeakersPath)
	if err != nil {
		return fmt.Errorf("load speaker config: %w", err)
	}
	emotions, err := profile.LoadEmotionConfig(cfg.Profiles.EmotionsPath)
	if err != nil {
		return fmt.Errorf("load emotion config: %w", err)
	}
	speeds, err := profile.LoadSpeedConfig(cfg.Profiles.SpeedsPath)
	if err != nil {
		return fmt.Errorf("load speed config: %w", err)
	}

	prof, err := speakers.Profile(opts.profileName)
	if err != nil {
		return err
	}

	content, err := gatherContent(cmd, opts)
	if err != nil {
		return err
	}
	if len(content) == 0 {
		return fmt.Errorf("at least one --content or --url is required")
	}

	gateway := llm.NewGateway(cfg.LLM)
	registry := tts.NewRegistryFromConfig(cfg.TTS)

	pipeCfg := pipeline.DefaultConfig()
	pipeCfg.BatchSize = cfg.Pipeline.BatchSize
	pipeCfg.BatchPause = cfg.Pipeline.BatchPause

	qaProvider, qaModel := cfg.LLM.StageModel(cfg.LLM.QAProvider, cfg.LLM.QAModel)
	outlineProvider, outlineModel := cfg.LLM.StageModel(cfg.LLM.OutlineProvider, cfg.LLM.OutlineModel)
	transcriptProvider, transcriptModel := cfg.LLM.StageModel(cfg.LLM.TranscriptProvider, cfg.LLM.TranscriptModel)

	runner := pipeline.NewRunner(
		llm.NewInvoker(gateway, qaProvider, qaModel, 2000),
		llm.NewInvoker(gateway, outlineProvider, outlineModel, 2000),
		llm.NewInvoker(gateway, transcriptProvider, transcriptModel, 5000),
		registry,
		pipeCfg,
	)
	runner.OnStage = func(stage string) {
		fmt.Fprintf(cmd.OutOrStdout(), "==> %s\n", stage)
	}

	st := &pipeline.State{
		EpisodeName: opts.name,
		OutputDir:   opts.outputDir,
		Content:     content,
		Briefing:    opts.briefing,
		NumSegments: opts.segments,
		Language:    opts.language,
		Dialect:     opts.dialect,
		Profile:     prof,
		Emotions:    emotions,
		Speeds:      speeds,
	}

	if err := runner.Run(cmd.Context(), st); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "episode written to %s\n", st.FinalPath)
	return nil
}

// gatherContent resolves each content argument as a file when one exists
// at that path, otherwise treats it as inline text. URLs are fetched and
// reduced to plain text.
func gatherContent(cmd *cobra.Command, opts generateOptions) ([]string, error) {
	var content []string
	for _, item := range opts.content {
		if info, err := os.Stat(item); err == nil && !info.IsDir() {
			data, err := os.ReadFile(item)
			if err != nil {
				return nil, fmt.Errorf("read content file %s: %w", item, err)
			}
			content = append(content, string(data))
			continue
		}
		if strings.TrimSpace(item) != "" {
			content = append(content, item)
		}
	}

	for _, url := range opts.urls {
		extracted, err := textextract.FetchURL(cmd.Context(), url)
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", url, err)
		}
		content = append(content, extracted.Content)
	}
	return content, nil
}
