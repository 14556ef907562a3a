package pipeline

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/podica/podica/internal/tts"
)

// Synthesize renders every transcript line to an MP3 clip. Lines are
// processed in sequential batches; lines inside a batch run concurrently
// and the whole batch is awaited before the next one starts. Clip paths
// are index-aligned with the transcript.
func (r *Runner) Synthesize(ctx context.Context, st *State) ([]string, error) {
	syn, err := r.Synthesizers.Synthesizer(st.Profile.Provider, st.Profile.Model)
	if err != nil {
		return nil, err
	}
	capability := syn.Capability()

	dialect := st.Dialect
	if dialect != "" && !capability.SupportsDialect(dialect) {
		r.Logger.Warn("backend does not support dialect, using default voice style",
			"provider", st.Profile.Provider, "dialect", dialect)
		dialect = ""
	}

	// Resolve custom voice references up front. A missing reference file
	// is a configuration error and fails the run before any clips render.
	refAudio, err := r.resolveCustomVoices(st, capability)
	if err != nil {
		return nil, err
	}

	clipsDir := filepath.Join(st.OutputDir, "clips")
	if err := os.MkdirAll(clipsDir, 0o755); err != nil {
		return nil, fmt.Errorf("create clips dir: %w", err)
	}

	voices := st.Profile.VoiceMapping()
	total := len(st.Transcript)
	batchSize := r.Config.BatchSize
	if batchSize < 1 {
		batchSize = 1
	}

	paths := make([]string, total)
	for start := 0; start < total; start += batchSize {
		end := start + batchSize
		if end > total {
			end = total
		}
		r.Logger.Info("synthesizing batch",
			"batch", start/batchSize+1,
			"total_batches", (total+batchSize-1)/batchSize,
			"clips", fmt.Sprintf("%d-%d", start, end-1))

		var wg sync.WaitGroup
		errs := make([]error, end-start)
		for i := start; i < end; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				line := st.Transcript[i]
				path := filepath.Join(clipsDir, fmt.Sprintf("%04d.mp3", i))

				voice := voices[line.Speaker]
				if voice == "" {
					voice = "default"
				}

				req := tts.Request{
					Text:           line.Text,
					Voice:          voice,
					Speed:          st.Speeds.Value(line.Speed),
					Instructions:   r.emotionInstructions(st, line.Emotion),
					ReferenceAudio: refAudio[line.Speaker],
					Dialect:        dialect,
					OutputPath:     path,
				}

				op := fmt.Sprintf("synthesize clip %04d (%s)", i, line.Speaker)
				if err := r.synthRetry().do(ctx, op, func() error {
					return syn.Synthesize(ctx, req)
				}); err != nil {
					errs[i-start] = err
					return
				}
				paths[i] = path
			}(i)
		}
		wg.Wait()
		if err := errors.Join(errs...); err != nil {
			return nil, err
		}

		if end < total {
			r.sleep(r.Config.BatchPause)
		}
	}

	r.Logger.Info("synthesized all clips", "count", total)
	return paths, nil
}

// resolveCustomVoices turns each speaker's custom-voice reference into raw
// audio bytes: a readable file is loaded, a base64 payload is decoded, and
// anything else is passed through as-is. When the backend cannot clone
// voices the references are dropped with a warning.
func (r *Runner) resolveCustomVoices(st *State, capability tts.Capability) (map[string][]byte, error) {
	refs := st.Profile.CustomVoiceMapping()
	if len(refs) == 0 {
		return nil, nil
	}
	if !capability.SupportsCustomVoice {
		r.Logger.Warn("backend does not support custom voices, using default voices",
			"provider", st.Profile.Provider, "speakers", len(refs))
		return nil, nil
	}

	out := make(map[string][]byte, len(refs))
	for speaker, ref := range refs {
		info, err := os.Stat(ref)
		if err == nil && !info.IsDir() {
			data, err := os.ReadFile(ref)
			if err != nil {
				return nil, fmt.Errorf("read custom voice for %s: %w", speaker, err)
			}
			out[speaker] = data
			continue
		}
		if decoded, err := base64.StdEncoding.DecodeString(ref); err == nil {
			out[speaker] = decoded
			continue
		}
		out[speaker] = []byte(ref)
	}
	return out, nil
}

// emotionInstructions resolves an emotion name to its style instructions.
// Vocabulary membership was already validated during parsing.
func (r *Runner) emotionInstructions(st *State, name string) string {
	if name == "" {
		return ""
	}
	emotion, err := st.Emotions.Get(name)
	if err != nil {
		return name
	}
	return emotion.Instructions()
}
