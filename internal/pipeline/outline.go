package pipeline

import (
	"context"
	"strconv"
	"strings"

	"github.com/podica/podica/internal/prompt"
)

// GenerateOutline plans the episode structure with a single model call.
// Parse failures count as retryable; the whole operation is fatal once the
// attempts are exhausted.
func (r *Runner) GenerateOutline(ctx context.Context, st *State) (*Outline, error) {
	language := st.Language
	if language == "" {
		language = "english"
	}
	text, err := prompt.Render(prompt.OutlineTemplate, map[string]string{
		"briefing":     st.Briefing,
		"content":      strings.Join(st.Content, "\n\n---\n\n"),
		"num_segments": strconv.Itoa(st.NumSegments),
		"language":     language,
		"speakers":     strings.Join(st.Profile.SpeakerNames(), ", "),
	})
	if err != nil {
		return nil, err
	}

	var outline *Outline
	err = r.parseRetry().do(ctx, "outline generation", func() error {
		raw, err := r.OutlineModel.Invoke(ctx, text)
		if err != nil {
			return err
		}
		outline, err = parseOutline(raw)
		return err
	})
	if err != nil {
		return nil, err
	}

	r.Logger.Info("generated outline", "segments", len(outline.Segments))
	return outline, nil
}
