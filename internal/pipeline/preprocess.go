package pipeline

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/podica/podica/internal/prompt"
)

// Preprocess normalizes each content item for generation. Oversized items
// are summarized against the briefing, mid-sized items pass through, and
// short items are judged and elaborated when they need more substance.
// Model failures here are not retried.
func (r *Runner) Preprocess(ctx context.Context, st *State) ([]string, error) {
	out := make([]string, 0, len(st.Content))
	for i, item := range st.Content {
		length := utf8.RuneCountInString(item)
		switch {
		case length > r.Config.SummaryThreshold:
			r.Logger.Info("summarizing oversized content item", "item", i, "length", length)
			summary, err := r.summarize(ctx, st.Briefing, item)
			if err != nil {
				return nil, fmt.Errorf("summarize item %d: %w", i, err)
			}
			out = append(out, summary)

		case length >= r.Config.PassThreshold:
			out = append(out, item)

		default:
			needs, err := r.judge(ctx, item)
			if err != nil {
				return nil, fmt.Errorf("judge item %d: %w", i, err)
			}
			if !needs {
				out = append(out, item)
				continue
			}
			r.Logger.Info("elaborating short content item", "item", i, "length", length)
			expanded, err := r.elaborate(ctx, item)
			if err != nil {
				return nil, fmt.Errorf("elaborate item %d: %w", i, err)
			}
			out = append(out, expanded)
		}
	}
	return out, nil
}

func (r *Runner) summarize(ctx context.Context, briefing, content string) (string, error) {
	text, err := prompt.Render(prompt.SummaryTemplate, map[string]string{
		"briefing": briefing,
		"content":  content,
	})
	if err != nil {
		return "", err
	}
	resp, err := r.QAModel.Invoke(ctx, text)
	if err != nil {
		return "", err
	}
	return stripReasoning(resp), nil
}

// judge asks whether a short item needs elaboration before use.
func (r *Runner) judge(ctx context.Context, content string) (bool, error) {
	text, err := prompt.Render(prompt.JudgeTemplate, map[string]string{
		"content": content,
	})
	if err != nil {
		return false, err
	}
	resp, err := r.QAModel.Invoke(ctx, text)
	if err != nil {
		return false, err
	}
	answer := strings.ToLower(stripReasoning(resp))
	return strings.Contains(answer, "yes"), nil
}

func (r *Runner) elaborate(ctx context.Context, content string) (string, error) {
	text, err := prompt.Render(prompt.ElaborateTemplate, map[string]string{
		"content": content,
	})
	if err != nil {
		return "", err
	}
	resp, err := r.QAModel.Invoke(ctx, text)
	if err != nil {
		return "", err
	}
	return stripReasoning(resp), nil
}
