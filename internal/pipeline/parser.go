package pipeline

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

var thinkPattern = regexp.MustCompile(`(?s)<think>.*?</think>`)

// stripReasoning removes <think> blocks emitted by reasoning models and
// any markdown code fences wrapping the payload.
func stripReasoning(s string) string {
	s = thinkPattern.ReplaceAllString(s, "")
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx >= 0 {
			s = s[idx+1:]
		} else {
			s = strings.TrimPrefix(s, "```")
		}
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	return strings.TrimSpace(s)
}

// unmarshalModelJSON unmarshals model output into v, repairing malformed
// JSON on syntax errors before retrying.
func unmarshalModelJSON(data string, v any) error {
	err := json.Unmarshal([]byte(data), v)
	if err == nil {
		return nil
	}
	if _, ok := err.(*json.SyntaxError); ok {
		fixed, rerr := jsonrepair.JSONRepair(data)
		if rerr != nil {
			return err
		}
		return json.Unmarshal([]byte(fixed), v)
	}
	return err
}

// parseOutline extracts an outline from raw model output.
func parseOutline(raw string) (*Outline, error) {
	var out Outline
	if err := unmarshalModelJSON(stripReasoning(raw), &out); err != nil {
		return nil, fmt.Errorf("parse outline: %w", err)
	}
	if len(out.Segments) == 0 {
		return nil, fmt.Errorf("parse outline: no segments")
	}
	for i, seg := range out.Segments {
		if strings.TrimSpace(seg.Name) == "" {
			return nil, fmt.Errorf("parse outline: segment %d has no name", i)
		}
	}
	return &out, nil
}

// transcriptParser validates parsed dialogue lines against the run's
// speaker, emotion and speed vocabularies. A single invalid line rejects
// the whole batch.
type transcriptParser struct {
	speakers map[string]bool
	emotions map[string]bool
	speeds   map[string]bool
}

func newTranscriptParser(speakers, emotions, speeds []string) *transcriptParser {
	toSet := func(vals []string) map[string]bool {
		m := make(map[string]bool, len(vals))
		for _, v := range vals {
			m[v] = true
		}
		return m
	}
	return &transcriptParser{
		speakers: toSet(speakers),
		emotions: toSet(emotions),
		speeds:   toSet(speeds),
	}
}

func (p *transcriptParser) parse(raw string) ([]Dialogue, error) {
	var out struct {
		Transcript []Dialogue `json:"transcript"`
	}
	if err := unmarshalModelJSON(stripReasoning(raw), &out); err != nil {
		return nil, fmt.Errorf("parse transcript: %w", err)
	}
	if len(out.Transcript) == 0 {
		return nil, fmt.Errorf("parse transcript: no dialogue lines")
	}

	for i, d := range out.Transcript {
		if !p.speakers[d.Speaker] {
			return nil, fmt.Errorf("parse transcript: line %d: unknown speaker %q", i, d.Speaker)
		}
		if strings.TrimSpace(d.Text) == "" {
			return nil, fmt.Errorf("parse transcript: line %d: empty dialogue", i)
		}
		if d.Emotion != "" && !p.emotions[d.Emotion] {
			return nil, fmt.Errorf("parse transcript: line %d: unknown emotion %q", i, d.Emotion)
		}
		if d.Speed != "" && !p.speeds[d.Speed] {
			return nil, fmt.Errorf("parse transcript: line %d: unknown speed %q", i, d.Speed)
		}
	}
	return out.Transcript, nil
}
