package pipeline

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/podica/podica/internal/prompt"
)

// GenerateTranscript writes the dialogue segment by segment, validating
// each model response against the run's speaker, emotion and speed
// vocabularies. Each segment retries independently; turns from
// successful segments are kept in outline order.
func (r *Runner) GenerateTranscript(ctx context.Context, st *State) ([]Dialogue, error) {
	parser := newTranscriptParser(st.Profile.SpeakerNames(), st.Emotions.Names(), st.Speeds.Names())

	// The backend's voice tag support shapes the prompt. A failed lookup
	// only disables tags.
	tagNotes := ""
	if syn, err := r.Synthesizers.Synthesizer(st.Profile.Provider, st.Profile.Model); err != nil {
		r.Logger.Warn("could not query synthesis capability, voice tags disabled",
			"provider", st.Profile.Provider, "error", err)
	} else if c := syn.Capability(); c.SupportsVoiceTags && len(c.VoiceTags) > 0 {
		tags := make([]string, len(c.VoiceTags))
		for i, t := range c.VoiceTags {
			tags[i] = "[" + t + "]"
		}
		tagNotes = "- You may use these inline voice tags inside the dialogue where natural: " +
			strings.Join(tags, ", ") + "."
	}

	var transcript []Dialogue
	segments := st.Outline.Segments
	for i, seg := range segments {
		r.Logger.Info("generating transcript segment",
			"segment", i+1, "total", len(segments), "name", seg.Name)

		text, err := prompt.Render(prompt.TranscriptTemplate, map[string]string{
			"briefing":      st.Briefing,
			"content":       strings.Join(st.Content, "\n\n---\n\n"),
			"outline":       st.Outline.String(),
			"segment_name":  seg.Name,
			"segment_size":  seg.Size,
			"turns":         strconv.Itoa(turnsFor(seg.Size)),
			"speaker_notes": speakerNotes(st),
			"position":      positionNote(i, len(segments)),
			"context":       dialogueContext(transcript),
			"emotions":      strings.Join(st.Emotions.Names(), ", "),
			"speeds":        strings.Join(st.Speeds.Names(), ", "),
			"tag_notes":     tagNotes,
		})
		if err != nil {
			return nil, err
		}

		var lines []Dialogue
		op := fmt.Sprintf("transcript segment %d (%s)", i+1, seg.Name)
		err = r.parseRetry().do(ctx, op, func() error {
			raw, err := r.TranscriptModel.Invoke(ctx, text)
			if err != nil {
				return err
			}
			lines, err = parser.parse(raw)
			return err
		})
		if err != nil {
			return nil, err
		}
		transcript = append(transcript, lines...)
	}

	r.Logger.Info("generated transcript", "lines", len(transcript))
	return transcript, nil
}

func speakerNotes(st *State) string {
	var b strings.Builder
	for _, s := range st.Profile.Speakers {
		fmt.Fprintf(&b, "- %s", s.Name)
		if s.Personality != "" {
			fmt.Fprintf(&b, ": %s", s.Personality)
		}
		if s.Backstory != "" {
			fmt.Fprintf(&b, " (%s)", s.Backstory)
		}
		b.WriteString("\n")
	}
	if st.Language != "" {
		fmt.Fprintf(&b, "\nWrite all dialogue in %s.", st.Language)
	}
	return b.String()
}

func positionNote(index, total int) string {
	switch {
	case total == 1:
		return prompt.PositionOnly
	case index == 0:
		return prompt.PositionFirst
	case index == total-1:
		return prompt.PositionLast
	default:
		return prompt.PositionMiddle
	}
}

// dialogueContext renders the transcript so far, truncated to the most
// recent lines to keep the prompt bounded.
func dialogueContext(transcript []Dialogue) string {
	if len(transcript) == 0 {
		return "(the conversation has not started yet)"
	}
	const maxLines = 20
	start := 0
	if len(transcript) > maxLines {
		start = len(transcript) - maxLines
	}
	var b strings.Builder
	for _, d := range transcript[start:] {
		fmt.Fprintf(&b, "%s: %s\n", d.Speaker, d.Text)
	}
	return b.String()
}
