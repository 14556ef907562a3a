package pipeline

import (
	"fmt"
	"strings"

	"github.com/podica/podica/internal/profile"
)

// Segment is one outlined section of the episode. Size is a class name
// (short, medium, long) that sets the target turn count.
type Segment struct {
	Name string `json:"name"`
	Size string `json:"size"`
}

// Outline is the planned episode structure.
type Outline struct {
	Segments []Segment `json:"segments"`
}

func (o *Outline) String() string {
	var b strings.Builder
	for i, s := range o.Segments {
		fmt.Fprintf(&b, "%d. %s (%s)\n", i+1, s.Name, s.Size)
	}
	return b.String()
}

// Dialogue is one spoken line of the transcript. Instances are never
// modified after validation.
type Dialogue struct {
	Speaker string `json:"speaker"`
	Text    string `json:"dialogue"`
	Emotion string `json:"emotion"`
	Speed   string `json:"speed"`
}

// turnsFor maps a segment size class to its target dialogue turn count.
// Unknown classes get the long-form count.
func turnsFor(size string) int {
	switch strings.ToLower(size) {
	case "short":
		return 2
	case "medium":
		return 5
	default:
		return 8
	}
}

// State carries an episode run through the pipeline. The input fields are
// set by the caller; each stage fills exactly one of the output fields and
// never touches a field owned by an earlier stage.
type State struct {
	// Inputs.
	EpisodeName string
	OutputDir   string
	Content     []string
	Briefing    string
	NumSegments int
	Language    string
	Dialect     string
	Profile     *profile.SpeakerProfile
	Emotions    *profile.EmotionConfig
	Speeds      *profile.SpeedConfig

	// Stage outputs.
	Outline    *Outline
	Transcript []Dialogue
	ClipPaths  []string
	FinalPath  string
}

// validate checks the inputs a run cannot start without. Failures here are
// configuration errors and abort immediately.
func (s *State) validate() error {
	if s.EpisodeName == "" {
		return fmt.Errorf("episode name is required")
	}
	if s.OutputDir == "" {
		return fmt.Errorf("output directory is required")
	}
	if len(s.Content) == 0 {
		return fmt.Errorf("at least one content item is required")
	}
	if s.Briefing == "" {
		return fmt.Errorf("briefing is required")
	}
	if s.NumSegments < 1 {
		return fmt.Errorf("num segments must be at least 1, got %d", s.NumSegments)
	}
	if s.Profile == nil {
		return fmt.Errorf("speaker profile is required")
	}
	if err := s.Profile.Validate(); err != nil {
		return err
	}
	if s.Emotions == nil {
		return fmt.Errorf("emotion config is required")
	}
	return nil
}
