package tts

import (
	"context"
	"strings"
)

// Capability describes the static facts about a synthesis backend. Higher
// stages use it to decide what to request: whether style instructions are
// honored, whether a custom reference voice can be cloned, which dialects
// exist, and whether paralinguistic voice tags may appear in dialogue text.
type Capability struct {
	Languages            []string `json:"supported_languages"`
	Dialects             []string `json:"supported_dialects,omitempty"`
	SupportsInstructions bool     `json:"supports_instructions"`
	SupportsCustomVoice  bool     `json:"supports_custom_voice"`
	DefaultVoices        []string `json:"default_voices"`
	SupportsVoiceTags    bool     `json:"supports_voice_tags"`
	VoiceTags            []string `json:"available_voice_tags,omitempty"`
}

// SupportsDialect reports whether the backend handles the given dialect tag.
func (c Capability) SupportsDialect(dialect string) bool {
	for _, d := range c.Dialects {
		if strings.EqualFold(d, dialect) {
			return true
		}
	}
	return false
}

// SupportsLanguage reports whether the backend can speak the given language.
func (c Capability) SupportsLanguage(lang string) bool {
	for _, l := range c.Languages {
		if strings.EqualFold(l, lang) {
			return true
		}
	}
	return false
}

// Request holds the parameters for synthesizing one dialogue line into a
// file at OutputPath.
type Request struct {
	Text           string
	Voice          string
	Speed          float64
	Instructions   string // free-form style text; backends may ignore
	ReferenceAudio []byte // custom-voice sample for cloning
	ReferenceText  string // transcript of the reference audio, if known
	Dialect        string // regional variant tag; empty means default
	OutputPath     string
}

// Synthesizer is the speech-synthesis collaborator: it renders text to an
// audio file and reports its static capabilities.
type Synthesizer interface {
	Synthesize(ctx context.Context, req Request) error
	Capability() Capability
	Name() string
}
