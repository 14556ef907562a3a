package profile

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Speaker is one voice in a speaker profile. Backstory and personality are
// only used as generation context for the transcript model.
type Speaker struct {
	Name                string `json:"name"`
	VoiceID             string `json:"voice_id"`
	Backstory           string `json:"backstory,omitempty"`
	Personality         string `json:"personality,omitempty"`
	CustomVoice         string `json:"custom_voice,omitempty"`          // file path or base64 audio payload
	CustomVoiceFilename string `json:"custom_voice_filename,omitempty"` // original upload filename
}

// SpeakerProfile groups 1-4 speakers sharing one synthesis backend.
type SpeakerProfile struct {
	Provider string    `json:"tts_provider"`
	Model    string    `json:"tts_model"`
	Speakers []Speaker `json:"speakers"`
}

// Validate checks the profile invariants: 1-4 speakers, unique names,
// unique voice IDs. Two speakers may both use the "custom" voice ID as
// long as their custom-voice references differ.
func (p *SpeakerProfile) Validate() error {
	if p.Provider == "" {
		return fmt.Errorf("speaker profile: tts_provider is required")
	}
	if len(p.Speakers) < 1 || len(p.Speakers) > 4 {
		return fmt.Errorf("speaker profile: must have between 1 and 4 speakers, got %d", len(p.Speakers))
	}

	names := make(map[string]bool, len(p.Speakers))
	voiceIDs := make(map[string]bool, len(p.Speakers))
	for _, s := range p.Speakers {
		name := strings.TrimSpace(s.Name)
		if name == "" {
			return fmt.Errorf("speaker profile: speaker name cannot be empty")
		}
		if names[name] {
			return fmt.Errorf("speaker profile: duplicate speaker name %q", name)
		}
		names[name] = true

		vid := s.VoiceID
		if vid == "custom" && s.CustomVoice != "" {
			vid = "custom:" + s.CustomVoice
		}
		if voiceIDs[vid] {
			return fmt.Errorf("speaker profile: duplicate voice ID %q", s.VoiceID)
		}
		voiceIDs[vid] = true
	}
	return nil
}

// SpeakerNames returns the speaker names in profile order.
func (p *SpeakerProfile) SpeakerNames() []string {
	names := make([]string, len(p.Speakers))
	for i, s := range p.Speakers {
		names[i] = s.Name
	}
	return names
}

// VoiceMapping returns speaker name -> voice ID.
func (p *SpeakerProfile) VoiceMapping() map[string]string {
	m := make(map[string]string, len(p.Speakers))
	for _, s := range p.Speakers {
		m[s.Name] = s.VoiceID
	}
	return m
}

// CustomVoiceMapping returns speaker name -> custom voice reference for
// speakers that have one.
func (p *SpeakerProfile) CustomVoiceMapping() map[string]string {
	m := make(map[string]string)
	for _, s := range p.Speakers {
		if s.CustomVoice != "" {
			m[s.Name] = s.CustomVoice
		}
	}
	return m
}

// SpeakerByName looks up a speaker by name.
func (p *SpeakerProfile) SpeakerByName(name string) (*Speaker, error) {
	for i := range p.Speakers {
		if p.Speakers[i].Name == name {
			return &p.Speakers[i], nil
		}
	}
	return nil, fmt.Errorf("speaker %q not found in profile", name)
}

// SpeakerConfig holds named speaker profiles loaded from a JSON file.
type SpeakerConfig struct {
	Profiles map[string]*SpeakerProfile `json:"profiles"`
}

// Profile returns the named profile after validating it.
func (c *SpeakerConfig) Profile(name string) (*SpeakerProfile, error) {
	p, ok := c.Profiles[name]
	if !ok {
		return nil, fmt.Errorf("speaker profile %q not found", name)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// ProfileNames lists the available profile names.
func (c *SpeakerConfig) ProfileNames() []string {
	names := make([]string, 0, len(c.Profiles))
	for name := range c.Profiles {
		names = append(names, name)
	}
	return names
}

// LoadSpeakerConfig reads a speaker configuration file.
func LoadSpeakerConfig(path string) (*SpeakerConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read speaker config: %w", err)
	}

	var cfg SpeakerConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse speaker config %s: %w", path, err)
	}
	if len(cfg.Profiles) == 0 {
		return nil, fmt.Errorf("speaker config %s: at least one profile must be defined", path)
	}
	return &cfg, nil
}
