package profile

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Emotion describes one speaking style. Its text lines are passed verbatim
// to synthesis backends that accept style instructions.
type Emotion struct {
	Name        string   `json:"name"`
	Text        []string `json:"text"`
	Category    []string `json:"category,omitempty"`
	Description string   `json:"description,omitempty"`
}

// Instructions joins the emotion's delivery notes into one instruction block.
func (e *Emotion) Instructions() string {
	return strings.Join(e.Text, "\n")
}

// EmotionConfig is the emotion vocabulary for a run. Loaded once, immutable.
type EmotionConfig struct {
	Emotions map[string]Emotion `json:"emotions"`
}

// Get returns the emotion by name.
func (c *EmotionConfig) Get(name string) (Emotion, error) {
	e, ok := c.Emotions[name]
	if !ok {
		return Emotion{}, fmt.Errorf("emotion %q not found, available: %v", name, c.Names())
	}
	return e, nil
}

// Names lists all emotion names.
func (c *EmotionConfig) Names() []string {
	names := make([]string, 0, len(c.Emotions))
	for name := range c.Emotions {
		names = append(names, name)
	}
	return names
}

// All returns every configured emotion.
func (c *EmotionConfig) All() []Emotion {
	all := make([]Emotion, 0, len(c.Emotions))
	for _, e := range c.Emotions {
		all = append(all, e)
	}
	return all
}

// LoadEmotionConfig reads an emotion configuration file.
func LoadEmotionConfig(path string) (*EmotionConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read emotion config: %w", err)
	}

	var cfg EmotionConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse emotion config %s: %w", path, err)
	}
	return &cfg, nil
}
