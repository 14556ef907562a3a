package profile

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func validProfile() *SpeakerProfile {
	return &SpeakerProfile{
		Provider: "openai",
		Model:    "tts-1",
		Speakers: []Speaker{
			{Name: "Ada", VoiceID: "alloy"},
			{Name: "Ben", VoiceID: "onyx"},
		},
	}
}

func TestProfileValidate(t *testing.T) {
	if err := validProfile().Validate(); err != nil {
		t.Fatalf("valid profile rejected: %v", err)
	}

	tests := []struct {
		name    string
		mutate  func(*SpeakerProfile)
		wantErr string
	}{
		{
			name:    "missing provider",
			mutate:  func(p *SpeakerProfile) { p.Provider = "" },
			wantErr: "tts_provider is required",
		},
		{
			name:    "no speakers",
			mutate:  func(p *SpeakerProfile) { p.Speakers = nil },
			wantErr: "between 1 and 4",
		},
		{
			name: "too many speakers",
			mutate: func(p *SpeakerProfile) {
				p.Speakers = make([]Speaker, 5)
				for i := range p.Speakers {
					p.Speakers[i] = Speaker{Name: string(rune('A' + i)), VoiceID: string(rune('a' + i))}
				}
			},
			wantErr: "between 1 and 4",
		},
		{
			name:    "empty name",
			mutate:  func(p *SpeakerProfile) { p.Speakers[0].Name = "  " },
			wantErr: "name cannot be empty",
		},
		{
			name:    "duplicate name",
			mutate:  func(p *SpeakerProfile) { p.Speakers[1].Name = "Ada" },
			wantErr: "duplicate speaker name",
		},
		{
			name:    "duplicate voice",
			mutate:  func(p *SpeakerProfile) { p.Speakers[1].VoiceID = "alloy" },
			wantErr: "duplicate voice ID",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validProfile()
			tt.mutate(p)
			err := p.Validate()
			if err == nil {
				t.Fatal("expected validation error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want substring %q", err, tt.wantErr)
			}
		})
	}
}

func TestProfileValidateCustomVoices(t *testing.T) {
	p := &SpeakerProfile{
		Provider: "qwen",
		Speakers: []Speaker{
			{Name: "Ada", VoiceID: "custom", CustomVoice: "ada.wav"},
			{Name: "Ben", VoiceID: "custom", CustomVoice: "ben.wav"},
		},
	}
	if err := p.Validate(); err != nil {
		t.Fatalf("distinct custom voices rejected: %v", err)
	}

	p.Speakers[1].CustomVoice = "ada.wav"
	if err := p.Validate(); err == nil {
		t.Error("expected error for two speakers sharing one custom voice")
	}
}

func TestVoiceMapping(t *testing.T) {
	p := validProfile()
	m := p.VoiceMapping()
	if m["Ada"] != "alloy" || m["Ben"] != "onyx" {
		t.Errorf("unexpected mapping: %v", m)
	}
}

func TestCustomVoiceMappingOnlyIncludesCustom(t *testing.T) {
	p := validProfile()
	p.Speakers[0].CustomVoice = "sample.wav"
	m := p.CustomVoiceMapping()
	if len(m) != 1 || m["Ada"] != "sample.wav" {
		t.Errorf("unexpected custom mapping: %v", m)
	}
}

func TestSpeakerConfigProfileLookup(t *testing.T) {
	cfg := &SpeakerConfig{Profiles: map[string]*SpeakerProfile{"default": validProfile()}}

	if _, err := cfg.Profile("default"); err != nil {
		t.Errorf("lookup failed: %v", err)
	}
	if _, err := cfg.Profile("missing"); err == nil {
		t.Error("expected error for unknown profile")
	}

	cfg.Profiles["broken"] = &SpeakerProfile{Provider: "openai"}
	if _, err := cfg.Profile("broken"); err == nil {
		t.Error("expected validation error for broken profile")
	}
}

func TestLoadSpeakerConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "speakers.json")

	data := `{"profiles":{"duo":{"tts_provider":"openai","tts_model":"tts-1","speakers":[{"name":"Ada","voice_id":"alloy"}]}}}`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadSpeakerConfig(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	p, err := cfg.Profile("duo")
	if err != nil {
		t.Fatalf("profile lookup failed: %v", err)
	}
	if p.Speakers[0].VoiceID != "alloy" {
		t.Errorf("voice_id = %q, want alloy", p.Speakers[0].VoiceID)
	}

	empty := filepath.Join(dir, "empty.json")
	if err := os.WriteFile(empty, []byte(`{"profiles":{}}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadSpeakerConfig(empty); err == nil {
		t.Error("expected error for config without profiles")
	}
}

func TestEmotionInstructions(t *testing.T) {
	e := Emotion{Name: "warm", Text: []string{"Speak softly.", "Slow down at the end."}}
	want := "Speak softly.\nSlow down at the end."
	if got := e.Instructions(); got != want {
		t.Errorf("Instructions() = %q, want %q", got, want)
	}
}

func TestEmotionConfigGet(t *testing.T) {
	cfg := &EmotionConfig{Emotions: map[string]Emotion{
		"neutral": {Name: "neutral", Text: []string{"Speak evenly."}},
	}}

	if _, err := cfg.Get("neutral"); err != nil {
		t.Errorf("get failed: %v", err)
	}
	if _, err := cfg.Get("angry"); err == nil {
		t.Error("expected error for unknown emotion")
	}
}

func TestSpeedValueFallback(t *testing.T) {
	c := DefaultSpeedConfig()
	if v := c.Value("fast"); v != 1.1 {
		t.Errorf("fast = %v, want 1.1", v)
	}
	if v := c.Value("warp"); v != 1.0 {
		t.Errorf("unknown speed = %v, want 1.0 fallback", v)
	}
}

func TestLoadSpeedConfigDefaults(t *testing.T) {
	c, err := LoadSpeedConfig("")
	if err != nil {
		t.Fatalf("empty path should use defaults: %v", err)
	}
	if c.Speeds["normal"] != 1.0 {
		t.Errorf("normal = %v, want 1.0", c.Speeds["normal"])
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "speeds.json")
	if err := os.WriteFile(path, []byte(`{"speeds":{"crawl":0.7}}`), 0o644); err != nil {
		t.Fatal(err)
	}
	c, err = LoadSpeedConfig(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if c.Speeds["crawl"] != 0.7 {
		t.Errorf("crawl = %v, want 0.7", c.Speeds["crawl"])
	}
}
