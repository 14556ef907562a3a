package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// OpenAIConfig holds configuration for the OpenAI speech backend.
type OpenAIConfig struct {
	APIKey  string
	BaseURL string // default: "https://api.openai.com/v1"
	Model   string // default: "tts-1"
}

// OpenAISynthesizer renders speech through OpenAI's audio API.
type OpenAISynthesizer struct {
	cfg        OpenAIConfig
	httpClient *http.Client
}

// NewOpenAISynthesizer creates an OpenAI backend with defaults applied.
func NewOpenAISynthesizer(cfg OpenAIConfig) *OpenAISynthesizer {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "tts-1"
	}
	return &OpenAISynthesizer{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

func (o *OpenAISynthesizer) Name() string { return "openai" }

// Capability reports OpenAI's static synthesis facts: preset voices only,
// no style instructions, no custom-voice cloning, no paralinguistic tags.
func (o *OpenAISynthesizer) Capability() Capability {
	return Capability{
		Languages:            []string{"en", "zh"},
		Dialects:             []string{"mandarin"},
		SupportsInstructions: false,
		SupportsCustomVoice:  false,
		DefaultVoices:        []string{"alloy", "echo", "fable", "onyx", "nova", "shimmer"},
		SupportsVoiceTags:    false,
	}
}

// Synthesize converts text to MP3 and writes it to req.OutputPath.
func (o *OpenAISynthesizer) Synthesize(ctx context.Context, req Request) error {
	voice := req.Voice
	if voice == "" || voice == "default" {
		voice = "alloy"
	}

	body := map[string]any{
		"model": o.cfg.Model,
		"input": req.Text,
		"voice": voice,
	}
	if req.Speed > 0 {
		body["speed"] = req.Speed
	}

	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", o.cfg.BaseURL+"/audio/speech", bytes.NewReader(data))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+o.cfg.APIKey)

	resp, err := o.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("tts request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("tts failed (status %d): %s", resp.StatusCode, string(respBody))
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read audio: %w", err)
	}

	return writeClip(req.OutputPath, audio)
}

// writeClip writes audio bytes to path, creating parent directories.
func writeClip(path string, audio []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create clip directory: %w", err)
	}
	if err := os.WriteFile(path, audio, 0o644); err != nil {
		return fmt.Errorf("write clip %s: %w", path, err)
	}
	return nil
}
