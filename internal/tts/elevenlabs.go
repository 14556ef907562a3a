package tts

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ElevenLabsConfig holds configuration for the ElevenLabs backend.
type ElevenLabsConfig struct {
	APIKey  string
	BaseURL string // default: "https://api.elevenlabs.io/v1"
	Model   string // default: "eleven_multilingual_v2"
}

// ElevenLabsSynthesizer renders speech through the ElevenLabs API.
type ElevenLabsSynthesizer struct {
	cfg        ElevenLabsConfig
	httpClient *http.Client
}

// NewElevenLabsSynthesizer creates an ElevenLabs backend with defaults applied.
func NewElevenLabsSynthesizer(cfg ElevenLabsConfig) *ElevenLabsSynthesizer {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.elevenlabs.io/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "eleven_multilingual_v2"
	}
	return &ElevenLabsSynthesizer{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

func (e *ElevenLabsSynthesizer) Name() string { return "elevenlabs" }

// Capability reports ElevenLabs' static synthesis facts: multilingual,
// voice cloning via reference audio, style settings, and a small set of
// paralinguistic tags.
func (e *ElevenLabsSynthesizer) Capability() Capability {
	return Capability{
		Languages: []string{
			"en", "zh", "ja", "ko", "es", "fr", "de", "it", "pt",
			"pl", "tr", "ru", "nl", "cs", "ar", "hu", "sv",
		},
		Dialects:             []string{"mandarin"},
		SupportsInstructions: true,
		SupportsCustomVoice:  true,
		DefaultVoices:        []string{"default"},
		SupportsVoiceTags:    true,
		VoiceTags:            []string{"laughter", "sigh", "breath", "pause"},
	}
}

type elevenVoiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
	Speed           float64 `json:"speed,omitempty"`
}

type elevenSpeechRequest struct {
	Text          string              `json:"text"`
	ModelID       string              `json:"model_id"`
	VoiceSettings elevenVoiceSettings `json:"voice_settings"`
	// Style hints and cloning reference are passed through optional fields;
	// the API ignores what the selected model does not support.
	NextText       string `json:"next_text,omitempty"`
	ReferenceAudio string `json:"reference_audio,omitempty"`
}

// Synthesize converts text to MP3 and writes it to req.OutputPath.
func (e *ElevenLabsSynthesizer) Synthesize(ctx context.Context, req Request) error {
	voice := req.Voice
	if voice == "" || voice == "default" {
		voice = "21m00Tcm4TlvDq8ikWAM" // Rachel, the API's stock voice
	}

	body := elevenSpeechRequest{
		Text:    req.Text,
		ModelID: e.cfg.Model,
		VoiceSettings: elevenVoiceSettings{
			Stability:       0.5,
			SimilarityBoost: 0.75,
		},
	}
	if req.Speed > 0 {
		body.VoiceSettings.Speed = req.Speed
	}
	if req.Instructions != "" {
		// ElevenLabs has no dedicated instruction field; style text is
		// supplied as unspoken surrounding context.
		body.NextText = req.Instructions
	}
	if len(req.ReferenceAudio) > 0 {
		body.ReferenceAudio = base64.StdEncoding.EncodeToString(req.ReferenceAudio)
	}

	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/text-to-speech/%s", e.cfg.BaseURL, voice)
	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(data))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("xi-api-key", e.cfg.APIKey)
	httpReq.Header.Set("Accept", "audio/mpeg")

	resp, err := e.httpClient.Do(httpReq)
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
