package tts

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// QwenConfig holds configuration for the DashScope Qwen speech backend.
type QwenConfig struct {
	APIKey  string
	BaseURL string // default: "https://dashscope-intl.aliyuncs.com/api/v1"
	Model   string // default: "qwen3-tts-flash"
}

// QwenSynthesizer renders speech through Alibaba DashScope's Qwen TTS API.
type QwenSynthesizer struct {
	cfg        QwenConfig
	httpClient *http.Client
}

// NewQwenSynthesizer creates a Qwen backend with defaults applied.
func NewQwenSynthesizer(cfg QwenConfig) *QwenSynthesizer {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://dashscope-intl.aliyuncs.com/api/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "qwen3-tts-flash"
	}
	return &QwenSynthesizer{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

func (q *QwenSynthesizer) Name() string { return "qwen" }

// Capability reports Qwen's static synthesis facts: Chinese dialect tags,
// style instructions, reference-audio cloning, and paralinguistic tags.
func (q *QwenSynthesizer) Capability() Capability {
	return Capability{
		Languages:            []string{"zh", "en", "ja", "ko"},
		Dialects:             []string{"mandarin", "sichuanese", "henanese", "cantonese", "shanghainese"},
		SupportsInstructions: true,
		SupportsCustomVoice:  true,
		DefaultVoices:        []string{"Cherry", "Ethan", "Chelsie", "Serena"},
		SupportsVoiceTags:    true,
		VoiceTags:            []string{"laughter", "sigh", "breath", "cough"},
	}
}

// dialectTags maps dialect names to the inline control tags the Qwen models
// recognize at the start of the text. Mandarin carries no tag.
var dialectTags = map[string]string{
	"sichuan":       "<|Sichuan|>",
	"sichuanese":    "<|Sichuan|>",
	"henan":         "<|Henan|>",
	"henanese":      "<|Henan|>",
	"yue":           "<|Yue|>",
	"cantonese":     "<|Yue|>",
	"shanghainese":  "<|Shanghai|>",
	"mandarin":      "",
	"chinese":       "",
}

// dialectTag returns the inline tag for a dialect name, or "" when the
// dialect has no tag (or is unknown).
func dialectTag(dialect string) string {
	return dialectTags[strings.ToLower(strings.TrimSpace(dialect))]
}

type qwenSpeechInput struct {
	Text           string `json:"text"`
	Voice          string `json:"voice,omitempty"`
	Instructions   string `json:"instructions,omitempty"`
	ReferenceAudio string `json:"reference_audio,omitempty"`
	ReferenceText  string `json:"reference_text,omitempty"`
}

type qwenSpeechRequest struct {
	Model      string          `json:"model"`
	Input      qwenSpeechInput `json:"input"`
	Parameters struct {
		Format string  `json:"format"`
		Rate   float64 `json:"rate,omitempty"`
	} `json:"parameters"`
}

type qwenSpeechResponse struct {
	Output struct {
		Audio struct {
			URL  string `json:"url"`
			Data string `json:"data"` // base64 when returned inline
		} `json:"audio"`
	} `json:"output"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Synthesize converts text to MP3 and writes it to req.OutputPath. Dialects
// are applied as inline control tags ahead of the text.
func (q *QwenSynthesizer) Synthesize(ctx context.Context, req Request) error {
	text := req.Text
	if tag := dialectTag(req.Dialect); tag != "" && !strings.HasPrefix(text, tag) {
		text = tag + text
	}

	body := qwenSpeechRequest{Model: q.cfg.Model}
	body.Input = qwenSpeechInput{
		Text:          text,
		Voice:         req.Voice,
		Instructions:  req.Instructions,
		ReferenceText: req.ReferenceText,
	}
	if req.Voice == "" || req.Voice == "default" {
		body.Input.Voice = "Cherry"
	}
	if len(req.ReferenceAudio) > 0 {
		body.Input.ReferenceAudio = base64.StdEncoding.EncodeToString(req.ReferenceAudio)
		body.Input.Voice = "custom"
	}
	body.Parameters.Format = "mp3"
	if req.Speed > 0 {
		body.Parameters.Rate = req.Speed
	}

	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	url := q.cfg.BaseURL + "/services/aigc/multimodal-generation/generation"
	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(data))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+q.cfg.APIKey)

	resp, err := q.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("tts request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("tts failed (status %d): %s", resp.StatusCode, string(respBody))
	}

	var sr qwenSpeechResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if sr.Code != "" {
		return fmt.Errorf("tts failed: %s: %s", sr.Code, sr.Message)
	}

	audio, err := q.fetchAudio(ctx, sr)
	if err != nil {
		return err
	}
	return writeClip(req.OutputPath, audio)
}

// fetchAudio resolves the response's audio payload, either inline base64 or
// a short-lived download URL.
func (q *QwenSynthesizer) fetchAudio(ctx context.Context, sr qwenSpeechResponse) ([]byte, error) {
	if sr.Output.Audio.Data != "" {
		audio, err := base64.StdEncoding.DecodeString(sr.Output.Audio.Data)
		if err != nil {
			return nil, fmt.Errorf("decode audio payload: %w", err)
		}
		return audio, nil
	}

	if sr.Output.Audio.URL == "" {
		return nil, fmt.Errorf("tts response carried no audio")
	}

	httpReq, err := http.NewRequestWithContext(ctx, "GET", sr.Output.Audio.URL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := q.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("fetch audio: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch audio failed (status %d)", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
