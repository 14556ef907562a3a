package tts

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// PiperConfig holds configuration for the local Piper backend.
type PiperConfig struct {
	BinPath   string // default: "piper"
	ModelPath string // required: path to the .onnx voice model
}

// PiperSynthesizer renders speech with a local Piper binary via subprocess.
// Voice selection is controlled by the model file, not runtime flags.
type PiperSynthesizer struct {
	cfg PiperConfig
}

// NewPiperSynthesizer creates a Piper backend with defaults applied.
func NewPiperSynthesizer(cfg PiperConfig) *PiperSynthesizer {
	if cfg.BinPath == "" {
		cfg.BinPath = "piper"
	}
	return &PiperSynthesizer{cfg: cfg}
}

func (p *PiperSynthesizer) Name() string { return "piper" }

// Capability reports Piper's static synthesis facts: one voice per model
// file, no instructions, no cloning, no dialects.
func (p *PiperSynthesizer) Capability() Capability {
	return Capability{
		Languages:            []string{"en"},
		SupportsInstructions: false,
		SupportsCustomVoice:  false,
		DefaultVoices:        []string{"default"},
		SupportsVoiceTags:    false,
	}
}

// Synthesize pipes text into Piper via stdin and writes its audio output to
// req.OutputPath.
func (p *PiperSynthesizer) Synthesize(ctx context.Context, req Request) error {
	if p.cfg.ModelPath == "" {
		return fmt.Errorf("piper model path is required (set TTS_PIPER_MODEL)")
	}

	args := []string{"--model", p.cfg.ModelPath, "--output-raw"}
	if req.Speed > 0 && req.Speed != 1.0 {
		// Piper expresses speed as a length multiplier, the inverse of rate.
		args = append(args, "--length-scale", fmt.Sprintf("%.2f", 1.0/req.Speed))
	}

	cmd := exec.CommandContext(ctx, p.cfg.BinPath, args...)
	cmd.Stdin = strings.NewReader(req.Text)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("piper failed: %w (stderr: %s)", err, stderr.String())
	}

	return writeClip(req.OutputPath, stdout.Bytes())
}
