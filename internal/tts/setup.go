package tts

import (
	"github.com/podica/podica/internal/config"
)

// NewRegistryFromConfig builds the backend registry from environment
// configuration. Backends without credentials are not registered, so a
// profile naming one fails fast at lookup time.
func NewRegistryFromConfig(cfg config.TTSConfig) *Registry {
	reg := NewRegistry()

	if cfg.OpenAIKey != "" {
		reg.Register("openai", func(model string) (Synthesizer, error) {
			return NewOpenAISynthesizer(OpenAIConfig{
				APIKey:  cfg.OpenAIKey,
				BaseURL: cfg.OpenAIBaseURL,
				Model:   model,
			}), nil
		})
	}

	if cfg.ElevenLabsKey != "" {
		reg.Register("elevenlabs", func(model string) (Synthesizer, error) {
			return NewElevenLabsSynthesizer(ElevenLabsConfig{
				APIKey:  cfg.ElevenLabsKey,
				BaseURL: cfg.ElevenLabsBaseURL,
				Model:   model,
			}), nil
		})
	}

	if cfg.DashScopeKey != "" {
		reg.Register("qwen", func(model string) (Synthesizer, error) {
			return NewQwenSynthesizer(QwenConfig{
				APIKey:  cfg.DashScopeKey,
				BaseURL: cfg.DashScopeBaseURL,
				Model:   model,
			}), nil
		})
	}

	if cfg.PiperModel != "" {
		reg.Register("piper", func(string) (Synthesizer, error) {
			return NewPiperSynthesizer(PiperConfig{
				BinPath:   cfg.PiperBin,
				ModelPath: cfg.PiperModel,
			}), nil
		})
	}

	return reg
}
