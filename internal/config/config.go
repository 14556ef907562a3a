package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Auth     AuthConfig
	LLM      LLMConfig
	TTS      TTSConfig
	Pipeline PipelineConfig
	Profiles ProfileConfig
	Library  LibraryConfig
	Storage  StorageConfig
	Notify   NotifyConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type DatabaseConfig struct {
	URL            string
	MaxConns       int
	MinConns       int
	MigrationsPath string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type AuthConfig struct {
	JWTSecret    string
	APIKeys      []string
	APIKeyHeader string
}

type LLMConfig struct {
	OpenAIKey        string
	AnthropicKey     string
	OllamaURL        string
	DefaultProvider  string
	DefaultModel     string
	FallbackProvider string
	MaxRetries       int

	// Per-stage overrides; empty falls back to the default provider/model.
	QAProvider         string
	QAModel            string
	OutlineProvider    string
	OutlineModel       string
	TranscriptProvider string
	TranscriptModel    string
}

// StageModel resolves a per-stage provider/model pair, falling back to
// the gateway defaults.
func (c LLMConfig) StageModel(provider, model string) (string, string) {
	if provider == "" {
		provider = c.DefaultProvider
	}
	if model == "" {
		model = c.DefaultModel
	}
	return provider, model
}

type TTSConfig struct {
	OpenAIKey     string
	OpenAIBaseURL string

	ElevenLabsKey     string
	ElevenLabsBaseURL string

	DashScopeKey     string
	DashScopeBaseURL string

	PiperBin   string
	PiperModel string
}

type PipelineConfig struct {
	BatchSize  int
	BatchPause time.Duration
	OutputDir  string
}

type ProfileConfig struct {
	SpeakersPath string
	EmotionsPath string
	SpeedsPath   string
}

type LibraryConfig struct {
	EmbeddingProvider string
	EmbeddingModel    string
	TopK              int
}

type StorageConfig struct {
	SupabaseURL string
	SupabaseKey string
	Bucket      string
}

type NotifyConfig struct {
	// Secret signs outbound callback payloads; empty disables signing.
	Secret string
}

func Load() (*Config, error) {
	port, err := getEnvInt("SERVER_PORT", 8080)
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT: %w", err)
	}

	maxConns, err := getEnvInt("DB_MAX_CONNS", 20)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_CONNS: %w", err)
	}

	minConns, err := getEnvInt("DB_MIN_CONNS", 5)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MIN_CONNS: %w", err)
	}

	redisDB, err := getEnvInt("REDIS_DB", 0)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	maxRetries, err := getEnvInt("LLM_MAX_RETRIES", 0)
	if err != nil {
		return nil, fmt.Errorf("invalid LLM_MAX_RETRIES: %w", err)
	}

	batchSize, err := getEnvInt("TTS_BATCH_SIZE", 5)
	if err != nil {
		return nil, fmt.Errorf("invalid TTS_BATCH_SIZE: %w", err)
	}

	topK, err := getEnvInt("LIBRARY_TOP_K", 5)
	if err != nil {
		return nil, fmt.Errorf("invalid LIBRARY_TOP_K: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: port,
		},
		Database: DatabaseConfig{
			URL:            getEnv("DATABASE_URL", ""),
			MaxConns:       maxConns,
			MinConns:       minConns,
			MigrationsPath: getEnv("MIGRATIONS_PATH", "migrations"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		Auth: AuthConfig{
			JWTSecret:    getEnv("JWT_SECRET", ""),
			APIKeys:      splitList(getEnv("API_KEYS", "")),
			APIKeyHeader: getEnv("API_KEY_HEADER", "X-API-Key"),
		},
		LLM: LLMConfig{
			OpenAIKey:          getEnv("OPENAI_API_KEY", ""),
			AnthropicKey:       getEnv("ANTHROPIC_API_KEY", ""),
			OllamaURL:          getEnv("OLLAMA_URL", "http://localhost:11434"),
			DefaultProvider:    getEnv("LLM_DEFAULT_PROVIDER", "openai"),
			DefaultModel:       getEnv("LLM_DEFAULT_MODEL", "gpt-4o-mini"),
			FallbackProvider:   getEnv("LLM_FALLBACK_PROVIDER", ""),
			MaxRetries:         maxRetries,
			QAProvider:         getEnv("QA_PROVIDER", ""),
			QAModel:            getEnv("QA_MODEL", ""),
			OutlineProvider:    getEnv("OUTLINE_PROVIDER", ""),
			OutlineModel:       getEnv("OUTLINE_MODEL", ""),
			TranscriptProvider: getEnv("TRANSCRIPT_PROVIDER", ""),
			TranscriptModel:    getEnv("TRANSCRIPT_MODEL", ""),
		},
		TTS: TTSConfig{
			OpenAIKey:         getEnv("OPENAI_API_KEY", ""),
			OpenAIBaseURL:     getEnv("TTS_OPENAI_BASE_URL", ""),
			ElevenLabsKey:     getEnv("ELEVENLABS_API_KEY", ""),
			ElevenLabsBaseURL: getEnv("TTS_ELEVENLABS_BASE_URL", ""),
			DashScopeKey:      getEnv("DASHSCOPE_API_KEY", ""),
			DashScopeBaseURL:  getEnv("TTS_DASHSCOPE_BASE_URL", ""),
			PiperBin:          getEnv("TTS_PIPER_BIN", "piper"),
			PiperModel:        getEnv("TTS_PIPER_MODEL", ""),
		},
		Pipeline: PipelineConfig{
			BatchSize:  batchSize,
			BatchPause: time.Second,
			OutputDir:  getEnv("OUTPUT_DIR", "output"),
		},
		Profiles: ProfileConfig{
			SpeakersPath: getEnv("SPEAKERS_CONFIG", "configs/speakers.json"),
			EmotionsPath: getEnv("EMOTIONS_CONFIG", "configs/emotions.json"),
			SpeedsPath:   getEnv("SPEEDS_CONFIG", ""),
		},
		Library: LibraryConfig{
			EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", "openai"),
			EmbeddingModel:    getEnv("EMBEDDING_MODEL", "text-embedding-3-small"),
			TopK:              topK,
		},
		Storage: StorageConfig{
			SupabaseURL: getEnv("SUPABASE_URL", ""),
			SupabaseKey: getEnv("SUPABASE_SERVICE_KEY", ""),
			Bucket:      getEnv("STORAGE_BUCKET", "episodes"),
		},
		Notify: NotifyConfig{
			Secret: getEnv("CALLBACK_SECRET", ""),
		},
	}

	return cfg, nil
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func (c *Config) Validate() error {
	var missing []string
	if c.Database.URL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	if c.Auth.JWTSecret == "" && len(c.Auth.APIKeys) == 0 {
		missing = append(missing, "JWT_SECRET or API_KEYS")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required env vars: %s", strings.Join(missing, ", "))
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	return strconv.Atoi(v)
}

func splitList(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
