package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

var ErrMissingRequired = errors.New("missing required configuration")

type Config struct {
	// Server
	ServerPort int `envconfig:"SERVER_PORT" default:"8081"`

	// Gemini
	GeminiAPIKey    string `envconfig:"GEMINI_API_KEY"`
	EmbeddingModel  string `envconfig:"EMBEDDING_MODEL" default:"gemini-embedding-001"`
	CompletionModel string `envconfig:"COMPLETION_MODEL" default:"gemini-1.5-flash"`
	SystemPrompt    string `envconfig:"SYSTEM_PROMPT" default:"You are a helpful assistant that explains economic and financial terms in plain language."`

	// Knowledge base source
	DocumentPath string `envconfig:"DOCUMENT_PATH"`
	StartMarker  string `envconfig:"CONTENT_START_MARKER"`
	EndMarker    string `envconfig:"CONTENT_END_MARKER"`

	// Layout parsing
	HeadingFontSize float64 `envconfig:"HEADING_FONT_SIZE" default:"11.5"`
	HeaderYLimit    float64 `envconfig:"HEADER_Y_LIMIT" default:"70"`
	FooterYLimit    float64 `envconfig:"FOOTER_Y_LIMIT" default:"770"`

	// Chunking
	ChunkMaxChars int `envconfig:"CHUNK_MAX_CHARS" default:"10000"`
	ChunkMinChars int `envconfig:"CHUNK_MIN_CHARS" default:"24"`

	// Ingestion
	WorkerPoolSize          int `envconfig:"WORKER_POOL_SIZE" default:"8"`
	QueueCapacity           int `envconfig:"QUEUE_CAPACITY" default:"512"`
	EmbedCallTimeoutSeconds int `envconfig:"EMBED_CALL_TIMEOUT_SECONDS" default:"60"`

	// Answering
	TopK                  int `envconfig:"TOP_K" default:"3"`
	RequestTimeoutSeconds int `envconfig:"REQUEST_TIMEOUT_SECONDS" default:"60"`
}

func Load() (*Config, error) {
	// Env vars may already be set in the shell; a missing .env is fine.
	_ = godotenv.Load(".env")

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.DocumentPath == "" {
		return fmt.Errorf("%w: DOCUMENT_PATH", ErrMissingRequired)
	}
	if c.GeminiAPIKey == "" {
		return fmt.Errorf("%w: GEMINI_API_KEY", ErrMissingRequired)
	}
	if c.WorkerPoolSize <= 0 {
		return fmt.Errorf("WORKER_POOL_SIZE must be positive, got %d", c.WorkerPoolSize)
	}
	if c.QueueCapacity <= 0 {
		return fmt.Errorf("QUEUE_CAPACITY must be positive, got %d", c.QueueCapacity)
	}
	if c.EmbedCallTimeoutSeconds <= 0 {
		return fmt.Errorf("EMBED_CALL_TIMEOUT_SECONDS must be positive, got %d", c.EmbedCallTimeoutSeconds)
	}
	if c.ChunkMaxChars <= c.ChunkMinChars {
		return fmt.Errorf("CHUNK_MAX_CHARS (%d) must exceed CHUNK_MIN_CHARS (%d)", c.ChunkMaxChars, c.ChunkMinChars)
	}
	return nil
}

func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

func (c *Config) EmbedCallTimeout() time.Duration {
	return time.Duration(c.EmbedCallTimeoutSeconds) * time.Second
}
