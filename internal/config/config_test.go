package config_test

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"termchat/internal/config"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("DOCUMENT_PATH", "testdata/glossary.pdf")
	t.Setenv("GEMINI_API_KEY", "test-key")
}

func TestLoadConfig_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 8081, cfg.ServerPort)
	assert.Equal(t, "gemini-embedding-001", cfg.EmbeddingModel)
	assert.Equal(t, 10000, cfg.ChunkMaxChars)
	assert.Equal(t, 24, cfg.ChunkMinChars)
	assert.Equal(t, 8, cfg.WorkerPoolSize)
	assert.Equal(t, 512, cfg.QueueCapacity)
	assert.Equal(t, 3, cfg.TopK)
	assert.Equal(t, 60, cfg.RequestTimeoutSeconds)
	assert.Equal(t, 60, cfg.EmbedCallTimeoutSeconds)
	assert.InDelta(t, 11.5, cfg.HeadingFontSize, 0.001)
}

func TestLoadConfig_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("CONTENT_START_MARKER", "TERM_A")
	t.Setenv("CONTENT_END_MARKER", "CONTRIBUTORS")
	t.Setenv("WORKER_POOL_SIZE", "4")
	t.Setenv("REQUEST_TIMEOUT_SECONDS", "5")
	t.Setenv("EMBED_CALL_TIMEOUT_SECONDS", "15")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "TERM_A", cfg.StartMarker)
	assert.Equal(t, "CONTRIBUTORS", cfg.EndMarker)
	assert.Equal(t, 4, cfg.WorkerPoolSize)
	assert.Equal(t, "5s", cfg.RequestTimeout().String())
	assert.Equal(t, "15s", cfg.EmbedCallTimeout().String())
}

func TestLoadConfig_MissingDocumentPath(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("DOCUMENT_PATH", "")

	_, err := config.Load()
	assert.ErrorIs(t, err, config.ErrMissingRequired)
}

func TestLoadConfig_MissingAPIKey(t *testing.T) {
	t.Setenv("DOCUMENT_PATH", "testdata/glossary.pdf")
	t.Setenv("GEMINI_API_KEY", "")

	_, err := config.Load()
	assert.ErrorIs(t, err, config.ErrMissingRequired)
}

func TestValidate_Bounds(t *testing.T) {
	base := func() *config.Config {
		return &config.Config{
			DocumentPath:            "doc.pdf",
			GeminiAPIKey:            "k",
			WorkerPoolSize:          8,
			QueueCapacity:           512,
			EmbedCallTimeoutSeconds: 60,
			ChunkMaxChars:           10000,
			ChunkMinChars:           24,
		}
	}

	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, base().Validate())
	})

	t.Run("zero workers", func(t *testing.T) {
		cfg := base()
		cfg.WorkerPoolSize = 0
		assert.Error(t, cfg.Validate())
	})

	t.Run("zero queue", func(t *testing.T) {
		cfg := base()
		cfg.QueueCapacity = 0
		assert.Error(t, cfg.Validate())
	})

	t.Run("zero embed timeout", func(t *testing.T) {
		cfg := base()
		cfg.EmbedCallTimeoutSeconds = 0
		assert.Error(t, cfg.Validate())
	})

	t.Run("max not above min", func(t *testing.T) {
		cfg := base()
		cfg.ChunkMaxChars = 24
		assert.Error(t, cfg.Validate())
	})
}

func TestLoadConfig_FromEnvFile(t *testing.T) {
	setRequired(t)
	content := []byte("CONTENT_START_MARKER=from-file")
	err := os.WriteFile(".env", content, 0o644)
	if err != nil {
		t.Fatal(err)
	}
	defer os.Remove(".env")

	cfg, err := config.Load()
	assert.NoError(t, err)
	assert.Equal(t, "from-file", cfg.StartMarker)
}
