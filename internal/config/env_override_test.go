package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvOverrides_Credentials(t *testing.T) {
	t.Run("JINA_API_KEY sets the key", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("JINA_API_KEY", "jina-key")

		cfg := &Config{}
		cfg.applyEnvOverrides()

		assert.Equal(t, "jina-key", cfg.API.Key)
		assert.True(t, cfg.HasCredential())
	})

	t.Run("blank key leaves file value", func(t *testing.T) {
		clearEnv(t)

		cfg := &Config{API: APIConfig{Key: "from-file"}}
		cfg.applyEnvOverrides()

		assert.Equal(t, "from-file", cfg.API.Key)
	})

	t.Run("UseTokenForReader accepts mixed case", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("UseTokenForReader", "TRUE")

		cfg := &Config{}
		cfg.applyEnvOverrides()

		assert.True(t, cfg.API.UseTokenForReader)
	})

	t.Run("prefixed token flag is an alias", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("JINA_USE_TOKEN_FOR_READER", "1")

		cfg := &Config{}
		cfg.applyEnvOverrides()

		assert.True(t, cfg.API.UseTokenForReader)
	})

	t.Run("DebugMode false disables debug from file", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("DebugMode", "false")

		cfg := &Config{Logging: LoggingConfig{DebugMode: true}}
		cfg.applyEnvOverrides()

		assert.False(t, cfg.Logging.DebugMode)
	})
}

func TestEnvOverrides_ImageStore(t *testing.T) {
	clearEnv(t)
	t.Setenv("PROJECT_BASE_PATH", "/srv/vcp")
	t.Setenv("SERVER_PORT", "6005")
	t.Setenv("IMAGESERVER_IMAGE_KEY", "secret")

	cfg := &Config{}
	cfg.applyEnvOverrides()
	require.False(t, cfg.ImageStore.Configured(), "three of four coordinates is not enough")

	t.Setenv("VarHttpUrl", "http://localhost")
	cfg.applyEnvOverrides()

	require.True(t, cfg.ImageStore.Configured())
	assert.Equal(t, ImageStoreConfig{
		BasePath:   "/srv/vcp",
		Port:       "6005",
		AccessKey:  "secret",
		PublicHost: "http://localhost",
	}, cfg.ImageStore)
}

func TestEnvOverrides_Endpoints(t *testing.T) {
	clearEnv(t)
	t.Setenv("JINA_READER_URL", "http://127.0.0.1:9001")
	t.Setenv("JINA_SEARCH_URL", "http://127.0.0.1:9002")
	t.Setenv("JINA_GROUNDING_URL", "http://127.0.0.1:9003")
	t.Setenv("JINA_BATCH_CONCURRENCY", "4")

	cfg := DefaultConfig()
	cfg.applyEnvOverrides()

	assert.Equal(t, "http://127.0.0.1:9001", cfg.Endpoints.Reader)
	assert.Equal(t, "http://127.0.0.1:9002", cfg.Endpoints.Search)
	assert.Equal(t, "http://127.0.0.1:9003", cfg.Endpoints.Grounding)
	assert.Equal(t, 4, cfg.Batch.MaxConcurrency)
	require.NoError(t, cfg.Validate())
}

func TestEnvOverrides_BadConcurrencyIgnored(t *testing.T) {
	clearEnv(t)
	t.Setenv("JINA_BATCH_CONCURRENCY", "many")

	cfg := &Config{Batch: BatchConfig{MaxConcurrency: 2}}
	cfg.applyEnvOverrides()

	assert.Equal(t, 2, cfg.Batch.MaxConcurrency)
}
