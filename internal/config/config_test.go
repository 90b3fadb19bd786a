package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "CORS_ORIGINS", "RECIPE_API_URL", "RECIPE_API_BASE_PATH", "RECIPE_API_TIMEOUT",
		"ARK_API_KEY", "ARK_ACCESS_KEY", "ARK_SECRET_KEY", "Model", "ARK_TEMPERATURE", "ARK_TOP_P",
		"ARK_MAX_TOKENS", "AI_HISTORY_LIMIT", "LOG_LEVEL", "LOG_FORMAT", "LOG_FILE",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8000", cfg.Server.Addr)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "http://localhost:8000", cfg.Client.BaseURL)
	assert.Equal(t, "/recipeChat", cfg.Client.BasePath)
	assert.Zero(t, cfg.Client.Timeout)
	assert.False(t, cfg.AI.Enabled())
	assert.Equal(t, 10, cfg.AI.HistoryLimit)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "127.0.0.1:9000")
	t.Setenv("RECIPE_API_URL", "http://recipes.internal:8000/")
	t.Setenv("RECIPE_API_TIMEOUT", "15")
	t.Setenv("CORS_ORIGINS", "http://a.test, http://b.test")
	t.Setenv("ARK_API_KEY", "key")
	t.Setenv("Model", "doubao")
	t.Setenv("AI_HISTORY_LIMIT", "0")
	t.Setenv("LOG_FORMAT", "console")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "http://recipes.internal:8000", cfg.Client.BaseURL)
	assert.Equal(t, 15*time.Second, cfg.Client.Timeout)
	assert.True(t, cfg.AI.Enabled())
	assert.Equal(t, 1, cfg.AI.HistoryLimit)
	assert.Equal(t, "console", cfg.Log.Format)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"PORT":               "80 80",
		"RECIPE_API_TIMEOUT": "soon",
		"ARK_TEMPERATURE":    "warm",
		"LOG_FORMAT":         "xml",
	}

	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(key, value)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestNegativeTimeoutRejected(t *testing.T) {
	clearEnv(t)
	t.Setenv("RECIPE_API_TIMEOUT", "-1")

	_, err := Load()
	assert.Error(t, err)
}
