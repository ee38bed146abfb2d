package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv unsets every variable Load reads so the host environment cannot
// leak into a test. t.Setenv restores the original values afterwards.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"GEMINI_API_KEY", "GOOGLE_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY", "OLLAMA_HOST",
		"RICKDEX_API_BASE_URL", "RICKDEX_API_TIMEOUT_MS", "RICKDEX_MAX_CHARACTER_ID", "RICKDEX_API_RPS",
		"RICKDEX_CACHE_PATH", "RICKDEX_CACHE_TTL_SECONDS", "RICKDEX_CACHE_DISABLED",
		"RICKDEX_GEMINI_ENABLED", "RICKDEX_GEMINI_API_KEY", "RICKDEX_GEMINI_MODEL",
		"RICKDEX_OPENAI_API_KEY", "RICKDEX_CLAUDE_API_KEY", "RICKDEX_OLLAMA_ENDPOINT",
		"RICKDEX_AI_PREFERRED", "RICKDEX_AI_TIMEOUT_MS", "RICKDEX_AI_MAX_TOKENS", "RICKDEX_SEARCH_DEBOUNCE_MS",
	} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0600))
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "https://rickandmortyapi.com/api", cfg.API.BaseURL)
	assert.Equal(t, 826, cfg.API.MaxCharacterID)
	assert.Equal(t, 10*time.Second, cfg.APITimeout())
	assert.Equal(t, 500*time.Millisecond, cfg.SearchDebounce())
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL())
	assert.Equal(t, ":memory:", cfg.Cache.Path)
	assert.Equal(t, "gemini", cfg.AI.Preferred)
}

func TestLoadFileMissing(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadFile(filepath.Join(t.TempDir(), "nope.json"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadFileLayersOverDefaults(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, `{"api":{"max_character_id":900},"ui":{"search_debounce_ms":250}}`)

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, 900, cfg.API.MaxCharacterID)
	assert.Equal(t, 250*time.Millisecond, cfg.SearchDebounce())
	// Fields the file does not mention keep their defaults.
	assert.Equal(t, "https://rickandmortyapi.com/api", cfg.API.BaseURL)
	assert.Equal(t, 5, cfg.UI.LoadMoreThreshold)
}

func TestLoadFileEnvWins(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, `{"api":{"max_character_id":900}}`)
	t.Setenv("RICKDEX_MAX_CHARACTER_ID", "1000")
	t.Setenv("RICKDEX_GEMINI_MODEL", "gemini-test")
	t.Setenv("RICKDEX_CACHE_DISABLED", "true")
	t.Setenv("RICKDEX_AI_PREFERRED", "ollama")
	t.Setenv("RICKDEX_AI_MAX_TOKENS", "150")

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, 1000, cfg.API.MaxCharacterID)
	assert.Equal(t, "gemini-test", cfg.Models.Gemini.Model)
	assert.True(t, cfg.Cache.Disabled)
	assert.Equal(t, "ollama", cfg.AI.Preferred)
	assert.Equal(t, 150, cfg.AI.MaxTokens)
}

func TestLoadFileMalformed(t *testing.T) {
	clearEnv(t)
	_, err := LoadFile(writeFile(t, `{"api":`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse")
}

func TestLoadFileBadEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("RICKDEX_API_TIMEOUT_MS", "soon")

	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse env")
}

func TestLoadFileRejectsInvalid(t *testing.T) {
	clearEnv(t)
	_, err := LoadFile(writeFile(t, `{"api":{"max_character_id":0}}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max_character_id")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"defaults", func(*Config) {}, true},
		{"empty base url", func(c *Config) { c.API.BaseURL = "" }, false},
		{"zero max id", func(c *Config) { c.API.MaxCharacterID = 0 }, false},
		{"zero timeout", func(c *Config) { c.API.TimeoutMs = 0 }, false},
		{"negative rate", func(c *Config) { c.API.RequestsPerSecond = -1 }, false},
		{"unthrottled", func(c *Config) { c.API.RequestsPerSecond = 0 }, true},
		{"negative max tokens", func(c *Config) { c.AI.MaxTokens = -1 }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestVendorKeys(t *testing.T) {
	clearEnv(t)
	t.Setenv("GOOGLE_API_KEY", "g-key")
	t.Setenv("OPENAI_API_KEY", "o-key")
	t.Setenv("OLLAMA_HOST", "http://gpu:11434")

	cfg, err := LoadFile(filepath.Join(t.TempDir(), "nope.json"))
	require.NoError(t, err)

	assert.Equal(t, "g-key", cfg.Models.Gemini.APIKey)
	assert.Equal(t, "o-key", cfg.Models.OpenAI.APIKey)
	assert.True(t, cfg.Models.OpenAI.Enabled)
	assert.Equal(t, "http://gpu:11434", cfg.Models.Ollama.Endpoint)
	assert.Equal(t, []string{"gemini", "openai", "ollama"}, cfg.EnabledModels())
}

func TestVendorKeyDoesNotOverrideExplicit(t *testing.T) {
	clearEnv(t)
	t.Setenv("RICKDEX_GEMINI_API_KEY", "explicit")
	t.Setenv("GEMINI_API_KEY", "vendor")

	cfg, err := LoadFile(filepath.Join(t.TempDir(), "nope.json"))
	require.NoError(t, err)
	assert.Equal(t, "explicit", cfg.Models.Gemini.APIKey)
}

func TestEnabledModelsNeedKeys(t *testing.T) {
	cfg := DefaultConfig()
	// Gemini is enabled by default but has no key.
	assert.Empty(t, cfg.EnabledModels())

	cfg.Models.Ollama.Enabled = true
	assert.Equal(t, []string{"ollama"}, cfg.EnabledModels())
}

func TestAITimeoutDefault(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AI.TimeoutMs = 0
	assert.Equal(t, 20*time.Second, cfg.AITimeout())
}

func TestSave(t *testing.T) {
	clearEnv(t)
	t.Setenv("HOME", t.TempDir())

	cfg := DefaultConfig()
	cfg.API.MaxCharacterID = 830
	require.NoError(t, cfg.Save())

	info, err := os.Stat(ConfigPath())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	loaded, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 830, loaded.API.MaxCharacterID)
}
