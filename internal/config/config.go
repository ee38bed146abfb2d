// Package config loads rickdex settings: built-in defaults, then the JSON
// config file, then environment overrides.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/abelbrown/rickdex/internal/character"
)

// Config is the persistent application configuration
type Config struct {
	API   APIConfig   `json:"api"`
	Cache CacheConfig `json:"cache"`

	// AI Models
	Models ModelConfig `json:"models"`
	AI     AIConfig    `json:"ai"`

	// UI Preferences
	UI UIConfig `json:"ui"`
}

// APIConfig describes the character source.
type APIConfig struct {
	BaseURL   string `json:"base_url" env:"RICKDEX_API_BASE_URL"`
	TimeoutMs int    `json:"timeout_ms" env:"RICKDEX_API_TIMEOUT_MS"`

	// MaxCharacterID bounds id validation and detail navigation.
	MaxCharacterID int `json:"max_character_id" env:"RICKDEX_MAX_CHARACTER_ID"`

	// RequestsPerSecond throttles calls to the public API. 0 disables throttling.
	RequestsPerSecond float64 `json:"requests_per_second" env:"RICKDEX_API_RPS"`
}

// CacheConfig controls the session response cache.
type CacheConfig struct {
	// Path is ":memory:" unless a file is wanted for debugging.
	Path       string `json:"path" env:"RICKDEX_CACHE_PATH"`
	TTLSeconds int    `json:"ttl_seconds" env:"RICKDEX_CACHE_TTL_SECONDS"`
	Disabled   bool   `json:"disabled" env:"RICKDEX_CACHE_DISABLED"`
}

// ModelConfig holds AI model settings
type ModelConfig struct {
	Gemini ModelSettings `json:"gemini" envPrefix:"RICKDEX_GEMINI_"`
	OpenAI ModelSettings `json:"openai" envPrefix:"RICKDEX_OPENAI_"`
	Claude ModelSettings `json:"claude" envPrefix:"RICKDEX_CLAUDE_"`
	Ollama ModelSettings `json:"ollama" envPrefix:"RICKDEX_OLLAMA_"`
}

// ModelSettings for a single AI provider
type ModelSettings struct {
	Enabled  bool   `json:"enabled" env:"ENABLED"`
	APIKey   string `json:"api_key,omitempty" env:"API_KEY"`
	Endpoint string `json:"endpoint,omitempty" env:"ENDPOINT"` // For Ollama or custom endpoints
	Model    string `json:"model,omitempty" env:"MODEL"`
}

// AIConfig holds description generation preferences
type AIConfig struct {
	// Preferred names the provider tried first: "gemini", "openai", "claude", "ollama".
	Preferred string `json:"preferred" env:"RICKDEX_AI_PREFERRED"`
	TimeoutMs int    `json:"timeout_ms" env:"RICKDEX_AI_TIMEOUT_MS"`
	MaxTokens int    `json:"max_tokens" env:"RICKDEX_AI_MAX_TOKENS"`
}

// UIConfig holds UI preferences
type UIConfig struct {
	SearchDebounceMs int `json:"search_debounce_ms" env:"RICKDEX_SEARCH_DEBOUNCE_MS"`

	// LoadMoreThreshold is how close to the end of the list the cursor gets
	// before the next page is requested.
	LoadMoreThreshold int  `json:"load_more_threshold" env:"RICKDEX_LOAD_MORE_THRESHOLD"`
	PrefetchNeighbors bool `json:"prefetch_neighbors" env:"RICKDEX_PREFETCH_NEIGHBORS"`
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:           "https://rickandmortyapi.com/api",
			TimeoutMs:         10000,
			MaxCharacterID:    character.DefaultMaxID,
			RequestsPerSecond: 5,
		},
		Cache: CacheConfig{
			Path:       ":memory:",
			TTLSeconds: 300,
		},
		Models: ModelConfig{
			Gemini: ModelSettings{
				Enabled: true,
				Model:   "gemini-2.5-flash",
			},
			OpenAI: ModelSettings{
				Enabled: false,
				Model:   "gpt-4o-mini",
			},
			Claude: ModelSettings{
				Enabled: false,
				Model:   "claude-sonnet-4-5-20250929",
			},
			Ollama: ModelSettings{
				Enabled:  false,
				Endpoint: "http://localhost:11434",
				// Model auto-detected from Ollama if not specified
			},
		},
		AI: AIConfig{
			Preferred: "gemini",
			TimeoutMs: 20000,
			MaxTokens: 400,
		},
		UI: UIConfig{
			SearchDebounceMs:  500,
			LoadMoreThreshold: 5,
			PrefetchNeighbors: true,
		},
	}
}

// Dir returns ~/.rickdex, the home of the config file and logs.
func Dir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".rickdex")
}

// ConfigPath returns the path to the config file
func ConfigPath() string {
	return filepath.Join(Dir(), "config.json")
}

// Load reads the config file at ConfigPath and applies environment overrides.
func Load() (*Config, error) {
	return LoadFile(ConfigPath())
}

// LoadFile layers defaults, the JSON file at path (if present) and the environment.
// A malformed file is an error; a missing one is not.
func LoadFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case !os.IsNotExist(err):
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields from the environment. Variables that are unset
// leave the current value alone.
func (c *Config) ApplyEnv() error {
	if err := env.Parse(c); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	c.autoPopulateKeys()
	return nil
}

// autoPopulateKeys fills in API keys from the vendor's conventional variables
// when the RICKDEX_ ones are not set.
func (c *Config) autoPopulateKeys() {
	if c.Models.Gemini.APIKey == "" {
		if key := os.Getenv("GEMINI_API_KEY"); key != "" {
			c.Models.Gemini.APIKey = key
		} else if key := os.Getenv("GOOGLE_API_KEY"); key != "" {
			c.Models.Gemini.APIKey = key
		}
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" && c.Models.OpenAI.APIKey == "" {
		c.Models.OpenAI.APIKey = key
		c.Models.OpenAI.Enabled = true
	}
	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" && c.Models.Claude.APIKey == "" {
		c.Models.Claude.APIKey = key
		c.Models.Claude.Enabled = true
	}
	if host := os.Getenv("OLLAMA_HOST"); host != "" {
		c.Models.Ollama.Endpoint = host
		c.Models.Ollama.Enabled = true
	}
}

// Validate rejects settings the rest of the program cannot work with.
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("api.base_url is empty")
	}
	if c.API.MaxCharacterID < 1 {
		return fmt.Errorf("api.max_character_id must be positive, got %d", c.API.MaxCharacterID)
	}
	if c.API.TimeoutMs <= 0 {
		return fmt.Errorf("api.timeout_ms must be positive, got %d", c.API.TimeoutMs)
	}
	if c.API.RequestsPerSecond < 0 {
		return fmt.Errorf("api.requests_per_second must not be negative")
	}
	if c.AI.MaxTokens < 0 {
		return fmt.Errorf("ai.max_tokens must not be negative, got %d", c.AI.MaxTokens)
	}
	return nil
}

// Save writes config to disk
func (c *Config) Save() error {
	path := ConfigPath()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0600) // Restrictive permissions for API keys
}

// APITimeout is the per-request deadline of the character source.
func (c *Config) APITimeout() time.Duration {
	return time.Duration(c.API.TimeoutMs) * time.Millisecond
}

// AITimeout bounds one description generation.
func (c *Config) AITimeout() time.Duration {
	if c.AI.TimeoutMs <= 0 {
		return 20 * time.Second
	}
	return time.Duration(c.AI.TimeoutMs) * time.Millisecond
}

// CacheTTL is how long a cached response stays fresh.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLSeconds) * time.Second
}

// SearchDebounce is the idle time before a typed name search is sent.
func (c *Config) SearchDebounce() time.Duration {
	return time.Duration(c.UI.SearchDebounceMs) * time.Millisecond
}

// EnabledModels returns provider names that are enabled and usable.
// Ollama needs no key.
func (c *Config) EnabledModels() []string {
	var names []string
	add := func(name string, s ModelSettings, needsKey bool) {
		if s.Enabled && (!needsKey || s.APIKey != "") {
			names = append(names, name)
		}
	}
	add("gemini", c.Models.Gemini, true)
	add("openai", c.Models.OpenAI, true)
	add("claude", c.Models.Claude, true)
	add("ollama", c.Models.Ollama, false)
	return names
}
