package llm

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Provider names accepted in SKILLTREE_LLM_PROVIDER.
const (
	ProviderAnthropic  = "anthropic"
	ProviderOpenAI     = "openai"
	ProviderGemini     = "gemini"
	ProviderOpenRouter = "openrouter"
	ProviderMock       = "mock"
)

// Config selects a provider and carries the settings of every backend.
type Config struct {
	Provider string

	Anthropic  BackendConfig
	OpenAI     BackendConfig
	Gemini     BackendConfig
	OpenRouter BackendConfig
	Retry      RetryConfig

	// Timeout bounds one Generate call including retries.
	Timeout time.Duration
}

// BackendConfig is the per-provider part of Config. BaseURL is optional for
// every backend; tests and proxies set it.
type BackendConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

// RetryConfig configures retry behavior for transient failures.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Provider:   ProviderAnthropic,
		Anthropic:  BackendConfig{Model: "claude-haiku"},
		OpenAI:     BackendConfig{Model: "gpt-4o-mini"},
		Gemini:     BackendConfig{Model: "gemini-flash"},
		OpenRouter: BackendConfig{Model: "google/gemini-2.0-flash-001"},
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: 1 * time.Second,
			MaxWait:     10 * time.Second,
			Multiplier:  2.0,
		},
		Timeout: 60 * time.Second,
	}
}

// Backend returns the settings for the named provider.
func (c *Config) Backend(name string) *BackendConfig {
	switch name {
	case ProviderAnthropic:
		return &c.Anthropic
	case ProviderOpenAI:
		return &c.OpenAI
	case ProviderGemini:
		return &c.Gemini
	case ProviderOpenRouter:
		return &c.OpenRouter
	}
	return nil
}

// backends lists providers in discovery order.
var backends = []string{ProviderGemini, ProviderOpenAI, ProviderAnthropic, ProviderOpenRouter}

func envName(provider, suffix string) string {
	return "SKILLTREE_" + strings.ToUpper(provider) + "_" + suffix
}

// ConfigFromEnv builds a Config from SKILLTREE_* variables on top of the
// defaults:
//
//	SKILLTREE_LLM_PROVIDER
//	SKILLTREE_LLM_TIMEOUT            (Go duration)
//	SKILLTREE_<PROVIDER>_API_KEY
//	SKILLTREE_<PROVIDER>_MODEL
//	SKILLTREE_<PROVIDER>_BASE_URL
func ConfigFromEnv() Config {
	cfg := DefaultConfig()

	if p := os.Getenv("SKILLTREE_LLM_PROVIDER"); p != "" {
		cfg.Provider = strings.ToLower(p)
	}
	if t := os.Getenv("SKILLTREE_LLM_TIMEOUT"); t != "" {
		if d, err := time.ParseDuration(t); err == nil && d > 0 {
			cfg.Timeout = d
		}
	}

	for _, name := range backends {
		b := cfg.Backend(name)
		if k := os.Getenv(envName(name, "API_KEY")); k != "" {
			b.APIKey = k
		}
		if m := os.Getenv(envName(name, "MODEL")); m != "" {
			b.Model = m
		}
		if u := os.Getenv(envName(name, "BASE_URL")); u != "" {
			b.BaseURL = u
		}
	}
	return cfg
}

// DiscoverConfig probes the standard <PROVIDER>_API_KEY variables in
// discovery order and selects the first provider that has one. It returns
// false if none is set.
func DiscoverConfig() (Config, bool) {
	cfg := ConfigFromEnv()
	for _, name := range backends {
		if k := os.Getenv(strings.ToUpper(name) + "_API_KEY"); k != "" {
			cfg.Provider = name
			cfg.Backend(name).APIKey = k
			return cfg, true
		}
	}
	return Config{}, false
}

// ResolveConfig prefers an explicitly configured provider and falls back to
// discovery.
func ResolveConfig() (Config, error) {
	if os.Getenv("SKILLTREE_LLM_PROVIDER") != "" {
		cfg := ConfigFromEnv()
		return cfg, cfg.Validate()
	}
	cfg := ConfigFromEnv()
	if cfg.Validate() == nil {
		return cfg, nil
	}
	if d, ok := DiscoverConfig(); ok {
		return d, nil
	}
	return Config{}, fmt.Errorf("no LLM provider configured: set SKILLTREE_LLM_PROVIDER and %s, or one of GEMINI_API_KEY, OPENAI_API_KEY, ANTHROPIC_API_KEY, OPENROUTER_API_KEY",
		envName("<provider>", "API_KEY"))
}

// Validate checks that the selected provider has its required API key set.
func (c Config) Validate() error {
	if c.Provider == ProviderMock {
		return nil
	}
	b := c.Backend(c.Provider)
	if b == nil {
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
	if b.APIKey == "" {
		return fmt.Errorf("%s is required for the %s provider", envName(c.Provider, "API_KEY"), c.Provider)
	}
	return nil
}

// resolveModel maps a friendly model name to a provider model ID. Unknown
// names are passed through.
func resolveModel(name string, models map[string]string) string {
	if id, ok := models[name]; ok {
		return id
	}
	return name
}
