package llm

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
)

// EnvPrefix is prepended to every configuration variable.
const EnvPrefix = "OLIVE_"

// Config holds all LLM provider configuration.
type Config struct {
	// Provider selects which LLM provider to use.
	// Values: "groq", "openai", "anthropic", "gemini", "openrouter", "mock"
	Provider string `env:"LLM_PROVIDER" envDefault:"groq"`

	// QuizModel overrides the model used for quiz generation.
	// Empty means the provider's quiz default.
	QuizModel string `env:"LLM_QUIZ_MODEL"`

	Groq       GroqConfig       `envPrefix:"GROQ_"`
	OpenAI     OpenAIConfig     `envPrefix:"OPENAI_"`
	Anthropic  AnthropicConfig  `envPrefix:"ANTHROPIC_"`
	Gemini     GeminiConfig     `envPrefix:"GEMINI_"`
	OpenRouter OpenRouterConfig `envPrefix:"OPENROUTER_"`
	Retry      RetryConfig      `envPrefix:"LLM_RETRY_"`

	// Timeout bounds a single LLM request including retries.
	Timeout time.Duration `env:"LLM_TIMEOUT" envDefault:"60s"`
}

// GroqConfig holds Groq-specific configuration.
type GroqConfig struct {
	APIKey  string `env:"API_KEY"`
	Model   string `env:"MODEL" envDefault:"llama3-70b-8192"`
	BaseURL string `env:"BASE_URL" envDefault:"https://api.groq.com/openai/v1"`
}

// OpenAIConfig holds OpenAI-specific configuration.
type OpenAIConfig struct {
	APIKey  string `env:"API_KEY"`
	Model   string `env:"MODEL" envDefault:"gpt-4o-mini"`
	BaseURL string `env:"BASE_URL"` // Optional. Override for compatible APIs.
}

// AnthropicConfig holds Anthropic-specific configuration.
type AnthropicConfig struct {
	APIKey string `env:"API_KEY"`
	Model  string `env:"MODEL" envDefault:"claude-haiku"`
}

// GeminiConfig holds Gemini-specific configuration.
type GeminiConfig struct {
	APIKey string `env:"API_KEY"`
	Model  string `env:"MODEL" envDefault:"gemini-flash"`
}

// OpenRouterConfig holds OpenRouter-specific configuration.
type OpenRouterConfig struct {
	APIKey  string `env:"API_KEY"`
	Model   string `env:"MODEL" envDefault:"google/gemini-2.0-flash-exp"`
	BaseURL string `env:"BASE_URL" envDefault:"https://openrouter.ai/api/v1"`
}

// RetryConfig configures retry behavior for transient failures.
// MaxAttempts of 1 disables retries.
type RetryConfig struct {
	MaxAttempts int           `env:"MAX_ATTEMPTS" envDefault:"1"`
	InitialWait time.Duration `env:"INITIAL_WAIT" envDefault:"1s"`
	MaxWait     time.Duration `env:"MAX_WAIT" envDefault:"10s"`
	Multiplier  float64       `env:"MULTIPLIER" envDefault:"2"`
}

// quizModels is the lighter model each provider uses for quizzes.
var quizModels = map[string]string{
	"groq": "llama3-8b-8192",
}

// DefaultConfig returns a Config with defaults and no credentials.
func DefaultConfig() Config {
	var cfg Config
	// Parsing an empty environment only applies envDefault values.
	_ = env.ParseWithOptions(&cfg, env.Options{Environment: map[string]string{}})
	return cfg
}

// ConfigFromEnv builds a Config from OLIVE_* environment variables,
// falling back to defaults for unset values.
func ConfigFromEnv() (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return Config{}, fmt.Errorf("parse llm config: %w", err)
	}
	return cfg, nil
}

// discoveryOrder lists the well-known key variables probed by DiscoverConfig.
var discoveryOrder = []struct {
	provider string
	envVar   string
}{
	{"groq", "GROQ_API_KEY"},
	{"gemini", "GEMINI_API_KEY"},
	{"openai", "OPENAI_API_KEY"},
	{"anthropic", "ANTHROPIC_API_KEY"},
	{"openrouter", "OPENROUTER_API_KEY"},
}

// DiscoverConfig probes standard API key env vars in priority order
// (Groq, Gemini, OpenAI, Anthropic, OpenRouter) and returns base with the
// first provider whose key is found. Returns (base, false) if none found.
func DiscoverConfig(base Config) (Config, bool) {
	for _, d := range discoveryOrder {
		k := os.Getenv(d.envVar)
		if k == "" {
			continue
		}
		base.Provider = d.provider
		base.setAPIKey(d.provider, k)
		return base, true
	}
	return base, false
}

// ResolveConfig loads OLIVE_* settings and, when no provider was chosen
// explicitly and the default one has no key, falls back to DiscoverConfig.
// The result is validated.
func ResolveConfig() (Config, error) {
	cfg, err := ConfigFromEnv()
	if err != nil {
		return Config{}, err
	}
	explicit := os.Getenv(EnvPrefix+"LLM_PROVIDER") != ""
	if !explicit && cfg.apiKey(cfg.Provider) == "" {
		if found, ok := DiscoverConfig(cfg); ok {
			cfg = found
		}
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// QuizModelID returns the model to request for quizzes, or "" to use the
// provider default.
func (c Config) QuizModelID() string {
	if c.QuizModel != "" {
		return c.QuizModel
	}
	return quizModels[c.Provider]
}

// Validate checks that the selected provider has its required API key set.
func (c Config) Validate() error {
	switch c.Provider {
	case "groq", "openai", "anthropic", "gemini", "openrouter":
		if c.apiKey(c.Provider) == "" {
			return &ConfigError{Provider: c.Provider, Var: keyVar(c.Provider)}
		}
	case "mock":
		// No API key needed.
	default:
		return &ConfigError{Reason: fmt.Sprintf("unknown LLM provider: %q", c.Provider)}
	}
	return nil
}

func keyVar(provider string) string {
	switch provider {
	case "openai":
		return EnvPrefix + "OPENAI_API_KEY"
	case "anthropic":
		return EnvPrefix + "ANTHROPIC_API_KEY"
	case "gemini":
		return EnvPrefix + "GEMINI_API_KEY"
	case "openrouter":
		return EnvPrefix + "OPENROUTER_API_KEY"
	default:
		return EnvPrefix + "GROQ_API_KEY"
	}
}

func (c Config) apiKey(provider string) string {
	switch provider {
	case "groq":
		return c.Groq.APIKey
	case "openai":
		return c.OpenAI.APIKey
	case "anthropic":
		return c.Anthropic.APIKey
	case "gemini":
		return c.Gemini.APIKey
	case "openrouter":
		return c.OpenRouter.APIKey
	}
	return ""
}

func (c *Config) setAPIKey(provider, key string) {
	switch provider {
	case "groq":
		c.Groq.APIKey = key
	case "openai":
		c.OpenAI.APIKey = key
	case "anthropic":
		c.Anthropic.APIKey = key
	case "gemini":
		c.Gemini.APIKey = key
	case "openrouter":
		c.OpenRouter.APIKey = key
	}
}
