package llm

import (
	"errors"
	"os"
	"testing"
	"time"
)

func clearProviderEnv(t *testing.T) {
	t.Helper()
	for _, v := range []string{
		"OLIVE_LLM_PROVIDER", "OLIVE_GROQ_API_KEY", "OLIVE_OPENAI_API_KEY",
		"OLIVE_ANTHROPIC_API_KEY", "OLIVE_GEMINI_API_KEY", "OLIVE_OPENROUTER_API_KEY",
		"GROQ_API_KEY", "GEMINI_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY", "OPENROUTER_API_KEY",
	} {
		prev, ok := os.LookupEnv(v)
		os.Unsetenv(v)
		if ok {
			t.Cleanup(func() { os.Setenv(v, prev) })
		}
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Provider != "groq" {
		t.Fatalf("expected groq default, got %q", cfg.Provider)
	}
	if cfg.Groq.Model != "llama3-70b-8192" {
		t.Fatalf("unexpected groq model %q", cfg.Groq.Model)
	}
	if cfg.Retry.MaxAttempts != 1 {
		t.Fatalf("expected no retries by default, got %d attempts", cfg.Retry.MaxAttempts)
	}
	if cfg.Timeout != 60*time.Second {
		t.Fatalf("unexpected timeout %s", cfg.Timeout)
	}
	if cfg.QuizModelID() != "llama3-8b-8192" {
		t.Fatalf("unexpected quiz model %q", cfg.QuizModelID())
	}
}

func TestConfigFromEnv(t *testing.T) {
	clearProviderEnv(t)
	t.Setenv("OLIVE_LLM_PROVIDER", "anthropic")
	t.Setenv("OLIVE_ANTHROPIC_API_KEY", "sk-ant")
	t.Setenv("OLIVE_ANTHROPIC_MODEL", "claude-sonnet")
	t.Setenv("OLIVE_LLM_RETRY_MAX_ATTEMPTS", "3")

	cfg, err := ConfigFromEnv()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Provider != "anthropic" || cfg.Anthropic.APIKey != "sk-ant" || cfg.Anthropic.Model != "claude-sonnet" {
		t.Fatalf("unexpected config %+v", cfg.Anthropic)
	}
	if cfg.Retry.MaxAttempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", cfg.Retry.MaxAttempts)
	}
	if cfg.QuizModelID() != "" {
		t.Fatalf("anthropic has no quiz default, got %q", cfg.QuizModelID())
	}
}

func TestResolveConfigDiscoversKey(t *testing.T) {
	clearProviderEnv(t)
	t.Setenv("GEMINI_API_KEY", "gem-key")

	cfg, err := ResolveConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Provider != "gemini" || cfg.Gemini.APIKey != "gem-key" {
		t.Fatalf("expected discovered gemini config, got %q", cfg.Provider)
	}
}

func TestResolveConfigMissingKey(t *testing.T) {
	clearProviderEnv(t)

	_, err := ResolveConfig()
	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigError, got %T (%v)", err, err)
	}
	if cfgErr.Var != "OLIVE_GROQ_API_KEY" {
		t.Fatalf("unexpected var %q", cfgErr.Var)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"mock needs nothing", Config{Provider: "mock"}, false},
		{"groq with key", Config{Provider: "groq", Groq: GroqConfig{APIKey: "k"}}, false},
		{"openai without key", Config{Provider: "openai"}, true},
		{"unknown provider", Config{Provider: "carrier-pigeon"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
