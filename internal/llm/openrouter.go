package llm

// OpenRouterProvider wraps OpenAIProvider with OpenRouter-specific defaults.
// OpenRouter exposes an OpenAI-compatible API, so the underlying SDK is reused.
type OpenRouterProvider struct {
	*OpenAIProvider
}

// NewOpenRouterProvider creates a provider targeting the OpenRouter API.
func NewOpenRouterProvider(cfg OpenRouterConfig) (*OpenRouterProvider, error) {
	if cfg.APIKey == "" {
		return nil, &ConfigError{Provider: "openrouter", Var: keyVar("openrouter")}
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultConfig().OpenRouter.BaseURL
	}

	inner := newOpenAICompatible(cfg.APIKey, baseURL, cfg.Model, nil)
	return &OpenRouterProvider{OpenAIProvider: inner}, nil
}
