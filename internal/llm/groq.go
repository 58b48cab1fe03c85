package llm

// groqModels maps friendly names to Groq model IDs.
var groqModels = map[string]string{
	"llama3-70b": "llama3-70b-8192",
	"llama3-8b":  "llama3-8b-8192",
}

// GroqProvider targets Groq's OpenAI-compatible endpoint.
type GroqProvider struct {
	*OpenAIProvider
}

// NewGroqProvider creates a provider targeting the Groq API.
func NewGroqProvider(cfg GroqConfig) (*GroqProvider, error) {
	if cfg.APIKey == "" {
		return nil, &ConfigError{Provider: "groq", Var: keyVar("groq")}
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultConfig().Groq.BaseURL
	}
	inner := newOpenAICompatible(cfg.APIKey, baseURL, cfg.Model, groqModels)
	return &GroqProvider{OpenAIProvider: inner}, nil
}
