package refresh

import (
	"context"
	"net/http"

	"git.home.luguber.info/inful/guidebuilder/internal/config"
	ferrors "git.home.luguber.info/inful/guidebuilder/internal/foundation/errors"
)

// Provider names accepted in refresh.provider.
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// Provider fetches a topic profile from a language model.
type Provider interface {
	Name() string
	Model() string
	FetchProfile(ctx context.Context, topicName string) (*Profile, error)
}

// NewProvider builds the provider selected in cfg. A missing API key is a
// configuration error.
func NewProvider(ctx context.Context, cfg config.RefreshConfig) (Provider, error) {
	if cfg.APIKey == "" {
		env := "OPENAI_API_KEY"
		if cfg.Provider == ProviderGemini {
			env = "GEMINI_API_KEY"
		}
		return nil, ferrors.ConfigError("refresh requires an API key").
			WithContext("provider", cfg.Provider).
			WithContext("env", env).
			Build()
	}
	switch cfg.Provider {
	case ProviderOpenAI, "":
		return NewOpenAI(cfg, &http.Client{Timeout: cfg.TimeoutDuration()}), nil
	case ProviderGemini:
		return NewGemini(ctx, cfg)
	default:
		return nil, ferrors.ConfigError("unknown refresh provider").
			WithContext("provider", cfg.Provider).
			Build()
	}
}
