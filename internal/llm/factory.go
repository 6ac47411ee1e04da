package llm

import (
	"fmt"

	"go.uber.org/zap"
)

const (
	ProviderStub   = "stub"
	ProviderOpenAI = "openai"
)

type ProviderConfig struct {
	Provider   string
	APIKey     string
	BaseURL    string
	Model      string
	Dimensions int
}

// NewEmbeddingSource elige la implementacion segun el proveedor.
// El proveedor remoto siempre va detras del circuit breaker.
func NewEmbeddingSource(cfg ProviderConfig, logger *zap.Logger) (EmbeddingSource, error) {
	switch cfg.Provider {
	case "", ProviderStub:
		return NewStubEmbedder(cfg.Dimensions), nil
	case ProviderOpenAI:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("embedding provider %q requires an api key", cfg.Provider)
		}
		remote := NewHTTPEmbedder(cfg.BaseURL, cfg.APIKey, cfg.Model, cfg.Dimensions, logger)
		return NewBreakerEmbedder(remote, DefaultBreakerConfig(), logger), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.Provider)
	}
}
