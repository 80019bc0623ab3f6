package ai

import (
	"fmt"
	"strings"
	"time"

	domain "github.com/aakankshagupta18/klean-backend/internal/domain/ai"
	"github.com/aakankshagupta18/klean-backend/internal/infra/ai/ollama"
	"github.com/aakankshagupta18/klean-backend/internal/infra/ai/openai"
)

// DefaultTimeout bounds a single generation call.
const DefaultTimeout = 300 * time.Second

// Config selects and configures the inference provider.
type Config struct {
	Provider string
	BaseURL  string
	APIKey   string
	Timeout  time.Duration
}

// NewClient creates the provider named in cfg.
func NewClient(cfg Config) (domain.Client, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	switch strings.ToLower(cfg.Provider) {
	case "", "ollama":
		return ollama.NewClient(cfg.BaseURL, timeout), nil
	case "openai":
		return openai.NewClient(cfg.APIKey, cfg.BaseURL, timeout), nil
	default:
		return nil, fmt.Errorf("unknown inference provider: %s (supported: ollama, openai)", cfg.Provider)
	}
}
