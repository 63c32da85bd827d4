package llms

import (
	"fmt"

	"github.com/kadirpekel/deepresearch/pkg/registry"
)

// Registry is a name-keyed lookup of configured LLM clients, mirroring
// the generic BaseRegistry pattern used throughout this module.
type Registry struct {
	*registry.BaseRegistry[Client]
}

// NewRegistry returns an empty client registry.
func NewRegistry() *Registry {
	return &Registry{BaseRegistry: registry.NewBaseRegistry[Client]()}
}

// RegisterClient registers a named, already-constructed client.
func (r *Registry) RegisterClient(name string, client Client) error {
	if name == "" {
		return fmt.Errorf("llms: client name cannot be empty")
	}
	if client == nil {
		return fmt.Errorf("llms: client cannot be nil")
	}
	return r.Register(name, client)
}

// ProviderConfig configures a single provider client. Host and Timeout
// default per-provider when left zero.
type ProviderConfig struct {
	Type        string // "anthropic" or "openai"
	Model       string
	APIKey      string
	Host        string
	MaxTokens   int
	Temperature float64
	TimeoutSecs int
	MaxRetries  int
	RetryDelay  int // seconds
}

// NewClientFromConfig constructs a provider client by type.
func NewClientFromConfig(cfg *ProviderConfig) (Client, error) {
	if cfg == nil {
		return nil, fmt.Errorf("llms: config cannot be nil")
	}
	switch cfg.Type {
	case "anthropic":
		return NewAnthropicClient(cfg)
	case "openai":
		return NewOpenAIClient(cfg)
	default:
		return nil, fmt.Errorf("llms: unsupported provider type %q", cfg.Type)
	}
}
