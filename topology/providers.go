package topology

import (
	"fmt"
	"strings"
	"sync"

	sdk "github.com/anthropics/anthropic-sdk-go"

	"github.com/hupe1980/teammesh/config"
	"github.com/hupe1980/teammesh/model"
	"github.com/hupe1980/teammesh/model/anthropic"
	"github.com/hupe1980/teammesh/model/openai"
)

// Provider prefixes understood by Providers.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// Providers resolves model ids against the configured providers and caches
// one client per id.
//
// "openai/<model>" targets the OpenAI Chat Completions API. When a base URL
// is configured (GitHub Models and other compatible gateways) the full id is
// sent as the model name, since those gateways namespace models by
// publisher; otherwise the prefix is stripped.
//
// "anthropic/<model>" targets the Anthropic Messages API, or AWS Bedrock
// when anthropic.use_bedrock is set.
type Providers struct {
	cfg *config.Config

	mu    sync.Mutex
	cache map[string]model.Model
}

var _ ModelResolver = (*Providers)(nil)

// NewProviders creates a resolver over cfg.
func NewProviders(cfg *config.Config) *Providers {
	if cfg == nil {
		cfg = config.Default()
	}
	return &Providers{cfg: cfg, cache: map[string]model.Model{}}
}

// SplitModelID separates "<provider>/<model>".
func SplitModelID(id string) (provider, name string, err error) {
	provider, name, ok := strings.Cut(id, "/")
	if !ok || provider == "" || name == "" {
		return "", "", fmt.Errorf("model id %q must look like <provider>/<model>", id)
	}
	return provider, name, nil
}

// Resolve implements ModelResolver.
func (p *Providers) Resolve(id string) (model.Model, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if m, ok := p.cache[id]; ok {
		return m, nil
	}

	provider, name, err := SplitModelID(id)
	if err != nil {
		return nil, err
	}

	var m model.Model
	switch provider {
	case ProviderOpenAI:
		oc := p.cfg.OpenAI
		if oc.BaseURL != "" {
			name = id
		}
		m = openai.NewModel(func(o *openai.Options) {
			o.Model = name
			o.APIKey = oc.APIKey
			o.BaseURL = oc.BaseURL
		})
	case ProviderAnthropic:
		ac := p.cfg.Anthropic
		m = anthropic.NewModel(func(o *anthropic.Options) {
			o.Model = sdk.Model(name)
			o.APIKey = ac.APIKey
			o.UseBedrock = ac.UseBedrock
			o.AWSRegion = ac.AWSRegion
			o.AWSProfile = ac.AWSProfile
		})
	default:
		return nil, fmt.Errorf("unknown model provider %q in %q", provider, id)
	}

	p.cache[id] = m
	return m, nil
}
