package pricing

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// Provider hands out the rules loaded at start-up. Rules are read-only after
// construction.
type Provider struct {
	rules *Rules
}

// NewProvider loads rules from path with loader. An empty path yields
// fallback, which must be valid.
func NewProvider(ctx context.Context, loader Loader, path string, fallback *Rules, logger zerolog.Logger) (*Provider, error) {
	logger = logger.With().Str("component", "pricing-provider").Logger()

	if path == "" {
		if fallback == nil {
			fallback = DefaultRules()
		}
		if err := fallback.Validate(); err != nil {
			return nil, fmt.Errorf("invalid default pricing rules: %w", err)
		}
		logger.Info().
			Str("currency", fallback.Currency).
			Msg("no pricing rules file configured, using configured defaults")
		return &Provider{rules: fallback}, nil
	}

	rules, err := loader.Load(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to load pricing rules %s: %w", path, err)
	}

	return &Provider{rules: rules}, nil
}

// NewStaticProvider wraps fixed rules.
func NewStaticProvider(rules *Rules) *Provider {
	return &Provider{rules: rules}
}

// Rules returns the active rules.
func (p *Provider) Rules() *Rules {
	return p.rules
}

// Calculate prices lines under the active rules.
func (p *Provider) Calculate(lines []Line) Totals {
	return p.rules.Calculate(lines)
}
