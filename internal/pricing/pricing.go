package pricing

import (
	"context"
	"fmt"

	"storefront/internal/config"

	"github.com/shopspring/decimal"
)

// Loader defines the interface for loading pricing rule files.
type Loader interface {
	// Load reads a rules file (plain or gzipped YAML) and returns the rules.
	Load(ctx context.Context, path string) (*Rules, error)
}

// Rules are the tax and shipping rules applied once when an order is created.
type Rules struct {
	Currency              string
	CurrencyExponent      int32
	TaxRate               decimal.Decimal
	ShippingFee           decimal.Decimal
	FreeShippingThreshold decimal.Decimal
}

// DefaultRules returns INR rules with no tax and free shipping.
func DefaultRules() *Rules {
	return &Rules{
		Currency:              "INR",
		CurrencyExponent:      2,
		TaxRate:               decimal.Zero,
		ShippingFee:           decimal.Zero,
		FreeShippingThreshold: decimal.Zero,
	}
}

// Validate checks the rules are usable for pricing.
func (r *Rules) Validate() error {
	if len(r.Currency) != 3 {
		return fmt.Errorf("invalid currency code: %q", r.Currency)
	}
	if r.CurrencyExponent < 0 || r.CurrencyExponent > 4 {
		return fmt.Errorf("invalid currency exponent: %d", r.CurrencyExponent)
	}
	if r.TaxRate.IsNegative() || r.TaxRate.GreaterThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("tax rate must be between 0 and 1, got %s", r.TaxRate)
	}
	if r.ShippingFee.IsNegative() {
		return fmt.Errorf("shipping fee must not be negative, got %s", r.ShippingFee)
	}
	if r.FreeShippingThreshold.IsNegative() {
		return fmt.Errorf("free shipping threshold must not be negative, got %s", r.FreeShippingThreshold)
	}
	return nil
}

// RulesFromConfig builds the rules used when no rules file is configured.
func RulesFromConfig(cfg config.PricingConfig) (*Rules, error) {
	rules := &Rules{
		Currency:         cfg.Currency,
		CurrencyExponent: int32(cfg.CurrencyExponent),
	}

	fields := []struct {
		name  string
		value string
		dst   *decimal.Decimal
	}{
		{"tax rate", cfg.TaxRate, &rules.TaxRate},
		{"shipping fee", cfg.ShippingFee, &rules.ShippingFee},
		{"free shipping threshold", cfg.FreeShippingThreshold, &rules.FreeShippingThreshold},
	}
	for _, f := range fields {
		if f.value == "" {
			*f.dst = decimal.Zero
			continue
		}
		d, err := decimal.NewFromString(f.value)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", f.name, f.value, err)
		}
		*f.dst = d
	}

	if err := rules.Validate(); err != nil {
		return nil, err
	}
	return rules, nil
}
