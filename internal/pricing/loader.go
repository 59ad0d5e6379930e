package pricing

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// rulesFile is the on-disk YAML layout. Amounts are strings so they keep
// their exact decimal value.
type rulesFile struct {
	Currency              string `yaml:"currency"`
	CurrencyExponent      *int32 `yaml:"currency_exponent"`
	TaxRate               string `yaml:"tax_rate"`
	ShippingFee           string `yaml:"shipping_fee"`
	FreeShippingThreshold string `yaml:"free_shipping_threshold"`
}

// fileLoader implements Loader for reading rules from the local file system.
type fileLoader struct {
	logger zerolog.Logger
}

// NewFileLoader creates a new file-based rules loader.
func NewFileLoader(logger zerolog.Logger) Loader {
	return &fileLoader{
		logger: logger.With().Str("component", "pricing-loader").Logger(),
	}
}

// Load reads a rules file. Paths ending in .gz are decompressed first.
func (l *fileLoader) Load(ctx context.Context, path string) (*Rules, error) {
	l.logger.Info().Str("file", path).Msg("loading pricing rules")

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		l.logger.Error().Err(err).Str("file", path).Msg("failed to open pricing rules file")
		return nil, fmt.Errorf("failed to open pricing rules file %s: %w", path, err)
	}
	defer file.Close()

	rules, err := decodeRules(file, path)
	if err != nil {
		l.logger.Error().Err(err).Str("file", path).Msg("failed to decode pricing rules")
		return nil, err
	}

	l.logger.Info().
		Str("file", path).
		Str("currency", rules.Currency).
		Str("tax_rate", rules.TaxRate.String()).
		Msg("pricing rules loaded successfully")

	return rules, nil
}

// decodeRules parses YAML rules from r, gunzipping when name ends in .gz.
// Missing fields keep the DefaultRules values.
func decodeRules(r io.Reader, name string) (*Rules, error) {
	if strings.HasSuffix(name, ".gz") {
		gzipReader, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("failed to create gzip reader for %s: %w", name, err)
		}
		defer gzipReader.Close()
		r = gzipReader
	}

	var raw rulesFile
	if err := yaml.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to parse pricing rules %s: %w", name, err)
	}

	rules := DefaultRules()
	if raw.Currency != "" {
		rules.Currency = strings.ToUpper(raw.Currency)
	}
	if raw.CurrencyExponent != nil {
		rules.CurrencyExponent = *raw.CurrencyExponent
	}

	amounts := []struct {
		field string
		value string
		dst   *decimal.Decimal
	}{
		{"tax_rate", raw.TaxRate, &rules.TaxRate},
		{"shipping_fee", raw.ShippingFee, &rules.ShippingFee},
		{"free_shipping_threshold", raw.FreeShippingThreshold, &rules.FreeShippingThreshold},
	}
	for _, a := range amounts {
		if a.value == "" {
			continue
		}
		d, err := decimal.NewFromString(a.value)
		if err != nil {
			return nil, fmt.Errorf("invalid %s in %s: %w", a.field, name, err)
		}
		*a.dst = d
	}

	if err := rules.Validate(); err != nil {
		return nil, fmt.Errorf("invalid pricing rules %s: %w", name, err)
	}

	return rules, nil
}
