//go:build ignore

package main

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// pricingRules mirrors the rules file layout read by the pricing loader.
type pricingRules struct {
	Currency              string `yaml:"currency"`
	CurrencyExponent      int32  `yaml:"currency_exponent"`
	TaxRate               string `yaml:"tax_rate"`
	ShippingFee           string `yaml:"shipping_fee"`
	FreeShippingThreshold string `yaml:"free_shipping_threshold"`
}

// generateSamplePricing creates sample pricing rules files for local runs.
// Point PRICING_RULES_PATH at one of them, or upload them under the S3
// prefix.
func main() {
	dataDir := "data/pricing"

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		log.Fatalf("Failed to create directory: %v", err)
	}

	samples := map[string]pricingRules{
		"in.yaml": {
			Currency:              "INR",
			CurrencyExponent:      2,
			TaxRate:               "0.18",
			ShippingFee:           "49.00",
			FreeShippingThreshold: "999.00",
		},
		"in.yaml.gz": {
			Currency:              "INR",
			CurrencyExponent:      2,
			TaxRate:               "0.18",
			ShippingFee:           "49.00",
			FreeShippingThreshold: "999.00",
		},
		"jp-tax-free.yaml": {
			Currency:         "JPY",
			CurrencyExponent: 0,
			TaxRate:          "0",
			ShippingFee:      "500",
		},
	}

	for filename, rules := range samples {
		filePath := filepath.Join(dataDir, filename)

		if err := writeRules(filePath, rules); err != nil {
			log.Fatalf("Failed to create %s: %v", filename, err)
		}

		fmt.Printf("Created %s (%s, tax %s)\n", filePath, rules.Currency, rules.TaxRate)
	}

	fmt.Println("\nSample pricing rules created successfully!")
	fmt.Println("  PRICING_RULES_PATH=data/pricing/in.yaml go run ./cmd/api")
}

func writeRules(filePath string, rules pricingRules) error {
	data, err := yaml.Marshal(rules)
	if err != nil {
		return fmt.Errorf("failed to encode rules: %w", err)
	}

	if filepath.Ext(filePath) != ".gz" {
		return os.WriteFile(filePath, data, 0644)
	}

	var buf bytes.Buffer
	gzipWriter := gzip.NewWriter(&buf)
	if _, err := gzipWriter.Write(data); err != nil {
		return fmt.Errorf("failed to compress rules: %w", err)
	}
	if err := gzipWriter.Close(); err != nil {
		return fmt.Errorf("failed to compress rules: %w", err)
	}

	return os.WriteFile(filePath, buf.Bytes(), 0644)
}
