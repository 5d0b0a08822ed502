package config

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/polkiloo/freshcart/internal/domain/model"
)

// pricingFile is the YAML layout of PRICING_FILE. Amounts are strings so that
// they are parsed as exact decimals.
type pricingFile struct {
	FreeDeliveryThreshold string `yaml:"free_delivery_threshold"`
	DeliveryFee           string `yaml:"delivery_fee"`
	TaxRate               string `yaml:"tax_rate"`
	Currency              string `yaml:"currency"`
}

// DefaultPricing returns the built-in store pricing rules.
func DefaultPricing() model.PricingRules {
	return model.PricingRules{
		FreeDeliveryThreshold: decimal.NewFromInt(500),
		DeliveryFee:           decimal.NewFromInt(40),
		TaxRate:               decimal.RequireFromString("0.05"),
		Currency:              "INR",
	}
}

// LoadPricing reads pricing rules from a YAML file. Keys missing from the
// file keep their defaults.
func LoadPricing(path string) (model.PricingRules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.PricingRules{}, fmt.Errorf("read pricing file: %w", err)
	}
	return parsePricing(data)
}

func parsePricing(data []byte) (model.PricingRules, error) {
	var raw pricingFile
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return model.PricingRules{}, fmt.Errorf("parse pricing file: %w", err)
	}

	rules := DefaultPricing()
	fields := []struct {
		name  string
		value string
		dst   *decimal.Decimal
	}{
		{"free_delivery_threshold", raw.FreeDeliveryThreshold, &rules.FreeDeliveryThreshold},
		{"delivery_fee", raw.DeliveryFee, &rules.DeliveryFee},
		{"tax_rate", raw.TaxRate, &rules.TaxRate},
	}
	for _, f := range fields {
		if f.value == "" {
			continue
		}
		d, err := decimal.NewFromString(f.value)
		if err != nil {
			return model.PricingRules{}, fmt.Errorf("pricing %s: %w", f.name, err)
		}
		if d.IsNegative() {
			return model.PricingRules{}, fmt.Errorf("pricing %s must not be negative", f.name)
		}
		*f.dst = d
	}
	if rules.TaxRate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return model.PricingRules{}, fmt.Errorf("pricing tax_rate must be below 1")
	}
	if raw.Currency != "" {
		rules.Currency = raw.Currency
	}
	return rules, nil
}
