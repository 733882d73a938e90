package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Taxonomy defines how interested the catalog is in each product category
// and which keywords raise or lower a product's relevance. Editors tune
// this file rather than code.
type Taxonomy struct {
	// DefaultCategoryWeight applies to categories not listed explicitly.
	DefaultCategoryWeight float64 `yaml:"default_category_weight"`

	// Categories maps category name to interest weight in [0,1].
	Categories map[string]float64 `yaml:"categories"`

	// PositiveKeywords boost the keyword signal when they appear in claims.
	PositiveKeywords []string `yaml:"positive_keywords"`

	// NegativeKeywords reduce the keyword signal.
	NegativeKeywords []string `yaml:"negative_keywords"`

	// FlagKeywords mark a product for mandatory human attention regardless
	// of score (compliance, security sensitive, etc).
	FlagKeywords []string `yaml:"flag_keywords"`
}

// CategoryWeight returns the interest weight for a category, falling back
// to the default for unknown categories. Lookup is case-insensitive.
func (t *Taxonomy) CategoryWeight(category string) float64 {
	if w, ok := t.Categories[strings.ToLower(strings.TrimSpace(category))]; ok {
		return w
	}
	return t.DefaultCategoryWeight
}

// LoadTaxonomy reads the taxonomy YAML from path. A missing file returns
// a usable default taxonomy rather than an error so the engine can run
// with no tuning at all.
func LoadTaxonomy(path string) (*Taxonomy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultTaxonomy(), nil
		}
		return nil, fmt.Errorf("failed to read taxonomy file %s: %w", path, err)
	}

	t := &Taxonomy{}
	if err := yaml.Unmarshal(data, t); err != nil {
		return nil, fmt.Errorf("failed to parse taxonomy file %s: %w", path, err)
	}

	if t.DefaultCategoryWeight == 0 {
		t.DefaultCategoryWeight = 0.4
	}
	// Normalize category keys so lookups never depend on file casing.
	normalized := make(map[string]float64, len(t.Categories))
	for k, v := range t.Categories {
		if v < 0 || v > 1 {
			return nil, fmt.Errorf("category %q weight %.4f outside [0,1]", k, v)
		}
		normalized[strings.ToLower(strings.TrimSpace(k))] = v
	}
	t.Categories = normalized

	return t, nil
}

// DefaultTaxonomy returns the built-in taxonomy used when no file exists.
func DefaultTaxonomy() *Taxonomy {
	return &Taxonomy{
		DefaultCategoryWeight: 0.4,
		Categories: map[string]float64{
			"developer tools": 1.0,
			"ai":              0.9,
			"productivity":    0.7,
			"analytics":       0.6,
			"design":          0.5,
			"marketing":       0.3,
		},
		PositiveKeywords: []string{
			"open source", "api", "self-hosted", "cli", "sdk",
		},
		NegativeKeywords: []string{
			"waitlist", "deprecated", "discontinued",
		},
		FlagKeywords: []string{
			"hipaa", "gdpr", "pci", "security audit",
		},
	}
}
