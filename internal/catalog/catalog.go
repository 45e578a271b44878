// Package catalog loads the static store-attribute catalog that feeds
// clustering and allocation.
package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/trimline/seasonplan/internal/models"
)

type file struct {
	Stores []models.StoreProfile `yaml:"stores"`
}

// Load reads and validates a YAML store catalog.
func Load(path string) ([]models.StoreProfile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(raw)
}

// Parse decodes catalog bytes and rejects malformed entries.
func Parse(raw []byte) ([]models.StoreProfile, error) {
	var f file
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if len(f.Stores) == 0 {
		return nil, fmt.Errorf("catalog has no stores")
	}
	seen := map[string]bool{}
	for i, st := range f.Stores {
		if st.ID == "" {
			return nil, fmt.Errorf("store %d: id required", i)
		}
		if seen[st.ID] {
			return nil, fmt.Errorf("store %q: duplicate id", st.ID)
		}
		seen[st.ID] = true
		if st.SizeSqFt <= 0 {
			return nil, fmt.Errorf("store %q: size_sqft must be positive", st.ID)
		}
		if st.AvgWeeklySales < 0 {
			return nil, fmt.Errorf("store %q: avg_weekly_sales must be >= 0", st.ID)
		}
		switch st.IncomeTier {
		case models.IncomeLow, models.IncomeMedium, models.IncomeHigh:
		default:
			return nil, fmt.Errorf("store %q: unknown income_tier %q", st.ID, st.IncomeTier)
		}
	}
	return f.Stores, nil
}
