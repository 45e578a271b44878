package models

// IncomeTier buckets a store's trade-area income level. Ordered; Rank feeds
// the clustering feature vector.
type IncomeTier string

const (
	IncomeLow    IncomeTier = "low"
	IncomeMedium IncomeTier = "medium"
	IncomeHigh   IncomeTier = "high"
)

// Rank returns a numeric position for clustering; unknown tiers sort lowest.
func (t IncomeTier) Rank() float64 {
	switch t {
	case IncomeLow:
		return 0
	case IncomeMedium:
		return 1
	case IncomeHigh:
		return 2
	}
	return 0
}

// StoreProfile is the static attribute record for one store. These change
// rarely, so cluster assignments derived from them are cached and shared
// read-only across workflows.
type StoreProfile struct {
	ID             string     `json:"id" yaml:"id"`
	SizeSqFt       float64    `json:"sizeSqFt" yaml:"size_sqft"`
	IncomeTier     IncomeTier `json:"incomeTier" yaml:"income_tier"`
	Region         string     `json:"region" yaml:"region"`
	Format         string     `json:"format" yaml:"format"`
	AvgWeeklySales float64    `json:"avgWeeklySales" yaml:"avg_weekly_sales"`
}
