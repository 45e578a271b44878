// Package history reads cleaned per-week unit-sold series for a category.
// Cleaning (duplicate removal, missing-date fill, outlier flagging) happens
// upstream; the engine trusts what it reads here.
package history

import (
	"context"
	"errors"
)

// ErrNoHistory means the source holds no series for the category.
var ErrNoHistory = errors.New("no sales history for category")

// Source is the read interface the engine consumes.
type Source interface {
	// CategorySeries returns weekly units sold for the whole category,
	// oldest week first.
	CategorySeries(ctx context.Context, category string) ([]float64, error)

	// StoreShares returns each store's historical share of category sales.
	// An empty map means no per-store history; callers fall back to an
	// equal split.
	StoreShares(ctx context.Context, category string) (map[string]float64, error)
}

// MemorySource serves fixed series; used in tests and local runs.
type MemorySource struct {
	Series map[string][]float64
	Shares map[string]map[string]float64
}

func (m *MemorySource) CategorySeries(ctx context.Context, category string) ([]float64, error) {
	series, ok := m.Series[category]
	if !ok {
		return nil, ErrNoHistory
	}
	return append([]float64(nil), series...), nil
}

func (m *MemorySource) StoreShares(ctx context.Context, category string) (map[string]float64, error) {
	shares := m.Shares[category]
	out := make(map[string]float64, len(shares))
	for k, v := range shares {
		out[k] = v
	}
	return out, nil
}
