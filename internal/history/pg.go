package history

import (
	"context"
	"database/sql"
	"fmt"
)

// PGSource reads cleaned weekly sales out of Postgres.
type PGSource struct {
	db *sql.DB
}

func NewPGSource(db *sql.DB) *PGSource {
	return &PGSource{db: db}
}

func (s *PGSource) CategorySeries(ctx context.Context, category string) ([]float64, error) {
	const query = `
		SELECT SUM(units_sold)
		FROM weekly_sales
		WHERE category=$1
		GROUP BY week_start
		ORDER BY week_start
	`
	rows, err := s.db.QueryContext(ctx, query, category)
	if err != nil {
		return nil, fmt.Errorf("category series: %w", err)
	}
	defer rows.Close()

	var series []float64
	for rows.Next() {
		var units float64
		if err := rows.Scan(&units); err != nil {
			return nil, fmt.Errorf("scan weekly units: %w", err)
		}
		series = append(series, units)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("category series rows: %w", err)
	}
	if len(series) == 0 {
		return nil, ErrNoHistory
	}
	return series, nil
}

func (s *PGSource) StoreShares(ctx context.Context, category string) (map[string]float64, error) {
	const query = `
		SELECT store_id, SUM(units_sold)
		FROM weekly_sales
		WHERE category=$1
		GROUP BY store_id
	`
	rows, err := s.db.QueryContext(ctx, query, category)
	if err != nil {
		return nil, fmt.Errorf("store shares: %w", err)
	}
	defer rows.Close()

	totals := map[string]float64{}
	var grand float64
	for rows.Next() {
		var storeID string
		var units float64
		if err := rows.Scan(&storeID, &units); err != nil {
			return nil, fmt.Errorf("scan store units: %w", err)
		}
		totals[storeID] = units
		grand += units
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store shares rows: %w", err)
	}

	shares := make(map[string]float64, len(totals))
	if grand > 0 {
		for id, units := range totals {
			shares[id] = units / grand
		}
	}
	return shares, nil
}
