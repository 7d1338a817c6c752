package prices

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository loads methanol price anchors from PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Anchors returns the known (non-null) price rows within [from, to],
// ordered by date ascending.
func (r *Repository) Anchors(ctx context.Context, from, to time.Time) ([]PricePoint, error) {
	rows, err := r.pool.Query(ctx, `SELECT date, daily_price FROM methanol_prices
WHERE daily_price IS NOT NULL AND date >= $1 AND date <= $2 ORDER BY date`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var points []PricePoint
	for rows.Next() {
		var p PricePoint
		var price float64
		if err := rows.Scan(&p.Date, &price); err != nil {
			return nil, err
		}
		p.Price = &price
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return points, nil
}

// SeriesBetween loads anchors and returns the dense interpolated series
// covering [from, to] as far as known prices allow.
func (r *Repository) SeriesBetween(ctx context.Context, from, to time.Time) (*Series, error) {
	anchors, err := r.Anchors(ctx, from, to)
	if err != nil {
		return nil, err
	}
	return NewSeries(Interpolate(anchors)), nil
}
