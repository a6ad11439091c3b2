package sequence

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RowQuerier is satisfied by both *pgxpool.Pool and pgx.Tx, so a counter can
// be advanced inside the caller's transaction.
type RowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Next atomically increments the counter row and returns the new value. The
// upsert serializes concurrent callers on the row lock, so no two callers
// ever see the same value.
func Next(ctx context.Context, q RowQuerier, name, period string) (int64, error) {
	var value int64
	err := q.QueryRow(ctx, `
		INSERT INTO counter (name, period, value)
		VALUES ($1, $2, 1)
		ON CONFLICT (name, period)
		DO UPDATE SET value = counter.value + 1
		RETURNING value
	`, name, period).Scan(&value)
	if err != nil {
		return 0, fmt.Errorf("advance counter %s/%s: %w", name, period, err)
	}
	return value, nil
}

// PG implements Generator against a connection pool.
type PG struct {
	pool *pgxpool.Pool
}

func NewPG(pool *pgxpool.Pool) *PG {
	return &PG{pool: pool}
}

func (g *PG) Next(ctx context.Context, name, period string) (int64, error) {
	return Next(ctx, g.pool, name, period)
}
