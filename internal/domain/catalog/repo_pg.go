package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/munaimtahir/lims-googel/internal/platform/apperr"
)

// =========== SampleType Repository ===========

type sampleTypeRepoPG struct{ pool *pgxpool.Pool }

func NewSampleTypeRepoPG(pool *pgxpool.Pool) SampleTypeRepository {
	return &sampleTypeRepoPG{pool: pool}
}

func (r *sampleTypeRepoPG) Create(ctx context.Context, st *SampleType) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO sample_type (id, name, tube_color) VALUES ($1, $2, $3)
		ON CONFLICT (id) DO NOTHING`,
		st.ID, st.Name, st.TubeColor)
	return err
}

func (r *sampleTypeRepoPG) GetByID(ctx context.Context, id string) (*SampleType, error) {
	var st SampleType
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, tube_color FROM sample_type WHERE id = $1`, id).
		Scan(&st.ID, &st.Name, &st.TubeColor)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("sample type", id)
	}
	if err != nil {
		return nil, err
	}
	return &st, nil
}

func (r *sampleTypeRepoPG) List(ctx context.Context) ([]*SampleType, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, tube_color FROM sample_type ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*SampleType
	for rows.Next() {
		var st SampleType
		if err := rows.Scan(&st.ID, &st.Name, &st.TubeColor); err != nil {
			return nil, err
		}
		items = append(items, &st)
	}
	return items, rows.Err()
}

// =========== LabTest Repository ===========

type labTestRepoPG struct{ pool *pgxpool.Pool }

func NewLabTestRepoPG(pool *pgxpool.Pool) LabTestRepository {
	return &labTestRepoPG{pool: pool}
}

func (r *labTestRepoPG) Create(ctx context.Context, t *LabTest) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO lab_test (id, name, price, category, sample_type_id)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO NOTHING`,
		t.ID, t.Name, t.Price, t.Category, t.SampleTypeID)
	if err != nil {
		return err
	}

	for pos, p := range t.Parameters {
		_, err = tx.Exec(ctx, `
			INSERT INTO test_parameter (id, test_id, name, unit, reference_range, position)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (test_id, id) DO NOTHING`,
			p.ID, t.ID, p.Name, p.Unit, p.ReferenceRange, pos)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *labTestRepoPG) GetByID(ctx context.Context, id string) (*LabTest, error) {
	var t LabTest
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, price, category, sample_type_id FROM lab_test WHERE id = $1`, id).
		Scan(&t.ID, &t.Name, &t.Price, &t.Category, &t.SampleTypeID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("lab test", id)
	}
	if err != nil {
		return nil, err
	}

	params, err := r.parameters(ctx, id)
	if err != nil {
		return nil, err
	}
	t.Parameters = params
	return &t, nil
}

func (r *labTestRepoPG) parameters(ctx context.Context, testID string) ([]TestParameter, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, test_id, name, unit, reference_range
		FROM test_parameter WHERE test_id = $1 ORDER BY position`, testID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var params []TestParameter
	for rows.Next() {
		var p TestParameter
		if err := rows.Scan(&p.ID, &p.TestID, &p.Name, &p.Unit, &p.ReferenceRange); err != nil {
			return nil, err
		}
		params = append(params, p)
	}
	return params, rows.Err()
}

func (r *labTestRepoPG) ListByIDs(ctx context.Context, ids []string) ([]*LabTest, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, price, category, sample_type_id
		FROM lab_test WHERE id = ANY($1) ORDER BY category, name`, ids)
	if err != nil {
		return nil, err
	}
	tests, err := r.collect(ctx, rows)
	if err != nil {
		return nil, err
	}
	return tests, nil
}

func (r *labTestRepoPG) List(ctx context.Context) ([]*LabTest, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, price, category, sample_type_id
		FROM lab_test ORDER BY category, name`)
	if err != nil {
		return nil, err
	}
	return r.collect(ctx, rows)
}

func (r *labTestRepoPG) collect(ctx context.Context, rows pgx.Rows) ([]*LabTest, error) {
	var tests []*LabTest
	for rows.Next() {
		var t LabTest
		if err := rows.Scan(&t.ID, &t.Name, &t.Price, &t.Category, &t.SampleTypeID); err != nil {
			rows.Close()
			return nil, err
		}
		tests = append(tests, &t)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, t := range tests {
		params, err := r.parameters(ctx, t.ID)
		if err != nil {
			return nil, err
		}
		t.Parameters = params
	}
	return tests, nil
}
