package labrequest

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/munaimtahir/lims-googel/internal/platform/apperr"
	"github.com/munaimtahir/lims-googel/internal/platform/db"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

const requestCols = `id, lab_no, patient_id, patient_name, date, status, results, payment,
	referred_by, comments, ai_interpretation, collected_samples, phlebotomy_comments,
	created_at, updated_at`

func (r *repoPG) Create(ctx context.Context, req *LabRequest) error {
	req.Payment = ComputePayment(req.Payment)
	return db.WithTx(ctx, r.pool, func(ctx context.Context) error {
		tx := db.TxFromContext(ctx)
		err := tx.QueryRow(ctx, `
			INSERT INTO lab_request (
				id, lab_no, patient_id, patient_name, date, status, results, payment,
				referred_by, comments, ai_interpretation, collected_samples, phlebotomy_comments
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
			RETURNING created_at, updated_at`,
			req.ID, req.LabNo, req.PatientID, req.PatientName, req.Date, req.Status,
			req.Results, req.Payment, req.ReferredBy, req.Comments, req.AIInterpretation,
			req.CollectedSamples, req.PhlebotomyComments).
			Scan(&req.CreatedAt, &req.UpdatedAt)
		if err != nil {
			return err
		}
		for pos, testID := range req.TestIDs {
			if _, err := tx.Exec(ctx, `
				INSERT INTO lab_request_test (request_id, test_id, position)
				VALUES ($1, $2, $3)`, req.ID, testID, pos); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*LabRequest, error) {
	req, err := r.scanOne(r.pool.QueryRow(ctx,
		`SELECT `+requestCols+` FROM lab_request WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("lab request", id.String())
	}
	if err != nil {
		return nil, err
	}
	req.TestIDs, err = r.testIDs(ctx, r.pool, id)
	if err != nil {
		return nil, err
	}
	return req, nil
}

// Update re-reads the row under a lock, runs the transition and freeze
// guards against it, and only then persists. Two racing mutations serialize
// on the row lock so neither can validate against a stale status.
func (r *repoPG) Update(ctx context.Context, req *LabRequest) error {
	req.Payment = ComputePayment(req.Payment)
	return db.WithTx(ctx, r.pool, func(ctx context.Context) error {
		tx := db.TxFromContext(ctx)
		old, err := r.scanOne(tx.QueryRow(ctx,
			`SELECT `+requestCols+` FROM lab_request WHERE id = $1 FOR UPDATE`, req.ID))
		if errors.Is(err, pgx.ErrNoRows) {
			return apperr.NotFound("lab request", req.ID.String())
		}
		if err != nil {
			return err
		}
		if err := ValidateUpdate(old, req); err != nil {
			return err
		}
		return tx.QueryRow(ctx, `
			UPDATE lab_request
			SET patient_name = $2, status = $3, results = $4, payment = $5,
				referred_by = $6, comments = $7, ai_interpretation = $8,
				collected_samples = $9, phlebotomy_comments = $10, updated_at = now()
			WHERE id = $1
			RETURNING updated_at`,
			req.ID, req.PatientName, req.Status, req.Results, req.Payment,
			req.ReferredBy, req.Comments, req.AIInterpretation,
			req.CollectedSamples, req.PhlebotomyComments).
			Scan(&req.UpdatedAt)
	})
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*LabRequest, int, error) {
	return r.list(ctx, ``, nil, limit, offset)
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID string, limit, offset int) ([]*LabRequest, int, error) {
	return r.list(ctx, `WHERE patient_id = $3`, []any{patientID}, limit, offset)
}

func (r *repoPG) list(ctx context.Context, where string, extra []any, limit, offset int) ([]*LabRequest, int, error) {
	countArgs := extra
	countWhere := where
	if where != "" {
		countWhere = `WHERE patient_id = $1`
	}
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM lab_request `+countWhere, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args := append([]any{limit, offset}, extra...)
	rows, err := r.pool.Query(ctx, `
		SELECT `+requestCols+` FROM lab_request `+where+`
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*LabRequest
	for rows.Next() {
		req, err := r.scanOne(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, req)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	for _, req := range items {
		req.TestIDs, err = r.testIDs(ctx, r.pool, req.ID)
		if err != nil {
			return nil, 0, err
		}
	}
	return items, total, nil
}

func (r *repoPG) UpdatePatientName(ctx context.Context, patientID, name string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE lab_request SET patient_name = $2, updated_at = now() WHERE patient_id = $1`,
		patientID, name)
	return err
}

func (r *repoPG) scanOne(row pgx.Row) (*LabRequest, error) {
	var req LabRequest
	err := row.Scan(&req.ID, &req.LabNo, &req.PatientID, &req.PatientName, &req.Date,
		&req.Status, &req.Results, &req.Payment, &req.ReferredBy, &req.Comments,
		&req.AIInterpretation, &req.CollectedSamples, &req.PhlebotomyComments,
		&req.CreatedAt, &req.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if req.Results == nil {
		req.Results = map[string][]ResultEntry{}
	}
	return &req, nil
}

func (r *repoPG) testIDs(ctx context.Context, q interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}, requestID uuid.UUID) ([]string, error) {
	rows, err := q.Query(ctx, `
		SELECT test_id FROM lab_request_test
		WHERE request_id = $1 ORDER BY position`, requestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
