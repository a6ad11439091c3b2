package labrequest

import (
	"context"

	"github.com/google/uuid"

	"github.com/munaimtahir/lims-googel/internal/domain/catalog"
	"github.com/munaimtahir/lims-googel/internal/domain/patient"
)

// Repository persists lab requests. Implementations must enforce
// ValidateUpdate atomically with each Update, and recompute the payment's
// derived fields on every write.
type Repository interface {
	Create(ctx context.Context, r *LabRequest) error
	GetByID(ctx context.Context, id uuid.UUID) (*LabRequest, error)
	Update(ctx context.Context, r *LabRequest) error
	List(ctx context.Context, limit, offset int) ([]*LabRequest, int, error)
	ListByPatient(ctx context.Context, patientID string, limit, offset int) ([]*LabRequest, int, error)
	// UpdatePatientName refreshes the denormalized name on every request of
	// the patient. Exempt from the verification freeze: the copy must track
	// the registry even on verified requests.
	UpdatePatientName(ctx context.Context, patientID, name string) error
}

// PatientSource resolves patient references at request creation and
// interpretation time.
type PatientSource interface {
	Get(ctx context.Context, id string) (*patient.Patient, error)
}

// TestSource resolves test ids against the catalog, failing on unknown ids.
type TestSource interface {
	GetTests(ctx context.Context, ids []string) ([]*catalog.LabTest, error)
}
