package catalog

import "context"

type SampleTypeRepository interface {
	Create(ctx context.Context, st *SampleType) error
	GetByID(ctx context.Context, id string) (*SampleType, error)
	List(ctx context.Context) ([]*SampleType, error)
}

type LabTestRepository interface {
	// Create stores the test together with its parameters.
	Create(ctx context.Context, t *LabTest) error
	GetByID(ctx context.Context, id string) (*LabTest, error)
	ListByIDs(ctx context.Context, ids []string) ([]*LabTest, error)
	List(ctx context.Context) ([]*LabTest, error)
}
