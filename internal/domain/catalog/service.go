package catalog

import (
	"context"

	"github.com/munaimtahir/lims-googel/internal/platform/apperr"
)

type Service struct {
	sampleTypes SampleTypeRepository
	tests       LabTestRepository
}

func NewService(st SampleTypeRepository, lt LabTestRepository) *Service {
	return &Service{sampleTypes: st, tests: lt}
}

func (s *Service) ListSampleTypes(ctx context.Context) ([]*SampleType, error) {
	return s.sampleTypes.List(ctx)
}

func (s *Service) GetSampleType(ctx context.Context, id string) (*SampleType, error) {
	return s.sampleTypes.GetByID(ctx, id)
}

func (s *Service) ListTests(ctx context.Context) ([]*LabTest, error) {
	return s.tests.List(ctx)
}

func (s *Service) GetTest(ctx context.Context, id string) (*LabTest, error) {
	return s.tests.GetByID(ctx, id)
}

// GetTests resolves every id and fails with ValidationError on the first
// unknown one. Repeated ids resolve to a single test each, so the result
// may be shorter than ids.
func (s *Service) GetTests(ctx context.Context, ids []string) ([]*LabTest, error) {
	tests, err := s.tests.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	found := make(map[string]bool, len(tests))
	for _, t := range tests {
		found[t.ID] = true
	}
	for _, id := range ids {
		if !found[id] {
			return nil, apperr.Validation("testIds", "unknown test: %s", id)
		}
	}
	return tests, nil
}

// GetTestParameters returns the parameter list for one test.
func (s *Service) GetTestParameters(ctx context.Context, testID string) ([]TestParameter, error) {
	t, err := s.tests.GetByID(ctx, testID)
	if err != nil {
		return nil, err
	}
	return t.Parameters, nil
}

// Seed loads the built-in reference data, skipping rows that already exist.
func (s *Service) Seed(ctx context.Context) error {
	for i := range SeedSampleTypes {
		if err := s.sampleTypes.Create(ctx, &SeedSampleTypes[i]); err != nil {
			return err
		}
	}
	for i := range SeedTests {
		if err := s.tests.Create(ctx, &SeedTests[i]); err != nil {
			return err
		}
	}
	return nil
}
