package patient

import (
	"context"

	"github.com/munaimtahir/lims-googel/internal/platform/sequence"
)

// NameSyncFunc propagates a patient's new name to the records that keep a
// denormalized copy of it. Wired at startup to avoid a package cycle.
type NameSyncFunc func(ctx context.Context, patientID, name string) error

const counterName = "patient"

type Service struct {
	repo     Repository
	seq      sequence.Generator
	nameSync NameSyncFunc
}

func NewService(repo Repository, seq sequence.Generator) *Service {
	return &Service{repo: repo, seq: seq}
}

// SetNameSync installs the hook invoked after a name change.
func (s *Service) SetNameSync(fn NameSyncFunc) {
	s.nameSync = fn
}

// Register creates a patient, or updates one when an id is supplied. The
// two-in-one shape matches what reception clients send; an update through
// this path only touches the fields the body filled in.
func (s *Service) Register(ctx context.Context, p *Patient) (*Patient, error) {
	if p.ID != "" {
		var in UpdateInput
		if p.Name != "" {
			in.Name = &p.Name
		}
		if p.Age != 0 {
			in.Age = &p.Age
		}
		if p.Gender != "" {
			in.Gender = &p.Gender
		}
		if p.Phone != "" {
			in.Phone = &p.Phone
		}
		if p.Email != "" {
			in.Email = &p.Email
		}
		return s.Update(ctx, p.ID, in)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	n, err := s.seq.Next(ctx, counterName, "")
	if err != nil {
		return nil, err
	}
	p.ID = FormatID(n)
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// UpdateInput is a partial update. Nil fields keep their stored value, so
// age can be set to 0 and email can be cleared explicitly.
type UpdateInput struct {
	Name   *string `json:"name"`
	Age    *int    `json:"age"`
	Gender *string `json:"gender"`
	Phone  *string `json:"phone"`
	Email  *string `json:"email"`
}

// Update applies a partial update. A name change is propagated to
// denormalized copies.
func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (*Patient, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	updated := *existing
	if in.Name != nil {
		updated.Name = *in.Name
	}
	if in.Age != nil {
		updated.Age = *in.Age
	}
	if in.Gender != nil {
		updated.Gender = *in.Gender
	}
	if in.Phone != nil {
		updated.Phone = *in.Phone
	}
	if in.Email != nil {
		updated.Email = *in.Email
	}
	if err := updated.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, &updated); err != nil {
		return nil, err
	}

	if updated.Name != existing.Name && s.nameSync != nil {
		if err := s.nameSync(ctx, updated.ID, updated.Name); err != nil {
			return nil, err
		}
	}
	return &updated, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Patient, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	return s.repo.List(ctx, limit, offset)
}

var seedPatients = []Patient{
	{Name: "John Doe", Age: 34, Gender: GenderMale, Phone: "0300-1234567"},
	{Name: "Jane Smith", Age: 29, Gender: GenderFemale, Phone: "0333-9876543"},
	{Name: "Robert Brown", Age: 55, Gender: GenderMale, Phone: "0345-1122334"},
}

// Seed registers demo patients on an empty registry. They go through the
// normal path so a fresh database yields P001 through P003.
func (s *Service) Seed(ctx context.Context) error {
	_, total, err := s.repo.List(ctx, 1, 0)
	if err != nil {
		return err
	}
	if total > 0 {
		return nil
	}
	for i := range seedPatients {
		p := seedPatients[i]
		if _, err := s.Register(ctx, &p); err != nil {
			return err
		}
	}
	return nil
}
