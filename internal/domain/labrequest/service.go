package labrequest

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/munaimtahir/lims-googel/internal/platform/ai"
	"github.com/munaimtahir/lims-googel/internal/platform/apperr"
	"github.com/munaimtahir/lims-googel/internal/platform/sequence"
)

const labNoCounter = "lab_no"

// FormatLabNo renders the nth lab number of the given day,
// e.g. LAB-20260827-003.
func FormatLabNo(day time.Time, n int64) string {
	return fmt.Sprintf("LAB-%s-%03d", day.Format("20060102"), n)
}

type Service struct {
	repo      Repository
	patients  PatientSource
	tests     TestSource
	seq       sequence.Generator
	gen       ai.Generator
	aiTimeout time.Duration
	logger    zerolog.Logger
	now       func() time.Time
}

func NewService(repo Repository, patients PatientSource, tests TestSource,
	seq sequence.Generator, gen ai.Generator, aiTimeout time.Duration, logger zerolog.Logger) *Service {
	return &Service{
		repo:      repo,
		patients:  patients,
		tests:     tests,
		seq:       seq,
		gen:       gen,
		aiTimeout: aiTimeout,
		logger:    logger,
		now:       time.Now,
	}
}

// CreateInput is the request body for registration.
type CreateInput struct {
	PatientID  string   `json:"patient"`
	TestIDs    []string `json:"testIds"`
	Payment    Payment  `json:"payment"`
	ReferredBy string   `json:"referredBy"`
}

// Create registers a new lab request: resolves the patient and tests,
// derives the payment fields, reserves the day's next lab number and stores
// the request in REGISTERED status.
func (s *Service) Create(ctx context.Context, in CreateInput) (*LabRequest, error) {
	if len(in.TestIDs) == 0 {
		return nil, apperr.Validation("testIds", "at least one test is required")
	}
	testIDs := dedupeTestIDs(in.TestIDs)
	p, err := s.patients.Get(ctx, in.PatientID)
	if err != nil {
		return nil, err
	}
	if _, err := s.tests.GetTests(ctx, testIDs); err != nil {
		return nil, err
	}

	now := s.now()
	n, err := s.seq.Next(ctx, labNoCounter, now.Format("20060102"))
	if err != nil {
		return nil, err
	}

	req := &LabRequest{
		ID:          uuid.New(),
		LabNo:       FormatLabNo(now, n),
		PatientID:   p.ID,
		PatientName: p.Name,
		Date:        now,
		TestIDs:     testIDs,
		Status:      StatusRegistered,
		Results:     map[string][]ResultEntry{},
		Payment:     ComputePayment(in.Payment),
		ReferredBy:  in.ReferredBy,
	}
	if err := s.repo.Create(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*LabRequest, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*LabRequest, int, error) {
	return s.repo.List(ctx, limit, offset)
}

func (s *Service) ListByPatient(ctx context.Context, patientID string, limit, offset int) ([]*LabRequest, int, error) {
	return s.repo.ListByPatient(ctx, patientID, limit, offset)
}

// Collect records which samples were drawn. Every sample type required by
// the request's tests must be covered; extra unrelated samples are allowed.
func (s *Service) Collect(ctx context.Context, id uuid.UUID, samples []string, phlebotomyComments string) (*LabRequest, error) {
	req, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := ValidateTransition(req.Status, StatusCollected); err != nil {
		return nil, err
	}

	tests, err := s.tests.GetTests(ctx, req.TestIDs)
	if err != nil {
		return nil, err
	}
	required := make(map[string]bool)
	for _, t := range tests {
		required[t.SampleTypeID] = true
	}
	collected := make(map[string]bool, len(samples))
	for _, id := range samples {
		collected[id] = true
	}
	var missing []string
	for id := range required {
		if !collected[id] {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, apperr.Validation("collectedSamples",
			"missing required samples: %s", strings.Join(missing, ", "))
	}

	updated := req.Clone()
	updated.CollectedSamples = samples
	updated.PhlebotomyComments = phlebotomyComments
	updated.Status = StatusCollected
	if err := s.repo.Update(ctx, updated); err != nil {
		return nil, err
	}
	return updated, nil
}

// UpdateResults replaces the result list of a single test, leaving the other
// tests' results untouched, and advances the request to ANALYZED.
func (s *Service) UpdateResults(ctx context.Context, id uuid.UUID, testID string, results []ResultEntry) (*LabRequest, error) {
	req, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Status == StatusVerified {
		return nil, &apperr.InvalidStateError{Status: req.Status, Reason: "cannot update results after verification"}
	}
	if !req.HasTest(testID) {
		return nil, apperr.Validation("testId", "test %s is not part of this lab request", testID)
	}

	updated := req.Clone()
	updated.Results[testID] = results
	advanceToAnalyzed(updated)
	if err := s.repo.Update(ctx, updated); err != nil {
		return nil, err
	}
	return updated, nil
}

// UpdateAllResults replaces the whole results map.
func (s *Service) UpdateAllResults(ctx context.Context, id uuid.UUID, results map[string][]ResultEntry) (*LabRequest, error) {
	req, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Status == StatusVerified {
		return nil, &apperr.InvalidStateError{Status: req.Status, Reason: "cannot update results after verification"}
	}
	if invalid := keysOutside(results, req.TestIDs); len(invalid) > 0 {
		return nil, apperr.Validation("results",
			"invalid tests in results: %s", strings.Join(invalid, ", "))
	}

	updated := req.Clone()
	updated.Results = results
	advanceToAnalyzed(updated)
	if err := s.repo.Update(ctx, updated); err != nil {
		return nil, err
	}
	return updated, nil
}

// UpdateComment replaces the free-text comments.
func (s *Service) UpdateComment(ctx context.Context, id uuid.UUID, comments string) (*LabRequest, error) {
	req, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Status == StatusVerified {
		return nil, &apperr.InvalidStateError{Status: req.Status, Reason: "cannot update comments after verification"}
	}

	updated := req.Clone()
	updated.Comments = comments
	if err := s.repo.Update(ctx, updated); err != nil {
		return nil, err
	}
	return updated, nil
}

// Verify finalizes the request. The supplied results must cover exactly the
// request's test set, with at least one entry per test.
func (s *Service) Verify(ctx context.Context, id uuid.UUID, results map[string][]ResultEntry) (*LabRequest, error) {
	req, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := ValidateTransition(req.Status, StatusVerified); err != nil {
		return nil, err
	}

	if invalid := keysOutside(results, req.TestIDs); len(invalid) > 0 {
		return nil, apperr.Validation("results",
			"invalid tests in results: %s", strings.Join(invalid, ", "))
	}
	var missing []string
	for _, testID := range req.TestIDs {
		if len(results[testID]) == 0 {
			missing = append(missing, testID)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, apperr.Validation("results",
			"missing results for tests: %s", strings.Join(missing, ", "))
	}

	updated := req.Clone()
	updated.Results = results
	updated.Status = StatusVerified
	if err := s.repo.Update(ctx, updated); err != nil {
		return nil, err
	}
	return updated, nil
}

// SetAIInterpretation stores interpretation text. This is the one field that
// stays writable after verification.
func (s *Service) SetAIInterpretation(ctx context.Context, id uuid.UUID, text string) (*LabRequest, error) {
	req, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	updated := req.Clone()
	updated.AIInterpretation = text
	if err := s.repo.Update(ctx, updated); err != nil {
		return nil, err
	}
	return updated, nil
}

// SyncPatientName is wired as the patient registry's name-change hook.
func (s *Service) SyncPatientName(ctx context.Context, patientID, name string) error {
	return s.repo.UpdatePatientName(ctx, patientID, name)
}

// dedupeTestIDs drops repeated ids, keeping first-occurrence order. A
// duplicate would otherwise collide on the request/test junction row.
func dedupeTestIDs(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

func advanceToAnalyzed(r *LabRequest) {
	if r.Status == StatusRegistered || r.Status == StatusCollected {
		r.Status = StatusAnalyzed
	}
}

func keysOutside(results map[string][]ResultEntry, testIDs []string) []string {
	allowed := make(map[string]bool, len(testIDs))
	for _, id := range testIDs {
		allowed[id] = true
	}
	var invalid []string
	for id := range results {
		if !allowed[id] {
			invalid = append(invalid, id)
		}
	}
	sort.Strings(invalid)
	return invalid
}
