package labrequest

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/munaimtahir/lims-googel/internal/domain/catalog"
	"github.com/munaimtahir/lims-googel/internal/domain/patient"
	"github.com/munaimtahir/lims-googel/internal/platform/apperr"
	"github.com/munaimtahir/lims-googel/internal/platform/sequence"
)

// -- Mock Repository --

// mockRepo enforces the same write-path guards as the postgres
// implementation: ValidateUpdate against the stored row under a lock, and
// payment recomputation on every write.
type mockRepo struct {
	mu   sync.Mutex
	reqs map[uuid.UUID]*LabRequest
}

func newMockRepo() *mockRepo {
	return &mockRepo{reqs: make(map[uuid.UUID]*LabRequest)}
}

func (m *mockRepo) Create(_ context.Context, r *LabRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.reqs[r.ID]; ok {
		return errors.New("duplicate id")
	}
	for _, existing := range m.reqs {
		if existing.LabNo == r.LabNo {
			return fmt.Errorf("duplicate lab no %s", r.LabNo)
		}
	}
	r.Payment = ComputePayment(r.Payment)
	r.CreatedAt = time.Now()
	r.UpdatedAt = r.CreatedAt
	m.reqs[r.ID] = r.Clone()
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*LabRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.reqs[id]
	if !ok {
		return nil, apperr.NotFound("lab request", id.String())
	}
	return r.Clone(), nil
}

func (m *mockRepo) Update(_ context.Context, r *LabRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	old, ok := m.reqs[r.ID]
	if !ok {
		return apperr.NotFound("lab request", r.ID.String())
	}
	if err := ValidateUpdate(old, r); err != nil {
		return err
	}
	r.Payment = ComputePayment(r.Payment)
	r.UpdatedAt = time.Now()
	m.reqs[r.ID] = r.Clone()
	return nil
}

func (m *mockRepo) List(_ context.Context, limit, offset int) ([]*LabRequest, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var all []*LabRequest
	for _, r := range m.reqs {
		all = append(all, r.Clone())
	}
	total := len(all)
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}

func (m *mockRepo) ListByPatient(_ context.Context, patientID string, limit, offset int) ([]*LabRequest, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var matched []*LabRequest
	for _, r := range m.reqs {
		if r.PatientID == patientID {
			matched = append(matched, r.Clone())
		}
	}
	total := len(matched)
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return matched[offset:end], total, nil
}

func (m *mockRepo) UpdatePatientName(_ context.Context, patientID, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.reqs {
		if r.PatientID == patientID {
			r.PatientName = name
		}
	}
	return nil
}

// -- Mock Collaborators --

type fakePatients struct{}

func (fakePatients) Get(_ context.Context, id string) (*patient.Patient, error) {
	known := map[string]*patient.Patient{
		"P001": {ID: "P001", Name: "John Doe", Age: 34, Gender: patient.GenderMale, Phone: "0300-1234567"},
		"P002": {ID: "P002", Name: "Jane Smith", Age: 29, Gender: patient.GenderFemale, Phone: "0333-9876543"},
	}
	p, ok := known[id]
	if !ok {
		return nil, apperr.NotFound("patient", id)
	}
	return p, nil
}

type fakeTests struct{}

func (fakeTests) GetTests(_ context.Context, ids []string) ([]*catalog.LabTest, error) {
	byID := make(map[string]*catalog.LabTest, len(catalog.SeedTests))
	for i := range catalog.SeedTests {
		byID[catalog.SeedTests[i].ID] = &catalog.SeedTests[i]
	}
	var tests []*catalog.LabTest
	for _, id := range ids {
		t, ok := byID[id]
		if !ok {
			return nil, apperr.Validation("testIds", "unknown test: %s", id)
		}
		tests = append(tests, t)
	}
	return tests, nil
}

type fakeGenerator struct {
	mu     sync.Mutex
	text   string
	err    error
	delay  time.Duration
	prompt string
}

func (g *fakeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	g.mu.Lock()
	g.prompt = prompt
	g.mu.Unlock()
	if g.delay > 0 {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(g.delay):
		}
	}
	return g.text, g.err
}

func (g *fakeGenerator) lastPrompt() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.prompt
}

func newTestService() (*Service, *mockRepo, *fakeGenerator) {
	repo := newMockRepo()
	gen := &fakeGenerator{text: "interpretation"}
	svc := NewService(repo, fakePatients{}, fakeTests{}, sequence.NewMemory(),
		gen, 2*time.Second, zerolog.Nop())
	return svc, repo, gen
}

func mustCreate(t *testing.T, svc *Service) *LabRequest {
	t.Helper()
	req, err := svc.Create(context.Background(), CreateInput{
		PatientID: "P001",
		TestIDs:   []string{"cbc", "lipid"},
		Payment:   Payment{TotalAmount: 2250, DiscountAmount: 225, PaidAmount: 2000},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	return req
}

func cbcResults() []ResultEntry {
	return []ResultEntry{
		{ParameterID: "hb", Value: "14.1", Flag: "N"},
		{ParameterID: "wbc", Value: "12.3", Flag: "H"},
	}
}

func lipidResults() []ResultEntry {
	return []ResultEntry{{ParameterID: "chol", Value: "185", Flag: "N"}}
}

// -- Create --

func TestCreate(t *testing.T) {
	svc, _, _ := newTestService()
	req := mustCreate(t, svc)

	if req.Status != StatusRegistered {
		t.Errorf("expected status REGISTERED, got %s", req.Status)
	}
	wantLabNo := FormatLabNo(time.Now(), 1)
	if req.LabNo != wantLabNo {
		t.Errorf("expected lab no %s, got %s", wantLabNo, req.LabNo)
	}
	if req.PatientName != "John Doe" {
		t.Errorf("expected patient name copied, got %q", req.PatientName)
	}
	if req.Payment.NetPayable != 2025 || req.Payment.BalanceDue != 25 || req.Payment.DiscountPercent != 10.0 {
		t.Errorf("payment not derived server-side: %+v", req.Payment)
	}
	if req.ID == uuid.Nil {
		t.Error("expected generated id")
	}
}

func TestCreateDeduplicatesTestIDs(t *testing.T) {
	svc, _, _ := newTestService()
	req, err := svc.Create(context.Background(), CreateInput{
		PatientID: "P001",
		TestIDs:   []string{"cbc", "cbc", "lipid", "cbc"},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	want := []string{"cbc", "lipid"}
	if !reflect.DeepEqual(req.TestIDs, want) {
		t.Errorf("expected deduplicated test ids %v, got %v", want, req.TestIDs)
	}
}

func TestCreateRequiresTests(t *testing.T) {
	svc, _, _ := newTestService()
	_, err := svc.Create(context.Background(), CreateInput{PatientID: "P001"})
	var ve *apperr.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestCreateUnknownPatient(t *testing.T) {
	svc, _, _ := newTestService()
	_, err := svc.Create(context.Background(), CreateInput{PatientID: "P999", TestIDs: []string{"cbc"}})
	var ne *apperr.NotFoundError
	if !errors.As(err, &ne) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestCreateUnknownTest(t *testing.T) {
	svc, _, _ := newTestService()
	_, err := svc.Create(context.Background(), CreateInput{PatientID: "P001", TestIDs: []string{"cbc", "bogus"}})
	var ve *apperr.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestCreateSequentialLabNumbers(t *testing.T) {
	svc, _, _ := newTestService()
	first := mustCreate(t, svc)
	second := mustCreate(t, svc)
	if first.LabNo == second.LabNo {
		t.Fatalf("duplicate lab no %s", first.LabNo)
	}
	if second.LabNo != FormatLabNo(time.Now(), 2) {
		t.Errorf("expected second lab no to be 002, got %s", second.LabNo)
	}
}

func TestCreateConcurrentLabNumbersUnique(t *testing.T) {
	svc, _, _ := newTestService()
	const n = 20
	labNos := make(chan string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			req, err := svc.Create(context.Background(), CreateInput{
				PatientID: "P001",
				TestIDs:   []string{"cbc"},
			})
			if err != nil {
				t.Errorf("Create: %v", err)
				return
			}
			labNos <- req.LabNo
		}()
	}
	wg.Wait()
	close(labNos)

	seen := make(map[string]bool, n)
	for labNo := range labNos {
		if seen[labNo] {
			t.Fatalf("duplicate lab no %s under concurrent creation", labNo)
		}
		seen[labNo] = true
	}
}

// -- Collect --

func TestCollect(t *testing.T) {
	svc, _, _ := newTestService()
	req := mustCreate(t, svc)

	updated, err := svc.Collect(context.Background(), req.ID, []string{"edta", "serum"}, "smooth draw")
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if updated.Status != StatusCollected {
		t.Errorf("expected status COLLECTED, got %s", updated.Status)
	}
	if updated.PhlebotomyComments != "smooth draw" {
		t.Errorf("expected phlebotomy comments stored, got %q", updated.PhlebotomyComments)
	}
}

func TestCollectMissingSample(t *testing.T) {
	svc, _, _ := newTestService()
	req := mustCreate(t, svc)

	_, err := svc.Collect(context.Background(), req.ID, []string{"edta"}, "")
	var ve *apperr.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if ve.Reason != "missing required samples: serum" {
		t.Errorf("unexpected reason %q", ve.Reason)
	}
}

func TestCollectExtraSamplesAllowed(t *testing.T) {
	svc, _, _ := newTestService()
	req := mustCreate(t, svc)

	updated, err := svc.Collect(context.Background(), req.ID, []string{"edta", "serum", "urine"}, "")
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if updated.Status != StatusCollected {
		t.Errorf("expected status COLLECTED, got %s", updated.Status)
	}
}

func TestCollectTwiceFails(t *testing.T) {
	svc, _, _ := newTestService()
	req := mustCreate(t, svc)
	if _, err := svc.Collect(context.Background(), req.ID, []string{"edta", "serum"}, ""); err != nil {
		t.Fatalf("Collect: %v", err)
	}

	_, err := svc.Collect(context.Background(), req.ID, []string{"edta", "serum"}, "")
	var te *apperr.InvalidTransitionError
	if !errors.As(err, &te) {
		t.Fatalf("expected InvalidTransitionError, got %v", err)
	}
}

// -- Results --

func TestUpdateResults(t *testing.T) {
	svc, _, _ := newTestService()
	req := mustCreate(t, svc)
	if _, err := svc.Collect(context.Background(), req.ID, []string{"edta", "serum"}, ""); err != nil {
		t.Fatalf("Collect: %v", err)
	}

	updated, err := svc.UpdateResults(context.Background(), req.ID, "cbc", cbcResults())
	if err != nil {
		t.Fatalf("UpdateResults: %v", err)
	}
	if updated.Status != StatusAnalyzed {
		t.Errorf("expected status ANALYZED, got %s", updated.Status)
	}
	if len(updated.Results["cbc"]) != 2 {
		t.Errorf("expected 2 cbc entries, got %d", len(updated.Results["cbc"]))
	}

	// A second test's results must not clobber the first.
	updated, err = svc.UpdateResults(context.Background(), req.ID, "lipid", lipidResults())
	if err != nil {
		t.Fatalf("UpdateResults: %v", err)
	}
	if updated.Status != StatusAnalyzed {
		t.Errorf("expected status to stay ANALYZED, got %s", updated.Status)
	}
	if len(updated.Results["cbc"]) != 2 || len(updated.Results["lipid"]) != 1 {
		t.Errorf("expected both tests' results preserved: %+v", updated.Results)
	}
}

func TestUpdateResultsFromRegistered(t *testing.T) {
	svc, _, _ := newTestService()
	req := mustCreate(t, svc)

	updated, err := svc.UpdateResults(context.Background(), req.ID, "cbc", cbcResults())
	if err != nil {
		t.Fatalf("UpdateResults: %v", err)
	}
	if updated.Status != StatusAnalyzed {
		t.Errorf("expected status ANALYZED, got %s", updated.Status)
	}
}

func TestUpdateResultsUnknownTest(t *testing.T) {
	svc, _, _ := newTestService()
	req := mustCreate(t, svc)

	_, err := svc.UpdateResults(context.Background(), req.ID, "tsh", nil)
	var ve *apperr.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestUpdateAllResults(t *testing.T) {
	svc, _, _ := newTestService()
	req := mustCreate(t, svc)

	results := map[string][]ResultEntry{"cbc": cbcResults(), "lipid": lipidResults()}
	updated, err := svc.UpdateAllResults(context.Background(), req.ID, results)
	if err != nil {
		t.Fatalf("UpdateAllResults: %v", err)
	}
	if updated.Status != StatusAnalyzed {
		t.Errorf("expected status ANALYZED, got %s", updated.Status)
	}
}

func TestUpdateAllResultsRejectsForeignKeys(t *testing.T) {
	svc, _, _ := newTestService()
	req := mustCreate(t, svc)

	_, err := svc.UpdateAllResults(context.Background(), req.ID, map[string][]ResultEntry{
		"cbc": cbcResults(),
		"tsh": {{ParameterID: "tsh_val", Value: "2.0", Flag: "N"}},
	})
	var ve *apperr.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

// -- Verify --

func verifiedFixture(t *testing.T, svc *Service) *LabRequest {
	t.Helper()
	req := mustCreate(t, svc)
	if _, err := svc.Collect(context.Background(), req.ID, []string{"edta", "serum"}, ""); err != nil {
		t.Fatalf("Collect: %v", err)
	}
	results := map[string][]ResultEntry{"cbc": cbcResults(), "lipid": lipidResults()}
	if _, err := svc.UpdateAllResults(context.Background(), req.ID, results); err != nil {
		t.Fatalf("UpdateAllResults: %v", err)
	}
	verified, err := svc.Verify(context.Background(), req.ID, results)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	return verified
}

func TestVerify(t *testing.T) {
	svc, _, _ := newTestService()
	verified := verifiedFixture(t, svc)
	if verified.Status != StatusVerified {
		t.Errorf("expected status VERIFIED, got %s", verified.Status)
	}
}

func TestVerifyRequiresAnalyzed(t *testing.T) {
	svc, _, _ := newTestService()
	req := mustCreate(t, svc)

	_, err := svc.Verify(context.Background(), req.ID, map[string][]ResultEntry{
		"cbc": cbcResults(), "lipid": lipidResults(),
	})
	var te *apperr.InvalidTransitionError
	if !errors.As(err, &te) {
		t.Fatalf("expected InvalidTransitionError from REGISTERED, got %v", err)
	}
}

func TestVerifyMissingResults(t *testing.T) {
	svc, _, _ := newTestService()
	req := mustCreate(t, svc)
	if _, err := svc.UpdateAllResults(context.Background(), req.ID, map[string][]ResultEntry{"cbc": cbcResults()}); err != nil {
		t.Fatalf("UpdateAllResults: %v", err)
	}

	_, err := svc.Verify(context.Background(), req.ID, map[string][]ResultEntry{"cbc": cbcResults()})
	var ve *apperr.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError for missing lipid results, got %v", err)
	}
}

func TestVerifyExtraneousResults(t *testing.T) {
	svc, _, _ := newTestService()
	req := mustCreate(t, svc)
	results := map[string][]ResultEntry{"cbc": cbcResults(), "lipid": lipidResults()}
	if _, err := svc.UpdateAllResults(context.Background(), req.ID, results); err != nil {
		t.Fatalf("UpdateAllResults: %v", err)
	}

	results["tsh"] = []ResultEntry{{ParameterID: "tsh_val", Value: "2.0", Flag: "N"}}
	_, err := svc.Verify(context.Background(), req.ID, results)
	var ve *apperr.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError for extraneous key, got %v", err)
	}
}

func TestVerifyEmptyResultList(t *testing.T) {
	svc, _, _ := newTestService()
	req := mustCreate(t, svc)
	if _, err := svc.UpdateAllResults(context.Background(), req.ID, map[string][]ResultEntry{
		"cbc": cbcResults(), "lipid": lipidResults(),
	}); err != nil {
		t.Fatalf("UpdateAllResults: %v", err)
	}

	_, err := svc.Verify(context.Background(), req.ID, map[string][]ResultEntry{
		"cbc": cbcResults(), "lipid": {},
	})
	var ve *apperr.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError for empty result list, got %v", err)
	}
}

func TestVerifyTwiceFails(t *testing.T) {
	svc, _, _ := newTestService()
	verified := verifiedFixture(t, svc)

	_, err := svc.Verify(context.Background(), verified.ID, verified.Results)
	var te *apperr.InvalidTransitionError
	if !errors.As(err, &te) {
		t.Fatalf("expected InvalidTransitionError on re-verify, got %v", err)
	}
}

// -- Post-verification freeze --

func TestVerifiedRequestIsFrozen(t *testing.T) {
	svc, _, _ := newTestService()
	verified := verifiedFixture(t, svc)

	var se *apperr.InvalidStateError

	_, err := svc.UpdateResults(context.Background(), verified.ID, "cbc", cbcResults())
	if !errors.As(err, &se) {
		t.Errorf("expected InvalidStateError from UpdateResults, got %v", err)
	}

	_, err = svc.UpdateAllResults(context.Background(), verified.ID, verified.Results)
	if !errors.As(err, &se) {
		t.Errorf("expected InvalidStateError from UpdateAllResults, got %v", err)
	}

	_, err = svc.UpdateComment(context.Background(), verified.ID, "late note")
	if !errors.As(err, &se) {
		t.Errorf("expected InvalidStateError from UpdateComment, got %v", err)
	}
}

func TestInterpretationWritableAfterVerify(t *testing.T) {
	svc, _, _ := newTestService()
	verified := verifiedFixture(t, svc)

	updated, err := svc.SetAIInterpretation(context.Background(), verified.ID, "unremarkable")
	if err != nil {
		t.Fatalf("SetAIInterpretation: %v", err)
	}
	if updated.AIInterpretation != "unremarkable" {
		t.Errorf("expected interpretation stored, got %q", updated.AIInterpretation)
	}
}

// Store-level enforcement: a disallowed write must be rejected by the
// repository itself, not only by the service methods.
func TestStoreRejectsDirectTampering(t *testing.T) {
	svc, repo, _ := newTestService()
	verified := verifiedFixture(t, svc)

	tampered := verified.Clone()
	tampered.Status = StatusRegistered
	var te *apperr.InvalidTransitionError
	if !errors.As(repo.Update(context.Background(), tampered), &te) {
		t.Error("expected store to reject status regression")
	}

	tampered = verified.Clone()
	tampered.Results["cbc"] = nil
	var se *apperr.InvalidStateError
	if !errors.As(repo.Update(context.Background(), tampered), &se) {
		t.Error("expected store to reject frozen results edit")
	}
}

// -- Lifecycle (the full happy path) --

func TestLifecycle(t *testing.T) {
	svc, _, _ := newTestService()
	req := mustCreate(t, svc)

	if req.Payment.NetPayable != 2025 || req.Payment.BalanceDue != 25 || req.Payment.DiscountPercent != 10.0 {
		t.Fatalf("unexpected payment: %+v", req.Payment)
	}

	collected, err := svc.Collect(context.Background(), req.ID, []string{"edta", "serum"}, "")
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if collected.Status != StatusCollected {
		t.Fatalf("expected COLLECTED, got %s", collected.Status)
	}

	results := map[string][]ResultEntry{"cbc": cbcResults(), "lipid": lipidResults()}
	analyzed, err := svc.UpdateAllResults(context.Background(), req.ID, results)
	if err != nil {
		t.Fatalf("UpdateAllResults: %v", err)
	}
	if analyzed.Status != StatusAnalyzed {
		t.Fatalf("expected ANALYZED, got %s", analyzed.Status)
	}

	verified, err := svc.Verify(context.Background(), req.ID, results)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if verified.Status != StatusVerified {
		t.Fatalf("expected VERIFIED, got %s", verified.Status)
	}

	_, err = svc.UpdateComment(context.Background(), req.ID, "post-verify note")
	var se *apperr.InvalidStateError
	if !errors.As(err, &se) {
		t.Fatalf("expected InvalidStateError after verification, got %v", err)
	}
}

// -- Patient name sync --

func TestSyncPatientName(t *testing.T) {
	svc, _, _ := newTestService()
	verified := verifiedFixture(t, svc)

	if err := svc.SyncPatientName(context.Background(), "P001", "John Q. Doe"); err != nil {
		t.Fatalf("SyncPatientName: %v", err)
	}
	got, err := svc.Get(context.Background(), verified.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.PatientName != "John Q. Doe" {
		t.Errorf("expected synced name even on verified request, got %q", got.PatientName)
	}
}
