// Package labrequest owns the lifecycle of a lab request: registration,
// sample collection, result entry, and verification. Every mutation is
// checked against the status transition table and the post-verification
// freeze, at the store write path as well as at the API boundary.
package labrequest

import (
	"reflect"
	"time"

	"github.com/google/uuid"

	"github.com/munaimtahir/lims-googel/internal/platform/apperr"
)

const (
	StatusRegistered = "REGISTERED"
	StatusCollected  = "COLLECTED"
	StatusAnalyzed   = "ANALYZED"
	StatusVerified   = "VERIFIED"
)

// Transitions is the forward-only status graph. Result entry may move an
// uncollected request straight to ANALYZED, hence the extra edge; there is
// no regression and VERIFIED is terminal.
var Transitions = map[string][]string{
	StatusRegistered: {StatusCollected, StatusAnalyzed},
	StatusCollected:  {StatusAnalyzed},
	StatusAnalyzed:   {StatusVerified},
	StatusVerified:   {},
}

// CanTransition reports whether from -> to is in the transition table.
func CanTransition(from, to string) bool {
	for _, next := range Transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ValidateTransition returns an InvalidTransitionError unless from -> to is
// allowed.
func ValidateTransition(from, to string) error {
	if !CanTransition(from, to) {
		return &apperr.InvalidTransitionError{From: from, To: to, Allowed: Transitions[from]}
	}
	return nil
}

// ResultEntry is one recorded value for a test parameter. Flag is N, H or L.
type ResultEntry struct {
	ParameterID string `json:"parameterId"`
	Value       string `json:"value"`
	Flag        string `json:"flag"`
}

// Payment holds the raw amounts supplied by the client and the fields the
// server derives from them. Derived fields are recomputed on every write.
type Payment struct {
	TotalAmount     float64 `json:"totalAmount"`
	DiscountAmount  float64 `json:"discountAmount"`
	PaidAmount      float64 `json:"paidAmount"`
	NetPayable      float64 `json:"netPayable"`
	BalanceDue      float64 `json:"balanceDue"`
	DiscountPercent float64 `json:"discountPercent"`
}

type LabRequest struct {
	ID                 uuid.UUID                `json:"id"`
	LabNo              string                   `json:"labNo"`
	PatientID          string                   `json:"patient"`
	PatientName        string                   `json:"patientName"`
	Date               time.Time                `json:"date"`
	TestIDs            []string                 `json:"testIds"`
	Status             string                   `json:"status"`
	Results            map[string][]ResultEntry `json:"results"`
	Payment            Payment                  `json:"payment"`
	ReferredBy         string                   `json:"referredBy"`
	Comments           string                   `json:"comments"`
	AIInterpretation   string                   `json:"aiInterpretation"`
	CollectedSamples   []string                 `json:"collectedSamples"`
	PhlebotomyComments string                   `json:"phlebotomyComments"`
	CreatedAt          time.Time                `json:"createdAt"`
	UpdatedAt          time.Time                `json:"updatedAt"`
}

// HasTest reports whether the test is part of this request.
func (r *LabRequest) HasTest(testID string) bool {
	for _, id := range r.TestIDs {
		if id == testID {
			return true
		}
	}
	return false
}

// Clone returns a deep copy safe to mutate before an update.
func (r *LabRequest) Clone() *LabRequest {
	cp := *r
	cp.TestIDs = append([]string(nil), r.TestIDs...)
	cp.CollectedSamples = append([]string(nil), r.CollectedSamples...)
	cp.Results = make(map[string][]ResultEntry, len(r.Results))
	for k, v := range r.Results {
		cp.Results[k] = append([]ResultEntry(nil), v...)
	}
	return &cp
}

// ValidateUpdate is the store-level guard: every repository implementation
// must run it against the currently persisted row before writing, under the
// same transaction or lock as the write itself.
func ValidateUpdate(old, new *LabRequest) error {
	if old.Status != new.Status {
		if err := ValidateTransition(old.Status, new.Status); err != nil {
			return err
		}
	}
	if old.Status == StatusVerified {
		if !reflect.DeepEqual(old.Results, new.Results) {
			return &apperr.InvalidStateError{Status: old.Status, Reason: "results are frozen after verification"}
		}
		if old.Comments != new.Comments {
			return &apperr.InvalidStateError{Status: old.Status, Reason: "comments are frozen after verification"}
		}
		if !reflect.DeepEqual(old.CollectedSamples, new.CollectedSamples) ||
			old.PhlebotomyComments != new.PhlebotomyComments {
			return &apperr.InvalidStateError{Status: old.Status, Reason: "collection details are frozen after verification"}
		}
	}
	return nil
}
