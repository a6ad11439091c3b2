package labrequest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/munaimtahir/lims-googel/internal/platform/ai"
)

const (
	msgAINotConfigured = "AI interpretation is not available. Please configure GEMINI_API_KEY."
	msgAIFailed        = "Unable to generate AI interpretation at this time. Please try again later."
)

// enrichedResult is one recorded value joined with its parameter metadata.
type enrichedResult struct {
	Name           string
	Value          string
	Unit           string
	ReferenceRange string
	Flag           string
}

// testResults pairs a test's display name with its enriched results,
// preserving the request's test order.
type testResults struct {
	TestName string
	Results  []enrichedResult
}

// Interpret builds a prompt from the request's enriched results and asks the
// text-generation collaborator for an interpretation. Collaborator failures
// never fail the request: the stored interpretation becomes an explanatory
// message and the cause is logged. The call is bounded by the configured
// timeout and holds no lock while in flight.
func (s *Service) Interpret(ctx context.Context, id uuid.UUID) (*LabRequest, error) {
	req, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	p, err := s.patients.Get(ctx, req.PatientID)
	if err != nil {
		return nil, err
	}
	tests, err := s.tests.GetTests(ctx, req.TestIDs)
	if err != nil {
		return nil, err
	}

	var enriched []testResults
	for _, t := range tests {
		entries, ok := req.Results[t.ID]
		if !ok {
			continue
		}
		tr := testResults{TestName: t.Name}
		for _, entry := range entries {
			param := t.ParameterByID(entry.ParameterID)
			if param == nil {
				continue
			}
			flag := entry.Flag
			if flag == "" {
				flag = "N"
			}
			tr.Results = append(tr.Results, enrichedResult{
				Name:           param.Name,
				Value:          entry.Value,
				Unit:           param.Unit,
				ReferenceRange: param.ReferenceRange,
				Flag:           flag,
			})
		}
		enriched = append(enriched, tr)
	}

	prompt := buildPrompt(p.Name, p.Age, p.Gender, enriched)

	genCtx, cancel := context.WithTimeout(ctx, s.aiTimeout)
	defer cancel()

	start := time.Now()
	text, err := s.gen.Generate(genCtx, prompt)
	latency := time.Since(start)
	switch {
	case err == nil:
		s.logger.Info().
			Str("lab_no", req.LabNo).
			Dur("latency", latency).
			Msg("ai interpretation generated")
	case errors.Is(err, context.DeadlineExceeded), errors.Is(genCtx.Err(), context.DeadlineExceeded):
		s.logger.Error().
			Err(err).
			Str("lab_no", req.LabNo).
			Dur("latency", latency).
			Msg("ai interpretation timed out")
		text = msgAIFailed
	default:
		ev := s.logger.Error().
			Err(err).
			Str("lab_no", req.LabNo).
			Dur("latency", latency)
		if errors.Is(err, ai.ErrNotConfigured) {
			text = msgAINotConfigured
			ev.Msg("ai interpretation unavailable")
		} else {
			text = msgAIFailed
			ev.Msg("ai interpretation failed")
		}
	}

	return s.SetAIInterpretation(ctx, id, text)
}

func buildPrompt(name string, age int, gender string, tests []testResults) string {
	var b strings.Builder
	fmt.Fprintf(&b, `You are a medical professional assistant analyzing laboratory test results.

Patient Information:
- Name: %s
- Age: %d years
- Gender: %s

Laboratory Test Results:

`, name, age, gender)

	for _, t := range tests {
		fmt.Fprintf(&b, "\n%s:\n", t.TestName)
		for _, r := range t.Results {
			marker := ""
			switch r.Flag {
			case "H":
				marker = " [HIGH]"
			case "L":
				marker = " [LOW]"
			}
			fmt.Fprintf(&b, "  - %s: %s %s%s", r.Name, r.Value, r.Unit, marker)
			if r.ReferenceRange != "" {
				fmt.Fprintf(&b, " (Reference: %s)", r.ReferenceRange)
			}
			b.WriteString("\n")
		}
	}

	b.WriteString(`
Please provide a professional medical interpretation of these results including:
1. Summary of abnormal findings (if any)
2. Clinical significance of the results
3. Possible conditions indicated by the abnormalities
4. Recommendations for follow-up (if needed)

Keep the interpretation clear, concise, and professional. Focus on clinically significant findings.
`)
	return b.String()
}
