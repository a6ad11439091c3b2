// Package catalog holds the immutable reference data of the lab: sample
// types, tests, and the parameters each test reports.
package catalog

// SampleType describes the physical specimen a test requires.
type SampleType struct {
	ID        string `db:"id" json:"id"`
	Name      string `db:"name" json:"name"`
	TubeColor string `db:"tube_color" json:"tubeColor"`
}

// TestParameter is one measured value within a test. Its ID is unique within
// the owning test and it is deleted with the test.
type TestParameter struct {
	ID             string `db:"id" json:"id"`
	TestID         string `db:"test_id" json:"-"`
	Name           string `db:"name" json:"name"`
	Unit           string `db:"unit" json:"unit"`
	ReferenceRange string `db:"reference_range" json:"referenceRange"`
}

// LabTest is a priced catalog entry referencing one sample type and owning
// an ordered list of parameters.
type LabTest struct {
	ID           string          `db:"id" json:"id"`
	Name         string          `db:"name" json:"name"`
	Price        float64         `db:"price" json:"price"`
	Category     string          `db:"category" json:"category"`
	SampleTypeID string          `db:"sample_type_id" json:"sampleTypeId"`
	Parameters   []TestParameter `db:"-" json:"parameters"`
}

// ParameterByID returns the parameter with the given id, or nil.
func (t *LabTest) ParameterByID(id string) *TestParameter {
	for i := range t.Parameters {
		if t.Parameters[i].ID == id {
			return &t.Parameters[i]
		}
	}
	return nil
}
