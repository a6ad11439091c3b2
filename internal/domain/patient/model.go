// Package patient is the registry of people the lab serves. Identifiers are
// assigned sequentially at registration and never change.
package patient

import (
	"fmt"
	"time"

	"github.com/munaimtahir/lims-googel/internal/platform/apperr"
)

const (
	GenderMale   = "Male"
	GenderFemale = "Female"
	GenderOther  = "Other"
)

var validGenders = map[string]bool{
	GenderMale:   true,
	GenderFemale: true,
	GenderOther:  true,
}

type Patient struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Age       int       `db:"age" json:"age"`
	Gender    string    `db:"gender" json:"gender"`
	Phone     string    `db:"phone" json:"phone"`
	Email     string    `db:"email" json:"email,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// FormatID renders the nth patient identifier, e.g. FormatID(7) == "P007".
func FormatID(n int64) string {
	return fmt.Sprintf("P%03d", n)
}

// Validate checks the fields a caller may set.
func (p *Patient) Validate() error {
	if p.Name == "" {
		return apperr.Validation("name", "name is required")
	}
	if p.Age < 0 {
		return apperr.Validation("age", "age must not be negative")
	}
	if !validGenders[p.Gender] {
		return apperr.Validation("gender", "gender must be one of Male, Female, Other")
	}
	if p.Phone == "" {
		return apperr.Validation("phone", "phone is required")
	}
	return nil
}
