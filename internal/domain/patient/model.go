package patient

import (
	"time"

	"github.com/google/uuid"
)

// Patient maps to the patient table. MedicalRecordNumber is unique per
// tenant and auto-assigned when blank.
type Patient struct {
	ID                  uuid.UUID  `db:"id" json:"id"`
	TenantID            uuid.UUID  `db:"tenant_id" json:"tenant_id"`
	FirstName           string     `db:"first_name" json:"first_name"`
	LastName            string     `db:"last_name" json:"last_name"`
	BirthDate           *time.Time `db:"birth_date" json:"birth_date,omitempty"`
	Gender              *string    `db:"gender" json:"gender,omitempty"`
	Phone               *string    `db:"phone" json:"phone,omitempty"`
	Email               *string    `db:"email" json:"email,omitempty"`
	Address             *string    `db:"address" json:"address,omitempty"`
	Allergies           *string    `db:"allergies" json:"allergies,omitempty"`
	Notes               *string    `db:"notes" json:"notes,omitempty"`
	MedicalRecordNumber string     `db:"medical_record_number" json:"medical_record_number"`
	CreatedAt           time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time  `db:"updated_at" json:"updated_at"`
}

var validGenders = map[string]bool{"M": true, "F": true, "O": true}
