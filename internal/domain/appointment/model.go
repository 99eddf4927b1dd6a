package appointment

import (
	"time"

	"github.com/google/uuid"
)

// Status is an appointment lifecycle state.
type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusCheckedIn Status = "checked_in"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// validTransitions encodes scheduled→checked_in→completed, with any
// non-terminal state cancellable.
var validTransitions = map[Status][]Status{
	StatusScheduled: {StatusCheckedIn, StatusCancelled},
	StatusCheckedIn: {StatusCompleted, StatusCancelled},
}

// CanTransition reports whether moving from one status to another is allowed.
func CanTransition(from, to Status) bool {
	for _, next := range validTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Appointment maps to the appointment table. StaffID is nulled when the
// staff record is deleted.
type Appointment struct {
	ID        uuid.UUID  `db:"id" json:"id"`
	TenantID  uuid.UUID  `db:"tenant_id" json:"tenant_id"`
	PatientID uuid.UUID  `db:"patient_id" json:"patient_id"`
	StaffID   *uuid.UUID `db:"staff_id" json:"staff_id,omitempty"`
	Date      time.Time  `db:"date" json:"date"`
	Location  *string    `db:"location" json:"location,omitempty"`
	Status    Status     `db:"status" json:"status"`
	Reason    *string    `db:"reason" json:"reason,omitempty"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
}
