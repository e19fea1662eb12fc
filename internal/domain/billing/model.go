package billing

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when no bill exists for the given id.
	ErrNotFound = errors.New("bill not found")
	// ErrInvalidStatus is returned for a status outside the known set.
	ErrInvalidStatus = errors.New("invalid bill status")
	// ErrBadTransition is returned when a status change is not allowed from
	// the bill's current status.
	ErrBadTransition = errors.New("status transition not allowed")
	// ErrInvalidBill wraps create-time validation failures, separating caller
	// mistakes from store errors.
	ErrInvalidBill = errors.New("invalid bill")
)

const (
	StatusPending   = "pending"
	StatusPaid      = "paid"
	StatusOverdue   = "overdue"
	StatusCancelled = "cancelled"
)

var validStatuses = map[string]bool{
	StatusPending:   true,
	StatusPaid:      true,
	StatusOverdue:   true,
	StatusCancelled: true,
}

// statusTransitions is the closed transition table. Absent statuses (paid,
// cancelled) are terminal.
var statusTransitions = map[string]map[string]bool{
	StatusPending: {StatusPaid: true, StatusOverdue: true, StatusCancelled: true},
	StatusOverdue: {StatusPaid: true, StatusCancelled: true},
}

// ValidStatus reports whether s is one of the known bill statuses.
func ValidStatus(s string) bool {
	return validStatuses[s]
}

// CanTransition reports whether a bill may move from one status to another.
func CanTransition(from, to string) bool {
	return statusTransitions[from][to]
}

// ServiceLine is a single billed item. Amounts are per line; the bill total
// is computed from these at creation and never recomputed.
type ServiceLine struct {
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
}

// Bill maps to the bill table. card_id matches the card's public id as a
// plain string; the referenced card may not exist, and the names are
// denormalized at creation so a bill stays readable even then.
type Bill struct {
	ID          uuid.UUID     `db:"id" json:"id"`
	CardID      string        `db:"card_id" json:"card_id"`
	PatientName string        `db:"patient_name" json:"patient_name"`
	DoctorName  string        `db:"doctor_name" json:"doctor_name"`
	LabName     string        `db:"lab_name" json:"lab_name"`
	Services    []ServiceLine `db:"services" json:"services"`
	TotalAmount float64       `db:"total_amount" json:"total_amount"`
	DueDate     string        `db:"due_date" json:"due_date"`
	Status      string        `db:"status" json:"status"`
	Notes       *string       `db:"notes" json:"notes,omitempty"`
	CreatedAt   time.Time     `db:"created_at" json:"created_at"`
}
