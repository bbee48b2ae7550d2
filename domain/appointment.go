package domain

// Appointment types.
const (
	AppointmentWalkIn    = "walk-in"
	AppointmentScheduled = "scheduled"
)

// Appointment statuses. "completed" and "cancelled" are terminal in intent,
// though UpdateAppointment does not enforce that.
const (
	StatusScheduled = "scheduled"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

type Appointment struct {
	ID              int64   `db:"id" json:"id"`
	OwnerID         int64   `db:"owner_id" json:"owner_id"`
	PetID           int64   `db:"pet_id" json:"pet_id"`
	AppointmentDate string  `db:"appointment_date" json:"appointment_date"`
	AppointmentTime string  `db:"appointment_time" json:"appointment_time"`
	Type            string  `db:"type" json:"type"`
	Status          string  `db:"status" json:"status"`
	Notes           *string `db:"notes" json:"notes,omitempty"`
	CreatedAt       string  `db:"created_at" json:"created_at"`
}
