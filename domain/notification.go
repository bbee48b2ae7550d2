package domain

type NotificationLog struct {
	ID            int64   `db:"id" json:"id"`
	OwnerID       int64   `db:"owner_id" json:"owner_id"`
	AppointmentID *int64  `db:"appointment_id" json:"appointment_id,omitempty"`
	Channel       string  `db:"channel" json:"channel"`
	Message       string  `db:"message" json:"message"`
	Status        string  `db:"status" json:"status"`
	SentAt        string  `db:"sent_at" json:"sent_at"`
}
