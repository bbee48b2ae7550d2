// Package notify records outbound owner notifications. Delivery is mocked:
// every message is written to notification_logs with status "sent". Sending
// is strictly best-effort: callers receive an explicit Result but must never
// fail their own operation because of it.
package notify

import (
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"vetcore/m/domain"
)

// Result statuses.
const (
	StatusSent   = "sent"
	StatusFailed = "failed"
)

// Result describes the outcome of one dispatch attempt.
type Result struct {
	Status string
	Reason string
	Log    *domain.NotificationLog
}

func (r Result) Sent() bool { return r.Status == StatusSent }

// Notifier writes notification log rows.
type Notifier struct {
	db  *sqlx.DB
	log *zap.Logger
}

func New(db *sqlx.DB, log *zap.Logger) *Notifier {
	return &Notifier{db: db, log: log}
}

// Send records a notification for an owner. Failures are logged and folded
// into the Result; they are never returned as errors.
func (n *Notifier) Send(ownerID int64, appointmentID *int64, channel, message string) Result {
	if channel == "" {
		channel = "sms"
	}
	sentAt := time.Now().UTC().Format("2006-01-02 15:04:05")

	var id int64
	err := n.db.QueryRowx(
		`INSERT INTO notification_logs (owner_id, appointment_id, channel, message, status, sent_at)
         VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		ownerID, appointmentID, channel, message, StatusSent, sentAt,
	).Scan(&id)
	if err != nil {
		n.log.Warn("notification dispatch failed",
			zap.Int64("owner_id", ownerID),
			zap.String("channel", channel),
			zap.Error(err))
		return Result{Status: StatusFailed, Reason: err.Error()}
	}

	return Result{Status: StatusSent, Log: &domain.NotificationLog{
		ID:            id,
		OwnerID:       ownerID,
		AppointmentID: appointmentID,
		Channel:       channel,
		Message:       message,
		Status:        StatusSent,
		SentAt:        sentAt,
	}}
}
