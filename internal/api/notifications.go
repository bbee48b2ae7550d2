package api

import (
	"net/http"
	"strconv"
	"strings"

	"vetcore/m/domain"
)

type notificationRequest struct {
	OwnerID       int64  `json:"owner_id"`
	AppointmentID *int64 `json:"appointment_id,omitempty"`
	Channel       string `json:"channel"`
	Message       string `json:"message"`
}

// sendNotification dispatches a one-off message and responds with the log
// entry, including the delivery status.
func (h *Handler) sendNotification(w http.ResponseWriter, r *http.Request) {
	var req notificationRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Channel == "" {
		req.Channel = "sms"
	}
	if strings.TrimSpace(req.Message) == "" {
		respondError(w, http.StatusBadRequest, "message is required")
		return
	}

	var exists int
	if err := h.db.Get(&exists, `SELECT COUNT(*) FROM owners WHERE id = $1`, req.OwnerID); err != nil || exists == 0 {
		respondError(w, http.StatusNotFound, "Owner not found")
		return
	}

	result := h.notifier.Send(req.OwnerID, req.AppointmentID, req.Channel, req.Message)
	if !result.Sent() {
		respondJSON(w, http.StatusOK, map[string]string{
			"status": result.Status,
			"reason": result.Reason,
		})
		return
	}
	respondJSON(w, http.StatusCreated, result.Log)
}

func (h *Handler) notificationLogs(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}
	query := `SELECT id, owner_id, appointment_id, channel, message, status, sent_at FROM notification_logs`
	var args []any
	if raw := strings.TrimSpace(r.URL.Query().Get("owner_id")); raw != "" {
		ownerID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			respondError(w, http.StatusBadRequest, "owner_id must be an integer")
			return
		}
		query += " WHERE owner_id = $1"
		args = append(args, ownerID)
	}
	query += " ORDER BY sent_at DESC, id DESC"

	var logs []domain.NotificationLog
	if err := h.db.Select(&logs, query, args...); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to list notifications")
		return
	}
	if logs == nil {
		logs = []domain.NotificationLog{}
	}
	respondJSON(w, http.StatusOK, logs)
}
