package api

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"vetcore/m/domain"
)

func prettyDate(d string) string {
	if t, err := time.Parse(dateLayout, d); err == nil {
		return t.Format("02-Jan-2006")
	}
	return d
}

func prettyTime(tm string) string {
	if t, err := time.Parse(timeLayout, tm); err == nil {
		return t.Format("03:04 PM")
	}
	return tm
}

type appointmentCreateRequest struct {
	OwnerID         int64  `json:"owner_id"`
	PetID           int64  `json:"pet_id"`
	AppointmentDate string `json:"appointment_date"`
	AppointmentTime string `json:"appointment_time"`
	Type            string `json:"type"`
	Notes           string `json:"notes,omitempty"`
}

func (h *Handler) createAppointment(w http.ResponseWriter, r *http.Request) {
	if !h.requireReceptionist(w, r) {
		return
	}
	var req appointmentCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if _, err := time.Parse(dateLayout, req.AppointmentDate); err != nil {
		respondError(w, http.StatusBadRequest, "appointment_date must be in YYYY-MM-DD format")
		return
	}
	if _, err := time.Parse(timeLayout, req.AppointmentTime); err != nil {
		respondError(w, http.StatusBadRequest, "appointment_time must be in HH:MM format")
		return
	}
	if req.Type != domain.AppointmentWalkIn && req.Type != domain.AppointmentScheduled {
		respondError(w, http.StatusBadRequest, "type must be walk-in or scheduled")
		return
	}

	var owner domain.Owner
	if err := h.db.Get(&owner, `SELECT id, name, phone, email, address FROM owners WHERE id = $1`, req.OwnerID); err != nil {
		respondError(w, http.StatusNotFound, "Owner not found")
		return
	}
	var pet domain.Pet
	if err := h.db.Get(&pet, `SELECT id, owner_id, name, species, breed, age FROM pets WHERE id = $1`, req.PetID); err != nil {
		respondError(w, http.StatusNotFound, "Pet not found")
		return
	}

	// Walk-in and scheduled appointments both start out scheduled.
	createdAt := time.Now().UTC().Format(timestampLayout)
	var id int64
	err := h.db.QueryRowx(
		`INSERT INTO appointments (owner_id, pet_id, appointment_date, appointment_time, type, status, notes, created_at)
         VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`,
		req.OwnerID, req.PetID, req.AppointmentDate, req.AppointmentTime,
		req.Type, domain.StatusScheduled, nullIfEmpty(req.Notes), createdAt).Scan(&id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to create appointment")
		return
	}

	msg := fmt.Sprintf("Hi %s! Your appointment for %s is confirmed on %s at %s. — %s",
		owner.Name, pet.Name, prettyDate(req.AppointmentDate), prettyTime(req.AppointmentTime), h.cfg.ClinicName)
	h.notifier.Send(owner.ID, &id, "sms", msg)

	respondJSON(w, http.StatusCreated, domain.Appointment{
		ID: id, OwnerID: req.OwnerID, PetID: req.PetID,
		AppointmentDate: req.AppointmentDate, AppointmentTime: req.AppointmentTime,
		Type: req.Type, Status: domain.StatusScheduled,
		Notes: nullIfEmpty(req.Notes), CreatedAt: createdAt,
	})
}

func (h *Handler) todayAppointments(w http.ResponseWriter, r *http.Request) {
	if !h.requireReceptionist(w, r) {
		return
	}
	h.appointmentsForDate(w, time.Now().UTC().Format(dateLayout))
}

func (h *Handler) appointmentsByDate(w http.ResponseWriter, r *http.Request) {
	if !h.requireReceptionist(w, r) {
		return
	}
	day := strings.TrimSpace(r.URL.Query().Get("appointment_date"))
	if _, err := time.Parse(dateLayout, day); err != nil {
		respondError(w, http.StatusBadRequest, "appointment_date must be in YYYY-MM-DD format")
		return
	}
	h.appointmentsForDate(w, day)
}

func (h *Handler) appointmentsForDate(w http.ResponseWriter, day string) {
	var appts []domain.Appointment
	err := h.db.Select(&appts,
		`SELECT id, owner_id, pet_id, appointment_date, appointment_time, type, status, notes, created_at
         FROM appointments WHERE appointment_date = $1 ORDER BY appointment_time`, day)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to list appointments")
		return
	}
	if appts == nil {
		appts = []domain.Appointment{}
	}
	respondJSON(w, http.StatusOK, appts)
}

type appointmentUpdateRequest struct {
	AppointmentDate *string `json:"appointment_date"`
	AppointmentTime *string `json:"appointment_time"`
	Status          *string `json:"status"`
	Notes           *string `json:"notes"`
}

// updateAppointment applies a partial update. Status transitions are not
// guarded; moving out of a terminal state is technically allowed.
func (h *Handler) updateAppointment(w http.ResponseWriter, r *http.Request) {
	if !h.requireReceptionist(w, r) {
		return
	}
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid appointment id")
		return
	}
	var req appointmentUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	var appt domain.Appointment
	err = h.db.Get(&appt,
		`SELECT id, owner_id, pet_id, appointment_date, appointment_time, type, status, notes, created_at
         FROM appointments WHERE id = $1`, id)
	if err != nil {
		respondError(w, http.StatusNotFound, "Appointment not found")
		return
	}

	oldStatus := appt.Status
	if req.AppointmentDate != nil {
		if _, err := time.Parse(dateLayout, *req.AppointmentDate); err != nil {
			respondError(w, http.StatusBadRequest, "appointment_date must be in YYYY-MM-DD format")
			return
		}
		appt.AppointmentDate = *req.AppointmentDate
	}
	if req.AppointmentTime != nil {
		if _, err := time.Parse(timeLayout, *req.AppointmentTime); err != nil {
			respondError(w, http.StatusBadRequest, "appointment_time must be in HH:MM format")
			return
		}
		appt.AppointmentTime = *req.AppointmentTime
	}
	if req.Status != nil {
		if *req.Status != domain.StatusScheduled && *req.Status != domain.StatusCompleted && *req.Status != domain.StatusCancelled {
			respondError(w, http.StatusBadRequest, "status must be scheduled, completed or cancelled")
			return
		}
		appt.Status = *req.Status
	}
	if req.Notes != nil {
		appt.Notes = nullIfEmpty(*req.Notes)
	}

	_, err = h.db.Exec(
		`UPDATE appointments SET appointment_date = $1, appointment_time = $2, status = $3, notes = $4 WHERE id = $5`,
		appt.AppointmentDate, appt.AppointmentTime, appt.Status, appt.Notes, id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to update appointment")
		return
	}

	if appt.Status == domain.StatusCancelled && oldStatus != domain.StatusCancelled {
		var owner domain.Owner
		var pet domain.Pet
		if err := h.db.Get(&owner, `SELECT id, name, phone, email, address FROM owners WHERE id = $1`, appt.OwnerID); err == nil {
			petName := "your pet"
			if err := h.db.Get(&pet, `SELECT id, owner_id, name, species, breed, age FROM pets WHERE id = $1`, appt.PetID); err == nil {
				petName = pet.Name
			}
			msg := fmt.Sprintf("Hi %s, your appointment for %s on %s has been cancelled. Please contact us to reschedule. — %s",
				owner.Name, petName, prettyDate(appt.AppointmentDate), h.cfg.ClinicName)
			h.notifier.Send(owner.ID, &appt.ID, "sms", msg)
		}
	}

	respondJSON(w, http.StatusOK, appt)
}
