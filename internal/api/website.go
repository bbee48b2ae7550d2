package api

import (
	"net/http"
	"strings"
	"time"

	"vetcore/m/domain"
)

func (h *Handler) clinicInfo(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"name":    h.cfg.ClinicName,
		"address": h.cfg.ClinicAddress,
		"phone":   h.cfg.ClinicPhone,
		"hours":   h.cfg.ClinicHours,
		"about":   h.cfg.ClinicAbout,
	})
}

func (h *Handler) publicServices(w http.ResponseWriter, r *http.Request) {
	var services []domain.Service
	err := h.db.Select(&services,
		`SELECT id, name, category, price, is_active FROM services WHERE is_active = 1 ORDER BY name`)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to list services")
		return
	}
	if services == nil {
		services = []domain.Service{}
	}
	respondJSON(w, http.StatusOK, services)
}

type publicAppointmentRequestBody struct {
	OwnerName       string `json:"owner_name"`
	Phone           string `json:"phone"`
	Email           string `json:"email,omitempty"`
	PetName         string `json:"pet_name"`
	Species         string `json:"species"`
	AppointmentDate string `json:"appointment_date"`
	AppointmentTime string `json:"appointment_time"`
	Notes           string `json:"notes,omitempty"`
}

// publicAppointmentRequest books from the public site. The owner and pet are
// matched by phone and name, and created when missing, so repeat visitors do
// not produce duplicate rows.
func (h *Handler) publicAppointmentRequest(w http.ResponseWriter, r *http.Request) {
	var req publicAppointmentRequestBody
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.OwnerName) == "" || strings.TrimSpace(req.Phone) == "" {
		respondError(w, http.StatusBadRequest, "owner_name and phone are required")
		return
	}
	if strings.TrimSpace(req.PetName) == "" || strings.TrimSpace(req.Species) == "" {
		respondError(w, http.StatusBadRequest, "pet_name and species are required")
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

	tx, err := h.db.Beginx()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "database error")
		return
	}
	defer tx.Rollback()

	var ownerID int64
	err = tx.Get(&ownerID, `SELECT id FROM owners WHERE phone = $1`, req.Phone)
	if err != nil {
		err = tx.QueryRowx(
			`INSERT INTO owners (name, phone, email, address) VALUES ($1, $2, $3, $4) RETURNING id`,
			req.OwnerName, req.Phone, nullIfEmpty(req.Email), nil).Scan(&ownerID)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "unable to register owner")
			return
		}
	}

	var petID int64
	err = tx.Get(&petID, `SELECT id FROM pets WHERE owner_id = $1 AND name = $2`, ownerID, req.PetName)
	if err != nil {
		err = tx.QueryRowx(
			`INSERT INTO pets (owner_id, name, species, breed, age) VALUES ($1, $2, $3, $4, $5) RETURNING id`,
			ownerID, req.PetName, req.Species, nil, nil).Scan(&petID)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "unable to register pet")
			return
		}
	}

	createdAt := time.Now().UTC().Format(timestampLayout)
	var id int64
	err = tx.QueryRowx(
		`INSERT INTO appointments (owner_id, pet_id, appointment_date, appointment_time, type, status, notes, created_at)
         VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`,
		ownerID, petID, req.AppointmentDate, req.AppointmentTime,
		domain.AppointmentScheduled, domain.StatusScheduled, nullIfEmpty(req.Notes), createdAt).Scan(&id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to create appointment")
		return
	}
	if err := tx.Commit(); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to create appointment")
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Appointment request received. We will contact you shortly.",
		"id":      id,
	})
}
