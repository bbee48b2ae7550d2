package api

import (
	"net/http"
	"time"

	"vetcore/m/domain"
)

// appointmentView adds owner/pet context for the doctor's queue.
type appointmentView struct {
	domain.Appointment
	OwnerName string `db:"owner_name" json:"owner_name"`
	PetName   string `db:"pet_name" json:"pet_name"`
}

const appointmentViewQuery = `
    SELECT a.id, a.owner_id, a.pet_id, a.appointment_date, a.appointment_time,
           a.type, a.status, a.notes, a.created_at,
           o.name AS owner_name, p.name AS pet_name
    FROM appointments a
    JOIN owners o ON o.id = a.owner_id
    JOIN pets p ON p.id = a.pet_id`

func (h *Handler) doctorTodayAppointments(w http.ResponseWriter, r *http.Request) {
	if !h.requireDoctor(w, r) {
		return
	}
	// All of today's appointments; the queue is shared between doctors.
	today := time.Now().UTC().Format(dateLayout)
	var appts []appointmentView
	err := h.db.Select(&appts, appointmentViewQuery+` WHERE a.appointment_date = $1 ORDER BY a.appointment_time`, today)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to list appointments")
		return
	}
	if appts == nil {
		appts = []appointmentView{}
	}
	respondJSON(w, http.StatusOK, appts)
}

func (h *Handler) doctorViewAppointment(w http.ResponseWriter, r *http.Request) {
	if !h.requireDoctor(w, r) {
		return
	}
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid appointment id")
		return
	}
	var appt appointmentView
	if err := h.db.Get(&appt, appointmentViewQuery+` WHERE a.id = $1`, id); err != nil {
		respondError(w, http.StatusNotFound, "Appointment not found")
		return
	}
	respondJSON(w, http.StatusOK, appt)
}

func (h *Handler) completeAppointment(w http.ResponseWriter, r *http.Request) {
	if !h.requireDoctor(w, r) {
		return
	}
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid appointment id")
		return
	}
	res, err := h.db.Exec(`UPDATE appointments SET status = $1 WHERE id = $2`, domain.StatusCompleted, id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to update appointment")
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		respondError(w, http.StatusNotFound, "Appointment not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Appointment marked as completed"})
}

type medicalRecordRequest struct {
	Diagnosis    string `json:"diagnosis"`
	Symptoms     string `json:"symptoms,omitempty"`
	Treatment    string `json:"treatment,omitempty"`
	Prescription string `json:"prescription,omitempty"`
	Notes        string `json:"notes,omitempty"`
}

// createMedicalRecord writes the record and forces the appointment to
// completed in one transaction.
func (h *Handler) createMedicalRecord(w http.ResponseWriter, r *http.Request) {
	if !h.requireDoctor(w, r) {
		return
	}
	appointmentID, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid appointment id")
		return
	}
	var req medicalRecordRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Diagnosis == "" {
		respondError(w, http.StatusBadRequest, "diagnosis is required")
		return
	}

	doctor := currentStaff(r)

	tx, err := h.db.Beginx()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "database error")
		return
	}
	defer tx.Rollback()

	var exists int
	if err := tx.Get(&exists, `SELECT COUNT(*) FROM appointments WHERE id = $1`, appointmentID); err != nil || exists == 0 {
		respondError(w, http.StatusNotFound, "Appointment not found")
		return
	}
	if err := tx.Get(&exists, `SELECT COUNT(*) FROM medical_records WHERE appointment_id = $1`, appointmentID); err == nil && exists > 0 {
		respondError(w, http.StatusConflict, "Medical record already exists for this appointment")
		return
	}

	createdAt := time.Now().UTC().Format(timestampLayout)
	var id int64
	err = tx.QueryRowx(
		`INSERT INTO medical_records (appointment_id, doctor_id, diagnosis, symptoms, treatment, prescription, notes, created_at)
         VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`,
		appointmentID, doctor.ID, req.Diagnosis, nullIfEmpty(req.Symptoms),
		nullIfEmpty(req.Treatment), nullIfEmpty(req.Prescription), nullIfEmpty(req.Notes), createdAt).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			respondError(w, http.StatusConflict, "Medical record already exists for this appointment")
		} else {
			respondError(w, http.StatusInternalServerError, "unable to create medical record")
		}
		return
	}

	if _, err := tx.Exec(`UPDATE appointments SET status = $1 WHERE id = $2`, domain.StatusCompleted, appointmentID); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to complete appointment")
		return
	}
	if err := tx.Commit(); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to save medical record")
		return
	}

	respondJSON(w, http.StatusCreated, domain.MedicalRecord{
		ID: id, AppointmentID: appointmentID, DoctorID: doctor.ID,
		Diagnosis: req.Diagnosis, Symptoms: nullIfEmpty(req.Symptoms),
		Treatment: nullIfEmpty(req.Treatment), Prescription: nullIfEmpty(req.Prescription),
		Notes: nullIfEmpty(req.Notes), CreatedAt: createdAt,
	})
}

// medicalRecordView adds appointment/pet/owner/doctor context.
type medicalRecordView struct {
	domain.MedicalRecord
	AppointmentDate string `db:"appointment_date" json:"appointment_date"`
	PetID           int64  `db:"pet_id" json:"pet_id"`
	PetName         string `db:"pet_name" json:"pet_name"`
	Species         string `db:"species" json:"species"`
	OwnerID         int64  `db:"owner_id" json:"owner_id"`
	OwnerName       string `db:"owner_name" json:"owner_name"`
	DoctorName      string `db:"doctor_name" json:"doctor_name"`
}

const medicalRecordViewQuery = `
    SELECT m.id, m.appointment_id, m.doctor_id, m.diagnosis, m.symptoms,
           m.treatment, m.prescription, m.notes, m.created_at,
           a.appointment_date, a.pet_id, a.owner_id,
           p.name AS pet_name, p.species, o.name AS owner_name,
           s.name AS doctor_name
    FROM medical_records m
    JOIN appointments a ON a.id = m.appointment_id
    JOIN pets p ON p.id = a.pet_id
    JOIN owners o ON o.id = a.owner_id
    JOIN staff_users s ON s.id = m.doctor_id`

// updateMedicalRecord replaces the clinical fields. Only the authoring
// doctor may edit.
func (h *Handler) updateMedicalRecord(w http.ResponseWriter, r *http.Request) {
	if !h.requireDoctor(w, r) {
		return
	}
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid record id")
		return
	}
	var req medicalRecordRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Diagnosis == "" {
		respondError(w, http.StatusBadRequest, "diagnosis is required")
		return
	}

	var doctorID int64
	if err := h.db.Get(&doctorID, `SELECT doctor_id FROM medical_records WHERE id = $1`, id); err != nil {
		respondError(w, http.StatusNotFound, "Medical record not found")
		return
	}
	if doctorID != currentStaff(r).ID {
		respondError(w, http.StatusForbidden, "You can only edit your own records")
		return
	}

	_, err = h.db.Exec(
		`UPDATE medical_records SET diagnosis = $1, symptoms = $2, treatment = $3, prescription = $4, notes = $5 WHERE id = $6`,
		req.Diagnosis, nullIfEmpty(req.Symptoms), nullIfEmpty(req.Treatment),
		nullIfEmpty(req.Prescription), nullIfEmpty(req.Notes), id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to update medical record")
		return
	}

	var record medicalRecordView
	if err := h.db.Get(&record, medicalRecordViewQuery+` WHERE m.id = $1`, id); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load medical record")
		return
	}
	respondJSON(w, http.StatusOK, record)
}

func (h *Handler) listMyMedicalRecords(w http.ResponseWriter, r *http.Request) {
	if !h.requireDoctor(w, r) {
		return
	}
	var records []medicalRecordView
	err := h.db.Select(&records,
		medicalRecordViewQuery+` WHERE m.doctor_id = $1 ORDER BY m.created_at DESC`, currentStaff(r).ID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to list medical records")
		return
	}
	if records == nil {
		records = []medicalRecordView{}
	}
	respondJSON(w, http.StatusOK, records)
}

func (h *Handler) petMedicalHistory(w http.ResponseWriter, r *http.Request) {
	if !h.requireDoctor(w, r) {
		return
	}
	petID, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid pet id")
		return
	}
	var records []medicalRecordView
	err = h.db.Select(&records,
		medicalRecordViewQuery+` WHERE a.pet_id = $1 ORDER BY m.created_at DESC`, petID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load pet history")
		return
	}
	if records == nil {
		records = []medicalRecordView{}
	}
	respondJSON(w, http.StatusOK, records)
}
