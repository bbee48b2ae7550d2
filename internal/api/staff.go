package api

import (
	"fmt"
	"net/http"
	"time"

	"golang.org/x/crypto/bcrypt"

	"vetcore/m/domain"
)

func (h *Handler) adminPing(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}
	staff := currentStaff(r)
	respondJSON(w, http.StatusOK, map[string]any{
		"message": "Admin access granted",
		"id":      staff.ID,
		"name":    staff.Name,
		"role":    staff.Role,
	})
}

type staffCreateRequest struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

func (h *Handler) createStaff(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}
	var req staffCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Name == "" || req.Username == "" || req.Email == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "name, username, email and password are required")
		return
	}
	if !domain.ValidRole(req.Role) {
		respondError(w, http.StatusBadRequest, "role must be admin, doctor or receptionist")
		return
	}

	var exists int
	if err := h.db.Get(&exists, `SELECT COUNT(*) FROM staff_users WHERE username = $1`, req.Username); err == nil && exists > 0 {
		respondError(w, http.StatusConflict, "Username already exists")
		return
	}
	if err := h.db.Get(&exists, `SELECT COUNT(*) FROM staff_users WHERE email = $1`, req.Email); err == nil && exists > 0 {
		respondError(w, http.StatusConflict, "Email already exists")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to secure password")
		return
	}

	createdAt := time.Now().UTC().Format(timestampLayout)
	var id int64
	err = h.db.QueryRowx(
		`INSERT INTO staff_users (name, username, email, role, password_hash, is_active, created_at)
         VALUES ($1, $2, $3, $4, $5, 1, $6) RETURNING id`,
		req.Name, req.Username, req.Email, req.Role, string(hash), createdAt).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			respondError(w, http.StatusConflict, "Username or email already exists")
		} else {
			respondError(w, http.StatusInternalServerError, "unable to create staff user")
		}
		return
	}

	respondJSON(w, http.StatusCreated, domain.StaffUser{
		ID: id, Name: req.Name, Username: req.Username, Email: req.Email,
		Role: req.Role, IsActive: true, CreatedAt: createdAt,
	})
}

func (h *Handler) listStaff(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}
	var staff []domain.StaffUser
	err := h.db.Select(&staff,
		`SELECT id, name, username, email, role, password_hash, is_active, created_at
         FROM staff_users ORDER BY id`)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to list staff")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"staff": staff})
}

type staffStatusRequest struct {
	IsActive bool `json:"is_active"`
}

func (h *Handler) updateStaffStatus(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid staff id")
		return
	}
	var req staffStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	acting := currentStaff(r)
	if id == acting.ID && !req.IsActive {
		respondError(w, http.StatusConflict, "Cannot deactivate your own account")
		return
	}

	var staff domain.StaffUser
	err = h.db.Get(&staff,
		`SELECT id, name, username, email, role, password_hash, is_active, created_at
         FROM staff_users WHERE id = $1`, id)
	if err != nil {
		respondError(w, http.StatusNotFound, "Staff user not found")
		return
	}

	// A doctor cannot be deactivated while future scheduled appointments
	// exist; the queue is shared, so all of them count.
	if !req.IsActive && staff.Role == domain.RoleDoctor {
		today := time.Now().UTC().Format(dateLayout)
		var upcoming int
		if err := h.db.Get(&upcoming,
			`SELECT COUNT(*) FROM appointments WHERE status = $1 AND appointment_date >= $2`,
			domain.StatusScheduled, today); err == nil && upcoming > 0 {
			respondError(w, http.StatusConflict, fmt.Sprintf(
				"Cannot deactivate: doctor has %d upcoming appointment(s). Reassign or cancel them first.", upcoming))
			return
		}
	}

	if _, err := h.db.Exec(`UPDATE staff_users SET is_active = $1 WHERE id = $2`, req.IsActive, id); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to update staff status")
		return
	}
	staff.IsActive = req.IsActive
	respondJSON(w, http.StatusOK, staff)
}

type staffProfileRequest struct {
	Name     *string `json:"name"`
	Username *string `json:"username"`
	Email    *string `json:"email"`
}

func (h *Handler) updateStaffProfile(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid staff id")
		return
	}
	var req staffProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	var staff domain.StaffUser
	err = h.db.Get(&staff,
		`SELECT id, name, username, email, role, password_hash, is_active, created_at
         FROM staff_users WHERE id = $1`, id)
	if err != nil {
		respondError(w, http.StatusNotFound, "Staff user not found")
		return
	}

	if req.Username != nil && *req.Username != staff.Username {
		var exists int
		if err := h.db.Get(&exists, `SELECT COUNT(*) FROM staff_users WHERE username = $1`, *req.Username); err == nil && exists > 0 {
			respondError(w, http.StatusConflict, "Username already exists")
			return
		}
		staff.Username = *req.Username
	}
	if req.Email != nil && *req.Email != staff.Email {
		var exists int
		if err := h.db.Get(&exists, `SELECT COUNT(*) FROM staff_users WHERE email = $1`, *req.Email); err == nil && exists > 0 {
			respondError(w, http.StatusConflict, "Email already exists")
			return
		}
		staff.Email = *req.Email
	}
	if req.Name != nil {
		staff.Name = *req.Name
	}

	_, err = h.db.Exec(`UPDATE staff_users SET name = $1, username = $2, email = $3 WHERE id = $4`,
		staff.Name, staff.Username, staff.Email, id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to update staff profile")
		return
	}
	respondJSON(w, http.StatusOK, staff)
}

func (h *Handler) resetStaffPassword(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid staff id")
		return
	}
	var req struct {
		NewPassword string `json:"new_password"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.NewPassword == "" {
		respondError(w, http.StatusBadRequest, "new_password is required")
		return
	}

	var exists int
	if err := h.db.Get(&exists, `SELECT COUNT(*) FROM staff_users WHERE id = $1`, id); err != nil || exists == 0 {
		respondError(w, http.StatusNotFound, "Staff user not found")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to secure password")
		return
	}
	if _, err := h.db.Exec(`UPDATE staff_users SET password_hash = $1 WHERE id = $2`, string(hash), id); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to reset password")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Password reset successfully"})
}
