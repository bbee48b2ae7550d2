package api

import (
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"vetcore/m/domain"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	Role        string `json:"role"`
	Name        string `json:"name"`
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Username == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "username and password are required")
		return
	}

	var staff domain.StaffUser
	err := h.db.Get(&staff,
		`SELECT id, name, username, email, role, password_hash, is_active, created_at
         FROM staff_users WHERE username = $1 AND is_active = 1`, req.Username)
	if err != nil || bcrypt.CompareHashAndPassword([]byte(staff.PasswordHash), []byte(req.Password)) != nil {
		respondError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token, err := h.generateToken(staff.ID, staff.Role)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to generate token")
		return
	}

	respondJSON(w, http.StatusOK, loginResponse{
		AccessToken: token,
		TokenType:   "bearer",
		Role:        staff.Role,
		Name:        staff.Name,
	})
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	staff := currentStaff(r)
	respondJSON(w, http.StatusOK, map[string]any{
		"id":       staff.ID,
		"name":     staff.Name,
		"role":     staff.Role,
		"username": staff.Username,
	})
}
