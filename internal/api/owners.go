package api

import (
	"fmt"
	"net/http"
	"strings"

	"vetcore/m/domain"
)

type ownerRequest struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email,omitempty"`
	Address string `json:"address,omitempty"`
}

func (h *Handler) createOwner(w http.ResponseWriter, r *http.Request) {
	if !h.requireReceptionist(w, r) {
		return
	}
	var req ownerRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Phone) == "" {
		respondError(w, http.StatusBadRequest, "name and phone are required")
		return
	}

	var id int64
	err := h.db.QueryRowx(
		`INSERT INTO owners (name, phone, email, address) VALUES ($1, $2, $3, $4) RETURNING id`,
		req.Name, req.Phone, nullIfEmpty(req.Email), nullIfEmpty(req.Address)).Scan(&id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to create owner")
		return
	}
	respondJSON(w, http.StatusCreated, domain.Owner{
		ID: id, Name: req.Name, Phone: req.Phone,
		Email: nullIfEmpty(req.Email), Address: nullIfEmpty(req.Address),
	})
}

func (h *Handler) listOwners(w http.ResponseWriter, r *http.Request) {
	if !h.requireReceptionist(w, r) {
		return
	}
	var owners []domain.Owner
	if err := h.db.Select(&owners, `SELECT id, name, phone, email, address FROM owners ORDER BY id DESC`); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to list owners")
		return
	}
	if owners == nil {
		owners = []domain.Owner{}
	}
	respondJSON(w, http.StatusOK, owners)
}

func (h *Handler) searchOwners(w http.ResponseWriter, r *http.Request) {
	if !h.requireReceptionist(w, r) {
		return
	}
	query := `SELECT id, name, phone, email, address FROM owners`
	var (
		clauses []string
		args    []any
	)
	if phone := strings.TrimSpace(r.URL.Query().Get("phone")); phone != "" {
		args = append(args, phone)
		clauses = append(clauses, fmt.Sprintf("phone = $%d", len(args)))
	}
	if email := strings.TrimSpace(r.URL.Query().Get("email")); email != "" {
		args = append(args, email)
		clauses = append(clauses, fmt.Sprintf("email = $%d", len(args)))
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}

	var owners []domain.Owner
	if err := h.db.Select(&owners, query, args...); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to search owners")
		return
	}
	if owners == nil {
		owners = []domain.Owner{}
	}
	respondJSON(w, http.StatusOK, owners)
}

type petRequest struct {
	Name    string `json:"name"`
	Species string `json:"species"`
	Breed   string `json:"breed,omitempty"`
	Age     *int64 `json:"age,omitempty"`
}

func (h *Handler) createPet(w http.ResponseWriter, r *http.Request) {
	if !h.requireReceptionist(w, r) {
		return
	}
	ownerID, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid owner id")
		return
	}
	var req petRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Species) == "" {
		respondError(w, http.StatusBadRequest, "name and species are required")
		return
	}

	var exists int
	if err := h.db.Get(&exists, `SELECT COUNT(*) FROM owners WHERE id = $1`, ownerID); err != nil || exists == 0 {
		respondError(w, http.StatusNotFound, "Owner not found")
		return
	}

	var id int64
	err = h.db.QueryRowx(
		`INSERT INTO pets (owner_id, name, species, breed, age) VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		ownerID, req.Name, req.Species, nullIfEmpty(req.Breed), req.Age).Scan(&id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to create pet")
		return
	}
	respondJSON(w, http.StatusCreated, domain.Pet{
		ID: id, OwnerID: ownerID, Name: req.Name, Species: req.Species,
		Breed: nullIfEmpty(req.Breed), Age: req.Age,
	})
}

func (h *Handler) listPets(w http.ResponseWriter, r *http.Request) {
	if !h.requireReceptionist(w, r) {
		return
	}
	ownerID, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid owner id")
		return
	}
	var pets []domain.Pet
	if err := h.db.Select(&pets, `SELECT id, owner_id, name, species, breed, age FROM pets WHERE owner_id = $1`, ownerID); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to list pets")
		return
	}
	if pets == nil {
		pets = []domain.Pet{}
	}
	respondJSON(w, http.StatusOK, pets)
}
