package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/golang-jwt/jwt/v5"
	"github.com/jmoiron/sqlx"

	"vetcore/m/domain"
	"vetcore/m/internal/config"
	"vetcore/m/internal/notify"
)

type ctxKey string

const ctxStaff ctxKey = "staff"

const (
	dateLayout      = "2006-01-02"
	timeLayout      = "15:04"
	timestampLayout = "2006-01-02 15:04:05"
)

// Handler bundles dependencies for HTTP handlers.
type Handler struct {
	db       *sqlx.DB
	cfg      config.Config
	notifier *notify.Notifier
}

// New constructs a Handler.
func New(db *sqlx.DB, cfg config.Config, notifier *notify.Notifier) *Handler {
	return &Handler{db: db, cfg: cfg, notifier: notifier}
}

// Router wires up the HTTP API.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   h.cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health", h.health)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.login)
		r.Group(func(protected chi.Router) {
			protected.Use(h.authMiddleware)
			protected.Get("/me", h.me)
		})
	})

	r.Route("/website", func(r chi.Router) {
		r.Get("/info", h.clinicInfo)
		r.Get("/services", h.publicServices)
		r.Post("/appointments", h.publicAppointmentRequest)
	})

	r.Group(func(pr chi.Router) {
		pr.Use(h.authMiddleware)

		pr.Route("/admin", func(r chi.Router) {
			r.Get("/ping", h.adminPing)
			r.Post("/staff", h.createStaff)
			r.Get("/staff", h.listStaff)
			r.Patch("/staff/{id}", h.updateStaffStatus)
			r.Patch("/staff/{id}/profile", h.updateStaffProfile)
			r.Post("/staff/{id}/reset-password", h.resetStaffPassword)
		})

		pr.Route("/receptionist", func(r chi.Router) {
			r.Post("/owners", h.createOwner)
			r.Get("/owners", h.listOwners)
			r.Get("/owners/search", h.searchOwners)
			r.Post("/owners/{id}/pets", h.createPet)
			r.Get("/owners/{id}/pets", h.listPets)
			r.Post("/appointments", h.createAppointment)
			r.Get("/appointments/today", h.todayAppointments)
			r.Get("/appointments", h.appointmentsByDate)
			r.Patch("/appointments/{id}", h.updateAppointment)
		})

		pr.Route("/doctor", func(r chi.Router) {
			r.Get("/appointments/today", h.doctorTodayAppointments)
			r.Get("/appointments/{id}", h.doctorViewAppointment)
			r.Patch("/appointments/{id}/complete", h.completeAppointment)
			r.Post("/appointments/{id}/medical-record", h.createMedicalRecord)
			r.Put("/medical-records/{id}", h.updateMedicalRecord)
			r.Get("/medical-records", h.listMyMedicalRecords)
			r.Get("/pets/{id}/history", h.petMedicalHistory)
		})

		pr.Route("/billing", func(r chi.Router) {
			r.Post("/services", h.createService)
			r.Get("/services", h.listServices)
			r.Patch("/services/{id}", h.updateService)
			r.Post("/invoices", h.createInvoice)
			r.Get("/invoices", h.listInvoices)
			r.Get("/invoices/{id}", h.getInvoice)
			r.Patch("/invoices/{id}/pay", h.payInvoice)
		})

		pr.Route("/inventory", func(r chi.Router) {
			r.Post("/items", h.createItem)
			r.Get("/items", h.listItems)
			r.Patch("/items/{id}", h.updateItem)
			r.Delete("/items/{id}", h.deleteItem)
			r.Post("/items/{id}/stock", h.adjustStock)
			r.Get("/items/{id}/logs", h.itemLogs)
			r.Get("/expiring", h.expiringItems)
			r.Get("/expiry-alerts", h.expiryAlerts)
		})

		pr.Route("/reports", func(r chi.Router) {
			r.Get("/dashboard", h.reportDashboard)
			r.Get("/revenue", h.reportRevenue)
			r.Get("/services", h.reportServices)
			r.Get("/appointments", h.reportAppointments)
			r.Get("/inventory", h.reportInventory)
		})

		pr.Route("/notifications", func(r chi.Router) {
			r.Post("/send", h.sendNotification)
			r.Get("/logs", h.notificationLogs)
		})
	})

	return r
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Authentication

type authClaims struct {
	UserID int64  `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

func (h *Handler) generateToken(userID int64, role string) (string, error) {
	claims := authClaims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Duration(h.cfg.JWTExpireMinutes) * time.Minute)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(h.cfg.Secret))
}

// authMiddleware validates the bearer token and loads the staff row, so a
// deactivated account is rejected even while its token is still unexpired.
func (h *Handler) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" || !strings.HasPrefix(strings.ToLower(header), "bearer ") {
			respondError(w, http.StatusUnauthorized, "Missing bearer token")
			return
		}
		tokenString := strings.TrimSpace(header[len("Bearer "):])
		token, err := jwt.ParseWithClaims(tokenString, &authClaims{}, func(token *jwt.Token) (interface{}, error) {
			if token.Method != jwt.SigningMethodHS256 {
				return nil, errors.New("unexpected signing method")
			}
			return []byte(h.cfg.Secret), nil
		})
		if err != nil || !token.Valid {
			respondError(w, http.StatusUnauthorized, "Invalid or expired token")
			return
		}
		claims, ok := token.Claims.(*authClaims)
		if !ok {
			respondError(w, http.StatusUnauthorized, "Invalid token claims")
			return
		}

		var staff domain.StaffUser
		err = h.db.Get(&staff,
			`SELECT id, name, username, email, role, password_hash, is_active, created_at
             FROM staff_users WHERE id = $1 AND is_active = 1`, claims.UserID)
		if err != nil {
			respondError(w, http.StatusUnauthorized, "User not found or inactive")
			return
		}

		ctx := context.WithValue(r.Context(), ctxStaff, staff)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func currentStaff(r *http.Request) domain.StaffUser {
	staff, _ := r.Context().Value(ctxStaff).(domain.StaffUser)
	return staff
}

// requireRole checks the authenticated staff's role against an allow-list
// and writes a 403 when it does not match.
func (h *Handler) requireRole(w http.ResponseWriter, r *http.Request, allowed ...string) bool {
	staff := currentStaff(r)
	if staff.ID == 0 {
		respondError(w, http.StatusUnauthorized, "Missing authentication")
		return false
	}
	for _, role := range allowed {
		if staff.Role == role {
			return true
		}
	}
	respondError(w, http.StatusForbidden, "Access denied")
	return false
}

// Admin passes the doctor and receptionist gates as well.
func (h *Handler) requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	return h.requireRole(w, r, domain.RoleAdmin)
}

func (h *Handler) requireDoctor(w http.ResponseWriter, r *http.Request) bool {
	return h.requireRole(w, r, domain.RoleDoctor, domain.RoleAdmin)
}

func (h *Handler) requireReceptionist(w http.ResponseWriter, r *http.Request) bool {
	return h.requireRole(w, r, domain.RoleReceptionist, domain.RoleAdmin)
}

// Helpers

func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

func nullIfEmpty(val string) *string {
	trimmed := strings.TrimSpace(val)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key")
}

func decodeJSON(r *http.Request, dest interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dest)
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)
	_ = encoder.Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
