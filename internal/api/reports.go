package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"vetcore/m/domain"
)

func (h *Handler) reportDashboard(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}
	today := time.Now().UTC().Format(dateLayout)

	var appointmentsToday int64
	if err := h.db.Get(&appointmentsToday,
		`SELECT COUNT(*) FROM appointments WHERE appointment_date = $1`, today); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to build dashboard")
		return
	}
	var revenueToday decimal.Decimal
	if err := h.db.Get(&revenueToday,
		`SELECT COALESCE(SUM(final_amount), 0) FROM invoices
         WHERE payment_status = $1 AND DATE(created_at) = $2`, domain.PaymentPaid, today); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to build dashboard")
		return
	}
	var lowStock int64
	if err := h.db.Get(&lowStock,
		`SELECT COUNT(*) FROM inventory_items WHERE quantity <= reorder_level`); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to build dashboard")
		return
	}
	var activeStaff int64
	if err := h.db.Get(&activeStaff,
		`SELECT COUNT(*) FROM staff_users WHERE is_active = 1`); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to build dashboard")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"appointments_today": appointmentsToday,
		"revenue_today":      revenueToday,
		"low_stock_items":    lowStock,
		"active_staff":       activeStaff,
	})
}

type revenueDay struct {
	Day     string          `db:"day" json:"day"`
	Revenue decimal.Decimal `db:"revenue" json:"revenue"`
}

// reportRevenue sums paid invoices by calendar day. Days without revenue
// do not appear in the series.
func (h *Handler) reportRevenue(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}
	start := strings.TrimSpace(r.URL.Query().Get("start"))
	end := strings.TrimSpace(r.URL.Query().Get("end"))
	if start == "" {
		start = time.Now().UTC().AddDate(0, 0, -30).Format(dateLayout)
	}
	if end == "" {
		end = time.Now().UTC().Format(dateLayout)
	}
	if _, err := time.Parse(dateLayout, start); err != nil {
		respondError(w, http.StatusBadRequest, "start must be in YYYY-MM-DD format")
		return
	}
	if _, err := time.Parse(dateLayout, end); err != nil {
		respondError(w, http.StatusBadRequest, "end must be in YYYY-MM-DD format")
		return
	}

	var days []revenueDay
	err := h.db.Select(&days,
		`SELECT DATE(created_at) AS day, SUM(final_amount) AS revenue
         FROM invoices
         WHERE payment_status = $1 AND DATE(created_at) >= $2 AND DATE(created_at) <= $3
         GROUP BY DATE(created_at) ORDER BY day`, domain.PaymentPaid, start, end)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to build revenue report")
		return
	}
	if days == nil {
		days = []revenueDay{}
	}
	total := decimal.Zero
	for _, d := range days {
		total = total.Add(d.Revenue)
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"start": start,
		"end":   end,
		"days":  days,
		"total": total,
	})
}

type serviceUsage struct {
	ServiceName string          `db:"service_name" json:"service_name"`
	TimesBilled int64           `db:"times_billed" json:"times_billed"`
	Revenue     decimal.Decimal `db:"revenue" json:"revenue"`
}

func (h *Handler) reportServices(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}
	start := strings.TrimSpace(r.URL.Query().Get("start"))
	end := strings.TrimSpace(r.URL.Query().Get("end"))
	if start == "" {
		start = time.Now().UTC().AddDate(0, 0, -30).Format(dateLayout)
	}
	if end == "" {
		end = time.Now().UTC().Format(dateLayout)
	}
	if _, err := time.Parse(dateLayout, start); err != nil {
		respondError(w, http.StatusBadRequest, "start must be in YYYY-MM-DD format")
		return
	}
	if _, err := time.Parse(dateLayout, end); err != nil {
		respondError(w, http.StatusBadRequest, "end must be in YYYY-MM-DD format")
		return
	}

	var usage []serviceUsage
	err := h.db.Select(&usage,
		`SELECT s.name AS service_name, SUM(ii.quantity) AS times_billed, SUM(ii.line_total) AS revenue
         FROM invoice_items ii
         JOIN invoices i ON i.id = ii.invoice_id
         JOIN services s ON s.id = ii.service_id
         WHERE DATE(i.created_at) >= $1 AND DATE(i.created_at) <= $2
         GROUP BY s.name ORDER BY times_billed DESC`, start, end)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to build service report")
		return
	}
	if usage == nil {
		usage = []serviceUsage{}
	}
	respondJSON(w, http.StatusOK, usage)
}

type appointmentStats struct {
	Total     int64 `db:"total" json:"total"`
	Completed int64 `db:"completed" json:"completed"`
	Cancelled int64 `db:"cancelled" json:"cancelled"`
	Scheduled int64 `db:"scheduled" json:"scheduled"`
	WalkIn    int64 `db:"walk_in" json:"walk_in"`
	Booked    int64 `db:"booked" json:"booked"`
}

func (h *Handler) reportAppointments(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}
	start := strings.TrimSpace(r.URL.Query().Get("start"))
	end := strings.TrimSpace(r.URL.Query().Get("end"))
	if start == "" {
		start = time.Now().UTC().AddDate(0, 0, -30).Format(dateLayout)
	}
	if end == "" {
		end = time.Now().UTC().Format(dateLayout)
	}
	if _, err := time.Parse(dateLayout, start); err != nil {
		respondError(w, http.StatusBadRequest, "start must be in YYYY-MM-DD format")
		return
	}
	if _, err := time.Parse(dateLayout, end); err != nil {
		respondError(w, http.StatusBadRequest, "end must be in YYYY-MM-DD format")
		return
	}

	var stats appointmentStats
	err := h.db.Get(&stats,
		`SELECT COUNT(*) AS total,
                COALESCE(SUM(CASE WHEN status = 'completed' THEN 1 ELSE 0 END), 0) AS completed,
                COALESCE(SUM(CASE WHEN status = 'cancelled' THEN 1 ELSE 0 END), 0) AS cancelled,
                COALESCE(SUM(CASE WHEN status = 'scheduled' THEN 1 ELSE 0 END), 0) AS scheduled,
                COALESCE(SUM(CASE WHEN type = 'walk-in' THEN 1 ELSE 0 END), 0) AS walk_in,
                COALESCE(SUM(CASE WHEN type = 'scheduled' THEN 1 ELSE 0 END), 0) AS booked
         FROM appointments WHERE appointment_date >= $1 AND appointment_date <= $2`, start, end)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to build appointment report")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"start": start,
		"end":   end,
		"stats": stats,
	})
}

func (h *Handler) reportInventory(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}
	var lowStock []domain.InventoryItem
	err := h.db.Select(&lowStock,
		`SELECT `+itemColumns+` FROM inventory_items WHERE quantity <= reorder_level ORDER BY name`)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to build inventory report")
		return
	}
	cutoff := time.Now().UTC().AddDate(0, 0, 30).Format(dateLayout)
	var nearExpiry []domain.InventoryItem
	err = h.db.Select(&nearExpiry,
		`SELECT `+itemColumns+` FROM inventory_items
         WHERE expiry_date IS NOT NULL AND expiry_date <= $1 ORDER BY expiry_date`, cutoff)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to build inventory report")
		return
	}
	if lowStock == nil {
		lowStock = []domain.InventoryItem{}
	}
	if nearExpiry == nil {
		nearExpiry = []domain.InventoryItem{}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"low_stock":   lowStock,
		"near_expiry": nearExpiry,
	})
}
