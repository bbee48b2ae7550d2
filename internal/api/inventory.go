package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"vetcore/m/domain"
)

const itemColumns = `id, name, category, quantity, unit, reorder_level, expiry_date, cost_price, updated_at`

// Nearest expiry first, items without an expiry last, then by name.
const itemOrdering = ` ORDER BY CASE WHEN expiry_date IS NULL THEN 1 ELSE 0 END, expiry_date ASC, name ASC`

type itemCreateRequest struct {
	Name         string              `json:"name"`
	Category     string              `json:"category,omitempty"`
	Quantity     int64               `json:"quantity"`
	Unit         string              `json:"unit,omitempty"`
	ReorderLevel *int64              `json:"reorder_level,omitempty"`
	ExpiryDate   string              `json:"expiry_date,omitempty"`
	CostPrice    decimal.NullDecimal `json:"cost_price,omitempty"`
}

func (h *Handler) createItem(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}
	var req itemCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}
	if req.Quantity < 0 {
		respondError(w, http.StatusBadRequest, "quantity must not be negative")
		return
	}
	if req.CostPrice.Valid && req.CostPrice.Decimal.IsNegative() {
		respondError(w, http.StatusBadRequest, "cost_price must not be negative")
		return
	}
	if req.ExpiryDate != "" {
		expiry, err := time.Parse(dateLayout, req.ExpiryDate)
		if err != nil {
			respondError(w, http.StatusBadRequest, "expiry_date must be in YYYY-MM-DD format")
			return
		}
		today, _ := time.Parse(dateLayout, time.Now().UTC().Format(dateLayout))
		if expiry.Before(today) {
			respondError(w, http.StatusBadRequest, "expiry_date must not be in the past")
			return
		}
	}

	reorder := int64(10)
	if req.ReorderLevel != nil {
		reorder = *req.ReorderLevel
	}
	updatedAt := time.Now().UTC().Format(timestampLayout)

	var id int64
	err := h.db.QueryRowx(
		`INSERT INTO inventory_items (name, category, quantity, unit, reorder_level, expiry_date, cost_price, updated_at)
         VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`,
		req.Name, nullIfEmpty(req.Category), req.Quantity, nullIfEmpty(req.Unit),
		reorder, nullIfEmpty(req.ExpiryDate), req.CostPrice, updatedAt).Scan(&id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to create inventory item")
		return
	}

	respondJSON(w, http.StatusCreated, domain.InventoryItem{
		ID: id, Name: req.Name, Category: nullIfEmpty(req.Category),
		Quantity: req.Quantity, Unit: nullIfEmpty(req.Unit), ReorderLevel: reorder,
		ExpiryDate: nullIfEmpty(req.ExpiryDate), CostPrice: req.CostPrice, UpdatedAt: updatedAt,
	})
}

func (h *Handler) listItems(w http.ResponseWriter, r *http.Request) {
	var (
		clauses []string
		args    []any
	)
	if category := strings.TrimSpace(r.URL.Query().Get("category")); category != "" {
		args = append(args, category)
		clauses = append(clauses, fmt.Sprintf("category = $%d", len(args)))
	}
	if r.URL.Query().Get("low_stock") == "true" {
		clauses = append(clauses, "quantity <= reorder_level")
	}

	query := `SELECT ` + itemColumns + ` FROM inventory_items`
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += itemOrdering

	var items []domain.InventoryItem
	if err := h.db.Select(&items, query, args...); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to list inventory")
		return
	}
	if items == nil {
		items = []domain.InventoryItem{}
	}
	respondJSON(w, http.StatusOK, items)
}

type itemUpdateRequest struct {
	Name         *string              `json:"name"`
	Category     *string              `json:"category"`
	Quantity     *int64               `json:"quantity"`
	Unit         *string              `json:"unit"`
	ReorderLevel *int64               `json:"reorder_level"`
	ExpiryDate   *string              `json:"expiry_date"`
	CostPrice    *decimal.NullDecimal `json:"cost_price"`
}

// updateItem applies a partial edit. Unlike adjustStock it does not floor
// the quantity at zero; direct edits are trusted.
func (h *Handler) updateItem(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid item id")
		return
	}
	var req itemUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	var item domain.InventoryItem
	if err := h.db.Get(&item, `SELECT `+itemColumns+` FROM inventory_items WHERE id = $1`, id); err != nil {
		respondError(w, http.StatusNotFound, "Item not found")
		return
	}

	if req.Name != nil {
		item.Name = *req.Name
	}
	if req.Category != nil {
		item.Category = nullIfEmpty(*req.Category)
	}
	if req.Quantity != nil {
		item.Quantity = *req.Quantity
	}
	if req.Unit != nil {
		item.Unit = nullIfEmpty(*req.Unit)
	}
	if req.ReorderLevel != nil {
		item.ReorderLevel = *req.ReorderLevel
	}
	if req.ExpiryDate != nil {
		if *req.ExpiryDate != "" {
			if _, err := time.Parse(dateLayout, *req.ExpiryDate); err != nil {
				respondError(w, http.StatusBadRequest, "expiry_date must be in YYYY-MM-DD format")
				return
			}
		}
		item.ExpiryDate = nullIfEmpty(*req.ExpiryDate)
	}
	if req.CostPrice != nil {
		item.CostPrice = *req.CostPrice
	}
	item.UpdatedAt = time.Now().UTC().Format(timestampLayout)

	_, err = h.db.Exec(
		`UPDATE inventory_items SET name = $1, category = $2, quantity = $3, unit = $4,
         reorder_level = $5, expiry_date = $6, cost_price = $7, updated_at = $8 WHERE id = $9`,
		item.Name, item.Category, item.Quantity, item.Unit,
		item.ReorderLevel, item.ExpiryDate, item.CostPrice, item.UpdatedAt, id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to update item")
		return
	}
	respondJSON(w, http.StatusOK, item)
}

type stockChangeRequest struct {
	ChangeQty int64  `json:"change_qty"`
	Reason    string `json:"reason"`
}

// adjustStock updates the quantity and appends the audit log row in one
// transaction. An adjustment that would push the quantity below zero is
// rejected with no partial write.
func (h *Handler) adjustStock(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid item id")
		return
	}
	var req stockChangeRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.ChangeQty == 0 {
		respondError(w, http.StatusBadRequest, "change_qty must not be zero")
		return
	}
	if strings.TrimSpace(req.Reason) == "" {
		respondError(w, http.StatusBadRequest, "reason is required")
		return
	}

	staff := currentStaff(r)

	tx, err := h.db.Beginx()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "database error")
		return
	}
	defer tx.Rollback()

	var item domain.InventoryItem
	if err := tx.Get(&item, `SELECT `+itemColumns+` FROM inventory_items WHERE id = $1`, id); err != nil {
		respondError(w, http.StatusNotFound, "Item not found")
		return
	}

	newQuantity := item.Quantity + req.ChangeQty
	if newQuantity < 0 {
		respondError(w, http.StatusBadRequest, "Stock cannot go below zero")
		return
	}

	item.Quantity = newQuantity
	item.UpdatedAt = time.Now().UTC().Format(timestampLayout)
	if _, err := tx.Exec(`UPDATE inventory_items SET quantity = $1, updated_at = $2 WHERE id = $3`,
		newQuantity, item.UpdatedAt, id); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to update stock")
		return
	}
	if _, err := tx.Exec(
		`INSERT INTO inventory_logs (item_id, change_qty, reason, performed_by, created_at)
         VALUES ($1, $2, $3, $4, $5)`,
		id, req.ChangeQty, req.Reason, staff.ID, item.UpdatedAt); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to record stock change")
		return
	}
	if err := tx.Commit(); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to apply stock change")
		return
	}
	respondJSON(w, http.StatusOK, item)
}

func (h *Handler) itemLogs(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid item id")
		return
	}
	var logs []domain.InventoryLog
	err = h.db.Select(&logs,
		`SELECT id, item_id, change_qty, reason, performed_by, created_at
         FROM inventory_logs WHERE item_id = $1 ORDER BY created_at DESC, id DESC`, id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load item logs")
		return
	}
	if logs == nil {
		logs = []domain.InventoryLog{}
	}
	respondJSON(w, http.StatusOK, logs)
}

func (h *Handler) expiringItems(w http.ResponseWriter, r *http.Request) {
	// days defaults to 30 only when absent; an explicit 0 means "today".
	days := 30
	if raw := strings.TrimSpace(r.URL.Query().Get("days")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			respondError(w, http.StatusBadRequest, "days must be a non-negative integer")
			return
		}
		days = n
	}
	cutoff := time.Now().UTC().AddDate(0, 0, days).Format(dateLayout)

	var items []domain.InventoryItem
	err := h.db.Select(&items,
		`SELECT `+itemColumns+` FROM inventory_items
         WHERE expiry_date IS NOT NULL AND expiry_date <= $1 ORDER BY expiry_date`, cutoff)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load expiring items")
		return
	}
	if items == nil {
		items = []domain.InventoryItem{}
	}
	respondJSON(w, http.StatusOK, items)
}

// expiryAlerts classifies every item with an expiry date into a severity
// bucket. Items more than 90 days out are not reported.
func (h *Handler) expiryAlerts(w http.ResponseWriter, r *http.Request) {
	var items []domain.InventoryItem
	err := h.db.Select(&items,
		`SELECT `+itemColumns+` FROM inventory_items
         WHERE expiry_date IS NOT NULL ORDER BY expiry_date`)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load inventory")
		return
	}

	summary := domain.ExpiryAlertSummary{
		Expired:  []domain.ExpiryAlert{},
		Critical: []domain.ExpiryAlert{},
		Warning:  []domain.ExpiryAlert{},
		Upcoming: []domain.ExpiryAlert{},
	}
	today, _ := time.Parse(dateLayout, time.Now().UTC().Format(dateLayout))

	for _, item := range items {
		expiry, err := time.Parse(dateLayout, *item.ExpiryDate)
		if err != nil {
			continue
		}
		delta := int(expiry.Sub(today).Hours() / 24)
		level, ok := domain.ExpiryLevel(delta)
		if !ok {
			continue
		}
		alert := domain.ExpiryAlert{
			ID: item.ID, Name: item.Name, Category: item.Category,
			Quantity: item.Quantity, Unit: item.Unit,
			ExpiryDate: *item.ExpiryDate, DaysUntilExpiry: delta, AlertLevel: level,
		}
		switch level {
		case domain.AlertExpired:
			summary.Expired = append(summary.Expired, alert)
		case domain.AlertCritical:
			summary.Critical = append(summary.Critical, alert)
		case domain.AlertWarning:
			summary.Warning = append(summary.Warning, alert)
		case domain.AlertUpcoming:
			summary.Upcoming = append(summary.Upcoming, alert)
		}
	}
	summary.TotalAlerts = len(summary.Expired) + len(summary.Critical) + len(summary.Warning) + len(summary.Upcoming)

	respondJSON(w, http.StatusOK, summary)
}

// deleteItem removes the item and its audit trail. The cascade is done here,
// not by the database.
func (h *Handler) deleteItem(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	tx, err := h.db.Beginx()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "database error")
		return
	}
	defer tx.Rollback()

	var name string
	if err := tx.Get(&name, `SELECT name FROM inventory_items WHERE id = $1`, id); err != nil {
		respondError(w, http.StatusNotFound, "Item not found")
		return
	}
	if _, err := tx.Exec(`DELETE FROM inventory_logs WHERE item_id = $1`, id); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to delete item logs")
		return
	}
	if _, err := tx.Exec(`DELETE FROM inventory_items WHERE id = $1`, id); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to delete item")
		return
	}
	if err := tx.Commit(); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to delete item")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": fmt.Sprintf("Item '%s' deleted successfully", name)})
}
