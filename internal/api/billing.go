package api

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"vetcore/m/domain"
)

// Services

type serviceCreateRequest struct {
	Name     string          `json:"name"`
	Category string          `json:"category,omitempty"`
	Price    decimal.Decimal `json:"price"`
}

func (h *Handler) createService(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}
	var req serviceCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}
	if !req.Price.IsPositive() {
		respondError(w, http.StatusBadRequest, "price must be greater than zero")
		return
	}

	var id int64
	err := h.db.QueryRowx(
		`INSERT INTO services (name, category, price, is_active) VALUES ($1, $2, $3, 1) RETURNING id`,
		req.Name, nullIfEmpty(req.Category), req.Price.Round(2)).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			respondError(w, http.StatusConflict, "Service already exists")
		} else {
			respondError(w, http.StatusInternalServerError, "unable to create service")
		}
		return
	}
	respondJSON(w, http.StatusCreated, domain.Service{
		ID: id, Name: req.Name, Category: nullIfEmpty(req.Category),
		Price: req.Price.Round(2), IsActive: true,
	})
}

func (h *Handler) listServices(w http.ResponseWriter, r *http.Request) {
	var services []domain.Service
	if err := h.db.Select(&services, `SELECT id, name, category, price, is_active FROM services ORDER BY name`); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to list services")
		return
	}
	if services == nil {
		services = []domain.Service{}
	}
	respondJSON(w, http.StatusOK, services)
}

type serviceUpdateRequest struct {
	Name     *string          `json:"name"`
	Category *string          `json:"category"`
	Price    *decimal.Decimal `json:"price"`
	IsActive *bool            `json:"is_active"`
}

func (h *Handler) updateService(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid service id")
		return
	}
	var req serviceUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	var svc domain.Service
	if err := h.db.Get(&svc, `SELECT id, name, category, price, is_active FROM services WHERE id = $1`, id); err != nil {
		respondError(w, http.StatusNotFound, "Service not found")
		return
	}

	if req.Name != nil {
		svc.Name = *req.Name
	}
	if req.Category != nil {
		svc.Category = nullIfEmpty(*req.Category)
	}
	if req.Price != nil {
		if !req.Price.IsPositive() {
			respondError(w, http.StatusBadRequest, "price must be greater than zero")
			return
		}
		svc.Price = req.Price.Round(2)
	}
	if req.IsActive != nil {
		svc.IsActive = *req.IsActive
	}

	// Rename collisions surface as a unique violation on the UPDATE, so a
	// concurrent rename cannot slip past a pre-read check.
	_, err = h.db.Exec(`UPDATE services SET name = $1, category = $2, price = $3, is_active = $4 WHERE id = $5`,
		svc.Name, svc.Category, svc.Price, svc.IsActive, id)
	if err != nil {
		if isUniqueViolation(err) {
			respondError(w, http.StatusConflict, "Another service with this name already exists")
		} else {
			respondError(w, http.StatusInternalServerError, "unable to update service")
		}
		return
	}
	respondJSON(w, http.StatusOK, svc)
}

// Invoices

type invoiceItemRequest struct {
	ServiceID int64 `json:"service_id"`
	Quantity  int64 `json:"quantity"`
}

type invoiceCreateRequest struct {
	AppointmentID int64                `json:"appointment_id"`
	OwnerID       int64                `json:"owner_id"`
	Items         []invoiceItemRequest `json:"items"`
	DiscountPct   decimal.Decimal      `json:"discount_pct"`
}

func newInvoiceNumber() string {
	return "INV-" + strings.ToUpper(uuid.NewString()[:8])
}

// createInvoice prices every line against the current catalog, snapshots the
// unit prices and writes the invoice with its items in one transaction. A
// missing service aborts the whole thing. appointment_id/owner_id are taken
// on trust.
func (h *Handler) createInvoice(w http.ResponseWriter, r *http.Request) {
	if !h.requireReceptionist(w, r) {
		return
	}
	var req invoiceCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(req.Items) == 0 {
		respondError(w, http.StatusBadRequest, "at least one item is required")
		return
	}
	for _, it := range req.Items {
		if it.Quantity < 1 {
			respondError(w, http.StatusBadRequest, "quantity must be at least 1")
			return
		}
	}

	tx, err := h.db.Beginx()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "database error")
		return
	}
	defer tx.Rollback()

	items := make([]domain.InvoiceItem, 0, len(req.Items))
	for _, it := range req.Items {
		var price decimal.Decimal
		if err := tx.Get(&price, `SELECT price FROM services WHERE id = $1`, it.ServiceID); err != nil {
			respondError(w, http.StatusNotFound, fmt.Sprintf("Service %d not found", it.ServiceID))
			return
		}
		items = append(items, domain.InvoiceItem{
			ServiceID: it.ServiceID,
			Quantity:  it.Quantity,
			UnitPrice: price,
			LineTotal: price.Mul(decimal.NewFromInt(it.Quantity)),
		})
	}

	total, final := domain.InvoiceTotals(items, req.DiscountPct)
	createdAt := time.Now().UTC().Format(timestampLayout)
	number := newInvoiceNumber()

	var invoiceID int64
	err = tx.QueryRowx(
		`INSERT INTO invoices (invoice_number, appointment_id, owner_id, total_amount, discount_pct, final_amount, payment_status, created_at)
         VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`,
		number, req.AppointmentID, req.OwnerID, total, req.DiscountPct, final,
		domain.PaymentPending, createdAt).Scan(&invoiceID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to create invoice")
		return
	}

	for i := range items {
		items[i].InvoiceID = invoiceID
		err = tx.QueryRowx(
			`INSERT INTO invoice_items (invoice_id, service_id, quantity, unit_price, line_total)
             VALUES ($1, $2, $3, $4, $5) RETURNING id`,
			invoiceID, items[i].ServiceID, items[i].Quantity, items[i].UnitPrice, items[i].LineTotal).Scan(&items[i].ID)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "unable to add invoice items")
			return
		}
	}

	if err := tx.Commit(); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to finalize invoice")
		return
	}

	respondJSON(w, http.StatusCreated, domain.Invoice{
		ID: invoiceID, InvoiceNumber: number,
		AppointmentID: req.AppointmentID, OwnerID: req.OwnerID,
		TotalAmount: total, DiscountPct: req.DiscountPct, FinalAmount: final,
		PaymentStatus: domain.PaymentPending, CreatedAt: createdAt, Items: items,
	})
}

const invoiceQuery = `SELECT id, invoice_number, appointment_id, owner_id, total_amount,
    discount_pct, final_amount, payment_status, payment_method, created_at FROM invoices`

func (h *Handler) loadInvoiceItems(invoices []domain.Invoice) error {
	if len(invoices) == 0 {
		return nil
	}
	ids := make([]int64, len(invoices))
	byID := make(map[int64]*domain.Invoice, len(invoices))
	for i := range invoices {
		ids[i] = invoices[i].ID
		byID[invoices[i].ID] = &invoices[i]
		invoices[i].Items = []domain.InvoiceItem{}
	}

	query, args, err := sqlx.In(
		`SELECT id, invoice_id, service_id, quantity, unit_price, line_total
         FROM invoice_items WHERE invoice_id IN (?) ORDER BY id`, ids)
	if err != nil {
		return err
	}
	query = h.db.Rebind(query)

	var items []domain.InvoiceItem
	if err := h.db.Select(&items, query, args...); err != nil {
		return err
	}
	for _, item := range items {
		inv := byID[item.InvoiceID]
		inv.Items = append(inv.Items, item)
	}
	return nil
}

func (h *Handler) getInvoice(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid invoice id")
		return
	}
	var invoice domain.Invoice
	if err := h.db.Get(&invoice, invoiceQuery+` WHERE id = $1`, id); err != nil {
		respondError(w, http.StatusNotFound, "Invoice not found")
		return
	}
	invoices := []domain.Invoice{invoice}
	if err := h.loadInvoiceItems(invoices); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load invoice items")
		return
	}
	respondJSON(w, http.StatusOK, invoices[0])
}

func (h *Handler) listInvoices(w http.ResponseWriter, r *http.Request) {
	var (
		clauses []string
		args    []any
	)
	if ownerID := strings.TrimSpace(r.URL.Query().Get("owner_id")); ownerID != "" {
		args = append(args, ownerID)
		clauses = append(clauses, fmt.Sprintf("owner_id = $%d", len(args)))
	}
	if day := strings.TrimSpace(r.URL.Query().Get("date")); day != "" {
		if _, err := time.Parse(dateLayout, day); err != nil {
			respondError(w, http.StatusBadRequest, "date must be in YYYY-MM-DD format")
			return
		}
		args = append(args, day)
		clauses = append(clauses, fmt.Sprintf("DATE(created_at) = $%d", len(args)))
	}

	query := invoiceQuery
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY created_at DESC, id DESC"

	var invoices []domain.Invoice
	if err := h.db.Select(&invoices, query, args...); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to list invoices")
		return
	}
	if err := h.loadInvoiceItems(invoices); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load invoice items")
		return
	}
	if invoices == nil {
		invoices = []domain.Invoice{}
	}
	respondJSON(w, http.StatusOK, invoices)
}

type paymentRequest struct {
	PaymentMethod string `json:"payment_method"`
}

// payInvoice marks the invoice paid. There is no guard against re-paying;
// doing so re-applies the method and re-sends the confirmation.
func (h *Handler) payInvoice(w http.ResponseWriter, r *http.Request) {
	if !h.requireReceptionist(w, r) {
		return
	}
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid invoice id")
		return
	}
	var req paymentRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.PaymentMethod) == "" {
		respondError(w, http.StatusBadRequest, "payment_method is required")
		return
	}

	var invoice domain.Invoice
	if err := h.db.Get(&invoice, invoiceQuery+` WHERE id = $1`, id); err != nil {
		respondError(w, http.StatusNotFound, "Invoice not found")
		return
	}

	_, err = h.db.Exec(`UPDATE invoices SET payment_status = $1, payment_method = $2 WHERE id = $3`,
		domain.PaymentPaid, req.PaymentMethod, id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to update invoice")
		return
	}
	invoice.PaymentStatus = domain.PaymentPaid
	invoice.PaymentMethod = &req.PaymentMethod

	// Payment confirmation is best-effort; a failed send never fails the
	// payment.
	var owner domain.Owner
	if err := h.db.Get(&owner, `SELECT id, name, phone, email, address FROM owners WHERE id = $1`, invoice.OwnerID); err == nil {
		msg := fmt.Sprintf("Hi %s! Payment of ₹%s received via %s for Invoice #%d. Thank you! — %s",
			owner.Name, invoice.FinalAmount.StringFixed(2), req.PaymentMethod, invoice.ID, h.cfg.ClinicName)
		h.notifier.Send(owner.ID, &invoice.AppointmentID, "sms", msg)
	}

	invoices := []domain.Invoice{invoice}
	if err := h.loadInvoiceItems(invoices); err == nil {
		invoice = invoices[0]
	}
	respondJSON(w, http.StatusOK, invoice)
}
