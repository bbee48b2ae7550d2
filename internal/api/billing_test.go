package api

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vetcore/m/domain"
)

func (ts *testServer) addService(t *testing.T, name, price string) int64 {
	t.Helper()
	var id int64
	err := ts.db.QueryRowx(
		`INSERT INTO services (name, category, price, is_active) VALUES ($1, NULL, $2, 1) RETURNING id`,
		name, price).Scan(&id)
	require.NoError(t, err)
	return id
}

func TestCreateServiceDuplicate(t *testing.T) {
	ts := newTestServer(t)
	_, admin := ts.addStaff(t, "Root", "root", "admin")

	body := map[string]any{"name": "Grooming", "price": "1200"}
	rec := ts.do(t, http.MethodPost, "/billing/services", admin, body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = ts.do(t, http.MethodPost, "/billing/services", admin, body)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = ts.do(t, http.MethodPost, "/billing/services", admin, map[string]any{"name": "Free", "price": "0"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateInvoiceTotals(t *testing.T) {
	ts := newTestServer(t)
	_, receptionist := ts.addStaff(t, "Riya", "riya", "receptionist")
	ownerID, petID := ts.addOwnerPet(t)
	apptID := ts.addAppointment(t, ownerID, petID, time.Now().UTC().Format(dateLayout))
	consultID := ts.addService(t, "General Consultation", "500")
	vaccineID := ts.addService(t, "Vaccination", "800")

	rec := ts.do(t, http.MethodPost, "/billing/invoices", receptionist, map[string]any{
		"appointment_id": apptID,
		"owner_id":       ownerID,
		"discount_pct":   "10",
		"items": []map[string]any{
			{"service_id": consultID, "quantity": 1},
			{"service_id": vaccineID, "quantity": 1},
		},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var invoice domain.Invoice
	decodeBody(t, rec, &invoice)
	assert.True(t, invoice.TotalAmount.Equal(decimal.NewFromInt(1300)),
		"total = %s", invoice.TotalAmount)
	assert.True(t, invoice.FinalAmount.Equal(decimal.NewFromInt(1170)),
		"final = %s", invoice.FinalAmount)
	assert.Equal(t, domain.PaymentPending, invoice.PaymentStatus)
	assert.Len(t, invoice.Items, 2)
	assert.NotEmpty(t, invoice.InvoiceNumber)

	// Line prices are snapshots; a later catalog change must not leak in.
	_, err := ts.db.Exec(`UPDATE services SET price = '999' WHERE id = $1`, consultID)
	require.NoError(t, err)
	rec = ts.do(t, http.MethodGet, fmt.Sprintf("/billing/invoices/%d", invoice.ID), receptionist, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeBody(t, rec, &invoice)
	assert.True(t, invoice.Items[0].UnitPrice.Equal(decimal.NewFromInt(500)))
}

func TestCreateInvoiceMissingServiceAborts(t *testing.T) {
	ts := newTestServer(t)
	_, receptionist := ts.addStaff(t, "Riya", "riya", "receptionist")
	ownerID, petID := ts.addOwnerPet(t)
	apptID := ts.addAppointment(t, ownerID, petID, time.Now().UTC().Format(dateLayout))
	consultID := ts.addService(t, "General Consultation", "500")

	rec := ts.do(t, http.MethodPost, "/billing/invoices", receptionist, map[string]any{
		"appointment_id": apptID,
		"owner_id":       ownerID,
		"items": []map[string]any{
			{"service_id": consultID, "quantity": 1},
			{"service_id": 9999, "quantity": 1},
		},
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Nothing was written.
	assert.Equal(t, 0, ts.count(t, `SELECT COUNT(*) FROM invoices`))
	assert.Equal(t, 0, ts.count(t, `SELECT COUNT(*) FROM invoice_items`))
}

func TestCreateInvoiceQuantityValidation(t *testing.T) {
	ts := newTestServer(t)
	_, receptionist := ts.addStaff(t, "Riya", "riya", "receptionist")
	consultID := ts.addService(t, "General Consultation", "500")

	rec := ts.do(t, http.MethodPost, "/billing/invoices", receptionist, map[string]any{
		"appointment_id": 1, "owner_id": 1,
		"items": []map[string]any{{"service_id": consultID, "quantity": 0}},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodPost, "/billing/invoices", receptionist, map[string]any{
		"appointment_id": 1, "owner_id": 1, "items": []map[string]any{},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPayInvoice(t *testing.T) {
	ts := newTestServer(t)
	_, receptionist := ts.addStaff(t, "Riya", "riya", "receptionist")
	ownerID, petID := ts.addOwnerPet(t)
	apptID := ts.addAppointment(t, ownerID, petID, time.Now().UTC().Format(dateLayout))
	consultID := ts.addService(t, "General Consultation", "500")

	rec := ts.do(t, http.MethodPost, "/billing/invoices", receptionist, map[string]any{
		"appointment_id": apptID, "owner_id": ownerID,
		"items": []map[string]any{{"service_id": consultID, "quantity": 2}},
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var invoice domain.Invoice
	decodeBody(t, rec, &invoice)

	rec = ts.do(t, http.MethodPatch, fmt.Sprintf("/billing/invoices/%d/pay", invoice.ID), receptionist,
		map[string]string{"payment_method": "upi"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	decodeBody(t, rec, &invoice)
	assert.Equal(t, domain.PaymentPaid, invoice.PaymentStatus)
	require.NotNil(t, invoice.PaymentMethod)
	assert.Equal(t, "upi", *invoice.PaymentMethod)

	// Payment confirmation lands in the notification log.
	assert.Equal(t, 1, ts.count(t,
		`SELECT COUNT(*) FROM notification_logs WHERE owner_id = $1 AND status = 'sent'`, ownerID))

	rec = ts.do(t, http.MethodPatch, "/billing/invoices/9999/pay", receptionist,
		map[string]string{"payment_method": "cash"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateServiceRenameCollision(t *testing.T) {
	ts := newTestServer(t)
	_, admin := ts.addStaff(t, "Root", "root", "admin")
	groomID := ts.addService(t, "Grooming", "1200")
	ts.addService(t, "Vaccination", "800")

	path := fmt.Sprintf("/billing/services/%d", groomID)
	rec := ts.do(t, http.MethodPatch, path, admin, map[string]any{"name": "Vaccination"})
	assert.Equal(t, http.StatusConflict, rec.Code, rec.Body.String())

	rec = ts.do(t, http.MethodPatch, path, admin, map[string]any{"name": "Premium Grooming"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = ts.do(t, http.MethodPatch, "/billing/services/9999", admin, map[string]any{"name": "X"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPayInvoiceSucceedsWhenNotificationFails(t *testing.T) {
	ts := newTestServer(t)
	_, receptionist := ts.addStaff(t, "Riya", "riya", "receptionist")
	ownerID, petID := ts.addOwnerPet(t)
	apptID := ts.addAppointment(t, ownerID, petID, time.Now().UTC().Format(dateLayout))
	consultID := ts.addService(t, "General Consultation", "500")

	rec := ts.do(t, http.MethodPost, "/billing/invoices", receptionist, map[string]any{
		"appointment_id": apptID, "owner_id": ownerID,
		"items": []map[string]any{{"service_id": consultID, "quantity": 1}},
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var invoice domain.Invoice
	decodeBody(t, rec, &invoice)

	// Break the notification store; the payment must still go through.
	_, err := ts.db.Exec(`DROP TABLE notification_logs`)
	require.NoError(t, err)

	rec = ts.do(t, http.MethodPatch, fmt.Sprintf("/billing/invoices/%d/pay", invoice.ID), receptionist,
		map[string]string{"payment_method": "cash"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	decodeBody(t, rec, &invoice)
	assert.Equal(t, domain.PaymentPaid, invoice.PaymentStatus)
}

func TestListInvoicesFilters(t *testing.T) {
	ts := newTestServer(t)
	_, receptionist := ts.addStaff(t, "Riya", "riya", "receptionist")
	ownerID, petID := ts.addOwnerPet(t)
	apptID := ts.addAppointment(t, ownerID, petID, time.Now().UTC().Format(dateLayout))
	consultID := ts.addService(t, "General Consultation", "500")

	rec := ts.do(t, http.MethodPost, "/billing/invoices", receptionist, map[string]any{
		"appointment_id": apptID, "owner_id": ownerID,
		"items": []map[string]any{{"service_id": consultID, "quantity": 1}},
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = ts.do(t, http.MethodGet, fmt.Sprintf("/billing/invoices?owner_id=%d", ownerID), receptionist, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var invoices []domain.Invoice
	decodeBody(t, rec, &invoices)
	require.Len(t, invoices, 1)
	assert.Len(t, invoices[0].Items, 1)

	rec = ts.do(t, http.MethodGet, "/billing/invoices?owner_id=9999", receptionist, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeBody(t, rec, &invoices)
	assert.Empty(t, invoices)

	rec = ts.do(t, http.MethodGet, "/billing/invoices?date=yesterday", receptionist, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
