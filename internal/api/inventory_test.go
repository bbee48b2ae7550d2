package api

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vetcore/m/domain"
)

func (ts *testServer) addItem(t *testing.T, name string, quantity, reorder int64, expiry *string) int64 {
	t.Helper()
	var id int64
	err := ts.db.QueryRowx(
		`INSERT INTO inventory_items (name, category, quantity, unit, reorder_level, expiry_date, cost_price, updated_at)
         VALUES ($1, 'medicine', $2, 'box', $3, $4, NULL, $5) RETURNING id`,
		name, quantity, reorder, expiry, time.Now().UTC().Format(timestampLayout)).Scan(&id)
	require.NoError(t, err)
	return id
}

func daysFromNow(days int) *string {
	d := time.Now().UTC().AddDate(0, 0, days).Format(dateLayout)
	return &d
}

func TestStockCannotGoBelowZero(t *testing.T) {
	ts := newTestServer(t)
	_, receptionist := ts.addStaff(t, "Riya", "riya", "receptionist")
	itemID := ts.addItem(t, "Rabies Vaccine", 5, 10, nil)

	rec := ts.do(t, http.MethodPost, fmt.Sprintf("/inventory/items/%d/stock", itemID), receptionist,
		map[string]any{"change_qty": -10, "reason": "damaged batch"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Neither the quantity nor the log changed.
	var quantity int64
	require.NoError(t, ts.db.Get(&quantity, `SELECT quantity FROM inventory_items WHERE id = $1`, itemID))
	assert.Equal(t, int64(5), quantity)
	assert.Equal(t, 0, ts.count(t, `SELECT COUNT(*) FROM inventory_logs WHERE item_id = $1`, itemID))
}

func TestStockAdjustmentWritesLog(t *testing.T) {
	ts := newTestServer(t)
	staffID, receptionist := ts.addStaff(t, "Riya", "riya", "receptionist")
	itemID := ts.addItem(t, "Rabies Vaccine", 5, 10, nil)

	rec := ts.do(t, http.MethodPost, fmt.Sprintf("/inventory/items/%d/stock", itemID), receptionist,
		map[string]any{"change_qty": 20, "reason": "restock"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var item domain.InventoryItem
	decodeBody(t, rec, &item)
	assert.Equal(t, int64(25), item.Quantity)

	var entry domain.InventoryLog
	require.NoError(t, ts.db.Get(&entry,
		`SELECT id, item_id, change_qty, reason, performed_by, created_at FROM inventory_logs WHERE item_id = $1`, itemID))
	assert.Equal(t, int64(20), entry.ChangeQty)
	assert.Equal(t, "restock", entry.Reason)
	assert.Equal(t, staffID, entry.PerformedBy)
}

func TestStockAdjustmentValidation(t *testing.T) {
	ts := newTestServer(t)
	_, receptionist := ts.addStaff(t, "Riya", "riya", "receptionist")
	itemID := ts.addItem(t, "Gauze", 5, 10, nil)

	path := fmt.Sprintf("/inventory/items/%d/stock", itemID)
	rec := ts.do(t, http.MethodPost, path, receptionist, map[string]any{"change_qty": 0, "reason": "noop"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodPost, path, receptionist, map[string]any{"change_qty": 5, "reason": "  "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodPost, "/inventory/items/9999/stock", receptionist,
		map[string]any{"change_qty": 5, "reason": "restock"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestExpiryAlertBuckets(t *testing.T) {
	ts := newTestServer(t)
	_, receptionist := ts.addStaff(t, "Riya", "riya", "receptionist")

	ts.addItem(t, "Expired Serum", 3, 5, daysFromNow(-1))
	ts.addItem(t, "Critical Vaccine", 3, 5, daysFromNow(3))
	ts.addItem(t, "Warning Tablets", 3, 5, daysFromNow(20))
	ts.addItem(t, "Upcoming Drops", 3, 5, daysFromNow(60))
	ts.addItem(t, "Far Future Syrup", 3, 5, daysFromNow(120))
	ts.addItem(t, "No Expiry Bandage", 3, 5, nil)

	rec := ts.do(t, http.MethodGet, "/inventory/expiry-alerts", receptionist, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var summary domain.ExpiryAlertSummary
	decodeBody(t, rec, &summary)
	require.Len(t, summary.Expired, 1)
	require.Len(t, summary.Critical, 1)
	require.Len(t, summary.Warning, 1)
	require.Len(t, summary.Upcoming, 1)
	assert.Equal(t, 4, summary.TotalAlerts)

	assert.Equal(t, "Expired Serum", summary.Expired[0].Name)
	assert.Equal(t, -1, summary.Expired[0].DaysUntilExpiry)
	assert.Equal(t, domain.AlertExpired, summary.Expired[0].AlertLevel)
	assert.Equal(t, "Critical Vaccine", summary.Critical[0].Name)
}

func TestExpiringItemsDaysParam(t *testing.T) {
	ts := newTestServer(t)
	_, receptionist := ts.addStaff(t, "Riya", "riya", "receptionist")

	ts.addItem(t, "Due Today", 3, 5, daysFromNow(0))
	ts.addItem(t, "Due Soon", 3, 5, daysFromNow(10))
	ts.addItem(t, "Due Later", 3, 5, daysFromNow(40))

	// Explicit zero means "expiring today", not the 30-day default.
	rec := ts.do(t, http.MethodGet, "/inventory/expiring?days=0", receptionist, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var items []domain.InventoryItem
	decodeBody(t, rec, &items)
	require.Len(t, items, 1)
	assert.Equal(t, "Due Today", items[0].Name)

	rec = ts.do(t, http.MethodGet, "/inventory/expiring", receptionist, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeBody(t, rec, &items)
	assert.Len(t, items, 2)

	rec = ts.do(t, http.MethodGet, "/inventory/expiring?days=soon", receptionist, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodGet, "/inventory/expiring?days=-1", receptionist, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListItemsLowStockFilter(t *testing.T) {
	ts := newTestServer(t)
	_, receptionist := ts.addStaff(t, "Riya", "riya", "receptionist")

	ts.addItem(t, "Low Syringes", 2, 10, nil)
	ts.addItem(t, "Plenty Gloves", 50, 10, nil)

	rec := ts.do(t, http.MethodGet, "/inventory/items?low_stock=true", receptionist, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var items []domain.InventoryItem
	decodeBody(t, rec, &items)
	require.Len(t, items, 1)
	assert.Equal(t, "Low Syringes", items[0].Name)
}

func TestCreateItemValidation(t *testing.T) {
	ts := newTestServer(t)
	_, admin := ts.addStaff(t, "Root", "root", "admin")

	rec := ts.do(t, http.MethodPost, "/inventory/items", admin,
		map[string]any{"name": "Syrup", "quantity": -1})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodPost, "/inventory/items", admin,
		map[string]any{"name": "Syrup", "quantity": 5, "expiry_date": *daysFromNow(-10)})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodPost, "/inventory/items", admin,
		map[string]any{"name": "Syrup", "quantity": 5, "expiry_date": *daysFromNow(10)})
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func TestDeleteItemRemovesLogs(t *testing.T) {
	ts := newTestServer(t)
	_, admin := ts.addStaff(t, "Root", "root", "admin")
	itemID := ts.addItem(t, "Old Dewormer", 5, 10, nil)

	rec := ts.do(t, http.MethodPost, fmt.Sprintf("/inventory/items/%d/stock", itemID), admin,
		map[string]any{"change_qty": 5, "reason": "restock"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, http.MethodDelete, fmt.Sprintf("/inventory/items/%d", itemID), admin, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	assert.Equal(t, 0, ts.count(t, `SELECT COUNT(*) FROM inventory_items WHERE id = $1`, itemID))
	assert.Equal(t, 0, ts.count(t, `SELECT COUNT(*) FROM inventory_logs WHERE item_id = $1`, itemID))

	rec = ts.do(t, http.MethodDelete, fmt.Sprintf("/inventory/items/%d", itemID), admin, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
