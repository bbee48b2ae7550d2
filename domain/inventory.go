package domain

import "github.com/shopspring/decimal"

// Expiry alert levels, ordered by severity.
const (
	AlertExpired  = "expired"
	AlertCritical = "critical"
	AlertWarning  = "warning"
	AlertUpcoming = "upcoming"
)

type InventoryItem struct {
	ID           int64               `db:"id" json:"id"`
	Name         string              `db:"name" json:"name"`
	Category     *string             `db:"category" json:"category,omitempty"`
	Quantity     int64               `db:"quantity" json:"quantity"`
	Unit         *string             `db:"unit" json:"unit,omitempty"`
	ReorderLevel int64               `db:"reorder_level" json:"reorder_level"`
	ExpiryDate   *string             `db:"expiry_date" json:"expiry_date,omitempty"`
	CostPrice    decimal.NullDecimal `db:"cost_price" json:"cost_price,omitempty"`
	UpdatedAt    string              `db:"updated_at" json:"updated_at"`
}

// InventoryLog is an append-only audit row for one stock adjustment.
type InventoryLog struct {
	ID          int64  `db:"id" json:"id"`
	ItemID      int64  `db:"item_id" json:"item_id"`
	ChangeQty   int64  `db:"change_qty" json:"change_qty"`
	Reason      string `db:"reason" json:"reason"`
	PerformedBy int64  `db:"performed_by" json:"performed_by"`
	CreatedAt   string `db:"created_at" json:"created_at"`
}

type ExpiryAlert struct {
	ID              int64   `json:"id"`
	Name            string  `json:"name"`
	Category        *string `json:"category,omitempty"`
	Quantity        int64   `json:"quantity"`
	Unit            *string `json:"unit,omitempty"`
	ExpiryDate      string  `json:"expiry_date"`
	DaysUntilExpiry int     `json:"days_until_expiry"`
	AlertLevel      string  `json:"alert_level"`
}

type ExpiryAlertSummary struct {
	Expired     []ExpiryAlert `json:"expired"`
	Critical    []ExpiryAlert `json:"critical"`
	Warning     []ExpiryAlert `json:"warning"`
	Upcoming    []ExpiryAlert `json:"upcoming"`
	TotalAlerts int           `json:"total_alerts"`
}

// ExpiryLevel maps days-until-expiry to an alert level. Items more than 90
// days out carry no alert and ok is false.
//
//	delta < 0   expired
//	0..7        critical
//	8..30       warning
//	31..90      upcoming
func ExpiryLevel(daysUntilExpiry int) (level string, ok bool) {
	switch {
	case daysUntilExpiry < 0:
		return AlertExpired, true
	case daysUntilExpiry <= 7:
		return AlertCritical, true
	case daysUntilExpiry <= 30:
		return AlertWarning, true
	case daysUntilExpiry <= 90:
		return AlertUpcoming, true
	default:
		return "", false
	}
}
