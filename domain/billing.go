package domain

import "github.com/shopspring/decimal"

// Invoice payment statuses.
const (
	PaymentPending = "pending"
	PaymentPaid    = "paid"
)

type Service struct {
	ID       int64           `db:"id" json:"id"`
	Name     string          `db:"name" json:"name"`
	Category *string         `db:"category" json:"category,omitempty"`
	Price    decimal.Decimal `db:"price" json:"price"`
	IsActive bool            `db:"is_active" json:"is_active"`
}

type Invoice struct {
	ID            int64           `db:"id" json:"id"`
	InvoiceNumber string          `db:"invoice_number" json:"invoice_number"`
	AppointmentID int64           `db:"appointment_id" json:"appointment_id"`
	OwnerID       int64           `db:"owner_id" json:"owner_id"`
	TotalAmount   decimal.Decimal `db:"total_amount" json:"total_amount"`
	DiscountPct   decimal.Decimal `db:"discount_pct" json:"discount_pct"`
	FinalAmount   decimal.Decimal `db:"final_amount" json:"final_amount"`
	PaymentStatus string          `db:"payment_status" json:"payment_status"`
	PaymentMethod *string         `db:"payment_method" json:"payment_method,omitempty"`
	CreatedAt     string          `db:"created_at" json:"created_at"`

	Items []InvoiceItem `db:"-" json:"items,omitempty"`
}

// InvoiceItem snapshots the service price at invoice creation time, so later
// catalog price changes never touch issued invoices.
type InvoiceItem struct {
	ID        int64           `db:"id" json:"id"`
	InvoiceID int64           `db:"invoice_id" json:"invoice_id"`
	ServiceID int64           `db:"service_id" json:"service_id"`
	Quantity  int64           `db:"quantity" json:"quantity"`
	UnitPrice decimal.Decimal `db:"unit_price" json:"unit_price"`
	LineTotal decimal.Decimal `db:"line_total" json:"line_total"`
}

// InvoiceTotals computes the invoice amounts from already-priced items:
// total is the sum of line totals, final applies the percentage discount.
// All arithmetic is decimal-exact; results are rounded to 2 places.
func InvoiceTotals(items []InvoiceItem, discountPct decimal.Decimal) (total, final decimal.Decimal) {
	for _, it := range items {
		total = total.Add(it.LineTotal)
	}
	hundred := decimal.NewFromInt(100)
	final = total.Mul(hundred.Sub(discountPct)).Div(hundred).Round(2)
	return total.Round(2), final
}
