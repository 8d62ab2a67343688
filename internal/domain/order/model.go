package order

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order statuses. The set is fixed; StatusCompleted is a deprecated alias
// for StatusDelivered kept for records written by older clients, and is
// normalized on read.
const (
	StatusPending   = "Pending"
	StatusConfirmed = "Confirmed"
	StatusShipped   = "Shipped"
	StatusDelivered = "Delivered"
	StatusCancelled = "Cancelled"
	StatusRejected  = "Rejected"

	// Deprecated: use StatusDelivered.
	StatusCompleted = "Completed"

	// StatusAll is the filter sentinel meaning "no status filter".
	StatusAll = "All"
)

// PaymentCashOnDelivery is the default payment method tag. Payment
// processing itself is out of scope; the tag is recorded as-is.
const PaymentCashOnDelivery = "CASH_ON_DELIVERY"

var validStatuses = map[string]bool{
	StatusPending:   true,
	StatusConfirmed: true,
	StatusShipped:   true,
	StatusDelivered: true,
	StatusCancelled: true,
	StatusRejected:  true,
	StatusCompleted: true,
}

// NormalizeStatus canonicalizes a status string: case is fixed up and the
// legacy Completed alias maps to Delivered. Unknown statuses come back
// unchanged.
func NormalizeStatus(status string) string {
	for s := range validStatuses {
		if strings.EqualFold(s, status) {
			if s == StatusCompleted {
				return StatusDelivered
			}
			return s
		}
	}
	return status
}

// ValidStatus reports whether status is an accepted write value.
func ValidStatus(status string) bool {
	for s := range validStatuses {
		if strings.EqualFold(s, status) {
			return true
		}
	}
	return false
}

// Order is a placed order. Line items are frozen copies of the cart rows at
// placement time; later catalog edits never change an order.
type Order struct {
	ID        uuid.UUID       `db:"id" json:"id"`
	UserID    string          `db:"user_id" json:"user_id"`
	UserEmail string          `db:"user_email" json:"user_email"`
	Status    string          `db:"status" json:"status"`
	Total     decimal.Decimal `db:"total" json:"total"`
	Address   string          `db:"address" json:"address"`
	Payment   string          `db:"payment_method" json:"payment_method"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt time.Time       `db:"updated_at" json:"updated_at"`

	Items         []LineItem     `json:"items,omitempty"`
	StatusHistory []StatusChange `json:"status_history,omitempty"`
}

// LineItem is a frozen order line.
type LineItem struct {
	ID        uuid.UUID       `db:"id" json:"id"`
	OrderID   uuid.UUID       `db:"order_id" json:"order_id"`
	ProductID uuid.UUID       `db:"product_id" json:"product_id"`
	Name      string          `db:"name" json:"name"`
	Price     decimal.Decimal `db:"price" json:"price"`
	ImageURL  string          `db:"image_url" json:"image_url"`
	Size      string          `db:"size" json:"size"`
	Quantity  int             `db:"quantity" json:"quantity"`
}

// StatusChange is one entry of an order's append-only status history.
type StatusChange struct {
	ID        uuid.UUID `db:"id" json:"id"`
	OrderID   uuid.UUID `db:"order_id" json:"order_id"`
	Status    string    `db:"status" json:"status"`
	ChangedBy string    `db:"changed_by" json:"changed_by"`
	ChangedAt time.Time `db:"changed_at" json:"changed_at"`
}
