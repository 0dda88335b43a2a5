package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DiscountType: "value" | "percentage"
const (
	DiscountValue      = "value"
	DiscountPercentage = "percentage"
)

// Sale is an immutable record of a completed checkout. Discount holds the
// resolved absolute amount; Total = Subtotal - Discount.
// Only PaymentMethod may change after commit (payment correction).
type Sale struct {
	ID            uuid.UUID       `json:"id"`
	Items         []LineItem      `json:"items"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	Total         decimal.Decimal `json:"total"`
	PaymentMethod string          `json:"payment_method"`
	Payments      []Payment       `json:"payments"`
	Discount      decimal.Decimal `json:"discount"`
	DiscountType  string          `json:"discount_type"`
	ShiftID       uuid.UUID       `json:"shift_id"`
	UserID        uuid.UUID       `json:"user_id"`
	UserName      string          `json:"user_name"`
	CreatedAt     time.Time       `json:"created_at"`
	TableNumber   int             `json:"table_number"`
}

func (s Sale) IsSplit() bool { return s.PaymentMethod == MethodSplit }

// ItemCount is the sum of item quantities.
func (s Sale) ItemCount() int {
	n := 0
	for _, it := range s.Items {
		n += it.Quantity
	}
	return n
}

// Clone returns a deep copy so callers never alias ledger storage.
func (s Sale) Clone() Sale {
	out := s
	out.Items = append([]LineItem(nil), s.Items...)
	out.Payments = append([]Payment(nil), s.Payments...)
	return out
}
