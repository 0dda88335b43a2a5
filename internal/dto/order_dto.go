package dto

import "github.com/shopspring/decimal"

// ─── Surfaces ────────────────────────────────────────────────────────────────

type AddItemRequest struct {
	// Product is the typed product code or the product id.
	Product  string `json:"product"  validate:"required"`
	Quantity int    `json:"quantity" validate:"omitempty,min=1,max=9999"`
}

type SetQuantityRequest struct {
	Quantity int `json:"quantity" validate:"max=9999"`
}

// ─── Checkout ────────────────────────────────────────────────────────────────

type CheckoutRequest struct {
	PaymentMethod string          `json:"payment_method" validate:"required,oneof=dinheiro debito credito pix cortesia"`
	Discount      decimal.Decimal `json:"discount"       validate:"min=0"`
	DiscountType  string          `json:"discount_type"  validate:"omitempty,oneof=value percentage"`
}

type PaymentRequest struct {
	Method string          `json:"method" validate:"required,oneof=dinheiro debito credito pix cortesia"`
	Amount decimal.Decimal `json:"amount"`
}

type SplitCheckoutRequest struct {
	Payments     []PaymentRequest `json:"payments"      validate:"required,min=1,dive"`
	Discount     decimal.Decimal  `json:"discount"      validate:"min=0"`
	DiscountType string           `json:"discount_type" validate:"omitempty,oneof=value percentage"`
}

type ShortcutRequest struct {
	Key string `json:"key" validate:"required"`
}

// ─── Sales ───────────────────────────────────────────────────────────────────

type CorrectPaymentRequest struct {
	PaymentMethod string `json:"payment_method" validate:"required,oneof=dinheiro debito credito pix cortesia"`
}
