package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Shift is a cash-drawer session. While IsActive the aggregate fields are not
// authoritative; they are sealed from the sale ledger when the shift closes and
// never change afterwards.
type Shift struct {
	ID               uuid.UUID        `json:"id"`
	UserID           uuid.UUID        `json:"user_id"`
	UserName         string           `json:"user_name"`
	StartTime        time.Time        `json:"start_time"`
	EndTime          *time.Time       `json:"end_time"`
	IsActive         bool             `json:"is_active"`
	TotalSales       decimal.Decimal  `json:"total_sales"`
	TotalItems       int              `json:"total_items"`
	PaymentBreakdown PaymentBreakdown `json:"payment_breakdown"`
}

// ShiftSummary is a shift plus aggregates recomputed from the live ledger.
type ShiftSummary struct {
	Shift            Shift            `json:"shift"`
	SalesCount       int              `json:"sales_count"`
	TotalSales       decimal.Decimal  `json:"total_sales"`
	TotalItems       int              `json:"total_items"`
	PaymentBreakdown PaymentBreakdown `json:"payment_breakdown"`
}
