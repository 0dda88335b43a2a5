package dto

import (
	"time"

	"burgerpos/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SaleFilter narrows a ledger listing. Zero values mean "any".
type SaleFilter struct {
	ShiftID       *uuid.UUID
	UserID        *uuid.UUID
	PaymentMethod string
	TableNumber   *int
	Period        string // today | week | month | all
	From          *time.Time
	To            *time.Time
}

type HourlySales struct {
	Hour    string          `json:"hour"` // "14:00"
	Sales   int             `json:"sales"`
	Revenue decimal.Decimal `json:"revenue"`
}

type ProductSales struct {
	Name     string          `json:"name"`
	Quantity int             `json:"quantity"`
	Revenue  decimal.Decimal `json:"revenue"`
}

type ReportResponse struct {
	Period           string                 `json:"period"`
	Revenue          decimal.Decimal        `json:"revenue"`
	SalesCount       int                    `json:"sales_count"`
	ItemsSold        int                    `json:"items_sold"`
	AverageTicket    decimal.Decimal        `json:"average_ticket"`
	Discounts        decimal.Decimal        `json:"discounts"`
	PaymentBreakdown model.PaymentBreakdown `json:"payment_breakdown"`
	SalesByHour      []HourlySales          `json:"sales_by_hour"`
	TopProducts      []ProductSales         `json:"top_products"`
	ClosedShifts     int                    `json:"closed_shifts"`
}

type ShiftHistoryResponse struct {
	Shifts     []model.Shift   `json:"shifts"`
	TotalSales decimal.Decimal `json:"total_sales"`
	TotalItems int             `json:"total_items"`
}
