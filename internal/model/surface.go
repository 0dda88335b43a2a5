package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SurfaceStatus: "available" | "occupied" | "requesting-bill"
const (
	SurfaceAvailable      = "available"
	SurfaceOccupied       = "occupied"
	SurfaceRequestingBill = "requesting-bill"
)

// CounterSurfaceID is the walk-up cart ("balcão"); ids 1..N are tables.
const CounterSurfaceID = 0

// LineItem is denormalised at add time: later catalog edits never reach it.
// IsCourtesy is only set on items recorded in a sale.
type LineItem struct {
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	IsCourtesy  bool            `json:"is_courtesy"`
}

// Surface is an order accumulator: the counter cart or a table tab.
// Total always equals the sum of Orders[i].Subtotal.
type Surface struct {
	ID     int             `json:"id"`
	Orders []LineItem      `json:"orders"`
	Total  decimal.Decimal `json:"total"`
	Status string          `json:"status"`
}

func (s Surface) IsCounter() bool { return s.ID == CounterSurfaceID }

// ItemCount is the sum of line quantities.
func (s Surface) ItemCount() int {
	n := 0
	for _, it := range s.Orders {
		n += it.Quantity
	}
	return n
}
