package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Category: "hamburguer" | "bebida" | "acompanhamento" | "sobremesa" | "outro"
const (
	CategoryBurger  = "hamburguer"
	CategoryDrink   = "bebida"
	CategorySide    = "acompanhamento"
	CategoryDessert = "sobremesa"
	CategoryOther   = "outro"
)

var Categories = []string{CategoryBurger, CategoryDrink, CategorySide, CategoryDessert, CategoryOther}

// Product is a sellable catalog entry. Code is the short numeric string typed
// at the register and is unique across the catalog.
type Product struct {
	ID          uuid.UUID       `json:"id"`
	Code        string          `json:"code"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
	Available   bool            `json:"available"`
	Description *string         `json:"description,omitempty"`
}
