package dto

import "github.com/shopspring/decimal"

type ProductRequest struct {
	Code        string          `json:"code"        validate:"required,max=20"`
	Name        string          `json:"name"        validate:"required,min=1,max=100"`
	Price       decimal.Decimal `json:"price"       validate:"min=0"`
	Category    string          `json:"category"    validate:"required,oneof=hamburguer bebida acompanhamento sobremesa outro"`
	Available   *bool           `json:"available"`
	Description *string         `json:"description" validate:"omitempty,max=500"`
}
