package service

import (
	"burgerpos/internal/model"

	"github.com/shopspring/decimal"
)

type seedProduct struct {
	code, name, price, category string
}

var defaultProducts = []seedProduct{
	{"001", "Big Burger", "25.90", model.CategoryBurger},
	{"002", "Cheese Burger", "22.90", model.CategoryBurger},
	{"003", "X-Bacon", "28.90", model.CategoryBurger},
	{"004", "Coca-Cola 350ml", "6.50", model.CategoryDrink},
	{"005", "Suco Natural", "8.90", model.CategoryDrink},
	{"006", "Batata Frita", "12.90", model.CategorySide},
	{"007", "Onion Rings", "14.90", model.CategorySide},
	{"008", "Milk Shake", "16.90", model.CategoryDessert},
}

type seedUser struct {
	username, name, role string
}

var defaultUsers = []seedUser{
	{"admin", "Administrador", model.RoleAdmin},
	{"caixa1", "João Silva", model.RoleCashier},
	{"caixa2", "Maria Santos", model.RoleCashier},
}

func mustPrice(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
