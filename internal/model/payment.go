package model

import "github.com/shopspring/decimal"

// PaymentMethod: "dinheiro" | "debito" | "credito" | "pix" | "cortesia".
// MethodSplit only ever appears as the method of a split-payment sale.
const (
	MethodCash     = "dinheiro"
	MethodDebit    = "debito"
	MethodCredit   = "credito"
	MethodPix      = "pix"
	MethodCourtesy = "cortesia"
	MethodSplit    = "dividido"
)

var PaymentMethods = []string{MethodCash, MethodDebit, MethodCredit, MethodPix, MethodCourtesy}

func ValidPaymentMethod(m string) bool {
	for _, pm := range PaymentMethods {
		if pm == m {
			return true
		}
	}
	return false
}

// Payment is one leg of a sale's settlement.
type Payment struct {
	Method string          `json:"method"`
	Amount decimal.Decimal `json:"amount"`
}

// PaymentBreakdown always carries every method, zero when unused.
type PaymentBreakdown struct {
	Dinheiro decimal.Decimal `json:"dinheiro"`
	Debito   decimal.Decimal `json:"debito"`
	Credito  decimal.Decimal `json:"credito"`
	Pix      decimal.Decimal `json:"pix"`
	Cortesia decimal.Decimal `json:"cortesia"`
}

// Add credits amount to method. Unknown methods are ignored.
func (b *PaymentBreakdown) Add(method string, amount decimal.Decimal) {
	switch method {
	case MethodCash:
		b.Dinheiro = b.Dinheiro.Add(amount)
	case MethodDebit:
		b.Debito = b.Debito.Add(amount)
	case MethodCredit:
		b.Credito = b.Credito.Add(amount)
	case MethodPix:
		b.Pix = b.Pix.Add(amount)
	case MethodCourtesy:
		b.Cortesia = b.Cortesia.Add(amount)
	}
}

func (b PaymentBreakdown) Get(method string) decimal.Decimal {
	switch method {
	case MethodCash:
		return b.Dinheiro
	case MethodDebit:
		return b.Debito
	case MethodCredit:
		return b.Credito
	case MethodPix:
		return b.Pix
	case MethodCourtesy:
		return b.Cortesia
	}
	return decimal.Zero
}

func (b PaymentBreakdown) Total() decimal.Decimal {
	return b.Dinheiro.Add(b.Debito).Add(b.Credito).Add(b.Pix).Add(b.Cortesia)
}

// RoundMoney rounds to cents.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
