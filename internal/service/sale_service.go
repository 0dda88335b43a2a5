package service

import (
	"context"
	"time"

	"burgerpos/internal/apierror"
	"burgerpos/internal/dto"
	"burgerpos/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// SaleService exposes the sale ledger. Sales are only created through checkout.
type SaleService interface {
	List(ctx context.Context, filter dto.SaleFilter) []model.Sale
	Get(ctx context.Context, id uuid.UUID) (*model.Sale, error)
	// Void permanently removes a sale. Shift aggregates follow on the next query.
	Void(ctx context.Context, id uuid.UUID) error
	// CorrectPaymentMethod rewrites the payment method only; totals and
	// courtesy flags are left as committed.
	CorrectPaymentMethod(ctx context.Context, id uuid.UUID, method string) (*model.Sale, error)
}

type saleService struct{ core *Core }

func NewSaleService(core *Core) SaleService { return &saleService{core: core} }

// ── Commit ────────────────────────────────────────────────────────────────────

// commitInput is everything a sale is built from.
type commitInput struct {
	items        []model.LineItem
	method       string
	payments     []model.Payment // nil for single-method sales
	discount     decimal.Decimal
	discountType string
	shiftID      uuid.UUID
	actor        model.Actor
	tableNumber  int
}

// pricing is the resolved money of a prospective sale.
type pricing struct {
	subtotal decimal.Decimal
	discount decimal.Decimal
	total    decimal.Decimal
}

// price resolves the discount against the items' subtotal. A percentage is
// rounded to cents; a discount above the subtotal is rejected.
func price(items []model.LineItem, discount decimal.Decimal, discountType string) (pricing, error) {
	if len(items) == 0 {
		return pricing{}, apierror.Validation("Venda sem itens")
	}
	if discount.IsNegative() {
		return pricing{}, apierror.Validation("Desconto não pode ser negativo")
	}
	subtotal := decimal.Zero
	for _, it := range items {
		subtotal = subtotal.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}

	amount := discount
	switch discountType {
	case "", model.DiscountValue:
	case model.DiscountPercentage:
		if discount.GreaterThan(decimal.NewFromInt(100)) {
			return pricing{}, apierror.Validation("Desconto percentual não pode passar de 100%%")
		}
		amount = model.RoundMoney(subtotal.Mul(discount).Div(decimal.NewFromInt(100)))
	default:
		return pricing{}, apierror.Validation("Tipo de desconto inválido")
	}
	if amount.GreaterThan(subtotal) {
		return pricing{}, apierror.Validation("Desconto de R$ %s excede o subtotal de R$ %s",
			amount.StringFixed(2), subtotal.StringFixed(2))
	}
	return pricing{subtotal: subtotal, discount: amount, total: subtotal.Sub(amount)}, nil
}

// commitLocked validates and appends a sale. Callers hold the write lock.
func (c *Core) commitLocked(in commitInput) (model.Sale, error) {
	if in.method != model.MethodSplit && !model.ValidPaymentMethod(in.method) {
		return model.Sale{}, apierror.Validation("Forma de pagamento inválida")
	}
	p, err := price(in.items, in.discount, in.discountType)
	if err != nil {
		return model.Sale{}, err
	}

	courtesy := in.method == model.MethodCourtesy
	if in.method == model.MethodSplit {
		courtesy = allCourtesy(in.payments)
	}
	items := make([]model.LineItem, len(in.items))
	for i, it := range in.items {
		it.Subtotal = it.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))
		it.IsCourtesy = courtesy
		items[i] = it
	}

	payments := in.payments
	if payments == nil {
		payments = []model.Payment{{Method: in.method, Amount: p.total}}
	}
	discountType := in.discountType
	if discountType == "" {
		discountType = model.DiscountValue
	}

	sale := model.Sale{
		ID:            c.newID(),
		Items:         items,
		Subtotal:      p.subtotal,
		Total:         p.total,
		PaymentMethod: in.method,
		Payments:      append([]model.Payment(nil), payments...),
		Discount:      p.discount,
		DiscountType:  discountType,
		ShiftID:       in.shiftID,
		UserID:        in.actor.ID,
		UserName:      in.actor.Name,
		CreatedAt:     c.now(),
		TableNumber:   in.tableNumber,
	}
	c.sales = append(c.sales, sale)
	c.emit(model.EventSaleCommitted, sale.Clone())
	return sale.Clone(), nil
}

func allCourtesy(payments []model.Payment) bool {
	for _, p := range payments {
		if p.Method != model.MethodCourtesy {
			return false
		}
	}
	return len(payments) > 0
}

// ── Queries ───────────────────────────────────────────────────────────────────

func (s *saleService) List(_ context.Context, f dto.SaleFilter) []model.Sale {
	from, to := periodBounds(f.Period, s.core.now())
	if f.From != nil {
		from = f.From
	}
	if f.To != nil {
		to = f.To
	}

	s.core.mu.RLock()
	defer s.core.mu.RUnlock()
	out := make([]model.Sale, 0)
	for _, sale := range s.core.sales {
		if f.ShiftID != nil && sale.ShiftID != *f.ShiftID {
			continue
		}
		if f.UserID != nil && sale.UserID != *f.UserID {
			continue
		}
		if f.PaymentMethod != "" && sale.PaymentMethod != f.PaymentMethod {
			continue
		}
		if f.TableNumber != nil && sale.TableNumber != *f.TableNumber {
			continue
		}
		if from != nil && sale.CreatedAt.Before(*from) {
			continue
		}
		if to != nil && !sale.CreatedAt.Before(*to) {
			continue
		}
		out = append(out, sale.Clone())
	}
	return out
}

// periodBounds: today = since local midnight, week = last 7 days,
// month = since the first day of the month, anything else = unbounded.
func periodBounds(period string, now time.Time) (*time.Time, *time.Time) {
	var from time.Time
	switch period {
	case "today":
		from = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	case "week":
		from = now.AddDate(0, 0, -7)
	case "month":
		from = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	default:
		return nil, nil
	}
	return &from, nil
}

func (s *saleService) Get(_ context.Context, id uuid.UUID) (*model.Sale, error) {
	s.core.mu.RLock()
	defer s.core.mu.RUnlock()
	i := s.core.saleIndexLocked(id)
	if i < 0 {
		log.Warn().Str("sale_id", id.String()).Msg("sale not found")
		return nil, apierror.NotFound("Venda não encontrada")
	}
	sale := s.core.sales[i].Clone()
	return &sale, nil
}

// ── Administrative overrides ─────────────────────────────────────────────────

func (s *saleService) Void(_ context.Context, id uuid.UUID) error {
	return s.core.write(func() error {
		i := s.core.saleIndexLocked(id)
		if i < 0 {
			log.Warn().Str("sale_id", id.String()).Msg("void: sale not found")
			return apierror.NotFound("Venda não encontrada")
		}
		voided := s.core.sales[i]
		sales := make([]model.Sale, 0, len(s.core.sales)-1)
		sales = append(sales, s.core.sales[:i]...)
		sales = append(sales, s.core.sales[i+1:]...)
		s.core.sales = sales

		log.Info().
			Str("sale_id", id.String()).
			Str("shift_id", voided.ShiftID.String()).
			Str("total", voided.Total.StringFixed(2)).
			Msg("sale voided")
		s.core.emit(model.EventSaleVoided, voided.Clone())
		return nil
	})
}

func (s *saleService) CorrectPaymentMethod(_ context.Context, id uuid.UUID, method string) (*model.Sale, error) {
	var out model.Sale
	err := s.core.write(func() error {
		if !model.ValidPaymentMethod(method) {
			return apierror.Validation("Forma de pagamento inválida")
		}
		i := s.core.saleIndexLocked(id)
		if i < 0 {
			log.Warn().Str("sale_id", id.String()).Msg("correct: sale not found")
			return apierror.NotFound("Venda não encontrada")
		}
		sale := &s.core.sales[i]
		if sale.IsSplit() {
			return apierror.Validation("Venda com pagamento dividido não pode ter a forma de pagamento corrigida")
		}
		previous := sale.PaymentMethod
		sale.PaymentMethod = method
		if len(sale.Payments) == 1 {
			payments := []model.Payment{{Method: method, Amount: sale.Payments[0].Amount}}
			sale.Payments = payments
		}
		log.Info().Str("sale_id", id.String()).Str("from", previous).Str("to", method).Msg("payment method corrected")
		out = sale.Clone()
		s.core.emit(model.EventSaleCorrected, out)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}
