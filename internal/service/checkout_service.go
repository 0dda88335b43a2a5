package service

import (
	"context"
	"strings"
	"sync"

	"burgerpos/internal/apierror"
	"burgerpos/internal/model"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// CheckoutService turns a surface into a sale. Preconditions are re-checked
// on every call, so a repeated trigger on an already-paid surface fails with
// a precondition error instead of charging twice.
type CheckoutService interface {
	CompleteSale(ctx context.Context, surfaceID int, method string, discount decimal.Decimal, discountType string) (*model.Sale, error)
	CompleteSaleSplit(ctx context.Context, surfaceID int, payments []model.Payment, discount decimal.Decimal, discountType string) (*model.Sale, error)
}

type checkoutService struct{ core *Core }

func NewCheckoutService(core *Core) CheckoutService { return &checkoutService{core: core} }

// ── CompleteSale ──────────────────────────────────────────────────────────────

func (s *checkoutService) CompleteSale(ctx context.Context, surfaceID int, method string, discount decimal.Decimal, discountType string) (*model.Sale, error) {
	return s.checkout(ctx, surfaceID, func([]model.LineItem) (commitInput, error) {
		if !model.ValidPaymentMethod(method) {
			return commitInput{}, apierror.Validation("Forma de pagamento inválida. Use: %s", strings.Join(model.PaymentMethods, ", "))
		}
		return commitInput{method: method, discount: discount, discountType: discountType}, nil
	})
}

// ── CompleteSaleSplit ─────────────────────────────────────────────────────────

// CompleteSaleSplit records one sale settled by several payments. Zero amounts
// are ignored. The sum must match the discounted total within the configured
// tolerance; an accepted residual is absorbed by the payments so they add up
// to the total exactly.
func (s *checkoutService) CompleteSaleSplit(ctx context.Context, surfaceID int, payments []model.Payment, discount decimal.Decimal, discountType string) (*model.Sale, error) {
	return s.checkout(ctx, surfaceID, func(items []model.LineItem) (commitInput, error) {
		legs := make([]model.Payment, 0, len(payments))
		for _, p := range payments {
			if p.Amount.IsNegative() {
				return commitInput{}, apierror.Validation("Valor de pagamento não pode ser negativo")
			}
			if p.Amount.IsZero() {
				continue
			}
			if !model.ValidPaymentMethod(p.Method) {
				return commitInput{}, apierror.Validation("Forma de pagamento inválida. Use: %s", strings.Join(model.PaymentMethods, ", "))
			}
			legs = append(legs, model.Payment{Method: p.Method, Amount: model.RoundMoney(p.Amount)})
		}
		if len(legs) == 0 {
			return commitInput{}, apierror.Validation("Informe pelo menos um pagamento")
		}

		pr, err := price(items, discount, discountType)
		if err != nil {
			return commitInput{}, err
		}
		paid := decimal.Zero
		for _, p := range legs {
			paid = paid.Add(p.Amount)
		}
		diff := paid.Sub(pr.total)
		tol := s.core.cfg.SplitTolerance
		switch {
		case diff.LessThan(tol.Neg()):
			return commitInput{}, apierror.Validation("Ainda falta pagar R$ %s", diff.Neg().StringFixed(2))
		case diff.GreaterThan(tol):
			return commitInput{}, apierror.Validation("Valor pago excede o total em R$ %s", diff.StringFixed(2))
		}
		legs = absorbResidual(legs, diff)
		return commitInput{method: model.MethodSplit, payments: legs, discount: discount, discountType: discountType}, nil
	})
}

// absorbResidual makes the legs add up to paid-diff. A shortfall is added to
// the last leg; an excess is taken from the largest legs first, and legs left
// at zero are dropped (at least one leg is kept).
func absorbResidual(legs []model.Payment, diff decimal.Decimal) []model.Payment {
	if diff.IsNegative() {
		last := &legs[len(legs)-1]
		last.Amount = last.Amount.Sub(diff)
		return legs
	}
	for remaining := diff; remaining.IsPositive(); {
		big := len(legs) - 1
		for i := len(legs) - 2; i >= 0; i-- {
			if legs[i].Amount.GreaterThan(legs[big].Amount) {
				big = i
			}
		}
		take := decimal.Min(legs[big].Amount, remaining)
		if !take.IsPositive() {
			break
		}
		legs[big].Amount = legs[big].Amount.Sub(take)
		remaining = remaining.Sub(take)
	}
	out := legs[:0]
	for _, p := range legs {
		if p.Amount.IsPositive() {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return legs[:1]
	}
	return out
}

// ── Shared flow ───────────────────────────────────────────────────────────────

// checkout runs precondition checks, commit and surface clear in one write
// section. build turns the surface items into the commit input or rejects.
func (s *checkoutService) checkout(ctx context.Context, surfaceID int, build func([]model.LineItem) (commitInput, error)) (*model.Sale, error) {
	actor := s.core.actor(ctx)

	var sale model.Sale
	err := s.core.write(func() error {
		if actor == nil {
			return apierror.Precondition("Faça login para finalizar a venda")
		}
		shift := s.core.activeShiftLocked()
		if shift == nil {
			return apierror.Precondition("Nenhum turno aberto")
		}
		sf, err := s.core.surfaceLocked(surfaceID)
		if err != nil {
			return err
		}
		if len(sf.Orders) == 0 {
			if sf.IsCounter() {
				return apierror.Precondition("Carrinho vazio")
			}
			return apierror.Precondition("Mesa sem pedidos")
		}

		items := append([]model.LineItem(nil), sf.Orders...)
		in, err := build(items)
		if err != nil {
			return err
		}
		in.items = items
		in.shiftID = shift.ID
		in.actor = *actor
		in.tableNumber = surfaceID

		committed, err := s.core.commitLocked(in)
		if err != nil {
			return err
		}
		sale = committed

		// The sale stands even if the surface cannot be cleared.
		if err := s.clearLocked(surfaceID); err != nil {
			log.Warn().Err(err).Str("sale_id", sale.ID.String()).Int("surface_id", surfaceID).
				Msg("checkout: sale recorded but surface not cleared")
		}
		return nil
	})
	if err != nil {
		s.core.bus.Publish(model.EventCheckoutRejected, map[string]any{
			"surface_id": surfaceID,
			"kind":       string(apierror.KindOf(err)),
			"detail":     err.Error(),
		})
		return nil, err
	}

	log.Info().
		Str("sale_id", sale.ID.String()).
		Int("surface_id", surfaceID).
		Str("method", sale.PaymentMethod).
		Str("total", sale.Total.StringFixed(2)).
		Msg("sale completed")
	return &sale, nil
}

func (s *checkoutService) clearLocked(surfaceID int) error {
	sf, err := s.core.surfaceLocked(surfaceID)
	if err != nil {
		return err
	}
	resetSurface(sf)
	s.core.emit(model.EventSurfaceUpdated, cloneSurface(*sf))
	return nil
}

// ── Keyboard shortcuts ────────────────────────────────────────────────────────

// ShortcutKeys maps register keys to payment methods.
var ShortcutKeys = map[string]string{
	"1": model.MethodCash,
	"2": model.MethodDebit,
	"3": model.MethodCredit,
	"4": model.MethodPix,
	"5": model.MethodCourtesy,
}

// KeyEnter pays with the last selected method.
const KeyEnter = "Enter"

// ShortcutDispatcher translates key presses into checkouts. It remembers the
// last method selected per surface; Enter uses it, defaulting to cash.
type ShortcutDispatcher struct {
	checkout CheckoutService
	mu       sync.Mutex
	selected map[int]string
}

func NewShortcutDispatcher(checkout CheckoutService) *ShortcutDispatcher {
	return &ShortcutDispatcher{checkout: checkout, selected: make(map[int]string)}
}

// Select records method as the surface's current choice.
func (d *ShortcutDispatcher) Select(surfaceID int, method string) {
	if !model.ValidPaymentMethod(method) {
		return
	}
	d.mu.Lock()
	d.selected[surfaceID] = method
	d.mu.Unlock()
}

// Selected returns the surface's current choice.
func (d *ShortcutDispatcher) Selected(surfaceID int) string {
	d.mu.Lock()
	defer d.mu.Unlock()
	if m, ok := d.selected[surfaceID]; ok {
		return m
	}
	return model.MethodCash
}

// Dispatch pays the surface in full, without discount, for key.
func (d *ShortcutDispatcher) Dispatch(ctx context.Context, surfaceID int, key string) (*model.Sale, error) {
	var method string
	if key == KeyEnter {
		method = d.Selected(surfaceID)
	} else {
		m, ok := ShortcutKeys[key]
		if !ok {
			return nil, apierror.Validation("Tecla de atalho inválida. Use 1-5 ou Enter")
		}
		method = m
		d.Select(surfaceID, method)
	}
	return d.checkout.CompleteSale(ctx, surfaceID, method, decimal.Zero, model.DiscountValue)
}
