package service

import (
	"context"

	"burgerpos/internal/apierror"
	"burgerpos/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// SurfaceService manages the counter cart (id 0) and table tabs (1..N).
//
// Status rules: adding to an available or occupied surface makes it occupied;
// emptying an occupied surface makes it available again. requesting-bill only
// leaves through checkout or Clear, even when its lines are removed.
type SurfaceService interface {
	List(ctx context.Context) []model.Surface
	Get(ctx context.Context, surfaceID int) (*model.Surface, error)
	AddItem(ctx context.Context, surfaceID int, productRef string, qty int) (*model.Surface, error)
	RemoveItem(ctx context.Context, surfaceID int, productID uuid.UUID) (*model.Surface, error)
	SetQuantity(ctx context.Context, surfaceID int, productID uuid.UUID, qty int) (*model.Surface, error)
	RequestBill(ctx context.Context, surfaceID int) (*model.Surface, error)
	Clear(ctx context.Context, surfaceID int) (*model.Surface, error)
}

type surfaceService struct{ core *Core }

func NewSurfaceService(core *Core) SurfaceService { return &surfaceService{core: core} }

func (s *surfaceService) List(_ context.Context) []model.Surface {
	s.core.mu.RLock()
	defer s.core.mu.RUnlock()
	out := make([]model.Surface, 0, len(s.core.surfaces))
	for _, sf := range s.core.surfaces {
		out = append(out, cloneSurface(sf))
	}
	return out
}

func (s *surfaceService) Get(_ context.Context, surfaceID int) (*model.Surface, error) {
	s.core.mu.RLock()
	defer s.core.mu.RUnlock()
	sf, err := s.core.surfaceLocked(surfaceID)
	if err != nil {
		return nil, err
	}
	out := cloneSurface(*sf)
	return &out, nil
}

// ── AddItem ───────────────────────────────────────────────────────────────────

// MaxLineQuantity caps the quantity of a single line, merged or set.
const MaxLineQuantity = 9999

func checkQuantity(qty int) error {
	if qty > MaxLineQuantity {
		return apierror.Validation("Quantidade máxima por item é %d", MaxLineQuantity)
	}
	return nil
}

func (s *surfaceService) AddItem(ctx context.Context, surfaceID int, productRef string, qty int) (*model.Surface, error) {
	// Catalog is read before the core lock is taken.
	product, lookupErr := s.core.catalog.FindByCodeOrID(ctx, productRef)

	var out model.Surface
	err := s.core.write(func() error {
		sf, err := s.core.surfaceLocked(surfaceID)
		if err != nil {
			return err
		}
		if s.core.activeShiftLocked() == nil {
			return apierror.Precondition("Abra um turno antes de lançar pedidos")
		}
		if lookupErr != nil {
			return lookupErr
		}
		if !product.Available {
			return apierror.Validation("Produto %s está indisponível", product.Name)
		}
		if qty < 1 {
			return apierror.Validation("Quantidade deve ser pelo menos 1")
		}
		if err := checkQuantity(qty); err != nil {
			return err
		}

		if i := lineIndex(sf, product.ID); i >= 0 {
			if err := checkQuantity(sf.Orders[i].Quantity + qty); err != nil {
				return err
			}
			sf.Orders[i].Quantity += qty
		} else {
			sf.Orders = append(sf.Orders, model.LineItem{
				ProductID:   product.ID,
				ProductName: product.Name,
				Price:       product.Price,
				Quantity:    qty,
			})
		}
		recomputeTotal(sf)
		if sf.Status != model.SurfaceRequestingBill {
			sf.Status = model.SurfaceOccupied
		}
		out = cloneSurface(*sf)
		s.core.emit(model.EventSurfaceUpdated, out)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ── RemoveItem / SetQuantity ──────────────────────────────────────────────────

func (s *surfaceService) RemoveItem(_ context.Context, surfaceID int, productID uuid.UUID) (*model.Surface, error) {
	var out model.Surface
	err := s.core.write(func() error {
		sf, err := s.core.surfaceLocked(surfaceID)
		if err != nil {
			return err
		}
		if err := removeLine(sf, productID); err != nil {
			return err
		}
		out = cloneSurface(*sf)
		s.core.emit(model.EventSurfaceUpdated, out)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// SetQuantity with qty ≤ 0 removes the line.
func (s *surfaceService) SetQuantity(_ context.Context, surfaceID int, productID uuid.UUID, qty int) (*model.Surface, error) {
	var out model.Surface
	err := s.core.write(func() error {
		sf, err := s.core.surfaceLocked(surfaceID)
		if err != nil {
			return err
		}
		if qty <= 0 {
			if err := removeLine(sf, productID); err != nil {
				return err
			}
		} else {
			if err := checkQuantity(qty); err != nil {
				return err
			}
			i := lineIndex(sf, productID)
			if i < 0 {
				log.Warn().Int("surface_id", surfaceID).Str("product_id", productID.String()).Msg("line not found")
				return apierror.NotFound("Item não encontrado na mesa %d", surfaceID)
			}
			sf.Orders[i].Quantity = qty
			recomputeTotal(sf)
		}
		out = cloneSurface(*sf)
		s.core.emit(model.EventSurfaceUpdated, out)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func lineIndex(sf *model.Surface, productID uuid.UUID) int {
	for i := range sf.Orders {
		if sf.Orders[i].ProductID == productID {
			return i
		}
	}
	return -1
}

func removeLine(sf *model.Surface, productID uuid.UUID) error {
	i := lineIndex(sf, productID)
	if i < 0 {
		log.Warn().Int("surface_id", sf.ID).Str("product_id", productID.String()).Msg("line not found")
		return apierror.NotFound("Item não encontrado na mesa %d", sf.ID)
	}
	orders := make([]model.LineItem, 0, len(sf.Orders)-1)
	orders = append(orders, sf.Orders[:i]...)
	orders = append(orders, sf.Orders[i+1:]...)
	sf.Orders = orders
	recomputeTotal(sf)
	if len(sf.Orders) == 0 && sf.Status == model.SurfaceOccupied {
		sf.Status = model.SurfaceAvailable
	}
	return nil
}

// ── RequestBill ───────────────────────────────────────────────────────────────

func (s *surfaceService) RequestBill(_ context.Context, surfaceID int) (*model.Surface, error) {
	var out model.Surface
	err := s.core.write(func() error {
		sf, err := s.core.surfaceLocked(surfaceID)
		if err != nil {
			return err
		}
		if len(sf.Orders) == 0 {
			return apierror.Precondition("Mesa sem pedidos")
		}
		if sf.Status != model.SurfaceRequestingBill {
			sf.Status = model.SurfaceRequestingBill
			s.core.emit(model.EventSurfaceUpdated, cloneSurface(*sf))
		}
		out = cloneSurface(*sf)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ── Clear ─────────────────────────────────────────────────────────────────────

// Clear drops every line and frees the surface without recording a sale.
func (s *surfaceService) Clear(_ context.Context, surfaceID int) (*model.Surface, error) {
	var out model.Surface
	err := s.core.write(func() error {
		sf, err := s.core.surfaceLocked(surfaceID)
		if err != nil {
			return err
		}
		if len(sf.Orders) > 0 {
			log.Info().Int("surface_id", surfaceID).Str("total", sf.Total.StringFixed(2)).Msg("surface cleared without payment")
		}
		resetSurface(sf)
		out = cloneSurface(*sf)
		s.core.emit(model.EventSurfaceUpdated, out)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}
