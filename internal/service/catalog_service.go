package service

import (
	"context"
	"sort"
	"strings"
	"sync"

	"burgerpos/internal/apierror"
	"burgerpos/internal/dto"
	"burgerpos/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ProductLookup is the read-only view of the catalog used by order surfaces.
type ProductLookup interface {
	FindByCodeOrID(ctx context.Context, ref string) (*model.Product, error)
}

type CatalogService interface {
	ProductLookup
	List(ctx context.Context) []model.Product
	ListAvailable(ctx context.Context) []model.Product
	Get(ctx context.Context, id uuid.UUID) (*model.Product, error)
	Create(ctx context.Context, req dto.ProductRequest) (*model.Product, error)
	Update(ctx context.Context, id uuid.UUID, req dto.ProductRequest) (*model.Product, error)
	Delete(ctx context.Context, id uuid.UUID) error

	SeedDefaults()
	Export() []model.Product
	Restore(products []model.Product)
}

type catalogService struct {
	mu       sync.RWMutex
	products []model.Product
	bus      *EventBus
	newID    func() uuid.UUID
}

func NewCatalogService(bus *EventBus) CatalogService {
	return &catalogService{bus: bus, newID: uuid.New}
}

// ── Reads ─────────────────────────────────────────────────────────────────────

func (s *catalogService) List(_ context.Context) []model.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sortedLocked(func(model.Product) bool { return true })
}

func (s *catalogService) ListAvailable(_ context.Context) []model.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sortedLocked(func(p model.Product) bool { return p.Available })
}

func (s *catalogService) sortedLocked(keep func(model.Product) bool) []model.Product {
	out := make([]model.Product, 0, len(s.products))
	for _, p := range s.products {
		if keep(p) {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

func (s *catalogService) Get(_ context.Context, id uuid.UUID) (*model.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexByID(id); i >= 0 {
		p := s.products[i]
		return &p, nil
	}
	return nil, apierror.NotFound("Produto não encontrado")
}

// FindByCodeOrID matches the typed code first, then the id. Unavailable
// products are returned as-is; callers decide whether they can be sold.
func (s *catalogService) FindByCodeOrID(_ context.Context, ref string) (*model.Product, error) {
	ref = strings.TrimSpace(ref)
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.products {
		if p.Code == ref {
			return &p, nil
		}
	}
	if id, err := uuid.Parse(ref); err == nil {
		if i := s.indexByID(id); i >= 0 {
			p := s.products[i]
			return &p, nil
		}
	}
	log.Warn().Str("ref", ref).Msg("catalog: product not found")
	return nil, apierror.NotFound("Produto não encontrado ou indisponível")
}

// ── Writes ────────────────────────────────────────────────────────────────────

func (s *catalogService) Create(_ context.Context, req dto.ProductRequest) (*model.Product, error) {
	req.Code = strings.TrimSpace(req.Code)
	if err := validateProduct(req); err != nil {
		return nil, err
	}
	s.mu.Lock()
	if s.codeTakenLocked(req.Code, uuid.Nil) {
		s.mu.Unlock()
		return nil, apierror.Validation("Já existe um produto com o código %s", req.Code)
	}
	p := model.Product{ID: s.newID(), Available: true}
	applyProduct(&p, req)
	s.products = append(s.products, p)
	s.mu.Unlock()

	log.Info().Str("product_id", p.ID.String()).Str("code", p.Code).Msg("catalog: product created")
	s.bus.Publish(model.EventCatalogChanged, p)
	return &p, nil
}

func (s *catalogService) Update(_ context.Context, id uuid.UUID, req dto.ProductRequest) (*model.Product, error) {
	req.Code = strings.TrimSpace(req.Code)
	if err := validateProduct(req); err != nil {
		return nil, err
	}
	s.mu.Lock()
	i := s.indexByID(id)
	if i < 0 {
		s.mu.Unlock()
		return nil, apierror.NotFound("Produto não encontrado")
	}
	if s.codeTakenLocked(req.Code, id) {
		s.mu.Unlock()
		return nil, apierror.Validation("Já existe um produto com o código %s", req.Code)
	}
	applyProduct(&s.products[i], req)
	p := s.products[i]
	s.mu.Unlock()

	s.bus.Publish(model.EventCatalogChanged, p)
	return &p, nil
}

// Delete removes the product from the catalog. Line items already on surfaces
// or in sales keep their denormalised copy.
func (s *catalogService) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	i := s.indexByID(id)
	if i < 0 {
		s.mu.Unlock()
		return apierror.NotFound("Produto não encontrado")
	}
	s.products = append(s.products[:i], s.products[i+1:]...)
	s.mu.Unlock()

	s.bus.Publish(model.EventCatalogChanged, map[string]string{"deleted": id.String()})
	return nil
}

// ── Persistence ───────────────────────────────────────────────────────────────

func (s *catalogService) SeedDefaults() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products = s.products[:0]
	for _, sp := range defaultProducts {
		s.products = append(s.products, model.Product{
			ID:        s.newID(),
			Code:      sp.code,
			Name:      sp.name,
			Price:     mustPrice(sp.price),
			Category:  sp.category,
			Available: true,
		})
	}
}

func (s *catalogService) Export() []model.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Product(nil), s.products...)
}

func (s *catalogService) Restore(products []model.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products = append([]model.Product(nil), products...)
}

// ── Helpers ───────────────────────────────────────────────────────────────────

func (s *catalogService) indexByID(id uuid.UUID) int {
	for i := range s.products {
		if s.products[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *catalogService) codeTakenLocked(code string, except uuid.UUID) bool {
	for _, p := range s.products {
		if p.Code == code && p.ID != except {
			return true
		}
	}
	return false
}

func validateProduct(req dto.ProductRequest) error {
	if req.Code == "" {
		return apierror.Validation("Código do produto é obrigatório")
	}
	if strings.TrimSpace(req.Name) == "" {
		return apierror.Validation("Nome do produto é obrigatório")
	}
	if req.Price.IsNegative() {
		return apierror.Validation("Preço não pode ser negativo")
	}
	for _, c := range model.Categories {
		if c == req.Category {
			return nil
		}
	}
	return apierror.Validation("Categoria inválida")
}

func applyProduct(p *model.Product, req dto.ProductRequest) {
	p.Code = req.Code
	p.Name = strings.TrimSpace(req.Name)
	p.Price = model.RoundMoney(req.Price)
	p.Category = req.Category
	p.Description = req.Description
	if req.Available != nil {
		p.Available = *req.Available
	}
}
