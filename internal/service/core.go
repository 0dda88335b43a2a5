package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"burgerpos/internal/apierror"
	"burgerpos/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// CoreConfig sizes the register.
type CoreConfig struct {
	TableCount     int             // tables 1..TableCount; 0 is the counter
	SplitTolerance decimal.Decimal // max |Σ payments − total| accepted on split checkout
}

// Core owns shifts, order surfaces and the sale ledger. Every mutation holds
// the write lock from its first precondition check to its last write, so
// readers never observe a sale without its surface cleared. Events produced
// while the lock is held are published after it is released.
type Core struct {
	mu       sync.RWMutex
	shifts   []*model.Shift
	sales    []model.Sale
	surfaces []model.Surface
	pending  []model.Event

	cfg     CoreConfig
	actors  ActorSource
	catalog ProductLookup
	bus     *EventBus
	now     func() time.Time
	newID   func() uuid.UUID
}

func NewCore(cfg CoreConfig, actors ActorSource, catalog ProductLookup, bus *EventBus) *Core {
	if cfg.TableCount < 0 {
		cfg.TableCount = 0
	}
	if cfg.SplitTolerance.IsZero() {
		cfg.SplitTolerance = decimal.New(1, -2)
	}
	c := &Core{
		cfg:     cfg,
		actors:  actors,
		catalog: catalog,
		bus:     bus,
		now:     time.Now,
		newID:   uuid.New,
	}
	c.surfaces = freshSurfaces(cfg.TableCount)
	return c
}

func freshSurfaces(tables int) []model.Surface {
	out := make([]model.Surface, tables+1)
	for i := range out {
		out[i] = model.Surface{ID: i, Total: decimal.Zero, Status: model.SurfaceAvailable}
	}
	return out
}

// ── Locking ───────────────────────────────────────────────────────────────────

// write runs fn under the write lock. fn must check every precondition before
// its first mutation; on error nothing it queued is published.
func (c *Core) write(fn func() error) error {
	c.mu.Lock()
	err := fn()
	pending := c.pending
	c.pending = nil
	c.mu.Unlock()

	if err != nil {
		return err
	}
	for _, ev := range pending {
		c.bus.publish(ev)
	}
	return nil
}

// emit queues an event; call only under the write lock.
func (c *Core) emit(typ string, data any) {
	c.pending = append(c.pending, model.Event{Type: typ, At: c.now(), Data: data})
}

func (c *Core) actor(ctx context.Context) *model.Actor {
	if c.actors == nil {
		return nil
	}
	return c.actors.CurrentActor(ctx)
}

// ── Shared helpers (callers hold the lock) ────────────────────────────────────

func (c *Core) activeShiftLocked() *model.Shift {
	for _, sh := range c.shifts {
		if sh.IsActive {
			return sh
		}
	}
	return nil
}

func (c *Core) shiftByIDLocked(id uuid.UUID) *model.Shift {
	for _, sh := range c.shifts {
		if sh.ID == id {
			return sh
		}
	}
	return nil
}

func (c *Core) surfaceLocked(id int) (*model.Surface, error) {
	if id < 0 || id >= len(c.surfaces) {
		log.Warn().Int("surface_id", id).Msg("surface not found")
		return nil, apierror.NotFound("Mesa %d não encontrada", id)
	}
	return &c.surfaces[id], nil
}

func (c *Core) saleIndexLocked(id uuid.UUID) int {
	for i := range c.sales {
		if c.sales[i].ID == id {
			return i
		}
	}
	return -1
}

func (c *Core) salesForShiftLocked(shiftID uuid.UUID) []model.Sale {
	var out []model.Sale
	for _, s := range c.sales {
		if s.ShiftID == shiftID {
			out = append(out, s.Clone())
		}
	}
	return out
}

// sealLocked closes sh with aggregates taken from the ledger.
func (c *Core) sealLocked(sh *model.Shift) {
	agg := aggregate(c.salesForShiftLocked(sh.ID))
	end := c.now()
	sh.EndTime = &end
	sh.IsActive = false
	sh.TotalSales = agg.total
	sh.TotalItems = agg.items
	sh.PaymentBreakdown = agg.breakdown
	log.Info().
		Str("shift_id", sh.ID.String()).
		Str("total_sales", sh.TotalSales.StringFixed(2)).
		Int("total_items", sh.TotalItems).
		Msg("shift sealed")
	c.emit(model.EventShiftClosed, *sh)
}

func (c *Core) summaryLocked(sh *model.Shift) model.ShiftSummary {
	agg := aggregate(c.salesForShiftLocked(sh.ID))
	return model.ShiftSummary{
		Shift:            *sh,
		SalesCount:       agg.count,
		TotalSales:       agg.total,
		TotalItems:       agg.items,
		PaymentBreakdown: agg.breakdown,
	}
}

// ── Aggregation ───────────────────────────────────────────────────────────────

type saleAggregate struct {
	count     int
	total     decimal.Decimal
	items     int
	breakdown model.PaymentBreakdown
}

func aggregate(sales []model.Sale) saleAggregate {
	agg := saleAggregate{total: decimal.Zero, breakdown: paymentBreakdown(sales)}
	for _, s := range sales {
		agg.count++
		agg.total = agg.total.Add(s.Total)
		agg.items += s.ItemCount()
	}
	return agg
}

// paymentBreakdown credits split sales per payment and every other sale in
// full to its payment method. Courtesy totals are included.
func paymentBreakdown(sales []model.Sale) model.PaymentBreakdown {
	b := model.PaymentBreakdown{}
	for _, s := range sales {
		if s.IsSplit() {
			for _, p := range s.Payments {
				b.Add(p.Method, p.Amount)
			}
			continue
		}
		b.Add(s.PaymentMethod, s.Total)
	}
	return b
}

// ── Copies ────────────────────────────────────────────────────────────────────

func cloneSurface(s model.Surface) model.Surface {
	out := s
	out.Orders = append([]model.LineItem(nil), s.Orders...)
	return out
}

func resetSurface(s *model.Surface) {
	s.Orders = nil
	s.Total = decimal.Zero
	s.Status = model.SurfaceAvailable
}

func recomputeTotal(s *model.Surface) {
	total := decimal.Zero
	for i := range s.Orders {
		s.Orders[i].Subtotal = s.Orders[i].Price.Mul(decimal.NewFromInt(int64(s.Orders[i].Quantity)))
		total = total.Add(s.Orders[i].Subtotal)
	}
	s.Total = total
}

// ── Persistence ───────────────────────────────────────────────────────────────

// CoreState is the persisted part of the core.
type CoreState struct {
	Shifts []model.Shift
	Sales  []model.Sale
	Tables []model.Surface
}

// Export returns a deep copy of the core state.
func (c *Core) Export() CoreState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	st := CoreState{
		Shifts: make([]model.Shift, 0, len(c.shifts)),
		Sales:  make([]model.Sale, 0, len(c.sales)),
		Tables: make([]model.Surface, 0, len(c.surfaces)),
	}
	for _, sh := range c.shifts {
		st.Shifts = append(st.Shifts, *sh)
	}
	for _, s := range c.sales {
		st.Sales = append(st.Sales, s.Clone())
	}
	for _, s := range c.surfaces {
		st.Tables = append(st.Tables, cloneSurface(s))
	}
	return st
}

// ActiveShiftID returns the id of the open shift, if any.
func (c *Core) ActiveShiftID() *uuid.UUID {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if sh := c.activeShiftLocked(); sh != nil {
		id := sh.ID
		return &id
	}
	return nil
}

// Restore replaces the core state. Surfaces outside the configured table range
// are dropped; missing ones start available. If the snapshot holds more than
// one active shift, all but the newest are sealed.
func (c *Core) Restore(st CoreState) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.shifts = make([]*model.Shift, 0, len(st.Shifts))
	for i := range st.Shifts {
		sh := st.Shifts[i]
		c.shifts = append(c.shifts, &sh)
	}
	sort.SliceStable(c.shifts, func(i, j int) bool { return c.shifts[i].StartTime.Before(c.shifts[j].StartTime) })

	c.sales = make([]model.Sale, 0, len(st.Sales))
	for _, s := range st.Sales {
		c.sales = append(c.sales, s.Clone())
	}

	c.surfaces = freshSurfaces(c.cfg.TableCount)
	for _, t := range st.Tables {
		if t.ID < 0 || t.ID >= len(c.surfaces) {
			log.Warn().Int("surface_id", t.ID).Msg("restore: dropping surface outside table range")
			continue
		}
		s := cloneSurface(t)
		recomputeTotal(&s)
		if len(s.Orders) > 0 && s.Status == model.SurfaceAvailable {
			s.Status = model.SurfaceOccupied
		}
		c.surfaces[t.ID] = s
	}

	var active []*model.Shift
	for _, sh := range c.shifts {
		if sh.IsActive {
			active = append(active, sh)
		}
	}
	for i := 0; i < len(active)-1; i++ {
		log.Warn().Str("shift_id", active[i].ID.String()).Msg("restore: sealing extra active shift")
		c.sealLocked(active[i])
	}
	c.pending = nil
}
