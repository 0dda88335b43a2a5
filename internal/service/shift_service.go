package service

import (
	"context"
	"sort"

	"burgerpos/internal/apierror"
	"burgerpos/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

type ShiftService interface {
	// Open seals every active shift and starts a new one for the current actor.
	Open(ctx context.Context) (*model.Shift, error)
	// Close seals the active shift. Returns (nil, nil) when none is open.
	Close(ctx context.Context) (*model.Shift, error)
	// Current returns the active shift with live aggregates, or nil.
	Current(ctx context.Context) *model.ShiftSummary
	CurrentShiftSales(ctx context.Context) []model.Sale
	PaymentBreakdown(sales []model.Sale) model.PaymentBreakdown
	// List returns all shifts, newest first.
	List(ctx context.Context) []model.Shift
	// Summary recomputes a shift's aggregates from the current ledger.
	Summary(ctx context.Context, shiftID uuid.UUID) (*model.ShiftSummary, error)
}

type shiftService struct{ core *Core }

func NewShiftService(core *Core) ShiftService { return &shiftService{core: core} }

// ── Open ──────────────────────────────────────────────────────────────────────

func (s *shiftService) Open(ctx context.Context) (*model.Shift, error) {
	actor := s.core.actor(ctx)
	if actor == nil {
		return nil, apierror.Conflict("Faça login para abrir um turno")
	}

	var opened model.Shift
	err := s.core.write(func() error {
		for _, sh := range s.core.shifts {
			if sh.IsActive {
				log.Info().Str("shift_id", sh.ID.String()).Msg("shift: force-closing before open")
				s.core.sealLocked(sh)
			}
		}
		sh := &model.Shift{
			ID:         s.core.newID(),
			UserID:     actor.ID,
			UserName:   actor.Name,
			StartTime:  s.core.now(),
			IsActive:   true,
			TotalSales: decimal.Zero,
		}
		s.core.shifts = append(s.core.shifts, sh)
		s.core.emit(model.EventShiftOpened, *sh)
		opened = *sh
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Info().Str("shift_id", opened.ID.String()).Str("user", opened.UserName).Msg("shift opened")
	return &opened, nil
}

// ── Close ─────────────────────────────────────────────────────────────────────

func (s *shiftService) Close(ctx context.Context) (*model.Shift, error) {
	if s.core.actor(ctx) == nil {
		return nil, apierror.Precondition("Faça login para fechar o turno")
	}

	var closed *model.Shift
	err := s.core.write(func() error {
		sh := s.core.activeShiftLocked()
		if sh == nil {
			return nil
		}
		s.core.sealLocked(sh)
		cp := *sh
		closed = &cp
		return nil
	})
	return closed, err
}

// ── Queries ───────────────────────────────────────────────────────────────────

func (s *shiftService) Current(_ context.Context) *model.ShiftSummary {
	s.core.mu.RLock()
	defer s.core.mu.RUnlock()
	sh := s.core.activeShiftLocked()
	if sh == nil {
		return nil
	}
	sum := s.core.summaryLocked(sh)
	return &sum
}

func (s *shiftService) CurrentShiftSales(_ context.Context) []model.Sale {
	s.core.mu.RLock()
	defer s.core.mu.RUnlock()
	sh := s.core.activeShiftLocked()
	if sh == nil {
		return []model.Sale{}
	}
	sales := s.core.salesForShiftLocked(sh.ID)
	if sales == nil {
		return []model.Sale{}
	}
	return sales
}

func (s *shiftService) PaymentBreakdown(sales []model.Sale) model.PaymentBreakdown {
	return paymentBreakdown(sales)
}

func (s *shiftService) List(_ context.Context) []model.Shift {
	s.core.mu.RLock()
	defer s.core.mu.RUnlock()
	out := make([]model.Shift, 0, len(s.core.shifts))
	for _, sh := range s.core.shifts {
		out = append(out, *sh)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].StartTime.After(out[j].StartTime) })
	return out
}

func (s *shiftService) Summary(_ context.Context, shiftID uuid.UUID) (*model.ShiftSummary, error) {
	s.core.mu.RLock()
	defer s.core.mu.RUnlock()
	sh := s.core.shiftByIDLocked(shiftID)
	if sh == nil {
		log.Warn().Str("shift_id", shiftID.String()).Msg("shift not found")
		return nil, apierror.NotFound("Turno não encontrado")
	}
	sum := s.core.summaryLocked(sh)
	return &sum, nil
}
