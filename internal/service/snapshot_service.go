package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"burgerpos/internal/model"
	"burgerpos/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const snapshotVersion = 1

// SeedConfig holds the demo passwords used when the store is empty.
type SeedConfig struct {
	AdminPassword   string
	CashierPassword string
}

// SnapshotService writes the whole in-memory state through to the store and
// restores it at startup. The in-memory state is authoritative; a failed
// write is retried by the caller.
type SnapshotService interface {
	Flush(ctx context.Context) error
	Restore(ctx context.Context, seed SeedConfig) error
}

type snapshotService struct {
	core      *Core
	catalog   CatalogService
	auth      AuthService
	snapshots repository.SnapshotRepository
	sessions  repository.SessionRepository
}

func NewSnapshotService(core *Core, catalog CatalogService, auth AuthService, snapshots repository.SnapshotRepository, sessions repository.SessionRepository) SnapshotService {
	return &snapshotService{core: core, catalog: catalog, auth: auth, snapshots: snapshots, sessions: sessions}
}

func (s *snapshotService) Flush(ctx context.Context) error {
	st := s.core.Export()
	users, currentUser := s.auth.Export()
	durable := model.DurableState{
		Version:  snapshotVersion,
		Shifts:   st.Shifts,
		Products: s.catalog.Export(),
		Sales:    st.Sales,
		Tables:   st.Tables,
		Users:    users,
	}
	data, err := json.Marshal(durable)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := s.snapshots.Save(ctx, model.SnapshotDurable, data); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	session := model.Session{CurrentUserID: currentUser, CurrentShiftID: s.core.ActiveShiftID()}
	if err := s.sessions.SaveSession(ctx, session); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *snapshotService) Restore(ctx context.Context, seed SeedConfig) error {
	data, err := s.snapshots.Load(ctx, model.SnapshotDurable)
	if errors.Is(err, repository.ErrSnapshotNotFound) {
		log.Info().Msg("snapshot: store is empty, seeding demo catalog and users")
		s.catalog.SeedDefaults()
		if err := s.auth.SeedDefaults(seed.AdminPassword, seed.CashierPassword); err != nil {
			return fmt.Errorf("seed users: %w", err)
		}
		return s.Flush(ctx)
	}
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}

	var durable model.DurableState
	if err := json.Unmarshal(data, &durable); err != nil {
		return fmt.Errorf("decode snapshot: %w", err)
	}
	session, err := s.sessions.LoadSession(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("snapshot: session unavailable, starting logged out")
		session = nil
	}

	s.catalog.Restore(durable.Products)
	s.core.Restore(CoreState{Shifts: durable.Shifts, Sales: durable.Sales, Tables: durable.Tables})

	if len(durable.Users) == 0 {
		log.Warn().Msg("snapshot: no users stored, seeding demo users")
		if err := s.auth.SeedDefaults(seed.AdminPassword, seed.CashierPassword); err != nil {
			return fmt.Errorf("seed users: %w", err)
		}
	} else {
		var currentUser *uuid.UUID
		if session != nil {
			currentUser = session.CurrentUserID
		}
		s.auth.Restore(durable.Users, currentUser)
	}

	if session != nil && session.CurrentShiftID != nil {
		active := s.core.ActiveShiftID()
		if active == nil || *active != *session.CurrentShiftID {
			log.Warn().Str("session_shift_id", session.CurrentShiftID.String()).Msg("snapshot: session shift differs from ledger, ledger wins")
		}
	}

	log.Info().
		Int("products", len(durable.Products)).
		Int("shifts", len(durable.Shifts)).
		Int("sales", len(durable.Sales)).
		Int("users", len(durable.Users)).
		Msg("snapshot restored")
	return nil
}
