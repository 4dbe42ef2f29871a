package booking

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jeeyuni/clone-junglebook/internal/catalog"
	"github.com/jeeyuni/clone-junglebook/internal/clock"
	"github.com/jeeyuni/clone-junglebook/internal/events"
	"github.com/jeeyuni/clone-junglebook/internal/metrics"
	"github.com/jeeyuni/clone-junglebook/internal/model"
	"github.com/jeeyuni/clone-junglebook/internal/schedule"
	"github.com/jeeyuni/clone-junglebook/internal/store"
)

// Expected commit outcomes. These are values, not failures of the service:
// every one of them maps to a user-facing response. Anything else returned by
// Commit is an infrastructure error.
var (
	ErrUnauthorized = errors.New("authentication required")
	ErrUnknownSlot  = errors.New("slot is not in the current catalog")
	ErrSlotExpired  = errors.New("slot has already ended")
)

// ConflictError reports a commit that lost to an existing reservation. Holder
// carries the winner's display name so the caller can show who has the slot.
type ConflictError struct {
	Holder string
}

func (e *ConflictError) Error() string {
	if e.Holder == "" {
		return "slot already reserved"
	}
	return "slot already reserved by " + e.Holder
}

// Service owns slot-status derivation and the reservation commit path for a
// single room.
type Service struct {
	store  store.ReservationStore
	params catalog.Params
	clock  clock.Clock
	bus    *events.Bus
	log    *zerolog.Logger
}

// NewService wires the commit service. bus may be nil when no subscribers
// exist (tests).
func NewService(st store.ReservationStore, params catalog.Params, clk clock.Clock, bus *events.Bus, logger *zerolog.Logger) *Service {
	return &Service{store: st, params: params, clock: clk, bus: bus, log: logger}
}

// CurrentCatalog generates the catalog for the horizon containing now.
func (s *Service) CurrentCatalog() *catalog.Catalog {
	now := s.clock.Now()
	return catalog.New(catalog.HorizonFor(now, s.params), s.params)
}

// SlotViews resolves the full slot list for the current horizon.
func (s *Service) SlotViews(ctx context.Context) ([]model.SlotView, error) {
	now := s.clock.Now()
	cat := catalog.New(catalog.HorizonFor(now, s.params), s.params)
	reservations, err := s.store.ListByHorizon(ctx, cat.Horizon())
	if err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}
	return schedule.Resolve(cat, now, schedule.Index(reservations)), nil
}

// Commit attempts to reserve the slot [start, end), both minute-of-day
// offsets, for identity. Preconditions short-circuit in order: identity,
// catalog membership, expiry; only then is the store touched, with a single
// atomic insert. On a lost race the existing holder is returned inside
// ConflictError and the store is left untouched.
func (s *Service) Commit(ctx context.Context, start, end int, identity *model.Identity) (*model.Reservation, error) {
	if identity == nil || identity.Key == "" {
		metrics.IncCommit("unauthorized")
		return nil, ErrUnauthorized
	}

	now := s.clock.Now()
	cat := catalog.New(catalog.HorizonFor(now, s.params), s.params)
	slot, ok := cat.FindByStart(start)
	if !ok || slot.End != end {
		metrics.IncCommit("unknown_slot")
		return nil, ErrUnknownSlot
	}
	if !now.Before(slot.EndsAt) {
		metrics.IncCommit("expired")
		return nil, ErrSlotExpired
	}

	reservation := &model.Reservation{
		ID:          uuid.NewString(),
		Horizon:     slot.Horizon,
		Start:       slot.Start,
		IdentityKey: identity.Key,
		DisplayName: identity.DisplayName,
		CreatedAt:   now,
	}

	inserted, err := s.store.TryInsert(ctx, reservation)
	if err != nil {
		return nil, fmt.Errorf("commit reservation: %w", err)
	}
	if !inserted {
		existing, err := s.store.Get(ctx, slot.Key())
		if err != nil {
			return nil, fmt.Errorf("load existing reservation: %w", err)
		}
		metrics.IncCommit("conflict")
		conflict := &ConflictError{}
		if existing != nil {
			conflict.Holder = existing.DisplayName
		}
		return nil, conflict
	}

	metrics.IncCommit("committed")
	s.log.Info().
		Str("reservation_id", reservation.ID).
		Str("slot", slot.Key().String()).
		Str("identity", identity.Key).
		Msg("reservation committed")
	if s.bus != nil {
		if err := s.bus.PublishJSON(events.EventReservationCommitted, reservation); err != nil {
			s.log.Warn().Err(err).Msg("publish reservation event")
		}
	}
	return reservation, nil
}
