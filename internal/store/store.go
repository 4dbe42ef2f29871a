package store

import (
	"context"
	"time"

	"github.com/jeeyuni/clone-junglebook/internal/model"
)

// ReservationStore is the contract the commit service relies on. TryInsert is
// the one operation that must be transactionally atomic: of any number of
// concurrent inserts for the same slot, exactly one returns true and the rest
// return false without overwriting. A read-then-write implementation is not
// conformant.
type ReservationStore interface {
	// TryInsert commits the reservation iff its slot holds none yet.
	TryInsert(ctx context.Context, r *model.Reservation) (bool, error)
	// Get returns the reservation for the slot, or nil when the slot is free.
	Get(ctx context.Context, key model.SlotKey) (*model.Reservation, error)
	// ListByHorizon returns all reservations on the horizon date, ordered by
	// start offset.
	ListByHorizon(ctx context.Context, horizon time.Time) ([]model.Reservation, error)
	// Ping reports whether the backing storage is reachable.
	Ping(ctx context.Context) error
	Close() error
}
