package model

import (
	"fmt"
	"time"
)

// MinutesPerDay is the length of one scheduling horizon in minutes.
const MinutesPerDay = 24 * 60

// SlotKey identifies a slot for storage: the horizon date plus the slot's
// start expressed as a minute-of-day offset. Offsets, not display strings,
// so day-boundary slots compare correctly.
type SlotKey struct {
	HorizonDate string // YYYY-MM-DD
	Start       int    // minute of day, [0, 1440)
}

func (k SlotKey) String() string {
	return fmt.Sprintf("%s:%d", k.HorizonDate, k.Start)
}

// Slot is one bookable interval on the horizon. Start and End are minute-of-day
// offsets with half-open [Start, End) semantics; End is 0 for the slot that
// closes at midnight. StartsAt and EndsAt are the absolute instants, already
// shifted past midnight for slots that wrap, so ordering is always
// horizon-relative regardless of raw offset magnitude.
type Slot struct {
	Horizon time.Time `json:"-"` // horizon date at midnight, local
	Index   int       `json:"-"` // ordinal within the horizon
	Start   int       `json:"start"`
	End     int       `json:"end"`

	StartsAt time.Time `json:"-"`
	EndsAt   time.Time `json:"-"`
}

// Key returns the storage identity of the slot.
func (s Slot) Key() SlotKey {
	return SlotKey{HorizonDate: s.Horizon.Format("2006-01-02"), Start: s.Start}
}

// SlotStatus is the rendered state of a slot at some instant.
type SlotStatus string

const (
	StatusPast      SlotStatus = "past"
	StatusAvailable SlotStatus = "available"
	StatusReserved  SlotStatus = "reserved"
)

// SlotView pairs a slot with its computed status. Derived on every read,
// never persisted.
type SlotView struct {
	Slot       Slot
	Status     SlotStatus
	ReservedBy string // holder's display name when Status is reserved
}
