package model

import "time"

// Reservation binds one slot to one identity. Created only by a successful
// commit and never mutated afterwards.
type Reservation struct {
	ID          string    `json:"id"`
	Horizon     time.Time `json:"horizon"`
	Start       int       `json:"start"` // minute of day, matches Slot.Start
	IdentityKey string    `json:"identity_key"`
	DisplayName string    `json:"display_name"`
	CreatedAt   time.Time `json:"created_at"`
}

// Key returns the slot identity this reservation occupies.
func (r *Reservation) Key() SlotKey {
	return SlotKey{HorizonDate: r.Horizon.Format("2006-01-02"), Start: r.Start}
}
