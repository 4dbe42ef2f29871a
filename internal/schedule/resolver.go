package schedule

import (
	"time"

	"github.com/jeeyuni/clone-junglebook/internal/catalog"
	"github.com/jeeyuni/clone-junglebook/internal/model"
)

// Resolve computes the display state of every slot in catalog order. It is a
// pure function of its inputs: no clock reads, no store access, no mutation.
//
// A slot is past only once now has reached its end, so the hour currently in
// progress stays actionable. The comparison uses the slot's absolute EndsAt,
// which the catalog already placed on the correct side of midnight, so the
// wraparound slot classifies the same way as any other. Past wins over
// reserved: a reservation on an ended slot is no longer shown as held.
func Resolve(c *catalog.Catalog, now time.Time, reservations map[model.SlotKey]*model.Reservation) []model.SlotView {
	slots := c.Slots()
	views := make([]model.SlotView, 0, len(slots))
	for _, slot := range slots {
		view := model.SlotView{Slot: slot, Status: model.StatusAvailable}
		switch {
		case !now.Before(slot.EndsAt):
			view.Status = model.StatusPast
		default:
			if r := reservations[slot.Key()]; r != nil {
				view.Status = model.StatusReserved
				view.ReservedBy = r.DisplayName
			}
		}
		views = append(views, view)
	}
	return views
}

// Index arranges reservations by slot key for Resolve. Entries that do not
// correspond to a catalog slot are simply never looked up.
func Index(reservations []model.Reservation) map[model.SlotKey]*model.Reservation {
	m := make(map[model.SlotKey]*model.Reservation, len(reservations))
	for i := range reservations {
		m[reservations[i].Key()] = &reservations[i]
	}
	return m
}
