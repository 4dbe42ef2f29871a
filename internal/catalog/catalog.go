package catalog

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jeeyuni/clone-junglebook/internal/model"
)

// Params describes how a horizon is cut into slots.
type Params struct {
	Start       int // minute of day the horizon opens at, e.g. 600 for 10:00
	SlotMinutes int
	Count       int
}

// DefaultParams is a full rolling day of one-hour slots opening at 10:00.
var DefaultParams = Params{Start: 600, SlotMinutes: 60, Count: 24}

func (p Params) normalized() Params {
	if p.SlotMinutes <= 0 {
		p.SlotMinutes = DefaultParams.SlotMinutes
	}
	if p.Count <= 0 {
		p.Count = model.MinutesPerDay / p.SlotMinutes
	}
	if p.Start < 0 || p.Start >= model.MinutesPerDay {
		p.Start = DefaultParams.Start
	}
	return p
}

// Catalog is the ordered slot sequence for one horizon. It is generated
// deterministically from the horizon date and Params; there is no shared
// mutable slot list anywhere.
type Catalog struct {
	horizon time.Time
	slots   []model.Slot
	byStart map[int]int // start minute-of-day -> slot index
}

// New generates the catalog for the given horizon date. Slots are contiguous
// and tile Count*SlotMinutes from the opening time; slots past midnight keep
// their minute-of-day identity but absolute times on the following day.
func New(horizon time.Time, p Params) *Catalog {
	p = p.normalized()
	midnight := time.Date(horizon.Year(), horizon.Month(), horizon.Day(), 0, 0, 0, 0, horizon.Location())
	open := midnight.Add(time.Duration(p.Start) * time.Minute)

	c := &Catalog{
		horizon: midnight,
		slots:   make([]model.Slot, 0, p.Count),
		byStart: make(map[int]int, p.Count),
	}
	for i := 0; i < p.Count; i++ {
		startsAt := open.Add(time.Duration(i*p.SlotMinutes) * time.Minute)
		endsAt := startsAt.Add(time.Duration(p.SlotMinutes) * time.Minute)
		slot := model.Slot{
			Horizon:  midnight,
			Index:    i,
			Start:    (p.Start + i*p.SlotMinutes) % model.MinutesPerDay,
			End:      (p.Start + (i+1)*p.SlotMinutes) % model.MinutesPerDay,
			StartsAt: startsAt,
			EndsAt:   endsAt,
		}
		c.byStart[slot.Start] = i
		c.slots = append(c.slots, slot)
	}
	return c
}

// Horizon returns the horizon date (midnight, local).
func (c *Catalog) Horizon() time.Time { return c.horizon }

// Slots returns the slots in catalog order. Callers must not mutate.
func (c *Catalog) Slots() []model.Slot { return c.slots }

// FindByStart looks up the slot starting at the given minute-of-day offset.
func (c *Catalog) FindByStart(start int) (model.Slot, bool) {
	i, ok := c.byStart[start]
	if !ok {
		return model.Slot{}, false
	}
	return c.slots[i], true
}

// HorizonFor returns the horizon date whose slot day contains now: today once
// the opening time has been reached, otherwise the previous day (the tail of
// yesterday's horizon is still running).
func HorizonFor(now time.Time, p Params) time.Time {
	p = p.normalized()
	minuteOfDay := now.Hour()*60 + now.Minute()
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if minuteOfDay < p.Start {
		day = day.AddDate(0, 0, -1)
	}
	return day
}

// ParseTimeOfDay converts an "HH:MM" display string to a minute-of-day
// offset. Parsing happens only at the presentation boundary; everything past
// it compares numeric offsets.
func ParseTimeOfDay(s string) (int, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid time format: %s", s)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("invalid hour: %w", err)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("invalid minute: %w", err)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("time out of range: %s", s)
	}
	return hour*60 + minute, nil
}

// FormatTimeOfDay renders a minute-of-day offset as "HH:MM".
func FormatTimeOfDay(offset int) string {
	offset %= model.MinutesPerDay
	if offset < 0 {
		offset += model.MinutesPerDay
	}
	return fmt.Sprintf("%02d:%02d", offset/60, offset%60)
}
