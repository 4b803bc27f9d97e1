// Package schedule resolves spoken date preferences and finds the next
// open service slot.
package schedule

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Slots are the fixed daily service slot labels, in booking order.
var Slots = []string{"10:00", "13:00", "16:00"}

// DateLayout is the wire and storage format for service dates.
const DateLayout = "2006-01-02"

// DefaultLookaheadDays bounds the day-by-day search for a free slot.
const DefaultLookaheadDays = 30

// ErrNoAvailability is returned when every slot in the lookahead window is
// already booked.
var ErrNoAvailability = errors.New("schedule: no free slot in lookahead window")

// Occupancy reports which slot labels are already taken on a date.
type Occupancy interface {
	BookedTimes(ctx context.Context, date string) ([]string, error)
}

// Slot is a bookable (date, time) pair.
type Slot struct {
	Date string // DateLayout
	Time string // one of Slots
}

// Finder scans the daily slot table for the first free slot.
type Finder struct {
	store         Occupancy
	lookaheadDays int
}

// NewFinder creates a Finder over the given occupancy source.
func NewFinder(store Occupancy, lookaheadDays int) *Finder {
	if store == nil {
		panic("schedule: occupancy store required")
	}
	if lookaheadDays <= 0 {
		lookaheadDays = DefaultLookaheadDays
	}
	return &Finder{store: store, lookaheadDays: lookaheadDays}
}

// NextAvailable returns the first (date, slot) pair on or after from that
// has no existing booking. Returns ErrNoAvailability when the whole
// lookahead window is exhausted.
func (f *Finder) NextAvailable(ctx context.Context, from time.Time) (Slot, error) {
	day := midnight(from)
	for i := 0; i < f.lookaheadDays; i++ {
		date := day.AddDate(0, 0, i).Format(DateLayout)
		booked, err := f.store.BookedTimes(ctx, date)
		if err != nil {
			return Slot{}, fmt.Errorf("schedule: check occupancy for %s: %w", date, err)
		}
		taken := make(map[string]struct{}, len(booked))
		for _, t := range booked {
			taken[t] = struct{}{}
		}
		for _, label := range Slots {
			if _, ok := taken[label]; !ok {
				return Slot{Date: date, Time: label}, nil
			}
		}
	}
	return Slot{}, ErrNoAvailability
}
