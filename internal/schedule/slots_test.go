package schedule

import (
	"context"
	"errors"
	"testing"
	"time"
)

// stubOccupancy serves booked slot labels from a map keyed by date.
type stubOccupancy struct {
	booked map[string][]string
	err    error
}

func (s *stubOccupancy) BookedTimes(_ context.Context, date string) ([]string, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.booked[date], nil
}

func TestNextAvailableFirstSlotFree(t *testing.T) {
	f := NewFinder(&stubOccupancy{booked: map[string][]string{}}, 30)

	slot, err := f.NextAvailable(context.Background(), refNow)
	if err != nil {
		t.Fatalf("NextAvailable returned error: %v", err)
	}
	if slot.Date != "2026-11-15" || slot.Time != "10:00" {
		t.Errorf("expected first slot of the start date, got %+v", slot)
	}
}

func TestNextAvailableSkipsBookedSlots(t *testing.T) {
	f := NewFinder(&stubOccupancy{booked: map[string][]string{
		"2026-11-15": {"10:00", "13:00"},
	}}, 30)

	slot, err := f.NextAvailable(context.Background(), refNow)
	if err != nil {
		t.Fatalf("NextAvailable returned error: %v", err)
	}
	if slot.Date != "2026-11-15" || slot.Time != "16:00" {
		t.Errorf("expected 16:00 on the start date, got %+v", slot)
	}
}

func TestNextAvailableAdvancesDayWhenFull(t *testing.T) {
	f := NewFinder(&stubOccupancy{booked: map[string][]string{
		"2026-11-15": {"10:00", "13:00", "16:00"},
	}}, 30)

	slot, err := f.NextAvailable(context.Background(), refNow)
	if err != nil {
		t.Fatalf("NextAvailable returned error: %v", err)
	}
	if slot.Date != "2026-11-16" || slot.Time != "10:00" {
		t.Errorf("expected first slot of the next day, got %+v", slot)
	}
}

func TestNextAvailableExhaustion(t *testing.T) {
	booked := make(map[string][]string)
	day := time.Date(2026, time.November, 15, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 30; i++ {
		booked[day.AddDate(0, 0, i).Format(DateLayout)] = append([]string(nil), Slots...)
	}
	f := NewFinder(&stubOccupancy{booked: booked}, 30)

	_, err := f.NextAvailable(context.Background(), refNow)
	if !errors.Is(err, ErrNoAvailability) {
		t.Fatalf("expected ErrNoAvailability, got %v", err)
	}
}

func TestNextAvailablePropagatesStoreError(t *testing.T) {
	f := NewFinder(&stubOccupancy{err: errors.New("connection refused")}, 30)

	_, err := f.NextAvailable(context.Background(), refNow)
	if err == nil || errors.Is(err, ErrNoAvailability) {
		t.Fatalf("expected wrapped store error, got %v", err)
	}
}
