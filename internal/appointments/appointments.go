// Package appointments persists service bookings keyed by vehicle number.
// Two backends implement the same Store interface: a Postgres table for the
// web assistant and a flat CSV file for the single-user wake-word assistant.
package appointments

import (
	"context"
	"strings"
)

// Appointment is one booked service visit.
type Appointment struct {
	ID      int64  `json:"id"`
	Name    string `json:"username"`
	Vehicle string `json:"vehicle_no"`
	Date    string `json:"date"` // 2006-01-02
	Time    string `json:"time"` // 15:04
}

// Store is the capability surface shared by both backends. At most one
// appointment exists per vehicle; Book reports a duplicate as false rather
// than an error.
type Store interface {
	// Book inserts a new appointment. Returns false when the vehicle
	// already has one; the existing record is never overwritten.
	Book(ctx context.Context, name, vehicle, date, timeSlot string) (bool, error)
	// Lookup returns the appointment for a vehicle, or nil when absent.
	Lookup(ctx context.Context, vehicle string) (*Appointment, error)
	// ListAll returns every appointment ordered by date then time.
	ListAll(ctx context.Context) ([]Appointment, error)
	// BookedTimes returns the slot labels already taken on a date.
	BookedTimes(ctx context.Context, date string) ([]string, error)
	// Cancel removes a vehicle's appointment, reporting whether one existed.
	Cancel(ctx context.Context, vehicle string) (bool, error)
}

// titleCase uppercases the first letter of each word, matching how customer
// names are displayed and stored.
func titleCase(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
