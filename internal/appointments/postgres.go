package appointments

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// PostgresStore persists appointments in the appointments table. Every call
// runs a single statement; the vehicle_no unique constraint is the only
// duplicate protection and holds across concurrent bookers.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a store backed by an open database handle.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	if db == nil {
		panic("appointments: db handle required")
	}
	return &PostgresStore{db: db}
}

// Book inserts a new appointment row. A duplicate vehicle is reported as
// false, not an error.
func (s *PostgresStore) Book(ctx context.Context, name, vehicle, date, timeSlot string) (bool, error) {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO appointments (username, vehicle_no, date, time)
		VALUES ($1, $2, $3, $4)
	`, titleCase(name), vehicle, date, timeSlot)
	if err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			return false, nil
		}
		return false, fmt.Errorf("appointments: insert: %w", err)
	}
	return true, nil
}

// Lookup returns the appointment for a vehicle, or nil when none exists.
func (s *PostgresStore) Lookup(ctx context.Context, vehicle string) (*Appointment, error) {
	var appt Appointment
	err := s.db.QueryRowContext(ctx, `
		SELECT id, username, vehicle_no, date, time
		FROM appointments
		WHERE vehicle_no = $1
	`, vehicle).Scan(&appt.ID, &appt.Name, &appt.Vehicle, &appt.Date, &appt.Time)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("appointments: lookup %s: %w", vehicle, err)
	}
	return &appt, nil
}

// ListAll returns all appointments ordered by date then time.
func (s *PostgresStore) ListAll(ctx context.Context) ([]Appointment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, username, vehicle_no, date, time
		FROM appointments
		ORDER BY date ASC, time ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("appointments: list: %w", err)
	}
	defer rows.Close()

	var appts []Appointment
	for rows.Next() {
		var appt Appointment
		if err := rows.Scan(&appt.ID, &appt.Name, &appt.Vehicle, &appt.Date, &appt.Time); err != nil {
			return nil, fmt.Errorf("appointments: scan row: %w", err)
		}
		appts = append(appts, appt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("appointments: iterate rows: %w", err)
	}
	return appts, nil
}

// BookedTimes returns the slot labels taken on a date.
func (s *PostgresStore) BookedTimes(ctx context.Context, date string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT time FROM appointments WHERE date = $1
	`, date)
	if err != nil {
		return nil, fmt.Errorf("appointments: booked times for %s: %w", date, err)
	}
	defer rows.Close()

	var times []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("appointments: scan time: %w", err)
		}
		times = append(times, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("appointments: iterate times: %w", err)
	}
	return times, nil
}

// Cancel deletes a vehicle's appointment, reporting whether a row existed.
func (s *PostgresStore) Cancel(ctx context.Context, vehicle string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM appointments WHERE vehicle_no = $1
	`, vehicle)
	if err != nil {
		return false, fmt.Errorf("appointments: cancel %s: %w", vehicle, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("appointments: read cancel result: %w", err)
	}
	return affected > 0, nil
}
