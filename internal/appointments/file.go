package appointments

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
)

// fileHeader is the CSV header row: vehicle_no, appointment_time. The
// appointment_time column holds "2006-01-02 15:04". The customer name is
// not persisted in this format.
var fileHeader = []string{"vehicle_no", "appointment_time"}

// FileStore keeps appointments in a two-column CSV file. Writes rewrite the
// whole file under a mutex; this backend is single-process by design and
// has no cross-process duplicate protection.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore opens (creating if needed) the CSV file at path.
func NewFileStore(path string) (*FileStore, error) {
	s := &FileStore{path: path}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := s.write(map[string]string{}); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, fmt.Errorf("appointments: stat %s: %w", path, err)
	}
	return s, nil
}

// Book records an appointment unless the vehicle already has one.
func (s *FileStore) Book(_ context.Context, _ string, vehicle, date, timeSlot string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load()
	if err != nil {
		return false, err
	}
	vehicle = strings.ToUpper(vehicle)
	if _, exists := records[vehicle]; exists {
		return false, nil
	}
	records[vehicle] = strings.TrimSpace(date + " " + timeSlot)
	if err := s.write(records); err != nil {
		return false, err
	}
	return true, nil
}

// Lookup returns the appointment for a vehicle, or nil when absent.
func (s *FileStore) Lookup(_ context.Context, vehicle string) (*Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load()
	if err != nil {
		return nil, err
	}
	vehicle = strings.ToUpper(vehicle)
	when, ok := records[vehicle]
	if !ok {
		return nil, nil
	}
	appt := splitWhen(vehicle, when)
	return &appt, nil
}

// ListAll returns every appointment ordered by date then time.
func (s *FileStore) ListAll(_ context.Context) ([]Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load()
	if err != nil {
		return nil, err
	}
	appts := make([]Appointment, 0, len(records))
	for vehicle, when := range records {
		appts = append(appts, splitWhen(vehicle, when))
	}
	sort.Slice(appts, func(i, j int) bool {
		if appts[i].Date != appts[j].Date {
			return appts[i].Date < appts[j].Date
		}
		return appts[i].Time < appts[j].Time
	})
	return appts, nil
}

// BookedTimes returns the slot labels taken on a date.
func (s *FileStore) BookedTimes(_ context.Context, date string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load()
	if err != nil {
		return nil, err
	}
	var times []string
	for vehicle, when := range records {
		appt := splitWhen(vehicle, when)
		if appt.Date == date {
			times = append(times, appt.Time)
		}
	}
	sort.Strings(times)
	return times, nil
}

// Cancel removes a vehicle's appointment, reporting whether one existed.
func (s *FileStore) Cancel(_ context.Context, vehicle string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load()
	if err != nil {
		return false, err
	}
	vehicle = strings.ToUpper(vehicle)
	if _, ok := records[vehicle]; !ok {
		return false, nil
	}
	delete(records, vehicle)
	if err := s.write(records); err != nil {
		return false, err
	}
	return true, nil
}

func (s *FileStore) load() (map[string]string, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("appointments: open %s: %w", s.path, err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("appointments: read %s: %w", s.path, err)
	}
	records := make(map[string]string)
	for i, row := range rows {
		if i == 0 || len(row) < 2 {
			continue // header
		}
		records[strings.ToUpper(row[0])] = row[1]
	}
	return records, nil
}

func (s *FileStore) write(records map[string]string) error {
	f, err := os.Create(s.path)
	if err != nil {
		return fmt.Errorf("appointments: create %s: %w", s.path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(fileHeader); err != nil {
		return fmt.Errorf("appointments: write header: %w", err)
	}
	vehicles := make([]string, 0, len(records))
	for v := range records {
		vehicles = append(vehicles, v)
	}
	sort.Strings(vehicles)
	for _, v := range vehicles {
		if err := w.Write([]string{v, records[v]}); err != nil {
			return fmt.Errorf("appointments: write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("appointments: flush %s: %w", s.path, err)
	}
	return nil
}

// splitWhen splits the stored "date time" value back into fields. Values
// written by older tooling may hold free text; those land in Time as-is.
func splitWhen(vehicle, when string) Appointment {
	appt := Appointment{Vehicle: vehicle}
	parts := strings.SplitN(when, " ", 2)
	if len(parts) == 2 && len(parts[0]) == len("2006-01-02") {
		appt.Date = parts[0]
		appt.Time = parts[1]
	} else {
		appt.Time = when
	}
	return appt
}
