package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/deewanshi/carcenter/internal/appointments"
	"github.com/deewanshi/carcenter/internal/dialogue"
	"github.com/deewanshi/carcenter/internal/observability/metrics"
	"github.com/deewanshi/carcenter/internal/schedule"
	"github.com/deewanshi/carcenter/internal/speech"
)

type memStore struct {
	appts map[string]appointments.Appointment
}

func newMemStore() *memStore {
	return &memStore{appts: make(map[string]appointments.Appointment)}
}

func (s *memStore) Book(_ context.Context, name, vehicle, date, timeSlot string) (bool, error) {
	if _, ok := s.appts[vehicle]; ok {
		return false, nil
	}
	s.appts[vehicle] = appointments.Appointment{Name: name, Vehicle: vehicle, Date: date, Time: timeSlot}
	return true, nil
}

func (s *memStore) Lookup(_ context.Context, vehicle string) (*appointments.Appointment, error) {
	a, ok := s.appts[vehicle]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (s *memStore) ListAll(_ context.Context) ([]appointments.Appointment, error) {
	var all []appointments.Appointment
	for _, a := range s.appts {
		all = append(all, a)
	}
	return all, nil
}

func (s *memStore) BookedTimes(_ context.Context, date string) ([]string, error) {
	var times []string
	for _, a := range s.appts {
		if a.Date == date {
			times = append(times, a.Time)
		}
	}
	return times, nil
}

func (s *memStore) Cancel(_ context.Context, vehicle string) (bool, error) {
	if _, ok := s.appts[vehicle]; !ok {
		return false, nil
	}
	delete(s.appts, vehicle)
	return true, nil
}

type stubTranscriber struct {
	transcript string
	err        error
}

func (s *stubTranscriber) Transcribe(_ context.Context, _ []byte) (string, error) {
	return s.transcript, s.err
}

func newTestAssistant(t *testing.T, transcriber speech.Transcriber) (*Assistant, *memStore) {
	t.Helper()
	store := newMemStore()
	svc := dialogue.NewService(dialogue.NewMemorySessionStore(), store, schedule.NewFinder(store, 30), nil)
	return NewAssistant(svc, store, transcriber, nil, nil), store
}

func TestStartReturnsGreetingAndSession(t *testing.T) {
	a, _ := newTestAssistant(t, nil)

	rec := httptest.NewRecorder()
	a.Start(rec, httptest.NewRequest(http.MethodPost, "/start", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp startResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.SessionID == "" {
		t.Fatal("expected a session id")
	}
	if !strings.Contains(resp.Reply, "May I know your name") {
		t.Fatalf("unexpected greeting: %q", resp.Reply)
	}
	if !resp.EnableMic {
		t.Fatal("greeting should enable the mic")
	}
}

func TestListenAdvancesSession(t *testing.T) {
	a, _ := newTestAssistant(t, nil)

	rec := httptest.NewRecorder()
	a.Start(rec, httptest.NewRequest(http.MethodPost, "/start", nil))
	var started startResponse
	json.NewDecoder(rec.Body).Decode(&started)

	body, _ := json.Marshal(listenRequest{SessionID: started.SessionID, Message: "john"})
	rec = httptest.NewRecorder()
	a.Listen(rec, httptest.NewRequest(http.MethodPost, "/listen", bytes.NewReader(body)))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var reply dialogue.Reply
	if err := json.NewDecoder(rec.Body).Decode(&reply); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !strings.Contains(reply.Text, "You said: John") {
		t.Fatalf("unexpected reply: %q", reply.Text)
	}
}

func TestListenSessionIDFromHeader(t *testing.T) {
	a, _ := newTestAssistant(t, nil)

	rec := httptest.NewRecorder()
	a.Start(rec, httptest.NewRequest(http.MethodPost, "/start", nil))
	var started startResponse
	json.NewDecoder(rec.Body).Decode(&started)

	body := []byte(`{"message":"john"}`)
	req := httptest.NewRequest(http.MethodPost, "/listen", bytes.NewReader(body))
	req.Header.Set("X-Session-Id", started.SessionID)
	rec = httptest.NewRecorder()
	a.Listen(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestListenUnknownSession(t *testing.T) {
	a, _ := newTestAssistant(t, nil)

	body := []byte(`{"session_id":"never-started","message":"hello"}`)
	rec := httptest.NewRecorder()
	a.Listen(rec, httptest.NewRequest(http.MethodPost, "/listen", bytes.NewReader(body)))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestListenRequiresSessionID(t *testing.T) {
	a, _ := newTestAssistant(t, nil)

	body := []byte(`{"message":"hello"}`)
	rec := httptest.NewRecorder()
	a.Listen(rec, httptest.NewRequest(http.MethodPost, "/listen", bytes.NewReader(body)))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestListenCountsBookingOutcomes(t *testing.T) {
	store := newMemStore()
	svc := dialogue.NewService(dialogue.NewMemorySessionStore(), store, schedule.NewFinder(store, 30), nil)
	reg := prometheus.NewRegistry()
	a := NewAssistant(svc, store, nil, metrics.NewAssistantMetrics(reg), nil)

	rec := httptest.NewRecorder()
	a.Start(rec, httptest.NewRequest(http.MethodPost, "/start", nil))
	var started startResponse
	json.NewDecoder(rec.Body).Decode(&started)

	speak := func(message string) {
		t.Helper()
		body, _ := json.Marshal(listenRequest{SessionID: started.SessionID, Message: message})
		rec := httptest.NewRecorder()
		a.Listen(rec, httptest.NewRequest(http.MethodPost, "/listen", bytes.NewReader(body)))
		if rec.Code != http.StatusOK {
			t.Fatalf("Listen(%q): %d: %s", message, rec.Code, rec.Body.String())
		}
	}
	for _, message := range []string{
		"john", "yes", "book appointment", "PB 12 AB 1234",
		"yes", "tomorrow", "yes", "10 am", "yes",
	} {
		speak(message)
	}

	if got := counterValue(t, reg, "carcenter_assistant_bookings_total", "outcome", "booked"); got != 1 {
		t.Fatalf("bookings_total{outcome=booked} = %v, want 1", got)
	}
}

func counterValue(t *testing.T, reg *prometheus.Registry, name, labelName, labelValue string) float64 {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, l := range m.GetLabel() {
				if l.GetName() == labelName && l.GetValue() == labelValue {
					return m.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

func TestAdminDatabaseListsAppointments(t *testing.T) {
	a, store := newTestAssistant(t, nil)
	store.Book(context.Background(), "Jane", "PB12AB1234", "2026-11-16", "10:00")

	rec := httptest.NewRecorder()
	a.AdminDatabase(rec, httptest.NewRequest(http.MethodGet, "/admin/database", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var appts []appointments.Appointment
	if err := json.NewDecoder(rec.Body).Decode(&appts); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(appts) != 1 || appts[0].Vehicle != "PB12AB1234" {
		t.Fatalf("unexpected listing: %+v", appts)
	}
}

func TestAdminDatabaseEmptyIsArray(t *testing.T) {
	a, _ := newTestAssistant(t, nil)

	rec := httptest.NewRecorder()
	a.AdminDatabase(rec, httptest.NewRequest(http.MethodGet, "/admin/database", nil))

	if body := strings.TrimSpace(rec.Body.String()); body != "[]" {
		t.Fatalf("expected empty JSON array, got %q", body)
	}
}

func multipartWAV(t *testing.T, pcm []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("audio", "clip.wav")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	fw.Write(speech.EncodeWAV(pcm))
	mw.Close()
	return &buf, mw.FormDataContentType()
}

func TestTranscribe(t *testing.T) {
	a, _ := newTestAssistant(t, &stubTranscriber{transcript: "book appointment"})

	body, contentType := multipartWAV(t, []byte{0, 0, 0, 0})
	req := httptest.NewRequest(http.MethodPost, "/transcribe", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	a.Transcribe(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp transcribeResponse
	json.NewDecoder(rec.Body).Decode(&resp)
	if resp.Transcript != "book appointment" {
		t.Fatalf("unexpected transcript: %q", resp.Transcript)
	}
}

func TestTranscribeRejectsBadWAV(t *testing.T) {
	a, _ := newTestAssistant(t, &stubTranscriber{transcript: "x"})

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, _ := mw.CreateFormFile("audio", "clip.wav")
	fw.Write([]byte("not a wav file at all, just text padding to 44+"))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/transcribe", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	a.Transcribe(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestTranscribeUpstreamFailure(t *testing.T) {
	a, _ := newTestAssistant(t, &stubTranscriber{err: errors.New("rpc unavailable")})

	body, contentType := multipartWAV(t, []byte{0, 0})
	req := httptest.NewRequest(http.MethodPost, "/transcribe", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	a.Transcribe(rec, req)

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rec.Code)
	}
}

func TestTranscribeWithoutTranscriber(t *testing.T) {
	a, _ := newTestAssistant(t, nil)

	body, contentType := multipartWAV(t, []byte{0, 0})
	req := httptest.NewRequest(http.MethodPost, "/transcribe", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	a.Transcribe(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}

func TestHealth(t *testing.T) {
	a, _ := newTestAssistant(t, nil)

	rec := httptest.NewRecorder()
	a.Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "ok") {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}
