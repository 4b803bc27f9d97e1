package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/deewanshi/carcenter/internal/appointments"
	"github.com/deewanshi/carcenter/internal/dialogue"
	"github.com/deewanshi/carcenter/internal/observability/metrics"
	"github.com/deewanshi/carcenter/internal/speech"
	"github.com/deewanshi/carcenter/pkg/logging"
)

// maxAudioBytes caps uploaded clips at roughly 30 seconds of 16 kHz
// LINEAR16 audio.
const maxAudioBytes = 1 << 20

// Assistant exposes the voice assistant over HTTP.
type Assistant struct {
	dialogue    *dialogue.Service
	store       appointments.Store
	transcriber speech.Transcriber
	metrics     *metrics.AssistantMetrics
	logger      *logging.Logger
}

// NewAssistant builds the handler set. transcriber may be nil, in which
// case POST /transcribe responds 503 and the page falls back to typed
// input.
func NewAssistant(svc *dialogue.Service, store appointments.Store, transcriber speech.Transcriber, m *metrics.AssistantMetrics, logger *logging.Logger) *Assistant {
	if svc == nil {
		panic("handlers: dialogue service cannot be nil")
	}
	if store == nil {
		panic("handlers: appointment store cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Assistant{
		dialogue:    svc,
		store:       store,
		transcriber: transcriber,
		metrics:     m,
		logger:      logger,
	}
}

type startResponse struct {
	SessionID string `json:"session_id"`
	Reply     string `json:"reply"`
	EnableMic bool   `json:"enable_mic"`
}

type listenRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

type transcribeResponse struct {
	Transcript string `json:"transcript"`
}

// Start opens a new dialogue session and returns the greeting.
func (a *Assistant) Start(w http.ResponseWriter, r *http.Request) {
	sessionID, reply, err := a.dialogue.Start(r.Context())
	if err != nil {
		a.logger.Error("failed to start session", "error", err)
		a.metrics.ObserveSessionStarted("error")
		writeError(w, http.StatusInternalServerError, "failed to start session")
		return
	}
	a.metrics.ObserveSessionStarted("ok")
	writeJSON(w, http.StatusOK, startResponse{
		SessionID: sessionID,
		Reply:     reply.Text,
		EnableMic: reply.EnableMic,
	})
}

// Listen applies one user utterance to the session named in the request.
func (a *Assistant) Listen(w http.ResponseWriter, r *http.Request) {
	var req listenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.SessionID == "" {
		req.SessionID = r.Header.Get("X-Session-Id")
	}
	if req.SessionID == "" {
		writeError(w, http.StatusBadRequest, "session_id is required")
		return
	}

	start := time.Now()
	reply, err := a.dialogue.Advance(r.Context(), req.SessionID, req.Message)
	if errors.Is(err, dialogue.ErrUnknownSession) {
		writeError(w, http.StatusNotFound, "unknown session")
		return
	}
	if err != nil {
		a.logger.Error("failed to advance session", "session_id", req.SessionID, "error", err)
		a.metrics.ObserveTurn("listen", "error", time.Since(start).Seconds())
		writeError(w, http.StatusInternalServerError, "failed to process message")
		return
	}
	a.metrics.ObserveTurn("listen", "ok", time.Since(start).Seconds())
	if reply.Outcome != "" {
		a.metrics.ObserveBooking(reply.Outcome)
	}
	writeJSON(w, http.StatusOK, reply)
}

// AdminDatabase lists every appointment. The page gates this behind a
// passphrase; the endpoint itself is open, matching the single-workshop
// deployment it serves.
func (a *Assistant) AdminDatabase(w http.ResponseWriter, r *http.Request) {
	appts, err := a.store.ListAll(r.Context())
	if err != nil {
		a.logger.Error("failed to list appointments", "error", err)
		writeJSON(w, http.StatusInternalServerError, []appointments.Appointment{})
		return
	}
	if appts == nil {
		appts = []appointments.Appointment{}
	}
	writeJSON(w, http.StatusOK, appts)
}

// Transcribe accepts a WAV clip as multipart form field "audio" and
// returns its transcript.
func (a *Assistant) Transcribe(w http.ResponseWriter, r *http.Request) {
	if a.transcriber == nil {
		writeError(w, http.StatusServiceUnavailable, "speech recognition not configured")
		return
	}

	file, _, err := r.FormFile("audio")
	if err != nil {
		writeError(w, http.StatusBadRequest, "audio file is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxAudioBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read audio")
		return
	}
	pcm, err := speech.DecodeWAV(data)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	start := time.Now()
	transcript, err := a.transcriber.Transcribe(r.Context(), pcm)
	if err != nil {
		a.logger.Error("transcription failed", "error", err)
		writeError(w, http.StatusBadGateway, "speech recognition failed")
		return
	}
	a.metrics.ObserveTranscription(time.Since(start).Seconds())
	writeJSON(w, http.StatusOK, transcribeResponse{Transcript: transcript})
}

// Health reports liveness.
func (a *Assistant) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
