package dialogue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"

	"github.com/deewanshi/carcenter/internal/appointments"
	"github.com/deewanshi/carcenter/internal/schedule"
	"github.com/deewanshi/carcenter/internal/vehicle"
)

// Reply is one assistant turn sent back to the caller. Outcome is set
// only on turns that attempt a booking and never crosses the wire.
type Reply struct {
	Text      string `json:"reply"`
	EnableMic bool   `json:"enable_mic"`
	Done      bool   `json:"done"`
	Outcome   string `json:"-"`
}

// Booking outcomes reported on Reply.Outcome.
const (
	OutcomeBooked         = "booked"
	OutcomeDuplicate      = "duplicate"
	OutcomeNoAvailability = "no_availability"
)

const greeting = "Good morning! Welcome to Deewanshi Car Center. May I know your name please?"

// Service drives the scripted booking conversation. Every turn loads the
// caller's session, applies the stage logic, and saves the session back,
// so any number of callers can talk at once.
type Service struct {
	sessions SessionStore
	store    appointments.Store
	finder   *schedule.Finder
	log      *slog.Logger
	now      func() time.Time
}

// NewService wires the dialogue engine to its session store, appointment
// store and slot finder.
func NewService(sessions SessionStore, store appointments.Store, finder *schedule.Finder, log *slog.Logger) *Service {
	if sessions == nil {
		panic("dialogue: session store cannot be nil")
	}
	if store == nil {
		panic("dialogue: appointment store cannot be nil")
	}
	if finder == nil {
		panic("dialogue: slot finder cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		sessions: sessions,
		store:    store,
		finder:   finder,
		log:      log,
		now:      time.Now,
	}
}

// Start opens a new session and returns its ID along with the greeting.
func (s *Service) Start(ctx context.Context) (string, Reply, error) {
	session := NewSession(uuid.NewString())
	session.Stage = StageAskName
	if err := s.sessions.Save(ctx, session); err != nil {
		return "", Reply{}, err
	}
	s.log.Info("session started", "session_id", session.ID)
	return session.ID, Reply{Text: greeting, EnableMic: true}, nil
}

// Advance applies one caller utterance to the session and returns the
// assistant's reply. Returns ErrUnknownSession when the ID is stale.
func (s *Service) Advance(ctx context.Context, sessionID, message string) (Reply, error) {
	session, err := s.sessions.Load(ctx, sessionID)
	if err != nil {
		return Reply{}, err
	}

	input := strings.ToLower(strings.TrimSpace(message))
	reply, err := s.step(ctx, session, input)
	if err != nil {
		return Reply{}, err
	}

	if reply.Done {
		if err := s.sessions.Delete(ctx, sessionID); err != nil {
			s.log.Warn("failed to delete finished session", "session_id", sessionID, "error", err)
		}
	} else if err := s.sessions.Save(ctx, session); err != nil {
		return Reply{}, err
	}
	s.log.Info("session advanced", "session_id", sessionID, "stage", session.Stage, "done", reply.Done)
	return reply, nil
}

func (s *Service) step(ctx context.Context, session *Session, input string) (Reply, error) {
	switch session.Stage {
	case StageWelcome:
		session.Stage = StageAskName
		return Reply{Text: greeting, EnableMic: true}, nil

	case StageAskName:
		session.Name = titleCase(input)
		session.Stage = StageConfirmName
		return Reply{
			Text:      fmt.Sprintf("You said: %s. Is this correct? Say yes or no.", session.Name),
			EnableMic: true,
		}, nil

	case StageConfirmName:
		if isAffirmative(input) {
			session.Stage = StageMainMenu
			return Reply{
				Text:      fmt.Sprintf("Okay, confirmed! Thank you %s! How can I help you today? Say 'book appointment' or 'car status'.", session.FirstName()),
				EnableMic: true,
			}, nil
		}
		session.Stage = StageAskName
		return Reply{Text: "Sorry, please say your name again.", EnableMic: true}, nil

	case StageMainMenu:
		switch ClassifyIntent(input) {
		case IntentBook:
			session.Stage = StageGetVehicle
			return Reply{Text: "Please tell me your vehicle number.", EnableMic: true}, nil
		case IntentStatus:
			session.Stage = StageCheckStatus
			return Reply{Text: "Please say your vehicle number to check status.", EnableMic: true}, nil
		default:
			return Reply{Text: "Please say 'book appointment' or 'car status'.", EnableMic: true}, nil
		}

	case StageGetVehicle:
		normalized := vehicle.Normalize(input)
		if !vehicle.Plausible(normalized) {
			return Reply{
				Text:      "That doesn't sound right. Please say your vehicle number again.",
				EnableMic: true,
			}, nil
		}
		session.Vehicle = normalized
		session.Stage = StageConfirmVehicle
		return Reply{
			Text:      fmt.Sprintf("You said: %s. Is this correct? Say yes or no.", normalized),
			EnableMic: true,
		}, nil

	case StageConfirmVehicle:
		if isAffirmative(input) {
			session.Stage = StageGetDate
			return Reply{
				Text:      "Okay, confirmed! What date would you like? For example, tomorrow, 20 November, or next week.",
				EnableMic: true,
			}, nil
		}
		session.Stage = StageGetVehicle
		return Reply{Text: "Please say your vehicle number again.", EnableMic: true}, nil

	case StageGetDate:
		session.PrefDate = input
		session.Stage = StageConfirmDate
		return Reply{
			Text:      fmt.Sprintf("You said: %s. Is this correct? Say yes or no.", titleCase(input)),
			EnableMic: true,
		}, nil

	case StageConfirmDate:
		if isAffirmative(input) {
			session.Stage = StageGetTime
			return Reply{
				Text:      "Okay, confirmed! What time would you prefer? Like 10 AM, 2 PM, or 4 PM?",
				EnableMic: true,
			}, nil
		}
		session.Stage = StageGetDate
		return Reply{Text: "Please say the date again.", EnableMic: true}, nil

	case StageGetTime:
		session.PrefTime = input
		session.Stage = StageConfirmTime
		return Reply{
			Text:      fmt.Sprintf("You said: %s. Is this correct? Say yes or no.", titleCase(input)),
			EnableMic: true,
		}, nil

	case StageConfirmTime:
		if !isAffirmative(input) {
			session.Stage = StageGetTime
			return Reply{Text: "Please say the time again.", EnableMic: true}, nil
		}
		return s.book(ctx, session)

	case StageFinalAsk:
		if isNegative(input) {
			name := session.FirstName()
			session.Reset()
			return Reply{
				Text: fmt.Sprintf("Thank you %s! Have a wonderful day!", name),
				Done: true,
			}, nil
		}
		session.Stage = StageMainMenu
		return Reply{Text: "How else may I assist you?", EnableMic: true}, nil

	case StageCheckStatus:
		return s.checkStatus(ctx, session, input)

	default:
		session.Reset()
		session.Stage = StageAskName
		return Reply{Text: greeting, EnableMic: true}, nil
	}
}

func (s *Service) book(ctx context.Context, session *Session) (Reply, error) {
	from, ok := schedule.ParsePreferredDate(session.PrefDate, s.now())
	if !ok {
		from = s.now()
	}
	slot, err := s.finder.NextAvailable(ctx, from)
	if errors.Is(err, schedule.ErrNoAvailability) {
		session.Stage = StageFinalAsk
		return Reply{
			Text:      "Sorry, all our slots are taken for the next few weeks. Do you need any other help?",
			EnableMic: true,
			Outcome:   OutcomeNoAvailability,
		}, nil
	}
	if err != nil {
		return Reply{}, err
	}

	booked, err := s.store.Book(ctx, session.Name, session.Vehicle, slot.Date, slot.Time)
	if err != nil {
		return Reply{}, err
	}

	session.Stage = StageFinalAsk
	if !booked {
		return Reply{
			Text:      fmt.Sprintf("Sorry, %s already has an appointment. Do you need any other help?", session.Vehicle),
			EnableMic: true,
			Outcome:   OutcomeDuplicate,
		}, nil
	}
	return Reply{
		Text: fmt.Sprintf("Excellent! Your appointment is booked for %s at %s. We will take good care of your car %s. Thank you! Do you need any other help?",
			niceDate(slot.Date), slot.Time, session.Vehicle),
		EnableMic: true,
		Outcome:   OutcomeBooked,
	}, nil
}

func (s *Service) checkStatus(ctx context.Context, session *Session, input string) (Reply, error) {
	normalized := vehicle.Normalize(input)
	appt, err := s.store.Lookup(ctx, normalized)
	if err != nil {
		return Reply{}, err
	}
	session.Reset()
	if appt == nil {
		return Reply{Text: "No appointment found for this vehicle number.", Done: true}, nil
	}
	first := appt.Name
	if i := strings.IndexByte(first, ' '); i > 0 {
		first = first[:i]
	}
	return Reply{
		Text: fmt.Sprintf("Hello %s! Your car %s will be ready on %s at %s.",
			first, normalized, niceDate(appt.Date), appt.Time),
		Done: true,
	}, nil
}

// niceDate renders "2026-11-20" as "20 November 2026" for speech. Dates
// that fail to parse are spoken as stored.
func niceDate(date string) string {
	t, err := time.Parse(schedule.DateLayout, date)
	if err != nil {
		return date
	}
	return t.Format("2 January 2006")
}

func titleCase(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		runes := []rune(w)
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}
