// Package assistant implements the hands-free wake-word loop used by
// cmd/assistant. It listens in short bursts for the wake word, then
// walks one book / check / cancel interaction before going passive
// again.
package assistant

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/deewanshi/carcenter/internal/appointments"
	"github.com/deewanshi/carcenter/internal/dialogue"
	"github.com/deewanshi/carcenter/internal/vehicle"
)

// Listener captures one utterance from the microphone and returns its
// transcript. An empty transcript with a nil error means silence.
type Listener interface {
	Listen(ctx context.Context, duration time.Duration) (string, error)
}

// Speaker voices one line. Speaking blocks so the microphone never
// competes with playback.
type Speaker interface {
	Say(ctx context.Context, text string) error
}

// Options tunes the loop.
type Options struct {
	WakeWord string
	// ListenShort bounds the passive wake-word listens, ListenLong the
	// full answers.
	ListenShort time.Duration
	ListenLong  time.Duration
}

// Loop drives the wake-word conversation against the appointment store.
type Loop struct {
	listener Listener
	speaker  Speaker
	store    appointments.Store
	log      *slog.Logger
	opts     Options
	now      func() time.Time
}

func New(listener Listener, speaker Speaker, store appointments.Store, log *slog.Logger, opts Options) *Loop {
	if listener == nil {
		panic("assistant: listener cannot be nil")
	}
	if speaker == nil {
		panic("assistant: speaker cannot be nil")
	}
	if store == nil {
		panic("assistant: store cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}
	if opts.WakeWord == "" {
		opts.WakeWord = "hello"
	}
	if opts.ListenShort <= 0 {
		opts.ListenShort = 2 * time.Second
	}
	if opts.ListenLong <= 0 {
		opts.ListenLong = 5 * time.Second
	}
	return &Loop{
		listener: listener,
		speaker:  speaker,
		store:    store,
		log:      log,
		opts:     opts,
		now:      time.Now,
	}
}

// Run listens until the caller says quit or ctx is cancelled.
func (l *Loop) Run(ctx context.Context) error {
	l.say(ctx, fmt.Sprintf("%s Welcome to Deewanshi Car Center. Say '%s' to start.", l.timeGreeting(), l.opts.WakeWord))

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		heard, err := l.hear(ctx, l.opts.ListenShort)
		if err != nil {
			return err
		}
		if heard == "" {
			continue
		}
		if dialogue.ClassifyIntent(heard) == dialogue.IntentQuit {
			l.say(ctx, "Goodbye! Have a nice day.")
			return nil
		}
		if !strings.Contains(heard, l.opts.WakeWord) {
			continue
		}

		if done, err := l.interact(ctx); err != nil {
			return err
		} else if done {
			l.say(ctx, "Goodbye! Have a nice day.")
			return nil
		}
	}
}

// interact runs one cycle after the wake word. Returns true when the
// caller asked to quit.
func (l *Loop) interact(ctx context.Context) (bool, error) {
	l.say(ctx, "Hello! How can I help you? You can say book, check or cancel an appointment.")

	heard, err := l.hear(ctx, l.opts.ListenShort)
	if err != nil {
		return false, err
	}
	if heard == "" {
		heard, err = l.hear(ctx, l.opts.ListenLong)
		if err != nil {
			return false, err
		}
	}
	if heard == "" {
		l.say(ctx, "I didn't catch that. Please say book, check or cancel.")
		return false, nil
	}

	switch dialogue.ClassifyIntent(heard) {
	case dialogue.IntentBook:
		return false, l.book(ctx)
	case dialogue.IntentStatus:
		return false, l.check(ctx)
	case dialogue.IntentCancel:
		return false, l.cancel(ctx)
	case dialogue.IntentQuit:
		return true, nil
	default:
		l.say(ctx, "Sorry, I did not understand. Please say book, check or cancel.")
		return false, nil
	}
}

func (l *Loop) book(ctx context.Context) error {
	plate, err := l.askVehicle(ctx)
	if err != nil {
		return err
	}

	existing, err := l.store.Lookup(ctx, plate)
	if err != nil {
		return err
	}
	if existing != nil {
		l.say(ctx, fmt.Sprintf("Vehicle %s already has an appointment on %s.", plate, when(existing)))
		return nil
	}

	slot, err := l.askWhen(ctx)
	if err != nil {
		return err
	}
	booked, err := l.store.Book(ctx, "", plate, "", slot)
	if err != nil {
		return err
	}
	if !booked {
		l.say(ctx, fmt.Sprintf("Vehicle %s already has an appointment.", plate))
		return nil
	}
	l.say(ctx, fmt.Sprintf("Done. Your appointment for %s is booked for %s.", plate, slot))
	return nil
}

func (l *Loop) check(ctx context.Context) error {
	plate, err := l.askVehicle(ctx)
	if err != nil {
		return err
	}
	appt, err := l.store.Lookup(ctx, plate)
	if err != nil {
		return err
	}
	if appt == nil {
		l.say(ctx, "No appointment found for that vehicle.")
		return nil
	}
	l.say(ctx, fmt.Sprintf("Your appointment for %s is on %s.", plate, when(appt)))
	return nil
}

func (l *Loop) cancel(ctx context.Context) error {
	plate, err := l.askVehicle(ctx)
	if err != nil {
		return err
	}
	removed, err := l.store.Cancel(ctx, plate)
	if err != nil {
		return err
	}
	if !removed {
		l.say(ctx, "No appointment found to cancel.")
		return nil
	}
	l.say(ctx, fmt.Sprintf("Appointment for %s has been cancelled.", plate))
	return nil
}

// askVehicle loops until the caller confirms a plausible plate.
func (l *Loop) askVehicle(ctx context.Context) (string, error) {
	l.say(ctx, "Please tell me your vehicle number.")
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		heard, err := l.hear(ctx, l.opts.ListenLong)
		if err != nil {
			return "", err
		}
		if heard == "" {
			l.say(ctx, "I did not hear the vehicle number. Please try again.")
			continue
		}
		plate := vehicle.Normalize(heard)
		if !vehicle.Plausible(plate) {
			l.say(ctx, "That doesn't sound right. Please say your vehicle number again.")
			continue
		}
		l.say(ctx, fmt.Sprintf("Did you say %s? Please say yes or no.", plate))
		conf, err := l.hear(ctx, l.opts.ListenShort)
		if err != nil {
			return "", err
		}
		if dialogue.ClassifyIntent(conf) == dialogue.IntentYes {
			return plate, nil
		}
		l.say(ctx, "Okay, please say the vehicle number again.")
	}
}

// askWhen loops until the caller confirms a date and time, returned as
// the raw confirmed phrase.
func (l *Loop) askWhen(ctx context.Context) (string, error) {
	l.say(ctx, "When can you bring your car? Please say date and time.")
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		heard, err := l.hear(ctx, l.opts.ListenLong)
		if err != nil {
			return "", err
		}
		if heard == "" {
			l.say(ctx, "I didn't hear that. Please say the date and time again.")
			continue
		}
		l.say(ctx, fmt.Sprintf("Did you say %s? Please say yes or no.", heard))
		conf, err := l.hear(ctx, l.opts.ListenShort)
		if err != nil {
			return "", err
		}
		if dialogue.ClassifyIntent(conf) == dialogue.IntentYes {
			return heard, nil
		}
		l.say(ctx, "Okay, please say the date and time again.")
	}
}

// hear wraps the listener, collapsing recognition errors to silence so
// one bad network round trip re-asks instead of killing the loop.
func (l *Loop) hear(ctx context.Context, d time.Duration) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	heard, err := l.listener.Listen(ctx, d)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		l.log.Warn("recognition failed", "error", err)
		return "", nil
	}
	return strings.ToLower(strings.TrimSpace(heard)), nil
}

func (l *Loop) say(ctx context.Context, text string) {
	fmt.Println("Bot:", text)
	if err := l.speaker.Say(ctx, text); err != nil {
		l.log.Warn("speech synthesis failed", "error", err)
	}
}

func (l *Loop) timeGreeting() string {
	switch hour := l.now().Hour(); {
	case hour < 12:
		return "Good morning!"
	case hour < 18:
		return "Good afternoon!"
	default:
		return "Good evening!"
	}
}

func when(appt *appointments.Appointment) string {
	return strings.TrimSpace(appt.Date + " " + appt.Time)
}
