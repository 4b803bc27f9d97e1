// Command assistant runs the hands-free wake-word assistant against the
// local microphone and speakers, storing appointments in a CSV file.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/deewanshi/carcenter/internal/appointments"
	"github.com/deewanshi/carcenter/internal/assistant"
	"github.com/deewanshi/carcenter/internal/audio"
	appconfig "github.com/deewanshi/carcenter/internal/config"
	"github.com/deewanshi/carcenter/internal/speech"
	"github.com/deewanshi/carcenter/pkg/logging"
)

// micListener glues the portaudio recorder to the cloud transcriber.
type micListener struct {
	recorder    *audio.Recorder
	transcriber speech.Transcriber
}

func (m *micListener) Listen(ctx context.Context, duration time.Duration) (string, error) {
	samples, err := m.recorder.Record(ctx, duration)
	if err != nil {
		return "", err
	}
	return m.transcriber.Transcribe(ctx, speech.PCMFromFloat32(samples))
}

// ttsSpeaker voices replies through the default output device.
type ttsSpeaker struct {
	synth  speech.Synthesizer
	player *audio.Player
}

func (s *ttsSpeaker) Say(ctx context.Context, text string) error {
	clip, err := s.synth.Synthesize(ctx, text)
	if err != nil {
		return err
	}
	return s.player.Play(clip)
}

func main() {
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.NewConsole(cfg.LogLevel, os.Stderr)

	store, err := appointments.NewFileStore(cfg.AppointmentsFile)
	if err != nil {
		logger.Error("failed to open appointments file", "path", cfg.AppointmentsFile, "error", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	transcriber, err := speech.NewGoogleTranscriber(ctx, cfg.GoogleCredentialsFile, cfg.SpeechLanguage)
	if err != nil {
		logger.Error("failed to set up speech recognition", "error", err)
		os.Exit(1)
	}
	defer transcriber.Close()

	synth, err := speech.NewGoogleSynthesizer(ctx, cfg.GoogleCredentialsFile, cfg.TTSVoice)
	if err != nil {
		logger.Error("failed to set up speech synthesis", "error", err)
		os.Exit(1)
	}
	defer synth.Close()

	recorder, err := audio.NewRecorder()
	if err != nil {
		logger.Error("failed to open microphone", "error", err)
		os.Exit(1)
	}
	defer recorder.Close()

	loop := assistant.New(
		&micListener{recorder: recorder, transcriber: transcriber},
		&ttsSpeaker{synth: synth, player: audio.NewPlayer()},
		store,
		logger.Logger,
		assistant.Options{
			WakeWord:    cfg.WakeWord,
			ListenShort: cfg.ListenShort,
			ListenLong:  cfg.ListenLong,
		},
	)

	if err := loop.Run(ctx); err != nil && ctx.Err() == nil {
		logger.Error("assistant stopped", "error", err)
		os.Exit(1)
	}
	logger.Info("assistant stopped")
}
