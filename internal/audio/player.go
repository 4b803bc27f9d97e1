package audio

import (
	"bytes"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/speaker"
)

// Player plays MP3 replies through the default output device.
type Player struct {
	mu          sync.Mutex
	initialized bool
}

func NewPlayer() *Player {
	return &Player{}
}

// Play decodes and plays an MP3 clip, blocking until playback finishes.
func (p *Player) Play(clip []byte) error {
	streamer, format, err := mp3.Decode(nopCloser{bytes.NewReader(clip)})
	if err != nil {
		return fmt.Errorf("audio: failed to decode mp3: %w", err)
	}
	defer streamer.Close()

	p.mu.Lock()
	if !p.initialized {
		if err := speaker.Init(format.SampleRate, format.SampleRate.N(time.Second/10)); err != nil {
			p.mu.Unlock()
			return fmt.Errorf("audio: failed to initialize speaker: %w", err)
		}
		p.initialized = true
	}
	p.mu.Unlock()

	done := make(chan struct{})
	speaker.Play(beep.Seq(streamer, beep.Callback(func() {
		close(done)
	})))
	<-done
	return nil
}

// mp3.Decode wants a ReadCloser; an in-memory clip has nothing to close.
type nopCloser struct {
	io.Reader
}

func (nopCloser) Close() error { return nil }
