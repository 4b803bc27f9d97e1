// Package audio handles microphone capture and speaker playback for the
// terminal assistant.
package audio

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gordonklaus/portaudio"
)

const (
	// SampleRate matches what the speech recognizer expects.
	SampleRate = 16000
	// Channels is mono capture.
	Channels = 1
	// FramesPerBuffer is the portaudio read chunk size.
	FramesPerBuffer = 1024
)

// Recorder captures fixed-length utterances from the default microphone.
// Capture and playback never overlap; the assistant records only while
// it is silent.
type Recorder struct {
	mu     sync.Mutex
	buffer []float32
}

// NewRecorder initializes portaudio. Callers must Close when done.
func NewRecorder() (*Recorder, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("audio: failed to initialize portaudio: %w", err)
	}
	return &Recorder{buffer: make([]float32, FramesPerBuffer)}, nil
}

// Record captures from the microphone for the given duration and returns
// the mono float32 samples. Returns early if ctx is cancelled.
func (r *Recorder) Record(ctx context.Context, duration time.Duration) ([]float32, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stream, err := portaudio.OpenDefaultStream(Channels, 0, SampleRate, FramesPerBuffer, r.buffer)
	if err != nil {
		return nil, fmt.Errorf("audio: failed to open input stream: %w", err)
	}
	defer stream.Close()

	if err := stream.Start(); err != nil {
		return nil, fmt.Errorf("audio: failed to start capture: %w", err)
	}
	defer stream.Stop()

	want := int(float64(SampleRate) * duration.Seconds())
	samples := make([]float32, 0, want)
	for len(samples) < want {
		if err := ctx.Err(); err != nil {
			return samples, err
		}
		if err := stream.Read(); err != nil {
			return nil, fmt.Errorf("audio: failed to read from microphone: %w", err)
		}
		samples = append(samples, r.buffer...)
	}
	return samples[:want], nil
}

// Close releases portaudio.
func (r *Recorder) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	portaudio.Terminate()
}
