// Package speech wraps the cloud speech-to-text and text-to-speech
// services behind small interfaces so the assistant and the HTTP layer
// can be tested with stubs.
package speech

import "context"

// SampleRate is the PCM sample rate used everywhere audio moves through
// the system, matching what the recorder captures and what the
// recognizer expects.
const SampleRate = 16000

// Transcriber converts spoken audio into text.
type Transcriber interface {
	// Transcribe recognizes LINEAR16 mono PCM at SampleRate and returns
	// the combined transcript. An empty transcript with a nil error means
	// nothing intelligible was heard.
	Transcribe(ctx context.Context, pcm []byte) (string, error)
}

// Synthesizer converts reply text into playable audio.
type Synthesizer interface {
	// Synthesize returns MP3 audio for the given text.
	Synthesize(ctx context.Context, text string) ([]byte, error)
}
