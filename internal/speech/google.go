package speech

import (
	"context"
	"fmt"
	"strings"

	speech "cloud.google.com/go/speech/apiv1"
	speechpb "cloud.google.com/go/speech/apiv1/speechpb"
	texttospeech "cloud.google.com/go/texttospeech/apiv1"
	ttspb "cloud.google.com/go/texttospeech/apiv1/texttospeechpb"
	"google.golang.org/api/option"
)

const defaultLanguage = "en-IN"

// GoogleTranscriber recognizes speech with the Google Cloud
// Speech-to-Text API.
type GoogleTranscriber struct {
	client   *speech.Client
	language string
}

// NewGoogleTranscriber dials the Speech-to-Text API. credentialsFile may
// be empty, in which case application default credentials are used.
func NewGoogleTranscriber(ctx context.Context, credentialsFile, language string) (*GoogleTranscriber, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := speech.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("speech: failed to initialize speech client: %w", err)
	}
	if language == "" {
		language = defaultLanguage
	}
	return &GoogleTranscriber{client: client, language: language}, nil
}

func (t *GoogleTranscriber) Transcribe(ctx context.Context, pcm []byte) (string, error) {
	req := &speechpb.RecognizeRequest{
		Config: &speechpb.RecognitionConfig{
			Encoding:          speechpb.RecognitionConfig_LINEAR16,
			SampleRateHertz:   SampleRate,
			LanguageCode:      t.language,
			AudioChannelCount: 1,
		},
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{
				Content: pcm,
			},
		},
	}

	resp, err := t.client.Recognize(ctx, req)
	if err != nil {
		return "", fmt.Errorf("speech: recognition failed: %w", err)
	}

	var transcript strings.Builder
	for _, result := range resp.Results {
		for _, alt := range result.Alternatives {
			if transcript.Len() > 0 {
				transcript.WriteString(" ")
			}
			transcript.WriteString(alt.Transcript)
		}
	}
	return strings.TrimSpace(transcript.String()), nil
}

func (t *GoogleTranscriber) Close() error {
	return t.client.Close()
}

// GoogleSynthesizer renders replies as MP3 with the Google Cloud
// Text-to-Speech API.
type GoogleSynthesizer struct {
	client *texttospeech.Client
	voice  *ttspb.VoiceSelectionParams
}

func NewGoogleSynthesizer(ctx context.Context, credentialsFile, voiceName string) (*GoogleSynthesizer, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := texttospeech.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("speech: failed to initialize tts client: %w", err)
	}
	if voiceName == "" {
		voiceName = "en-IN-Wavenet-A"
	}
	return &GoogleSynthesizer{
		client: client,
		voice: &ttspb.VoiceSelectionParams{
			LanguageCode: languageOf(voiceName),
			Name:         voiceName,
			SsmlGender:   ttspb.SsmlVoiceGender_FEMALE,
		},
	}, nil
}

func (s *GoogleSynthesizer) Synthesize(ctx context.Context, text string) ([]byte, error) {
	req := &ttspb.SynthesizeSpeechRequest{
		Input: &ttspb.SynthesisInput{
			InputSource: &ttspb.SynthesisInput_Text{Text: text},
		},
		Voice: s.voice,
		AudioConfig: &ttspb.AudioConfig{
			AudioEncoding: ttspb.AudioEncoding_MP3,
			SpeakingRate:  1.0,
			Pitch:         0.0,
		},
	}
	resp, err := s.client.SynthesizeSpeech(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("speech: synthesis failed: %w", err)
	}
	return resp.AudioContent, nil
}

func (s *GoogleSynthesizer) Close() error {
	return s.client.Close()
}

// languageOf derives the BCP-47 language code from a voice name like
// "en-IN-Wavenet-A".
func languageOf(voiceName string) string {
	parts := strings.SplitN(voiceName, "-", 3)
	if len(parts) >= 2 {
		return parts[0] + "-" + parts[1]
	}
	return defaultLanguage
}
