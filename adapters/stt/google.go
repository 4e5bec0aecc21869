// Package stt provides SpeechToText implementations: Google Cloud Speech,
// local whisper.cpp, the OpenAI Whisper API, and a scripted recognizer for
// tests.
package stt

import (
	"context"
	"encoding/binary"
	"fmt"

	speech "cloud.google.com/go/speech/apiv1"
	"cloud.google.com/go/speech/apiv1/speechpb"

	"github.com/srreparos7z-rgb/lewisia/domain/repositories"
)

// GoogleSpeechToText implements SpeechToText for Google Cloud.
type GoogleSpeechToText struct {
	client *speech.Client
}

// NewGoogle creates a Google Cloud Speech recognizer. Credentials come from
// the usual GOOGLE_APPLICATION_CREDENTIALS environment.
func NewGoogle(ctx context.Context) (*GoogleSpeechToText, error) {
	client, err := speech.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create speech client: %w", err)
	}
	return &GoogleSpeechToText{client: client}, nil
}

// Transcribe implements repositories.SpeechToText.
func (g *GoogleSpeechToText) Transcribe(ctx context.Context, samples []int16, config repositories.AudioConfig) (repositories.Recognition, error) {
	if len(samples) == 0 {
		return repositories.Recognition{}, nil
	}

	resp, err := g.client.Recognize(ctx, &speechpb.RecognizeRequest{
		Config: &speechpb.RecognitionConfig{
			Encoding:        speechpb.RecognitionConfig_LINEAR16,
			SampleRateHertz: int32(config.SampleRate),
			LanguageCode:    config.Language,
		},
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{
				Content: pcmBytes(samples),
			},
		},
	})
	if err != nil {
		return repositories.Recognition{}, fmt.Errorf("recognize: %w", err)
	}

	// Take the top alternative of the first result; commands are single
	// short utterances.
	for _, result := range resp.Results {
		if len(result.Alternatives) == 0 {
			continue
		}
		alt := result.Alternatives[0]
		return repositories.Recognition{
			Text:       alt.Transcript,
			Confidence: float64(alt.Confidence),
		}, nil
	}

	return repositories.Recognition{}, nil
}

// Close releases the underlying client.
func (g *GoogleSpeechToText) Close() error {
	return g.client.Close()
}

// pcmBytes encodes samples as little-endian 16-bit PCM.
func pcmBytes(samples []int16) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(s))
	}
	return out
}
