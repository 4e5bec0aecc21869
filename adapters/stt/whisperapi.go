package stt

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/srreparos7z-rgb/lewisia/domain/repositories"
)

// The transcription endpoint does not return confidence scores; accepted
// text carries a fixed value.
const whisperAPIConfidence = 0.85

// WhisperAPI implements SpeechToText using OpenAI's hosted Whisper.
type WhisperAPI struct {
	client openai.Client
}

// NewWhisperAPI creates a hosted Whisper recognizer.
func NewWhisperAPI(apiKey string) (*WhisperAPI, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai api key is required")
	}
	return &WhisperAPI{
		client: openai.NewClient(option.WithAPIKey(apiKey)),
	}, nil
}

// Transcribe implements repositories.SpeechToText.
func (w *WhisperAPI) Transcribe(ctx context.Context, samples []int16, config repositories.AudioConfig) (repositories.Recognition, error) {
	if len(samples) == 0 {
		return repositories.Recognition{}, nil
	}

	wavData := wavBytes(samples, config.SampleRate)

	params := openai.AudioTranscriptionNewParams{
		File:  openai.File(bytes.NewReader(wavData), "segment.wav", "audio/wav"),
		Model: openai.AudioModelWhisper1,
	}
	if lang := baseLanguage(config.Language); lang != "" {
		params.Language = openai.String(lang)
	}

	transcription, err := w.client.Audio.Transcriptions.New(ctx, params)
	if err != nil {
		return repositories.Recognition{}, fmt.Errorf("whisper api: %w", err)
	}
	if transcription.Text == "" {
		return repositories.Recognition{}, nil
	}

	return repositories.Recognition{
		Text:       transcription.Text,
		Confidence: whisperAPIConfidence,
	}, nil
}

// wavBytes wraps 16-bit mono PCM in a minimal RIFF/WAVE container.
func wavBytes(samples []int16, sampleRate int) []byte {
	dataLen := len(samples) * 2

	var buf bytes.Buffer
	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+dataLen))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // PCM
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // mono
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate))
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate*2)) // byte rate
	binary.Write(&buf, binary.LittleEndian, uint16(2))            // block align
	binary.Write(&buf, binary.LittleEndian, uint16(16))           // bits per sample
	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(dataLen))
	for _, s := range samples {
		binary.Write(&buf, binary.LittleEndian, s)
	}
	return buf.Bytes()
}
