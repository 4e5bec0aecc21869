package stt

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/ggerganov/whisper.cpp/bindings/go/pkg/whisper"
	"github.com/go-audio/audio"

	"github.com/srreparos7z-rgb/lewisia/domain/repositories"
)

// The Go bindings do not expose token probabilities, so accepted segments
// carry a fixed confidence.
const whisperConfidence = 0.8

// WhisperSpeechToText implements SpeechToText with a local whisper.cpp
// model. Everything runs on-device; no network involved.
type WhisperSpeechToText struct {
	model whisper.Model
}

// NewWhisper loads the model at the given path.
func NewWhisper(modelPath string) (*WhisperSpeechToText, error) {
	if modelPath == "" {
		return nil, fmt.Errorf("whisper model path is required")
	}
	model, err := whisper.New(modelPath)
	if err != nil {
		return nil, fmt.Errorf("loading whisper model: %w", err)
	}
	return &WhisperSpeechToText{model: model}, nil
}

// Transcribe implements repositories.SpeechToText.
func (w *WhisperSpeechToText) Transcribe(ctx context.Context, samples []int16, config repositories.AudioConfig) (repositories.Recognition, error) {
	if len(samples) == 0 {
		return repositories.Recognition{}, nil
	}

	wctx, err := w.model.NewContext()
	if err != nil {
		return repositories.Recognition{}, fmt.Errorf("whisper context: %w", err)
	}

	if lang := baseLanguage(config.Language); lang != "" {
		_ = wctx.SetLanguage(lang)
	}

	data := intBuffer(samples, config.SampleRate).AsFloat32Buffer().Data

	if err := wctx.Process(data, nil); err != nil {
		return repositories.Recognition{}, fmt.Errorf("whisper process: %w", err)
	}

	text, err := collectSegments(wctx)
	if err != nil {
		return repositories.Recognition{}, err
	}
	if text == "" {
		return repositories.Recognition{}, nil
	}

	return repositories.Recognition{Text: text, Confidence: whisperConfidence}, nil
}

// Close releases the model.
func (w *WhisperSpeechToText) Close() error {
	return w.model.Close()
}

func collectSegments(wctx whisper.Context) (string, error) {
	seen := make(map[string]bool)
	var parts []string

	for {
		segment, err := wctx.NextSegment()
		if err == io.EOF {
			return strings.TrimSpace(strings.Join(parts, " ")), nil
		} else if err != nil {
			return "", fmt.Errorf("whisper segment: %w", err)
		}

		text := strings.TrimSpace(segment.Text)
		if text == "" {
			continue
		}

		// Whisper marks non-speech events with brackets or parens;
		// those are noise, not commands.
		if text[0] == '(' || text[0] == '[' ||
			text[len(text)-1] == ')' || text[len(text)-1] == ']' {
			continue
		}

		if seen[text] {
			continue
		}
		seen[text] = true

		parts = append(parts, text)
	}
}

func intBuffer(samples []int16, sampleRate int) *audio.IntBuffer {
	data := make([]int, len(samples))
	for i, s := range samples {
		data[i] = int(s)
	}
	return &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: 1,
			SampleRate:  sampleRate,
		},
		Data:           data,
		SourceBitDepth: 16,
	}
}

// baseLanguage maps a BCP-47 tag like "pt-BR" to whisper's two-letter code.
func baseLanguage(tag string) string {
	if idx := strings.IndexByte(tag, '-'); idx > 0 {
		return strings.ToLower(tag[:idx])
	}
	return strings.ToLower(tag)
}
