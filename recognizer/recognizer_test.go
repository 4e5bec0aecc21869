package recognizer

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/srreparos7z-rgb/lewisia/adapters/capture"
	"github.com/srreparos7z-rgb/lewisia/adapters/stt"
	"github.com/srreparos7z-rgb/lewisia/domain/entities"
	"github.com/srreparos7z-rgb/lewisia/domain/repositories"
)

const (
	testSampleRate = 16000
	testFrameSize  = 1024
)

type stream struct {
	now time.Time
}

func newStream() *stream {
	return &stream{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (s *stream) frame(samples []int16) entities.AudioFrame {
	frame := entities.AudioFrame{
		Samples:    samples,
		SampleRate: testSampleRate,
		Channels:   1,
		Timestamp:  s.now,
	}
	s.now = frame.End()
	return frame
}

func (s *stream) speech(n int) []entities.AudioFrame {
	frames := make([]entities.AudioFrame, 0, n)
	for i := 0; i < n; i++ {
		samples := make([]int16, testFrameSize)
		for j := range samples {
			samples[j] = int16(10000 * math.Sin(2*math.Pi*1000*float64(j)/testSampleRate))
		}
		frames = append(frames, s.frame(samples))
	}
	return frames
}

func (s *stream) silence(n int) []entities.AudioFrame {
	frames := make([]entities.AudioFrame, 0, n)
	for i := 0; i < n; i++ {
		frames = append(frames, s.frame(make([]int16, testFrameSize)))
	}
	return frames
}

func newTestRecognizer(engine repositories.SpeechToText) *Recognizer {
	return New(Config{
		SilenceTimeout: 800 * time.Millisecond,
		MaxDuration:    3 * time.Second,
		SampleRate:     testSampleRate,
		Language:       "en-US",
		MinConfidence:  0.4,
	}, engine, nil, zap.NewNop())
}

func TestCaptureStopsOnSilence(t *testing.T) {
	engine := stt.NewScripted(repositories.Recognition{Text: "what time is it", Confidence: 0.9})
	recognizer := newTestRecognizer(engine)

	s := newStream()
	frames := append(s.speech(3), s.silence(15)...)
	source := capture.NewMemory(frames)

	transcript, err := recognizer.Capture(context.Background(), source)
	if err != nil {
		t.Fatalf("Capture failed: %v", err)
	}
	if transcript.Text != "what time is it" {
		t.Errorf("expected transcript text, got %q", transcript.Text)
	}
	if transcript.Confidence != 0.9 {
		t.Errorf("expected confidence 0.9, got %f", transcript.Confidence)
	}
	if transcript.Language != "en" {
		t.Errorf("expected language en, got %q", transcript.Language)
	}
	if engine.Calls() != 1 {
		t.Errorf("expected one transcription, got %d", engine.Calls())
	}
}

func TestCaptureAllSilenceReturnsEmptyTranscript(t *testing.T) {
	engine := stt.NewScripted(repositories.Recognition{Text: "should not appear", Confidence: 1})
	recognizer := newTestRecognizer(engine)

	s := newStream()
	source := capture.NewMemory(s.silence(20))

	transcript, err := recognizer.Capture(context.Background(), source)
	if err != nil {
		t.Fatalf("Capture failed: %v", err)
	}
	if !transcript.IsEmpty() {
		t.Errorf("expected empty transcript for silence, got %q", transcript.Text)
	}
	if engine.Calls() != 0 {
		t.Errorf("expected no transcription of silence, got %d calls", engine.Calls())
	}
}

func TestCaptureHitsDurationCap(t *testing.T) {
	engine := stt.NewScripted(repositories.Recognition{Text: "a very long rambling command", Confidence: 0.9})
	recognizer := New(Config{
		SilenceTimeout: 800 * time.Millisecond,
		MaxDuration:    500 * time.Millisecond,
		SampleRate:     testSampleRate,
		Language:       "en-US",
		MinConfidence:  0.4,
	}, engine, nil, zap.NewNop())

	// Continuous speech far past the cap; capture must stop at the cap,
	// not wait for silence.
	s := newStream()
	source := capture.NewMemory(s.speech(20))

	transcript, err := recognizer.Capture(context.Background(), source)
	if err != nil {
		t.Fatalf("Capture failed: %v", err)
	}
	if transcript.IsEmpty() {
		t.Fatal("expected a transcript from capped capture")
	}

	// 500ms at 16kHz with 1024-sample frames is 8 frames.
	if got := len(engine.LastSamples()); got != 8*testFrameSize {
		t.Errorf("expected %d samples captured, got %d", 8*testFrameSize, got)
	}
}

func TestCaptureDiscardsLowConfidence(t *testing.T) {
	engine := stt.NewScripted(repositories.Recognition{Text: "mumbled noise", Confidence: 0.1})
	recognizer := newTestRecognizer(engine)

	s := newStream()
	frames := append(s.speech(3), s.silence(15)...)
	source := capture.NewMemory(frames)

	transcript, err := recognizer.Capture(context.Background(), source)
	if err != nil {
		t.Fatalf("Capture failed: %v", err)
	}
	if !transcript.IsEmpty() {
		t.Errorf("expected low-confidence recognition discarded, got %q", transcript.Text)
	}
}

func TestCapturePropagatesStreamErrors(t *testing.T) {
	engine := stt.NewScripted()
	recognizer := newTestRecognizer(engine)

	source := capture.NewMemory(nil)
	source.Close()

	_, err := recognizer.Capture(context.Background(), source)
	if !errors.Is(err, repositories.ErrStreamClosed) {
		t.Fatalf("expected ErrStreamClosed, got %v", err)
	}
}
