package wakeword

import (
	"context"
	"math"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/srreparos7z-rgb/lewisia/adapters/stt"
	"github.com/srreparos7z-rgb/lewisia/domain/entities"
	"github.com/srreparos7z-rgb/lewisia/domain/repositories"
)

const (
	testSampleRate = 16000
	testFrameSize  = 1024
)

// stream builds frames with monotonically advancing timestamps, so the
// detector's cooldown logic can be exercised without sleeping.
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

// speech produces n frames of a 1kHz tone, which the activity detector
// classifies as voice.
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

func feed(ctx context.Context, d *Detector, frames []entities.AudioFrame) []entities.WakeEvent {
	var events []entities.WakeEvent
	for _, frame := range frames {
		if event, ok := d.Feed(ctx, frame); ok {
			events = append(events, event)
		}
	}
	return events
}

func newTestDetector(recognizer repositories.SpeechToText, cooldown time.Duration) *Detector {
	return New(Config{
		TriggerPhrase:       "lewis",
		ConfidenceThreshold: 0.6,
		Cooldown:            cooldown,
		SampleRate:          testSampleRate,
		FrameSize:           testFrameSize,
		Language:            "pt-BR",
	}, recognizer, zap.NewNop())
}

func TestDetectorIgnoresSilence(t *testing.T) {
	recognizer := stt.NewScripted()
	detector := newTestDetector(recognizer, 2*time.Second)

	s := newStream()
	events := feed(context.Background(), detector, s.silence(50))

	if len(events) != 0 {
		t.Fatalf("expected no events from silence, got %d", len(events))
	}
	if recognizer.Calls() != 0 {
		t.Errorf("expected no transcription of silence, got %d calls", recognizer.Calls())
	}
}

func TestDetectorIgnoresNonTriggerSpeech(t *testing.T) {
	recognizer := stt.NewScripted(repositories.Recognition{Text: "turn off the lights", Confidence: 1})
	detector := newTestDetector(recognizer, 2*time.Second)

	s := newStream()
	frames := append(s.speech(5), s.silence(4)...)
	events := feed(context.Background(), detector, frames)

	if len(events) != 0 {
		t.Fatalf("expected no events for unrelated speech, got %d", len(events))
	}
	if recognizer.Calls() != 1 {
		t.Errorf("expected the burst to be transcribed once, got %d calls", recognizer.Calls())
	}
}

func TestDetectorEmitsWakeEvent(t *testing.T) {
	recognizer := stt.NewScripted(repositories.Recognition{Text: "lewis", Confidence: 1})
	detector := newTestDetector(recognizer, 2*time.Second)

	s := newStream()
	frames := append(s.speech(5), s.silence(4)...)
	events := feed(context.Background(), detector, frames)

	if len(events) != 1 {
		t.Fatalf("expected one wake event, got %d", len(events))
	}
	if events[0].Phrase != "lewis" {
		t.Errorf("expected phrase %q, got %q", "lewis", events[0].Phrase)
	}
	if events[0].Confidence < 0.6 {
		t.Errorf("expected confidence >= 0.6, got %f", events[0].Confidence)
	}
	if events[0].Timestamp.IsZero() {
		t.Error("expected event timestamp from the frame stream")
	}
}

func TestDetectorCooldownSuppressesEcho(t *testing.T) {
	recognizer := stt.NewScripted(
		repositories.Recognition{Text: "lewis", Confidence: 1},
		repositories.Recognition{Text: "lewis", Confidence: 1},
	)
	detector := newTestDetector(recognizer, 2*time.Second)

	// Two bursts ~600ms apart, well inside the 2s cooldown.
	s := newStream()
	frames := append(s.speech(5), s.silence(4)...)
	frames = append(frames, s.speech(5)...)
	frames = append(frames, s.silence(4)...)

	events := feed(context.Background(), detector, frames)

	if len(events) != 1 {
		t.Fatalf("expected exactly one wake event with echo in cooldown, got %d", len(events))
	}
	if recognizer.Calls() != 2 {
		t.Errorf("expected both bursts transcribed, got %d calls", recognizer.Calls())
	}
}

func TestDetectorWakesAgainAfterCooldown(t *testing.T) {
	recognizer := stt.NewScripted(
		repositories.Recognition{Text: "lewis", Confidence: 1},
		repositories.Recognition{Text: "lewis", Confidence: 1},
	)
	detector := newTestDetector(recognizer, 500*time.Millisecond)

	// The 10 silence frames between bursts cover 640ms, past the cooldown.
	s := newStream()
	frames := append(s.speech(5), s.silence(10)...)
	frames = append(frames, s.speech(5)...)
	frames = append(frames, s.silence(4)...)

	events := feed(context.Background(), detector, frames)

	if len(events) != 2 {
		t.Fatalf("expected two wake events across cooldown windows, got %d", len(events))
	}
}

func TestDetectorConfidenceGate(t *testing.T) {
	recognizer := stt.NewScripted(repositories.Recognition{Text: "lewis", Confidence: 0.3})
	detector := newTestDetector(recognizer, 2*time.Second)

	s := newStream()
	frames := append(s.speech(5), s.silence(4)...)
	events := feed(context.Background(), detector, frames)

	if len(events) != 0 {
		t.Fatalf("expected low-confidence recognition suppressed, got %d events", len(events))
	}
}

func TestDetectorResetDropsBurst(t *testing.T) {
	recognizer := stt.NewScripted(repositories.Recognition{Text: "lewis", Confidence: 1})
	detector := newTestDetector(recognizer, 2*time.Second)

	s := newStream()
	feed(context.Background(), detector, s.speech(5))
	detector.Reset()
	events := feed(context.Background(), detector, s.silence(4))

	if len(events) != 0 {
		t.Fatalf("expected no events after reset, got %d", len(events))
	}
	if recognizer.Calls() != 0 {
		t.Errorf("expected dropped burst never transcribed, got %d calls", recognizer.Calls())
	}
}
