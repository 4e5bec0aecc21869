// Package wakeword turns the continuous frame stream into discrete wake
// events. Detection is keyword spotting over the recognizer: speech bursts
// are segmented with the voice activity detector, transcribed, and the
// transcript scored against the trigger phrase.
package wakeword

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/srreparos7z-rgb/lewisia/audio"
	"github.com/srreparos7z-rgb/lewisia/domain/entities"
	"github.com/srreparos7z-rgb/lewisia/domain/repositories"
	"github.com/srreparos7z-rgb/lewisia/matching"
)

const (
	// defaultQuietFrames ends a speech burst after this many consecutive
	// inactive frames (~200ms at 16kHz with 1024-sample frames).
	defaultQuietFrames = 3

	// defaultMaxWindow bounds how much audio a single burst may
	// accumulate before it is evaluated anyway.
	defaultMaxWindow = 3 * time.Second

	// preRollFrames of audio kept before speech onset so the first
	// syllable of the trigger is not lost.
	preRollFrames = 4
)

// Config tunes the detector.
type Config struct {
	TriggerPhrase       string
	ConfidenceThreshold float64
	Cooldown            time.Duration
	SampleRate          int
	FrameSize           int
	Language            string

	// QuietFrames and MaxWindow fall back to sensible defaults when zero.
	QuietFrames int
	MaxWindow   time.Duration
}

// Detector consumes audio frames and emits a WakeEvent when the trigger
// phrase is heard. It keeps only a rolling window of recent audio; all
// timing decisions use frame timestamps, never the wall clock.
type Detector struct {
	config Config
	stt    repositories.SpeechToText
	vad    *audio.VAD
	logger *zap.Logger

	ring     *audio.Ring
	speech   []int16
	inSpeech bool
	quietRun int
	lastWake time.Time
}

// New creates a detector using the given recognizer for keyword spotting.
func New(config Config, stt repositories.SpeechToText, logger *zap.Logger) *Detector {
	if config.QuietFrames <= 0 {
		config.QuietFrames = defaultQuietFrames
	}
	if config.MaxWindow <= 0 {
		config.MaxWindow = defaultMaxWindow
	}
	if config.FrameSize <= 0 {
		config.FrameSize = 1024
	}
	return &Detector{
		config: config,
		stt:    stt,
		vad:    audio.NewVAD(config.SampleRate),
		logger: logger,
		ring:   audio.NewRing(config.FrameSize * preRollFrames),
	}
}

// SetEnergyThreshold adjusts the speech gate, for quiet or noisy rooms.
func (d *Detector) SetEnergyThreshold(threshold float64) {
	d.vad.SetEnergyThreshold(threshold)
}

// Feed processes one frame and reports whether the trigger phrase was
// recognized. Recognition failures are absorbed: they are logged and the
// detector keeps listening.
func (d *Detector) Feed(ctx context.Context, frame entities.AudioFrame) (entities.WakeEvent, bool) {
	active := d.vad.Active(frame.Samples)

	if !d.inSpeech {
		d.ring.Add(frame.Samples)
		if !active {
			return entities.WakeEvent{}, false
		}
		// Speech onset: start the burst with the pre-roll audio.
		d.inSpeech = true
		d.quietRun = 0
		d.speech = append([]int16(nil), d.ring.Read()...)
		return entities.WakeEvent{}, false
	}

	d.speech = append(d.speech, frame.Samples...)

	if active {
		d.quietRun = 0
	} else {
		d.quietRun++
	}

	burstDur := time.Duration(len(d.speech)) * time.Second / time.Duration(d.config.SampleRate)
	if d.quietRun < d.config.QuietFrames && burstDur < d.config.MaxWindow {
		return entities.WakeEvent{}, false
	}

	samples := d.speech
	d.resetBurst()

	return d.evaluate(ctx, samples, frame.End())
}

// Reset drops any in-flight burst. The supervisor calls it after a command
// capture so command speech cannot re-trigger the detector.
func (d *Detector) Reset() {
	d.resetBurst()
}

func (d *Detector) resetBurst() {
	d.inSpeech = false
	d.quietRun = 0
	d.speech = nil
	d.ring.Clear()
}

func (d *Detector) evaluate(ctx context.Context, samples []int16, at time.Time) (entities.WakeEvent, bool) {
	recognition, err := d.stt.Transcribe(ctx, samples, repositories.AudioConfig{
		SampleRate: d.config.SampleRate,
		Encoding:   "pcm",
		Language:   d.config.Language,
	})
	if err != nil {
		d.logger.Warn("wake transcription failed", zap.Error(err))
		return entities.WakeEvent{}, false
	}
	if recognition.Text == "" {
		return entities.WakeEvent{}, false
	}

	similarity := matching.Similarity(recognition.Text, d.config.TriggerPhrase)
	confidence := similarity
	if recognition.Confidence > 0 {
		confidence = similarity * recognition.Confidence
	}

	if confidence < d.config.ConfidenceThreshold {
		return entities.WakeEvent{}, false
	}

	// Within the cooldown window a second hit is assumed to be the echo
	// of the confirmation tone or the device hearing itself.
	if !d.lastWake.IsZero() && at.Sub(d.lastWake) < d.config.Cooldown {
		d.logger.Debug("wake suppressed by cooldown",
			zap.String("text", recognition.Text),
			zap.Time("lastWake", d.lastWake))
		return entities.WakeEvent{}, false
	}

	d.lastWake = at
	d.logger.Info("wake word detected",
		zap.String("text", recognition.Text),
		zap.Float64("confidence", confidence))

	return entities.WakeEvent{
		Phrase:     recognition.Text,
		Confidence: confidence,
		Timestamp:  at,
	}, true
}
