// Package recognizer captures a spoken command after a wake event and
// turns it into a transcript. Capture stops on a silence timeout or a hard
// duration cap, both measured on frame timestamps so replayed audio behaves
// exactly like a live microphone.
package recognizer

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/pemistahl/lingua-go"
	"go.uber.org/zap"

	"github.com/srreparos7z-rgb/lewisia/audio"
	"github.com/srreparos7z-rgb/lewisia/domain/entities"
	"github.com/srreparos7z-rgb/lewisia/domain/repositories"
)

// Config tunes command capture.
type Config struct {
	// SilenceTimeout ends capture once this much time passes without
	// voice activity.
	SilenceTimeout time.Duration

	// MaxDuration is the hard cap on a single command, silence or not.
	MaxDuration time.Duration

	SampleRate int
	Language   string

	// MinConfidence discards recognitions the engine itself is unsure
	// about, so garbled audio does not reach the dispatcher.
	MinConfidence float64
}

// Recognizer captures and transcribes one command at a time.
type Recognizer struct {
	config   Config
	stt      repositories.SpeechToText
	vad      *audio.VAD
	language lingua.LanguageDetector
	dumper   *audio.Dumper
	logger   *zap.Logger
}

// New creates a recognizer. The dumper is optional; when nil no debug
// audio is written.
func New(config Config, stt repositories.SpeechToText, dumper *audio.Dumper, logger *zap.Logger) *Recognizer {
	detector := lingua.NewLanguageDetectorBuilder().
		FromLanguages(lingua.English, lingua.Portuguese, lingua.Spanish).
		Build()

	return &Recognizer{
		config:   config,
		stt:      stt,
		vad:      audio.NewVAD(config.SampleRate),
		language: detector,
		dumper:   dumper,
		logger:   logger,
	}
}

// SetEnergyThreshold adjusts the silence gate used during capture.
func (r *Recognizer) SetEnergyThreshold(threshold float64) {
	r.vad.SetEnergyThreshold(threshold)
}

// Capture reads frames from the source until the speaker stops or the
// duration cap hits, then transcribes the window. An all-silence window
// returns an empty transcript and no error. Stream errors propagate to the
// caller, which decides whether to recover the device.
func (r *Recognizer) Capture(ctx context.Context, source repositories.AudioSource) (entities.Transcript, error) {
	var (
		samples     []int16
		start       time.Time
		lastVoice   time.Time
		heardSpeech bool
	)

	for {
		frame, err := source.NextFrame(ctx)
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
				break
			}
			return entities.Transcript{}, err
		}

		if start.IsZero() {
			start = frame.Timestamp
			lastVoice = frame.Timestamp
		}

		samples = append(samples, frame.Samples...)

		if r.vad.Active(frame.Samples) {
			heardSpeech = true
			lastVoice = frame.End()
		}

		if frame.End().Sub(lastVoice) >= r.config.SilenceTimeout {
			break
		}
		if frame.End().Sub(start) >= r.config.MaxDuration {
			r.logger.Debug("command capture hit duration cap",
				zap.Duration("maxDuration", r.config.MaxDuration))
			break
		}
	}

	if !heardSpeech {
		return entities.Transcript{}, nil
	}

	if r.dumper != nil {
		if name, err := r.dumper.Dump(samples); err != nil {
			r.logger.Warn("failed to dump command audio", zap.Error(err))
		} else {
			r.logger.Debug("dumped command audio", zap.String("file", name))
		}
	}

	recognition, err := r.stt.Transcribe(ctx, samples, repositories.AudioConfig{
		SampleRate: r.config.SampleRate,
		Encoding:   "pcm",
		Language:   r.config.Language,
	})
	if err != nil {
		return entities.Transcript{}, err
	}

	if recognition.Text == "" {
		return entities.Transcript{}, nil
	}
	if recognition.Confidence > 0 && recognition.Confidence < r.config.MinConfidence {
		r.logger.Info("discarding low-confidence recognition",
			zap.String("text", recognition.Text),
			zap.Float64("confidence", recognition.Confidence))
		return entities.Transcript{}, nil
	}

	return entities.Transcript{
		Text:       recognition.Text,
		Confidence: recognition.Confidence,
		Language:   r.detectLanguage(recognition.Text),
	}, nil
}

// detectLanguage tags the transcript with an ISO 639-1 code, falling back
// to the configured recognition language.
func (r *Recognizer) detectLanguage(text string) string {
	if detected, ok := r.language.DetectLanguageOf(text); ok {
		return strings.ToLower(detected.IsoCode639_1().String())
	}
	if r.config.Language == "" {
		return ""
	}
	return strings.ToLower(strings.SplitN(r.config.Language, "-", 2)[0])
}
