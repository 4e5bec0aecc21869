// Package supervisor owns the listen/dispatch cycle. It is the only place
// that opens the microphone, drives the wake detector and recognizer, and
// decides when the daemon gives up on a broken device.
package supervisor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/srreparos7z-rgb/lewisia/dispatcher"
	"github.com/srreparos7z-rgb/lewisia/domain/entities"
	"github.com/srreparos7z-rgb/lewisia/domain/repositories"
	"github.com/srreparos7z-rgb/lewisia/recognizer"
	"github.com/srreparos7z-rgb/lewisia/wakeword"
)

// SourceFactory produces a fresh audio source. Sources are single-use, so
// device recovery means discarding the broken source and opening a new one.
type SourceFactory func() repositories.AudioSource

// Observer receives pipeline events, for the operator console. Callbacks
// run on the supervisor goroutine and must not block.
type Observer interface {
	StateChanged(state entities.ServiceState, recoveries int)
	TurnCompleted(turn *entities.Turn)
}

// Config tunes the supervisor.
type Config struct {
	Device       repositories.DeviceConfig
	NoMatchReply string

	// BackoffBase and BackoffMax bound the delay between device recovery
	// attempts; MaxRecoveries caps consecutive failed attempts before the
	// supervisor gives up.
	BackoffBase   time.Duration
	BackoffMax    time.Duration
	MaxRecoveries int
}

// Supervisor runs the wake→capture→dispatch loop until shutdown or an
// unrecoverable device failure.
type Supervisor struct {
	config     Config
	newSource  SourceFactory
	detector   *wakeword.Detector
	recognizer *recognizer.Recognizer
	dispatcher *dispatcher.Dispatcher
	sink       repositories.ResponseSink
	chimer     repositories.Chimer
	history    repositories.TurnRepository
	logger     *zap.Logger

	mu         sync.Mutex
	state      entities.ServiceState
	source     repositories.AudioSource
	recoveries int
	observer   Observer

	shutdown     chan struct{}
	shutdownOnce sync.Once
}

// New wires the pipeline. Chimer and history may be nil.
func New(
	config Config,
	newSource SourceFactory,
	detector *wakeword.Detector,
	rec *recognizer.Recognizer,
	disp *dispatcher.Dispatcher,
	sink repositories.ResponseSink,
	chimer repositories.Chimer,
	history repositories.TurnRepository,
	logger *zap.Logger,
) *Supervisor {
	if config.NoMatchReply == "" {
		config.NoMatchReply = "Sorry, I don't know how to help with that."
	}
	return &Supervisor{
		config:     config,
		newSource:  newSource,
		detector:   detector,
		recognizer: rec,
		dispatcher: disp,
		sink:       sink,
		chimer:     chimer,
		history:    history,
		logger:     logger,
		state:      entities.StateIdle,
		shutdown:   make(chan struct{}),
	}
}

// SetObserver attaches an event observer. Call before Run.
func (s *Supervisor) SetObserver(observer Observer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observer = observer
}

// State returns the current position in the cycle.
func (s *Supervisor) State() entities.ServiceState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Recoveries reports how many consecutive device recoveries have happened
// since the stream last worked.
func (s *Supervisor) Recoveries() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recoveries
}

// RequestShutdown asks the run loop to stop. It closes the audio source
// immediately so a blocked NextFrame returns without waiting for audio.
// Safe to call from any goroutine, any number of times.
func (s *Supervisor) RequestShutdown() {
	s.shutdownOnce.Do(func() {
		close(s.shutdown)
	})
	s.mu.Lock()
	source := s.source
	s.mu.Unlock()
	if source != nil {
		source.Close()
	}
}

func (s *Supervisor) stopping(ctx context.Context) bool {
	select {
	case <-s.shutdown:
		return true
	default:
	}
	return ctx.Err() != nil
}

// Run executes the cycle until RequestShutdown, context cancellation, or
// an unrecoverable device failure. A clean shutdown returns nil.
func (s *Supervisor) Run(ctx context.Context) error {
	defer s.closeSource()

	if err := s.openSource(ctx); err != nil {
		if err := s.recover(ctx, err); err != nil {
			return err
		}
	}

	for {
		if s.stopping(ctx) {
			s.logger.Info("supervisor stopping")
			return nil
		}

		frame, err := s.currentSource().NextFrame(ctx)
		if err != nil {
			if s.stopping(ctx) || errors.Is(err, context.Canceled) {
				return nil
			}
			if err := s.recover(ctx, err); err != nil {
				return err
			}
			continue
		}

		event, ok := s.detector.Feed(ctx, frame)
		if !ok {
			continue
		}

		if err := s.handleTurn(ctx, event); err != nil {
			if s.stopping(ctx) {
				return nil
			}
			if err := s.recover(ctx, err); err != nil {
				return err
			}
		}
	}
}

// handleTurn runs one wake→capture→dispatch→respond exchange. Only stream
// errors escape; everything else resolves into a turn outcome.
func (s *Supervisor) handleTurn(ctx context.Context, event entities.WakeEvent) error {
	s.setState(entities.StateCapturingCommand)
	turn := entities.NewTurn(event)

	if s.chimer != nil {
		if err := s.chimer.Chime(ctx); err != nil {
			s.logger.Debug("chime failed", zap.Error(err))
		}
	}

	transcript, err := s.recognizer.Capture(ctx, s.currentSource())
	s.detector.Reset()
	if err != nil {
		return fmt.Errorf("command capture: %w", err)
	}

	s.setState(entities.StateDispatching)
	result := s.dispatcher.Dispatch(ctx, transcript)
	s.respond(ctx, result)

	turn.Complete(transcript, result.Response, result.Outcome)
	if s.history != nil {
		if err := s.history.Save(ctx, turn); err != nil {
			s.logger.Warn("failed to save turn", zap.Error(err))
		}
	}
	if observer := s.currentObserver(); observer != nil {
		observer.TurnCompleted(turn)
	}

	s.logger.Info("turn completed",
		zap.String("outcome", string(result.Outcome)),
		zap.String("skill", result.Skill),
		zap.Duration("elapsed", turn.Elapsed()))

	s.setState(entities.StateListeningForWake)
	return nil
}

func (s *Supervisor) respond(ctx context.Context, result dispatcher.Result) {
	switch {
	case result.Response != "":
		if err := s.sink.Speak(ctx, result.Response); err != nil {
			s.logger.Error("failed to speak response", zap.Error(err))
		}
	case result.Outcome == entities.OutcomeNoMatch:
		if err := s.sink.Speak(ctx, s.config.NoMatchReply); err != nil {
			s.logger.Error("failed to speak response", zap.Error(err))
		}
	case result.Outcome == entities.OutcomeNoSpeech:
		// Heard the wake word but no command followed. Go back to
		// listening without saying anything.
		s.sink.Log("wake without command")
	}
}

// recover replaces the audio source after a stream failure, backing off
// exponentially between attempts. It returns an error only when the retry
// budget is exhausted or shutdown begins.
func (s *Supervisor) recover(ctx context.Context, cause error) error {
	s.setState(entities.StateErrorRecovery)
	s.logger.Warn("audio stream failed", zap.Error(cause))
	s.closeSource()

	for {
		s.mu.Lock()
		s.recoveries++
		attempt := s.recoveries
		s.mu.Unlock()

		if attempt > s.config.MaxRecoveries {
			return fmt.Errorf("giving up after %d device recoveries: %w", attempt-1, cause)
		}

		delay := s.backoff(attempt)
		s.logger.Info("recovering audio device",
			zap.Int("attempt", attempt),
			zap.Duration("backoff", delay))

		select {
		case <-time.After(delay):
		case <-s.shutdown:
			return nil
		case <-ctx.Done():
			return nil
		}

		if err := s.openSource(ctx); err != nil {
			s.logger.Warn("device recovery failed", zap.Int("attempt", attempt), zap.Error(err))
			continue
		}
		return nil
	}
}

func (s *Supervisor) backoff(attempt int) time.Duration {
	delay := s.config.BackoffBase
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay >= s.config.BackoffMax {
			return s.config.BackoffMax
		}
	}
	if delay > s.config.BackoffMax {
		delay = s.config.BackoffMax
	}
	return delay
}

func (s *Supervisor) openSource(ctx context.Context) error {
	source := s.newSource()
	if err := source.Open(ctx, s.config.Device); err != nil {
		source.Close()
		return err
	}

	s.mu.Lock()
	s.source = source
	s.recoveries = 0
	s.mu.Unlock()

	s.detector.Reset()
	s.setState(entities.StateListeningForWake)
	s.logger.Info("listening for wake word")
	return nil
}

func (s *Supervisor) currentSource() repositories.AudioSource {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.source
}

func (s *Supervisor) closeSource() {
	s.mu.Lock()
	source := s.source
	s.mu.Unlock()
	if source != nil {
		if err := source.Close(); err != nil {
			s.logger.Debug("closing audio source", zap.Error(err))
		}
	}
}

func (s *Supervisor) currentObserver() Observer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.observer
}

func (s *Supervisor) setState(state entities.ServiceState) {
	s.mu.Lock()
	prev := s.state
	s.state = state
	recoveries := s.recoveries
	observer := s.observer
	s.mu.Unlock()
	if prev == state {
		return
	}
	s.logger.Debug("state transition",
		zap.Stringer("from", prev),
		zap.Stringer("to", state))
	if observer != nil {
		observer.StateChanged(state, recoveries)
	}
}
