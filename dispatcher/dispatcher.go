// Package dispatcher routes recognized commands to skills. Matching follows
// the phrase similarity policy; commands no skill claims can fall through to
// a generative model, with answers cached so repeated questions are free.
package dispatcher

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/srreparos7z-rgb/lewisia/domain/entities"
	"github.com/srreparos7z-rgb/lewisia/domain/repositories"
	"github.com/srreparos7z-rgb/lewisia/matching"
)

// Handler is a skill that answers a family of spoken phrases.
type Handler interface {
	// Name identifies the skill in logs and the console.
	Name() string
	// Phrases lists the trigger phrases the skill answers.
	Phrases() []string
	// Handle produces the spoken response for a matched command.
	Handle(ctx context.Context, command string) (string, error)
}

// Config tunes dispatch.
type Config struct {
	// ConfidenceThreshold is the minimum phrase match score a skill needs
	// to claim a command.
	ConfidenceThreshold float64

	// Timeout bounds a single handler or fallback invocation.
	Timeout time.Duration
}

// Result is the outcome of dispatching one command.
type Result struct {
	Response string
	Outcome  entities.DispatchOutcome
	Skill    string
}

// contextWindow bounds how many past exchanges seed the fallback chat.
const contextWindow = 10

// Dispatcher matches commands against registered skills. A Dispatcher never
// fails: every transcript maps to a Result, and misbehaving handlers are
// reported as handler errors rather than crashing the pipeline.
type Dispatcher struct {
	config   Config
	handlers []Handler
	phrases  []string
	owners   []int
	fallback repositories.LargeLanguageModel
	cache    repositories.ResponseCache
	history  repositories.TurnRepository
	logger   *zap.Logger
}

// New creates an empty dispatcher. Fallback, cache and history are all
// optional; without a fallback model unmatched commands report
// OutcomeNoMatch. When history is present, the fallback chat is seeded with
// the recent spoken exchanges so follow-up questions carry context.
func New(config Config, fallback repositories.LargeLanguageModel, cache repositories.ResponseCache, history repositories.TurnRepository, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		config:   config,
		fallback: fallback,
		cache:    cache,
		history:  history,
		logger:   logger,
	}
}

// Register adds a skill. Registration order matters: when two skills claim
// a command with equal score, the earlier registration wins.
func (d *Dispatcher) Register(handler Handler) {
	idx := len(d.handlers)
	d.handlers = append(d.handlers, handler)
	for _, phrase := range handler.Phrases() {
		d.phrases = append(d.phrases, phrase)
		d.owners = append(d.owners, idx)
	}
}

// Skills lists the registered skill names, for the console.
func (d *Dispatcher) Skills() []string {
	names := make([]string, 0, len(d.handlers))
	for _, handler := range d.handlers {
		names = append(names, handler.Name())
	}
	return names
}

// Dispatch routes one transcript and returns what to say and how it went.
func (d *Dispatcher) Dispatch(ctx context.Context, transcript entities.Transcript) Result {
	if transcript.IsEmpty() {
		return Result{Outcome: entities.OutcomeNoSpeech}
	}

	ctx, cancel := context.WithTimeout(ctx, d.config.Timeout)
	defer cancel()

	idx, score := matching.Best(transcript.Text, d.phrases)
	if idx >= 0 && score >= d.config.ConfidenceThreshold {
		handler := d.handlers[d.owners[idx]]
		d.logger.Debug("command matched skill",
			zap.String("skill", handler.Name()),
			zap.String("command", transcript.Text),
			zap.Float64("score", score))

		response, err := d.invoke(ctx, handler, transcript.Text)
		if err != nil {
			d.logger.Error("skill failed",
				zap.String("skill", handler.Name()),
				zap.String("command", transcript.Text),
				zap.Error(err))
			return Result{
				Response: "Sorry, I could not complete that.",
				Outcome:  entities.OutcomeHandlerError,
				Skill:    handler.Name(),
			}
		}
		return Result{Response: response, Outcome: entities.OutcomeOK, Skill: handler.Name()}
	}

	return d.fallbackDispatch(ctx, transcript)
}

// invoke runs a handler, absorbing panics so one bad skill cannot take the
// supervisor loop down.
func (d *Dispatcher) invoke(ctx context.Context, handler Handler, command string) (response string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("skill %s panicked: %v", handler.Name(), r)
		}
	}()
	return handler.Handle(ctx, command)
}

func (d *Dispatcher) fallbackDispatch(ctx context.Context, transcript entities.Transcript) Result {
	if d.fallback == nil {
		return Result{Outcome: entities.OutcomeNoMatch}
	}

	key := matching.Normalize(transcript.Text)

	if d.cache != nil {
		if cached, ok, err := d.cache.Get(ctx, key); err != nil {
			d.logger.Warn("response cache lookup failed", zap.Error(err))
		} else if ok {
			d.logger.Debug("fallback served from cache", zap.String("command", transcript.Text))
			return Result{Response: cached, Outcome: entities.OutcomeOK, Skill: "fallback"}
		}
	}

	response, err := d.generate(ctx, transcript.Text)
	if err != nil {
		d.logger.Warn("fallback generation failed",
			zap.String("command", transcript.Text),
			zap.Error(err))
		return Result{Outcome: entities.OutcomeNoMatch}
	}

	if d.cache != nil {
		if err := d.cache.Put(ctx, key, response); err != nil {
			d.logger.Warn("response cache write failed", zap.Error(err))
		}
	}

	return Result{Response: response, Outcome: entities.OutcomeOK, Skill: "fallback"}
}

// generate asks the fallback model for an answer. With past exchanges on
// record the question goes through a chat session seeded with them, so "and
// tomorrow?" after a weather question means what the speaker thinks it means.
func (d *Dispatcher) generate(ctx context.Context, command string) (string, error) {
	seed := d.chatContext(ctx)
	if len(seed) == 0 {
		return d.fallback.Generate(ctx, command)
	}

	session, err := d.fallback.GenerateChat(ctx, seed)
	if err != nil {
		return "", err
	}
	reply, err := session.SendMessage(ctx, repositories.ChatMessage{
		Role:    repositories.UserRole,
		Content: command,
	})
	if err != nil {
		return "", err
	}
	return reply.Content, nil
}

// chatContext converts the recent turn history into chat messages, oldest
// first. Turns without a spoken command and response are skipped.
func (d *Dispatcher) chatContext(ctx context.Context) []repositories.ChatMessage {
	if d.history == nil {
		return nil
	}

	turns, err := d.history.Recent(ctx, contextWindow)
	if err != nil {
		d.logger.Warn("turn history unavailable for fallback context", zap.Error(err))
		return nil
	}

	messages := make([]repositories.ChatMessage, 0, 2*len(turns))
	for i := len(turns) - 1; i >= 0; i-- {
		turn := turns[i]
		if turn.Command.IsEmpty() || turn.Response == "" {
			continue
		}
		messages = append(messages,
			repositories.ChatMessage{Role: repositories.UserRole, Content: turn.Command.Text},
			repositories.ChatMessage{Role: repositories.AssistantRole, Content: turn.Response},
		)
	}
	return messages
}
