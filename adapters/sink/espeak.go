// Package sink provides ResponseSink implementations. The daemon's answers
// go through a local TTS engine; tests use the in-memory recorder.
package sink

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"go.uber.org/zap"
)

// Espeak speaks responses through the espeak-ng binary, the lightest TTS
// option on small ARM boxes.
type Espeak struct {
	logger *zap.Logger
	voice  string
	binary string
}

// NewEspeak creates a sink speaking with the voice for the given BCP-47
// language tag ("pt-BR" becomes espeak's "pt-br").
func NewEspeak(language string, logger *zap.Logger) *Espeak {
	voice := strings.ToLower(language)
	if voice == "" {
		voice = "en"
	}
	return &Espeak{
		logger: logger,
		voice:  voice,
		binary: "espeak-ng",
	}
}

// Speak implements repositories.ResponseSink.
func (e *Espeak) Speak(ctx context.Context, text string) error {
	if text == "" {
		return nil
	}

	cmd := exec.CommandContext(ctx, e.binary, "-v", e.voice, text)
	if err := cmd.Run(); err != nil {
		// The response is still useful to an operator reading logs when
		// the TTS binary is missing.
		e.logger.Warn("tts failed, response logged only",
			zap.String("text", text),
			zap.Error(err))
		return fmt.Errorf("espeak: %w", err)
	}

	e.logger.Info("spoke response", zap.String("text", text))
	return nil
}

// Log implements repositories.ResponseSink.
func (e *Espeak) Log(text string) {
	e.logger.Info(text)
}

// Chime plays a short acknowledgement tone after the wake word. Failure is
// ignored; the tone is a nicety, not a requirement.
func (e *Espeak) Chime(ctx context.Context) error {
	_ = exec.CommandContext(ctx, "beep", "-f", "1000", "-l", "50").Run()
	return nil
}
