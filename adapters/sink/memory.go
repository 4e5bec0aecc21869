package sink

import (
	"context"
	"sync"
)

// Memory records everything spoken and logged, for tests.
type Memory struct {
	mu     sync.Mutex
	spoken []string
	logged []string
	chimes int

	// SpeakErr, when set, is returned by every Speak call.
	SpeakErr error
}

// NewMemory creates an empty recording sink.
func NewMemory() *Memory {
	return &Memory{}
}

// Speak implements repositories.ResponseSink.
func (m *Memory) Speak(ctx context.Context, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SpeakErr != nil {
		return m.SpeakErr
	}
	m.spoken = append(m.spoken, text)
	return nil
}

// Log implements repositories.ResponseSink.
func (m *Memory) Log(text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logged = append(m.logged, text)
}

// Chime implements repositories.Chimer.
func (m *Memory) Chime(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.chimes++
	return nil
}

// Spoken returns a copy of everything spoken so far.
func (m *Memory) Spoken() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.spoken...)
}

// Logged returns a copy of everything logged so far.
func (m *Memory) Logged() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.logged...)
}

// Chimes reports how many acknowledgement tones were played.
func (m *Memory) Chimes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.chimes
}
