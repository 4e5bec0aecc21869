package capture

import (
	"context"
	"sync"

	"github.com/srreparos7z-rgb/lewisia/domain/entities"
	"github.com/srreparos7z-rgb/lewisia/domain/repositories"
)

// Memory is a scripted audio source for tests. It hands out a fixed frame
// sequence and then blocks like a quiet microphone until it is closed.
type Memory struct {
	mu        sync.Mutex
	frames    []entities.AudioFrame
	pos       int
	opened    bool
	failOpen  bool
	closeOnce sync.Once
	done      chan struct{}

	closeCalls int
}

// NewMemory creates a scripted source that will replay the given frames.
func NewMemory(frames []entities.AudioFrame) *Memory {
	return &Memory{
		frames: frames,
		done:   make(chan struct{}),
	}
}

// FailOpen makes the next Open call fail with ErrDeviceUnavailable.
func (m *Memory) FailOpen() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failOpen = true
}

// Append adds frames to the script.
func (m *Memory) Append(frames ...entities.AudioFrame) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.frames = append(m.frames, frames...)
}

// Open implements repositories.AudioSource.
func (m *Memory) Open(ctx context.Context, config repositories.DeviceConfig) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failOpen {
		return repositories.ErrDeviceUnavailable
	}
	m.opened = true
	return nil
}

// NextFrame implements repositories.AudioSource.
func (m *Memory) NextFrame(ctx context.Context) (entities.AudioFrame, error) {
	select {
	case <-m.done:
		return entities.AudioFrame{}, repositories.ErrStreamClosed
	default:
	}

	m.mu.Lock()
	if m.pos < len(m.frames) {
		frame := m.frames[m.pos]
		m.pos++
		m.mu.Unlock()
		return frame, nil
	}
	m.mu.Unlock()

	// Script exhausted: behave like a silent microphone.
	select {
	case <-ctx.Done():
		return entities.AudioFrame{}, ctx.Err()
	case <-m.done:
		return entities.AudioFrame{}, repositories.ErrStreamClosed
	}
}

// Close implements repositories.AudioSource. Idempotent.
func (m *Memory) Close() error {
	m.mu.Lock()
	m.closeCalls++
	m.mu.Unlock()
	m.closeOnce.Do(func() {
		close(m.done)
	})
	return nil
}

// CloseCalls reports how many times Close was invoked, for shutdown tests.
func (m *Memory) CloseCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closeCalls
}

// Closed reports whether the source has been closed.
func (m *Memory) Closed() bool {
	select {
	case <-m.done:
		return true
	default:
		return false
	}
}
