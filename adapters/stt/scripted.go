package stt

import (
	"context"
	"sync"

	"github.com/srreparos7z-rgb/lewisia/domain/repositories"
)

// Scripted is a deterministic recognizer for tests. Each Transcribe call
// pops the next scripted recognition; an exhausted script recognizes
// nothing.
type Scripted struct {
	mu      sync.Mutex
	queue   []repositories.Recognition
	calls   int
	samples [][]int16
}

// NewScripted creates a recognizer that will return the given results in
// order.
func NewScripted(results ...repositories.Recognition) *Scripted {
	return &Scripted{queue: results}
}

// Push appends results to the script.
func (s *Scripted) Push(results ...repositories.Recognition) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queue = append(s.queue, results...)
}

// Transcribe implements repositories.SpeechToText.
func (s *Scripted) Transcribe(ctx context.Context, samples []int16, config repositories.AudioConfig) (repositories.Recognition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls++
	s.samples = append(s.samples, samples)

	if len(samples) == 0 || len(s.queue) == 0 {
		return repositories.Recognition{}, nil
	}

	next := s.queue[0]
	s.queue = s.queue[1:]
	return next, nil
}

// Calls reports how many times Transcribe ran.
func (s *Scripted) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// LastSamples returns the samples passed to the most recent call.
func (s *Scripted) LastSamples() []int16 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.samples) == 0 {
		return nil
	}
	return s.samples[len(s.samples)-1]
}
