package history

import (
	"context"
	"sync"

	"github.com/srreparos7z-rgb/lewisia/domain/entities"
)

// Memory keeps the most recent turns in a bounded ring. The console's
// status endpoint reads from it; it also serves as the sole history store
// when MongoDB is not configured.
type Memory struct {
	mu    sync.Mutex
	turns []*entities.Turn
	limit int
}

// NewMemory creates a store holding at most limit turns.
func NewMemory(limit int) *Memory {
	if limit <= 0 {
		limit = 10
	}
	return &Memory{limit: limit}
}

// Save implements repositories.TurnRepository.
func (m *Memory) Save(ctx context.Context, turn *entities.Turn) error {
	if err := turn.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.turns = append(m.turns, turn)
	if len(m.turns) > m.limit {
		m.turns = m.turns[len(m.turns)-m.limit:]
	}
	return nil
}

// Recent implements repositories.TurnRepository.
func (m *Memory) Recent(ctx context.Context, limit int) ([]*entities.Turn, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if limit <= 0 || limit > len(m.turns) {
		limit = len(m.turns)
	}

	// Newest first.
	out := make([]*entities.Turn, 0, limit)
	for i := len(m.turns) - 1; i >= len(m.turns)-limit; i-- {
		out = append(out, m.turns[i])
	}
	return out, nil
}
