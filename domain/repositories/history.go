package repositories

import (
	"context"

	"github.com/srreparos7z-rgb/lewisia/domain/entities"
)

// TurnRepository defines data access methods for completed turns.
type TurnRepository interface {
	Save(ctx context.Context, turn *entities.Turn) error
	// Recent returns up to limit turns, newest first.
	Recent(ctx context.Context, limit int) ([]*entities.Turn, error)
}

// ResponseCache stores responses for commands that were answered by the
// fallback model, so repeated questions do not pay for a second generation.
type ResponseCache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Put(ctx context.Context, key, response string) error
	Close() error
}
