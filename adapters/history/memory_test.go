package history

import (
	"context"
	"testing"

	"github.com/srreparos7z-rgb/lewisia/domain/entities"
)

func TestMemoryBoundsHistory(t *testing.T) {
	store := NewMemory(3)
	ctx := context.Background()

	var ids []string
	for i := 0; i < 5; i++ {
		turn := entities.NewTurn(entities.WakeEvent{Phrase: "lewis", Confidence: 1})
		turn.Complete(entities.Transcript{Text: "what time is it", Confidence: 1}, "it is noon", entities.OutcomeOK)
		if err := store.Save(ctx, turn); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
		ids = append(ids, turn.ID)
	}

	recent, err := store.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}

	if len(recent) != 3 {
		t.Fatalf("expected 3 turns kept, got %d", len(recent))
	}

	// Newest first: the last saved turn leads.
	if recent[0].ID != ids[4] {
		t.Errorf("expected newest turn first, got %s", recent[0].ID)
	}
	if recent[2].ID != ids[2] {
		t.Errorf("expected oldest kept turn last, got %s", recent[2].ID)
	}
}

func TestMemoryRejectsInvalidTurn(t *testing.T) {
	store := NewMemory(3)

	turn := &entities.Turn{} // no id, no start time
	if err := store.Save(context.Background(), turn); err == nil {
		t.Error("expected validation error for empty turn")
	}
}
