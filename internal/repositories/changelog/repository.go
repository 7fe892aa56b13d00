package changelog

//go:generate mockgen -destination=mock/mock_repository.go -package=mockchangelog -source=repository.go

import (
	"context"
	"time"

	"github.com/KirkDiggler/beyond-tracker/internal/domain/character"
)

// Entry is one persisted change row.
type Entry struct {
	ID          string
	CharacterID int
	FromVersion int64
	ToVersion   int64
	Timestamp   time.Time
	FieldPath   string
	ChangeType  string
	Priority    string
	Category    string
	Description string
}

// Repository is the append-only change history.
type Repository interface {
	// Append writes every change in the set as one row each.
	Append(ctx context.Context, changeSet *character.ChangeSet) error

	// History returns the most recent entries for a character, newest first.
	History(ctx context.Context, characterID, limit int) ([]Entry, error)
}
