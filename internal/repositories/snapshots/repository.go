package snapshots

//go:generate mockgen -destination=mock/mock_repository.go -package=mocksnapshots -source=repository.go

import (
	"context"

	"github.com/KirkDiggler/beyond-tracker/internal/domain/character"
)

// Repository stores character snapshots keyed by character id and version.
type Repository interface {
	// Save persists a snapshot and advances the latest pointer.
	Save(ctx context.Context, snapshot *character.Snapshot) error

	// GetLatest returns the most recent snapshot for a character.
	GetLatest(ctx context.Context, characterID int) (*character.Snapshot, error)

	// GetVersion returns one specific snapshot version.
	GetVersion(ctx context.Context, characterID int, version int64) (*character.Snapshot, error)

	// ListVersions returns the stored version numbers for a character in
	// ascending order.
	ListVersions(ctx context.Context, characterID int) ([]int64, error)
}
