package character

import (
	"fmt"
	"time"
)

// ChangeSet is the aggregate result of comparing two snapshots of one
// character. Constructed once per detection run and immutable afterwards;
// consumers read it and discard it.
type ChangeSet struct {
	CharacterID   int            `json:"character_id"`
	CharacterName string         `json:"character_name"`
	FromVersion   int64          `json:"from_version"`
	ToVersion     int64          `json:"to_version"`
	Timestamp     time.Time      `json:"timestamp"`
	Changes       []*FieldChange `json:"changes"`
	Summary       string         `json:"summary"`
}

// NewChangeSet builds the aggregate for a snapshot pair. The summary reflects
// the final, filtered change list.
func NewChangeSet(old, latest *Snapshot, changes []*FieldChange) *ChangeSet {
	return &ChangeSet{
		CharacterID:   latest.CharacterID,
		CharacterName: latest.Name(),
		FromVersion:   old.Version,
		ToVersion:     latest.Version,
		Timestamp:     time.Now().UTC(),
		Changes:       changes,
		Summary:       summarize(changes),
	}
}

// HasChanges reports whether any change survived filtering.
func (cs *ChangeSet) HasChanges() bool {
	return cs != nil && len(cs.Changes) > 0
}

// HighestPriority returns the maximum priority ordinal across all changes,
// or low when the set is empty.
func (cs *ChangeSet) HighestPriority() Priority {
	highest := PriorityLow
	for _, change := range cs.Changes {
		if change.Priority > highest {
			highest = change.Priority
		}
	}
	return highest
}

func summarize(changes []*FieldChange) string {
	if len(changes) == 0 {
		return "No changes detected"
	}

	counts := make(map[Category]int)
	for _, change := range changes {
		counts[change.Category]++
	}

	if len(counts) == 1 {
		for category, n := range counts {
			return fmt.Sprintf("%d change(s) in %s", n, category)
		}
	}
	return fmt.Sprintf("%d change(s) across %d categories", len(changes), len(counts))
}
