package character

import (
	"time"
)

// Snapshot is an immutable point-in-time capture of a character's data as
// normalized by the D&D Beyond client. Data is never mutated after creation;
// detection runs compare exactly two snapshots of the same character.
type Snapshot struct {
	CharacterID int            `json:"character_id"`
	Version     int64          `json:"version"`
	Timestamp   time.Time      `json:"timestamp"`
	Data        map[string]any `json:"data"`
}

// NewSnapshot captures data for a character at the current time. Version is
// the capture's unix timestamp, which gives a monotonic ordering per
// character without coordination.
func NewSnapshot(characterID int, data map[string]any) *Snapshot {
	now := time.Now().UTC()
	return &Snapshot{
		CharacterID: characterID,
		Version:     now.Unix(),
		Timestamp:   now,
		Data:        data,
	}
}

// Name returns the character's display name, or a placeholder when the
// scraped payload lacked one.
func (s *Snapshot) Name() string {
	if s == nil || s.Data == nil {
		return "Unknown"
	}
	if name, ok := s.Data["name"].(string); ok && name != "" {
		return name
	}
	return "Unknown"
}
