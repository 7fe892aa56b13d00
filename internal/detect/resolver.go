package detect

import (
	"sort"
	"strings"

	"github.com/KirkDiggler/beyond-tracker/internal/domain/character"
)

// NotificationTarget is a downstream consumer of changes. Each target has its
// own minimum-priority threshold.
type NotificationTarget string

const (
	TargetDiscord   NotificationTarget = "discord"
	TargetChangelog NotificationTarget = "changelog"
)

// ResolverConfig configures the dynamic priority resolver. Overrides are
// per-target pattern -> priority-label tables, logically distinct from the
// general classification table and never merged into it.
type ResolverConfig struct {
	Table      *PatternTable
	Overrides  map[NotificationTarget]map[string]string
	Thresholds map[NotificationTarget]character.Priority
}

// Resolver applies configuration-driven priority overrides and decides which
// targets a change should reach.
type Resolver struct {
	table      *PatternTable
	overrides  map[NotificationTarget][]overrideEntry
	thresholds map[NotificationTarget]character.Priority
}

type overrideEntry struct {
	pattern     string
	priority    character.Priority
	specificity int
	exact       bool
}

// NewResolver builds a resolver. A nil config or missing keys fall back to a
// default table, no overrides, and medium/low thresholds for Discord and the
// change log respectively.
func NewResolver(cfg *ResolverConfig) *Resolver {
	r := &Resolver{
		overrides: make(map[NotificationTarget][]overrideEntry),
		thresholds: map[NotificationTarget]character.Priority{
			TargetDiscord:   character.PriorityMedium,
			TargetChangelog: character.PriorityLow,
		},
	}

	if cfg != nil && cfg.Table != nil {
		r.table = cfg.Table
	} else {
		r.table = NewPatternTable(nil)
	}

	if cfg != nil {
		for target, rules := range cfg.Overrides {
			entries := make([]overrideEntry, 0, len(rules))
			for pattern, label := range rules {
				pattern = strings.TrimSpace(pattern)
				if pattern == "" {
					continue
				}
				entries = append(entries, overrideEntry{
					pattern:     pattern,
					priority:    character.ParsePriority(label),
					specificity: PatternSpecificity(pattern),
					exact:       !strings.Contains(pattern, "*"),
				})
			}
			sort.SliceStable(entries, func(i, j int) bool {
				if entries[i].exact != entries[j].exact {
					return entries[i].exact
				}
				return entries[i].specificity > entries[j].specificity
			})
			r.overrides[target] = entries
		}
		for target, threshold := range cfg.Thresholds {
			r.thresholds[target] = threshold
		}
	}
	return r
}

// Table exposes the general pattern table so the orchestrator can snapshot it
// at run start.
func (r *Resolver) Table() *PatternTable { return r.table }

// ResolvePriority resolves the effective priority of a field path for a
// target: the per-target override table first, then the general table (with
// auto-discovery for unseen paths), then the medium default.
func (r *Resolver) ResolvePriority(path string, target NotificationTarget) character.Priority {
	if priority, ok := r.overrideFor(path, target); ok {
		return priority
	}
	return r.table.Discover(path)
}

// GeneralPriority resolves against the general table only, without touching
// per-target overrides. ok is false when the table has no matching entry.
func (r *Resolver) GeneralPriority(path string) (character.Priority, bool) {
	return r.table.Resolve(path)
}

func (r *Resolver) overrideFor(path string, target NotificationTarget) (character.Priority, bool) {
	for _, entry := range r.overrides[target] {
		if entry.exact {
			if entry.pattern == path {
				return entry.priority, true
			}
			continue
		}
		if MatchPattern(entry.pattern, path) {
			return entry.priority, true
		}
	}
	return 0, false
}

// Threshold returns the configured minimum priority for a target.
func (r *Resolver) Threshold(target NotificationTarget) character.Priority {
	if threshold, ok := r.thresholds[target]; ok {
		return threshold
	}
	return character.PriorityMedium
}

// ShouldNotify reports whether a change clears the target's threshold. An
// ignored resolution always refuses, regardless of threshold: ignored is a
// drop, not a very low priority.
func (r *Resolver) ShouldNotify(change *character.FieldChange, target NotificationTarget) bool {
	if change == nil {
		return false
	}
	priority := r.ResolvePriority(change.FieldPath, target)
	if priority == character.PriorityIgnored {
		return false
	}
	if change.Priority == character.PriorityIgnored {
		return false
	}
	return priority >= r.Threshold(target)
}
