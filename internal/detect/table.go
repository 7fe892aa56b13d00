package detect

import (
	"log"
	"os"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/KirkDiggler/beyond-tracker/internal/domain/character"
)

// PatternTable is the canonical priority table: field-path patterns mapped to
// priority labels, partitioned into exact entries and wildcard entries. It is
// read-mostly; the only mutation path is auto-discovery registration, which
// is serialized by the table's mutex. Detection runs read through a Snapshot
// taken at run start so a concurrent registration cannot shift results
// mid-run.
type PatternTable struct {
	mu       sync.Mutex
	exact    map[string]character.Priority
	wildcard []wildcardEntry

	autoDiscover     bool
	discoveryDefault character.Priority
	filePath         string
}

type wildcardEntry struct {
	pattern     string
	priority    character.Priority
	specificity int
}

// PatternTableConfig configures table construction. Rules merge over the
// built-in defaults; a nil or partial config is valid.
type PatternTableConfig struct {
	Rules            map[string]string
	AutoDiscover     bool
	DiscoveryDefault character.Priority
	FilePath         string
}

var defaultPriorityRules = map[string]string{
	"name":                  "high",
	"race":                  "medium",
	"class":                 "high",
	"subclass":              "high",
	"level":                 "critical",
	"experience":            "low",
	"max_hp":                "critical",
	"current_hp":            "medium",
	"temp_hp":               "low",
	"armor_class":           "high",
	"initiative":            "medium",
	"speed":                 "medium",
	"proficiency_bonus":     "high",
	"ability_scores.*":      "high",
	"saving_throws.*":       "medium",
	"skills.*":              "medium",
	"spells.*":              "high",
	"spell_slots.*":         "medium",
	"spell_save_dc":         "high",
	"spell_attack_bonus":    "high",
	"feats.*":               "high",
	"features.*":            "medium",
	"equipment.*":           "medium",
	"inventory[*].quantity": "low",
	"inventory.*.quantity":  "low",
	"inventory*":            "medium",
	"currency.*":            "low",
	"proficiencies.*":       "medium",
	"passive_perception":    "low",
	"languages":             "low",
	"languages.*":           "low",
	"notes*":                "low",
	"meta.*":                "ignored",
	"debug.*":               "ignored",
	"last_modified":         "ignored",
	"scraped_at":            "ignored",
}

// NewPatternTable builds a table from built-in defaults merged with the
// supplied config. Malformed patterns are logged and skipped, never fatal.
func NewPatternTable(cfg *PatternTableConfig) *PatternTable {
	table := &PatternTable{
		exact:            make(map[string]character.Priority),
		discoveryDefault: character.PriorityMedium,
	}
	if cfg != nil {
		table.autoDiscover = cfg.AutoDiscover
		table.filePath = cfg.FilePath
		if cfg.DiscoveryDefault != 0 {
			table.discoveryDefault = cfg.DiscoveryDefault
		}
	}

	for pattern, label := range defaultPriorityRules {
		table.addRule(pattern, label)
	}
	if cfg != nil {
		for pattern, label := range cfg.Rules {
			table.addRule(pattern, label)
		}
	}
	table.sortWildcards()
	return table
}

func (t *PatternTable) addRule(pattern, label string) {
	pattern = strings.TrimSpace(pattern)
	if pattern == "" {
		log.Printf("pattern table: skipping malformed rule (empty pattern)")
		return
	}

	priority := character.ParsePriority(label)

	if strings.Contains(pattern, "*") {
		for i, entry := range t.wildcard {
			if entry.pattern == pattern {
				t.wildcard[i].priority = priority
				return
			}
		}
		t.wildcard = append(t.wildcard, wildcardEntry{
			pattern:     pattern,
			priority:    priority,
			specificity: PatternSpecificity(pattern),
		})
		return
	}
	t.exact[pattern] = priority
}

func (t *PatternTable) sortWildcards() {
	sort.SliceStable(t.wildcard, func(i, j int) bool {
		return t.wildcard[i].specificity > t.wildcard[j].specificity
	})
}

// LoadPatternTableFile reads a YAML rules file of pattern -> priority label.
// A missing file is not an error; the caller gets a nil map and uses
// defaults.
func LoadPatternTableFile(path string) (map[string]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var doc struct {
		Priorities map[string]string `yaml:"priorities"`
	}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return doc.Priorities, nil
}

// Resolve returns the priority for a field path: exact match first, then the
// most specific matching wildcard. ok is false when nothing matched.
func (t *PatternTable) Resolve(path string) (character.Priority, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.resolveLocked(path)
}

func (t *PatternTable) resolveLocked(path string) (character.Priority, bool) {
	if priority, ok := t.exact[path]; ok {
		return priority, true
	}
	for _, entry := range t.wildcard {
		if MatchPattern(entry.pattern, path) {
			return entry.priority, true
		}
	}
	return 0, false
}

// Discover registers a previously-unseen field path at the discovery default
// and persists the table. Paths already covered by any entry, wildcard
// included, never re-trigger discovery. The returned priority is what the
// path resolves to afterwards.
func (t *PatternTable) Discover(path string) character.Priority {
	t.mu.Lock()
	defer t.mu.Unlock()

	if priority, ok := t.resolveLocked(path); ok {
		return priority
	}
	if !t.autoDiscover {
		return t.discoveryDefault
	}

	t.exact[path] = t.discoveryDefault
	log.Printf("pattern table: auto-discovered field %q at priority %s", path, t.discoveryDefault)
	if err := t.saveLocked(); err != nil {
		log.Printf("pattern table: persist after discovery failed: %v", err)
	}
	return t.discoveryDefault
}

func (t *PatternTable) saveLocked() error {
	if t.filePath == "" {
		return nil
	}

	rules := make(map[string]string, len(t.exact)+len(t.wildcard))
	for pattern, priority := range t.exact {
		rules[pattern] = priority.String()
	}
	for _, entry := range t.wildcard {
		rules[entry.pattern] = entry.priority.String()
	}

	doc := map[string]any{"priorities": rules}
	raw, err := yaml.Marshal(doc)
	if err != nil {
		return err
	}
	return os.WriteFile(t.filePath, raw, 0o644)
}

// Snapshot returns an immutable copy for use during one detection run.
func (t *PatternTable) Snapshot() *TableSnapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	snap := &TableSnapshot{
		exact:    make(map[string]character.Priority, len(t.exact)),
		wildcard: make([]wildcardEntry, len(t.wildcard)),
	}
	for k, v := range t.exact {
		snap.exact[k] = v
	}
	copy(snap.wildcard, t.wildcard)
	return snap
}

// TableSnapshot is a point-in-time read-only view of a PatternTable.
type TableSnapshot struct {
	exact    map[string]character.Priority
	wildcard []wildcardEntry
}

// Resolve mirrors PatternTable.Resolve against the frozen view.
func (s *TableSnapshot) Resolve(path string) (character.Priority, bool) {
	if priority, ok := s.exact[path]; ok {
		return priority, true
	}
	for _, entry := range s.wildcard {
		if MatchPattern(entry.pattern, path) {
			return entry.priority, true
		}
	}
	return 0, false
}
