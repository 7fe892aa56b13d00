package detect

import (
	"log"

	"github.com/KirkDiggler/beyond-tracker/internal/domain/character"
	dnderr "github.com/KirkDiggler/beyond-tracker/internal/errors"
)

//go:generate mockgen -destination=mock/mock_service.go -package=mockdetect -source=service.go

// Service is the change detection engine's entry point.
type Service interface {
	// DetectChanges compares two snapshots of the same character and returns
	// the classified, deduplicated, filtered change set. The only error is a
	// snapshot pair for different characters; every data-quality problem
	// degrades to fewer changes instead.
	DetectChanges(old, latest *character.Snapshot) (*character.ChangeSet, error)

	// FilterChangesByGroups applies named include/exclude field groups for
	// notification-layer pre-filtering.
	FilterChangesByGroups(changes []*character.FieldChange, include, exclude []string) []*character.FieldChange

	// ShouldNotify reports whether a change clears the threshold for a
	// notification target.
	ShouldNotify(change *character.FieldChange, target NotificationTarget) bool
}

// ServiceConfig holds configuration for the detection service.
type ServiceConfig struct {
	Resolver *Resolver // optional, defaults applied when nil

	// Detectors overrides the default detector set, mainly for tests.
	Detectors []Detector

	// ExtraExclusions extends the fallback comparator's volatile-path list.
	ExtraExclusions []string

	// IncludeGroups/ExcludeGroups pre-filter the final change list.
	IncludeGroups []string
	ExcludeGroups []string

	// FieldGroups overrides the named group table used for filtering.
	FieldGroups map[string][]string
}

// service implements Service.
type service struct {
	resolver      *Resolver
	detectors     []Detector
	fallback      *FallbackComparator
	includeGroups []string
	excludeGroups []string
	fieldGroups   map[string][]string
}

// fieldClaimer is implemented by detectors that own exact scalar paths
// rather than a whole prefix.
type fieldClaimer interface {
	ClaimedFields() []string
}

// NewService creates the detection service with the default detector set
// unless the config supplies its own.
func NewService(cfg *ServiceConfig) Service {
	if cfg == nil {
		cfg = &ServiceConfig{}
	}

	svc := &service{
		resolver:      cfg.Resolver,
		detectors:     cfg.Detectors,
		includeGroups: cfg.IncludeGroups,
		excludeGroups: cfg.ExcludeGroups,
		fieldGroups:   cfg.FieldGroups,
	}
	if svc.resolver == nil {
		svc.resolver = NewResolver(nil)
	}
	if svc.detectors == nil {
		svc.detectors = DefaultDetectors()
	}
	if svc.fieldGroups == nil {
		svc.fieldGroups = defaultFieldGroups
	}

	var prefixes, fields []string
	for _, detector := range svc.detectors {
		if root := detector.Root(); root != "" {
			prefixes = append(prefixes, root)
		}
		if claimer, ok := detector.(fieldClaimer); ok {
			fields = append(fields, claimer.ClaimedFields()...)
		}
	}
	svc.fallback = NewFallbackComparator(prefixes, fields, cfg.ExtraExclusions)

	return svc
}

// DefaultDetectors returns the full specialized detector set.
func DefaultDetectors() []Detector {
	return []Detector{
		NewBasicStatsDetector(),
		NewAbilityScoreDetector(),
		NewSkillDetector(),
		NewSpellDetector(),
		NewSpellSlotDetector(),
		NewInventoryDetector(),
		NewEquipmentDetector(),
		NewCurrencyDetector(),
		NewFeatDetector(),
		NewFeatureDetector(),
		NewProficiencyDetector(),
	}
}

func (s *service) DetectChanges(old, latest *character.Snapshot) (*character.ChangeSet, error) {
	if old == nil || latest == nil {
		return nil, dnderr.InvalidArgument("both snapshots are required")
	}
	if old.CharacterID != latest.CharacterID {
		return nil, dnderr.InvalidArgumentf(
			"cannot compare snapshots of different characters: %d vs %d",
			old.CharacterID, latest.CharacterID)
	}

	// freeze the table for the duration of the run; concurrent discovery
	// registrations apply to later runs
	tableView := s.resolver.Table().Snapshot()

	var raw []*character.FieldChange
	for _, detector := range s.detectors {
		changes, err := runDetector(detector, old.Data, latest.Data)
		if err != nil {
			log.Printf("detect: detector %s failed, continuing with partial results: %v", detector.Name(), err)
		}
		raw = append(raw, changes...)
	}

	raw = append(raw, s.fallback.Detect(old.Data, latest.Data)...)

	deduped := Deduplicate(raw)
	classified := s.classify(deduped, tableView)
	filtered := FilterByGroupsWith(s.fieldGroups, classified, s.includeGroups, s.excludeGroups)
	SortChanges(filtered)

	return character.NewChangeSet(old, latest, filtered), nil
}

// runDetector isolates one detector: a panic inside it becomes an error and
// the run continues with whatever the other detectors find.
func runDetector(detector Detector, oldData, newData map[string]any) (changes []*character.FieldChange, err error) {
	defer func() {
		if r := recover(); r != nil {
			changes = nil
			err = dnderr.Internalf("detector %s panicked: %v", detector.Name(), r)
		}
	}()
	return detector.Detect(oldData, newData)
}

// classify applies the priority table to every change. Table entries override
// detector defaults; ignored entries drop the change; paths the table has
// never seen keep their detector priority and are offered to auto-discovery.
func (s *service) classify(changes []*character.FieldChange, tableView *TableSnapshot) []*character.FieldChange {
	result := make([]*character.FieldChange, 0, len(changes))
	for _, change := range changes {
		if change.Category == "" {
			change.Category = InferCategory(change.FieldPath)
		}

		priority, known := tableView.Resolve(change.FieldPath)
		if !known {
			// registers the path when auto-discovery is on; resolves to the
			// discovery default either way
			priority = s.resolver.Table().Discover(change.FieldPath)
		}
		if priority == character.PriorityIgnored {
			continue
		}
		change.Priority = priority
		result = append(result, change)
	}
	return result
}

func (s *service) FilterChangesByGroups(changes []*character.FieldChange, include, exclude []string) []*character.FieldChange {
	return FilterByGroupsWith(s.fieldGroups, changes, include, exclude)
}

func (s *service) ShouldNotify(change *character.FieldChange, target NotificationTarget) bool {
	return s.resolver.ShouldNotify(change, target)
}
