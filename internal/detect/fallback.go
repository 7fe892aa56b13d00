package detect

import (
	"fmt"
	"sort"
	"strings"

	"github.com/KirkDiggler/beyond-tracker/internal/domain/character"
)

// defaultExclusionPatterns lists volatile paths the fallback comparator never
// reports: scrape metadata, timestamps, and aggregates recomputed from fields
// that are already tracked on their own.
var defaultExclusionPatterns = []string{
	"meta.*",
	"debug.*",
	"last_modified",
	"scraped_at",
	"*_timestamp",
	"*.updated_at",
	"encumbrance*",
	"character_id",
	"version",
}

// FallbackComparator covers every field no specialized detector claims. It
// flattens both trees, drops claimed and excluded paths, and reports any
// remaining material difference.
type FallbackComparator struct {
	claimedPrefixes []string
	claimedFields   map[string]struct{}
	exclusions      []string
}

// NewFallbackComparator builds the comparator. claimedPrefixes are exact
// top-level prefixes owned by specialized detectors; claimedFields are exact
// scalar paths. extraExclusions extend the built-in volatile-path list.
func NewFallbackComparator(claimedPrefixes, claimedFields, extraExclusions []string) *FallbackComparator {
	fields := make(map[string]struct{}, len(claimedFields))
	for _, f := range claimedFields {
		fields[f] = struct{}{}
	}
	return &FallbackComparator{
		claimedPrefixes: claimedPrefixes,
		claimedFields:   fields,
		exclusions:      append(append([]string{}, defaultExclusionPatterns...), extraExclusions...),
	}
}

// Detect runs the flattened comparison and returns classified changes for
// every unclaimed, non-excluded path that materially differs.
func (f *FallbackComparator) Detect(oldData, newData map[string]any) []*character.FieldChange {
	oldFlat := Flatten(oldData, "")
	newFlat := Flatten(newData, "")

	paths := make(map[string]struct{}, len(oldFlat)+len(newFlat))
	for path := range oldFlat {
		paths[path] = struct{}{}
	}
	for path := range newFlat {
		paths[path] = struct{}{}
	}

	ordered := make([]string, 0, len(paths))
	for path := range paths {
		if f.claimed(path) || f.excluded(path) {
			continue
		}
		ordered = append(ordered, path)
	}
	sort.Strings(ordered)

	var changes []*character.FieldChange
	for _, path := range ordered {
		oldVal, hadOld := oldFlat[path]
		newVal, hasNew := newFlat[path]

		if hadOld && hasNew && !MateriallyDifferent(oldVal, newVal) {
			continue
		}
		if !hadOld && !hasNew {
			continue
		}

		change := f.buildChange(path, oldVal, newVal, hadOld, hasNew)
		if change.Meaningful() {
			changes = append(changes, change)
		}
	}
	return changes
}

func (f *FallbackComparator) buildChange(path string, oldVal, newVal any, hadOld, hasNew bool) *character.FieldChange {
	changeType := character.ChangeTypeModified
	switch {
	case !hadOld || oldVal == nil:
		changeType = character.ChangeTypeAdded
	case !hasNew || newVal == nil:
		changeType = character.ChangeTypeRemoved
	default:
		changeType = ClassifyNumeric(path, oldVal, newVal)
	}

	// category is left for classification to infer from the path
	change := character.NewFieldChange(path, oldVal, newVal, changeType)

	switch changeType {
	case character.ChangeTypeAdded:
		change.Description = fmt.Sprintf("%s added: %v", path, newVal)
	case character.ChangeTypeRemoved:
		change.Description = fmt.Sprintf("%s removed (was %v)", path, oldVal)
	case character.ChangeTypeIncremented:
		change.Description = fmt.Sprintf("%s increased: %v → %v", path, oldVal, newVal)
	case character.ChangeTypeDecremented:
		change.Description = fmt.Sprintf("%s decreased: %v → %v", path, oldVal, newVal)
	default:
		change.Description = fmt.Sprintf("%s changed: %v → %v", path, oldVal, newVal)
	}
	return change
}

func (f *FallbackComparator) claimed(path string) bool {
	if _, ok := f.claimedFields[path]; ok {
		return true
	}
	for _, prefix := range f.claimedPrefixes {
		if path == prefix || strings.HasPrefix(path, prefix+".") || strings.HasPrefix(path, prefix+"[") {
			return true
		}
	}
	return false
}

func (f *FallbackComparator) excluded(path string) bool {
	for _, pattern := range f.exclusions {
		if MatchPattern(pattern, path) {
			return true
		}
	}
	return false
}
