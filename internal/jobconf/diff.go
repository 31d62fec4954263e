package jobconf

type ChangeKind string

const (
	ChangeAdded    ChangeKind = "ADDED"
	ChangeRemoved  ChangeKind = "REMOVED"
	ChangeModified ChangeKind = "MODIFIED"
)

// Change is a single structural difference between two snapshots.
// Key is empty when a whole (empty) section was added or removed.
type Change struct {
	Kind    ChangeKind
	Section string
	Key     string
	Old     string
	New     string
}

// Equal reports whether both snapshots hold the same sections, keys and values.
func Equal(a, b Snapshot) bool {
	return len(Diff(a, b)) == 0
}

// Diff lists the changes that turn old into new. Ordering of sections and keys
// in either snapshot is ignored.
func Diff(old, new Snapshot) []Change {
	var changes []Change

	for _, name := range old.Sections() {
		oldSec, _ := old.Section(name)
		newSec, ok := new.Section(name)
		if !ok {
			changes = append(changes, removedSection(old, name)...)
			continue
		}

		for _, key := range orderedKeys(old, name) {
			newVal, ok := newSec[key]
			switch {
			case !ok:
				changes = append(changes, Change{Kind: ChangeRemoved, Section: name, Key: key, Old: oldSec[key]})
			case newVal != oldSec[key]:
				changes = append(changes, Change{Kind: ChangeModified, Section: name, Key: key, Old: oldSec[key], New: newVal})
			}
		}

		for _, key := range orderedKeys(new, name) {
			if _, ok := oldSec[key]; !ok {
				changes = append(changes, Change{Kind: ChangeAdded, Section: name, Key: key, New: newSec[key]})
			}
		}
	}

	for _, name := range new.Sections() {
		if old.HasSection(name) {
			continue
		}

		newSec, _ := new.Section(name)
		keys := orderedKeys(new, name)
		if len(keys) == 0 {
			changes = append(changes, Change{Kind: ChangeAdded, Section: name})
			continue
		}

		for _, key := range keys {
			changes = append(changes, Change{Kind: ChangeAdded, Section: name, Key: key, New: newSec[key]})
		}
	}

	return changes
}

func removedSection(s Snapshot, name string) []Change {
	values, _ := s.Section(name)
	keys := orderedKeys(s, name)
	if len(keys) == 0 {
		return []Change{{Kind: ChangeRemoved, Section: name}}
	}

	changes := make([]Change, 0, len(keys))
	for _, key := range keys {
		changes = append(changes, Change{Kind: ChangeRemoved, Section: name, Key: key, Old: values[key]})
	}
	return changes
}

func orderedKeys(s Snapshot, name string) []string {
	idx := s.index(name)
	if idx < 0 {
		return nil
	}

	keys := make([]string, len(s.sections[idx].entries))
	for i, e := range s.sections[idx].entries {
		keys[i] = e.key
	}
	return keys
}
