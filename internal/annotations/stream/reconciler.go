package stream

import (
	"sort"

	"github.com/Barap1/UniExplorer/internal/annotations/domain"
)

// MarkerSet is the server-side mirror of the markers a viewer has on its map
// for the current (body, filter) pair. It is owned by exactly one session
// goroutine and reconciled against every snapshot notification by document
// ID: new documents are added, missing ones removed, unchanged ones left
// untouched. After every Apply the set size equals the snapshot size.
type MarkerSet struct {
	markers map[string]domain.Annotation
}

// Diff is what a single snapshot notification changed.
type Diff struct {
	Added   []domain.Annotation
	Removed []string
}

func NewMarkerSet() *MarkerSet {
	return &MarkerSet{markers: make(map[string]domain.Annotation)}
}

// Apply reconciles the set against a full snapshot and returns the keyed
// diff. Added markers keep snapshot order; removed IDs are sorted so the
// emitted events are deterministic.
func (m *MarkerSet) Apply(snapshot []domain.Annotation) Diff {
	var diff Diff

	seen := make(map[string]bool, len(snapshot))
	for _, a := range snapshot {
		seen[a.ID] = true
		if _, ok := m.markers[a.ID]; !ok {
			m.markers[a.ID] = a
			diff.Added = append(diff.Added, a)
		}
	}

	for id := range m.markers {
		if !seen[id] {
			delete(m.markers, id)
			diff.Removed = append(diff.Removed, id)
		}
	}
	sort.Strings(diff.Removed)

	return diff
}

// Clear removes every marker and returns the removed IDs, sorted.
func (m *MarkerSet) Clear() []string {
	removed := make([]string, 0, len(m.markers))
	for id := range m.markers {
		removed = append(removed, id)
	}
	sort.Strings(removed)

	m.markers = make(map[string]domain.Annotation)
	return removed
}

// Count returns the number of markers currently in the set.
func (m *MarkerSet) Count() int {
	return len(m.markers)
}

// All returns the current markers sorted by ID.
func (m *MarkerSet) All() []domain.Annotation {
	out := make([]domain.Annotation, 0, len(m.markers))
	for _, a := range m.markers {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
