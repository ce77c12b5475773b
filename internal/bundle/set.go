package bundle

import "sort"

// Set is a collection of bundles keyed by path. The reconciler retains one
// across passes as its "previously known" state.
type Set map[string]Bundle

// NewSet builds a Set from a slice of bundles.
func NewSet(bundles ...Bundle) Set {
	s := make(Set, len(bundles))
	for _, b := range bundles {
		s[b.Path] = b
	}
	return s
}

// Diff partitions the receiver against a previous set: added holds bundles
// only in the receiver, removed holds bundles only in prev, common holds
// bundles present in both. Each slice is sorted by name so callers process
// bundles in a stable order.
func (s Set) Diff(prev Set) (added, removed, common []Bundle) {
	for path, b := range s {
		if _, ok := prev[path]; ok {
			common = append(common, b)
		} else {
			added = append(added, b)
		}
	}
	for path, b := range prev {
		if _, ok := s[path]; !ok {
			removed = append(removed, b)
		}
	}

	byName := func(bs []Bundle) {
		sort.Slice(bs, func(i, j int) bool { return bs[i].Name < bs[j].Name })
	}
	byName(added)
	byName(removed)
	byName(common)
	return added, removed, common
}
