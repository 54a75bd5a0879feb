// Package reconcile determines which available scenes are not yet
// represented in the catalog tables. Both operations are pure so runs are
// reproducible from their inputs.
package reconcile

import (
	"sort"

	"basintab/internal/scene"
)

// Pending returns the scenes whose identifiers are absent from done, in
// ascending date order, truncated to limit entries when limit is positive.
func Pending(done map[string]struct{}, available []scene.Scene, limit int) []scene.Scene {
	pending := make([]scene.Scene, 0, len(available))
	for _, s := range available {
		if _, ok := done[s.ID]; ok {
			continue
		}
		pending = append(pending, s)
	}
	sort.Slice(pending, func(i, j int) bool {
		a, b := pending[i], pending[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		return a.ID < b.ID
	})
	if limit > 0 && len(pending) > limit {
		pending = pending[:limit]
	}
	return pending
}

// Intersect returns the identifiers present in every given key set. A scene
// counts as done for a product only when all of its variables hold it, so
// the reconciler diffs against the intersection.
func Intersect(sets ...map[string]struct{}) map[string]struct{} {
	if len(sets) == 0 {
		return map[string]struct{}{}
	}
	out := make(map[string]struct{}, len(sets[0]))
	for key := range sets[0] {
		out[key] = struct{}{}
	}
	for _, set := range sets[1:] {
		for key := range out {
			if _, ok := set[key]; !ok {
				delete(out, key)
			}
		}
	}
	return out
}
