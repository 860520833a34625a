package render

import "github.com/voxelview/voxelview/internal/labels"

// Plan is the command list produced by one reconciliation diff. It is
// computed from a snapshot of the scene's visible set, so applying it never
// races the set it was derived from. Slices are sorted for deterministic
// application and testing.
type Plan struct {
	// Removals are visible objects whose label no longer occurs in the
	// volume. Applied synchronously and unconditionally.
	Removals []labels.Label

	// CachedAdds are labels the scene already holds geometry for; they are
	// attached synchronously without extraction.
	CachedAdds []labels.Label

	// Generate are labels needing a fresh extraction batch. The in-progress
	// label always lands here, even when cached geometry exists.
	Generate []labels.Label
}

// Empty reports whether the plan contains no work at all.
func (p Plan) Empty() bool {
	return len(p.Removals) == 0 && len(p.CachedAdds) == 0 && len(p.Generate) == 0
}

// BuildPlan diffs the volume's label set against the scene's visible set.
//
// newLabels is the set of distinct labels in the volume; a background label
// in it is ignored. visible is a snapshot of the scene's current objects.
// hasCached reports whether the scene holds geometry for a label.
//
// Policy: the in-progress label is never treated as already-known, even
// when the scene currently renders it, so it is always routed to Generate
// and never served from cache. Its geometry changes on every brush stroke.
func BuildPlan(newLabels, visible labels.Set, hasCached func(labels.Label) bool) Plan {
	wanted := newLabels.Clone()
	wanted.Remove(labels.Background)

	var p Plan

	for _, l := range visible.Diff(wanted).Sorted() {
		p.Removals = append(p.Removals, l)
	}

	// The in-progress object does not count as already visible: stripping
	// it here forces it through the addition path below.
	old := visible.Clone()
	old.Remove(labels.Current)

	for _, l := range wanted.Diff(old).Sorted() {
		if l != labels.Current && hasCached(l) {
			p.CachedAdds = append(p.CachedAdds, l)
		} else {
			p.Generate = append(p.Generate, l)
		}
	}

	return p
}
