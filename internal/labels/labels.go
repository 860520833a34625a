// Package labels owns object label identity for the volume renderer.
//
// Responsibilities: label allocation over the bounded object pool, label
// classification (background, in-progress, committed), label set arithmetic,
// and the label-to-color mapping.
//
// Dependency rule: labels is a leaf package. It may not import volume, mesh,
// or render.
package labels

import "sort"

// MaxObjects is the size of the renderable object pool. Usable labels occupy
// [1, MaxObjects); label 0 is the transparent background.
const MaxObjects = 256

// Background is the voxel value that is never rendered.
const Background Label = 0

// Current is the label of the in-progress editing object. It is always
// regenerated and never served from a cache: the object under edit has no
// stable geometry.
const Current Label = 1

// Label identifies a renderable object within the volume.
type Label uint32

// Class partitions labels by rendering policy.
type Class int

const (
	// ClassBackground labels are never rendered.
	ClassBackground Class = iota
	// ClassInProgress is the object currently being edited; its geometry is
	// always recomputed.
	ClassInProgress
	// ClassCommitted objects may be served from cached geometry.
	ClassCommitted
)

func (c Class) String() string {
	switch c {
	case ClassBackground:
		return "background"
	case ClassInProgress:
		return "in-progress"
	default:
		return "committed"
	}
}

// Class reports the rendering policy class of the label.
func (l Label) Class() Class {
	switch l {
	case Background:
		return ClassBackground
	case Current:
		return ClassInProgress
	default:
		return ClassCommitted
	}
}

// Set is an unordered collection of labels.
type Set map[Label]struct{}

// NewSet returns a Set containing the given labels.
func NewSet(ls ...Label) Set {
	s := make(Set, len(ls))
	for _, l := range ls {
		s[l] = struct{}{}
	}
	return s
}

// Add inserts l into the set.
func (s Set) Add(l Label) { s[l] = struct{}{} }

// Remove deletes l from the set. Removing an absent label is a no-op.
func (s Set) Remove(l Label) { delete(s, l) }

// Has reports whether l is in the set.
func (s Set) Has(l Label) bool {
	_, ok := s[l]
	return ok
}

// Clone returns an independent copy of the set.
func (s Set) Clone() Set {
	c := make(Set, len(s))
	for l := range s {
		c[l] = struct{}{}
	}
	return c
}

// Diff returns the labels present in s but not in other.
func (s Set) Diff(other Set) Set {
	d := make(Set)
	for l := range s {
		if !other.Has(l) {
			d[l] = struct{}{}
		}
	}
	return d
}

// Sorted returns the labels in ascending order. Useful for deterministic
// iteration and test output.
func (s Set) Sorted() []Label {
	out := make([]Label, 0, len(s))
	for l := range s {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
