package render

import (
	"github.com/voxelview/voxelview/internal/labels"
	"github.com/voxelview/voxelview/internal/mesh"
)

// Scene is the rendering surface the Manager reconciles against. It is an
// external collaborator: the embedding application provides the
// implementation and owns the ground truth of what is currently rendered.
//
// All methods are invoked from the Manager's control goroutine only.
// Add and remove are assumed to be fast bookkeeping; long-running work does
// not belong in a Scene implementation.
type Scene interface {
	// VisibleObjects returns a snapshot of the labels currently rendered.
	// The Manager treats the returned set as its own copy.
	VisibleObjects() labels.Set

	// HasObject reports whether the scene holds cached geometry for the
	// label, whether or not it is currently visible.
	HasObject(labels.Label) bool

	// AddObject makes the object for the label visible. A nil mesh means
	// "attach from your cached geometry"; a non-nil mesh supplies freshly
	// extracted geometry and replaces whatever was cached.
	AddObject(labels.Label, *mesh.Mesh)

	// RemoveObject removes the object from the scene.
	RemoveObject(labels.Label)

	// SetBusy signals that an extraction batch is running. Scenes typically
	// surface this as a spinner or progress indication.
	SetBusy(bool)
}
