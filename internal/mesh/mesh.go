// Package mesh provides surface geometry extraction for labeled volumes and
// the asynchronous batch generator that feeds extracted meshes back to the
// render manager.
//
// The generator contract: a batch is constructed with a completion callback,
// a volume snapshot, and a label set. The callback is invoked once per label
// with the extracted mesh, and finally with (0, nil) to signal that the whole
// batch finished. Callback delivery order across labels is unspecified.
package mesh

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/voxelview/voxelview/internal/labels"
)

// Mesh is the extracted surface geometry for one label's voxels.
type Mesh struct {
	Label     labels.Label
	Triangles []r3.Triangle
}

// TriangleCount returns the number of triangles in the mesh.
func (m *Mesh) TriangleCount() int {
	if m == nil {
		return 0
	}
	return len(m.Triangles)
}

// Bounds returns the axis-aligned bounding box of the mesh as (min, max).
// A nil or empty mesh returns zero vectors.
func (m *Mesh) Bounds() (min, max r3.Vec) {
	if m.TriangleCount() == 0 {
		return r3.Vec{}, r3.Vec{}
	}
	min = r3.Vec{X: math.Inf(1), Y: math.Inf(1), Z: math.Inf(1)}
	max = r3.Vec{X: math.Inf(-1), Y: math.Inf(-1), Z: math.Inf(-1)}
	for _, tri := range m.Triangles {
		for _, v := range tri {
			min.X = math.Min(min.X, v.X)
			min.Y = math.Min(min.Y, v.Y)
			min.Z = math.Min(min.Z, v.Z)
			max.X = math.Max(max.X, v.X)
			max.Y = math.Max(max.Y, v.Y)
			max.Z = math.Max(max.Z, v.Z)
		}
	}
	return min, max
}
