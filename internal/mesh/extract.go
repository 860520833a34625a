package mesh

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/voxelview/voxelview/internal/labels"
	"github.com/voxelview/voxelview/internal/volume"
)

// Extract builds the surface mesh for one label: every voxel face between a
// voxel carrying the label and anything else (another label, background, or
// the volume boundary) contributes two triangles. Vertices are in natural
// voxel coordinates, so a voxel at (x,y,z) spans the unit cube
// [x,x+1]×[y,y+1]×[z,z+1].
//
// Extraction reads the volume only; callers hand workers a Snapshot so that
// concurrent mutation on the control goroutine cannot race a running batch.
func Extract(vol *volume.Volume, label labels.Label) *Mesh {
	m := &Mesh{Label: label}
	if vol == nil || label == labels.Background {
		return m
	}

	shape := vol.Shape()
	sx, sy, sz := shape[0], shape[1], shape[2]

	// inside reports whether (x,y,z) is a voxel of this label; everything
	// outside the volume counts as exposed.
	inside := func(x, y, z int) bool {
		if x < 0 || y < 0 || z < 0 || x >= sx || y >= sy || z >= sz {
			return false
		}
		return vol.At(x, y, z) == label
	}

	for x := 0; x < sx; x++ {
		for y := 0; y < sy; y++ {
			for z := 0; z < sz; z++ {
				if vol.At(x, y, z) != label {
					continue
				}
				fx, fy, fz := float64(x), float64(y), float64(z)
				if !inside(x-1, y, z) {
					m.addQuad(
						r3.Vec{X: fx, Y: fy, Z: fz},
						r3.Vec{X: fx, Y: fy, Z: fz + 1},
						r3.Vec{X: fx, Y: fy + 1, Z: fz + 1},
						r3.Vec{X: fx, Y: fy + 1, Z: fz},
					)
				}
				if !inside(x+1, y, z) {
					m.addQuad(
						r3.Vec{X: fx + 1, Y: fy, Z: fz},
						r3.Vec{X: fx + 1, Y: fy + 1, Z: fz},
						r3.Vec{X: fx + 1, Y: fy + 1, Z: fz + 1},
						r3.Vec{X: fx + 1, Y: fy, Z: fz + 1},
					)
				}
				if !inside(x, y-1, z) {
					m.addQuad(
						r3.Vec{X: fx, Y: fy, Z: fz},
						r3.Vec{X: fx + 1, Y: fy, Z: fz},
						r3.Vec{X: fx + 1, Y: fy, Z: fz + 1},
						r3.Vec{X: fx, Y: fy, Z: fz + 1},
					)
				}
				if !inside(x, y+1, z) {
					m.addQuad(
						r3.Vec{X: fx, Y: fy + 1, Z: fz},
						r3.Vec{X: fx, Y: fy + 1, Z: fz + 1},
						r3.Vec{X: fx + 1, Y: fy + 1, Z: fz + 1},
						r3.Vec{X: fx + 1, Y: fy + 1, Z: fz},
					)
				}
				if !inside(x, y, z-1) {
					m.addQuad(
						r3.Vec{X: fx, Y: fy, Z: fz},
						r3.Vec{X: fx, Y: fy + 1, Z: fz},
						r3.Vec{X: fx + 1, Y: fy + 1, Z: fz},
						r3.Vec{X: fx + 1, Y: fy, Z: fz},
					)
				}
				if !inside(x, y, z+1) {
					m.addQuad(
						r3.Vec{X: fx, Y: fy, Z: fz + 1},
						r3.Vec{X: fx + 1, Y: fy, Z: fz + 1},
						r3.Vec{X: fx + 1, Y: fy + 1, Z: fz + 1},
						r3.Vec{X: fx, Y: fy + 1, Z: fz + 1},
					)
				}
			}
		}
	}
	return m
}

// addQuad appends a quad as two triangles. Corners are given in winding
// order, outward-facing by the right-hand rule.
func (m *Mesh) addQuad(a, b, c, d r3.Vec) {
	m.Triangles = append(m.Triangles,
		r3.Triangle{a, b, c},
		r3.Triangle{a, c, d},
	)
}
