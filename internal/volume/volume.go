// Package volume owns the labeled voxel buffer that drives rendering.
//
// The buffer is stored internally in reversed (Z,Y,X) axis order to match
// the downstream rendering import convention; every accessor on Volume
// speaks the natural (X,Y,Z) order, applying the permutation on both read
// and write. Callers never observe the internal layout.
package volume

import (
	"encoding/binary"
	"fmt"

	"github.com/voxelview/voxelview/internal/labels"
)

// Shape is a volume extent in natural (X,Y,Z) order.
type Shape [3]int

// NumVoxels returns the total voxel count of the shape.
func (s Shape) NumVoxels() int { return s[0] * s[1] * s[2] }

// Reversed returns the shape in internal (Z,Y,X) order.
func (s Shape) Reversed() Shape { return Shape{s[2], s[1], s[0]} }

func (s Shape) String() string { return fmt.Sprintf("%dx%dx%d", s[0], s[1], s[2]) }

// Volume is a 3D array of object labels. Voxel value 0 is the transparent
// background. The buffer is exclusively owned: SetData copies, Data returns
// a copy, and workers receive Snapshot copies, so no external reference can
// mutate the internal state without going through the setter contract.
//
// Volume is not safe for concurrent use; the render manager serialises
// access on its control goroutine.
type Volume struct {
	shape Shape // natural order
	typ   ScalarType
	data  []byte // reversed (Z,Y,X) order, typ.BytesPerVoxel() per voxel
}

// New allocates a zeroed volume of the given natural-order shape.
// Returns an error wrapping ErrUnsupportedScalar for unknown scalar types.
func New(shape Shape, typ ScalarType) (*Volume, error) {
	if err := typ.Validate(); err != nil {
		return nil, err
	}
	for _, d := range shape {
		if d <= 0 {
			return nil, fmt.Errorf("volume: invalid shape %v", shape)
		}
	}
	return &Volume{
		shape: shape,
		typ:   typ,
		data:  make([]byte, shape.NumVoxels()*typ.BytesPerVoxel()),
	}, nil
}

// Shape returns the natural-order extent.
func (v *Volume) Shape() Shape { return v.shape }

// Scalar returns the per-voxel scalar representation.
func (v *Volume) Scalar() ScalarType { return v.typ }

// NumVoxels returns the total voxel count.
func (v *Volume) NumVoxels() int { return v.shape.NumVoxels() }

// internalIndex maps natural (x,y,z) to the flat index of the reversed
// internal layout.
func (v *Volume) internalIndex(x, y, z int) int {
	// Internal array shape is (Z,Y,X) in row-major order.
	return (z*v.shape[1]+y)*v.shape[0] + x
}

// naturalIndex maps natural (x,y,z) to the flat index of a natural-order
// row-major buffer, as callers hand to SetData.
func (v *Volume) naturalIndex(x, y, z int) int {
	return (x*v.shape[1]+y)*v.shape[2] + z
}

func (v *Volume) readVoxel(idx int) labels.Label {
	b := v.data[idx*v.typ.BytesPerVoxel():]
	switch v.typ {
	case U8:
		return labels.Label(b[0])
	case U16:
		return labels.Label(binary.LittleEndian.Uint16(b))
	case I16:
		return labels.Label(int16(binary.LittleEndian.Uint16(b)))
	default: // I32
		return labels.Label(int32(binary.LittleEndian.Uint32(b)))
	}
}

func (v *Volume) writeVoxel(idx int, l labels.Label) {
	b := v.data[idx*v.typ.BytesPerVoxel():]
	switch v.typ {
	case U8:
		b[0] = byte(l)
	case U16, I16:
		binary.LittleEndian.PutUint16(b, uint16(l))
	default: // I32
		binary.LittleEndian.PutUint32(b, uint32(l))
	}
}

// maxValue returns the largest label value the scalar type can store.
func (t ScalarType) maxValue() labels.Label {
	switch t {
	case U8:
		return 0xff
	case U16:
		return 0xffff
	case I16:
		return 0x7fff
	default: // I32
		return 0x7fffffff
	}
}

// At returns the label at natural coordinates (x,y,z).
func (v *Volume) At(x, y, z int) labels.Label {
	return v.readVoxel(v.internalIndex(x, y, z))
}

// SetAt stores a label at natural coordinates (x,y,z). It does not
// participate in change detection; bulk mutation goes through SetData.
func (v *Volume) SetAt(x, y, z int, l labels.Label) {
	v.writeVoxel(v.internalIndex(x, y, z), l)
}

// SetData replaces the volume contents with the given natural-order,
// row-major buffer. The data is compared element-wise against the current
// contents first: if nothing differs, the volume is untouched and changed is
// false. Otherwise the values are copied in (never aliased) and changed is
// true.
func (v *Volume) SetData(data []labels.Label) (changed bool, err error) {
	if len(data) != v.NumVoxels() {
		return false, fmt.Errorf("volume: data length %d does not match shape %v (%d voxels)",
			len(data), v.shape, v.NumVoxels())
	}
	max := v.typ.maxValue()
	for _, l := range data {
		if l > max {
			return false, fmt.Errorf("volume: label %d exceeds %s range", l, v.typ)
		}
	}

	sx, sy, sz := v.shape[0], v.shape[1], v.shape[2]
	for x := 0; x < sx; x++ {
		for y := 0; y < sy; y++ {
			for z := 0; z < sz; z++ {
				want := data[v.naturalIndex(x, y, z)]
				idx := v.internalIndex(x, y, z)
				if v.readVoxel(idx) != want {
					changed = true
					v.writeVoxel(idx, want)
				}
			}
		}
	}
	return changed, nil
}

// Data returns a natural-order, row-major copy of the volume contents.
func (v *Volume) Data() []labels.Label {
	out := make([]labels.Label, v.NumVoxels())
	sx, sy, sz := v.shape[0], v.shape[1], v.shape[2]
	for x := 0; x < sx; x++ {
		for y := 0; y < sy; y++ {
			for z := 0; z < sz; z++ {
				out[v.naturalIndex(x, y, z)] = v.readVoxel(v.internalIndex(x, y, z))
			}
		}
	}
	return out
}

// Labels returns the set of distinct nonzero labels present in the volume.
// The background label is always excluded.
func (v *Volume) Labels() labels.Set {
	s := make(labels.Set)
	for i := 0; i < v.NumVoxels(); i++ {
		if l := v.readVoxel(i); l != labels.Background {
			s.Add(l)
		}
	}
	return s
}

// Fill sets every voxel to the given label.
func (v *Volume) Fill(l labels.Label) {
	for i := 0; i < v.NumVoxels(); i++ {
		v.writeVoxel(i, l)
	}
}

// Snapshot returns a deep copy. Snapshots are handed to mesh extraction
// workers so that control-goroutine mutation cannot race a running batch.
func (v *Volume) Snapshot() *Volume {
	data := make([]byte, len(v.data))
	copy(data, v.data)
	return &Volume{shape: v.shape, typ: v.typ, data: data}
}
