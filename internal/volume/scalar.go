package volume

import "fmt"

// ScalarType identifies the per-voxel scalar representation of a volume.
// The set matches what the downstream rendering import path can ingest;
// anything else fails setup.
type ScalarType int

const (
	// U8 is an unsigned 8-bit label volume, the default for object editing.
	U8 ScalarType = iota
	// U16 is an unsigned 16-bit label volume.
	U16
	// I16 is a signed 16-bit label volume.
	I16
	// I32 is a signed 32-bit label volume.
	I32

	scalarTypeCount
)

// ErrUnsupportedScalar is wrapped by errors returned for volume element types
// with no supported scalar representation. Fatal to setup, not recoverable.
var ErrUnsupportedScalar = fmt.Errorf("volume: unsupported scalar type")

func (t ScalarType) String() string {
	switch t {
	case U8:
		return "uint8"
	case U16:
		return "uint16"
	case I16:
		return "int16"
	case I32:
		return "int32"
	default:
		return fmt.Sprintf("ScalarType(%d)", int(t))
	}
}

// BytesPerVoxel returns the storage width of one voxel.
func (t ScalarType) BytesPerVoxel() int {
	switch t {
	case U8:
		return 1
	case U16, I16:
		return 2
	case I32:
		return 4
	default:
		return 0
	}
}

// Validate returns an error wrapping ErrUnsupportedScalar when t is not a
// supported scalar representation.
func (t ScalarType) Validate() error {
	if t < 0 || t >= scalarTypeCount {
		return fmt.Errorf("%w: %d", ErrUnsupportedScalar, int(t))
	}
	return nil
}
