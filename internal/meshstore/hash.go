package meshstore

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"

	"github.com/voxelview/voxelview/internal/volume"
)

// HashVolume returns a hex content hash over the volume's shape and voxel
// values. Two volumes hash equal exactly when every voxel matches, which is
// the validity condition for a cached mesh.
func HashVolume(v *volume.Volume) string {
	h := sha256.New()

	var dims [12]byte
	shape := v.Shape()
	for i, d := range shape {
		binary.LittleEndian.PutUint32(dims[i*4:], uint32(d))
	}
	h.Write(dims[:])

	var vox [4]byte
	for _, l := range v.Data() {
		binary.LittleEndian.PutUint32(vox[:], uint32(l))
		h.Write(vox[:])
	}
	return fmt.Sprintf("%x", h.Sum(nil))
}
