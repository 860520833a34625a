package meshstore

import (
	"bytes"
	"compress/gzip"
	"encoding/gob"
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/voxelview/voxelview/internal/mesh"
)

// serializeMesh compresses the triangle list using gob encoding and gzip
// compression. Voxel surface meshes are highly repetitive, so gzip earns its
// keep here.
func serializeMesh(m *mesh.Mesh) ([]byte, error) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	enc := gob.NewEncoder(gz)
	if err := enc.Encode(m.Triangles); err != nil {
		gz.Close()
		return nil, err
	}
	if err := gz.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// deserializeMesh decompresses and decodes a triangle list from a gob+gzip
// blob. The caller restores the label, which is not part of the blob.
func deserializeMesh(blob []byte) (*mesh.Mesh, error) {
	if len(blob) == 0 {
		return nil, fmt.Errorf("empty mesh blob")
	}
	gz, err := gzip.NewReader(bytes.NewReader(blob))
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip reader: %w", err)
	}
	defer gz.Close()

	var tris []r3.Triangle
	dec := gob.NewDecoder(gz)
	if err := dec.Decode(&tris); err != nil {
		return nil, fmt.Errorf("failed to decode mesh triangles: %w", err)
	}
	return &mesh.Mesh{Triangles: tris}, nil
}
