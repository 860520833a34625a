package mesh

import (
	"bufio"
	"fmt"
	"io"
)

// EncodeOBJ writes the mesh as a Wavefront OBJ object. Vertices are not
// deduplicated; three vertices are emitted per triangle. Intended for
// offline inspection (cmd/meshdump), not for the rendering path.
func EncodeOBJ(w io.Writer, m *Mesh) error {
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintf(bw, "o label_%d\n", m.Label); err != nil {
		return err
	}
	for _, tri := range m.Triangles {
		for _, v := range tri {
			if _, err := fmt.Fprintf(bw, "v %g %g %g\n", v.X, v.Y, v.Z); err != nil {
				return err
			}
		}
	}
	for i := range m.Triangles {
		base := i*3 + 1 // OBJ indices are 1-based
		if _, err := fmt.Fprintf(bw, "f %d %d %d\n", base, base+1, base+2); err != nil {
			return err
		}
	}
	return bw.Flush()
}
