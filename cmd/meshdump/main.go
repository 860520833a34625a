// meshdump extracts surface meshes from a raw labeled volume and writes one
// Wavefront OBJ file per label. It can also warm the persistent mesh cache
// so an interactive session over the same volume starts with every object
// already meshed.
//
// The input file is raw uint8 voxel data in natural (X,Y,Z) flat order,
// X-major, as produced by an exported label volume.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/voxelview/voxelview/internal/labels"
	"github.com/voxelview/voxelview/internal/mesh"
	"github.com/voxelview/voxelview/internal/meshstore"
	"github.com/voxelview/voxelview/internal/version"
	"github.com/voxelview/voxelview/internal/volume"
)

func main() {
	in := flag.String("in", "", "Input raw uint8 volume file (required)")
	shapeArg := flag.String("shape", "", "Volume shape as X,Y,Z (required)")
	out := flag.String("out", ".", "Output directory for OBJ files")
	labelArg := flag.Uint("label", 0, "Extract only this label (0 = all labels)")
	workers := flag.Int("workers", 0, "Extraction worker count (0 = GOMAXPROCS)")
	cache := flag.String("cache", "", "Also warm the mesh cache database at this path")
	verbose := flag.Bool("v", false, "Enable diagnostic logging")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("meshdump %s (%s, built %s)\n", version.Version, version.GitSHA, version.BuildTime)
		return
	}
	if *in == "" || *shapeArg == "" {
		flag.Usage()
		os.Exit(2)
	}
	if *verbose {
		mesh.SetLogWriters(os.Stderr, os.Stderr, nil)
	} else {
		mesh.SetLogWriters(os.Stderr, nil, nil)
	}

	shape, err := parseShape(*shapeArg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid -shape: %v\n", err)
		os.Exit(1)
	}

	vol, err := loadVolume(*in, shape)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load volume: %v\n", err)
		os.Exit(1)
	}

	set := vol.Labels()
	if *labelArg != 0 {
		l := labels.Label(*labelArg)
		if !set.Has(l) {
			fmt.Fprintf(os.Stderr, "label %d has no voxels in %s\n", l, *in)
			os.Exit(1)
		}
		set = labels.NewSet(l)
	}
	if len(set) == 0 {
		fmt.Fprintln(os.Stderr, "volume contains no nonzero labels")
		os.Exit(1)
	}

	if err := os.MkdirAll(*out, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "create output dir: %v\n", err)
		os.Exit(1)
	}

	var store *meshstore.Store
	var volHash string
	if *cache != "" {
		store, err = meshstore.Open(*cache)
		if err != nil {
			fmt.Fprintf(os.Stderr, "open mesh cache: %v\n", err)
			os.Exit(1)
		}
		defer store.Close()
		volHash = meshstore.HashVolume(vol)
	}

	// Collect results from the worker pool; extraction order is not
	// deterministic but each label arrives exactly once.
	var mu sync.Mutex
	meshes := make(map[labels.Label]*mesh.Mesh)
	gen := mesh.NewGenerator(context.Background(), func(l labels.Label, m *mesh.Mesh) {
		if m == nil {
			return
		}
		mu.Lock()
		meshes[l] = m
		mu.Unlock()
	}, vol, set, *workers)
	<-gen.Done()

	fmt.Printf("label,triangles,obj_file\n")
	for _, l := range set.Sorted() {
		m := meshes[l]
		if m == nil {
			continue
		}
		name := fmt.Sprintf("label_%03d.obj", l)
		path := filepath.Join(*out, name)
		if err := writeOBJ(path, m); err != nil {
			fmt.Fprintf(os.Stderr, "write %s: %v\n", path, err)
			os.Exit(1)
		}
		if store != nil {
			if err := store.Put(volHash, m); err != nil {
				fmt.Fprintf(os.Stderr, "cache label %d: %v\n", l, err)
				os.Exit(1)
			}
		}
		fmt.Printf("%d,%d,%s\n", l, m.TriangleCount(), name)
	}
}

// parseShape parses "X,Y,Z" into a natural-order shape.
func parseShape(s string) (volume.Shape, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return volume.Shape{}, fmt.Errorf("want X,Y,Z, got %q", s)
	}
	var shape volume.Shape
	for i, p := range parts {
		d, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || d <= 0 {
			return volume.Shape{}, fmt.Errorf("bad dimension %q", p)
		}
		shape[i] = d
	}
	return shape, nil
}

// loadVolume reads a raw uint8 voxel file into a volume of the given shape.
func loadVolume(path string, shape volume.Shape) (*volume.Volume, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(raw) != shape.NumVoxels() {
		return nil, fmt.Errorf("file holds %d voxels, shape %v needs %d",
			len(raw), shape, shape.NumVoxels())
	}

	vol, err := volume.New(shape, volume.U8)
	if err != nil {
		return nil, err
	}
	data := make([]labels.Label, len(raw))
	for i, b := range raw {
		data[i] = labels.Label(b)
	}
	if _, err := vol.SetData(data); err != nil {
		return nil, err
	}
	return vol, nil
}

func writeOBJ(path string, m *mesh.Mesh) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := mesh.EncodeOBJ(f, m); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
