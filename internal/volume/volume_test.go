package volume

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/voxelview/voxelview/internal/labels"
)

func mustNew(t *testing.T, shape Shape) *Volume {
	t.Helper()
	v, err := New(shape, U8)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return v
}

func TestNewRejectsUnsupportedScalar(t *testing.T) {
	_, err := New(Shape{2, 2, 2}, ScalarType(99))
	if !errors.Is(err, ErrUnsupportedScalar) {
		t.Fatalf("expected ErrUnsupportedScalar, got %v", err)
	}
}

func TestNewRejectsInvalidShape(t *testing.T) {
	if _, err := New(Shape{0, 2, 2}, U8); err == nil {
		t.Fatal("expected error for zero dimension")
	}
}

func TestSetDataRoundTrip(t *testing.T) {
	// Non-cubic shape so an axis mix-up cannot cancel out.
	v := mustNew(t, Shape{2, 3, 4})

	data := make([]labels.Label, v.NumVoxels())
	for i := range data {
		data[i] = labels.Label(i % 7)
	}

	changed, err := v.SetData(data)
	if err != nil {
		t.Fatalf("SetData failed: %v", err)
	}
	if !changed {
		t.Error("SetData on fresh volume should report a change")
	}

	if diff := cmp.Diff(data, v.Data()); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestSetDataIdempotent(t *testing.T) {
	v := mustNew(t, Shape{3, 3, 3})
	data := make([]labels.Label, v.NumVoxels())
	data[5] = 2
	data[11] = 3

	if _, err := v.SetData(data); err != nil {
		t.Fatalf("SetData failed: %v", err)
	}

	// Setting the identical contents again must report no change.
	changed, err := v.SetData(data)
	if err != nil {
		t.Fatalf("SetData failed: %v", err)
	}
	if changed {
		t.Error("SetData with identical contents reported a change")
	}
}

func TestSetDataCopies(t *testing.T) {
	v := mustNew(t, Shape{2, 2, 2})
	data := make([]labels.Label, v.NumVoxels())
	data[0] = 5

	if _, err := v.SetData(data); err != nil {
		t.Fatalf("SetData failed: %v", err)
	}

	// Mutating the caller's buffer must not leak into the volume.
	data[0] = 9
	if got := v.Data()[0]; got != 5 {
		t.Errorf("volume voxel = %d after external mutation, want 5", got)
	}
}

func TestSetDataLengthMismatch(t *testing.T) {
	v := mustNew(t, Shape{2, 2, 2})
	if _, err := v.SetData(make([]labels.Label, 3)); err == nil {
		t.Fatal("expected length mismatch error")
	}
}

func TestSetDataRangeCheck(t *testing.T) {
	v := mustNew(t, Shape{2, 2, 2})
	data := make([]labels.Label, v.NumVoxels())
	data[0] = 300 // exceeds uint8
	if _, err := v.SetData(data); err == nil {
		t.Fatal("expected range error for label 300 in uint8 volume")
	}
}

func TestAtSetAtUseNaturalOrder(t *testing.T) {
	v := mustNew(t, Shape{4, 3, 2})

	v.SetAt(3, 1, 0, 9)
	if got := v.At(3, 1, 0); got != 9 {
		t.Fatalf("At(3,1,0) = %d, want 9", got)
	}

	// The same voxel must appear at the natural-order flat index in Data.
	data := v.Data()
	idx := (3*3+1)*2 + 0
	if data[idx] != 9 {
		t.Errorf("Data[%d] = %d, want 9", idx, data[idx])
	}
}

func TestLabelsExcludesBackground(t *testing.T) {
	v := mustNew(t, Shape{3, 3, 3})
	v.SetAt(0, 0, 0, 2)
	v.SetAt(1, 1, 1, 3)
	v.SetAt(2, 2, 2, 2)

	got := v.Labels()
	want := labels.NewSet(2, 3)
	if diff := cmp.Diff(want.Sorted(), got.Sorted()); diff != "" {
		t.Errorf("Labels mismatch (-want +got):\n%s", diff)
	}
}

func TestLabelsEmptyVolume(t *testing.T) {
	v := mustNew(t, Shape{3, 3, 3})
	if got := v.Labels(); len(got) != 0 {
		t.Errorf("Labels on zero volume = %v, want empty", got.Sorted())
	}
}

func TestSnapshotIsIndependent(t *testing.T) {
	v := mustNew(t, Shape{2, 2, 2})
	v.SetAt(0, 0, 0, 4)

	snap := v.Snapshot()
	v.SetAt(0, 0, 0, 7)

	if got := snap.At(0, 0, 0); got != 4 {
		t.Errorf("snapshot voxel = %d after source mutation, want 4", got)
	}
}

func TestWideScalarTypes(t *testing.T) {
	for _, typ := range []ScalarType{U16, I16, I32} {
		v, err := New(Shape{2, 2, 2}, typ)
		if err != nil {
			t.Fatalf("New(%v) failed: %v", typ, err)
		}
		v.SetAt(1, 1, 1, 255)
		if got := v.At(1, 1, 1); got != 255 {
			t.Errorf("%v: At = %d, want 255", typ, got)
		}
	}
}

func TestFill(t *testing.T) {
	v := mustNew(t, Shape{2, 2, 2})
	v.Fill(3)
	if got := len(v.Labels()); got != 1 {
		t.Fatalf("distinct labels after Fill(3) = %d, want 1", got)
	}
	v.Fill(0)
	if got := len(v.Labels()); got != 0 {
		t.Fatalf("distinct labels after Fill(0) = %d, want 0", got)
	}
}
