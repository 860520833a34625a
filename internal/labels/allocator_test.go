package labels

import (
	"errors"
	"math/rand"
	"testing"
)

func TestAllocatorRequestReturnsSmallest(t *testing.T) {
	a := NewAllocator(MaxObjects)

	first, err := a.Request()
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	if first != 1 {
		t.Errorf("first request = %d, want 1", first)
	}

	second, err := a.Request()
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	if second != 2 {
		t.Errorf("second request = %d, want 2", second)
	}

	// Freeing 1 makes it the smallest available again.
	a.Free(1)
	third, err := a.Request()
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	if third != 1 {
		t.Errorf("request after Free(1) = %d, want 1", third)
	}
}

func TestAllocatorExhaustion(t *testing.T) {
	a := NewAllocator(MaxObjects)

	for i := 0; i < MaxObjects-1; i++ {
		if _, err := a.Request(); err != nil {
			t.Fatalf("request %d failed: %v", i+1, err)
		}
	}

	// 256th request must fail: only 255 usable labels exist.
	_, err := a.Request()
	if !errors.Is(err, ErrOutOfLabels) {
		t.Fatalf("expected ErrOutOfLabels after %d requests, got %v", MaxObjects-1, err)
	}
}

func TestAllocatorResetRestoresInitialState(t *testing.T) {
	a := NewAllocator(MaxObjects)
	for i := 0; i < 10; i++ {
		if _, err := a.Request(); err != nil {
			t.Fatalf("Request failed: %v", err)
		}
	}

	a.Reset()

	if got := len(a.Used()); got != 0 {
		t.Errorf("used count after Reset = %d, want 0", got)
	}
	l, err := a.Request()
	if err != nil {
		t.Fatalf("Request after Reset failed: %v", err)
	}
	if l != 1 {
		t.Errorf("request after Reset = %d, want 1", l)
	}
}

func TestAllocatorFreeUnusedIsNoop(t *testing.T) {
	a := NewAllocator(MaxObjects)

	a.Free(42)         // never requested
	a.Free(0)          // background, never allocatable
	a.Free(MaxObjects) // out of range

	if got := len(a.Used()); got != 0 {
		t.Errorf("used count = %d, want 0", got)
	}
}

// TestAllocatorPartitionInvariant drives the allocator through a random
// request/free sequence and checks that available and used always partition
// [1, MaxObjects).
func TestAllocatorPartitionInvariant(t *testing.T) {
	a := NewAllocator(MaxObjects)
	rng := rand.New(rand.NewSource(7))

	check := func() {
		used := a.Used()
		avail := a.Available()
		if len(used)+len(avail) != a.Capacity() {
			t.Fatalf("|used|+|available| = %d, want %d", len(used)+len(avail), a.Capacity())
		}
		for l := range used {
			if avail.Has(l) {
				t.Fatalf("label %d in both used and available", l)
			}
		}
	}

	var held []Label
	for i := 0; i < 500; i++ {
		if rng.Intn(2) == 0 && len(held) < a.Capacity() {
			l, err := a.Request()
			if err != nil {
				t.Fatalf("Request failed: %v", err)
			}
			held = append(held, l)
		} else if len(held) > 0 {
			j := rng.Intn(len(held))
			a.Free(held[j])
			held = append(held[:j], held[j+1:]...)
		}
		check()
	}
}

func TestLabelClass(t *testing.T) {
	cases := []struct {
		label Label
		want  Class
	}{
		{Background, ClassBackground},
		{Current, ClassInProgress},
		{2, ClassCommitted},
		{255, ClassCommitted},
	}
	for _, c := range cases {
		if got := c.label.Class(); got != c.want {
			t.Errorf("label %d class = %v, want %v", c.label, got, c.want)
		}
	}
}

func TestSetDiffAndSorted(t *testing.T) {
	a := NewSet(1, 2, 3, 5)
	b := NewSet(2, 5)

	d := a.Diff(b)
	if len(d) != 2 || !d.Has(1) || !d.Has(3) {
		t.Errorf("Diff = %v, want {1 3}", d.Sorted())
	}

	sorted := a.Sorted()
	for i := 1; i < len(sorted); i++ {
		if sorted[i-1] >= sorted[i] {
			t.Fatalf("Sorted not ascending: %v", sorted)
		}
	}
}
