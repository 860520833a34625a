package labels

import "errors"

// ErrOutOfLabels is returned by Allocator.Request when every usable label is
// already in use. The caller must free labels before requesting more.
var ErrOutOfLabels = errors.New("labels: object pool exhausted")

// Allocator hands out object labels from the bounded pool [1, n).
//
// Invariant: every label in [1, n) is either available or used, never both.
// Request always returns the numerically smallest available label so that
// label reuse is predictable.
//
// Allocator is not safe for concurrent use; the render manager serialises
// access on its control goroutine.
type Allocator struct {
	used []bool // indexed by label; index 0 is the background, never allocated
	n    Label
}

// NewAllocator returns an allocator over [1, n). n is typically MaxObjects.
func NewAllocator(n int) *Allocator {
	if n < 2 {
		n = 2
	}
	return &Allocator{used: make([]bool, n), n: Label(n)}
}

// Request returns the smallest available label and marks it used.
func (a *Allocator) Request() (Label, error) {
	for l := Label(1); l < a.n; l++ {
		if !a.used[l] {
			a.used[l] = true
			return l, nil
		}
	}
	return 0, ErrOutOfLabels
}

// Free returns a label to the available pool. Freeing a label that is not
// currently used (including the background label) is a no-op.
func (a *Allocator) Free(l Label) {
	if l == 0 || l >= a.n {
		return
	}
	a.used[l] = false
}

// Reset returns every label to the available pool. This is the clear-all
// path used when the whole volume is wiped.
func (a *Allocator) Reset() {
	for i := range a.used {
		a.used[i] = false
	}
}

// Used returns the set of labels currently allocated.
func (a *Allocator) Used() Set {
	s := make(Set)
	for l := Label(1); l < a.n; l++ {
		if a.used[l] {
			s.Add(l)
		}
	}
	return s
}

// Available returns the set of labels currently free.
func (a *Allocator) Available() Set {
	s := make(Set)
	for l := Label(1); l < a.n; l++ {
		if !a.used[l] {
			s.Add(l)
		}
	}
	return s
}

// Capacity returns the number of usable labels, n-1.
func (a *Allocator) Capacity() int { return int(a.n) - 1 }
