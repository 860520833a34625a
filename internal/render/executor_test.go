package render

import (
	"sync"
	"testing"

	"github.com/voxelview/voxelview/internal/testutil"
)

func TestExecutorRunsCallsInOrder(t *testing.T) {
	e := newExecutor()
	defer e.stop()

	var got []int
	for i := 0; i < 10; i++ {
		i := i
		testutil.AssertNoError(t, e.do(func() { got = append(got, i) }))
	}

	for i, v := range got {
		if v != i {
			t.Fatalf("call order broken: got %v", got)
		}
	}
}

func TestExecutorSerialises(t *testing.T) {
	e := newExecutor()
	defer e.stop()

	// With every increment on the control goroutine, no updates are lost
	// even under contention. Run with -race to check exclusion too.
	var n int
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			e.do(func() { n++ })
		}()
	}
	wg.Wait()

	if n != 50 {
		t.Errorf("n = %d, want 50", n)
	}
}

func TestExecutorDoAfterStop(t *testing.T) {
	e := newExecutor()
	e.stop()

	err := e.do(func() { t.Error("call ran after stop") })
	testutil.AssertErrorIs(t, err, ErrManagerClosed)
}

func TestExecutorStopIsIdempotent(t *testing.T) {
	e := newExecutor()
	e.stop()
	e.stop()
}
