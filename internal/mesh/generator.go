package mesh

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/voxelview/voxelview/internal/labels"
	"github.com/voxelview/voxelview/internal/volume"
)

// Callback receives one extracted mesh per label, and finally the
// batch-finished sentinel (labels.Background, nil). Callbacks are invoked
// from generator worker goroutines; callers that need single-threaded
// delivery wrap the callback to re-post onto their own executor.
type Callback func(label labels.Label, m *Mesh)

// Generator runs one asynchronous mesh extraction batch over a set of
// labels. Construction starts the batch immediately; there is no separate
// start step.
type Generator struct {
	id      string
	labels  labels.Set
	started time.Time

	cancel context.CancelFunc
	done   chan struct{}
}

// NewGenerator starts extraction of every label in the set from the given
// volume and returns immediately. The volume must not be mutated while the
// batch runs; hand in a Snapshot. workers <= 0 selects GOMAXPROCS.
//
// The callback is invoked once per label and then once with
// (labels.Background, nil) when the batch is finished — including when it
// was cancelled, so consumers can always clear busy state.
func NewGenerator(ctx context.Context, cb Callback, vol *volume.Volume, set labels.Set, workers int) *Generator {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > len(set) && len(set) > 0 {
		workers = len(set)
	}

	ctx, cancel := context.WithCancel(ctx)
	g := &Generator{
		id:      uuid.NewString(),
		labels:  set.Clone(),
		started: time.Now(),
		cancel:  cancel,
		done:    make(chan struct{}),
	}

	diagf("batch %s: starting, labels=%v, workers=%d", g.id, g.labels.Sorted(), workers)

	work := make(chan labels.Label)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for label := range work {
				if ctx.Err() != nil {
					tracef("batch %s: label %d skipped, batch cancelled", g.id, label)
					continue
				}
				start := time.Now()
				m := Extract(vol, label)
				tracef("batch %s: label %d extracted, triangles=%d, took=%v",
					g.id, label, m.TriangleCount(), time.Since(start))
				if ctx.Err() != nil {
					continue
				}
				cb(label, m)
			}
		}()
	}

	go func() {
		defer close(g.done)
		for _, label := range g.labels.Sorted() {
			work <- label
		}
		close(work)
		wg.Wait()

		if ctx.Err() != nil {
			opsf("batch %s: cancelled after %v", g.id, time.Since(g.started))
		} else {
			diagf("batch %s: finished, labels=%d, took=%v", g.id, len(g.labels), time.Since(g.started))
		}
		cancel()
		// Sentinel is delivered unconditionally so the consumer's busy state
		// is always cleared, even for a superseded batch.
		cb(labels.Background, nil)
	}()

	return g
}

// ID returns the batch identifier used in logs.
func (g *Generator) ID() string { return g.id }

// Labels returns the labels this batch was asked to extract.
func (g *Generator) Labels() labels.Set { return g.labels.Clone() }

// Cancel stops the batch. Labels not yet extracted are skipped; the
// completion sentinel is still delivered.
func (g *Generator) Cancel() { g.cancel() }

// Done returns a channel closed once the sentinel has been delivered.
func (g *Generator) Done() <-chan struct{} { return g.done }
