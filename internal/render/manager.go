package render

import (
	"context"
	"image/color"
	"math/rand"
	"time"

	"github.com/voxelview/voxelview/internal/config"
	"github.com/voxelview/voxelview/internal/labels"
	"github.com/voxelview/voxelview/internal/mesh"
	"github.com/voxelview/voxelview/internal/meshstore"
	"github.com/voxelview/voxelview/internal/volume"
)

// PassStats summarises one reconciliation pass for monitoring.
type PassStats struct {
	When         time.Time
	VolumeLabels int // distinct nonzero labels in the volume
	Removals     int
	CachedAdds   int // attached from the scene's geometry cache
	StoreHits    int // attached from the persistent mesh cache
	Generated    int // labels handed to the extraction batch
	Superseded   bool
	Duration     time.Duration
}

// Manager keeps a Scene's rendered objects consistent with the labels
// present in a voxel volume. Edits mark the volume dirty; each Update (or
// inline reconcile after SetVolume) diffs the volume's label set against the
// scene and applies removals and cached additions synchronously, while
// labels needing fresh geometry go to an asynchronous extraction batch.
//
// All state lives behind a single control goroutine. Public methods post
// onto it and wait, so Manager is safe for concurrent use; after Close every
// method returns ErrManagerClosed.
type Manager struct {
	scene Scene
	cfg   *config.RenderConfig
	exec  *executor

	rng   *rand.Rand
	alloc *labels.Allocator
	cmap  labels.ColorMap

	vol   *volume.Volume
	ready bool
	dirty bool

	store *meshstore.Store

	// generation identifies the newest extraction batch. Results carrying
	// an older generation are from a superseded batch and are dropped.
	generation  uint64
	batch       *mesh.Generator
	batchCancel context.CancelFunc

	passHook func(PassStats)
}

// NewManager creates a Manager reconciling against the given scene. A nil
// config selects all defaults. When the config enables the persistent mesh
// cache, the store is opened here; failure to open degrades to running
// without it.
func NewManager(scene Scene, cfg *config.RenderConfig) *Manager {
	m := &Manager{
		scene: scene,
		cfg:   cfg,
		exec:  newExecutor(),
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
		alloc: labels.NewAllocator(cfg.GetMaxObjects()),
		cmap:  labels.NewColorMap(),
	}
	if cfg.GetCacheEnabled() {
		st, err := meshstore.Open(cfg.GetCachePath())
		if err != nil {
			opsf("persistent mesh cache unavailable at %s: %v", cfg.GetCachePath(), err)
		} else {
			m.store = st
		}
	}
	return m
}

// AttachStore replaces the persistent mesh cache. Pass nil to detach. The
// Manager takes ownership and closes the store on Close.
func (m *Manager) AttachStore(s *meshstore.Store) error {
	return m.exec.do(func() { m.store = s })
}

// SetPassHook installs a callback invoked after every reconciliation pass.
// The hook runs on the control goroutine and must return quickly.
func (m *Manager) SetPassHook(fn func(PassStats)) error {
	return m.exec.do(func() { m.passHook = fn })
}

// Setup allocates a zeroed uint8 volume of the given shape and readies the
// manager. The scene is not touched until the next Update, which removes
// any objects left over from a previous volume.
func (m *Manager) Setup(shape volume.Shape) error {
	return m.SetupWithScalar(shape, volume.U8)
}

// SetupWithScalar is Setup with an explicit voxel scalar type.
func (m *Manager) SetupWithScalar(shape volume.Shape, typ volume.ScalarType) error {
	var err error
	if derr := m.exec.do(func() { err = m.setup(shape, typ) }); derr != nil {
		return derr
	}
	return err
}

func (m *Manager) setup(shape volume.Shape, typ volume.ScalarType) error {
	v, err := volume.New(shape, typ)
	if err != nil {
		return err
	}
	m.vol = v
	m.ready = true
	m.dirty = true
	diagf("setup: shape=%v scalar=%v", shape, typ)
	return nil
}

// Update runs a reconciliation pass if the volume has changed since the
// last one. A no-op when nothing is dirty or Setup has not run.
func (m *Manager) Update() error {
	return m.exec.do(m.reconcile)
}

// SetVolume replaces the voxel data, given in natural (X,Y,Z) flat order.
// If any voxel actually changed, a reconciliation pass runs before
// SetVolume returns.
func (m *Manager) SetVolume(data []labels.Label) error {
	var err error
	derr := m.exec.do(func() {
		if !m.ready {
			return
		}
		var changed bool
		changed, err = m.vol.SetData(data)
		if err != nil {
			return
		}
		if changed {
			m.dirty = true
			m.reconcile()
		}
	})
	if derr != nil {
		return derr
	}
	return err
}

// Volume returns a snapshot of the current voxel volume, or nil before
// Setup. Mutating the snapshot does not affect the manager.
func (m *Manager) Volume() (*volume.Volume, error) {
	var snap *volume.Volume
	if err := m.exec.do(func() {
		if m.vol != nil {
			snap = m.vol.Snapshot()
		}
	}); err != nil {
		return nil, err
	}
	return snap, nil
}

// AddObject allocates the smallest free object label and assigns it a
// color; pass nil to get a random fully saturated one. The object becomes
// visible once its label is painted into the volume and a pass runs.
func (m *Manager) AddObject(c *color.RGBA) (labels.Label, error) {
	var l labels.Label
	var err error
	derr := m.exec.do(func() {
		l, err = m.alloc.Request()
		if err != nil {
			return
		}
		if c != nil {
			m.cmap.Set(l, *c)
		} else {
			m.cmap.Set(l, labels.RandomColor(m.rng))
		}
		tracef("object %d allocated", l)
	})
	if derr != nil {
		return 0, derr
	}
	return l, err
}

// RemoveObject returns the label to the free pool. The rendered object
// disappears on the pass after its voxels are erased from the volume; the
// label's color is kept so a re-added object looks the same.
func (m *Manager) RemoveObject(l labels.Label) error {
	return m.exec.do(func() {
		m.alloc.Free(l)
		tracef("object %d freed", l)
	})
}

// SetColor assigns a display color to a label.
func (m *Manager) SetColor(l labels.Label, c color.RGBA) error {
	return m.exec.do(func() { m.cmap.Set(l, c) })
}

// Color returns the display color assigned to a label, if any.
func (m *Manager) Color(l labels.Label) (color.RGBA, bool, error) {
	var c color.RGBA
	var ok bool
	err := m.exec.do(func() { c, ok = m.cmap.Get(l) })
	return c, ok, err
}

// Clear zeroes the volume and returns every object label to the pool. No
// reconciliation pass runs: the scene keeps its objects until the next
// Update, matching the wipe-then-rebuild flow of a full reload.
func (m *Manager) Clear() error {
	return m.exec.do(func() {
		if m.vol != nil {
			m.vol.Fill(labels.Background)
		}
		m.alloc.Reset()
		m.dirty = true
		diagf("cleared volume and label pool")
	})
}

// HandleSceneReinitialized rebuilds manager state after the scene was torn
// down and recreated, allocating a fresh volume of the given shape and
// running a pass immediately.
func (m *Manager) HandleSceneReinitialized(shape volume.Shape) error {
	var err error
	derr := m.exec.do(func() {
		if err = m.setup(shape, volume.U8); err != nil {
			return
		}
		m.reconcile()
	})
	if derr != nil {
		return derr
	}
	return err
}

// Close cancels any running extraction batch and stops the control
// goroutine. Subsequent calls on the Manager return ErrManagerClosed.
// Close is idempotent.
func (m *Manager) Close() error {
	var st *meshstore.Store
	err := m.exec.do(func() {
		// Invalidate in-flight results so none reach the scene during the
		// shutdown window.
		m.generation++
		if m.batch != nil {
			m.batch.Cancel()
			m.batch = nil
			// The batch's sentinel will never be delivered once the
			// executor stops, so release the busy state here.
			m.scene.SetBusy(false)
		}
		if m.batchCancel != nil {
			m.batchCancel()
			m.batchCancel = nil
		}
		st = m.store
		m.store = nil
	})
	m.exec.stop()
	if st != nil {
		if cerr := st.Close(); cerr != nil {
			opsf("closing mesh cache: %v", cerr)
		}
	}
	if err != nil && err != ErrManagerClosed {
		return err
	}
	return nil
}

// reconcile runs one pass. Control goroutine only.
//
// The dirty flag is cleared before diffing: an edit arriving while the pass
// runs re-marks it and is picked up by the next pass instead of being lost.
func (m *Manager) reconcile() {
	if !m.ready || !m.dirty {
		return
	}
	m.dirty = false
	start := time.Now()

	newSet := m.vol.Labels()
	visible := m.scene.VisibleObjects()
	plan := BuildPlan(newSet, visible, m.scene.HasObject)

	stats := PassStats{
		When:         start,
		VolumeLabels: len(newSet),
		Removals:     len(plan.Removals),
		CachedAdds:   len(plan.CachedAdds),
	}

	for _, l := range plan.Removals {
		m.scene.RemoveObject(l)
		tracef("pass: removed object %d", l)
	}
	for _, l := range plan.CachedAdds {
		m.scene.AddObject(l, nil)
		tracef("pass: re-attached cached object %d", l)
	}

	// The persistent cache can satisfy committed labels whose volume bytes
	// are unchanged since the mesh was stored. The in-progress label is
	// never served from it.
	generate := plan.Generate
	var volHash string
	if m.store != nil && len(generate) > 0 {
		volHash = meshstore.HashVolume(m.vol)
		pending := make([]labels.Label, 0, len(generate))
		for _, l := range generate {
			if l == labels.Current {
				pending = append(pending, l)
				continue
			}
			cached, err := m.store.Get(volHash, l)
			if err != nil {
				opsf("mesh cache lookup for label %d: %v", l, err)
			}
			if cached == nil {
				pending = append(pending, l)
				continue
			}
			m.scene.AddObject(l, cached)
			stats.StoreHits++
			tracef("pass: attached object %d from persistent cache", l)
		}
		generate = pending
	}
	stats.Generated = len(generate)

	// Every pass supersedes an in-flight batch, fresh extraction work or
	// not: the old batch was cut from a volume that no longer exists, so
	// its remaining results must not reach the scene. Bumping the
	// generation invalidates them on delivery.
	if m.batch != nil {
		diagf("pass: superseding batch %s", m.batch.ID())
		m.batch.Cancel()
		m.batch = nil
		m.generation++
		stats.Superseded = true
		if m.batchCancel != nil {
			m.batchCancel()
			m.batchCancel = nil
		}
	}

	if len(generate) > 0 {
		m.generation++
		gen := m.generation
		m.scene.SetBusy(true)

		ctx := context.Background()
		if d := m.cfg.GetBatchTimeout(); d > 0 {
			ctx, m.batchCancel = context.WithTimeout(ctx, d)
		}

		// Workers get a snapshot so concurrent volume edits cannot tear the
		// data mid-extraction; results are re-posted onto the control
		// goroutine and dropped if a newer batch has started since.
		snap := m.vol.Snapshot()
		cb := func(l labels.Label, mm *mesh.Mesh) {
			if err := m.exec.do(func() { m.onMeshGenerated(gen, volHash, l, mm) }); err != nil {
				tracef("dropping mesh for label %d: %v", l, err)
			}
		}
		m.batch = mesh.NewGenerator(ctx, cb, snap, labels.NewSet(generate...), m.cfg.GetMeshWorkers())
	} else if stats.Superseded {
		// The cancelled batch's sentinel will be dropped as stale, and no
		// replacement batch is coming to clear the busy state.
		m.scene.SetBusy(false)
	}

	stats.Duration = time.Since(start)
	diagf("pass: labels=%d removed=%d cached=%d store=%d generating=%d took=%v",
		stats.VolumeLabels, stats.Removals, stats.CachedAdds, stats.StoreHits,
		stats.Generated, stats.Duration)
	if m.passHook != nil {
		m.passHook(stats)
	}
}

// onMeshGenerated handles one batch callback. Control goroutine only.
func (m *Manager) onMeshGenerated(gen uint64, volHash string, l labels.Label, mm *mesh.Mesh) {
	if gen != m.generation {
		tracef("dropping label %d result from superseded batch", l)
		return
	}

	if l == labels.Background && mm == nil {
		m.scene.SetBusy(false)
		m.batch = nil
		if m.batchCancel != nil {
			m.batchCancel()
			m.batchCancel = nil
		}
		return
	}

	m.scene.AddObject(l, mm)
	if m.store != nil && l != labels.Current && volHash != "" {
		if err := m.store.Put(volHash, mm); err != nil {
			opsf("persisting mesh for label %d: %v", l, err)
		}
	}
}
