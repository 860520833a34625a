package meshstore

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/voxelview/voxelview/internal/labels"
	"github.com/voxelview/voxelview/internal/mesh"
	"github.com/voxelview/voxelview/internal/volume"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "meshcache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func extractTestMesh(t *testing.T, label labels.Label) (*volume.Volume, *mesh.Mesh) {
	t.Helper()
	v, err := volume.New(volume.Shape{4, 4, 4}, volume.U8)
	require.NoError(t, err)
	v.SetAt(1, 1, 1, label)
	v.SetAt(2, 1, 1, label)
	return v, mesh.Extract(v, label)
}

func TestPutGetRoundTrip(t *testing.T) {
	s := openTestStore(t)
	v, m := extractTestMesh(t, 3)
	hash := HashVolume(v)

	require.NoError(t, s.Put(hash, m))

	got, err := s.Get(hash, 3)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, labels.Label(3), got.Label)
	require.Equal(t, m.TriangleCount(), got.TriangleCount())
	require.Equal(t, m.Triangles, got.Triangles)
}

func TestGetMissReturnsNil(t *testing.T) {
	s := openTestStore(t)

	got, err := s.Get("no-such-hash", 3)
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestGetMissOnDifferentVolumeContent(t *testing.T) {
	s := openTestStore(t)
	v, m := extractTestMesh(t, 3)
	require.NoError(t, s.Put(HashVolume(v), m))

	// Mutating a single voxel invalidates the cache key.
	v.SetAt(0, 0, 0, 9)

	got, err := s.Get(HashVolume(v), 3)
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestPutReplacesExisting(t *testing.T) {
	s := openTestStore(t)
	v, m := extractTestMesh(t, 3)
	hash := HashVolume(v)

	require.NoError(t, s.Put(hash, m))
	require.NoError(t, s.Put(hash, m))

	n, err := s.Count()
	require.NoError(t, err)
	require.Equal(t, 1, n)
}

func TestPrune(t *testing.T) {
	s := openTestStore(t)
	v, m := extractTestMesh(t, 3)
	require.NoError(t, s.Put(HashVolume(v), m))

	// Everything currently in the store is younger than an hour.
	n, err := s.Prune(time.Hour)
	require.NoError(t, err)
	require.Zero(t, n)

	// A zero TTL makes every entry stale.
	n, err = s.Prune(0)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)
}

func TestHashVolumeDistinguishesShape(t *testing.T) {
	a, err := volume.New(volume.Shape{2, 3, 4}, volume.U8)
	require.NoError(t, err)
	b, err := volume.New(volume.Shape{4, 3, 2}, volume.U8)
	require.NoError(t, err)

	require.NotEqual(t, HashVolume(a), HashVolume(b))
}

func TestMigrateUpAndDown(t *testing.T) {
	// Open with a raw connection path and drive the schema purely through
	// migrations to verify the migration files are self-contained.
	s := openTestStore(t)

	require.NoError(t, s.MigrateUp("migrations"))

	version, dirty, err := s.MigrateVersion("migrations")
	require.NoError(t, err)
	require.False(t, dirty)
	require.EqualValues(t, 1, version)

	require.NoError(t, s.MigrateDown("migrations"))
}
