// Package meshstore persists extracted meshes in a sqlite database so that a
// later session can skip regeneration when the voxel data has not changed.
//
// Cache keying: (label, volume content hash). The in-scene cache is keyed by
// label alone, which is a known staleness risk across sessions; the
// persistent cache avoids it by only serving a mesh when the volume bytes
// are identical to those it was extracted from.
package meshstore

import (
	"database/sql"
	"errors"
	"time"

	_ "embed"

	_ "modernc.org/sqlite"

	"github.com/voxelview/voxelview/internal/labels"
	"github.com/voxelview/voxelview/internal/mesh"
	"github.com/voxelview/voxelview/internal/monitoring"
)

var logf = monitoring.Prefixed("[meshstore]")

// schema.sql contains the SQL statements for creating the mesh cache schema.
//
//go:embed schema.sql
var schemaSQL string

// Store is a sqlite-backed mesh cache.
type Store struct {
	*sql.DB
}

// Open opens (creating if necessary) the mesh cache database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, err
	}

	logf("opened mesh cache at %s", path)
	return &Store{db}, nil
}

// Put inserts or replaces the cached mesh for (label, volumeHash).
func (s *Store) Put(volumeHash string, m *mesh.Mesh) error {
	if m == nil {
		return nil
	}
	blob, err := serializeMesh(m)
	if err != nil {
		return err
	}
	stmt := `INSERT OR REPLACE INTO mesh_cache (label, volume_hash, triangle_count, mesh_blob, created_unix_nanos)
			 VALUES (?, ?, ?, ?, ?)`
	_, err = s.Exec(stmt, int64(m.Label), volumeHash, m.TriangleCount(), blob, time.Now().UnixNano())
	return err
}

// Get returns the cached mesh for (label, volumeHash), or nil when the cache
// has no entry for that exact volume content.
func (s *Store) Get(volumeHash string, label labels.Label) (*mesh.Mesh, error) {
	var blob []byte
	err := s.QueryRow(
		`SELECT mesh_blob FROM mesh_cache WHERE label = ? AND volume_hash = ?`,
		int64(label), volumeHash,
	).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	m, err := deserializeMesh(blob)
	if err != nil {
		return nil, err
	}
	m.Label = label
	return m, nil
}

// Prune deletes cache entries older than ttl and returns how many were
// removed. Stale entries accumulate as the volume is edited; callers run
// this periodically or at shutdown.
func (s *Store) Prune(ttl time.Duration) (int64, error) {
	cutoff := time.Now().Add(-ttl).UnixNano()
	res, err := s.Exec(`DELETE FROM mesh_cache WHERE created_unix_nanos < ?`, cutoff)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if n > 0 {
		logf("pruned %d cache entries older than %v", n, ttl)
	}
	return n, nil
}

// Count returns the number of cached meshes.
func (s *Store) Count() (int, error) {
	var n int
	err := s.QueryRow(`SELECT COUNT(*) FROM mesh_cache`).Scan(&n)
	return n, err
}
