// Package storage keeps point-in-time copies of save records in a pebble
// database, keyed by save name and a time-ordered ksuid.
package storage

import (
	"time"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/pebble"
	"github.com/segmentio/ksuid"
)

const keyPrefix = "snap/"

// ErrSnapshotNotFound is returned when no snapshot exists for a name and id
var ErrSnapshotNotFound = errors.New("snapshot not found")

// Snapshot describes one archived record
type Snapshot struct {
	ID        ksuid.KSUID `json:"id"`
	Name      string      `json:"name"`
	Size      int         `json:"size"`
	CreatedAt time.Time   `json:"created_at"`
}

// SnapshotArchive stores raw record bytes exactly as they were on disk
type SnapshotArchive struct {
	db *pebble.DB
}

// OpenSnapshotArchive opens or creates an archive at path
func OpenSnapshotArchive(path string) (*SnapshotArchive, error) {
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, errors.Wrapf(err, "open snapshot archive %s", path)
	}
	return &SnapshotArchive{db: db}, nil
}

func namePrefix(name string) []byte {
	return []byte(keyPrefix + name + "/")
}

func snapshotKey(name string, id ksuid.KSUID) []byte {
	return append(namePrefix(name), id.String()...)
}

// Create archives record under name and returns its id
func (a *SnapshotArchive) Create(name string, record []byte) (ksuid.KSUID, error) {
	id, err := ksuid.NewRandom()
	if err != nil {
		return ksuid.Nil, errors.Wrap(err, "generate snapshot id")
	}
	if err := a.db.Set(snapshotKey(name, id), record, pebble.Sync); err != nil {
		return ksuid.Nil, errors.Wrapf(err, "write snapshot %s/%s", name, id)
	}
	return id, nil
}

// Read returns a copy of the archived record
func (a *SnapshotArchive) Read(name string, id ksuid.KSUID) ([]byte, error) {
	data, closer, err := a.db.Get(snapshotKey(name, id))
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, errors.Wrapf(ErrSnapshotNotFound, "%s/%s", name, id)
	}
	if err != nil {
		return nil, err
	}
	defer closer.Close()

	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// List returns the snapshots of name, oldest first
func (a *SnapshotArchive) List(name string) ([]Snapshot, error) {
	lower := namePrefix(name)
	upper := append([]byte(nil), lower...)
	upper[len(upper)-1]++

	iter, err := a.db.NewIter(&pebble.IterOptions{LowerBound: lower, UpperBound: upper})
	if err != nil {
		return nil, errors.Wrap(err, "open snapshot iterator")
	}
	defer iter.Close()

	var snapshots []Snapshot
	for iter.First(); iter.Valid(); iter.Next() {
		id, err := ksuid.Parse(string(iter.Key()[len(lower):]))
		if err != nil {
			// Foreign key under our prefix
			continue
		}
		snapshots = append(snapshots, Snapshot{
			ID:        id,
			Name:      name,
			Size:      len(iter.Value()),
			CreatedAt: id.Time(),
		})
	}
	if err := iter.Error(); err != nil {
		return nil, errors.Wrap(err, "iterate snapshots")
	}
	return snapshots, nil
}

// Delete removes one snapshot. Deleting a missing snapshot is not an error.
func (a *SnapshotArchive) Delete(name string, id ksuid.KSUID) error {
	return a.db.Delete(snapshotKey(name, id), pebble.Sync)
}

// Prune deletes all but the newest keep snapshots of name and returns how
// many were removed.
func (a *SnapshotArchive) Prune(name string, keep int) (int, error) {
	snapshots, err := a.List(name)
	if err != nil {
		return 0, err
	}
	if keep < 0 {
		keep = 0
	}
	if len(snapshots) <= keep {
		return 0, nil
	}

	batch := a.db.NewBatch()
	defer batch.Close()

	stale := snapshots[:len(snapshots)-keep]
	for _, s := range stale {
		if err := batch.Delete(snapshotKey(name, s.ID), nil); err != nil {
			return 0, err
		}
	}
	if err := batch.Commit(pebble.Sync); err != nil {
		return 0, errors.Wrap(err, "commit prune")
	}
	return len(stale), nil
}

// Close closes the underlying database
func (a *SnapshotArchive) Close() error {
	return a.db.Close()
}
