package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/segmentio/ksuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/saveslot/pkg/codec"
	"github.com/ssargent/saveslot/pkg/storage"
)

func newArchivedStore(t *testing.T) *SaveStore {
	t.Helper()
	archive, err := storage.OpenSnapshotArchive(filepath.Join(t.TempDir(), "snapshots"))
	require.NoError(t, err)
	return newTestStore(t, Options{Archive: archive})
}

func TestSaveStore_SnapshotRestore(t *testing.T) {
	s := newArchivedStore(t)

	require.NoError(t, s.SaveString("slot", "first", DefaultSaveOptions()))
	id, err := s.Snapshot("slot")
	require.NoError(t, err)
	assert.NotEqual(t, ksuid.Nil, id)

	require.NoError(t, s.SaveString("slot", "second", SaveOptions{Compress: true}))
	loaded, ok := s.LoadString("slot")
	require.True(t, ok)
	assert.Equal(t, "second", loaded)

	snaps, err := s.Snapshots("slot")
	require.NoError(t, err)
	require.Len(t, snaps, 1)
	assert.Equal(t, id, snaps[0].ID)

	require.NoError(t, s.Restore("slot", id))
	loaded, ok = s.LoadString("slot")
	require.True(t, ok)
	assert.Equal(t, "first", loaded)
}

func TestSaveStore_RestoreKeepsLegacyBytes(t *testing.T) {
	s := newArchivedStore(t)

	path, err := s.FilePath("old", true)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, []byte("\x00legacyplain"), 0600))

	id, err := s.Snapshot("old")
	require.NoError(t, err)

	require.NoError(t, s.SaveString("old", "replaced", SaveOptions{}))
	require.NoError(t, s.Restore("old", id))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("\x00legacyplain"), raw)

	loaded, ok := s.LoadString("old")
	require.True(t, ok)
	assert.Equal(t, "legacyplain", loaded)
}

func TestSaveStore_SnapshotErrors(t *testing.T) {
	t.Run("no archive", func(t *testing.T) {
		s := newTestStore(t, Options{})
		require.NoError(t, s.SaveString("slot", "x", SaveOptions{}))

		_, err := s.Snapshot("slot")
		assert.Equal(t, ErrNoArchive, err)
		_, err = s.Snapshots("slot")
		assert.Equal(t, ErrNoArchive, err)
		assert.Equal(t, ErrNoArchive, s.Restore("slot", ksuid.New()))
	})

	t.Run("missing record", func(t *testing.T) {
		s := newArchivedStore(t)
		_, err := s.Snapshot("missing")
		assert.True(t, errors.Is(err, ErrNotFound))
	})

	t.Run("unknown snapshot", func(t *testing.T) {
		s := newArchivedStore(t)
		err := s.Restore("slot", ksuid.New())
		assert.True(t, errors.Is(err, storage.ErrSnapshotNotFound))
		assert.False(t, s.Exists("slot"))
	})

	t.Run("invalid name", func(t *testing.T) {
		s := newArchivedStore(t)
		_, err := s.Snapshots("../x")
		assert.True(t, errors.Is(err, ErrInvalidName))
		assert.True(t, errors.Is(s.Restore("", ksuid.New()), ErrInvalidName))
	})
}

func TestSaveStore_Inspect(t *testing.T) {
	s := newTestStore(t, Options{})

	require.NoError(t, s.SaveString("p1", "hello", SaveOptions{Encrypt: true}))
	info, err := s.Inspect("p1")
	require.NoError(t, err)
	assert.Equal(t, codec.LayoutCurrent, info.Layout)
	assert.True(t, info.Encrypted)
	assert.False(t, info.Compressed)
	assert.Equal(t, 18, info.HeaderSize)
	assert.Equal(t, 5, info.PayloadSize)

	path, err := s.FilePath("old", true)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, []byte("\x00legacyplain"), 0600))
	info, err = s.Inspect("old")
	require.NoError(t, err)
	assert.Equal(t, codec.LayoutLegacy, info.Layout)
	assert.Equal(t, 11, info.PayloadSize)

	_, err = s.Inspect("missing")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestSaveStore_PruneSnapshots(t *testing.T) {
	s := newArchivedStore(t)
	require.NoError(t, s.SaveString("slot", "x", SaveOptions{}))

	for i := 0; i < 3; i++ {
		_, err := s.Snapshot("slot")
		require.NoError(t, err)
	}

	removed, err := s.PruneSnapshots("slot", 1)
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	snaps, err := s.Snapshots("slot")
	require.NoError(t, err)
	assert.Len(t, snaps, 1)

	removed, err = s.PruneSnapshots("slot", 5)
	require.NoError(t, err)
	assert.Equal(t, 0, removed)

	_, err = newTestStore(t, Options{}).PruneSnapshots("slot", 1)
	assert.Equal(t, ErrNoArchive, err)
}

func TestSaveStore_DeleteSnapshot(t *testing.T) {
	s := newArchivedStore(t)
	require.NoError(t, s.SaveString("slot", "x", SaveOptions{}))

	first, err := s.Snapshot("slot")
	require.NoError(t, err)
	second, err := s.Snapshot("slot")
	require.NoError(t, err)

	require.NoError(t, s.DeleteSnapshot("slot", first))
	snaps, err := s.Snapshots("slot")
	require.NoError(t, err)
	require.Len(t, snaps, 1)
	assert.Equal(t, second, snaps[0].ID)

	err = s.Restore("slot", first)
	assert.True(t, errors.Is(err, storage.ErrSnapshotNotFound))

	// Deleting again is not an error
	assert.NoError(t, s.DeleteSnapshot("slot", first))

	assert.True(t, errors.Is(s.DeleteSnapshot("../x", second), ErrInvalidName))
	assert.Equal(t, ErrNoArchive, newTestStore(t, Options{}).DeleteSnapshot("slot", second))
}
