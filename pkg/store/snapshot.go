package store

import (
	"time"

	"github.com/cockroachdb/errors"
	"github.com/segmentio/ksuid"
	"github.com/sirupsen/logrus"

	"github.com/ssargent/saveslot/pkg/storage"
)

// Snapshot copies the current raw record of name into the archive
func (s *SaveStore) Snapshot(name string) (id ksuid.KSUID, err error) {
	start := time.Now()
	defer func() { s.metrics.RecordOperation("snapshot", err == nil, time.Since(start)) }()

	if s.archive == nil {
		return ksuid.Nil, ErrNoArchive
	}

	raw, err := s.readRaw(name)
	if err != nil {
		return ksuid.Nil, err
	}

	id, err = s.archive.Create(name, raw)
	if err != nil {
		s.logger.WithError(err).WithField("name", name).Warn("snapshot save data failed")
		return ksuid.Nil, err
	}
	return id, nil
}

// Snapshots lists the archived records of name, oldest first
func (s *SaveStore) Snapshots(name string) ([]storage.Snapshot, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	if s.archive == nil {
		return nil, ErrNoArchive
	}
	return s.archive.List(name)
}

// PruneSnapshots keeps the newest keep snapshots of name and deletes the rest
func (s *SaveStore) PruneSnapshots(name string, keep int) (int, error) {
	if err := validateName(name); err != nil {
		return 0, err
	}
	if s.archive == nil {
		return 0, ErrNoArchive
	}

	removed, err := s.archive.Prune(name, keep)
	if err != nil {
		s.logger.WithError(err).WithField("name", name).Warn("prune snapshots failed")
		return 0, err
	}
	if removed > 0 {
		s.logger.WithFields(logrus.Fields{"name": name, "removed": removed}).Debug("pruned snapshots")
	}
	return removed, nil
}

// DeleteSnapshot removes one archived record of name. Deleting a snapshot
// that does not exist is not an error.
func (s *SaveStore) DeleteSnapshot(name string, id ksuid.KSUID) error {
	if err := validateName(name); err != nil {
		return err
	}
	if s.archive == nil {
		return ErrNoArchive
	}

	if err := s.archive.Delete(name, id); err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{"name": name, "snapshot": id.String()}).Warn("delete snapshot failed")
		return errors.Wrapf(err, "delete snapshot %s", id)
	}
	return nil
}

// Restore replaces the stored record of name with an archived copy. The
// bytes are written back unchanged, in whichever layout they were archived.
func (s *SaveStore) Restore(name string, id ksuid.KSUID) (err error) {
	start := time.Now()
	defer func() { s.metrics.RecordOperation("restore", err == nil, time.Since(start)) }()

	if err = validateName(name); err != nil {
		return err
	}
	if s.archive == nil {
		return ErrNoArchive
	}

	raw, err := s.archive.Read(name, id)
	if err != nil {
		return err
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	w, err := s.writerLocked(name)
	if err != nil {
		return errors.Wrap(err, "open save file")
	}
	if err = w.Write(raw); err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{"name": name, "snapshot": id.String()}).Warn("restore save data failed")
		return err
	}
	return nil
}
