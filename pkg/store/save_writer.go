package store

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/cockroachdb/errors"
)

// SaveWriterConfig holds configuration for a save writer
type SaveWriterConfig struct {
	FilePath string      // Path to the save file
	FileMode os.FileMode // Permissions used when the file is created
}

// SaveWriter owns the open write handle of one save file. Every Write
// replaces the whole file content.
type SaveWriter struct {
	file   *os.File
	config SaveWriterConfig
	mutex  sync.Mutex
	size   int64
}

// NewSaveWriter opens (creating if needed) the file for writing. Existing
// content is kept until the first Write.
func NewSaveWriter(config SaveWriterConfig) (*SaveWriter, error) {
	if config.FileMode == 0 {
		config.FileMode = 0600
	}

	if err := os.MkdirAll(filepath.Dir(config.FilePath), 0750); err != nil {
		return nil, errors.Wrap(err, "create save directory")
	}

	file, err := os.OpenFile(config.FilePath, os.O_CREATE|os.O_WRONLY, config.FileMode)
	if err != nil {
		return nil, errors.Wrap(err, "open save file")
	}

	stat, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, errors.Wrap(err, "stat save file")
	}

	return &SaveWriter{
		file:   file,
		config: config,
		size:   stat.Size(),
	}, nil
}

// Write replaces the file content with record and syncs it to disk. The file
// is truncated to exactly len(record) so no bytes of a longer previous record
// survive.
func (w *SaveWriter) Write(record []byte) error {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	if err := w.file.Truncate(int64(len(record))); err != nil {
		return errors.Wrap(err, "truncate save file")
	}
	if _, err := w.file.WriteAt(record, 0); err != nil {
		return errors.Wrap(err, "write save file")
	}
	if err := w.file.Sync(); err != nil {
		return errors.Wrap(err, "sync save file")
	}

	w.size = int64(len(record))
	return nil
}

// Close syncs and closes the handle
func (w *SaveWriter) Close() error {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	if err := w.file.Sync(); err != nil {
		_ = w.file.Close()
		return err
	}
	return w.file.Close()
}

// Detached reports whether the file path no longer names the open handle,
// because the file was removed or replaced since it was opened.
func (w *SaveWriter) Detached() bool {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	onDisk, err := os.Stat(w.config.FilePath)
	if err != nil {
		return true
	}
	open, err := w.file.Stat()
	if err != nil {
		return true
	}
	return !os.SameFile(onDisk, open)
}

// Size returns the size of the last written record
func (w *SaveWriter) Size() int64 {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	return w.size
}

// Path returns the file path
func (w *SaveWriter) Path() string {
	return w.config.FilePath
}
