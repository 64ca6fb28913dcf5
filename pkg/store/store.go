package store

import (
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"

	"github.com/ssargent/saveslot/pkg/codec"
	"github.com/ssargent/saveslot/pkg/metrics"
)

// SaveStore maps save names to files under a directory and frames their
// content with the record codec.
//
// A SaveStore keeps one open write handle per name, opened on the first save
// and reused by later saves. The handle is closed before that name is loaded,
// deleted or snapshotted. Writes and reads of a save file happen under the
// store lock, so a load never observes a partially written record.
type SaveStore struct {
	storePath string
	extension string
	fileMode  os.FileMode
	codec     *codec.RecordCodec
	logger    logrus.FieldLogger
	metrics   *metrics.Metrics
	archive   Archive

	writers map[string]*SaveWriter
	mutex   sync.Mutex
	closed  bool
}

// NewSaveStore creates a save store. Providers left nil fall back to AES and Deflate.
func NewSaveStore(opts Options) (*SaveStore, error) {
	if strings.TrimSpace(opts.StorePath) == "" {
		return nil, ErrInvalidStorePath
	}

	ext := strings.TrimPrefix(opts.Extension, ".")
	if ext == "" {
		ext = DefaultExtension
	}

	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	fileMode := opts.FileMode
	if fileMode == 0 {
		fileMode = 0600
	}

	return &SaveStore{
		storePath: opts.StorePath,
		extension: ext,
		fileMode:  fileMode,
		codec:     codec.NewRecordCodec(opts.Crypto, opts.Compression),
		logger:    logger,
		metrics:   opts.Metrics,
		archive:   opts.Archive,
		writers:   make(map[string]*SaveWriter),
	}, nil
}

// StorePath returns the directory holding the save files
func (s *SaveStore) StorePath() string {
	return s.storePath
}

// Codec returns the record codec used by the store
func (s *SaveStore) Codec() *codec.RecordCodec {
	return s.codec
}

// validateName rejects names that are empty or would resolve outside the store
func validateName(name string) error {
	if strings.TrimSpace(name) == "" || name == "." || name == ".." {
		return ErrInvalidName
	}
	if strings.ContainsAny(name, `/\`) || strings.ContainsRune(name, 0) {
		return errors.Wrapf(ErrInvalidName, "%q contains a path separator", name)
	}
	return nil
}

// FilePath returns the path of the save file for name, optionally creating
// the store directory.
func (s *SaveStore) FilePath(name string, createDir bool) (string, error) {
	if err := validateName(name); err != nil {
		return "", err
	}

	if createDir {
		if err := os.MkdirAll(s.storePath, 0750); err != nil {
			s.logger.WithError(err).WithField("path", s.storePath).Warn("create save directory failed")
			return "", errors.Wrap(err, "create save directory")
		}
	}

	return filepath.Join(s.storePath, name+"."+s.extension), nil
}

// Exists reports whether a save file exists for name
func (s *SaveStore) Exists(name string) bool {
	path, err := s.FilePath(name, false)
	if err != nil {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// Save frames data and replaces the stored record for name. Provider and
// filesystem failures are logged and returned; they never panic.
func (s *SaveStore) Save(name string, data []byte, opts SaveOptions) (err error) {
	start := time.Now()
	defer func() { s.metrics.RecordOperation("save", err == nil, time.Since(start)) }()

	if err = validateName(name); err != nil {
		return err
	}
	if data == nil {
		return ErrNilPayload
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	log := s.logger.WithField("name", name)

	record, err := s.encode(data, opts)
	if err != nil {
		log.WithError(err).Warn("save game data failed")
		return err
	}

	w, err := s.writerLocked(name)
	if err != nil {
		log.WithError(err).Warn("save game data failed")
		return err
	}

	if err = w.Write(record); err != nil {
		log.WithError(err).WithField("path", w.Path()).Warn("save game data failed")
		return err
	}

	s.metrics.RecordBytes("save", len(record))
	return nil
}

// SaveString saves text as its UTF-8 bytes
func (s *SaveStore) SaveString(name, text string, opts SaveOptions) error {
	return s.Save(name, []byte(text), opts)
}

// encode runs the codec, converting a provider panic into an error
func (s *SaveStore) encode(data []byte, opts SaveOptions) (record []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Newf("encode panic: %v", r)
		}
	}()
	return s.codec.Encode(data, opts.Encrypt, opts.Compress)
}

// writerLocked returns the write handle for name, opening it on first use.
// The caller must hold s.mutex.
func (s *SaveStore) writerLocked(name string) (*SaveWriter, error) {
	if w, ok := s.writers[name]; ok {
		if !w.Detached() {
			return w, nil
		}
		// Removed or replaced outside the store
		s.logger.WithField("name", name).Debug("reopening detached save file")
		s.releaseLocked(name)
	}

	path, err := s.FilePath(name, true)
	if err != nil {
		return nil, err
	}

	w, err := NewSaveWriter(SaveWriterConfig{FilePath: path, FileMode: s.fileMode})
	if err != nil {
		return nil, err
	}
	s.writers[name] = w
	s.metrics.SetOpenHandles(len(s.writers))
	return w, nil
}

// releaseLocked closes and forgets the write handle for name.
// The caller must hold s.mutex.
func (s *SaveStore) releaseLocked(name string) {
	w, ok := s.writers[name]
	if !ok {
		return
	}
	delete(s.writers, name)
	s.metrics.SetOpenHandles(len(s.writers))

	if err := w.Close(); err != nil {
		s.logger.WithError(err).WithField("name", name).Warn("close save file failed")
	}
}

// Load returns the payload stored for name. The boolean is false when no
// record exists, the name is invalid, or the record cannot be decoded.
func (s *SaveStore) Load(name string) ([]byte, bool) {
	data, ok, _ := s.TryLoad(name)
	return data, ok
}

// LoadString loads a payload and interprets it as UTF-8 text
func (s *SaveStore) LoadString(name string) (string, bool) {
	data, ok := s.Load(name)
	if !ok {
		return "", false
	}
	return string(data), true
}

// TryLoad is Load with the failure cause. A missing record yields
// (nil, false, nil); an unreadable or undecodable one yields its error.
func (s *SaveStore) TryLoad(name string) (payload []byte, ok bool, err error) {
	start := time.Now()
	defer func() { s.metrics.RecordOperation("load", err == nil, time.Since(start)) }()

	raw, err := s.readRaw(name)
	if errors.Is(err, ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	payload, legacy, err := s.codec.DecodeDetailed(raw)
	if err != nil {
		s.logger.WithError(err).WithField("name", name).Warn("can not load save game")
		return nil, false, err
	}
	if legacy {
		s.logger.WithField("name", name).Debug("loaded save data in legacy layout")
	}

	s.metrics.RecordBytes("load", len(raw))
	s.metrics.RecordDecode(legacy)
	return payload, true, nil
}

// readRaw closes any write handle for name and reads the raw record
func (s *SaveStore) readRaw(name string) ([]byte, error) {
	path, err := s.FilePath(name, false)
	if err != nil {
		return nil, err
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.closed {
		return nil, ErrStoreClosed
	}
	s.releaseLocked(name)

	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrapf(ErrNotFound, "%s", name)
	}
	if err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{"name": name, "path": path}).Warn("can not load save game")
		return nil, errors.Wrap(err, "read save file")
	}
	return raw, nil
}

// Decode decodes a raw record held in memory
func (s *SaveStore) Decode(raw []byte) ([]byte, bool) {
	payload, legacy, err := s.codec.DecodeDetailed(raw)
	if err != nil {
		return nil, false
	}
	s.metrics.RecordDecode(legacy)
	return payload, true
}

// DecodeString decodes a raw record and interprets the payload as UTF-8 text
func (s *SaveStore) DecodeString(raw []byte) (string, bool) {
	payload, ok := s.Decode(raw)
	if !ok {
		return "", false
	}
	return string(payload), true
}

// Inspect reports the layout and sizes of the stored record for name
func (s *SaveStore) Inspect(name string) (*codec.Info, error) {
	raw, err := s.readRaw(name)
	if err != nil {
		return nil, err
	}

	info, err := s.codec.Inspect(raw)
	if err != nil {
		s.logger.WithError(err).WithField("name", name).Warn("can not inspect save game")
		return nil, err
	}
	return info, nil
}

// Delete removes the stored record for name. A missing record is not an error.
func (s *SaveStore) Delete(name string) (err error) {
	start := time.Now()
	defer func() { s.metrics.RecordOperation("delete", err == nil, time.Since(start)) }()

	path, err := s.FilePath(name, false)
	if err != nil {
		return err
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.closed {
		return ErrStoreClosed
	}
	s.releaseLocked(name)

	if err = os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		s.logger.WithError(err).WithFields(logrus.Fields{"name": name, "path": path}).Warn("can not delete save data")
		return errors.Wrap(err, "delete save file")
	}
	return nil
}

// List returns the names of all stored records, sorted
func (s *SaveStore) List() ([]string, error) {
	entries, err := os.ReadDir(s.storePath)
	if os.IsNotExist(err) {
		return []string{}, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "read store directory")
	}

	suffix := "." + s.extension
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.Type().IsRegular() || !strings.HasSuffix(e.Name(), suffix) {
			continue
		}
		if name := strings.TrimSuffix(e.Name(), suffix); name != "" {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

// Close releases every write handle, the snapshot archive and any provider
// holding resources. The store cannot be used afterwards.
func (s *SaveStore) Close() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	var result error
	for name, w := range s.writers {
		if err := w.Close(); err != nil {
			result = errors.CombineErrors(result, errors.Wrapf(err, "close %s", name))
		}
	}
	s.writers = nil
	s.metrics.SetOpenHandles(0)

	if s.archive != nil {
		if err := s.archive.Close(); err != nil {
			result = errors.CombineErrors(result, errors.Wrap(err, "close snapshot archive"))
		}
	}

	for _, p := range []interface{}{s.codec.Crypto(), s.codec.Compression()} {
		if c, ok := p.(io.Closer); ok {
			if err := c.Close(); err != nil {
				result = errors.CombineErrors(result, errors.Wrap(err, "close provider"))
			}
		}
	}
	return result
}
