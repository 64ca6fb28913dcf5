package store

import (
	"os"

	"github.com/segmentio/ksuid"
	"github.com/sirupsen/logrus"

	"github.com/ssargent/saveslot/pkg/metrics"
	"github.com/ssargent/saveslot/pkg/provider"
	"github.com/ssargent/saveslot/pkg/storage"
)

// DefaultExtension is the file extension of save files
const DefaultExtension = "sav"

// Options holds configuration for a save store
type Options struct {
	StorePath   string                       // Directory holding one file per save name
	Extension   string                       // File extension without the dot (default "sav")
	Crypto      provider.CryptoProvider      // nil selects AES
	Compression provider.CompressionProvider // nil selects Deflate
	Logger      logrus.FieldLogger           // nil selects the standard logrus logger
	Metrics     *metrics.Metrics             // optional
	Archive     Archive                      // optional snapshot archive, closed with the store
	FileMode    os.FileMode                  // mode for new save files (default 0600)
}

// SaveOptions selects the transforms applied to a payload
type SaveOptions struct {
	Encrypt  bool
	Compress bool
}

// DefaultSaveOptions encrypts without compressing
func DefaultSaveOptions() SaveOptions {
	return SaveOptions{Encrypt: true, Compress: false}
}

// Archive keeps point-in-time copies of raw records
type Archive interface {
	Create(name string, record []byte) (ksuid.KSUID, error)
	Read(name string, id ksuid.KSUID) ([]byte, error)
	List(name string) ([]storage.Snapshot, error)
	Prune(name string, keep int) (int, error)
	Delete(name string, id ksuid.KSUID) error
	Close() error
}

// Errors
var (
	ErrInvalidName      = &StoreError{"invalid save name"}
	ErrInvalidStorePath = &StoreError{"store path is required"}
	ErrNilPayload       = &StoreError{"payload is nil"}
	ErrStoreClosed      = &StoreError{"store is closed"}
	ErrNotFound         = &StoreError{"save data not found"}
	ErrNoArchive        = &StoreError{"no snapshot archive configured"}
)

// StoreError represents a save store error
type StoreError struct {
	Message string
}

func (e *StoreError) Error() string {
	return e.Message
}
