package codec

import (
	"github.com/cockroachdb/errors"
)

const (
	// KeySize is the length of the inline symmetric key of an encrypted record
	KeySize = 16

	flagSize = 1

	flagFalse byte = 0x00
	flagTrue  byte = 0x01
)

// Framing errors
var (
	ErrRecordTooShort   = errors.New("data too short for record header")
	ErrInvalidKeyLength = errors.New("encrypted record key must be 16 bytes")
	ErrUndecodable      = errors.New("record could not be decoded as current or legacy layout")
)

// Record is the framed form of one save.
// Current layout: [Encrypted(1)][Key(16) if encrypted][Compressed(1)][Content]
// Legacy layout:  [Encrypted(1)][Key(16) if encrypted][Content]
type Record struct {
	Encrypted  bool
	Key        []byte
	Compressed bool
	Content    []byte // ciphertext, compressed bytes or plaintext depending on the flags
	Legacy     bool   // legacy records have no compression flag
}

// NewRecord creates a current layout record around already transformed content
func NewRecord(content []byte, key []byte, compressed bool) (*Record, error) {
	r := &Record{
		Encrypted:  key != nil,
		Key:        key,
		Compressed: compressed,
		Content:    content,
	}
	if r.Encrypted && len(key) != KeySize {
		return nil, errors.Wrapf(ErrInvalidKeyLength, "got %d", len(key))
	}
	return r, nil
}

// HeaderSize returns the number of bytes preceding the content
func (r *Record) HeaderSize() int {
	n := flagSize
	if r.Encrypted {
		n += KeySize
	}
	if !r.Legacy {
		n += flagSize
	}
	return n
}

// Size returns the total size of the record when encoded
func (r *Record) Size() int {
	return r.HeaderSize() + len(r.Content)
}

// Bytes serializes the record in its layout
func (r *Record) Bytes() []byte {
	buf := make([]byte, 0, r.Size())
	buf = append(buf, boolByte(r.Encrypted))
	if r.Encrypted {
		buf = append(buf, r.Key...)
	}
	if !r.Legacy {
		buf = append(buf, boolByte(r.Compressed))
	}
	return append(buf, r.Content...)
}

// ParseRecord splits data according to the current layout. It validates
// lengths only; the content is not decrypted or decompressed.
func ParseRecord(data []byte) (*Record, error) {
	if len(data) < flagSize {
		return nil, errors.Wrapf(ErrRecordTooShort, "%d bytes", len(data))
	}

	r := &Record{Encrypted: byteBool(data[0])}
	pos := flagSize
	if r.Encrypted {
		if len(data) < pos+KeySize+flagSize {
			return nil, errors.Wrapf(ErrRecordTooShort, "encrypted record needs %d bytes, got %d", pos+KeySize+flagSize, len(data))
		}
		r.Key = data[pos : pos+KeySize]
		pos += KeySize
	} else if len(data) < pos+flagSize {
		return nil, errors.Wrapf(ErrRecordTooShort, "record needs %d bytes, got %d", pos+flagSize, len(data))
	}

	r.Compressed = byteBool(data[pos])
	pos += flagSize
	r.Content = data[pos:]
	return r, nil
}

// ParseLegacyRecord splits data according to the legacy layout, which
// predates the compression flag.
func ParseLegacyRecord(data []byte) (*Record, error) {
	if len(data) < flagSize {
		return nil, errors.Wrapf(ErrRecordTooShort, "%d bytes", len(data))
	}

	r := &Record{Encrypted: byteBool(data[0]), Legacy: true}
	pos := flagSize
	if r.Encrypted {
		if len(data) < pos+KeySize {
			return nil, errors.Wrapf(ErrRecordTooShort, "legacy encrypted record needs %d bytes, got %d", pos+KeySize, len(data))
		}
		r.Key = data[pos : pos+KeySize]
		pos += KeySize
	}
	r.Content = data[pos:]
	return r, nil
}

func boolByte(b bool) byte {
	if b {
		return flagTrue
	}
	return flagFalse
}

// Any non-zero flag byte reads as true.
func byteBool(b byte) bool {
	return b != flagFalse
}
