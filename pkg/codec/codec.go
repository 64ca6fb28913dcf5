package codec

import (
	"github.com/cockroachdb/errors"

	"github.com/ssargent/saveslot/pkg/provider"
)

// RecordCodec frames save payloads into records and back. It holds no
// mutable state and is safe for concurrent use.
type RecordCodec struct {
	crypto      provider.CryptoProvider
	compression provider.CompressionProvider
}

// NewRecordCodec creates a codec. Nil providers fall back to AES and Deflate.
func NewRecordCodec(crypto provider.CryptoProvider, compression provider.CompressionProvider) *RecordCodec {
	if crypto == nil {
		crypto = provider.DefaultCrypto()
	}
	if compression == nil {
		compression = provider.DefaultCompression()
	}
	return &RecordCodec{crypto: crypto, compression: compression}
}

// Crypto returns the crypto provider in use
func (c *RecordCodec) Crypto() provider.CryptoProvider {
	return c.crypto
}

// Compression returns the compression provider in use
func (c *RecordCodec) Compression() provider.CompressionProvider {
	return c.compression
}

// Encode frames payload in the current layout. Compression is applied
// before encryption, and a fresh key is generated for every encrypted record.
// Provider errors are returned unchanged in meaning.
func (c *RecordCodec) Encode(payload []byte, encrypt, compress bool) ([]byte, error) {
	output := payload
	if compress {
		packed, err := c.compression.Compress(output)
		if err != nil {
			return nil, errors.Wrap(err, "compress payload")
		}
		output = packed
	}

	var key []byte
	if encrypt {
		var err error
		key, err = provider.GenerateRandomKey(KeySize)
		if err != nil {
			return nil, err
		}
		output, err = c.crypto.Encrypt(output, key)
		if err != nil {
			return nil, errors.Wrap(err, "encrypt payload")
		}
	}

	r, err := NewRecord(output, key, compress)
	if err != nil {
		return nil, err
	}
	return r.Bytes(), nil
}

// Decode recovers the payload from data. The current layout is tried first;
// if that fails for any reason the legacy layout is tried. The boolean is
// false only when both attempts fail.
//
// Neither layout carries a version tag, so a byte sequence that happens to be
// valid in both is read as the current layout.
func (c *RecordCodec) Decode(data []byte) ([]byte, bool) {
	payload, _, err := c.decode(data)
	if err != nil {
		return nil, false
	}
	return payload, true
}

// DecodeCurrent decodes data strictly as a current layout record
func (c *RecordCodec) DecodeCurrent(data []byte) (payload []byte, err error) {
	defer recoverProvider(&err)

	r, err := ParseRecord(data)
	if err != nil {
		return nil, err
	}

	content := r.Content
	if r.Encrypted {
		content, err = c.crypto.Decrypt(content, r.Key)
		if err != nil {
			return nil, errors.Wrap(err, "decrypt content")
		}
	}
	if r.Compressed {
		content, err = c.compression.Decompress(content)
		if err != nil {
			return nil, errors.Wrap(err, "decompress content")
		}
	}
	return nonNil(content), nil
}

// DecodeLegacy decodes data strictly as a legacy layout record
func (c *RecordCodec) DecodeLegacy(data []byte) (payload []byte, err error) {
	defer recoverProvider(&err)

	r, err := ParseLegacyRecord(data)
	if err != nil {
		return nil, err
	}
	if !r.Encrypted {
		return nonNil(r.Content), nil
	}

	content, err := c.crypto.Decrypt(r.Content, r.Key)
	if err != nil {
		return nil, errors.Wrap(err, "decrypt legacy content")
	}
	return nonNil(content), nil
}

// decode runs both stages and reports which one produced the payload
func (c *RecordCodec) decode(data []byte) ([]byte, bool, error) {
	payload, currentErr := c.DecodeCurrent(data)
	if currentErr == nil {
		return payload, false, nil
	}

	payload, legacyErr := c.DecodeLegacy(data)
	if legacyErr == nil {
		return payload, true, nil
	}

	return nil, false, errors.WithSecondaryError(
		errors.Wrapf(ErrUndecodable, "current: %v; legacy: %v", currentErr, legacyErr),
		legacyErr,
	)
}

// DecodeDetailed is Decode with the failure cause and the layout that matched
func (c *RecordCodec) DecodeDetailed(data []byte) (payload []byte, legacy bool, err error) {
	return c.decode(data)
}

// recoverProvider turns a panic inside a pluggable provider into an error so
// the caller can fall back or report failure.
func recoverProvider(err *error) {
	if r := recover(); r != nil {
		*err = errors.Newf("provider panic: %v", r)
	}
}

func nonNil(b []byte) []byte {
	if b == nil {
		return []byte{}
	}
	return b
}
