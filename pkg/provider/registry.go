// Package provider holds the pluggable crypto and compression strategies
// used by the record codec.
package provider

import (
	"strings"

	"github.com/cockroachdb/errors"
)

// Provider names accepted in configuration
const (
	CryptoAES       = "aes"
	CryptoAESGCM    = "aes-gcm"
	CompressDeflate = "deflate"
	CompressZstd    = "zstd"
	CompressSnappy  = "snappy"
)

// ErrUnknownProvider is returned for a provider name that is not registered
var ErrUnknownProvider = errors.New("unknown provider")

// DefaultCrypto returns the AES-CBC provider
func DefaultCrypto() CryptoProvider {
	return NewAESProvider()
}

// DefaultCompression returns the deflate provider
func DefaultCompression() CompressionProvider {
	return NewDeflateProvider()
}

// CryptoByName resolves a crypto provider. An empty name selects the default.
func CryptoByName(name string) (CryptoProvider, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", CryptoAES:
		return NewAESProvider(), nil
	case CryptoAESGCM:
		return NewGCMProvider(), nil
	default:
		return nil, errors.Wrapf(ErrUnknownProvider, "crypto %q", name)
	}
}

// CompressionByName resolves a compression provider. An empty name selects the default.
func CompressionByName(name string) (CompressionProvider, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", CompressDeflate:
		return NewDeflateProvider(), nil
	case CompressZstd:
		p, err := NewZstdProvider()
		if err != nil {
			return nil, err
		}
		return p, nil
	case CompressSnappy:
		return NewSnappyProvider(), nil
	default:
		return nil, errors.Wrapf(ErrUnknownProvider, "compression %q", name)
	}
}
