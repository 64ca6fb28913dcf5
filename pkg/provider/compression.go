package provider

import (
	"bytes"
	"io"

	"github.com/cockroachdb/errors"
	"github.com/golang/snappy"
	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zstd"
)

// CompressionProvider compresses save data before it is framed.
// Decompress must be the exact inverse of Compress.
type CompressionProvider interface {
	Compress(input []byte) ([]byte, error)
	Decompress(input []byte) ([]byte, error)
}

// DeflateProvider is the default CompressionProvider. It writes a raw
// DEFLATE stream with no zlib or gzip wrapper.
type DeflateProvider struct {
	Level int
}

// NewDeflateProvider creates a deflate provider at the default level
func NewDeflateProvider() *DeflateProvider {
	return &DeflateProvider{Level: flate.DefaultCompression}
}

// Compress deflates input
func (p *DeflateProvider) Compress(input []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := flate.NewWriter(&buf, p.Level)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid deflate level %d", p.Level)
	}
	if _, err := w.Write(input); err != nil {
		return nil, errors.Wrap(err, "deflate write failed")
	}
	if err := w.Close(); err != nil {
		return nil, errors.Wrap(err, "deflate close failed")
	}
	return buf.Bytes(), nil
}

// Decompress inflates input. Corrupt or truncated streams are errors.
func (p *DeflateProvider) Decompress(input []byte) ([]byte, error) {
	r := flate.NewReader(bytes.NewReader(input))
	defer r.Close()

	out, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "inflate failed")
	}
	return out, nil
}

// ZstdProvider compresses with Zstandard. Encoder and decoder are reused
// and safe for concurrent use.
type ZstdProvider struct {
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

// NewZstdProvider creates a zstd provider
func NewZstdProvider() (*ZstdProvider, error) {
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create zstd encoder")
	}
	dec, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create zstd decoder")
	}
	return &ZstdProvider{encoder: enc, decoder: dec}, nil
}

// Compress encodes input as a single zstd frame
func (p *ZstdProvider) Compress(input []byte) ([]byte, error) {
	if len(input) == 0 {
		return []byte{}, nil
	}
	return p.encoder.EncodeAll(input, nil), nil
}

// Decompress decodes a zstd frame
func (p *ZstdProvider) Decompress(input []byte) ([]byte, error) {
	if len(input) == 0 {
		return []byte{}, nil
	}
	out, err := p.decoder.DecodeAll(input, nil)
	if err != nil {
		return nil, errors.Wrap(err, "zstd decode failed")
	}
	return out, nil
}

// Close releases the encoder and the decoder goroutines. The provider
// cannot be used afterwards.
func (p *ZstdProvider) Close() error {
	p.decoder.Close()
	return p.encoder.Close()
}

// SnappyProvider compresses with the snappy block format
type SnappyProvider struct{}

// NewSnappyProvider creates a snappy provider
func NewSnappyProvider() *SnappyProvider {
	return &SnappyProvider{}
}

// Compress encodes input
func (p *SnappyProvider) Compress(input []byte) ([]byte, error) {
	return snappy.Encode(nil, input), nil
}

// Decompress decodes input
func (p *SnappyProvider) Decompress(input []byte) ([]byte, error) {
	out, err := snappy.Decode(nil, input)
	if err != nil {
		return nil, errors.Wrap(err, "snappy decode failed")
	}
	return out, nil
}
