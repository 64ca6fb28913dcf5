package provider

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"io"

	"github.com/cockroachdb/errors"
)

// Crypto errors
var (
	ErrInvalidKey      = errors.New("invalid encryption key")
	ErrInvalidPadding  = errors.New("invalid PKCS#7 padding")
	ErrCiphertextSize  = errors.New("ciphertext is not a whole number of blocks")
	ErrCiphertextShort = errors.New("ciphertext too short")
)

// CryptoProvider encrypts and decrypts save data with a caller supplied key.
// Decrypt must be the exact inverse of Encrypt for the same key.
type CryptoProvider interface {
	Encrypt(data, key []byte) ([]byte, error)
	Decrypt(data, key []byte) ([]byte, error)
}

// GenerateRandomKey returns length bytes read from crypto/rand
func GenerateRandomKey(length int) ([]byte, error) {
	if length < 0 {
		return nil, errors.Wrapf(ErrInvalidKey, "negative key length %d", length)
	}
	key := make([]byte, length)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return nil, errors.Wrap(err, "failed to generate random key")
	}
	return key, nil
}

// AESProvider is the default CryptoProvider: AES in CBC mode with PKCS#7
// padding, using the key itself as the IV. The cipher strength follows the
// key length (16, 24 or 32 bytes).
type AESProvider struct{}

// NewAESProvider creates a new AES-CBC provider
func NewAESProvider() *AESProvider {
	return &AESProvider{}
}

// Encrypt pads and encrypts data
func (p *AESProvider) Encrypt(data, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, errors.Wrap(ErrInvalidKey, err.Error())
	}

	padded := pkcs7Pad(data, block.BlockSize())
	out := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, key[:block.BlockSize()]).CryptBlocks(out, padded)
	return out, nil
}

// Decrypt decrypts data and strips the padding
func (p *AESProvider) Decrypt(data, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, errors.Wrap(ErrInvalidKey, err.Error())
	}

	bs := block.BlockSize()
	if len(data) == 0 || len(data)%bs != 0 {
		return nil, errors.Wrapf(ErrCiphertextSize, "length %d", len(data))
	}

	out := make([]byte, len(data))
	cipher.NewCBCDecrypter(block, key[:bs]).CryptBlocks(out, data)
	return pkcs7Unpad(out, bs)
}

// GCMProvider encrypts with AES-GCM. A random nonce is prepended to the
// ciphertext, and tampered or mis-keyed input fails authentication.
type GCMProvider struct{}

// NewGCMProvider creates a new AES-GCM provider
func NewGCMProvider() *GCMProvider {
	return &GCMProvider{}
}

func (p *GCMProvider) aead(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, errors.Wrap(ErrInvalidKey, err.Error())
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create GCM")
	}
	return gcm, nil
}

// Encrypt seals data under a fresh nonce
func (p *GCMProvider) Encrypt(data, key []byte) ([]byte, error) {
	gcm, err := p.aead(key)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, errors.Wrap(err, "failed to generate nonce")
	}

	return gcm.Seal(nonce, nonce, data, nil), nil
}

// Decrypt opens data produced by Encrypt
func (p *GCMProvider) Decrypt(data, key []byte) ([]byte, error) {
	gcm, err := p.aead(key)
	if err != nil {
		return nil, err
	}

	if len(data) < gcm.NonceSize()+gcm.Overhead() {
		return nil, ErrCiphertextShort
	}

	nonce := data[:gcm.NonceSize()]
	plaintext, err := gcm.Open(nil, nonce, data[gcm.NonceSize():], nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to decrypt")
	}
	if plaintext == nil {
		plaintext = []byte{}
	}
	return plaintext, nil
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	n := blockSize - len(data)%blockSize
	out := make([]byte, len(data), len(data)+n)
	copy(out, data)
	return append(out, bytes.Repeat([]byte{byte(n)}, n)...)
}

func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 {
		return nil, ErrInvalidPadding
	}
	n := int(data[len(data)-1])
	if n == 0 || n > blockSize || n > len(data) {
		return nil, ErrInvalidPadding
	}
	for _, b := range data[len(data)-n:] {
		if int(b) != n {
			return nil, ErrInvalidPadding
		}
	}
	return data[:len(data)-n], nil
}
