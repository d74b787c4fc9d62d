package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"github.com/kpisystems/credvault/internal/model"
)

// GCMCodec encrypts with AES-GCM: a random 12-byte nonce is generated per
// encryption and prepended to the sealed ciphertext before base64 encoding.
// Unlike ECBCodec the output is randomized and authenticated, at the cost
// of not being able to read passwords written by the legacy format.
type GCMCodec struct{}

// NewGCMCodec creates a new GCMCodec instance.
func NewGCMCodec() *GCMCodec {
	return &GCMCodec{}
}

// GenerateKey returns a fresh random AES-128 key.
func (c *GCMCodec) GenerateKey() ([]byte, error) {
	key := make([]byte, KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("failed to generate key: %w", err)
	}
	return key, nil
}

// Encrypt seals the UTF-8 plaintext with key and returns
// base64(nonce || ciphertext).
func (c *GCMCodec) Encrypt(plaintext string, key []byte) (string, error) {
	aead, err := newAEAD(key)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	sealed := aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt reverses Encrypt. It returns ErrDecode for malformed base64 and
// ErrCipher when the ciphertext fails authentication under key.
func (c *GCMCodec) Decrypt(ciphertext string, key []byte) (string, error) {
	data, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", fmt.Errorf("%w: %v", model.ErrDecode, err)
	}

	aead, err := newAEAD(key)
	if err != nil {
		return "", err
	}

	if len(data) < aead.NonceSize() {
		return "", fmt.Errorf("%w: ciphertext shorter than nonce", model.ErrCipher)
	}

	nonce, sealed := data[:aead.NonceSize()], data[aead.NonceSize():]
	plaintext, err := aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", model.ErrCipher, err)
	}

	return string(plaintext), nil
}

func newAEAD(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrDecode, err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrCipher, err)
	}
	return aead, nil
}
