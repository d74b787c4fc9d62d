// Package crypto implements the password codecs: symmetric key generation
// and encryption of a single text value to a base64 string suitable for a
// text table.
package crypto

import (
	"bytes"
	"crypto/aes"
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"github.com/kpisystems/credvault/internal/model"
)

// KeySize is the AES-128 key length in bytes.
const KeySize = 16

// Codec encrypts and decrypts a single text value with a symmetric key.
type Codec interface {
	GenerateKey() ([]byte, error)
	Encrypt(plaintext string, key []byte) (string, error)
	Decrypt(ciphertext string, key []byte) (string, error)
}

// ECBCodec is the storage-compatible codec: AES in ECB mode with PKCS#7
// padding, base64-encoded. Encryption is deterministic, so identical
// plaintexts under the same key produce identical ciphertext. That leak is
// part of the stored format this service inherited; GCMCodec is the
// strengthened alternative.
type ECBCodec struct{}

// NewECBCodec creates a new ECBCodec instance.
func NewECBCodec() *ECBCodec {
	return &ECBCodec{}
}

// GenerateKey returns a fresh random AES-128 key.
func (c *ECBCodec) GenerateKey() ([]byte, error) {
	key := make([]byte, KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("failed to generate key: %w", err)
	}
	return key, nil
}

// Encrypt encrypts the UTF-8 plaintext with key and returns the base64
// encoding of the ciphertext.
func (c *ECBCodec) Encrypt(plaintext string, key []byte) (string, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return "", fmt.Errorf("%w: %v", model.ErrDecode, err)
	}

	padded := pkcs7Pad([]byte(plaintext), aes.BlockSize)
	ciphertext := make([]byte, len(padded))
	for i := 0; i < len(padded); i += aes.BlockSize {
		block.Encrypt(ciphertext[i:i+aes.BlockSize], padded[i:i+aes.BlockSize])
	}

	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

// Decrypt reverses Encrypt. It returns ErrDecode for malformed base64 and
// ErrCipher when the decoded bytes are not a valid encryption under key.
func (c *ECBCodec) Decrypt(ciphertext string, key []byte) (string, error) {
	data, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", fmt.Errorf("%w: %v", model.ErrDecode, err)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", fmt.Errorf("%w: %v", model.ErrDecode, err)
	}

	if len(data) == 0 || len(data)%aes.BlockSize != 0 {
		return "", fmt.Errorf("%w: ciphertext is not a whole number of blocks", model.ErrCipher)
	}

	plaintext := make([]byte, len(data))
	for i := 0; i < len(data); i += aes.BlockSize {
		block.Decrypt(plaintext[i:i+aes.BlockSize], data[i:i+aes.BlockSize])
	}

	unpadded, err := pkcs7Unpad(plaintext, aes.BlockSize)
	if err != nil {
		return "", err
	}

	return string(unpadded), nil
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	n := blockSize - len(data)%blockSize
	return append(data, bytes.Repeat([]byte{byte(n)}, n)...)
}

func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	n := int(data[len(data)-1])
	if n == 0 || n > blockSize || n > len(data) {
		return nil, fmt.Errorf("%w: invalid padding", model.ErrCipher)
	}
	for _, b := range data[len(data)-n:] {
		if int(b) != n {
			return nil, fmt.Errorf("%w: invalid padding", model.ErrCipher)
		}
	}
	return data[:len(data)-n], nil
}
