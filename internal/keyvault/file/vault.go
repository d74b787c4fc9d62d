// Package file implements the key vault on plain files, one key file per
// username.
package file

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"

	"github.com/kpisystems/credvault/internal/crypto"
	"github.com/kpisystems/credvault/internal/model"
)

var _ model.KeyVault = (*Vault)(nil)

// Vault stores one key file per username. The file location comes from
// substituting the username into a path template ("/keys/%s.key"), the
// contents are the base64-encoded raw key bytes.
type Vault struct {
	pathTemplate string
}

// New creates a Vault using the given path template. The template must
// contain a single %s placeholder for the username.
func New(pathTemplate string) *Vault {
	return &Vault{pathTemplate: pathTemplate}
}

// Store writes the key for username, replacing any previous one.
func (v *Vault) Store(_ context.Context, username string, key []byte) error {
	encoded := base64.StdEncoding.EncodeToString(key)
	if err := os.WriteFile(v.keyPath(username), []byte(encoded), 0o600); err != nil {
		return fmt.Errorf("failed to write key file: %w", err)
	}
	return nil
}

// Load reads the key for username. It returns ErrNotFound when no key file
// exists and ErrDecode when the file contents are not a valid key.
func (v *Vault) Load(_ context.Context, username string) ([]byte, error) {
	data, err := os.ReadFile(v.keyPath(username))
	if errors.Is(err, os.ErrNotExist) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read key file: %w", err)
	}

	key, err := base64.StdEncoding.DecodeString(string(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrDecode, err)
	}
	if len(key) != crypto.KeySize {
		return nil, fmt.Errorf("%w: key is %d bytes, want %d", model.ErrDecode, len(key), crypto.KeySize)
	}

	return key, nil
}

// Remove deletes the key file for username. A missing file is reported as
// (false, nil), not as an error.
func (v *Vault) Remove(_ context.Context, username string) (bool, error) {
	err := os.Remove(v.keyPath(username))
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to remove key file: %w", err)
	}
	return true, nil
}

func (v *Vault) keyPath(username string) string {
	return fmt.Sprintf(v.pathTemplate, username)
}
