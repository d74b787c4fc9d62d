package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/kpisystems/credvault/internal/crypto"
	"github.com/kpisystems/credvault/internal/logger"
	"github.com/kpisystems/credvault/internal/model"
)

// Credentials orchestrates the user table, the key vault and the password
// codec. All operations are serialized through a single mutex: the backing
// stores are plain files with no transactional guarantees, so the
// check-then-append in CreateUser must not interleave with other writers.
type Credentials struct {
	mu     sync.Mutex
	table  model.RecordTable
	vault  model.KeyVault
	codec  crypto.Codec
	logger *logger.Logger
}

// NewCredentials creates a new Credentials service.
func NewCredentials(
	table model.RecordTable,
	vault model.KeyVault,
	codec crypto.Codec,
	logger *logger.Logger,
) *Credentials {
	return &Credentials{
		table:  table,
		vault:  vault,
		codec:  codec,
		logger: logger,
	}
}

// CreateUser appends a new row with the password encrypted under a fresh
// key and stores that key in the vault. It returns (false, nil) when the
// username is already taken, which is an expected outcome, not an error.
//
// The row append and the key write are two independent writes with no
// rollback: a failure between them leaves a row whose key never existed,
// and a later GetUser for it fails with ErrNotFound on the key lookup.
func (s *Credentials) CreateUser(ctx context.Context, input model.UserInput) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.logger.Debug("Credentials service: creating user", "username", input.Username)

	exists, err := s.usernameTaken(ctx, input.Username)
	if err != nil {
		return false, err
	}
	if exists {
		s.logger.Warn("Credentials service: user already exists", "username", input.Username)
		return false, nil
	}

	key, err := s.codec.GenerateKey()
	if err != nil {
		return false, fmt.Errorf("failed to generate key: %w", err)
	}

	encrypted, err := s.codec.Encrypt(input.Password, key)
	if err != nil {
		return false, fmt.Errorf("failed to encrypt password: %w", err)
	}

	record := model.UserRecord{
		Username:          input.Username,
		Email:             input.Email,
		EncryptedPassword: encrypted,
	}
	if err := s.table.Append(ctx, record); err != nil {
		s.logger.Error("Credentials service: failed to append user row",
			"username", input.Username,
			"error", err.Error())
		return false, fmt.Errorf("failed to append user row: %w", err)
	}

	if err := s.vault.Store(ctx, input.Username, key); err != nil {
		s.logger.Error("Credentials service: failed to store key",
			"username", input.Username,
			"error", err.Error())
		return false, fmt.Errorf("failed to store key: %w", err)
	}

	s.logger.Info("Credentials service: user created", "username", input.Username)
	return true, nil
}

// GetUser returns the user with the password decrypted. When the username
// appears on more than one row, the first row in file order wins.
func (s *Credentials) GetUser(ctx context.Context, username string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.table.ListAll(ctx)
	if err != nil {
		return model.User{}, fmt.Errorf("failed to list users: %w", err)
	}

	var record model.UserRecord
	found := false
	for _, r := range records {
		if r.Username == username {
			record = r
			found = true
			break
		}
	}
	if !found {
		return model.User{}, model.ErrNotFound
	}

	key, err := s.vault.Load(ctx, username)
	if err != nil {
		s.logger.Error("Credentials service: failed to load key",
			"username", username,
			"error", err.Error())
		return model.User{}, fmt.Errorf("failed to load key: %w", err)
	}

	password, err := s.codec.Decrypt(record.EncryptedPassword, key)
	if err != nil {
		return model.User{}, fmt.Errorf("failed to decrypt password: %w", err)
	}

	return model.User{
		Username: record.Username,
		Email:    record.Email,
		Password: password,
	}, nil
}

// DeleteUser removes the key for username and reports whether a key was
// deleted. It returns (false, nil) when no row carries the username. The
// table row itself is retained; only the key is destroyed, which makes the
// stored ciphertext unreadable.
func (s *Credentials) DeleteUser(ctx context.Context, username string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	exists, err := s.usernameTaken(ctx, username)
	if err != nil {
		return false, err
	}
	if !exists {
		s.logger.Warn("Credentials service: user doesn't exist", "username", username)
		return false, nil
	}

	removed, err := s.vault.Remove(ctx, username)
	if err != nil {
		return false, fmt.Errorf("failed to remove key: %w", err)
	}

	s.logger.Info("Credentials service: user deleted", "username", username, "key_removed", removed)
	return removed, nil
}

func (s *Credentials) usernameTaken(ctx context.Context, username string) (bool, error) {
	records, err := s.table.ListAll(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to list users: %w", err)
	}
	for _, r := range records {
		if r.Username == username {
			return true, nil
		}
	}
	return false, nil
}
