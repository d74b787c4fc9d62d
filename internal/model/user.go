package model

import "context"

// RecordTable defines persistence operations for the shared user table.
type RecordTable interface {
	ListAll(ctx context.Context) ([]UserRecord, error)
	Append(ctx context.Context, record UserRecord) error
}

// KeyVault defines persistence operations for per-user symmetric keys.
//
// Remove reports whether a key was actually deleted; removing an absent
// key is not an error.
type KeyVault interface {
	Store(ctx context.Context, username string, key []byte) error
	Load(ctx context.Context, username string) ([]byte, error)
	Remove(ctx context.Context, username string) (bool, error)
}

// UserRecord is one row of the user table. EncryptedPassword holds the
// base64-encoded ciphertext exactly as stored; it is only meaningful
// together with the key the vault holds for Username.
type UserRecord struct {
	Username          string `json:"username"`
	Email             string `json:"email"`
	EncryptedPassword string `json:"-"`
}

// UserInput carries the cleartext attributes of an account to create.
type UserInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// User is the external representation of an account with the password
// decrypted.
type User struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}
