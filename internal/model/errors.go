package model

import "errors"

// Sentinel errors shared across layers; callers match them with errors.Is.
// "Already exists" on create and "nothing to delete" on remove are expected
// outcomes reported as boolean results, not errors.
var (
	ErrNotFound = errors.New("user doesn't exist")
	ErrDecode   = errors.New("malformed key material")
	ErrCipher   = errors.New("cipher operation failed")
)
