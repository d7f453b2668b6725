package types

import "errors"

// Sentinel errors for the whole engine. Callers match with errors.Is; the
// HTTP adapter (out of tree) maps them to status codes.
var (
	ErrNotFound         = errors.New("not found")
	ErrAlreadyExists    = errors.New("already exists")
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrSchemaMismatch   = errors.New("schema mismatch")
	ErrPropertyCoercion = errors.New("property coercion failed")
	ErrCancelled        = errors.New("cancelled")
	ErrOverflow         = errors.New("id overflow")
)
