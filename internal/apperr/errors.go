// Package apperr holds the error taxonomy shared by the store, the
// repository and the presentation layers.
package apperr

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrStorage       = errors.New("storage failure")
	ErrDecode        = errors.New("malformed note record")
	ErrConfiguration = errors.New("invalid configuration")
	ErrInvalidID     = errors.New("invalid note id")
	ErrInvalidNote   = errors.New("invalid note")
	ErrIDOutOfRange  = errors.New("note id out of range")
)
