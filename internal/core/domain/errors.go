package domain

import "errors"

// Sentinel errors returned by repositories. Services translate them into
// apperror kinds.
var (
	ErrDuplicate = errors.New("duplicate record")
	ErrNotFound  = errors.New("record not found")
)
