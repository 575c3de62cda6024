// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as the
// lifecycle engine and handlers to distinguish between different failure
// scenarios without inspecting driver-specific errors.
package repository

import "errors"

// ErrEmailExists is returned when a user registration collides with an
// existing email address.
var ErrEmailExists = errors.New("email already exists")

// ErrNotFound is returned when a requested row does not exist. Callers
// decide whether to surface it as 404 or to mask it further.
var ErrNotFound = errors.New("not found")

// ErrResetTokenInvalid is returned when a password-reset token does not
// match any user, has expired, or was already consumed.
var ErrResetTokenInvalid = errors.New("invalid or expired reset token")
