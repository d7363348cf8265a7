// Package common defines shared constants and sentinel errors used across
// client layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Session store errors.
	ErrInconsistentSession = errors.New("inconsistent session data")

	// Sealing errors.
	ErrInvalidKey    = errors.New("invalid sealing key")
	ErrCorruptedData = errors.New("corrupted sealed data")
)
