// Package crt holds the error types shared between the root package and the
// internal addressing, bucket store and directory packages, so both sides can
// raise and compare them without an import cycle.
package crt

import "github.com/pkg/errors"

// IoError - Custom error to inform that a file operation failed.
type IoError struct {
	msg   string
	cause error
}

// NewIoError - Wraps cause as an IoError with the given context message.
func NewIoError(msg string, cause error) IoError {
	return IoError{msg: msg, cause: errors.Wrap(cause, msg)}
}

// Error - Used to notify that an I/O operation failed.
func (E IoError) Error() string {
	if E.cause != nil {
		return E.cause.Error()
	}
	if E.msg == "" {
		return "i/o error"
	}
	return E.msg
}

// Unwrap - Exposes the wrapped cause to errors.Is/errors.As.
func (E IoError) Unwrap() error {
	return E.cause
}

// CorruptIndex - Custom error to inform that the on-disk directory or hash
// file failed to parse, or violated an invariant, on load.
type CorruptIndex struct {
	msg   string
	cause error
}

// NewCorruptIndex - Wraps cause as a CorruptIndex with the given context message.
func NewCorruptIndex(msg string, cause error) CorruptIndex {
	return CorruptIndex{msg: msg, cause: errors.Wrap(cause, msg)}
}

// Error - Used to notify that the index failed to parse or validate.
func (E CorruptIndex) Error() string {
	if E.cause != nil {
		return E.cause.Error()
	}
	if E.msg == "" {
		return "corrupt index"
	}
	return E.msg
}

// Unwrap - Exposes the wrapped cause to errors.Is/errors.As.
func (E CorruptIndex) Unwrap() error {
	return E.cause
}

// DuplicateKey - Custom error to inform that a primary-key insert collided
// with an already-present key.
type DuplicateKey struct {
	msg string
}

// Error - Used to notify that a key already exists.
func (E DuplicateKey) Error() string {
	if E.msg == "" {
		return "duplicate key"
	}
	return E.msg
}

// CapacityExhausted - Custom error to inform that a bucket split recursed
// past the configured maximum depth D without finding room. In practice a
// chain that reaches local depth D falls back to an overflow block instead
// of recursing further, so this is a defensive bound: colliding records are
// unbounded overflow by default, never raising this error, per spec.md §7.
type CapacityExhausted struct {
	msg string
}

// Error - Used to notify that bucket splitting recursed past the maximum depth.
func (E CapacityExhausted) Error() string {
	if E.msg == "" {
		return "capacity exhausted"
	}
	return E.msg
}

// InvalidConfiguration - Custom error to inform that construction parameters
// are unusable (e.g. an empty name, or a record that does not fit in a bucket).
type InvalidConfiguration struct {
	msg string
}

// NewInvalidConfiguration - Returns an InvalidConfiguration with the given message.
func NewInvalidConfiguration(msg string) InvalidConfiguration {
	return InvalidConfiguration{msg: msg}
}

// Error - Used to notify that construction parameters are invalid.
func (E InvalidConfiguration) Error() string {
	if E.msg == "" {
		return "invalid configuration"
	}
	return E.msg
}

// NoRecordFound - Custom error to inform that no record was found.
type NoRecordFound struct {
	msg string
}

// Error - Used to notify that no record was found.
func (E NoRecordFound) Error() string {
	if E.msg == "" {
		return "no record found"
	}
	return E.msg
}
