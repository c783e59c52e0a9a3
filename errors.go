package extendiblehash

import "github.com/gostonefire/extendiblehash/crt"

// IoError - Any failure to open, read, or write the directory or hash file.
type IoError = crt.IoError

// CorruptIndex - Header parse failure, size mismatch, or invariant violation
// detected while loading an existing index.
type CorruptIndex = crt.CorruptIndex

// DuplicateKey - A primary-key Insert of an already-present key.
type DuplicateKey = crt.DuplicateKey

// CapacityExhausted - A defensive bound on split recursion; unreachable
// under normal operation since a chain at maximum depth overflows instead.
type CapacityExhausted = crt.CapacityExhausted

// InvalidConfiguration - Construction parameters that cannot form a valid index.
type InvalidConfiguration = crt.InvalidConfiguration

// NoRecordFound - No record matched the given key.
type NoRecordFound = crt.NoRecordFound
