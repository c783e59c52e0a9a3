// Package hashfunc declares the caller-supplied callables an Index is
// constructed with, and provides the built-in defaults used when a caller
// omits one.
package hashfunc

import "github.com/cespare/xxhash/v2"

// KeyFunc - Projects a caller record's key out of the record's raw bytes.
// The core never interprets a record beyond this projection.
type KeyFunc func(record []byte) []byte

// EqualFunc - Reports whether two keys, as produced by a KeyFunc, are equal.
type EqualFunc func(a, b []byte) bool

// HashFunc - Produces an unsigned hash value for a key. The function must be
// total and side-effect free; the low D bits of its result become the key's
// hash sequence.
type HashFunc func(key []byte) uint64

// RemovedFunc - Reports whether a record read from the caller's primary
// record file is logically removed (and should be skipped by CreateIndex).
type RemovedFunc func(record []byte) bool

// DefaultHash - The built-in HashFunc used when a caller supplies none.
// It is github.com/cespare/xxhash/v2's 64-bit non-cryptographic hash, chosen
// for speed over the full key space; cryptographic-quality hashing is an
// explicit non-goal of the index.
func DefaultHash(key []byte) uint64 {
	return xxhash.Sum64(key)
}
