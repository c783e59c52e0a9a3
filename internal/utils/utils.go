// Package utils holds small byte-slice helpers shared across the hash
// addressing, bucket store and directory packages.
package utils

// IsEqual - Returns true if a and b are equal both in size and contents.
// Used as the default key-equality callable when a caller does not supply one.
func IsEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// ZeroedCopy - Returns a freshly allocated, zero-filled byte slice of the same
// length as a, used to scrub a removed record's bytes before leaving them on disk.
func ZeroedCopy(a []byte) []byte {
	return make([]byte, len(a))
}
