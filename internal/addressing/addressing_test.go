//go:build unit

package addressing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOf(t *testing.T) {
	t.Run("truncates hash to D bits", func(t *testing.T) {
		// Prepare
		a := New(3, func(key []byte) uint64 { return 0xFF })

		// Execute
		seq := a.Of([]byte("k"))

		// Check
		assert.Equal(t, Sequence(0x7), seq, "truncated to low 3 bits")
	})

	t.Run("uses default hash when none supplied", func(t *testing.T) {
		// Prepare
		a := New(32, nil)

		// Execute
		seq1 := a.Of([]byte("abc"))
		seq2 := a.Of([]byte("abc"))
		seq3 := a.Of([]byte("xyz"))

		// Check
		assert.Equal(t, seq1, seq2, "hash is deterministic")
		assert.NotEqual(t, seq1, seq3, "different keys hash differently")
	})
}

func TestLowBitsEqual(t *testing.T) {
	t.Run("compares only the requested low bits", func(t *testing.T) {
		// Prepare
		a := Sequence(0b1011)
		b := Sequence(0b0011)
		c := Sequence(0b0111)

		// Check
		assert.True(t, LowBitsEqual(a, b, 2), "low 2 bits agree")
		assert.False(t, LowBitsEqual(a, c, 3), "low 3 bits disagree")
	})
}

func TestBit(t *testing.T) {
	t.Run("reads individual bits from the LSB", func(t *testing.T) {
		// Prepare
		s := Sequence(0b0101)

		// Check
		assert.Equal(t, uint64(1), s.Bit(0), "bit 0 set")
		assert.Equal(t, uint64(0), s.Bit(1), "bit 1 clear")
		assert.Equal(t, uint64(1), s.Bit(2), "bit 2 set")
	})
}

func TestStringRoundTrip(t *testing.T) {
	t.Run("string and parse are inverse", func(t *testing.T) {
		// Prepare
		s := Sequence(0b10110)

		// Execute
		str := s.String(5)
		parsed := ParseSequence(str)

		// Check
		assert.Equal(t, "10110", str, "msb first rendering")
		assert.Equal(t, s, parsed, "round trips")
	})
}
