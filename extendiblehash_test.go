//go:build integration

package extendiblehash

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

const testIndex string = "test-index"

func recordOf(n uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, n)
	return b
}

func identityKeyOf(record []byte) []byte {
	return record
}

func identityEqual(a, b []byte) bool {
	return bytes.Equal(a, b)
}

// identityHash - treats the 8-byte big-endian key as its own hash, matching
// spec.md §8's worked end-to-end scenarios ("hash = identity on the low 3 bits").
func identityHash(key []byte) uint64 {
	return binary.BigEndian.Uint64(key)
}

func writePrimaryFile(t *testing.T, name string, values ...uint64) {
	f, err := os.Create(name)
	assert.NoError(t, err, "creates primary record file")
	defer func() { _ = f.Close() }()

	for _, v := range values {
		_, err = f.Write(recordOf(v))
		assert.NoError(t, err, "writes a record")
	}
}

func cleanupIndex(t *testing.T, name string) {
	_ = os.Remove(name)
	_, err := os.Stat(name + ".ehash")
	if err == nil {
		t.Fatalf("hash file %s still exists after test", name+".ehash")
	}
}

func TestCreateIndex(t *testing.T) {
	t.Run("inserts keys 0 and 1 without a split", func(t *testing.T) {
		// Prepare
		name := fmt.Sprintf("%s-1", testIndex)
		writePrimaryFile(t, name, 0, 1)

		// Execute
		index, info, err := CreateIndex(name, 8, true, identityKeyOf, identityEqual, identityHash, nil, 3, 32)
		assert.NoError(t, err, "creates the index")

		// Check
		assert.Equal(t, uint32(0), info.GlobalDepth, "no split needed for two records in a two-slot bucket")
		assert.Equal(t, int64(1), info.NumberOfBuckets, "single bucket")

		got, err := index.Search(recordOf(0))
		assert.NoError(t, err, "searches for 0")
		assert.Len(t, got, 1, "finds record 0")
		got, err = index.Search(recordOf(1))
		assert.NoError(t, err, "searches for 1")
		assert.Len(t, got, 1, "finds record 1")

		// Clean up
		assert.NoError(t, index.RemoveFiles())
		cleanupIndex(t, name)
	})

	t.Run("inserting a third colliding record triggers the first split", func(t *testing.T) {
		// Prepare
		name := fmt.Sprintf("%s-2", testIndex)
		writePrimaryFile(t, name, 0, 1)
		index, _, err := CreateIndex(name, 8, true, identityKeyOf, identityEqual, identityHash, nil, 3, 32)
		assert.NoError(t, err, "creates the index")

		// Execute
		err = index.Insert(recordOf(2), 16)
		assert.NoError(t, err, "inserts record 2")

		// Check
		assert.Equal(t, uint32(1), index.dir.GlobalDepth, "directory depth becomes 1")
		for _, v := range []uint64{0, 1, 2} {
			got, serr := index.Search(recordOf(v))
			assert.NoError(t, serr, "searches after split")
			assert.Len(t, got, 1, "record %d still found", v)
		}

		// Clean up
		assert.NoError(t, index.RemoveFiles())
		cleanupIndex(t, name)
	})

	t.Run("inserting five records across two bits triggers two splits", func(t *testing.T) {
		// Prepare
		name := fmt.Sprintf("%s-3", testIndex)
		writePrimaryFile(t, name, 0, 1)
		index, _, err := CreateIndex(name, 8, true, identityKeyOf, identityEqual, identityHash, nil, 3, 32)
		assert.NoError(t, err, "creates the index")

		// Execute
		for _, v := range []uint64{2, 3, 4} {
			err = index.Insert(recordOf(v), int64(v)*8)
			assert.NoError(t, err, "inserts record %d", v)
		}

		// Check
		assert.Equal(t, uint32(2), index.dir.GlobalDepth, "directory depth becomes 2")
		for _, v := range []uint64{0, 1, 2, 3, 4} {
			got, serr := index.Search(recordOf(v))
			assert.NoError(t, serr, "searches after two splits")
			assert.Len(t, got, 1, "record %d still found", v)
		}

		// Clean up
		assert.NoError(t, index.RemoveFiles())
		cleanupIndex(t, name)
	})

	t.Run("records colliding on every bit end up chained in overflow", func(t *testing.T) {
		// Prepare
		name := fmt.Sprintf("%s-4", testIndex)
		writePrimaryFile(t, name, 0)
		index, _, err := CreateIndex(name, 8, true, identityKeyOf, identityEqual, identityHash, nil, 3, 32)
		assert.NoError(t, err, "creates the index")

		// Execute: 0, 8 and 16 all share the same low 3 bits
		err = index.Insert(recordOf(8), 64)
		assert.NoError(t, err, "inserts record 8")
		err = index.Insert(recordOf(16), 128)
		assert.NoError(t, err, "inserts record 16")

		// Check
		assert.Equal(t, uint32(3), index.dir.GlobalDepth, "directory grows to depth 3, its maximum")
		for _, v := range []uint64{0, 8, 16} {
			got, serr := index.Search(recordOf(v))
			assert.NoError(t, serr, "searches the overflow chain")
			assert.Len(t, got, 1, "record %d reachable via overflow", v)
		}

		// Clean up
		assert.NoError(t, index.RemoveFiles())
		cleanupIndex(t, name)
	})

	t.Run("removing a record compacts its bucket by swap-with-last", func(t *testing.T) {
		// Prepare
		name := fmt.Sprintf("%s-5", testIndex)
		writePrimaryFile(t, name, 5, 13)
		index, _, err := CreateIndex(name, 8, true, identityKeyOf, identityEqual, identityHash, nil, 3, 32)
		assert.NoError(t, err, "creates the index")

		// Execute
		err = index.Remove(recordOf(5))
		assert.NoError(t, err, "removes record 5")

		// Check
		got, err := index.Search(recordOf(5))
		assert.NoError(t, err, "searches for the removed record")
		assert.Empty(t, got, "record 5 is gone")
		got, err = index.Search(recordOf(13))
		assert.NoError(t, err, "searches for the surviving record")
		assert.Len(t, got, 1, "record 13 survives")
		assert.Equal(t, recordOf(13), got[0], "compacted into slot 0")

		// Clean up
		assert.NoError(t, index.RemoveFiles())
		cleanupIndex(t, name)
	})

	t.Run("removing twice is idempotent", func(t *testing.T) {
		// Prepare
		name := fmt.Sprintf("%s-6", testIndex)
		writePrimaryFile(t, name, 5, 13)
		index, _, err := CreateIndex(name, 8, true, identityKeyOf, identityEqual, identityHash, nil, 3, 32)
		assert.NoError(t, err, "creates the index")
		assert.NoError(t, index.Remove(recordOf(5)), "first remove")

		// Execute
		err = index.Remove(recordOf(5))

		// Check
		assert.NoError(t, err, "second remove is a no-op, not an error")
		got, err := index.Search(recordOf(5))
		assert.NoError(t, err, "searches after the redundant remove")
		assert.Empty(t, got, "still gone")

		// Clean up
		assert.NoError(t, index.RemoveFiles())
		cleanupIndex(t, name)
	})

	t.Run("rejects a duplicate key in primary-key mode", func(t *testing.T) {
		// Prepare
		name := fmt.Sprintf("%s-7", testIndex)
		writePrimaryFile(t, name, 7)
		index, _, err := CreateIndex(name, 8, true, identityKeyOf, identityEqual, identityHash, nil, 3, 32)
		assert.NoError(t, err, "creates the index")

		// Execute
		err = index.Insert(recordOf(7), 999)

		// Check
		assert.Error(t, err, "rejects the duplicate")
		assert.IsType(t, DuplicateKey{}, err, "error is a DuplicateKey")

		// Clean up
		assert.NoError(t, index.RemoveFiles())
		cleanupIndex(t, name)
	})
}

func TestOpenIndex(t *testing.T) {
	t.Run("closing then reopening preserves inserted records", func(t *testing.T) {
		// Prepare
		name := fmt.Sprintf("%s-8", testIndex)
		writePrimaryFile(t, name, 7)
		index, _, err := CreateIndex(name, 8, true, identityKeyOf, identityEqual, identityHash, nil, 3, 32)
		assert.NoError(t, err, "creates the index")
		assert.NoError(t, index.CloseFiles(), "closes the index")

		assert.True(t, IsReady(name), "readiness test passes once closed")

		// Execute
		reopened, info, err := OpenIndex(name, 8, true, identityKeyOf, identityEqual, identityHash, nil, 3, 32)

		// Check
		assert.NoError(t, err, "reopens the index")
		assert.Equal(t, uint32(3), info.MaxDepth, "max depth preserved across reopen")

		got, err := reopened.Search(recordOf(7))
		assert.NoError(t, err, "searches a reopened index")
		assert.Len(t, got, 1, "record 7 survives the round trip")

		// Clean up
		assert.NoError(t, reopened.RemoveFiles())
		cleanupIndex(t, name)
	})
}

func TestStat(t *testing.T) {
	t.Run("counts live records across an overflow chain", func(t *testing.T) {
		// Prepare
		name := fmt.Sprintf("%s-9", testIndex)
		writePrimaryFile(t, name, 0, 8, 16)
		index, _, err := CreateIndex(name, 8, true, identityKeyOf, identityEqual, identityHash, nil, 3, 32)
		assert.NoError(t, err, "creates the index")

		// Execute
		info, err := index.Stat()

		// Check
		assert.NoError(t, err, "computes stats")
		assert.Equal(t, int64(3), info.Records, "all three records counted exactly once")

		// Clean up
		assert.NoError(t, index.RemoveFiles())
		cleanupIndex(t, name)
	})
}

func TestIsReady(t *testing.T) {
	t.Run("reports false when no files exist", func(t *testing.T) {
		assert.False(t, IsReady("does-not-exist"), "missing files are not ready")
	})
}
