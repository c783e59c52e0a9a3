//go:build unit

package bucketstore

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gostonefire/extendiblehash/internal/conf"
	"github.com/gostonefire/extendiblehash/internal/model"
)

func newTestStore(t *testing.T) (*Store, func()) {
	f, err := os.CreateTemp("", "bucketstore-*.ehash")
	assert.NoError(t, err, "creates temp hash file")

	store := New(f, 64, 8, 4)
	return store, func() {
		_ = f.Close()
		_ = os.Remove(f.Name())
	}
}

func TestAllocate(t *testing.T) {
	t.Run("allocates successive offsets at block size multiples", func(t *testing.T) {
		// Prepare
		store, cleanup := newTestStore(t)
		defer cleanup()

		// Execute
		o1, err := store.Allocate()
		assert.NoError(t, err, "allocates first block")
		o2, err := store.Allocate()
		assert.NoError(t, err, "allocates second block")

		// Check
		assert.Equal(t, int64(0), o1, "first offset is zero")
		assert.Equal(t, int64(64), o2, "second offset is one block size later")
	})

	t.Run("reuses freed offsets before extending the file", func(t *testing.T) {
		// Prepare
		store, cleanup := newTestStore(t)
		defer cleanup()
		o1, _ := store.Allocate()
		o2, _ := store.Allocate()
		store.Free(o1)

		// Execute
		o3, err := store.Allocate()

		// Check
		assert.NoError(t, err, "allocates after free")
		assert.Equal(t, o1, o3, "reclaimed hole reused")
		assert.NotEqual(t, o2, o3, "does not reuse a live block")
	})
}

func TestReadWrite(t *testing.T) {
	t.Run("round trips a bucket through the file", func(t *testing.T) {
		// Prepare
		store, cleanup := newTestStore(t)
		defer cleanup()
		offset, err := store.Allocate()
		assert.NoError(t, err, "allocates block")

		bucket := store.NewBucket(offset)
		bucket.Size = 2
		bucket.Records[0] = model.Record{InUse: true, Bytes: []byte("aaaaaaaa")}
		bucket.Records[1] = bucket.Records[0]
		bucket.Next = 128

		// Execute
		err = store.Write(offset, bucket)
		assert.NoError(t, err, "writes bucket")
		got, err := store.Read(offset)
		assert.NoError(t, err, "reads bucket back")

		// Check
		assert.Equal(t, int64(2), got.Size, "size preserved")
		assert.Equal(t, int64(128), got.Next, "next preserved")
		assert.Equal(t, []byte("aaaaaaaa"), got.Records[0].Bytes, "record bytes preserved")
		assert.Len(t, got.Records, 4, "capacity preserved regardless of size")
	})
}

func TestWalkChain(t *testing.T) {
	t.Run("follows next pointers until the sentinel", func(t *testing.T) {
		// Prepare
		store, cleanup := newTestStore(t)
		defer cleanup()
		head, _ := store.Allocate()
		mid, _ := store.Prepend(head, store.NewBucket(0))
		tail, _ := store.Prepend(mid, store.NewBucket(0))

		// Execute
		var offsets []int64
		it := store.WalkChain(tail)
		for it.HasNext() {
			o, _, err := it.Next()
			assert.NoError(t, err, "reads chain element")
			offsets = append(offsets, o)
		}

		// Check
		assert.Equal(t, []int64{tail, mid, head}, offsets, "walks from new head to original head")
	})

	t.Run("reports no more elements past the sentinel", func(t *testing.T) {
		// Prepare
		store, cleanup := newTestStore(t)
		defer cleanup()
		offset, _ := store.Allocate()

		// Execute
		it := store.WalkChain(offset)

		// Check
		assert.True(t, it.HasNext(), "head itself is an element")
		_, _, err := it.Next()
		assert.NoError(t, err, "reads the head")
		assert.False(t, it.HasNext(), "no further elements")
	})
}

func TestPrepend(t *testing.T) {
	t.Run("new head links to the previous head", func(t *testing.T) {
		// Prepare
		store, cleanup := newTestStore(t)
		defer cleanup()
		head, _ := store.Allocate()

		// Execute
		newHead, err := store.Prepend(head, store.NewBucket(0))
		assert.NoError(t, err, "prepends new head")

		got, err := store.Read(newHead)
		assert.NoError(t, err, "reads new head")

		// Check
		assert.Equal(t, head, got.Next, "new head points at old head")
		assert.NotEqual(t, conf.NoOverflow, got.Next, "chain is not terminated at the new head")
	})
}
