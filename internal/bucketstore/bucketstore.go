// Package bucketstore implements the bucket-granular heap persisted in the
// hash file: allocation, reads, writes, overflow-chain traversal, and
// chain-head prepending.
package bucketstore

import (
	"io"
	"os"

	"github.com/google/btree"

	"github.com/gostonefire/extendiblehash/crt"
	"github.com/gostonefire/extendiblehash/internal/conf"
	"github.com/gostonefire/extendiblehash/internal/model"
)

// freeSlot - One reclaimable bucket offset, ordered by offset in the freelist
// btree so the lowest hole is always reused first.
type freeSlot int64

// Less - Orders freeSlot values by offset, per the btree.Item contract.
func (f freeSlot) Less(than btree.Item) bool {
	return f < than.(freeSlot)
}

// Store - A flat heap of fixed-size bucket blocks in the hash file, addressed
// by byte offset. Offsets are always multiples of BlockSize, starting at 0 —
// the hash file carries no header of its own.
type Store struct {
	file         *os.File
	BlockSize    int64
	RecordLength int64
	Capacity     int64
	free         *btree.BTree
}

// New - Wraps an already open hash file. blockSize, recordLength and capacity
// (M, the bucket's record capacity) describe the fixed geometry used to
// compute byte offsets.
func New(file *os.File, blockSize, recordLength, capacity int64) *Store {
	return &Store{
		file:         file,
		BlockSize:    blockSize,
		RecordLength: recordLength,
		Capacity:     capacity,
		free:         btree.New(32),
	}
}

// NewBucket - Returns a freshly zeroed, in-memory Bucket with no overflow,
// ready to be populated and written with Write.
func (S *Store) NewBucket(offset int64) model.Bucket {
	records := make([]model.Record, S.Capacity)
	for i := range records {
		records[i] = model.Record{Bytes: make([]byte, S.RecordLength)}
	}
	return model.Bucket{
		Offset:  offset,
		Size:    0,
		Records: records,
		Next:    conf.NoOverflow,
	}
}

// Allocate - Returns the offset of a fresh, zeroed bucket block: either a
// reclaimed hole from the freelist, or a block appended at end-of-file.
func (S *Store) Allocate() (offset int64, err error) {
	if min := S.free.Min(); min != nil {
		S.free.Delete(min)
		offset = int64(min.(freeSlot))
		err = S.Write(offset, S.NewBucket(offset))
		return
	}

	offset, err = S.file.Seek(0, io.SeekEnd)
	if err != nil {
		err = crt.NewIoError("error while seeking to end of hash file", err)
		return
	}

	err = S.Write(offset, S.NewBucket(offset))
	if err != nil {
		return
	}

	return
}

// Free - Marks offset as reclaimable; a later Allocate may hand it back out.
// Callers must ensure no directory entry still references offset.
func (S *Store) Free(offset int64) {
	S.free.ReplaceOrInsert(freeSlot(offset))
}

// Read - Reads one bucket block at offset.
func (S *Store) Read(offset int64) (bucket model.Bucket, err error) {
	_, err = S.file.Seek(offset, io.SeekStart)
	if err != nil {
		err = crt.NewIoError("error while seeking to bucket offset", err)
		return
	}

	buf := make([]byte, S.BlockSize)
	_, err = io.ReadFull(S.file, buf)
	if err != nil {
		err = crt.NewIoError("error while reading bucket block", err)
		return
	}

	bucket = bytesToBucket(buf, offset, S.RecordLength, S.Capacity)
	return
}

// Write - Overwrites the block at offset in place. Writes are always
// full-block.
func (S *Store) Write(offset int64, bucket model.Bucket) (err error) {
	buf := make([]byte, S.BlockSize)
	bucketToBytes(buf, bucket, S.RecordLength)

	_, err = S.file.Seek(offset, io.SeekStart)
	if err != nil {
		err = crt.NewIoError("error while seeking to bucket offset", err)
		return
	}

	_, err = S.file.Write(buf)
	if err != nil {
		err = crt.NewIoError("error while writing bucket block", err)
		return
	}

	return
}

// Prepend - Allocates a new block, sets its Next to headOffset, writes
// newHead's contents into it, and returns its offset as the new chain head.
// The caller is responsible for repointing the owning directory entry/entries
// to newHeadOffset.
func (S *Store) Prepend(headOffset int64, newHead model.Bucket) (newHeadOffset int64, err error) {
	newHeadOffset, err = S.Allocate()
	if err != nil {
		return
	}

	newHead.Offset = newHeadOffset
	newHead.Next = headOffset
	err = S.Write(newHeadOffset, newHead)
	return
}

// ChainIterator - A lazy, finite iterator over a bucket's overflow chain.
// Each block is read exactly once, starting from headOffset.
type ChainIterator struct {
	store *Store
	next  int64
	done  bool
}

// WalkChain - Returns a ChainIterator rooted at headOffset. The head itself is
// the first element returned by Next.
func (S *Store) WalkChain(headOffset int64) *ChainIterator {
	return &ChainIterator{store: S, next: headOffset}
}

// HasNext - Reports whether another block remains in the chain.
func (C *ChainIterator) HasNext() bool {
	return !C.done && C.next != conf.NoOverflow
}

// Next - Returns the next (offset, Bucket) pair in the chain.
func (C *ChainIterator) Next() (offset int64, bucket model.Bucket, err error) {
	if !C.HasNext() {
		err = crt.NoRecordFound{}
		return
	}

	offset = C.next
	bucket, err = C.store.Read(offset)
	if err != nil {
		C.done = true
		return
	}

	C.next = bucket.Next
	return
}
