package extendiblehash

import (
	"fmt"

	"github.com/gostonefire/extendiblehash/crt"
	"github.com/gostonefire/extendiblehash/internal/model"
	"github.com/gostonefire/extendiblehash/internal/utils"
)

// Search - Walks the directory to the head bucket for key, then its overflow
// chain, and returns every record whose projected key compares equal under
// the caller-supplied equality. In primary-key mode the result has at most
// one element. Returns an empty slice, never an error, when nothing matches.
func (I *Index) Search(key []byte) (records [][]byte, err error) {
	seq := I.addr.Of(key)
	_, head := I.dir.Lookup(seq)

	it := I.store.WalkChain(head)
	for it.HasNext() {
		_, bucket, ierr := it.Next()
		if ierr != nil {
			err = ierr
			return
		}

		for i := int64(0); i < bucket.Size; i++ {
			r := bucket.Records[i]
			if I.equal(key, I.keyOf(r.Bytes)) {
				records = append(records, r.Bytes)
				if I.primaryKey {
					return
				}
			}
		}
	}

	return
}

// Insert - Inserts record, whose byte offset in the primary file is
// recordRef, into the index. In primary-key mode, fails with DuplicateKey if
// the key is already present in the reachable chain. Splits (possibly
// doubling the directory) or extends the bucket's overflow chain as needed.
func (I *Index) Insert(record []byte, recordRef int64) (err error) {
	if int64(len(record)) != I.recordLength {
		err = crt.NewInvalidConfiguration(fmt.Sprintf("record must be %d bytes, got %d", I.recordLength, len(record)))
		return
	}

	key := I.keyOf(record)
	seq := I.addr.Of(key)
	idx, head := I.dir.Lookup(seq)

	if I.primaryKey {
		it := I.store.WalkChain(head)
		for it.HasNext() {
			_, bucket, ierr := it.Next()
			if ierr != nil {
				err = ierr
				return
			}
			for i := int64(0); i < bucket.Size; i++ {
				if I.equal(key, I.keyOf(bucket.Records[i].Bytes)) {
					err = crt.DuplicateKey{}
					return
				}
			}
		}
	}

	r := model.Record{InUse: true, Bytes: record}

	tail, bucket, err := I.lastChainBlock(head)
	if err != nil {
		return
	}

	if bucket.Size < I.store.Capacity {
		bucket.Records[bucket.Size] = r
		bucket.Size++
		err = I.store.Write(tail, bucket)
		return
	}

	ld := I.dir.LocalDepth(idx)
	if tail != head || ld >= I.dir.MaxDepth {
		// Either this is an overflow-chain bucket (no further split possible
		// along this chain's prefix, per spec.md §4.3 invariant 4) or the
		// head bucket has already reached the maximum address width.
		err = I.dir.ExtendOverflow(I.store, idx, r)
		return
	}

	err = I.dir.Split(I.store, I.addr, I.keyOf, idx, r)
	return
}

// lastChainBlock - Walks the chain rooted at head and returns the offset and
// contents of the first block that has a free record slot. If every block is
// full, the walk ends at the last block of the chain and that block is
// returned.
func (I *Index) lastChainBlock(head int64) (offset int64, bucket model.Bucket, err error) {
	it := I.store.WalkChain(head)
	for it.HasNext() {
		offset, bucket, err = it.Next()
		if err != nil {
			return
		}
		if bucket.Size < I.store.Capacity {
			return
		}
	}
	return
}

// Remove - Removes every record matching key from its chain by swap-with-last
// compaction inside each bucket touched. A no-op, not an error, if key is
// absent. Attempts a merge of the owning bucket with its buddy afterward.
func (I *Index) Remove(key []byte) (err error) {
	seq := I.addr.Of(key)
	idx, head := I.dir.Lookup(seq)

	it := I.store.WalkChain(head)
	for it.HasNext() {
		offset, bucket, ierr := it.Next()
		if ierr != nil {
			err = ierr
			return
		}

		changed := false
		for i := int64(0); i < bucket.Size; {
			if I.equal(key, I.keyOf(bucket.Records[i].Bytes)) {
				bucket.Size--
				bucket.Records[i] = bucket.Records[bucket.Size]
				bucket.Records[bucket.Size] = model.Record{Bytes: utils.ZeroedCopy(bucket.Records[bucket.Size].Bytes)}
				changed = true
				continue
			}
			i++
		}

		if changed {
			if err = I.store.Write(offset, bucket); err != nil {
				return
			}
		}
	}

	if err = I.dir.TryMerge(I.store, idx); err != nil {
		return
	}
	I.dir.TryHalve()
	return
}
