// Package directory implements the in-memory directory: the table mapping a
// hash sequence to a bucket offset, and the split/double/merge protocol that
// keeps it consistent with the bucket store as the index grows and shrinks.
package directory

import (
	"github.com/gostonefire/extendiblehash/crt"
	"github.com/gostonefire/extendiblehash/hashfunc"
	"github.com/gostonefire/extendiblehash/internal/addressing"
	"github.com/gostonefire/extendiblehash/internal/bucketstore"
	"github.com/gostonefire/extendiblehash/internal/conf"
	"github.com/gostonefire/extendiblehash/internal/model"
)

// Directory - The directory's entry vector, held entirely in RAM and indexed
// directly by the low GlobalDepth bits of a hash sequence (the dense, O(1)
// representation spec.md §4.3.1 permits as equivalent to a linear scan).
type Directory struct {
	MaxDepth    uint32
	GlobalDepth uint32
	Entries     []model.DirectoryEntry
}

// New - Returns a freshly initialized directory: a single entry at local
// depth 0 pointing at rootBucketRef.
func New(maxDepth uint32, rootBucketRef int64) *Directory {
	return &Directory{
		MaxDepth:    maxDepth,
		GlobalDepth: 0,
		Entries: []model.DirectoryEntry{
			{LocalDepth: 0, Sequence: 0, BucketRef: rootBucketRef},
		},
	}
}

// Lookup - Returns the entry index and bucket offset for seq. Exactly one
// entry matches, by invariants 1-2 of spec.md §3.
func (d *Directory) Lookup(seq addressing.Sequence) (idx int, bucketRef int64) {
	idx = int(seq.Low(d.GlobalDepth))
	bucketRef = d.Entries[idx].BucketRef
	return
}

// LocalDepth - Returns the local depth of the entry at idx.
func (d *Directory) LocalDepth(idx int) uint32 {
	return d.Entries[idx].LocalDepth
}

// entriesForGroup - Returns every entry index whose low ld bits match idx's,
// i.e. every slot currently aliasing the same bucket as idx at depth ld.
// Exactly 2^(GlobalDepth-ld) indices are returned, per invariant 2.
func (d *Directory) entriesForGroup(idx int, ld uint32) []int {
	pattern := idx & int(addressing.Mask(ld))
	step := 1 << ld
	out := make([]int, 0, len(d.Entries)/step)
	for j := pattern; j < len(d.Entries); j += step {
		out = append(out, j)
	}
	return out
}

// Double - Extends the directory by one bit: every entry e is reproduced into
// a twin sharing its local depth and bucket_ref, differing only in the new
// high bit of its sequence. Lookup(seq) is unchanged for every seq (invariant 6).
func (d *Directory) Double() {
	old := len(d.Entries)
	next := make([]model.DirectoryEntry, old*2)
	for i := 0; i < old; i++ {
		e := d.Entries[i]
		e.Sequence = uint64(i)
		next[i] = e
		twin := e
		twin.Sequence = uint64(i + old)
		next[i+old] = twin
	}
	d.Entries = next
	d.GlobalDepth++
}

// Split - Splits the bucket addressed by entry idx to make room for the
// triggering record r, doubling the directory first if necessary, and
// recursing (bounded by MaxDepth-localDepth) or extending an overflow chain
// if the redistributed records still don't leave room for r.
func (d *Directory) Split(store *bucketstore.Store, addr *addressing.Addressing, keyOf hashfunc.KeyFunc, idx int, r model.Record) error {
	return d.split(store, addr, keyOf, idx, r, 0)
}

func (d *Directory) split(store *bucketstore.Store, addr *addressing.Addressing, keyOf hashfunc.KeyFunc, idx int, r model.Record, iterations uint32) (err error) {
	if iterations > d.MaxDepth {
		return crt.CapacityExhausted{}
	}

	ld := d.Entries[idx].LocalDepth
	if ld == d.GlobalDepth {
		d.Double()
	}

	o := d.Entries[idx].BucketRef
	bucket, err := store.Read(o)
	if err != nil {
		return
	}

	oPrime, err := store.Allocate()
	if err != nil {
		return
	}

	group := d.entriesForGroup(idx, ld)
	for _, j := range group {
		d.Entries[j].LocalDepth = ld + 1
		if (uint64(j)>>ld)&1 == 1 {
			d.Entries[j].BucketRef = oPrime
		}
	}

	keep := store.NewBucket(o)
	fresh := store.NewBucket(oPrime)
	for i := int64(0); i < bucket.Size; i++ {
		rec := bucket.Records[i]
		seq := addr.Of(keyOf(rec.Bytes))
		if seq.Bit(ld) == 1 {
			fresh.Records[fresh.Size] = rec
			fresh.Size++
		} else {
			keep.Records[keep.Size] = rec
			keep.Size++
		}
	}

	seqR := addr.Of(keyOf(r.Bytes))
	target := &keep
	if seqR.Bit(ld) == 1 {
		target = &fresh
	}

	placed := false
	if target.Size < store.Capacity {
		target.Records[target.Size] = r
		target.Size++
		placed = true
	}

	if err = store.Write(o, keep); err != nil {
		return
	}
	if err = store.Write(oPrime, fresh); err != nil {
		return
	}

	if placed {
		return nil
	}

	idx2, _ := d.Lookup(seqR)
	if d.Entries[idx2].LocalDepth < d.MaxDepth {
		return d.split(store, addr, keyOf, idx2, r, iterations+1)
	}
	return d.ExtendOverflow(store, idx2, r)
}

// ExtendOverflow - Prepends a fresh block holding only r to the chain rooted
// at idx's bucket, and repoints every directory entry aliasing that bucket to
// the new head. Used both to open a bucket's first overflow block and to add
// another link once every existing block in the chain is full.
func (d *Directory) ExtendOverflow(store *bucketstore.Store, idx int, r model.Record) error {
	ld := d.Entries[idx].LocalDepth
	oldHead := d.Entries[idx].BucketRef

	newHead := store.NewBucket(0)
	newHead.Records[0] = r
	newHead.Size = 1

	newHeadOffset, err := store.Prepend(oldHead, newHead)
	if err != nil {
		return err
	}

	for _, j := range d.entriesForGroup(idx, ld) {
		d.Entries[j].BucketRef = newHeadOffset
	}
	return nil
}

// TryMerge - Attempts to merge the bucket at idx with its buddy (the bucket
// that would have resulted from an un-split of the same parent), per
// spec.md §4.3.4. A no-op unless both buckets are chain-free, share the same
// local depth greater than zero, and their combined size fits in one bucket.
func (d *Directory) TryMerge(store *bucketstore.Store, idx int) (err error) {
	ld := d.Entries[idx].LocalDepth
	if ld == 0 {
		return nil
	}

	buddyIdx := idx ^ (1 << (ld - 1))
	if d.Entries[buddyIdx].LocalDepth != ld {
		return nil
	}
	if d.Entries[buddyIdx].BucketRef == d.Entries[idx].BucketRef {
		return nil
	}

	a, err := store.Read(d.Entries[idx].BucketRef)
	if err != nil {
		return
	}
	b, err := store.Read(d.Entries[buddyIdx].BucketRef)
	if err != nil {
		return
	}
	if a.Next != conf.NoOverflow || b.Next != conf.NoOverflow {
		return nil
	}
	if a.Size+b.Size > store.Capacity {
		return nil
	}

	survivor := a.Offset
	buddy := b.Offset

	merged := store.NewBucket(survivor)
	for i := int64(0); i < a.Size; i++ {
		merged.Records[merged.Size] = a.Records[i]
		merged.Size++
	}
	for i := int64(0); i < b.Size; i++ {
		merged.Records[merged.Size] = b.Records[i]
		merged.Size++
	}

	if err = store.Write(survivor, merged); err != nil {
		return
	}
	store.Free(buddy)

	newLd := ld - 1
	for _, j := range d.entriesForGroup(idx, newLd) {
		d.Entries[j].LocalDepth = newLd
		d.Entries[j].BucketRef = survivor
	}
	return nil
}

// TryHalve - Collapses the directory by one bit at a time for as long as
// every twin pair in the top and bottom halves agrees on local depth and
// bucket_ref, undoing Double where merges have made it possible.
func (d *Directory) TryHalve() {
	for d.GlobalDepth > 0 {
		half := len(d.Entries) / 2
		canHalve := true
		for i := 0; i < half; i++ {
			if d.Entries[i].LocalDepth >= d.GlobalDepth ||
				d.Entries[i].LocalDepth != d.Entries[i+half].LocalDepth ||
				d.Entries[i].BucketRef != d.Entries[i+half].BucketRef {
				canHalve = false
				break
			}
		}
		if !canHalve {
			return
		}
		d.Entries = d.Entries[:half]
		d.GlobalDepth--
	}
}
