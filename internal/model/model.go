// Package model holds the shared data structures passed between the hash
// addressing, bucket store and directory packages.
package model

// Record - One record slot inside a Bucket. Bytes is the caller-owned, fixed
// length (R) byte image; the core never interprets it beyond hashing and
// projecting a key out of it via the caller-supplied KeyFunc.
type Record struct {
	InUse bool
	Bytes []byte
}

// Bucket - All records in one bucket block, in on-disk order.
//   - Size is the number of live (InUse) records; by invariant they are
//     compacted to the front of Records via swap-with-last on removal.
//   - Records has a fixed length (the bucket capacity M) regardless of Size.
//   - Next is the byte offset of the next block in this bucket's overflow
//     chain, or conf.NoOverflow if this is the last (or only) block.
type Bucket struct {
	Offset  int64
	Size    int64
	Records []Record
	Next    int64
}

// DirectoryEntry - One slot of the directory: the address pattern a slot was
// created for, the local depth of the bucket it points to, and that bucket's
// byte offset in the hash file.
type DirectoryEntry struct {
	LocalDepth uint32
	Sequence   uint64
	BucketRef  int64
}
