// Package conf holds the fixed, cross-package constants describing the on-disk
// layout of the hash file and directory file.
package conf

// DefaultGlobalDepth - The default maximum address width (D) in bits, used when a
// caller does not supply one at construction time.
const DefaultGlobalDepth uint32 = 32

// DefaultBlockSize - The default bucket block size (B) in bytes.
const DefaultBlockSize int64 = 1024

// SizeFieldBytes - Width in bytes of the bucket "size" field (int64 LE).
const SizeFieldBytes int64 = 8

// NextFieldBytes - Width in bytes of the bucket "next" field (int64 LE).
const NextFieldBytes int64 = 8

// BucketHeaderBytes - Combined width of the fields surrounding the record slots
// in a bucket block (size field + next field).
const BucketHeaderBytes int64 = SizeFieldBytes + NextFieldBytes

// NoOverflow - Sentinel value for Bucket.Next meaning end-of-chain.
const NoOverflow int64 = -1

// DirHeaderGlobalDepthBytes - Width of the global_depth_current header field (uint32 LE).
const DirHeaderGlobalDepthBytes int64 = 4

// DirHeaderMaxDepthBytes - Width of the D header field (uint32 LE).
const DirHeaderMaxDepthBytes int64 = 4

// DirHeaderEntryCountBytes - Width of the entry-count header field (uint64 LE).
const DirHeaderEntryCountBytes int64 = 8

// DirHeaderBytes - Total width of the directory file header.
const DirHeaderBytes int64 = DirHeaderGlobalDepthBytes + DirHeaderMaxDepthBytes + DirHeaderEntryCountBytes

// DirEntryLocalDepthBytes - Width of one directory entry's local_depth field (uint32 LE).
const DirEntryLocalDepthBytes int64 = 4

// DirEntryBucketRefBytes - Width of one directory entry's bucket_ref field (int64 LE).
const DirEntryBucketRefBytes int64 = 8

// SequenceTerminatorBytes - The NUL byte following the ASCII sequence in each directory entry.
const SequenceTerminatorBytes int64 = 1

// HashFileSuffix - Suffix used to form the hash (bucket heap) file name.
const HashFileSuffix = ".ehash"

// DirFileSuffix - Suffix used to form the directory file name.
const DirFileSuffix = ".ehashdir"
