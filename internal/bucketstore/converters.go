package bucketstore

import (
	"encoding/binary"

	"github.com/gostonefire/extendiblehash/internal/conf"
	"github.com/gostonefire/extendiblehash/internal/model"
)

// bucketToBytes - Converts a Bucket to its on-disk block representation.
// buf must already be sized to the store's block size.
func bucketToBytes(buf []byte, bucket model.Bucket, recordLength int64) {
	binary.LittleEndian.PutUint64(buf[0:], uint64(bucket.Size))

	recordStart := conf.SizeFieldBytes
	for i, r := range bucket.Records {
		off := recordStart + int64(i)*recordLength
		copy(buf[off:off+recordLength], r.Bytes)
	}

	nextOffset := int64(len(buf)) - conf.NextFieldBytes
	binary.LittleEndian.PutUint64(buf[nextOffset:], uint64(bucket.Next))
}

// bytesToBucket - Converts a raw block read from the hash file into a Bucket.
func bytesToBucket(buf []byte, offset, recordLength, capacity int64) model.Bucket {
	size := int64(binary.LittleEndian.Uint64(buf[0:]))

	recordStart := conf.SizeFieldBytes
	records := make([]model.Record, capacity)
	for i := int64(0); i < capacity; i++ {
		off := recordStart + i*recordLength
		b := make([]byte, recordLength)
		copy(b, buf[off:off+recordLength])
		records[i] = model.Record{InUse: i < size, Bytes: b}
	}

	nextOffset := int64(len(buf)) - conf.NextFieldBytes
	next := int64(binary.LittleEndian.Uint64(buf[nextOffset:]))

	return model.Bucket{
		Offset:  offset,
		Size:    size,
		Records: records,
		Next:    next,
	}
}
