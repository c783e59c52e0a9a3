// Package extendiblehash implements a disk-resident extendible hashing
// index over a caller-owned, fixed-length record file: a dynamic hash
// structure that grows its addressing width by splitting overflowing
// buckets and, when necessary, doubling its directory, so no a-priori
// sizing of the index is required.
package extendiblehash

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"

	"github.com/gostonefire/extendiblehash/crt"
	"github.com/gostonefire/extendiblehash/hashfunc"
	"github.com/gostonefire/extendiblehash/internal/addressing"
	"github.com/gostonefire/extendiblehash/internal/bucketstore"
	"github.com/gostonefire/extendiblehash/internal/conf"
	"github.com/gostonefire/extendiblehash/internal/directory"
	"github.com/gostonefire/extendiblehash/internal/utils"
)

// IndexInfo - Information structure describing an index created or opened.
//   - Records is the number of live records, populated only by Stat; it is
//     always zero on the IndexInfo returned by CreateIndex and OpenIndex,
//     since computing it requires walking every bucket chain.
//   - RecordsPerBucket is the number of record slots available in each bucket.
//   - GlobalDepth is the directory's current address width in bits.
//   - MaxDepth is the configured maximum address width (D).
//   - NumberOfBuckets is the number of distinct head buckets currently
//     addressable (2^GlobalDepth directory slots may alias fewer buckets).
//   - FileSize is the total size of the hash file.
type IndexInfo struct {
	Records          int64
	RecordsPerBucket int64
	GlobalDepth      uint32
	MaxDepth         uint32
	NumberOfBuckets  int64
	FileSize         int64
}

// String - Renders FileSize in human-readable form, e.g. "12 MB".
func (I IndexInfo) String() string {
	return humanize.Bytes(uint64(I.FileSize))
}

// Index - The main implementation struct; the user-visible surface over the
// Hash Addressing, Bucket Store and Directory components.
type Index struct {
	hashFile     *os.File
	dirFile      *os.File
	name         string
	primaryKey   bool
	recordLength int64
	keyOf        hashfunc.KeyFunc
	equal        hashfunc.EqualFunc
	removedOf    hashfunc.RemovedFunc
	store        *bucketstore.Store
	addr         *addressing.Addressing
	dir          *directory.Directory

	// CloseFiles - Flushes the directory to disk and closes both files. Use
	// this preferably in a "defer" directly after CreateIndex or OpenIndex.
	CloseFiles func() error
	// RemoveFiles - Removes the hash and directory files if they exist. The
	// function first internally tries to close them using CloseFiles.
	RemoveFiles func() error
}

// validateConstruction - Checks construction parameters shared by CreateIndex
// and OpenIndex, defaulting d and b, and returns the derived bucket capacity.
func validateConstruction(name string, recordLength int64, keyOf hashfunc.KeyFunc, d uint32, b int64) (maxDepth uint32, blockSize int64, capacity int64, err error) {
	if name == "" {
		err = crt.NewInvalidConfiguration("name can not be empty, it will be used to name physical files")
		return
	}
	if recordLength <= 0 {
		err = crt.NewInvalidConfiguration("record length must be a positive value higher than 0 (zero)")
		return
	}
	if keyOf == nil {
		err = crt.NewInvalidConfiguration("a key-projection callable must be supplied")
		return
	}
	maxDepth = d
	if maxDepth == 0 {
		maxDepth = conf.DefaultGlobalDepth
	}

	blockSize = b
	if blockSize == 0 {
		blockSize = conf.DefaultBlockSize
	}

	capacity = (blockSize - conf.BucketHeaderBytes) / recordLength
	if capacity < 1 {
		err = crt.NewInvalidConfiguration(fmt.Sprintf("record length %d does not fit in a bucket of size %d", recordLength, blockSize))
		return
	}

	return
}

// CreateIndex - Creates a fresh hash file and directory file next to the
// caller's primary record file, then performs the create_index operation:
// scans the primary file sequentially in fixed recordLength-byte strides and
// inserts every non-removed record.
//   - name is the primary record file's path; the index files are named
//     name+".ehash" and name+".ehashdir".
//   - recordLength is R, the fixed size in bytes of one record.
//   - primaryKey, if true, rejects duplicate keys on Insert.
//   - keyOf projects a key out of a record's raw bytes.
//   - equal compares two projected keys.
//   - hash produces an unsigned hash from a key; nil defaults to
//     hashfunc.DefaultHash.
//   - removed reports whether a record read from the primary file is
//     logically deleted and should be skipped; nil means no record is ever
//     skipped.
//   - d is the maximum address width in bits; 0 defaults to 32.
//   - b is the bucket block size in bytes; 0 defaults to 1024.
func CreateIndex(
	name string,
	recordLength int64,
	primaryKey bool,
	keyOf hashfunc.KeyFunc,
	equal hashfunc.EqualFunc,
	hash hashfunc.HashFunc,
	removed hashfunc.RemovedFunc,
	d uint32,
	b int64,
) (index *Index, info IndexInfo, err error) {
	maxDepth, blockSize, capacity, err := validateConstruction(name, recordLength, keyOf, d, b)
	if err != nil {
		return
	}
	if equal == nil {
		equal = utils.IsEqual
	}

	hashFile, err := os.OpenFile(name+conf.HashFileSuffix, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		err = crt.NewIoError("error while creating hash file", err)
		return
	}
	dirFile, err := os.OpenFile(name+conf.DirFileSuffix, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		_ = hashFile.Close()
		err = crt.NewIoError("error while creating directory file", err)
		return
	}

	store := bucketstore.New(hashFile, blockSize, recordLength, capacity)
	root, err := store.Allocate()
	if err != nil {
		_ = hashFile.Close()
		_ = dirFile.Close()
		return
	}

	index = &Index{
		hashFile:     hashFile,
		dirFile:      dirFile,
		name:         name,
		primaryKey:   primaryKey,
		recordLength: recordLength,
		keyOf:        keyOf,
		equal:        equal,
		removedOf:    removed,
		store:        store,
		addr:         addressing.New(maxDepth, hash),
		dir:          directory.New(maxDepth, root),
	}
	index.CloseFiles = index.closeFiles
	index.RemoveFiles = index.removeFiles

	if err = index.populateFromPrimaryFile(); err != nil {
		_ = index.CloseFiles()
		index = nil
		return
	}

	info = index.info()
	return
}

// populateFromPrimaryFile - Implements the create_index read side: opens the
// primary record file read-only and walks fixed recordLength-byte strides,
// inserting every record for which removedOf reports false.
func (I *Index) populateFromPrimaryFile() (err error) {
	primary, err := os.Open(I.name)
	if err != nil {
		err = crt.NewIoError("error while opening primary record file", err)
		return
	}
	defer func() { _ = primary.Close() }()

	record := make([]byte, I.recordLength)
	var offset int64
	for {
		var n int
		n, err = primary.ReadAt(record, offset)
		if n == int(I.recordLength) {
			if I.removedOf == nil || !I.removedOf(record) {
				rec := make([]byte, I.recordLength)
				copy(rec, record)
				if ierr := I.Insert(rec, offset); ierr != nil {
					err = ierr
					return
				}
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				err = nil
			} else {
				err = crt.NewIoError("error while reading primary record file", err)
			}
			return
		}
		offset += I.recordLength
	}
}

// OpenIndex - Opens a previously created index's hash file and directory
// file. The caller must supply the same recordLength, d and b used at
// creation; the core persists neither R nor B.
func OpenIndex(
	name string,
	recordLength int64,
	primaryKey bool,
	keyOf hashfunc.KeyFunc,
	equal hashfunc.EqualFunc,
	hash hashfunc.HashFunc,
	removed hashfunc.RemovedFunc,
	d uint32,
	b int64,
) (index *Index, info IndexInfo, err error) {
	maxDepth, blockSize, capacity, err := validateConstruction(name, recordLength, keyOf, d, b)
	if err != nil {
		return
	}
	if equal == nil {
		equal = utils.IsEqual
	}

	hashFile, err := os.OpenFile(name+conf.HashFileSuffix, os.O_RDWR, 0644)
	if err != nil {
		err = crt.NewIoError("error while opening hash file", err)
		return
	}
	dirFile, err := os.OpenFile(name+conf.DirFileSuffix, os.O_RDWR, 0644)
	if err != nil {
		_ = hashFile.Close()
		err = crt.NewIoError("error while opening directory file", err)
		return
	}

	dir, err := directory.Load(dirFile)
	if err != nil {
		_ = hashFile.Close()
		_ = dirFile.Close()
		return
	}
	if dir.MaxDepth != maxDepth {
		_ = hashFile.Close()
		_ = dirFile.Close()
		err = crt.NewCorruptIndex(fmt.Sprintf("directory was created with D=%d, not %d", dir.MaxDepth, maxDepth), nil)
		return
	}

	store := bucketstore.New(hashFile, blockSize, recordLength, capacity)

	index = &Index{
		hashFile:     hashFile,
		dirFile:      dirFile,
		name:         name,
		primaryKey:   primaryKey,
		recordLength: recordLength,
		keyOf:        keyOf,
		equal:        equal,
		removedOf:    removed,
		store:        store,
		addr:         addressing.New(maxDepth, hash),
		dir:          dir,
	}
	index.CloseFiles = index.closeFiles
	index.RemoveFiles = index.removeFiles

	info = index.info()
	return
}

// IsReady - The readiness test: reports whether both the hash file and
// directory file exist, are non-empty, and the directory file parses as a
// consistent directory.
func IsReady(name string) bool {
	hashFile, err := os.Open(name + conf.HashFileSuffix)
	if err != nil {
		return false
	}
	defer func() { _ = hashFile.Close() }()

	hashStat, err := hashFile.Stat()
	if err != nil || hashStat.Size() == 0 {
		return false
	}

	dirFile, err := os.Open(name + conf.DirFileSuffix)
	if err != nil {
		return false
	}
	defer func() { _ = dirFile.Close() }()

	dirStat, err := dirFile.Stat()
	if err != nil || dirStat.Size() == 0 {
		return false
	}

	_, err = directory.Load(dirFile)
	return err == nil
}

// closeFiles - Flushes the directory to the directory file and closes both
// files.
func (I *Index) closeFiles() error {
	err := I.dir.Save(I.dirFile)
	if cerr := I.hashFile.Close(); err == nil {
		err = cerr
	}
	if cerr := I.dirFile.Close(); err == nil {
		err = cerr
	}
	return err
}

// removeFiles - Closes then removes both the hash file and the directory
// file.
func (I *Index) removeFiles() error {
	_ = I.closeFiles()
	err := os.Remove(I.name + conf.HashFileSuffix)
	if rerr := os.Remove(I.name + conf.DirFileSuffix); err == nil {
		err = rerr
	}
	return err
}

// info - Builds an IndexInfo snapshot of the index's current geometry.
func (I *Index) info() IndexInfo {
	stat, _ := I.hashFile.Stat()
	var size int64
	if stat != nil {
		size = stat.Size()
	}

	heads := make(map[int64]struct{}, len(I.dir.Entries))
	for _, e := range I.dir.Entries {
		heads[e.BucketRef] = struct{}{}
	}

	return IndexInfo{
		RecordsPerBucket: I.store.Capacity,
		GlobalDepth:      I.dir.GlobalDepth,
		MaxDepth:         I.dir.MaxDepth,
		NumberOfBuckets:  int64(len(heads)),
		FileSize:         size,
	}
}
