package directory

import (
	"encoding/binary"
	"io"
	"os"

	"github.com/gostonefire/extendiblehash/crt"
	"github.com/gostonefire/extendiblehash/internal/addressing"
	"github.com/gostonefire/extendiblehash/internal/conf"
	"github.com/gostonefire/extendiblehash/internal/model"
)

// entryWidth - Byte width of one serialized directory entry, given a maximum
// sequence width of d bits.
func entryWidth(d uint32) int64 {
	return conf.DirEntryLocalDepthBytes + int64(d) + conf.SequenceTerminatorBytes + conf.DirEntryBucketRefBytes
}

// Save - Writes the full directory (header + entries) to file, truncating
// any previous contents.
func (d *Directory) Save(file *os.File) (err error) {
	if err = file.Truncate(0); err != nil {
		return crt.NewIoError("error while truncating directory file", err)
	}
	if _, err = file.Seek(0, io.SeekStart); err != nil {
		return crt.NewIoError("error while seeking to start of directory file", err)
	}

	header := make([]byte, conf.DirHeaderBytes)
	binary.LittleEndian.PutUint32(header[0:], d.GlobalDepth)
	binary.LittleEndian.PutUint32(header[4:], d.MaxDepth)
	binary.LittleEndian.PutUint64(header[8:], uint64(len(d.Entries)))
	if _, err = file.Write(header); err != nil {
		return crt.NewIoError("error while writing directory header", err)
	}

	ew := entryWidth(d.MaxDepth)
	buf := make([]byte, ew)
	for _, e := range d.Entries {
		binary.LittleEndian.PutUint32(buf[0:4], e.LocalDepth)
		seq := addressing.Sequence(e.Sequence).String(d.MaxDepth)
		copy(buf[4:4+int64(d.MaxDepth)], seq)
		buf[4+int64(d.MaxDepth)] = 0
		binary.LittleEndian.PutUint64(buf[4+int64(d.MaxDepth)+1:], uint64(e.BucketRef))

		if _, err = file.Write(buf); err != nil {
			return crt.NewIoError("error while writing directory entry", err)
		}
	}

	return nil
}

// Load - Reads a directory previously written by Save, validating the header
// and every entry's invariant (local depth <= global depth <= D).
func Load(file *os.File) (d *Directory, err error) {
	if _, err = file.Seek(0, io.SeekStart); err != nil {
		return nil, crt.NewIoError("error while seeking to start of directory file", err)
	}

	header := make([]byte, conf.DirHeaderBytes)
	if _, err = io.ReadFull(file, header); err != nil {
		return nil, crt.NewCorruptIndex("unable to read directory header", err)
	}

	globalDepth := binary.LittleEndian.Uint32(header[0:4])
	maxDepth := binary.LittleEndian.Uint32(header[4:8])
	count := binary.LittleEndian.Uint64(header[8:16])

	if globalDepth > maxDepth {
		return nil, crt.NewCorruptIndex("global depth exceeds maximum depth", nil)
	}
	if count != uint64(1)<<globalDepth {
		return nil, crt.NewCorruptIndex("entry count does not match 2^global_depth", nil)
	}

	ew := entryWidth(maxDepth)
	entries := make([]model.DirectoryEntry, count)
	buf := make([]byte, ew)
	for i := uint64(0); i < count; i++ {
		if _, err = io.ReadFull(file, buf); err != nil {
			return nil, crt.NewCorruptIndex("unable to read directory entry", err)
		}

		localDepth := binary.LittleEndian.Uint32(buf[0:4])
		if localDepth > globalDepth {
			return nil, crt.NewCorruptIndex("directory entry local depth exceeds global depth", nil)
		}

		seqStr := string(buf[4 : 4+int64(maxDepth)])
		bucketRef := int64(binary.LittleEndian.Uint64(buf[4+int64(maxDepth)+1:]))

		entries[i] = model.DirectoryEntry{
			LocalDepth: localDepth,
			Sequence:   uint64(addressing.ParseSequence(seqStr)),
			BucketRef:  bucketRef,
		}
	}

	d = &Directory{MaxDepth: maxDepth, GlobalDepth: globalDepth, Entries: entries}

	return d, nil
}
