package extendiblehash

import "github.com/gostonefire/extendiblehash/crt"

// Stat - Walks every distinct bucket chain reachable from the directory and
// counts live records, returning an IndexInfo with Records populated. Several
// directory entries may alias the same chain (any group sharing a local
// depth below the global depth); each distinct head is only ever walked once.
// On a large index this visits every block in the hash file, so it can take
// a considerable amount of time.
func (I *Index) Stat() (info IndexInfo, err error) {
	info = I.info()

	seen := make(map[int64]bool, len(I.dir.Entries))
	var records int64

	for _, e := range I.dir.Entries {
		if seen[e.BucketRef] {
			continue
		}
		seen[e.BucketRef] = true

		it := I.store.WalkChain(e.BucketRef)
		for it.HasNext() {
			_, bucket, ierr := it.Next()
			if ierr != nil {
				err = crt.NewIoError("error while walking a bucket chain for statistics", ierr)
				return
			}
			records += bucket.Size
		}
	}

	info.Records = records
	return
}
