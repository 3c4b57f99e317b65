package cfix

// IterStatus is the result of an iterator step: it
// distinguishes an ordinary success/end-of-table refusal from the
// distinct "the table changed under you" status recoverable by a Reset.
type IterStatus int

const (
	// IterOK means Current/Forward returned a valid entry.
	IterOK IterStatus = iota
	// IterDone means the iterator has passed the last entry.
	IterDone
	// IterInvalid means the table was mutated since the last Reset; the
	// caller must Reset before continuing.
	IterInvalid
)

// Iterator performs a single linear scan over a Table's occupied slots,
// including the K-infinity side channel last. It holds a non-owning
// back-reference to its table - the caller is responsible for not
// outliving it - and is invalidated by any mutation to that table.
type Iterator struct {
	t       *Table
	version uint64

	base   uint32
	offset uint32
	atInf  bool
	done   bool
}

// NewIterator creates an iterator over t, positioned at Reset.
func NewIterator(t *Table) *Iterator {
	t.alloc.alloc(handleIterator, 1)
	it := &Iterator{t: t}
	it.Reset()
	return it
}

// Close releases it back to the allocator. Using it afterward is a
// contract violation.
func (it *Iterator) Close() {
	it.t.alloc.free(handleIterator, 1)
}

// Reset repositions it at the first occupied slot and captures the
// table's current version, curing any prior invalidation.
func (it *Iterator) Reset() {
	it.version = it.t.version
	it.base = 0
	it.offset = 0
	it.atInf = false
	it.done = false
	it.seekOccupied()
}

// seekOccupied advances (base, offset) forward, skipping empty bins and
// trailing K-infinity slots, until an occupied slot, the infinity side
// channel, or the end of the table is found. Encountering K-infinity at
// any offset is enough to skip the rest of that bin, by invariant 1
// (occupied slots are contiguous from offset 0).
func (it *Iterator) seekOccupied() {
	t := it.t
	for it.base < t.bins {
		if it.offset >= BinCapacity || t.keyRow(it.base)[it.offset] == infKey {
			it.offset = 0
			it.base++
			continue
		}
		return
	}
	if t.infOccupied {
		it.atInf = true
		return
	}
	it.done = true
}

// Current returns the entry at the cursor. status is IterInvalid if t has
// mutated since Reset, IterDone if the scan has completed, else IterOK.
func (it *Iterator) Current() (key uint32, data []uint32, status IterStatus) {
	if it.version != it.t.version {
		return 0, nil, IterInvalid
	}
	if it.done {
		return 0, nil, IterDone
	}
	if it.atInf {
		return infKey, it.t.infData[:it.t.data], IterOK
	}

	t := it.t
	key = t.keyRow(it.base)[it.offset]
	data = make([]uint32, t.data)
	t.dataRetrieve(it.base, it.offset, data)
	return key, data, IterOK
}

// Forward advances the cursor to the next occupied slot and returns the
// status of the position it arrives at: IterInvalid if stale, IterDone if
// the advance runs past the last entry (or past the infinity side
// channel), else IterOK.
func (it *Iterator) Forward() IterStatus {
	if it.version != it.t.version {
		return IterInvalid
	}
	if it.done {
		return IterDone
	}

	if it.atInf {
		it.atInf = false
		it.done = true
		return IterDone
	}

	it.offset++
	it.seekOccupied()
	if it.done {
		return IterDone
	}
	return IterOK
}
