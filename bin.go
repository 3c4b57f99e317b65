package cfix

// BinCapacity is the number of key slots per bin: enough 4-byte keys to
// exactly fill one 64-byte cache line.
const BinCapacity = Alignment / 4

// Alignment is the cache-line size (in bytes) a bin's key row is sized to
// fill.
const Alignment = 64

// infKey (K-infinity) is the reserved sentinel value meaning "this slot is
// empty". It is also a legal user key, handled
// through the side channel on Table (see table.go's infData field).
const infKey uint32 = 0xffffffff

// noData marks an unused data word in a cleared slot, purely as a debugging
// aid - it carries no meaning to callers, who never
// see an entry's data unless its key slot is occupied.
const noData uint32 = 0xdeadbabe

// row is one cache line's worth of either keys or packed data: BinCapacity
// uint32 lanes. A bin group of `size` consecutive rows holds one logical
// bin - row 0 is the sorted key row, rows 1..size-1 are data rows, such
// that entry i's data occupies lane i of every data row (column-major
// layout).
type row [BinCapacity]uint32

// entry is a full (key, data) pair copied out of or staged into a bin, used
// as a scratch value by roll/adjust/cuckoo.
type entry struct {
	key  uint32
	data [MaxData]uint32
}

// keyRow returns the key row for bin base.
func (t *Table) keyRow(base uint32) *row {
	return &t.rows[uint64(base)*uint64(t.size)]
}

// dataRow returns the d-th data row (0-based) for bin base. Callers must
// not call this when t.data == 0.
func (t *Table) dataRow(base uint32, d uint32) *row {
	return &t.rows[uint64(base)*uint64(t.size)+1+uint64(d)]
}

// binLocate performs a branchless binary search: exactly 4 comparisons and
// an arithmetic-only (no data-dependent branch) computation of the matching
// offset. It relies on BinCapacity being 16 and on every bin's occupied
// slots being sorted ascending with all trailing slots equal to infKey.
func (t *Table) binLocate(base uint32, key uint32) (offset uint32, found bool) {
	kr := t.keyRow(base)

	a := uint32(0)
	a += b2u(key >= kr[a+8]) << 3
	a += b2u(key >= kr[a+4]) << 2
	a += b2u(key >= kr[a+2]) << 1
	a += b2u(key >= kr[a+1]) << 0

	if kr[a] == key {
		return a, true
	}
	return 0, false
}

// b2u converts a bool to 0/1 without a branch misprediction in the hot
// path - Go doesn't let you add a bool directly, so this is the idiomatic
// stand-in for a C-style ternary.
func b2u(cond bool) uint32 {
	if cond {
		return 1
	}
	return 0
}

// entryCopy reads the full (key, data) pair at (base, offset) into a value.
func (t *Table) entryCopy(base, offset uint32) entry {
	var e entry
	e.key = t.keyRow(base)[offset]
	for d := uint32(0); d < t.data; d++ {
		e.data[d] = t.dataRow(base, d)[offset]
	}
	return e
}

// entryPaste writes e into (base, offset), overwriting both key and data.
func (t *Table) entryPaste(e entry, base, offset uint32) {
	t.keyRow(base)[offset] = e.key
	for d := uint32(0); d < t.data; d++ {
		t.dataRow(base, d)[offset] = e.data[d]
	}
}

// entryMove copies the (key, data) pair at (srcBase, srcOffset) on top of
// (dstBase, dstOffset). Source and destination may be the same bin.
func (t *Table) entryMove(srcBase, srcOffset, dstBase, dstOffset uint32) {
	t.keyRow(dstBase)[dstOffset] = t.keyRow(srcBase)[srcOffset]
	for d := uint32(0); d < t.data; d++ {
		t.dataRow(dstBase, d)[dstOffset] = t.dataRow(srcBase, d)[srcOffset]
	}
}

// dataStore writes data into (base, offset)'s data words. len(data) must be
// t.data (callers pass a nil/empty slice when t.data == 0).
func (t *Table) dataStore(data []uint32, base, offset uint32) {
	for d := uint32(0); d < t.data; d++ {
		t.dataRow(base, d)[offset] = data[d]
	}
}

// dataRetrieve reads (base, offset)'s data words into dst, which must have
// length t.data.
func (t *Table) dataRetrieve(base, offset uint32, dst []uint32) {
	for d := uint32(0); d < t.data; d++ {
		dst[d] = t.dataRow(base, d)[offset]
	}
}

// dataClear resets (base, offset)'s data words to the unused-slot marker.
func (t *Table) dataClear(base, offset uint32) {
	for d := uint32(0); d < t.data; d++ {
		t.dataRow(base, d)[offset] = noData
	}
}

// binInit fills every key slot with infKey and clears every data slot,
// leaving a freshly allocated bin array in the "all empty" state invariant
// 1 requires.
func (t *Table) binInit() {
	for b := uint32(0); b < t.bins; b++ {
		kr := t.keyRow(b)
		for o := range kr {
			kr[o] = infKey
		}
		for o := uint32(0); o < BinCapacity; o++ {
			t.dataClear(b, o)
		}
	}
}

// binCount returns the number of occupied slots in bin base, relying on
// invariant 1 (occupied slots contiguous from offset 0).
func (t *Table) binCount(base uint32) uint32 {
	kr := t.keyRow(base)
	var n uint32
	for ; n < BinCapacity; n++ {
		if kr[n] == infKey {
			break
		}
	}
	return n
}

// rollLeft restores sort order after a new entry was written at
// (base, offset) - normally the bin's tail slot, BinCapacity-1 - by
// repeatedly swapping it one slot to the left while its predecessor key is
// strictly greater.
func (t *Table) rollLeft(base, offset uint32) {
	key := t.keyRow(base)[offset]
	e := t.entryCopy(base, offset)

	for o := offset; o > 0; o-- {
		if t.keyRow(base)[o-1] < key {
			break
		}
		t.entryMove(base, o-1, base, o)
		t.entryPaste(e, base, o-1)
	}
	t.checkBin(base)
}

// rollRight restores sort order after the slot at (base, offset) was
// cleared to infKey by a delete, swapping the sentinel rightward past every
// successor slot (no key compares greater than infKey) so that it ends up
// in the trailing run of infKey slots at the tail.
func (t *Table) rollRight(base, offset uint32) {
	key := t.keyRow(base)[offset]
	e := t.entryCopy(base, offset)

	for o := offset; o < BinCapacity-1; o++ {
		if t.keyRow(base)[o+1] > key {
			break
		}
		t.entryMove(base, o+1, base, o)
		t.entryPaste(e, base, o+1)
	}
	t.checkBin(base)
}

// adjust restores local sort order around *offset after the entry there
// was overwritten in place with a different key (as cuckoo placement does
// when displacing a candidate), bubbling it left or right one slot at a
// time until both neighbors are correctly ordered.
func (t *Table) adjust(base uint32, offset *uint32) {
	for {
		kr := t.keyRow(base)
		left := *offset == 0 || kr[*offset-1] < kr[*offset]
		right := *offset == BinCapacity-1 || kr[*offset] < kr[*offset+1]

		if left && right {
			return
		}

		var newOffset uint32
		if !left {
			newOffset = *offset - 1
		} else {
			newOffset = *offset + 1
		}

		e := t.entryCopy(base, *offset)
		t.entryMove(base, newOffset, base, *offset)
		t.entryPaste(e, base, newOffset)
		*offset = newOffset
	}
}
