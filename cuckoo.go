package cfix

// cuckooInsert attempts to place (key, data) into t via the two-hash cuckoo
// placement engine, with a recursion budget of ttl. It
// never resizes and never updates t.keys/t.min/t.max/t.version - callers do
// that once place succeeds.
func (t *Table) cuckooInsert(key uint32, data []uint32, ttl uint32) bool {
	if ttl == 0 {
		return false
	}

	primary := primaryBin(key, t.bins)
	t.checkBin(primary)
	if t.keyRow(primary)[BinCapacity-1] == infKey {
		t.writeTail(primary, key, data)
		t.rollLeft(primary, BinCapacity-1)
		return true
	}

	secondary := secondaryBin(key, t.bins)
	t.checkBin(secondary)
	if t.keyRow(secondary)[BinCapacity-1] == infKey {
		t.writeTail(secondary, key, data)
		t.rollLeft(secondary, BinCapacity-1)
		return true
	}

	if t.displace(primary, key, data, ttl) {
		return true
	}
	return t.displace(secondary, key, data, ttl)
}

// writeTail stores (key, data) directly into a bin's tail slot, ahead of
// the roll-left that restores sort order. Callers must have already
// confirmed the tail slot is free.
func (t *Table) writeTail(base, key uint32, data []uint32) {
	t.keyRow(base)[BinCapacity-1] = key
	t.dataStore(data, base, BinCapacity-1)
}

// displace scans base for an occupant
// whose own primary bin is base (the "primary-only" displacement policy),
// swap (key, data) into its slot, and recursively try to re-place the
// displaced occupant. If every candidate's recursive placement fails, base
// is left exactly as it was found.
func (t *Table) displace(base, key uint32, data []uint32, ttl uint32) bool {
	for offset := uint32(0); offset < BinCapacity; offset++ {
		candKey := t.keyRow(base)[offset]
		if candKey == infKey {
			continue
		}
		if primaryBin(candKey, t.bins) != base {
			continue
		}

		cand := t.entryCopy(base, offset)
		candOffset := offset

		t.keyRow(base)[candOffset] = key
		t.dataStore(data, base, candOffset)
		t.adjust(base, &candOffset)

		if t.cuckooInsert(candKey, cand.data[:t.data], ttl-1) {
			return true
		}

		// Recursive placement of the displaced occupant failed: undo and
		// move on to the next candidate.
		t.entryPaste(cand, base, candOffset)
		t.adjust(base, &candOffset)
	}
	return false
}
