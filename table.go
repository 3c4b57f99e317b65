package cfix

import "fmt"

// Table is a cache-dense cuckoo hash table for uint32 keys with an optional
// fixed-width uint32 payload. See the package doc comment for the full
// design. A Table is not safe for concurrent use.
type Table struct {
	alloc *allocator

	rows []row // bins*size rows; see keyRow/dataRow in bin.go
	data uint32 // number of uint32 payload words per entry (0..MaxData)
	size uint32 // 1 + data: rows per bin group

	prix uint32 // index into the prime table; bins == primeAtIndex(prix)
	bins uint32 // current number of bins (== primeAtIndex(prix))
	keys uint32 // current number of stored entries, including K-infinity

	depth uint32 // cuckoo displacement recursion depth cap

	lower, upper   float64
	growth, attempt, random float64

	min, max uint32 // observed extrema since the last rebuild/grow/shrink

	version uint64 // bumped on every mutation that can invalidate an iterator

	infOccupied bool
	infData     [MaxData]uint32
}

// New creates a Table per cfg, using the process-wide default allocator.
// It returns an error if cfg is invalid (see Config.Validate) - this is an
// operation refusal, not a contract violation, since a bad Config is
// caller input.
func New(cfg Config) (*Table, error) {
	return newWithAllocator(cfg, defaultAllocator())
}

func newWithAllocator(cfg Config, alloc *allocator) (*Table, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	t := &Table{alloc: alloc}
	alloc.alloc(handleTable, 1)

	t.data = cfg.Data
	t.size = cfg.Data + 1
	t.depth = cfg.Depth
	t.lower = cfg.Lower
	t.upper = cfg.Upper
	t.growth = cfg.Growth
	t.attempt = cfg.Attempt
	t.random = cfg.Random

	t.prix = uint32(primeIndexFor(uint64(cfg.Start)))
	t.bins = primeAtIndex(int(t.prix))

	t.allocBins(t.bins)
	t.binInit()

	t.min = infKey
	t.max = 0

	return t, nil
}

// allocBins allocates a fresh rows slice sized for n bins and accounts for
// it on the bin handle.
func (t *Table) allocBins(n uint32) {
	t.rows = make([]row, uint64(n)*uint64(t.size))
	t.alloc.alloc(handleBin, uint64(n)*uint64(t.size))
}

// freeBins releases rows previously sized for n bins.
func (t *Table) freeBins(rows []row, n uint32) {
	_ = rows
	t.alloc.free(handleBin, uint64(n)*uint64(t.size))
}

// Close destroys t, returning its bin array to the allocator. Using t after
// Close is a contract violation.
func (t *Table) Close() {
	t.freeBins(t.rows, t.bins)
	t.rows = nil
	t.alloc.free(handleTable, 1)
}

// Clone returns a deep copy of t: an independent bin array and infData, no
// shared substructure.
func (t *Table) Clone() *Table {
	c := &Table{alloc: t.alloc}
	c.alloc.alloc(handleTable, 1)

	c.data, c.size = t.data, t.size
	c.prix, c.bins, c.keys = t.prix, t.bins, t.keys
	c.depth = t.depth
	c.lower, c.upper = t.lower, t.upper
	c.growth, c.attempt, c.random = t.growth, t.attempt, t.random
	c.min, c.max = t.min, t.max
	c.version = t.version
	c.infOccupied = t.infOccupied
	c.infData = t.infData

	c.rows = make([]row, len(t.rows))
	copy(c.rows, t.rows)
	c.alloc.alloc(handleBin, uint64(len(t.rows)))

	return c
}

// locate finds key's slot, trying the primary bin and then the secondary
// bin, per invariant 2. ok is false if key is not present.
func (t *Table) locate(key uint32) (base, offset uint32, ok bool) {
	base = primaryBin(key, t.bins)
	if offset, found := t.binLocate(base, key); found {
		return base, offset, true
	}
	base = secondaryBin(key, t.bins)
	if offset, found := t.binLocate(base, key); found {
		return base, offset, true
	}
	return 0, 0, false
}

// fill returns the current load factor keys/(bins*BinCapacity).
func (t *Table) fill() float64 {
	return float64(t.keys) / (float64(t.bins) * float64(BinCapacity))
}

// Insert adds (key, data) to t. It returns false without modifying t if
// key is already present - Insert never overwrites; use Update for that.
// len(data) must equal the table's configured Data word count (it is
// ignored, and may be nil, when Data == 0).
func (t *Table) Insert(key uint32, data []uint32) bool {
	if key == infKey {
		if t.infOccupied {
			return false
		}
		t.infOccupied = true
		copy(t.infData[:t.data], data)
		t.observeInserted(infKey)
		t.keys++
		t.version++
		return true
	}

	if _, _, found := t.locate(key); found {
		return false
	}

	if float64(t.keys+1)/(float64(t.bins)*float64(BinCapacity)) > t.upper {
		t.grow(key, data)
		t.version++
		t.checkAllBins()
		return true
	}

	if t.cuckooInsert(key, data, t.ttl()) {
		t.observeInserted(key)
		t.keys++
		t.version++
		t.checkAllBins()
		return true
	}

	t.grow(key, data)
	t.version++
	t.checkAllBins()
	return true
}

// observeInserted updates min/max after a successful insertion of key, per
// min/max only ever move outward and are reset on
// resize/rebuild or on transition to empty, never tightened by deletion.
func (t *Table) observeInserted(key uint32) {
	if t.keys == 0 || key < t.min {
		t.min = key
	}
	if t.keys == 0 || key > t.max {
		t.max = key
	}
}

// ttl is the recursion budget for one insertion's cuckoo displacement
// chain: min(depth, bins).
func (t *Table) ttl() uint32 {
	if t.depth < t.bins {
		return t.depth
	}
	return t.bins
}

// Delete removes key from t, returning false if key was absent.
func (t *Table) Delete(key uint32) bool {
	if key == infKey {
		if !t.infOccupied {
			return false
		}
		t.infOccupied = false
		t.infData = [MaxData]uint32{}
		t.keys--
		t.version++
		return true
	}

	base, offset, ok := t.locate(key)
	if !ok {
		return false
	}

	t.keyRow(base)[offset] = infKey
	t.dataClear(base, offset)
	t.rollRight(base, offset)
	t.keys--
	t.version++
	if t.keys == 0 {
		t.min, t.max = infKey, 0
	}

	if t.shrinkable() {
		t.shrink()
	}

	t.checkAllBins()
	return true
}

// Lookup reports whether key is present, copying its data (if any) into
// dst, which must have length >= the table's Data word count.
func (t *Table) Lookup(key uint32, dst []uint32) bool {
	if key == infKey {
		if !t.infOccupied {
			return false
		}
		copy(dst, t.infData[:t.data])
		return true
	}

	base, offset, ok := t.locate(key)
	if !ok {
		return false
	}
	t.dataRetrieve(base, offset, dst)
	return true
}

// Update replaces the data associated with an existing key, returning false
// if key is absent. It is equivalent to, but cheaper than, Delete followed
// by Insert.
func (t *Table) Update(key uint32, data []uint32) bool {
	if key == infKey {
		if !t.infOccupied {
			return false
		}
		copy(t.infData[:t.data], data)
		t.version++
		return true
	}

	base, offset, ok := t.locate(key)
	if !ok {
		return false
	}
	t.dataStore(data, base, offset)
	t.version++
	return true
}

// Min returns the smallest key either present, or that has been present
// since the last rebuild/grow/shrink. Callers must check
// Keys() > 0 before trusting this when the table has never held a key.
func (t *Table) Min() uint32 { return t.min }

// Max returns the largest key either present, or that has been present
// since the last rebuild/grow/shrink.
func (t *Table) Max() uint32 { return t.max }

// Keys returns the current number of stored entries, including
// K-infinity if present.
func (t *Table) Keys() uint32 { return t.keys }

// Bins returns the current number of bins; multiply by BinCapacity for the
// total number of slots.
func (t *Table) Bins() uint32 { return t.bins }

// Stats is the histogram-and-locality report.
type Stats struct {
	// Hist[n] counts bins holding exactly n occupied slots, for
	// n in [0, BinCapacity].
	Hist [BinCapacity + 1]uint32
	// Primary is the number of live keys residing in their primary bin.
	Primary uint32
}

// Stats computes a fresh Stats report by scanning every bin.
func (t *Table) Stats() Stats {
	var s Stats
	for b := uint32(0); b < t.bins; b++ {
		n := t.binCount(b)
		s.Hist[n]++

		kr := t.keyRow(b)
		for o := uint32(0); o < n; o++ {
			key := kr[o]
			if b == primaryBin(key, t.bins) {
				s.Primary++
			}
		}
	}
	return s
}

// Apply invokes fn once for every occupied (key, data) pair in t, including
// K-infinity if present. fn must not mutate t; doing so is a
// contract violation and aborts the process, detected via a version
// mismatch after the call.
func (t *Table) Apply(fn func(key uint32, data []uint32)) {
	version := t.version
	buf := make([]uint32, t.data)

	for b := uint32(0); b < t.bins; b++ {
		kr := t.keyRow(b)
		for o := uint32(0); o < BinCapacity; o++ {
			key := kr[o]
			if key == infKey {
				break
			}
			t.dataRetrieve(b, o, buf)
			fn(key, buf)
			if t.version != version {
				t.alloc.fatal(fmt.Sprintf("Apply callback mutated the table (version %d -> %d)", version, t.version))
			}
		}
	}

	if t.infOccupied {
		fn(infKey, t.infData[:t.data])
		if t.version != version {
			t.alloc.fatal(fmt.Sprintf("Apply callback mutated the table (version %d -> %d)", version, t.version))
		}
	}
}
