package cfix

import "sort"

// primeTable holds the i-th prime of a fixed, monotone-increasing sequence
// of primes used to size the bin array. Each entry is (roughly) double its
// predecessor, which keeps the number of distinct table sizes small while
// still letting the resize engine (resize.go) land close to any target bin
// count. This is the "Prime table" leaf component of the design: a
// collaborator the core depends on but does not own the growth policy of.
//
// The sequence is the well-known set of primes nearest below each power of
// two from 2^2 through 2^31 - it is not derived at runtime so that
// primeAtIndex and primeIndexFor stay allocation-free and branch-shallow.
var primeTable = [...]uint32{
	3, 7, 13, 31, 61, 127, 251, 509, 1021, 2039,
	4093, 8191, 16381, 32749, 65521, 131071, 262139, 524287, 1048573, 2097143,
	4194301, 8388593, 16777213, 33554393, 67108859, 134217689, 268435399, 536870909,
	1073741789, 2147483647,
}

// primeAtIndex returns the i-th entry of the prime table. Out-of-range
// indices saturate at the table's last (largest) entry rather than
// panicking, since a caller asking for an index beyond the table only ever
// does so while searching for "smallest index satisfying X" and the largest
// prime is the natural ceiling for this table's whole supported range.
func primeAtIndex(i int) uint32 {
	if i < 0 {
		i = 0
	}
	if i >= len(primeTable) {
		i = len(primeTable) - 1
	}
	return primeTable[i]
}

// primeIndexFor returns the smallest index i such that primeAtIndex(i) times
// BinCapacity is at least minSlots, or the last index when no entry is that
// large.
func primeIndexFor(minSlots uint64) int {
	i := sort.Search(len(primeTable), func(i int) bool {
		return uint64(primeTable[i])*uint64(BinCapacity) >= minSlots
	})
	if i >= len(primeTable) {
		i = len(primeTable) - 1
	}
	return i
}
