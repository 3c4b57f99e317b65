//go:build cfixcheck

package cfix

import "fmt"

// checkBin asserts the sorted-bin invariant for one bin: occupied slots
// strictly ascending from offset 0, followed only by K-infinity. It is
// compiled in only under the cfixcheck build tag - a debug-only cost nobody
// wants paid in a release build of a latency-sensitive table.
func (t *Table) checkBin(base uint32) {
	kr := t.keyRow(base)
	seenSentinel := false
	for o := uint32(0); o < BinCapacity; o++ {
		if kr[o] == infKey {
			seenSentinel = true
			continue
		}
		if seenSentinel {
			t.alloc.fatal(fmt.Sprintf("bin %d: occupied slot %d follows a sentinel", base, o))
		}
		if o > 0 && kr[o-1] >= kr[o] {
			t.alloc.fatal(fmt.Sprintf("bin %d: keys not strictly ascending at offset %d", base, o))
		}
	}
}

// checkAllBins runs checkBin over every bin in t.
func (t *Table) checkAllBins() {
	for b := uint32(0); b < t.bins; b++ {
		t.checkBin(b)
	}
}
