package cfix

import (
	"fmt"
	"math/rand"
)

// RatioMin is the smallest ratio Rebuild accepts.
const RatioMin = 0.01

// snapshot is a frozen view of a bin array being rebuilt from, kept
// separate from the live Table so a failed rebuild attempt can be
// discarded and retried against the same source data.
type snapshot struct {
	rows []row
	bins uint32
	prix uint32
	size uint32
}

func (s *snapshot) keyRow(base uint32) *row {
	return &s.rows[uint64(base)*uint64(s.size)]
}

func (s *snapshot) dataRow(base, d uint32) *row {
	return &s.rows[uint64(base)*uint64(s.size)+1+uint64(d)]
}

func (t *Table) takeSnapshot() snapshot {
	return snapshot{rows: t.rows, bins: t.bins, prix: t.prix, size: t.size}
}

// grow is entered from Insert when either the projected fill would exceed
// upper or a cuckoo placement attempt has failed. It
// rebuilds into progressively larger prime indices, seeded with a
// randomized growth factor, until the triggering (key,data) and every
// live entry from the old bin array can all be placed.
func (t *Table) grow(triggerKey uint32, triggerData []uint32) {
	old := t.takeSnapshot()

	for attempt := uint32(1); ; attempt++ {
		factor := t.growth + t.attempt*float64(attempt) + t.random*rand.Float64()
		prix := uint32(float64(old.prix) * factor)
		if prix < old.prix+attempt {
			prix = old.prix + attempt
		}

		if t.rebuildInto(prix, old, triggerKey, triggerData, true) {
			t.freeBins(old.rows, old.bins)
			return
		}
	}
}

// shrinkable reports whether t has both enough keys and low enough fill to
// be worth compacting.
func (t *Table) shrinkable() bool {
	if t.keys <= BinCapacity {
		return false
	}
	return t.fill() < t.lower
}

// shrink compacts t toward the (upper+lower)/2 target fill after a
// deletion has made it sparse, never raising prix above its pre-shrink
// value.
func (t *Table) shrink() {
	old := t.takeSnapshot()

	targetSlots := uint64(float64(t.keys) / ((t.upper + t.lower) / 2))
	shrinkPrix := uint32(primeIndexFor(targetSlots))

	for prix := shrinkPrix; ; prix++ {
		if prix > old.prix {
			t.alloc.fatal(fmt.Sprintf("shrink could not rebuild at or below the pre-shrink prime index (shrinkPrix=%d old.prix=%d)", shrinkPrix, old.prix))
		}

		if t.rebuildInto(prix, old, 0, nil, false) {
			t.freeBins(old.rows, old.bins)
			return
		}
	}
}

// Rebuild compacts or expands t to the smallest prime index whose capacity
// meets keys/ratio, preserving every stored (key,data) pair. ratio must lie
// in [RatioMin, 1.0].
func (t *Table) Rebuild(ratio float64) error {
	if ratio < RatioMin || ratio > 1.0 {
		return fmt.Errorf("cfix: rebuild ratio %v out of range [%v, 1.0]", ratio, RatioMin)
	}

	old := t.takeSnapshot()
	targetKeys := uint64(float64(t.keys) / ratio)
	prix := uint32(primeIndexFor(targetKeys))

	for {
		if t.rebuildInto(prix, old, 0, nil, false) {
			t.freeBins(old.rows, old.bins)
			t.version++
			t.checkAllBins()
			return nil
		}
		prix++
	}
}

// rebuildInto attempts one rebuild pass: it (re)allocates t's bin array at
// prix bins, optionally places a trigger key/data pair first, then
// replays every live entry from old. It returns false, having freed the
// attempt's bin array, if any placement fails - the caller retries with a
// different prix. It never mutates old.
func (t *Table) rebuildInto(prix uint32, old snapshot, triggerKey uint32, triggerData []uint32, hasTrigger bool) bool {
	t.prix = prix
	t.bins = primeAtIndex(int(prix))
	t.allocBins(t.bins)
	t.binInit()

	t.keys = 0
	t.min = infKey
	t.max = 0
	if t.infOccupied {
		t.observeInserted(infKey)
		t.keys++
	}

	if hasTrigger {
		if !t.cuckooInsert(triggerKey, triggerData, t.ttl()) {
			t.alloc.fatal("rebuild could not place the triggering key into a freshly enlarged table")
		}
		t.observeInserted(triggerKey)
		t.keys++
	}

	buf := make([]uint32, t.data)
	for base := uint32(0); base < old.bins; base++ {
		kr := old.keyRow(base)
		for offset := uint32(0); offset < BinCapacity; offset++ {
			key := kr[offset]
			if key == infKey {
				break
			}
			for d := uint32(0); d < t.data; d++ {
				buf[d] = old.dataRow(base, d)[offset]
			}

			if !t.cuckooInsert(key, buf, t.ttl()) {
				t.freeBins(t.rows, t.bins)
				return false
			}
			t.observeInserted(key)
			t.keys++
		}
	}

	return true
}
