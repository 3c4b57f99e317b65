package cfix

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func newBareTable(t *testing.T, data uint32) *Table {
	t.Helper()
	ResetDefaultAllocator()
	cfg := DefaultConfig()
	cfg.Data = data
	tbl, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() {
		tbl.Close()
		defaultAllocator().checkClean()
	})
	return tbl
}

func Test_BinLocate_FindsEveryOccupiedSlot(t *testing.T) {
	tbl := newBareTable(t, 1)

	keys := []uint32{3, 1, 4, 1, 5, 9, 2, 6}
	seen := map[uint32]bool{}
	var base uint32 = 3
	for _, k := range keys {
		if seen[k] {
			continue
		}
		seen[k] = true
		tbl.writeTail(base, k, []uint32{k})
		tbl.rollLeft(base, BinCapacity-1)
	}

	for k := range seen {
		offset, found := tbl.binLocate(base, k)
		require.True(t, found)
		require.Equal(t, k, tbl.keyRow(base)[offset])
	}

	_, found := tbl.binLocate(base, 12345)
	require.False(t, found)
}

func Test_RollLeft_KeepsBinSorted(t *testing.T) {
	tbl := newBareTable(t, 0)
	const base = 3

	for _, k := range []uint32{50, 10, 90, 30, 70} {
		tbl.writeTail(base, k, nil)
		tbl.rollLeft(base, BinCapacity-1)
	}

	n := tbl.binCount(base)
	kr := tbl.keyRow(base)
	for i := uint32(1); i < n; i++ {
		require.Less(t, kr[i-1], kr[i])
	}
}

func Test_RollRight_PushesSentinelToTail(t *testing.T) {
	tbl := newBareTable(t, 0)
	const base = 3

	for _, k := range []uint32{10, 20, 30, 40} {
		tbl.writeTail(base, k, nil)
		tbl.rollLeft(base, BinCapacity-1)
	}

	offset, found := tbl.binLocate(base, 20)
	require.True(t, found)

	tbl.keyRow(base)[offset] = infKey
	tbl.rollRight(base, offset)

	require.EqualValues(t, 3, tbl.binCount(base))
	kr := tbl.keyRow(base)
	require.Equal(t, []uint32{10, 30, 40, infKey}, []uint32{kr[0], kr[1], kr[2], kr[3]})
}
