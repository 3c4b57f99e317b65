package cfix

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_Iterator_EmptyTable(t *testing.T) {
	tbl := newTestTable(t, DefaultConfig())
	it := NewIterator(tbl)
	defer it.Close()

	_, _, status := it.Current()
	require.Equal(t, IterDone, status)
	require.Equal(t, IterDone, it.Forward())
}

func Test_Iterator_InfinitySideChannelLast(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Data = 0
	tbl := newTestTable(t, cfg)

	require.True(t, tbl.Insert(1, nil))
	require.True(t, tbl.Insert(2, nil))
	require.True(t, tbl.Insert(infKey, nil))

	it := NewIterator(tbl)
	defer it.Close()

	var seenInf bool
	var count int
	for {
		key, _, status := it.Current()
		require.Equal(t, IterOK, status)
		if key == infKey {
			seenInf = true
		} else {
			require.False(t, seenInf, "non-sentinel key yielded after the infinity side channel")
		}
		count++
		if it.Forward() == IterDone {
			break
		}
	}
	require.True(t, seenInf)
	require.Equal(t, 3, count)
}

func Test_Iterator_MultipleIteratorsIndependent(t *testing.T) {
	tbl := newTestTable(t, DefaultConfig())
	for key := uint32(0); key < 50; key++ {
		require.True(t, tbl.Insert(key, []uint32{0}))
	}

	it1 := NewIterator(tbl)
	defer it1.Close()
	it2 := NewIterator(tbl)
	defer it2.Close()

	it1.Forward()
	_, _, status1 := it1.Current()
	_, _, status2 := it2.Current()
	require.Equal(t, IterOK, status1)
	require.Equal(t, IterOK, status2)
}
