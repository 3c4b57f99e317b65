package cfix

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_Scenario_SentinelHandling(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Data = 0
	tbl := newTestTable(t, cfg)

	require.True(t, tbl.Insert(infKey, nil))
	require.False(t, tbl.Insert(infKey, nil))
	require.True(t, tbl.Lookup(infKey, nil))
	require.True(t, tbl.Delete(infKey))
	require.False(t, tbl.Lookup(infKey, nil))
	require.EqualValues(t, 0, tbl.Keys())
}

func Test_Scenario_BasicCRUD(t *testing.T) {
	tbl := newTestTable(t, DefaultConfig())

	require.True(t, tbl.Insert(7, []uint32{42}))
	data := make([]uint32, 1)
	require.True(t, tbl.Lookup(7, data))
	require.EqualValues(t, 42, data[0])

	require.True(t, tbl.Update(7, []uint32{99}))
	require.True(t, tbl.Lookup(7, data))
	require.EqualValues(t, 99, data[0])

	require.True(t, tbl.Delete(7))
	require.False(t, tbl.Lookup(7, data))
}

func Test_Scenario_Grow(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Start = 10
	cfg.Upper = 0.95
	tbl := newTestTable(t, cfg)

	const n = 10000
	for key := uint32(1); key <= n; key++ {
		require.True(t, tbl.Insert(key, []uint32{^key}), "insert %d", key)
	}

	data := make([]uint32, 1)
	for key := uint32(1); key <= n; key++ {
		require.True(t, tbl.Lookup(key, data))
		require.Equal(t, ^key, data[0])
	}

	require.EqualValues(t, n, tbl.Keys())
	require.LessOrEqual(t, tbl.fill(), cfg.Upper)
}

// continues from the same workload as Test_Scenario_Grow.
func Test_Scenario_Shrink(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Start = 10
	cfg.Upper = 0.95
	tbl := newTestTable(t, cfg)

	const n = 10000
	for key := uint32(1); key <= n; key++ {
		require.True(t, tbl.Insert(key, []uint32{^key}))
	}

	rng := rand.New(rand.NewSource(1))
	toDelete := rng.Perm(n)[:9500]
	for _, i := range toDelete {
		key := uint32(i + 1)
		require.True(t, tbl.Delete(key))
	}

	require.EqualValues(t, 500, tbl.Keys())
	require.GreaterOrEqual(t, tbl.fill(), cfg.Lower)

	deleted := make(map[uint32]bool, len(toDelete))
	for _, i := range toDelete {
		deleted[uint32(i+1)] = true
	}
	data := make([]uint32, 1)
	for key := uint32(1); key <= n; key++ {
		if deleted[key] {
			continue
		}
		require.True(t, tbl.Lookup(key, data))
		require.Equal(t, ^key, data[0])
	}
}

func Test_Scenario_Rebuild(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Start = 10
	cfg.Upper = 0.95
	tbl := newTestTable(t, cfg)

	const n = 10000
	for key := uint32(1); key <= n; key++ {
		require.True(t, tbl.Insert(key, []uint32{^key}))
	}
	preRebuildBins := tbl.Bins()
	preRebuildKeys := tbl.Keys()

	require.NoError(t, tbl.Rebuild(1.0))

	require.Equal(t, preRebuildKeys, tbl.Keys())
	require.LessOrEqual(t, tbl.Bins(), preRebuildBins)

	data := make([]uint32, 1)
	for key := uint32(1); key <= n; key++ {
		require.True(t, tbl.Lookup(key, data))
		require.Equal(t, ^key, data[0])
	}
}

func Test_Scenario_IteratorInvalidation(t *testing.T) {
	tbl := newTestTable(t, DefaultConfig())
	for key := uint32(0); key < 10; key++ {
		require.True(t, tbl.Insert(key, []uint32{key}))
	}

	it := NewIterator(tbl)
	defer it.Close()

	require.True(t, tbl.Insert(1000, []uint32{0}))

	_, _, status := it.Current()
	require.Equal(t, IterInvalid, status)

	it.Reset()
	_, _, status = it.Current()
	require.Equal(t, IterOK, status)
}
