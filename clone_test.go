package cfix

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/require"
)

// Test_Clone_Independence checks that mutating a clone must not affect the
// original, and vice versa, even though Clone starts out as a byte-for-byte
// copy of the source table's bins.
func Test_Clone_Independence(t *testing.T) {
	tbl := newTestTable(t, DefaultConfig())
	for key := uint32(0); key < 300; key++ {
		require.True(t, tbl.Insert(key, []uint32{key * 7}))
	}

	clone := tbl.Clone()
	defer clone.Close()

	diff := cmp.Diff(tbl, clone, cmp.AllowUnexported(Table{}), cmpopts.IgnoreFields(Table{}, "alloc"))
	require.Empty(t, diff, "fresh clone must be a deep copy of the source")

	require.True(t, clone.Delete(100))
	require.True(t, tbl.Lookup(100, make([]uint32, 1)), "deleting from the clone must not affect the original")

	require.True(t, tbl.Insert(10000, []uint32{1}))
	require.False(t, clone.Lookup(10000, make([]uint32, 1)), "inserting into the original must not affect the clone")

	data := make([]uint32, 1)
	require.True(t, tbl.Update(5, []uint32{999}))
	require.True(t, clone.Lookup(5, data))
	require.NotEqual(t, uint32(999), data[0], "updating the original must not affect the clone's data")
}
