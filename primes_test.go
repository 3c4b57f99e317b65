package cfix

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_PrimeAtIndex_ClampsOutOfRange(t *testing.T) {
	require.Equal(t, primeTable[0], primeAtIndex(-5))
	require.Equal(t, primeTable[len(primeTable)-1], primeAtIndex(len(primeTable)+5))
	require.Equal(t, primeTable[3], primeAtIndex(3))
}

func Test_PrimeIndexFor_FindsSmallestSufficientPrime(t *testing.T) {
	idx := primeIndexFor(1)
	require.GreaterOrEqual(t, uint64(primeTable[idx])*uint64(BinCapacity), uint64(1))

	for i := 1; i < len(primeTable); i++ {
		minSlots := uint64(primeTable[i-1])*uint64(BinCapacity) + 1
		idx := primeIndexFor(minSlots)
		require.Equal(t, i, idx)
	}

	// A target beyond the table's range clamps to the last index.
	huge := uint64(primeTable[len(primeTable)-1]) * uint64(BinCapacity) * 1000
	require.Equal(t, len(primeTable)-1, primeIndexFor(huge))
}
