package pairing

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptimalGroupDistributionRejectsSmallPools(t *testing.T) {
	for _, n := range []int{0, 1, 5} {
		_, err := OptimalGroupDistribution(n)
		assert.Error(t, err, "pool of %d", n)
	}
}

func TestOptimalGroupDistribution(t *testing.T) {
	testCases := []struct {
		players  int
		groups   int
		sizes    []int
		knockout int
	}{
		{players: 6, groups: 2, sizes: []int{3, 3}, knockout: 4},
		{players: 7, groups: 2, sizes: []int{4, 3}, knockout: 4},
		{players: 8, groups: 2, sizes: []int{4, 4}, knockout: 4},
		{players: 12, groups: 3, sizes: []int{4, 4, 4}, knockout: 6},
		{players: 13, groups: 3, sizes: []int{5, 4, 4}, knockout: 6},
		{players: 16, groups: 4, sizes: []int{4, 4, 4, 4}, knockout: 8},
		{players: 64, groups: 16, sizes: nil, knockout: 32},
	}

	for _, tc := range testCases {
		t.Run(fmt.Sprintf("%d players", tc.players), func(t *testing.T) {
			dist, err := OptimalGroupDistribution(tc.players)
			require.NoError(t, err)

			assert.Equal(t, tc.groups, dist.GroupsCount)
			assert.Equal(t, QualifiersPerGroup, dist.QualifiersPerGroup)
			assert.Equal(t, tc.knockout, dist.KnockoutSize)
			if tc.sizes != nil {
				assert.Equal(t, tc.sizes, dist.GroupSizes)
			}
		})
	}
}

func TestOptimalGroupDistributionInvariants(t *testing.T) {
	for n := 6; n <= 200; n++ {
		dist, err := OptimalGroupDistribution(n)
		require.NoError(t, err, "pool of %d", n)

		total := 0
		minSize, maxSize := dist.GroupSizes[0], dist.GroupSizes[0]
		for _, size := range dist.GroupSizes {
			total += size
			if size < minSize {
				minSize = size
			}
			if size > maxSize {
				maxSize = size
			}
		}

		assert.Equal(t, n, total, "pool of %d must be fully distributed", n)
		assert.LessOrEqual(t, maxSize-minSize, 1, "pool of %d: sizes differ by more than one", n)
		assert.GreaterOrEqual(t, minSize, minViableGroupSize, "pool of %d", n)
		assert.GreaterOrEqual(t, dist.GroupsCount, minGroupCount, "pool of %d", n)
	}
}
