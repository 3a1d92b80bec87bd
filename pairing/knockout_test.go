package pairing

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKnockoutStructureFor(t *testing.T) {
	testCases := []struct {
		players     int
		bracketSize int
		rounds      int
		hasBronze   bool
	}{
		{players: 2, bracketSize: 2, rounds: 1, hasBronze: false},
		{players: 3, bracketSize: 4, rounds: 2, hasBronze: true},
		{players: 4, bracketSize: 4, rounds: 2, hasBronze: true},
		{players: 5, bracketSize: 8, rounds: 3, hasBronze: true},
		{players: 17, bracketSize: 32, rounds: 5, hasBronze: true},
		{players: 1000, bracketSize: 1024, rounds: 10, hasBronze: true},
		{players: 1024, bracketSize: 1024, rounds: 10, hasBronze: true},
	}

	for _, tc := range testCases {
		t.Run(fmt.Sprintf("%d players", tc.players), func(t *testing.T) {
			structure := KnockoutStructureFor(tc.players)
			assert.Equal(t, tc.players, structure.PlayerCount)
			assert.Equal(t, tc.bracketSize, structure.BracketSize)
			assert.Equal(t, tc.rounds, structure.Rounds)
			assert.Equal(t, tc.hasBronze, structure.HasBronze)
		})
	}
}

func TestFirstRoundSeedPairsMirrored(t *testing.T) {
	pairs := FirstRoundSeedPairs(8)
	require.Len(t, pairs, 4)
	assert.Equal(t, [2]int{0, 7}, pairs[0])
	assert.Equal(t, [2]int{1, 6}, pairs[1])
	assert.Equal(t, [2]int{2, 5}, pairs[2])
	assert.Equal(t, [2]int{3, 4}, pairs[3])
}

func TestFirstRoundSeedPairsCoverEverySeedOnce(t *testing.T) {
	for _, size := range []int{2, 4, 8, 16, 64, 1024} {
		t.Run(fmt.Sprintf("bracket %d", size), func(t *testing.T) {
			pairs := FirstRoundSeedPairs(size)
			require.Len(t, pairs, size/2)

			seen := make(map[int]bool)
			for _, pair := range pairs {
				// Сумма зеркальной пары постоянна для всей сетки.
				assert.Equal(t, size-1, pair[0]+pair[1])
				assert.False(t, seen[pair[0]])
				assert.False(t, seen[pair[1]])
				seen[pair[0]] = true
				seen[pair[1]] = true
			}
			assert.Len(t, seen, size)
		})
	}
}
