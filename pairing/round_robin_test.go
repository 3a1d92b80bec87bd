package pairing

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateRounds(t *testing.T) {
	testCases := []struct {
		players  int
		expected int
	}{
		{players: 0, expected: 0},
		{players: 1, expected: 0},
		{players: 2, expected: 1},
		{players: 3, expected: 3},
		{players: 4, expected: 3},
		{players: 5, expected: 5},
		{players: 8, expected: 7},
		{players: 32, expected: 31},
	}

	for _, tc := range testCases {
		t.Run(fmt.Sprintf("%d players", tc.players), func(t *testing.T) {
			assert.Equal(t, tc.expected, CalculateRounds(tc.players))
		})
	}
}

func TestRoundPairingsEvenPool(t *testing.T) {
	players := []int{10, 20, 30, 40}

	round1 := RoundPairings(players, 1)
	require.Len(t, round1, 2)
	assert.Equal(t, [2]int{10, 40}, round1[0])
	assert.Equal(t, [2]int{20, 30}, round1[1])
}

func TestRoundPairingsOddPoolHasByeEachRound(t *testing.T) {
	players := []int{1, 2, 3, 4, 5}

	for round := 1; round <= CalculateRounds(len(players)); round++ {
		pairs := RoundPairings(players, round)
		// Пять игроков дают две пары, один игрок отдыхает.
		assert.Len(t, pairs, 2, "round %d", round)
	}
}

func TestRoundPairingsCoverAllPairsExactlyOnce(t *testing.T) {
	for _, n := range []int{2, 3, 4, 5, 6, 7, 8, 16, 32} {
		t.Run(fmt.Sprintf("%d players", n), func(t *testing.T) {
			players := make([]int, n)
			for i := range players {
				players[i] = i + 1
			}

			seen := make(map[[2]int]int)
			total := 0
			for round := 1; round <= CalculateRounds(n); round++ {
				for _, pair := range RoundPairings(players, round) {
					a, b := pair[0], pair[1]
					require.NotEqual(t, a, b)
					if a > b {
						a, b = b, a
					}
					seen[[2]int{a, b}]++
					total++
				}
			}

			require.Equal(t, n*(n-1)/2, total)
			for pair, count := range seen {
				assert.Equal(t, 1, count, "pair %v", pair)
			}
		})
	}
}

func TestRoundPairingsNoPlayerTwiceInRound(t *testing.T) {
	players := []int{1, 2, 3, 4, 5, 6, 7}

	for round := 1; round <= CalculateRounds(len(players)); round++ {
		seen := make(map[int]bool)
		for _, pair := range RoundPairings(players, round) {
			assert.False(t, seen[pair[0]], "player %d repeated in round %d", pair[0], round)
			assert.False(t, seen[pair[1]], "player %d repeated in round %d", pair[1], round)
			seen[pair[0]] = true
			seen[pair[1]] = true
		}
	}
}

func TestRoundPairingsDegenerateInput(t *testing.T) {
	assert.Nil(t, RoundPairings(nil, 1))
	assert.Nil(t, RoundPairings([]int{1}, 1))
	assert.Nil(t, RoundPairings([]int{1, 2}, 0))
}
