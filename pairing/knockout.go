package pairing

import "math/bits"

// KnockoutStructure describes the shape of a single-elimination draw.
type KnockoutStructure struct {
	PlayerCount int
	BracketSize int
	Rounds      int
	HasBronze   bool
}

// KnockoutStructureFor computes the bracket container for n players:
// the smallest power of two >= n. A bronze match exists only when the
// bracket produces a true semifinal, i.e. at least 4 slots.
func KnockoutStructureFor(n int) KnockoutStructure {
	size := nextPowerOfTwo(n)
	rounds := 0
	if size > 1 {
		rounds = bits.TrailingZeros(uint(size))
	}
	return KnockoutStructure{
		PlayerCount: n,
		BracketSize: size,
		Rounds:      rounds,
		HasBronze:   size >= 4,
	}
}

// FirstRoundSeedPairs returns the mirrored round-1 seed pairs for a bracket:
// seed i meets seed bracketSize-1-i, so the strongest seeds can only meet in
// the latest rounds. Seeds at index >= PlayerCount are byes.
func FirstRoundSeedPairs(bracketSize int) [][2]int {
	pairs := make([][2]int, 0, bracketSize/2)
	for i := 0; i < bracketSize/2; i++ {
		pairs = append(pairs, [2]int{i, bracketSize - 1 - i})
	}
	return pairs
}

func nextPowerOfTwo(n int) int {
	if n < 1 {
		return 1
	}
	size := 1
	for size < n {
		size <<= 1
	}
	return size
}
