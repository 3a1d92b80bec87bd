package pairing

// byeSlot is a synthetic slot inserted into odd-sized pools so the circle
// method always rotates an even number of positions. Real player IDs are
// positive database keys, so the sentinel can never collide.
const byeSlot = -1

// CalculateRounds returns the number of round-robin rounds for a pool of n
// players: n-1 for even pools, n for odd pools (each player sits out once).
func CalculateRounds(n int) int {
	if n < 2 {
		return 0
	}
	if n%2 == 0 {
		return n - 1
	}
	return n
}

// RoundPairings returns the pairings for one round of a circle-method round
// robin. The first player stays fixed while the rest rotate by round-1
// positions; position i is paired against position n-1-i. Pairings that land
// on the synthetic bye slot are dropped.
//
// Over rounds 1..CalculateRounds(len(playerIDs)) every unordered pair of
// players is produced exactly once.
func RoundPairings(playerIDs []int, round int) [][2]int {
	if len(playerIDs) < 2 || round < 1 {
		return nil
	}

	slots := make([]int, 0, len(playerIDs)+1)
	slots = append(slots, playerIDs...)
	if len(slots)%2 != 0 {
		slots = append(slots, byeSlot)
	}

	n := len(slots)
	rotation := (round - 1) % (n - 1)

	rotated := make([]int, n)
	rotated[0] = slots[0]
	for i := 1; i < n; i++ {
		rotated[i] = slots[1+((i-1+rotation)%(n-1))]
	}

	pairs := make([][2]int, 0, n/2)
	for i := 0; i < n/2; i++ {
		a, b := rotated[i], rotated[n-1-i]
		if a == byeSlot || b == byeSlot {
			continue
		}
		pairs = append(pairs, [2]int{a, b})
	}
	return pairs
}
