package pairing

import "fmt"

// QualifiersPerGroup is the fixed policy for how many players advance from
// each group into the knockout stage.
const QualifiersPerGroup = 2

const (
	preferredGroupSize = 4
	minViableGroupSize = 3
	minGroupCount      = 2
)

// GroupDistribution describes how a pool is partitioned into round-robin
// groups before a knockout stage.
type GroupDistribution struct {
	GroupsCount        int
	GroupSizes         []int
	QualifiersPerGroup int
	KnockoutSize       int
}

// OptimalGroupDistribution partitions n players into groups whose sizes
// differ by at most one, preferring groups of 4 and never going below 3
// while more than two groups remain. The knockout stage size is
// groups * QualifiersPerGroup.
func OptimalGroupDistribution(n int) (GroupDistribution, error) {
	if n < minGroupCount*minViableGroupSize {
		return GroupDistribution{}, fmt.Errorf("group stage requires at least %d players, got %d", minGroupCount*minViableGroupSize, n)
	}

	groups := n / preferredGroupSize
	if groups < minGroupCount {
		groups = minGroupCount
	}
	for groups > minGroupCount && n/groups < minViableGroupSize {
		groups--
	}

	base := n / groups
	remainder := n % groups

	sizes := make([]int, groups)
	for i := range sizes {
		sizes[i] = base
		if i < remainder {
			sizes[i]++
		}
	}

	return GroupDistribution{
		GroupsCount:        groups,
		GroupSizes:         sizes,
		QualifiersPerGroup: QualifiersPerGroup,
		KnockoutSize:       groups * QualifiersPerGroup,
	}, nil
}
