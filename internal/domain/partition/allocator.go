// Package partition allocates scaffold groups to a train and a test side.
// Whole groups move together, so no scaffold is shared between the two sides.
package partition

import (
	"math/rand"
	"sort"

	"github.com/turtacn/scaffold-split/internal/domain/scaffold"
	"github.com/turtacn/scaffold-split/pkg/errors"
)

// Policy names used in logs, metrics and manifests.
const (
	PolicyGreedy   = "greedy"
	PolicyBalanced = "balanced"
)

// PolicyName returns the policy label for the balanced flag.
func PolicyName(balanced bool) string {
	if balanced {
		return PolicyBalanced
	}
	return PolicyGreedy
}

// SizeSpec holds the requested train and test fractions.
type SizeSpec struct {
	Train float64 `json:"train" yaml:"train"`
	Test  float64 `json:"test" yaml:"test"`
}

// DefaultSizes is the 80/20 split.
func DefaultSizes() SizeSpec { return SizeSpec{Train: 0.8, Test: 0.2} }

// Validate requires the two fractions to sum to exactly 1 in floating point.
// No tolerance is applied: (0.7, 0.2) is rejected and so is any pair whose
// float64 sum is not 1.
func (s SizeSpec) Validate() error {
	if s.Train+s.Test != 1 {
		return errors.New(errors.ErrCodeSplitSizesInvalid, "split sizes must sum to 1").
			WithDetailf("train=%v test=%v sum=%v", s.Train, s.Test, s.Train+s.Test)
	}
	return nil
}

// Split is the outcome of an allocation.  Train and Test list members in
// allocation order.
type Split[T comparable] struct {
	Train []T
	Test  []T

	TrainScaffolds int
	TestScaffolds  int

	// TrainFraction and TestFraction are the realized shares of the total.
	TrainFraction float64
	TestFraction  float64
}

// Allocate assigns every group wholly to train or test.
//
// The walk admits a group to train when trainCount+size <= Train*total and
// sends it to test otherwise.  The greedy policy walks groups by descending
// size, ties kept in index order, and ignores seed.  The balanced policy
// walks the groups larger than half the test target first and the rest after,
// each bucket shuffled by one generator seeded with seed.
func Allocate[T comparable](groups []*scaffold.Group[T], sizes SizeSpec, balanced bool, seed int64) (*Split[T], error) {
	if err := sizes.Validate(); err != nil {
		return nil, err
	}

	total := 0
	for _, g := range groups {
		total += g.Size()
	}
	trainTarget := sizes.Train * float64(total)
	testTarget := sizes.Test * float64(total)

	var order []*scaffold.Group[T]
	if balanced {
		order = balancedOrder(groups, testTarget, seed)
	} else {
		order = greedyOrder(groups)
	}

	out := &Split[T]{
		Train: make([]T, 0),
		Test:  make([]T, 0),
	}
	for _, g := range order {
		if float64(len(out.Train)+g.Size()) <= trainTarget {
			out.Train = append(out.Train, g.Members...)
			out.TrainScaffolds++
		} else {
			out.Test = append(out.Test, g.Members...)
			out.TestScaffolds++
		}
	}

	if total > 0 {
		out.TrainFraction = float64(len(out.Train)) / float64(total)
		out.TestFraction = float64(len(out.Test)) / float64(total)
	}
	return out, nil
}

func greedyOrder[T comparable](groups []*scaffold.Group[T]) []*scaffold.Group[T] {
	order := make([]*scaffold.Group[T], len(groups))
	copy(order, groups)
	sort.SliceStable(order, func(i, j int) bool {
		return order[i].Size() > order[j].Size()
	})
	return order
}

func balancedOrder[T comparable](groups []*scaffold.Group[T], testTarget float64, seed int64) []*scaffold.Group[T] {
	var big, small []*scaffold.Group[T]
	for _, g := range groups {
		if float64(g.Size()) > testTarget/2 {
			big = append(big, g)
		} else {
			small = append(small, g)
		}
	}

	rng := rand.New(rand.NewSource(seed))
	rng.Shuffle(len(big), func(i, j int) { big[i], big[j] = big[j], big[i] })
	rng.Shuffle(len(small), func(i, j int) { small[i], small[j] = small[j], small[i] })

	return append(big, small...)
}

//Personal.AI order the ending
