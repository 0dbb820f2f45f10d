package partition_test

import (
	"fmt"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/scaffold-split/internal/domain/partition"
	"github.com/turtacn/scaffold-split/internal/domain/scaffold"
	"github.com/turtacn/scaffold-split/pkg/errors"
)

// makeGroups builds consecutive position groups with the given sizes.
func makeGroups(sizes ...int) []*scaffold.Group[int] {
	groups := make([]*scaffold.Group[int], len(sizes))
	next := 0
	for i, n := range sizes {
		g := &scaffold.Group[int]{Key: scaffold.Key(fmt.Sprintf("S%d", i))}
		for j := 0; j < n; j++ {
			g.Members = append(g.Members, next)
			next++
		}
		groups[i] = g
	}
	return groups
}

func sideOf(split *partition.Split[int]) map[int]string {
	side := make(map[int]string, len(split.Train)+len(split.Test))
	for _, m := range split.Train {
		side[m] = "train"
	}
	for _, m := range split.Test {
		side[m] = "test"
	}
	return side
}

func TestSizeSpec_Validate(t *testing.T) {
	cases := []struct {
		name  string
		sizes partition.SizeSpec
		ok    bool
	}{
		{"default", partition.DefaultSizes(), true},
		{"67/33", partition.SizeSpec{Train: 0.67, Test: 0.33}, true},
		{"70/30", partition.SizeSpec{Train: 0.7, Test: 0.3}, true},
		{"all test", partition.SizeSpec{Train: 0, Test: 1}, true},
		{"70/20", partition.SizeSpec{Train: 0.7, Test: 0.2}, false},
		{"over", partition.SizeSpec{Train: 0.9, Test: 0.2}, false},
		{"zero", partition.SizeSpec{}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.sizes.Validate()
			if tc.ok {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, errors.ErrCodeSplitSizesInvalid))
		})
	}
}

func TestAllocate_KnownExample(t *testing.T) {
	groups := []*scaffold.Group[int]{
		{Key: "", Members: []int{0, 1}},
		{Key: "c1ccccc1", Members: []int{2}},
	}
	sizes := partition.SizeSpec{Train: 0.67, Test: 0.33}

	split, err := partition.Allocate(groups, sizes, false, 0)
	require.NoError(t, err)

	assert.Equal(t, []int{0, 1}, split.Train)
	assert.Equal(t, []int{2}, split.Test)
	assert.Equal(t, 1, split.TrainScaffolds)
	assert.Equal(t, 1, split.TestScaffolds)
	assert.InDelta(t, 2.0/3.0, split.TrainFraction, 1e-12)
	assert.InDelta(t, 1.0/3.0, split.TestFraction, 1e-12)
}

func TestAllocate_PreconditionFailsBeforeWork(t *testing.T) {
	split, err := partition.Allocate(makeGroups(3, 2), partition.SizeSpec{Train: 0.7, Test: 0.2}, false, 0)
	assert.Nil(t, split)
	assert.True(t, errors.IsCode(err, errors.ErrCodeSplitSizesInvalid))
}

func TestAllocate_EmptyInput(t *testing.T) {
	for _, balanced := range []bool{false, true} {
		split, err := partition.Allocate[int](nil, partition.DefaultSizes(), balanced, 1)
		require.NoError(t, err)
		assert.Empty(t, split.Train)
		assert.Empty(t, split.Test)
		assert.NotNil(t, split.Train)
		assert.NotNil(t, split.Test)
		assert.Zero(t, split.TrainFraction)
	}
}

func TestAllocate_SingleScaffoldCollapsesToTest(t *testing.T) {
	split, err := partition.Allocate(makeGroups(10), partition.DefaultSizes(), false, 0)
	require.NoError(t, err)
	assert.Empty(t, split.Train)
	assert.Len(t, split.Test, 10)
	assert.Equal(t, 0, split.TrainScaffolds)
	assert.Equal(t, 1, split.TestScaffolds)
}

func TestAllocate_GreedyLargestFirstStableTies(t *testing.T) {
	// sizes 1,2,1,2 → walk order S1, S3, S0, S2 with a train target of 3.
	groups := makeGroups(1, 2, 1, 2)
	split, err := partition.Allocate(groups, partition.SizeSpec{Train: 0.5, Test: 0.5}, false, 0)
	require.NoError(t, err)

	assert.Equal(t, append(append([]int{}, groups[1].Members...), groups[0].Members...), split.Train)
	assert.Equal(t, append(append([]int{}, groups[3].Members...), groups[2].Members...), split.Test)
}

func TestAllocate_GreedyIgnoresSeed(t *testing.T) {
	groups := makeGroups(5, 3, 3, 2, 1, 1, 1)
	a, err := partition.Allocate(groups, partition.DefaultSizes(), false, 1)
	require.NoError(t, err)
	b, err := partition.Allocate(groups, partition.DefaultSizes(), false, 99)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestAllocate_DoesNotReorderInput(t *testing.T) {
	groups := makeGroups(1, 4, 2)
	keys := []scaffold.Key{groups[0].Key, groups[1].Key, groups[2].Key}

	_, err := partition.Allocate(groups, partition.DefaultSizes(), false, 0)
	require.NoError(t, err)
	_, err = partition.Allocate(groups, partition.DefaultSizes(), true, 3)
	require.NoError(t, err)

	assert.Equal(t, keys, []scaffold.Key{groups[0].Key, groups[1].Key, groups[2].Key})
}

func TestAllocate_BalancedPlacesBigGroupsFirst(t *testing.T) {
	// test target 5 → threshold 2.5, so only the size-5 group is big.  It is
	// walked first and fills train exactly; every small group lands in test.
	groups := makeGroups(1, 1, 5, 1, 1, 1)
	for seed := int64(0); seed < 5; seed++ {
		split, err := partition.Allocate(groups, partition.SizeSpec{Train: 0.5, Test: 0.5}, true, seed)
		require.NoError(t, err)
		assert.Equal(t, groups[2].Members, split.Train, "seed=%d", seed)
		assert.Equal(t, 1, split.TrainScaffolds)
		assert.Equal(t, 5, split.TestScaffolds)
	}
}

func TestAllocate_BalancedSeedReproducible(t *testing.T) {
	groups := makeGroups(9, 7, 4, 4, 3, 3, 2, 2, 2, 1, 1, 1, 1, 1)
	a, err := partition.Allocate(groups, partition.DefaultSizes(), true, 42)
	require.NoError(t, err)
	b, err := partition.Allocate(groups, partition.DefaultSizes(), true, 42)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestAllocate_CompletenessAndAtomicity(t *testing.T) {
	groups := makeGroups(12, 7, 7, 5, 4, 3, 3, 2, 2, 2, 1, 1, 1, 1, 1, 1)
	total := 0
	for _, g := range groups {
		total += g.Size()
	}

	for _, balanced := range []bool{false, true} {
		for seed := int64(0); seed < 10; seed++ {
			split, err := partition.Allocate(groups, partition.SizeSpec{Train: 0.7, Test: 0.3}, balanced, seed)
			require.NoError(t, err)

			all := append(append([]int{}, split.Train...), split.Test...)
			sort.Ints(all)
			require.Len(t, all, total)
			for i, m := range all {
				require.Equal(t, i, m, "member missing or duplicated")
			}

			side := sideOf(split)
			for _, g := range groups {
				for _, m := range g.Members {
					require.Equal(t, side[g.Members[0]], side[m], "group %s was split", g.Key)
				}
			}
			assert.Equal(t, len(groups), split.TrainScaffolds+split.TestScaffolds)
			assert.LessOrEqual(t, float64(len(split.Train)), 0.7*float64(total))
		}
	}
}

func TestAllocate_ValueMembers(t *testing.T) {
	groups := []*scaffold.Group[string]{
		{Key: "", Members: []string{"CC", "CCC"}},
		{Key: "c1ccccc1", Members: []string{"c1ccccc1"}},
	}
	split, err := partition.Allocate(groups, partition.SizeSpec{Train: 0.67, Test: 0.33}, false, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"CC", "CCC"}, split.Train)
	assert.Equal(t, []string{"c1ccccc1"}, split.Test)
}

func TestPolicyName(t *testing.T) {
	assert.Equal(t, "greedy", partition.PolicyName(false))
	assert.Equal(t, "balanced", partition.PolicyName(true))
}

//Personal.AI order the ending
