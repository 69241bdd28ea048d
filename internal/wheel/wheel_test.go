package wheel_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sweatloop/treatwheel/internal/wheel"
)

func TestBuildSeed(t *testing.T) {
	t.Parallel()

	t.Run("mixes server entropy", func(t *testing.T) {
		t.Parallel()

		first, err := wheel.BuildSeed("client")
		require.NoError(t, err)

		second, err := wheel.BuildSeed("client")
		require.NoError(t, err)

		// Identical client seeds must still produce distinct seeds.
		assert.NotEqual(t, first, second)
		assert.True(t, strings.HasPrefix(string(first), "client:"))
	})

	t.Run("works without client seed", func(t *testing.T) {
		t.Parallel()

		seed, err := wheel.BuildSeed("")
		require.NoError(t, err)
		assert.NotEmpty(t, seed)
	})
}

func TestPickIndex(t *testing.T) {
	t.Parallel()

	t.Run("pure function", func(t *testing.T) {
		t.Parallel()

		seed := wheel.NewTestSeed("fixed")
		first := wheel.PickIndex(10, seed, wheel.PurposeTreat)
		second := wheel.PickIndex(10, seed, wheel.PurposeTreat)
		assert.Equal(t, first, second)
	})

	t.Run("stays in range", func(t *testing.T) {
		t.Parallel()

		for length := 1; length <= 7; length++ {
			for i := range 1000 {
				seed := wheel.NewTestSeed(fmt.Sprintf("seed-%d", i))
				idx := wheel.PickIndex(length, seed, wheel.PurposeTreat)
				assert.GreaterOrEqual(t, idx, 0)
				assert.Less(t, idx, length)
			}
		}
	})

	t.Run("purposes are independent", func(t *testing.T) {
		t.Parallel()

		// Over many seeds the two purposes must not always agree.
		same := 0
		for i := range 1000 {
			seed := wheel.NewTestSeed(fmt.Sprintf("seed-%d", i))
			if wheel.PickIndex(10, seed, wheel.PurposeTreat) ==
				wheel.PickIndex(10, seed, wheel.PurposePortion) {
				same++
			}
		}

		assert.Less(t, same, 300)
	})

	t.Run("non-positive length panics", func(t *testing.T) {
		t.Parallel()

		assert.Panics(t, func() {
			wheel.PickIndex(0, wheel.NewTestSeed("x"), wheel.PurposeTreat)
		})
	})
}

func TestPickWeighted(t *testing.T) {
	t.Parallel()

	t.Run("never returns zero-weight value", func(t *testing.T) {
		t.Parallel()

		values := []int{0, 10, 20}
		weights := []int{0, 5, 5}

		for i := range 5000 {
			seed := wheel.NewTestSeed(fmt.Sprintf("seed-%d", i))
			got := wheel.PickWeighted(values, weights, seed, wheel.PurposeBonus)
			assert.NotEqual(t, 0, got)
		}
	})

	t.Run("frequencies approximate weights", func(t *testing.T) {
		t.Parallel()

		values := []int{0, 10, 20, 30}
		weights := []int{50, 30, 15, 5}
		draws := 20000
		counts := make(map[int]int, len(values))

		for i := range draws {
			seed := wheel.NewTestSeed(fmt.Sprintf("seed-%d", i))
			counts[wheel.PickWeighted(values, weights, seed, wheel.PurposeBonus)]++
		}

		total := 0
		for _, w := range weights {
			total += w
		}

		for i, v := range values {
			expected := float64(weights[i]) / float64(total)
			actual := float64(counts[v]) / float64(draws)
			assert.InDelta(t, expected, actual, 0.02,
				"value %d: expected %.3f, got %.3f", v, expected, actual)
		}
	})

	t.Run("weights need not sum to 100", func(t *testing.T) {
		t.Parallel()

		values := []string{"a", "b"}
		weights := []int{3, 7}
		seed := wheel.NewTestSeed("fixed")

		got := wheel.PickWeighted(values, weights, seed, wheel.PurposeBonus)
		assert.Contains(t, values, got)
	})

	t.Run("mismatched lengths panic", func(t *testing.T) {
		t.Parallel()

		assert.Panics(t, func() {
			wheel.PickWeighted([]int{1, 2}, []int{1}, wheel.NewTestSeed("x"), wheel.PurposeBonus)
		})
	})

	t.Run("zero total weight panics", func(t *testing.T) {
		t.Parallel()

		assert.Panics(t, func() {
			wheel.PickWeighted([]int{1, 2}, []int{0, 0}, wheel.NewTestSeed("x"), wheel.PurposeBonus)
		})
	})
}
