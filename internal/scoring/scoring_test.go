package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mindprint/internal/model"
)

func TestApplyOptionPositiveWeightCreditsFirstPole(t *testing.T) {
	scores := model.NewScores()
	ApplyOption(scores, model.DimensionEI, 3)

	assert.Equal(t, 3, scores["E"])
	assert.Equal(t, 0, scores["I"])
}

func TestApplyOptionNegativeWeightCreditsSecondPole(t *testing.T) {
	scores := model.NewScores()
	ApplyOption(scores, model.DimensionTF, -2)

	assert.Equal(t, 0, scores["T"])
	assert.Equal(t, 2, scores["F"])
}

func TestApplyOptionZeroWeightCreditsSecondPole(t *testing.T) {
	// Zero is routed to the second pole by convention, matching the
	// sign check the scoring rules are defined by.
	scores := model.NewScores()
	ApplyOption(scores, model.DimensionSN, 0)

	assert.Equal(t, 0, scores["S"])
	assert.Equal(t, 0, scores["N"])
}

func TestApplyOptionAccumulates(t *testing.T) {
	scores := model.NewScores()
	ApplyOption(scores, model.DimensionJP, 2)
	ApplyOption(scores, model.DimensionJP, 3)
	ApplyOption(scores, model.DimensionJP, -1)

	assert.Equal(t, 5, scores["J"])
	assert.Equal(t, 1, scores["P"])
}

func TestResolveTypeFixedOrder(t *testing.T) {
	scores := model.Scores{
		"E": 5, "I": 2,
		"S": 1, "N": 4,
		"T": 3, "F": 1,
		"J": 0, "P": 6,
	}
	assert.Equal(t, "ENTP", ResolveType(scores))
}

func TestResolveTypeTieBreaksToSecondPole(t *testing.T) {
	scores := model.Scores{
		"E": 3, "I": 3,
		"S": 0, "N": 0,
		"T": 2, "F": 2,
		"J": 1, "P": 1,
	}
	// Every dichotomy tied: all four letters come from the second
	// pole, and repeated calls agree.
	first := ResolveType(scores)
	require.Equal(t, "INFP", first)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, ResolveType(scores))
	}
}

func TestResolveTypeAlwaysFourValidLetters(t *testing.T) {
	scores := model.NewScores()
	code := ResolveType(scores)

	require.Len(t, code, 4)
	for i, d := range model.Dimensions {
		letter := string(code[i])
		assert.Contains(t, []string{d.First(), d.Second()}, letter)
	}
}

func TestScoreSumEqualsSumOfAbsoluteWeights(t *testing.T) {
	// Conservation: every answered option contributes exactly its
	// absolute weight to exactly one pole.
	answers := []struct {
		dim    model.Dimension
		weight int
	}{
		{model.DimensionEI, 3}, {model.DimensionEI, -2},
		{model.DimensionSN, -3}, {model.DimensionSN, 1},
		{model.DimensionTF, 2}, {model.DimensionTF, -2},
		{model.DimensionJP, -1}, {model.DimensionJP, 3},
		{model.DimensionEI, 0},
	}

	scores := model.NewScores()
	wantSum := 0
	for _, a := range answers {
		ApplyOption(scores, a.dim, a.weight)
		if a.weight < 0 {
			wantSum -= a.weight
		} else {
			wantSum += a.weight
		}
	}

	gotSum := 0
	for _, v := range scores {
		require.GreaterOrEqual(t, v, 0)
		gotSum += v
	}
	assert.Equal(t, wantSum, gotSum)
}
