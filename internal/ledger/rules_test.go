package ledger

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchPairsReward(t *testing.T) {
	tests := []struct {
		elapsed float64
		want    int64
	}{
		{0, 150},
		{10, 130},
		{24.6, 101},
		{50, 50},
		{60, 50},
		{200, 50},
		{-5, 150},
		{math.NaN(), 150},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, MatchPairsReward(tt.elapsed), "elapsed=%v", tt.elapsed)
	}
}

func TestReactionAccuracy(t *testing.T) {
	assert.Equal(t, 100.0, ReactionAccuracy(400, 400))
	assert.True(t, ReactionWon(400, 400))

	assert.Equal(t, 0.0, ReactionAccuracy(700, 400))
	assert.False(t, ReactionWon(700, 400))

	assert.Equal(t, 75.0, ReactionAccuracy(350, 400))
	assert.Equal(t, 50.0, ReactionAccuracy(500, 400))
	assert.False(t, ReactionWon(500, 400))
}

func TestRulesTable(t *testing.T) {
	rs := Rules()
	require.Len(t, rs, 4)

	coin, ok := RuleFor(CoinFlip)
	require.True(t, ok)
	assert.Equal(t, int64(10), coin.Wager)
	assert.Equal(t, int64(50), coin.PointsReward)

	match, ok := RuleFor(MatchCards)
	require.True(t, ok)
	assert.Equal(t, int64(20), match.Wager)
	assert.True(t, match.TimeScaled)

	// callers get a copy
	rs[0].Wager = 9999
	again, _ := RuleFor(rs[0].Kind)
	assert.NotEqual(t, int64(9999), again.Wager)
}

func TestMaxReward(t *testing.T) {
	match, _ := RuleFor(MatchCards)
	assert.Equal(t, int64(150), match.MaxReward(nil))
	elapsed := 30.0
	assert.Equal(t, int64(90), match.MaxReward(&elapsed))

	guess, _ := RuleFor(NumberGuess)
	assert.Equal(t, int64(100), guess.MaxReward(&elapsed))
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind("reaction")
	require.NoError(t, err)
	assert.Equal(t, Reaction, k)

	_, err = ParseKind("CoinFlip")
	assert.Error(t, err)
	_, err = ParseKind("")
	assert.Error(t, err)
}
