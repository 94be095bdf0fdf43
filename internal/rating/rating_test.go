package rating

import (
	"testing"

	"github.com/EmptySpace206/PHRatings/internal/league"
	"github.com/stretchr/testify/assert"
)

func TestApplyResult_EqualRatings(t *testing.T) {
	winner := &league.Player{Rating: 1200}
	loser := &league.Player{Rating: 1200}

	delta := ApplyResult(winner, loser, DefaultK)

	assert.Equal(t, 16.0, delta)
	assert.Equal(t, 1216.0, winner.Rating)
	assert.Equal(t, 1184.0, loser.Rating)
}

func TestApplyResult_ZeroSum(t *testing.T) {
	cases := []struct {
		name          string
		winner, loser float64
	}{
		{"equal", 1200, 1200},
		{"favourite wins", 1500, 1100},
		{"upset", 1100, 1500},
		{"fractional ratings", 1216.5, 1183.5},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			winner := &league.Player{Rating: tc.winner}
			loser := &league.Player{Rating: tc.loser}
			before := winner.Rating + loser.Rating

			delta := ApplyResult(winner, loser, DefaultK)

			assert.Greater(t, delta, 0.0)
			assert.Less(t, delta, DefaultK)
			assert.InDelta(t, before, winner.Rating+loser.Rating, 1e-9)
		})
	}
}

func TestApplyResult_UpsetTransfersMore(t *testing.T) {
	favWinner := &league.Player{Rating: 1500}
	favLoser := &league.Player{Rating: 1100}
	favDelta := ApplyResult(favWinner, favLoser, DefaultK)

	underdog := &league.Player{Rating: 1100}
	fallen := &league.Player{Rating: 1500}
	upsetDelta := ApplyResult(underdog, fallen, DefaultK)

	assert.Greater(t, upsetDelta, favDelta)
}

func TestRevert_RestoresExactRatings(t *testing.T) {
	winner := &league.Player{Rating: 1321.7}
	loser := &league.Player{Rating: 1187.3}
	winnerBefore := winner.Rating
	loserBefore := loser.Rating

	delta := ApplyResult(winner, loser, DefaultK)
	Revert(winner, loser, delta)

	assert.InDelta(t, winnerBefore, winner.Rating, 1e-9)
	assert.InDelta(t, loserBefore, loser.Rating, 1e-9)
}

func TestApplyResult_Deterministic(t *testing.T) {
	a1 := &league.Player{Rating: 1250}
	b1 := &league.Player{Rating: 1400}
	a2 := &league.Player{Rating: 1250}
	b2 := &league.Player{Rating: 1400}

	assert.Equal(t, ApplyResult(a1, b1, DefaultK), ApplyResult(a2, b2, DefaultK))
}
