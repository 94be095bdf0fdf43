package rating

import (
	"math"

	"github.com/EmptySpace206/PHRatings/internal/league"
)

// DefaultK is the standard K-factor for active players.
const DefaultK = 32.0

// ApplyResult computes the Elo transfer for a decided match and applies it to
// both players in place. The winner gains exactly what the loser loses.
//
// Expected score for the winner: E = 1 / (1 + 10^((loser - winner) / 400)),
// delta = k * (1 - E). The delta is returned unrounded; callers persist it so
// a later undo can subtract it back and land on the exact pre-match ratings.
func ApplyResult(winner, loser *league.Player, k float64) float64 {
	expectedWin := 1.0 / (1.0 + math.Pow(10, (loser.Rating-winner.Rating)/400))
	delta := k * (1.0 - expectedWin)

	winner.Rating += delta
	loser.Rating -= delta

	return delta
}

// Revert undoes a previously applied transfer.
func Revert(winner, loser *league.Player, delta float64) {
	winner.Rating -= delta
	loser.Rating += delta
}
