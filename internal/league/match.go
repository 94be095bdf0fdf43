package league

import (
	"time"

	"github.com/google/uuid"
)

type MatchStatus string

const (
	MatchPending   MatchStatus = "pending"
	MatchCompleted MatchStatus = "completed"
	MatchExpired   MatchStatus = "expired"
	MatchUndone    MatchStatus = "undone"
)

const (
	// MatchTimeout is how long the host has to report a result for a
	// challenge-spawned match.
	MatchTimeout = 8 * time.Hour

	// UndoWindow is how long after completion a host may undo their last match.
	UndoWindow = 10 * time.Minute
)

// Match is either spawned by a fully accepted challenge (pending, with a
// reporting deadline) or recorded with an immediate result (tournament and
// legacy paths, no deadline).
type Match struct {
	ID           uuid.UUID   `db:"id"`
	Player1ID    uuid.UUID   `db:"player1_id"`
	Player2ID    uuid.UUID   `db:"player2_id"`
	WinnerID     *uuid.UUID  `db:"winner_id"`
	HostID       uuid.UUID   `db:"host_id"`
	TournamentID *uuid.UUID  `db:"tournament_id"`
	ChallengeID  *uuid.UUID  `db:"challenge_id"`
	Status       MatchStatus `db:"status"`
	CreatedAt    time.Time   `db:"created_at"`
	CompletedAt  *time.Time  `db:"completed_at"`
	ExpiresAt    *time.Time  `db:"expires_at"`

	// RatingDelta is the amount transferred from loser to winner, stored so
	// an undo restores the exact pre-match ratings.
	RatingDelta *float64 `db:"rating_delta"`

	Notes     *string `db:"notes"`
	VideoLink *string `db:"video_link"`
}

// LoserID is only meaningful once a winner is set.
func (m *Match) LoserID() uuid.UUID {
	if m.WinnerID != nil && *m.WinnerID == m.Player1ID {
		return m.Player2ID
	}
	return m.Player1ID
}

func (m *Match) HasPlayer(id uuid.UUID) bool {
	return id == m.Player1ID || id == m.Player2ID
}
