package league

import (
	"time"

	"github.com/google/uuid"
)

type ChallengeStatus string

const (
	ChallengePending      ChallengeStatus = "pending"
	ChallengeAccepted     ChallengeStatus = "accepted"
	ChallengeExpired      ChallengeStatus = "expired"
	ChallengeMatchCreated ChallengeStatus = "match_created"
)

// ChallengeTimeout is how long both parties have to accept.
const ChallengeTimeout = 10 * time.Minute

// A Challenge needs acceptance from both the challenged player and the host
// before it turns into a match. The challenger implicitly accepted by creating it.
type Challenge struct {
	ID                   uuid.UUID       `db:"id"`
	ChallengerID         uuid.UUID       `db:"challenger_id"`
	ChallengedID         uuid.UUID       `db:"challenged_id"`
	HostID               uuid.UUID       `db:"host_id"`
	Status               ChallengeStatus `db:"status"`
	CreatedAt            time.Time       `db:"created_at"`
	ChallengedAcceptedAt *time.Time      `db:"challenged_accepted_at"`
	HostAcceptedAt       *time.Time      `db:"host_accepted_at"`
	ExpiresAt            time.Time       `db:"expires_at"`
}

func (c *Challenge) FullyAccepted() bool {
	return c.ChallengedAcceptedAt != nil && c.HostAcceptedAt != nil
}
