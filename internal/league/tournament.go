package league

import (
	"time"

	"github.com/google/uuid"
)

type TournamentStatus string

const (
	TournamentRegistrationOpen TournamentStatus = "registration_open"
	TournamentActive           TournamentStatus = "active"
	TournamentCompleted        TournamentStatus = "completed"
	TournamentExpired          TournamentStatus = "expired"
)

// TournamentTimeout is how long past its start time a tournament stays active.
const TournamentTimeout = 24 * time.Hour

type Tournament struct {
	ID        uuid.UUID        `db:"id"`
	Name      string           `db:"name"`
	HostID    uuid.UUID        `db:"host_id"`
	StartTime time.Time        `db:"start_time"`
	Status    TournamentStatus `db:"status"`
	CreatedAt time.Time        `db:"created_at"`
	ExpiresAt time.Time        `db:"expires_at"`
}

// Participant links a player to a tournament, unique per pair. The host is
// never a participant of their own tournament.
type Participant struct {
	ID           uuid.UUID `db:"id"`
	TournamentID uuid.UUID `db:"tournament_id"`
	PlayerID     uuid.UUID `db:"player_id"`
	JoinedAt     time.Time `db:"joined_at"`
}
