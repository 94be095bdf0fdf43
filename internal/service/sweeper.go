package service

import (
	"context"

	"github.com/EmptySpace206/PHRatings/internal/store"
	"github.com/jmoiron/sqlx"
	"github.com/jonboulle/clockwork"
)

// Sweeper performs the lazy time-driven transitions: entities whose deadline
// has elapsed are moved to their expired state the next time anything looks at
// that entity class. There is no ticking timer in the flows themselves; every
// flow entry point calls the matching sweep inside its own transaction.
type Sweeper struct {
	db          *sqlx.DB
	challenges  *store.ChallengeStore
	matches     *store.MatchStore
	tournaments *store.TournamentStore
	clock       clockwork.Clock
}

func NewSweeper(db *sqlx.DB, challenges *store.ChallengeStore, matches *store.MatchStore, tournaments *store.TournamentStore, clock clockwork.Clock) *Sweeper {
	return &Sweeper{db: db, challenges: challenges, matches: matches, tournaments: tournaments, clock: clock}
}

func (s *Sweeper) SweepChallengesTx(ctx context.Context, tx *sqlx.Tx) error {
	_, err := s.challenges.ExpireDueTx(ctx, tx, s.clock.Now())
	return err
}

func (s *Sweeper) SweepMatchesTx(ctx context.Context, tx *sqlx.Tx) error {
	_, err := s.matches.ExpireDueTx(ctx, tx, s.clock.Now())
	return err
}

// SweepTournamentsTx starts due tournaments before expiring overdue ones, so a
// tournament whose start time and deadline have both elapsed passes through
// active within the same sweep rather than skipping it.
func (s *Sweeper) SweepTournamentsTx(ctx context.Context, tx *sqlx.Tx) error {
	now := s.clock.Now()
	if _, err := s.tournaments.StartDueTx(ctx, tx, now); err != nil {
		return err
	}
	_, err := s.tournaments.ExpireDueTx(ctx, tx, now)
	return err
}

func (s *Sweeper) SweepChallenges(ctx context.Context) error {
	return s.inTx(ctx, s.SweepChallengesTx)
}

func (s *Sweeper) SweepMatches(ctx context.Context) error {
	return s.inTx(ctx, s.SweepMatchesTx)
}

func (s *Sweeper) SweepTournaments(ctx context.Context) error {
	return s.inTx(ctx, s.SweepTournamentsTx)
}

// SweepAll runs all three sweeps in one transaction. Used by the periodic job.
func (s *Sweeper) SweepAll(ctx context.Context) error {
	return s.inTx(ctx, func(ctx context.Context, tx *sqlx.Tx) error {
		if err := s.SweepChallengesTx(ctx, tx); err != nil {
			return err
		}
		if err := s.SweepMatchesTx(ctx, tx); err != nil {
			return err
		}
		return s.SweepTournamentsTx(ctx, tx)
	})
}

func (s *Sweeper) inTx(ctx context.Context, fn func(context.Context, *sqlx.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := fn(ctx, tx); err != nil {
		return err
	}
	return tx.Commit()
}
