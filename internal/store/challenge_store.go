package store

import (
	"context"
	"time"

	"github.com/EmptySpace206/PHRatings/internal/league"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type ChallengeStore struct {
	db *sqlx.DB
}

func NewChallengeStore(db *sqlx.DB) *ChallengeStore {
	return &ChallengeStore{db: db}
}

func (s *ChallengeStore) CreateChallenge(ctx context.Context, tx *sqlx.Tx, challenge *league.Challenge) error {
	_, err := tx.NamedExecContext(ctx, `INSERT INTO challenges (id, challenger_id, challenged_id, host_id, status, created_at, expires_at)
		VALUES (:id, :challenger_id, :challenged_id, :host_id, :status, :created_at, :expires_at)`, challenge)
	return err
}

func (s *ChallengeStore) GetChallenge(ctx context.Context, id uuid.UUID) (*league.Challenge, error) {
	var challenge league.Challenge
	err := s.db.GetContext(ctx, &challenge, "SELECT * FROM challenges WHERE id = ?", id)
	return &challenge, err
}

func (s *ChallengeStore) GetChallengeTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*league.Challenge, error) {
	var challenge league.Challenge
	err := tx.GetContext(ctx, &challenge, "SELECT * FROM challenges WHERE id = ?", id)
	return &challenge, err
}

func (s *ChallengeStore) UpdateChallenge(ctx context.Context, tx *sqlx.Tx, challenge *league.Challenge) error {
	_, err := tx.NamedExecContext(ctx, `UPDATE challenges SET
		status = :status,
		challenged_accepted_at = :challenged_accepted_at,
		host_accepted_at = :host_accepted_at
		WHERE id = :id`, challenge)
	return err
}

// ExpireDueTx moves every pending challenge whose deadline has elapsed to
// expired. Idempotent: the status predicate makes re-runs no-ops.
func (s *ChallengeStore) ExpireDueTx(ctx context.Context, tx *sqlx.Tx, now time.Time) (int64, error) {
	res, err := tx.ExecContext(ctx,
		"UPDATE challenges SET status = ? WHERE status = ? AND expires_at < ?",
		league.ChallengeExpired, league.ChallengePending, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ExpireForPlayerTx expires every in-progress challenge the player is part of,
// in any of the three roles. Used when a player unregisters.
func (s *ChallengeStore) ExpireForPlayerTx(ctx context.Context, tx *sqlx.Tx, playerID uuid.UUID) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE challenges SET status = ?
		WHERE (challenger_id = ? OR challenged_id = ? OR host_id = ?)
		AND status IN (?, ?)`,
		league.ChallengeExpired, playerID, playerID, playerID,
		league.ChallengePending, league.ChallengeAccepted)
	return err
}

func (s *ChallengeStore) ListChallenges(ctx context.Context) ([]league.Challenge, error) {
	var challenges []league.Challenge
	err := s.db.SelectContext(ctx, &challenges, "SELECT * FROM challenges ORDER BY created_at DESC")
	return challenges, err
}
