package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/EmptySpace206/PHRatings/internal/league"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type MatchStore struct {
	db *sqlx.DB
}

func NewMatchStore(db *sqlx.DB) *MatchStore {
	return &MatchStore{db: db}
}

func (s *MatchStore) CreateMatch(ctx context.Context, tx *sqlx.Tx, match *league.Match) error {
	_, err := tx.NamedExecContext(ctx, `INSERT INTO matches (id, player1_id, player2_id, winner_id, host_id, tournament_id, challenge_id, status, created_at, completed_at, expires_at, rating_delta, notes, video_link)
		VALUES (:id, :player1_id, :player2_id, :winner_id, :host_id, :tournament_id, :challenge_id, :status, :created_at, :completed_at, :expires_at, :rating_delta, :notes, :video_link)`, match)
	return err
}

func (s *MatchStore) GetMatch(ctx context.Context, id uuid.UUID) (*league.Match, error) {
	var match league.Match
	err := s.db.GetContext(ctx, &match, "SELECT * FROM matches WHERE id = ?", id)
	return &match, err
}

func (s *MatchStore) GetMatchTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*league.Match, error) {
	var match league.Match
	err := tx.GetContext(ctx, &match, "SELECT * FROM matches WHERE id = ?", id)
	return &match, err
}

func (s *MatchStore) UpdateMatch(ctx context.Context, tx *sqlx.Tx, match *league.Match) error {
	_, err := tx.NamedExecContext(ctx, `UPDATE matches SET
		winner_id = :winner_id,
		status = :status,
		completed_at = :completed_at,
		rating_delta = :rating_delta,
		notes = :notes,
		video_link = :video_link
		WHERE id = :id`, match)
	return err
}

// GetLastCompletedByHostTx returns the most recently completed match this host
// recorded, or nil when there is none.
func (s *MatchStore) GetLastCompletedByHostTx(ctx context.Context, tx *sqlx.Tx, hostID uuid.UUID) (*league.Match, error) {
	var match league.Match
	err := tx.GetContext(ctx, &match,
		`SELECT * FROM matches WHERE host_id = ? AND status = ?
		ORDER BY completed_at DESC LIMIT 1`, hostID, league.MatchCompleted)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &match, nil
}

// ExpireDueTx moves every pending match with an elapsed deadline to expired.
// Matches recorded with an immediate result have no deadline and are skipped.
func (s *MatchStore) ExpireDueTx(ctx context.Context, tx *sqlx.Tx, now time.Time) (int64, error) {
	res, err := tx.ExecContext(ctx,
		"UPDATE matches SET status = ? WHERE status = ? AND expires_at IS NOT NULL AND expires_at < ?",
		league.MatchExpired, league.MatchPending, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ExpireForPlayerTx expires every pending match the player is part of, as a
// participant or as host. Used when a player unregisters.
func (s *MatchStore) ExpireForPlayerTx(ctx context.Context, tx *sqlx.Tx, playerID uuid.UUID) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE matches SET status = ?
		WHERE (player1_id = ? OR player2_id = ? OR host_id = ?) AND status = ?`,
		league.MatchExpired, playerID, playerID, playerID, league.MatchPending)
	return err
}

func (s *MatchStore) ListMatches(ctx context.Context, playerID, tournamentID *uuid.UUID) ([]league.Match, error) {
	query := "SELECT * FROM matches"
	var clauses []string
	var args []interface{}

	if playerID != nil {
		clauses = append(clauses, "(player1_id = ? OR player2_id = ?)")
		args = append(args, *playerID, *playerID)
	}
	if tournamentID != nil {
		clauses = append(clauses, "tournament_id = ?")
		args = append(args, *tournamentID)
	}
	for i, clause := range clauses {
		if i == 0 {
			query += " WHERE " + clause
		} else {
			query += " AND " + clause
		}
	}
	query += " ORDER BY created_at DESC"

	var matches []league.Match
	err := s.db.SelectContext(ctx, &matches, query, args...)
	return matches, err
}
