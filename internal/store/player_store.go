package store

import (
	"context"

	"github.com/EmptySpace206/PHRatings/internal/league"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type PlayerStore struct {
	db *sqlx.DB
}

const (
	getPlayerQuery = "SELECT * FROM players WHERE id = ?"

	// Freed names can be re-registered, so several rows may share a name.
	// The active holder wins; among retired rows the newest does.
	getPlayerByNameQuery = `
		SELECT * FROM players WHERE name = ?
		ORDER BY CASE WHEN status IN ('pending', 'approved') THEN 0 ELSE 1 END, registration_date DESC
		LIMIT 1
	`

	createPlayerQuery = `
		INSERT INTO players (id, name, password_hash, rating, age, weight, status, registration_date)
		VALUES (:id, :name, :password_hash, :rating, :age, :weight, :status, :registration_date)
	`
	updatePlayerQuery = `
		UPDATE players SET
		rating = :rating,
		weight = :weight,
		status = :status,
		unregistration_date = :unregistration_date
		WHERE id = :id
	`
)

func NewPlayerStore(db *sqlx.DB) *PlayerStore {
	return &PlayerStore{db: db}
}

func (s *PlayerStore) CreatePlayer(ctx context.Context, tx *sqlx.Tx, player *league.Player) error {
	_, err := tx.NamedExecContext(ctx, createPlayerQuery, player)
	return err
}

func (s *PlayerStore) GetPlayer(ctx context.Context, id uuid.UUID) (*league.Player, error) {
	var player league.Player
	err := s.db.GetContext(ctx, &player, getPlayerQuery, id)
	if err != nil {
		return nil, err
	}
	return &player, nil
}

func (s *PlayerStore) GetPlayerTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*league.Player, error) {
	var player league.Player
	err := tx.GetContext(ctx, &player, getPlayerQuery, id)
	if err != nil {
		return nil, err
	}
	return &player, nil
}

func (s *PlayerStore) GetPlayerByName(ctx context.Context, name string) (*league.Player, error) {
	var player league.Player
	err := s.db.GetContext(ctx, &player, getPlayerByNameQuery, name)
	if err != nil {
		return nil, err
	}
	return &player, nil
}

func (s *PlayerStore) GetPlayerByNameTx(ctx context.Context, tx *sqlx.Tx, name string) (*league.Player, error) {
	var player league.Player
	err := tx.GetContext(ctx, &player, getPlayerByNameQuery, name)
	if err != nil {
		return nil, err
	}
	return &player, nil
}

// UpdatePlayer persists the mutable player columns. Name, age and
// registration date are immutable.
func (s *PlayerStore) UpdatePlayer(ctx context.Context, tx *sqlx.Tx, player *league.Player) error {
	_, err := tx.NamedExecContext(ctx, updatePlayerQuery, player)
	return err
}

func (s *PlayerStore) ListPlayers(ctx context.Context, includeUnregistered bool) ([]league.Player, error) {
	var players []league.Player
	if includeUnregistered {
		err := s.db.SelectContext(ctx, &players, "SELECT * FROM players ORDER BY rating DESC")
		return players, err
	}
	err := s.db.SelectContext(ctx, &players,
		"SELECT * FROM players WHERE status != ? ORDER BY rating DESC", league.PlayerUnregistered)
	return players, err
}

func (s *PlayerStore) ListPendingPlayers(ctx context.Context) ([]league.Player, error) {
	var players []league.Player
	err := s.db.SelectContext(ctx, &players,
		"SELECT * FROM players WHERE status = ? ORDER BY registration_date ASC", league.PlayerPending)
	return players, err
}
