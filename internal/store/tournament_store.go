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

type TournamentStore struct {
	db *sqlx.DB
}

func NewTournamentStore(db *sqlx.DB) *TournamentStore {
	return &TournamentStore{db: db}
}

func (s *TournamentStore) CreateTournament(ctx context.Context, tx *sqlx.Tx, tournament *league.Tournament) error {
	_, err := tx.NamedExecContext(ctx, `INSERT INTO tournaments (id, name, host_id, start_time, status, created_at, expires_at)
		VALUES (:id, :name, :host_id, :start_time, :status, :created_at, :expires_at)`, tournament)
	return err
}

func (s *TournamentStore) GetTournament(ctx context.Context, id uuid.UUID) (*league.Tournament, error) {
	var tournament league.Tournament
	err := s.db.GetContext(ctx, &tournament, "SELECT * FROM tournaments WHERE id = ?", id)
	return &tournament, err
}

func (s *TournamentStore) GetTournamentTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*league.Tournament, error) {
	var tournament league.Tournament
	err := tx.GetContext(ctx, &tournament, "SELECT * FROM tournaments WHERE id = ?", id)
	return &tournament, err
}

// GetTournamentByNameTx returns nil when no tournament carries the name.
func (s *TournamentStore) GetTournamentByNameTx(ctx context.Context, tx *sqlx.Tx, name string) (*league.Tournament, error) {
	var tournament league.Tournament
	err := tx.GetContext(ctx, &tournament, "SELECT * FROM tournaments WHERE name = ?", name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &tournament, nil
}

func (s *TournamentStore) UpdateTournamentStatusTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, status league.TournamentStatus) error {
	_, err := tx.ExecContext(ctx, "UPDATE tournaments SET status = ? WHERE id = ?", status, id)
	return err
}

// StartDueTx opens play for every tournament whose registration window has
// closed. Runs before ExpireDueTx so a tournament never skips the active step.
func (s *TournamentStore) StartDueTx(ctx context.Context, tx *sqlx.Tx, now time.Time) (int64, error) {
	res, err := tx.ExecContext(ctx,
		"UPDATE tournaments SET status = ? WHERE status = ? AND start_time <= ?",
		league.TournamentActive, league.TournamentRegistrationOpen, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *TournamentStore) ExpireDueTx(ctx context.Context, tx *sqlx.Tx, now time.Time) (int64, error) {
	res, err := tx.ExecContext(ctx,
		"UPDATE tournaments SET status = ? WHERE status = ? AND expires_at < ?",
		league.TournamentExpired, league.TournamentActive, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *TournamentStore) CreateParticipant(ctx context.Context, tx *sqlx.Tx, participant *league.Participant) error {
	_, err := tx.NamedExecContext(ctx, `INSERT INTO tournament_participants (id, tournament_id, player_id, joined_at)
		VALUES (:id, :tournament_id, :player_id, :joined_at)`, participant)
	return err
}

// GetParticipantTx returns nil when the player has not joined the tournament.
func (s *TournamentStore) GetParticipantTx(ctx context.Context, tx *sqlx.Tx, tournamentID, playerID uuid.UUID) (*league.Participant, error) {
	var participant league.Participant
	err := tx.GetContext(ctx, &participant,
		"SELECT * FROM tournament_participants WHERE tournament_id = ? AND player_id = ?",
		tournamentID, playerID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &participant, nil
}

func (s *TournamentStore) DeleteParticipantTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) error {
	_, err := tx.ExecContext(ctx, "DELETE FROM tournament_participants WHERE id = ?", id)
	return err
}

// DeleteParticipantsForPlayerTx removes the player from every tournament still
// open for registration. Used when a player unregisters; participation in
// started tournaments is kept for history.
func (s *TournamentStore) DeleteParticipantsForPlayerTx(ctx context.Context, tx *sqlx.Tx, playerID uuid.UUID) error {
	_, err := tx.ExecContext(ctx,
		`DELETE FROM tournament_participants WHERE player_id = ? AND tournament_id IN
		(SELECT id FROM tournaments WHERE status = ?)`,
		playerID, league.TournamentRegistrationOpen)
	return err
}

// ParticipantInfo is the participant row joined with a player snapshot.
type ParticipantInfo struct {
	PlayerID     uuid.UUID           `db:"player_id"`
	PlayerName   string              `db:"player_name"`
	PlayerRating float64             `db:"player_rating"`
	PlayerStatus league.PlayerStatus `db:"player_status"`
	JoinedAt     time.Time           `db:"joined_at"`
}

func (s *TournamentStore) ListParticipants(ctx context.Context, tournamentID uuid.UUID) ([]ParticipantInfo, error) {
	var participants []ParticipantInfo
	err := s.db.SelectContext(ctx, &participants,
		`SELECT p.id AS player_id, p.name AS player_name, p.rating AS player_rating,
		p.status AS player_status, tp.joined_at AS joined_at
		FROM tournament_participants tp
		JOIN players p ON p.id = tp.player_id
		WHERE tp.tournament_id = ?
		ORDER BY tp.joined_at ASC`, tournamentID)
	return participants, err
}

// TournamentInfo is a tournament with its participant count.
type TournamentInfo struct {
	league.Tournament
	ParticipantCount int `db:"participant_count"`
}

func (s *TournamentStore) ListTournaments(ctx context.Context) ([]TournamentInfo, error) {
	var tournaments []TournamentInfo
	err := s.db.SelectContext(ctx, &tournaments,
		`SELECT t.*, COUNT(tp.id) AS participant_count
		FROM tournaments t
		LEFT JOIN tournament_participants tp ON tp.tournament_id = t.id
		GROUP BY t.id
		ORDER BY t.start_time ASC`)
	return tournaments, err
}
