package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/EmptySpace206/PHRatings/internal/league"
	"github.com/EmptySpace206/PHRatings/internal/rating"
	"github.com/EmptySpace206/PHRatings/internal/store"
	"github.com/EmptySpace206/PHRatings/internal/utils"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jonboulle/clockwork"
)

type TournamentService struct {
	db          *sqlx.DB
	tournaments *store.TournamentStore
	players     *store.PlayerStore
	matches     *store.MatchStore
	sweeper     *Sweeper
	clock       clockwork.Clock
}

func NewTournamentService(db *sqlx.DB, tournaments *store.TournamentStore, players *store.PlayerStore, matches *store.MatchStore, sweeper *Sweeper, clock clockwork.Clock) *TournamentService {
	return &TournamentService{db: db, tournaments: tournaments, players: players, matches: matches, sweeper: sweeper, clock: clock}
}

// Create opens registration for a tournament. The start time must be in the
// future; play stays open for 24 hours past it.
func (s *TournamentService) Create(ctx context.Context, name string, hostID uuid.UUID, startTime time.Time) (*league.Tournament, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	now := s.clock.Now()
	if !startTime.After(now) {
		return nil, league.NewError(league.KindValidation, "start time must be in the future")
	}

	host, err := s.players.GetPlayerTx(ctx, tx, hostID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, league.NewError(league.KindValidation, "host must be an approved and active player")
	}
	if err != nil {
		return nil, err
	}
	if !host.IsApproved() {
		return nil, league.NewError(league.KindValidation, "host must be an approved and active player")
	}

	existing, err := s.tournaments.GetTournamentByNameTx(ctx, tx, name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, league.NewError(league.KindValidation, "tournament name already exists")
	}

	tournament := &league.Tournament{
		ID:        uuid.New(),
		Name:      name,
		HostID:    hostID,
		StartTime: startTime,
		Status:    league.TournamentRegistrationOpen,
		CreatedAt: now,
		ExpiresAt: startTime.Add(league.TournamentTimeout),
	}

	if err := s.tournaments.CreateTournament(ctx, tx, tournament); err != nil {
		return nil, err
	}
	return tournament, tx.Commit()
}

// Join registers a player while the tournament is open. The host can never
// join their own tournament.
func (s *TournamentService) Join(ctx context.Context, tournamentID, playerID uuid.UUID) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := s.sweeper.SweepTournamentsTx(ctx, tx); err != nil {
		return err
	}

	tournament, err := s.tournaments.GetTournamentTx(ctx, tx, tournamentID)
	if errors.Is(err, sql.ErrNoRows) {
		return league.NewError(league.KindNotFound, "tournament not found")
	}
	if err != nil {
		return err
	}

	if tournament.Status != league.TournamentRegistrationOpen {
		return league.NewError(league.KindInvalidState, "tournament registration is closed")
	}
	if playerID == tournament.HostID {
		return league.NewError(league.KindForbidden, "tournament host cannot participate in their own tournament")
	}

	player, err := s.players.GetPlayerTx(ctx, tx, playerID)
	if errors.Is(err, sql.ErrNoRows) {
		return league.NewError(league.KindPlayerInactive, "player must be approved and active")
	}
	if err != nil {
		return err
	}
	if !player.IsApproved() {
		return league.NewError(league.KindPlayerInactive, "player must be approved and active")
	}

	existing, err := s.tournaments.GetParticipantTx(ctx, tx, tournamentID, playerID)
	if err != nil {
		return err
	}
	if existing != nil {
		return league.NewError(league.KindAlreadyJoined, "player already joined tournament")
	}

	participant := &league.Participant{
		ID:           uuid.New(),
		TournamentID: tournamentID,
		PlayerID:     playerID,
		JoinedAt:     s.clock.Now(),
	}
	if err := s.tournaments.CreateParticipant(ctx, tx, participant); err != nil {
		return err
	}
	return tx.Commit()
}

// Leave withdraws a registration. Only possible while registration is open.
func (s *TournamentService) Leave(ctx context.Context, tournamentID, playerID uuid.UUID) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := s.sweeper.SweepTournamentsTx(ctx, tx); err != nil {
		return err
	}

	tournament, err := s.tournaments.GetTournamentTx(ctx, tx, tournamentID)
	if errors.Is(err, sql.ErrNoRows) {
		return league.NewError(league.KindNotFound, "tournament not found")
	}
	if err != nil {
		return err
	}

	if tournament.Status != league.TournamentRegistrationOpen {
		return league.NewError(league.KindInvalidState, "cannot leave tournament after registration closes")
	}

	participant, err := s.tournaments.GetParticipantTx(ctx, tx, tournamentID, playerID)
	if err != nil {
		return err
	}
	if participant == nil {
		return league.NewError(league.KindNotFound, "player is not registered for this tournament")
	}

	if err := s.tournaments.DeleteParticipantTx(ctx, tx, participant.ID); err != nil {
		return err
	}
	return tx.Commit()
}

// RecordMatchInput carries a host-adjudicated result between two participants.
type RecordMatchInput struct {
	TournamentID uuid.UUID
	HostID       uuid.UUID
	Player1ID    uuid.UUID
	Player2ID    uuid.UUID
	WinnerID     uuid.UUID
	Notes        string
	VideoLink    string
}

// MatchResult reports a completed match and both players' new ratings.
type MatchResult struct {
	Match        *league.Match
	WinnerRating float64
	LoserRating  float64
}

// RecordMatch lets the tournament host record a result between any two
// participants while the tournament is active. The match is created already
// completed, with no reporting deadline, and ratings move immediately.
func (s *TournamentService) RecordMatch(ctx context.Context, input RecordMatchInput) (*MatchResult, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if err := s.sweeper.SweepTournamentsTx(ctx, tx); err != nil {
		return nil, err
	}

	tournament, err := s.tournaments.GetTournamentTx(ctx, tx, input.TournamentID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, league.NewError(league.KindNotFound, "tournament not found")
	}
	if err != nil {
		return nil, err
	}

	if input.HostID != tournament.HostID {
		return nil, league.NewError(league.KindForbidden, "only the tournament host can record results")
	}

	host, err := s.players.GetPlayerTx(ctx, tx, input.HostID)
	if err != nil {
		return nil, err
	}
	if !host.IsApproved() {
		return nil, league.NewError(league.KindPlayerInactive, "host must be approved and active")
	}

	if tournament.Status == league.TournamentExpired {
		// The sweep just retired it; commit so the transition sticks even
		// though this call fails.
		if err := tx.Commit(); err != nil {
			return nil, err
		}
		return nil, league.NewError(league.KindExpired, "tournament has expired")
	}
	if tournament.Status != league.TournamentActive {
		return nil, league.NewError(league.KindInvalidState, "tournament is not active")
	}

	now := s.clock.Now()

	if input.Player1ID == input.Player2ID {
		return nil, league.NewError(league.KindValidation, "players must be different")
	}
	if input.WinnerID != input.Player1ID && input.WinnerID != input.Player2ID {
		return nil, league.NewError(league.KindValidation, "winner must be one of the two players")
	}

	for _, playerID := range []uuid.UUID{input.Player1ID, input.Player2ID} {
		participant, err := s.tournaments.GetParticipantTx(ctx, tx, input.TournamentID, playerID)
		if err != nil {
			return nil, err
		}
		if participant == nil {
			return nil, league.NewError(league.KindNotParticipant, "both players must be tournament participants")
		}
	}

	loserID := input.Player1ID
	if input.WinnerID == input.Player1ID {
		loserID = input.Player2ID
	}
	winner, err := s.players.GetPlayerTx(ctx, tx, input.WinnerID)
	if err != nil {
		return nil, err
	}
	loser, err := s.players.GetPlayerTx(ctx, tx, loserID)
	if err != nil {
		return nil, err
	}

	delta := rating.ApplyResult(winner, loser, rating.DefaultK)
	if err := s.players.UpdatePlayer(ctx, tx, winner); err != nil {
		return nil, err
	}
	if err := s.players.UpdatePlayer(ctx, tx, loser); err != nil {
		return nil, err
	}

	match := &league.Match{
		ID:           uuid.New(),
		Player1ID:    input.Player1ID,
		Player2ID:    input.Player2ID,
		WinnerID:     &input.WinnerID,
		HostID:       input.HostID,
		TournamentID: &tournament.ID,
		Status:       league.MatchCompleted,
		CreatedAt:    now,
		CompletedAt:  &now,
		RatingDelta:  &delta,
		Notes:        utils.StringOrNil(input.Notes),
		VideoLink:    utils.StringOrNil(input.VideoLink),
	}
	if err := s.matches.CreateMatch(ctx, tx, match); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &MatchResult{Match: match, WinnerRating: winner.Rating, LoserRating: loser.Rating}, nil
}

// Complete closes out an active tournament. Reached only through an
// administrative action, never by the sweeper.
func (s *TournamentService) Complete(ctx context.Context, tournamentID uuid.UUID) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := s.sweeper.SweepTournamentsTx(ctx, tx); err != nil {
		return err
	}

	tournament, err := s.tournaments.GetTournamentTx(ctx, tx, tournamentID)
	if errors.Is(err, sql.ErrNoRows) {
		return league.NewError(league.KindNotFound, "tournament not found")
	}
	if err != nil {
		return err
	}

	if tournament.Status != league.TournamentActive {
		return league.NewError(league.KindInvalidState, "tournament is not active")
	}

	if err := s.tournaments.UpdateTournamentStatusTx(ctx, tx, tournamentID, league.TournamentCompleted); err != nil {
		return err
	}
	return tx.Commit()
}

// ListParticipants is read-only; it does not sweep.
func (s *TournamentService) ListParticipants(ctx context.Context, tournamentID uuid.UUID) ([]store.ParticipantInfo, error) {
	_, err := s.tournaments.GetTournament(ctx, tournamentID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, league.NewError(league.KindNotFound, "tournament not found")
	}
	if err != nil {
		return nil, err
	}
	return s.tournaments.ListParticipants(ctx, tournamentID)
}

func (s *TournamentService) ListTournaments(ctx context.Context) ([]store.TournamentInfo, error) {
	if err := s.sweeper.SweepTournaments(ctx); err != nil {
		return nil, err
	}
	return s.tournaments.ListTournaments(ctx)
}
