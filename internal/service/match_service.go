package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/EmptySpace206/PHRatings/internal/league"
	"github.com/EmptySpace206/PHRatings/internal/rating"
	"github.com/EmptySpace206/PHRatings/internal/store"
	"github.com/EmptySpace206/PHRatings/internal/utils"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jonboulle/clockwork"
)

type MatchService struct {
	db      *sqlx.DB
	matches *store.MatchStore
	players *store.PlayerStore
	sweeper *Sweeper
	clock   clockwork.Clock
}

func NewMatchService(db *sqlx.DB, matches *store.MatchStore, players *store.PlayerStore, sweeper *Sweeper, clock clockwork.Clock) *MatchService {
	return &MatchService{db: db, matches: matches, players: players, sweeper: sweeper, clock: clock}
}

// RecordResult lets the match host report the winner of a pending match
// before its reporting deadline. Ratings move immediately and the transferred
// delta is persisted for a potential undo.
func (s *MatchService) RecordResult(ctx context.Context, matchID, hostID, winnerID uuid.UUID, notes, videoLink string) (*MatchResult, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if err := s.sweeper.SweepMatchesTx(ctx, tx); err != nil {
		return nil, err
	}

	match, err := s.matches.GetMatchTx(ctx, tx, matchID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, league.NewError(league.KindNotFound, "match not found")
	}
	if err != nil {
		return nil, err
	}

	if match.HostID != hostID {
		return nil, league.NewError(league.KindForbidden, "only the match host can record results")
	}

	host, err := s.players.GetPlayerTx(ctx, tx, hostID)
	if err != nil {
		return nil, err
	}
	if !host.IsApproved() {
		return nil, league.NewError(league.KindPlayerInactive, "host must be approved and active")
	}

	if match.Status == league.MatchExpired {
		// The sweep just retired it; commit so the transition sticks even
		// though this call fails.
		if err := tx.Commit(); err != nil {
			return nil, err
		}
		return nil, league.NewError(league.KindExpired, "match has expired")
	}
	if match.Status != league.MatchPending {
		return nil, league.NewError(league.KindInvalidState, "match is not pending")
	}

	now := s.clock.Now()

	if !match.HasPlayer(winnerID) {
		return nil, league.NewError(league.KindValidation, "winner must be one of the match players")
	}

	match.WinnerID = &winnerID
	winner, err := s.players.GetPlayerTx(ctx, tx, winnerID)
	if err != nil {
		return nil, err
	}
	loser, err := s.players.GetPlayerTx(ctx, tx, match.LoserID())
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

	match.Status = league.MatchCompleted
	match.CompletedAt = &now
	match.RatingDelta = &delta
	match.Notes = utils.StringOrNil(notes)
	match.VideoLink = utils.StringOrNil(videoLink)
	if err := s.matches.UpdateMatch(ctx, tx, match); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &MatchResult{Match: match, WinnerRating: winner.Rating, LoserRating: loser.Rating}, nil
}

// UndoLast reverses the most recent match this host completed, restoring both
// players' exact pre-match ratings from the stored delta. Only allowed within
// ten minutes of completion, and only once: an undone match is no longer the
// host's last completed match.
func (s *MatchService) UndoLast(ctx context.Context, hostID uuid.UUID) (*MatchResult, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	host, err := s.players.GetPlayerTx(ctx, tx, hostID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, league.NewError(league.KindPlayerInactive, "host must be an approved and active player")
	}
	if err != nil {
		return nil, err
	}
	if !host.IsApproved() {
		return nil, league.NewError(league.KindPlayerInactive, "host must be an approved and active player")
	}

	match, err := s.matches.GetLastCompletedByHostTx(ctx, tx, hostID)
	if err != nil {
		return nil, err
	}
	if match == nil {
		return nil, league.NewError(league.KindNotFound, "no completed match found for this host to undo")
	}

	if s.clock.Now().After(match.CompletedAt.Add(league.UndoWindow)) {
		return nil, league.NewError(league.KindUndoWindowExpired, "undo time limit has passed")
	}

	winner, err := s.players.GetPlayerTx(ctx, tx, *match.WinnerID)
	if err != nil {
		return nil, err
	}
	loser, err := s.players.GetPlayerTx(ctx, tx, match.LoserID())
	if err != nil {
		return nil, err
	}

	rating.Revert(winner, loser, *match.RatingDelta)
	if err := s.players.UpdatePlayer(ctx, tx, winner); err != nil {
		return nil, err
	}
	if err := s.players.UpdatePlayer(ctx, tx, loser); err != nil {
		return nil, err
	}

	match.Status = league.MatchUndone
	if err := s.matches.UpdateMatch(ctx, tx, match); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &MatchResult{Match: match, WinnerRating: winner.Rating, LoserRating: loser.Rating}, nil
}

// PlayerRef identifies a player by id or, failing that, by name.
type PlayerRef struct {
	ID   *uuid.UUID
	Name string
}

// RecordDirect is the legacy path: record an already-played match outside any
// challenge or tournament. The match is created completed with no deadline and
// the winner defaults to host.
func (s *MatchService) RecordDirect(ctx context.Context, player1Ref, player2Ref, winnerRef PlayerRef, notes, videoLink string) (*MatchResult, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	player1, err := s.resolvePlayerTx(ctx, tx, player1Ref)
	if err != nil {
		return nil, err
	}
	player2, err := s.resolvePlayerTx(ctx, tx, player2Ref)
	if err != nil {
		return nil, err
	}
	winner, err := s.resolvePlayerTx(ctx, tx, winnerRef)
	if err != nil {
		return nil, err
	}

	if player1.ID == player2.ID {
		return nil, league.NewError(league.KindValidation, "player1 and player2 must be different players")
	}
	if winner.ID != player1.ID && winner.ID != player2.ID {
		return nil, league.NewError(league.KindValidation, "winner must be one of the input players")
	}

	loser := player1
	if winner.ID == player1.ID {
		loser = player2
	}

	delta := rating.ApplyResult(winner, loser, rating.DefaultK)
	if err := s.players.UpdatePlayer(ctx, tx, winner); err != nil {
		return nil, err
	}
	if err := s.players.UpdatePlayer(ctx, tx, loser); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	match := &league.Match{
		ID:          uuid.New(),
		Player1ID:   player1.ID,
		Player2ID:   player2.ID,
		WinnerID:    &winner.ID,
		HostID:      winner.ID,
		Status:      league.MatchCompleted,
		CreatedAt:   now,
		CompletedAt: &now,
		RatingDelta: &delta,
		Notes:       utils.StringOrNil(notes),
		VideoLink:   utils.StringOrNil(videoLink),
	}
	if err := s.matches.CreateMatch(ctx, tx, match); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &MatchResult{Match: match, WinnerRating: winner.Rating, LoserRating: loser.Rating}, nil
}

func (s *MatchService) resolvePlayerTx(ctx context.Context, tx *sqlx.Tx, ref PlayerRef) (*league.Player, error) {
	var player *league.Player
	var err error
	switch {
	case ref.ID != nil:
		player, err = s.players.GetPlayerTx(ctx, tx, *ref.ID)
	case ref.Name != "":
		player, err = s.players.GetPlayerByNameTx(ctx, tx, ref.Name)
	default:
		return nil, league.NewError(league.KindValidation, "invalid player identifiers")
	}
	if errors.Is(err, sql.ErrNoRows) {
		return nil, league.NewError(league.KindValidation, "invalid player identifiers")
	}
	return player, err
}

// ListMatches sweeps first so no caller sees a stale pending match.
func (s *MatchService) ListMatches(ctx context.Context, playerID, tournamentID *uuid.UUID) ([]league.Match, error) {
	if err := s.sweeper.SweepMatches(ctx); err != nil {
		return nil, err
	}
	return s.matches.ListMatches(ctx, playerID, tournamentID)
}

func (s *MatchService) GetMatch(ctx context.Context, matchID uuid.UUID) (*league.Match, error) {
	match, err := s.matches.GetMatch(ctx, matchID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, league.NewError(league.KindNotFound, "match not found")
	}
	return match, err
}
