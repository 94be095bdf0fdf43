package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/EmptySpace206/PHRatings/internal/league"
	"github.com/EmptySpace206/PHRatings/internal/store"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jonboulle/clockwork"
)

type ChallengeService struct {
	db         *sqlx.DB
	challenges *store.ChallengeStore
	matches    *store.MatchStore
	players    *store.PlayerStore
	sweeper    *Sweeper
	clock      clockwork.Clock
}

func NewChallengeService(db *sqlx.DB, challenges *store.ChallengeStore, matches *store.MatchStore, players *store.PlayerStore, sweeper *Sweeper, clock clockwork.Clock) *ChallengeService {
	return &ChallengeService{db: db, challenges: challenges, matches: matches, players: players, sweeper: sweeper, clock: clock}
}

// Create opens a challenge between two players with a third acting as host.
// The challenger implicitly accepts by creating it; the challenged player and
// the host both have ten minutes to accept before it expires.
func (s *ChallengeService) Create(ctx context.Context, challengerID, challengedID, hostID uuid.UUID) (*league.Challenge, error) {
	if challengerID == challengedID {
		return nil, league.NewError(league.KindValidation, "cannot challenge yourself")
	}
	if hostID == challengerID || hostID == challengedID {
		return nil, league.NewError(league.KindValidation, "host cannot be one of the players")
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if err := s.sweeper.SweepChallengesTx(ctx, tx); err != nil {
		return nil, err
	}

	for _, id := range []uuid.UUID{challengerID, challengedID, hostID} {
		player, err := s.players.GetPlayerTx(ctx, tx, id)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, league.NewError(league.KindValidation, "all players must exist and be approved")
		}
		if err != nil {
			return nil, err
		}
		if !player.IsApproved() {
			return nil, league.NewError(league.KindValidation, "all players must exist and be approved")
		}
	}

	now := s.clock.Now()
	challenge := &league.Challenge{
		ID:           uuid.New(),
		ChallengerID: challengerID,
		ChallengedID: challengedID,
		HostID:       hostID,
		Status:       league.ChallengePending,
		CreatedAt:    now,
		ExpiresAt:    now.Add(league.ChallengeTimeout),
	}

	if err := s.challenges.CreateChallenge(ctx, tx, challenge); err != nil {
		return nil, err
	}
	return challenge, tx.Commit()
}

// AcceptResult reports the state after one acceptance. MatchID is set only
// once both required parties have accepted and the match exists.
type AcceptResult struct {
	Challenge *league.Challenge
	MatchID   *uuid.UUID
}

// Accept records one party's acceptance. Only the challenged player and the
// host may accept; once both have, the challenge becomes a match awaiting a
// host-reported result within eight hours.
func (s *ChallengeService) Accept(ctx context.Context, challengeID, actorID uuid.UUID) (*AcceptResult, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if err := s.sweeper.SweepChallengesTx(ctx, tx); err != nil {
		return nil, err
	}

	challenge, err := s.challenges.GetChallengeTx(ctx, tx, challengeID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, league.NewError(league.KindNotFound, "challenge not found")
	}
	if err != nil {
		return nil, err
	}

	actor, err := s.players.GetPlayerTx(ctx, tx, actorID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, league.NewError(league.KindPlayerInactive, "player must be approved and active")
	}
	if err != nil {
		return nil, err
	}
	if !actor.IsApproved() {
		return nil, league.NewError(league.KindPlayerInactive, "player must be approved and active")
	}

	if challenge.Status == league.ChallengeExpired {
		// The sweep just retired it; commit so the transition sticks even
		// though this call fails.
		if err := tx.Commit(); err != nil {
			return nil, err
		}
		return nil, league.NewError(league.KindExpired, "challenge has expired")
	}
	if challenge.Status != league.ChallengePending && challenge.Status != league.ChallengeAccepted {
		return nil, league.NewError(league.KindInvalidState, "challenge is no longer pending")
	}

	now := s.clock.Now()
	if now.After(challenge.ExpiresAt) {
		// The failed deadline still transitions the challenge, so the
		// expiry is persisted even though the call fails.
		challenge.Status = league.ChallengeExpired
		if err := s.challenges.UpdateChallenge(ctx, tx, challenge); err != nil {
			return nil, err
		}
		if err := tx.Commit(); err != nil {
			return nil, err
		}
		return nil, league.NewError(league.KindExpired, "challenge has expired")
	}

	switch actorID {
	case challenge.ChallengedID:
		challenge.ChallengedAcceptedAt = &now
	case challenge.HostID:
		challenge.HostAcceptedAt = &now
	default:
		return nil, league.NewError(league.KindForbidden, "only the challenged player or host can accept")
	}

	if !challenge.FullyAccepted() {
		challenge.Status = league.ChallengeAccepted
		if err := s.challenges.UpdateChallenge(ctx, tx, challenge); err != nil {
			return nil, err
		}
		if err := tx.Commit(); err != nil {
			return nil, err
		}
		return &AcceptResult{Challenge: challenge}, nil
	}

	challenge.Status = league.ChallengeMatchCreated
	if err := s.challenges.UpdateChallenge(ctx, tx, challenge); err != nil {
		return nil, err
	}

	expiresAt := now.Add(league.MatchTimeout)
	match := &league.Match{
		ID:          uuid.New(),
		Player1ID:   challenge.ChallengerID,
		Player2ID:   challenge.ChallengedID,
		HostID:      challenge.HostID,
		ChallengeID: &challenge.ID,
		Status:      league.MatchPending,
		CreatedAt:   now,
		ExpiresAt:   &expiresAt,
	}
	if err := s.matches.CreateMatch(ctx, tx, match); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &AcceptResult{Challenge: challenge, MatchID: &match.ID}, nil
}

// ListChallenges sweeps first so no caller sees a stale pending challenge.
func (s *ChallengeService) ListChallenges(ctx context.Context) ([]league.Challenge, error) {
	if err := s.sweeper.SweepChallenges(ctx); err != nil {
		return nil, err
	}
	return s.challenges.ListChallenges(ctx)
}
