package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/EmptySpace206/PHRatings/internal/league"
	"github.com/EmptySpace206/PHRatings/internal/store"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jonboulle/clockwork"
	"golang.org/x/crypto/bcrypt"
)

type PlayerService struct {
	db          *sqlx.DB
	players     *store.PlayerStore
	challenges  *store.ChallengeStore
	matches     *store.MatchStore
	tournaments *store.TournamentStore
	clock       clockwork.Clock
}

func NewPlayerService(db *sqlx.DB, players *store.PlayerStore, challenges *store.ChallengeStore, matches *store.MatchStore, tournaments *store.TournamentStore, clock clockwork.Clock) *PlayerService {
	return &PlayerService{db: db, players: players, challenges: challenges, matches: matches, tournaments: tournaments, clock: clock}
}

// Register creates a player awaiting admin approval. The name must not be held
// by another active player; names of rejected or unregistered players are free
// to reuse.
func (s *PlayerService) Register(ctx context.Context, name string, age int, weight float64, password string) (*league.Player, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	existing, err := s.players.GetPlayerByNameTx(ctx, tx, name)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if existing != nil && existing.IsActive() {
		return nil, league.NewError(league.KindValidation, "player name already exists")
	}

	player := &league.Player{
		ID:               uuid.New(),
		Name:             name,
		PasswordHash:     string(hash),
		Rating:           league.DefaultRating,
		Age:              age,
		Weight:           weight,
		Status:           league.PlayerPending,
		RegistrationDate: s.clock.Now(),
	}

	if err := s.players.CreatePlayer(ctx, tx, player); err != nil {
		return nil, err
	}
	return player, tx.Commit()
}

// Authenticate checks a player's credentials for login.
func (s *PlayerService) Authenticate(ctx context.Context, name, password string) (*league.Player, error) {
	player, err := s.players.GetPlayerByName(ctx, name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, league.NewError(league.KindForbidden, "invalid credentials")
	}
	if err != nil {
		return nil, err
	}
	if !player.IsActive() {
		return nil, league.NewError(league.KindPlayerInactive, "player is no longer registered")
	}
	if bcrypt.CompareHashAndPassword([]byte(player.PasswordHash), []byte(password)) != nil {
		return nil, league.NewError(league.KindForbidden, "invalid credentials")
	}
	return player, nil
}

func (s *PlayerService) Approve(ctx context.Context, playerID uuid.UUID) error {
	return s.setReviewStatus(ctx, playerID, league.PlayerApproved)
}

func (s *PlayerService) Reject(ctx context.Context, playerID uuid.UUID) error {
	return s.setReviewStatus(ctx, playerID, league.PlayerRejected)
}

func (s *PlayerService) setReviewStatus(ctx context.Context, playerID uuid.UUID, status league.PlayerStatus) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	player, err := s.players.GetPlayerTx(ctx, tx, playerID)
	if errors.Is(err, sql.ErrNoRows) {
		return league.NewError(league.KindNotFound, "player not found")
	}
	if err != nil {
		return err
	}

	if player.Status != league.PlayerPending {
		return league.NewError(league.KindInvalidState, "player is not pending approval")
	}

	player.Status = status
	if err := s.players.UpdatePlayer(ctx, tx, player); err != nil {
		return err
	}
	return tx.Commit()
}

// Unregister retires a player. Their rating and match history are preserved,
// but every in-progress interaction they are part of is cancelled: participant
// rows in tournaments still open for registration are removed, and pending
// challenges and matches involving them are expired.
func (s *PlayerService) Unregister(ctx context.Context, playerID uuid.UUID) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	player, err := s.players.GetPlayerTx(ctx, tx, playerID)
	if errors.Is(err, sql.ErrNoRows) {
		return league.NewError(league.KindNotFound, "player not found")
	}
	if err != nil {
		return err
	}

	if !player.IsActive() {
		return league.NewError(league.KindInvalidState, "player is not currently registered")
	}

	now := s.clock.Now()
	player.Status = league.PlayerUnregistered
	player.UnregistrationDate = &now
	if err := s.players.UpdatePlayer(ctx, tx, player); err != nil {
		return err
	}

	if err := s.tournaments.DeleteParticipantsForPlayerTx(ctx, tx, playerID); err != nil {
		return fmt.Errorf("failed to remove tournament registrations: %w", err)
	}
	if err := s.challenges.ExpireForPlayerTx(ctx, tx, playerID); err != nil {
		return fmt.Errorf("failed to expire challenges: %w", err)
	}
	if err := s.matches.ExpireForPlayerTx(ctx, tx, playerID); err != nil {
		return fmt.Errorf("failed to expire matches: %w", err)
	}

	return tx.Commit()
}

func (s *PlayerService) UpdateWeight(ctx context.Context, playerID uuid.UUID, weight float64) error {
	if weight <= 0 {
		return league.NewError(league.KindValidation, "weight must be positive")
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	player, err := s.players.GetPlayerTx(ctx, tx, playerID)
	if errors.Is(err, sql.ErrNoRows) {
		return league.NewError(league.KindNotFound, "player not found")
	}
	if err != nil {
		return err
	}

	if !player.IsActive() {
		return league.NewError(league.KindInvalidState, "cannot update weight for unregistered player")
	}

	player.Weight = weight
	if err := s.players.UpdatePlayer(ctx, tx, player); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *PlayerService) GetPlayer(ctx context.Context, playerID uuid.UUID) (*league.Player, error) {
	player, err := s.players.GetPlayer(ctx, playerID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, league.NewError(league.KindNotFound, "player not found")
	}
	return player, err
}

func (s *PlayerService) ListPlayers(ctx context.Context, includeUnregistered bool) ([]league.Player, error) {
	return s.players.ListPlayers(ctx, includeUnregistered)
}

func (s *PlayerService) ListPendingPlayers(ctx context.Context) ([]league.Player, error) {
	return s.players.ListPendingPlayers(ctx)
}

// Clock exposes the service clock so callers can derive current ages.
func (s *PlayerService) Clock() clockwork.Clock {
	return s.clock
}
