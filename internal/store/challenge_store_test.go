package store

import (
	"context"
	"testing"
	"time"

	"github.com/EmptySpace206/PHRatings/internal/league"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seedPlayers registers n approved players so foreign keys resolve.
func seedPlayers(t *testing.T, db *sqlx.DB, n int) []uuid.UUID {
	t.Helper()

	store := NewPlayerStore(db)
	ids := make([]uuid.UUID, n)
	for i := range ids {
		ids[i] = uuid.New()
		insertPlayer(t, db, store, &league.Player{
			ID:               ids[i],
			Name:             "player-" + ids[i].String()[:8],
			PasswordHash:     "h",
			Rating:           league.DefaultRating,
			Age:              20,
			Weight:           70,
			Status:           league.PlayerApproved,
			RegistrationDate: time.Now().UTC(),
		})
	}
	return ids
}

func insertChallenge(t *testing.T, db *sqlx.DB, store *ChallengeStore, challenge *league.Challenge) {
	t.Helper()

	tx, err := db.BeginTxx(context.Background(), nil)
	require.NoError(t, err)
	require.NoError(t, store.CreateChallenge(context.Background(), tx, challenge))
	require.NoError(t, tx.Commit())
}

func TestChallengeExpireDue(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	store := NewChallengeStore(db)
	players := seedPlayers(t, db, 3)

	now := time.Now().UTC()
	overdue := &league.Challenge{
		ID: uuid.New(), ChallengerID: players[0], ChallengedID: players[1], HostID: players[2],
		Status: league.ChallengePending, CreatedAt: now.Add(-time.Hour), ExpiresAt: now.Add(-50 * time.Minute),
	}
	fresh := &league.Challenge{
		ID: uuid.New(), ChallengerID: players[1], ChallengedID: players[0], HostID: players[2],
		Status: league.ChallengePending, CreatedAt: now, ExpiresAt: now.Add(league.ChallengeTimeout),
	}
	insertChallenge(t, db, store, overdue)
	insertChallenge(t, db, store, fresh)

	tx, err := db.BeginTxx(context.Background(), nil)
	require.NoError(t, err)
	n, err := store.ExpireDueTx(context.Background(), tx, now)
	require.NoError(t, err)
	require.NoError(t, tx.Commit())
	assert.Equal(t, int64(1), n)

	fetched, err := store.GetChallenge(context.Background(), overdue.ID)
	require.NoError(t, err)
	assert.Equal(t, league.ChallengeExpired, fetched.Status)

	fetched, err = store.GetChallenge(context.Background(), fresh.ID)
	require.NoError(t, err)
	assert.Equal(t, league.ChallengePending, fetched.Status)

	// Second sweep finds nothing new.
	tx, err = db.BeginTxx(context.Background(), nil)
	require.NoError(t, err)
	n, err = store.ExpireDueTx(context.Background(), tx, now)
	require.NoError(t, err)
	require.NoError(t, tx.Commit())
	assert.Equal(t, int64(0), n)
}

func TestChallengeExpireForPlayer(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	store := NewChallengeStore(db)
	players := seedPlayers(t, db, 4)

	now := time.Now().UTC()
	asHost := &league.Challenge{
		ID: uuid.New(), ChallengerID: players[1], ChallengedID: players[2], HostID: players[0],
		Status: league.ChallengePending, CreatedAt: now, ExpiresAt: now.Add(league.ChallengeTimeout),
	}
	asChallenged := &league.Challenge{
		ID: uuid.New(), ChallengerID: players[1], ChallengedID: players[0], HostID: players[2],
		Status: league.ChallengeAccepted, CreatedAt: now, ExpiresAt: now.Add(league.ChallengeTimeout),
	}
	uninvolved := &league.Challenge{
		ID: uuid.New(), ChallengerID: players[1], ChallengedID: players[2], HostID: players[3],
		Status: league.ChallengePending, CreatedAt: now, ExpiresAt: now.Add(league.ChallengeTimeout),
	}
	settled := &league.Challenge{
		ID: uuid.New(), ChallengerID: players[0], ChallengedID: players[2], HostID: players[3],
		Status: league.ChallengeMatchCreated, CreatedAt: now, ExpiresAt: now.Add(league.ChallengeTimeout),
	}
	insertChallenge(t, db, store, asHost)
	insertChallenge(t, db, store, asChallenged)
	insertChallenge(t, db, store, uninvolved)
	insertChallenge(t, db, store, settled)

	tx, err := db.BeginTxx(context.Background(), nil)
	require.NoError(t, err)
	require.NoError(t, store.ExpireForPlayerTx(context.Background(), tx, players[0]))
	require.NoError(t, tx.Commit())

	for id, want := range map[uuid.UUID]league.ChallengeStatus{
		asHost.ID:       league.ChallengeExpired,
		asChallenged.ID: league.ChallengeExpired,
		uninvolved.ID:   league.ChallengePending,
		settled.ID:      league.ChallengeMatchCreated,
	} {
		fetched, err := store.GetChallenge(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, want, fetched.Status)
	}
}

func TestUpdateChallengeAcceptances(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	store := NewChallengeStore(db)
	players := seedPlayers(t, db, 3)

	now := time.Now().UTC()
	challenge := &league.Challenge{
		ID: uuid.New(), ChallengerID: players[0], ChallengedID: players[1], HostID: players[2],
		Status: league.ChallengePending, CreatedAt: now, ExpiresAt: now.Add(league.ChallengeTimeout),
	}
	insertChallenge(t, db, store, challenge)

	acceptedAt := now.Add(time.Minute)
	challenge.Status = league.ChallengeAccepted
	challenge.ChallengedAcceptedAt = &acceptedAt

	tx, err := db.BeginTxx(context.Background(), nil)
	require.NoError(t, err)
	require.NoError(t, store.UpdateChallenge(context.Background(), tx, challenge))
	require.NoError(t, tx.Commit())

	fetched, err := store.GetChallenge(context.Background(), challenge.ID)
	require.NoError(t, err)
	assert.Equal(t, league.ChallengeAccepted, fetched.Status)
	require.NotNil(t, fetched.ChallengedAcceptedAt)
	assert.WithinDuration(t, acceptedAt, *fetched.ChallengedAcceptedAt, time.Second)
	assert.Nil(t, fetched.HostAcceptedAt)
	assert.False(t, fetched.FullyAccepted())
}
