package service

import (
	"context"
	"testing"
	"time"

	"github.com/EmptySpace206/PHRatings/internal/league"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTournamentCreateValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	host := env.approvedPlayer(t, "Host")

	_, err := env.tournaments.Create(ctx, "Past", host.ID, env.clock.Now().Add(-time.Hour))
	assert.Equal(t, league.KindValidation, league.KindOf(err))

	_, err = env.tournaments.Create(ctx, "Now", host.ID, env.clock.Now())
	assert.Equal(t, league.KindValidation, league.KindOf(err))

	pending, err := env.players.Register(ctx, "Newcomer", 20, 60, "secret")
	require.NoError(t, err)
	_, err = env.tournaments.Create(ctx, "Open", pending.ID, env.clock.Now().Add(time.Hour))
	assert.Equal(t, league.KindValidation, league.KindOf(err))

	tournament, err := env.tournaments.Create(ctx, "Open", host.ID, env.clock.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, league.TournamentRegistrationOpen, tournament.Status)
	assert.Equal(t, tournament.StartTime.Add(league.TournamentTimeout), tournament.ExpiresAt)

	_, err = env.tournaments.Create(ctx, "Open", host.ID, env.clock.Now().Add(2*time.Hour))
	assert.Equal(t, league.KindValidation, league.KindOf(err))
}

func TestTournamentJoinAndLeave(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	host := env.approvedPlayer(t, "Host")
	player := env.approvedPlayer(t, "Player")

	tournament, err := env.tournaments.Create(ctx, "Open", host.ID, env.clock.Now().Add(time.Hour))
	require.NoError(t, err)

	err = env.tournaments.Join(ctx, tournament.ID, host.ID)
	assert.Equal(t, league.KindForbidden, league.KindOf(err))

	pending, err := env.players.Register(ctx, "Newcomer", 20, 60, "secret")
	require.NoError(t, err)
	err = env.tournaments.Join(ctx, tournament.ID, pending.ID)
	assert.Equal(t, league.KindPlayerInactive, league.KindOf(err))

	require.NoError(t, env.tournaments.Join(ctx, tournament.ID, player.ID))

	err = env.tournaments.Join(ctx, tournament.ID, player.ID)
	assert.Equal(t, league.KindAlreadyJoined, league.KindOf(err))

	participants, err := env.tournaments.ListParticipants(ctx, tournament.ID)
	require.NoError(t, err)
	require.Len(t, participants, 1)
	assert.Equal(t, player.ID, participants[0].PlayerID)
	assert.Equal(t, "Player", participants[0].PlayerName)

	require.NoError(t, env.tournaments.Leave(ctx, tournament.ID, player.ID))

	err = env.tournaments.Leave(ctx, tournament.ID, player.ID)
	assert.Equal(t, league.KindNotFound, league.KindOf(err))
}

func TestTournamentRegistrationClosesAtStart(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	host := env.approvedPlayer(t, "Host")
	early := env.approvedPlayer(t, "Early")
	late := env.approvedPlayer(t, "Late")

	tournament, err := env.tournaments.Create(ctx, "Open", host.ID, env.clock.Now().Add(time.Hour))
	require.NoError(t, err)
	require.NoError(t, env.tournaments.Join(ctx, tournament.ID, early.ID))

	env.clock.Advance(time.Hour + time.Minute)

	err = env.tournaments.Join(ctx, tournament.ID, late.ID)
	assert.Equal(t, league.KindInvalidState, league.KindOf(err))

	err = env.tournaments.Leave(ctx, tournament.ID, early.ID)
	assert.Equal(t, league.KindInvalidState, league.KindOf(err))

	tournaments, err := env.tournaments.ListTournaments(ctx)
	require.NoError(t, err)
	require.Len(t, tournaments, 1)
	assert.Equal(t, league.TournamentActive, tournaments[0].Status)
	assert.Equal(t, 1, tournaments[0].ParticipantCount)
}

func TestTournamentRecordMatch(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	host := env.approvedPlayer(t, "Host")
	alice := env.approvedPlayer(t, "Alice")
	bob := env.approvedPlayer(t, "Bob")
	outsider := env.approvedPlayer(t, "Outsider")

	tournament, err := env.tournaments.Create(ctx, "Open", host.ID, env.clock.Now().Add(time.Hour))
	require.NoError(t, err)
	require.NoError(t, env.tournaments.Join(ctx, tournament.ID, alice.ID))
	require.NoError(t, env.tournaments.Join(ctx, tournament.ID, bob.ID))

	input := RecordMatchInput{
		TournamentID: tournament.ID,
		HostID:       host.ID,
		Player1ID:    alice.ID,
		Player2ID:    bob.ID,
		WinnerID:     alice.ID,
		Notes:        "final",
	}

	// Recording is impossible while registration is still open.
	_, err = env.tournaments.RecordMatch(ctx, input)
	assert.Equal(t, league.KindInvalidState, league.KindOf(err))

	env.clock.Advance(time.Hour + time.Minute)

	_, err = env.tournaments.RecordMatch(ctx, RecordMatchInput{
		TournamentID: tournament.ID, HostID: alice.ID,
		Player1ID: alice.ID, Player2ID: bob.ID, WinnerID: alice.ID,
	})
	assert.Equal(t, league.KindForbidden, league.KindOf(err))

	_, err = env.tournaments.RecordMatch(ctx, RecordMatchInput{
		TournamentID: tournament.ID, HostID: host.ID,
		Player1ID: alice.ID, Player2ID: alice.ID, WinnerID: alice.ID,
	})
	assert.Equal(t, league.KindValidation, league.KindOf(err))

	_, err = env.tournaments.RecordMatch(ctx, RecordMatchInput{
		TournamentID: tournament.ID, HostID: host.ID,
		Player1ID: alice.ID, Player2ID: bob.ID, WinnerID: outsider.ID,
	})
	assert.Equal(t, league.KindValidation, league.KindOf(err))

	_, err = env.tournaments.RecordMatch(ctx, RecordMatchInput{
		TournamentID: tournament.ID, HostID: host.ID,
		Player1ID: alice.ID, Player2ID: outsider.ID, WinnerID: alice.ID,
	})
	assert.Equal(t, league.KindNotParticipant, league.KindOf(err))

	result, err := env.tournaments.RecordMatch(ctx, input)
	require.NoError(t, err)
	assert.Equal(t, 1216.0, result.WinnerRating)
	assert.Equal(t, 1184.0, result.LoserRating)
	assert.Equal(t, league.MatchCompleted, result.Match.Status)
	require.NotNil(t, result.Match.TournamentID)
	assert.Equal(t, tournament.ID, *result.Match.TournamentID)
	assert.Nil(t, result.Match.ExpiresAt)
	require.NotNil(t, result.Match.Notes)
	assert.Equal(t, "final", *result.Match.Notes)

	updatedAlice, err := env.players.GetPlayer(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, 1216.0, updatedAlice.Rating)
	updatedBob, err := env.players.GetPlayer(ctx, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, 1184.0, updatedBob.Rating)
}

func TestTournamentRecordMatchAfterDeadline(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	host := env.approvedPlayer(t, "Host")
	alice := env.approvedPlayer(t, "Alice")
	bob := env.approvedPlayer(t, "Bob")

	tournament, err := env.tournaments.Create(ctx, "Open", host.ID, env.clock.Now().Add(time.Hour))
	require.NoError(t, err)
	require.NoError(t, env.tournaments.Join(ctx, tournament.ID, alice.ID))
	require.NoError(t, env.tournaments.Join(ctx, tournament.ID, bob.ID))

	env.clock.Advance(time.Hour + league.TournamentTimeout + time.Minute)

	_, err = env.tournaments.RecordMatch(ctx, RecordMatchInput{
		TournamentID: tournament.ID, HostID: host.ID,
		Player1ID: alice.ID, Player2ID: bob.ID, WinnerID: alice.ID,
	})
	require.Error(t, err)
	assert.Equal(t, league.KindExpired, league.KindOf(err))

	fetched, err := env.tournamentStore.GetTournament(ctx, tournament.ID)
	require.NoError(t, err)
	assert.Equal(t, league.TournamentExpired, fetched.Status)

	// Ratings never moved.
	updated, err := env.players.GetPlayer(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, league.DefaultRating, updated.Rating)
}

func TestTournamentComplete(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	host := env.approvedPlayer(t, "Host")

	tournament, err := env.tournaments.Create(ctx, "Open", host.ID, env.clock.Now().Add(time.Hour))
	require.NoError(t, err)

	err = env.tournaments.Complete(ctx, tournament.ID)
	assert.Equal(t, league.KindInvalidState, league.KindOf(err))

	env.clock.Advance(2 * time.Hour)

	require.NoError(t, env.tournaments.Complete(ctx, tournament.ID))

	fetched, err := env.tournamentStore.GetTournament(ctx, tournament.ID)
	require.NoError(t, err)
	assert.Equal(t, league.TournamentCompleted, fetched.Status)

	// A completed tournament never expires.
	env.clock.Advance(2 * league.TournamentTimeout)
	require.NoError(t, env.sweeper.SweepTournaments(ctx))
	fetched, err = env.tournamentStore.GetTournament(ctx, tournament.ID)
	require.NoError(t, err)
	assert.Equal(t, league.TournamentCompleted, fetched.Status)
}
