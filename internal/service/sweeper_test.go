package service

import (
	"context"
	"testing"
	"time"

	"github.com/EmptySpace206/PHRatings/internal/league"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSweepAll(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	challenger := env.approvedPlayer(t, "Challenger")
	challenged := env.approvedPlayer(t, "Challenged")
	host := env.approvedPlayer(t, "Host")

	challenge, err := env.challenges.Create(ctx, challenger.ID, challenged.ID, host.ID)
	require.NoError(t, err)

	tournament, err := env.tournaments.Create(ctx, "Open", host.ID, env.clock.Now().Add(time.Hour))
	require.NoError(t, err)

	match := challengeMatch(t, env, challenged.ID, challenger.ID, host.ID)

	env.clock.Advance(league.TournamentTimeout + 2*time.Hour)

	require.NoError(t, env.sweeper.SweepAll(ctx))

	fetchedChallenge, err := env.challengeStore.GetChallenge(ctx, challenge.ID)
	require.NoError(t, err)
	assert.Equal(t, league.ChallengeExpired, fetchedChallenge.Status)

	fetchedMatch, err := env.matchStore.GetMatch(ctx, match.ID)
	require.NoError(t, err)
	assert.Equal(t, league.MatchExpired, fetchedMatch.Status)

	// Start time and play deadline have both elapsed, so one sweep walks the
	// tournament through active and out to expired.
	fetchedTournament, err := env.tournamentStore.GetTournament(ctx, tournament.ID)
	require.NoError(t, err)
	assert.Equal(t, league.TournamentExpired, fetchedTournament.Status)
}

func TestSweepIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	challenger := env.approvedPlayer(t, "Challenger")
	challenged := env.approvedPlayer(t, "Challenged")
	host := env.approvedPlayer(t, "Host")

	challenge, err := env.challenges.Create(ctx, challenger.ID, challenged.ID, host.ID)
	require.NoError(t, err)

	env.clock.Advance(league.ChallengeTimeout + time.Minute)

	require.NoError(t, env.sweeper.SweepAll(ctx))
	require.NoError(t, env.sweeper.SweepAll(ctx))

	fetched, err := env.challengeStore.GetChallenge(ctx, challenge.ID)
	require.NoError(t, err)
	assert.Equal(t, league.ChallengeExpired, fetched.Status)
}

func TestSweepLeavesFreshEntitiesAlone(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	challenger := env.approvedPlayer(t, "Challenger")
	challenged := env.approvedPlayer(t, "Challenged")
	host := env.approvedPlayer(t, "Host")

	challenge, err := env.challenges.Create(ctx, challenger.ID, challenged.ID, host.ID)
	require.NoError(t, err)

	tournament, err := env.tournaments.Create(ctx, "Open", host.ID, env.clock.Now().Add(time.Hour))
	require.NoError(t, err)

	require.NoError(t, env.sweeper.SweepAll(ctx))

	fetchedChallenge, err := env.challengeStore.GetChallenge(ctx, challenge.ID)
	require.NoError(t, err)
	assert.Equal(t, league.ChallengePending, fetchedChallenge.Status)

	fetchedTournament, err := env.tournamentStore.GetTournament(ctx, tournament.ID)
	require.NoError(t, err)
	assert.Equal(t, league.TournamentRegistrationOpen, fetchedTournament.Status)
}
