package simulation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lineupFor(t *testing.T, id, reputation int) Lineup {
	t.Helper()
	l, err := SyntheticLineups{}.StartingLineup(context.Background(), Club{ID: id, Name: "Club", Reputation: reputation})
	require.NoError(t, err)
	return l
}

func TestSyntheticLineups(t *testing.T) {
	l := lineupFor(t, 4, 70)
	require.NoError(t, l.Validate())
	assert.Equal(t, 4, l.ClubID)
	assert.Equal(t, 70, l.Players[0].Rating)
}

func TestLineupValidate(t *testing.T) {
	err := Lineup{ClubID: 1, Players: make([]Player, 10)}.Validate()
	assert.ErrorIs(t, err, ErrInvalidLineup)
}

func TestResultValidate(t *testing.T) {
	var nilResult *Result
	assert.ErrorIs(t, nilResult.Validate(), ErrInvalidResult)
	assert.ErrorIs(t, (&Result{HomeScore: -1}).Validate(), ErrInvalidResult)
	assert.NoError(t, (&Result{HomeScore: 2, AwayScore: 0}).Validate())
}

func TestReputationSimulatorDeterministic(t *testing.T) {
	home, away := lineupFor(t, 1, 80), lineupFor(t, 2, 60)

	run := func() []Result {
		sim := NewReputationSimulator(42)
		out := make([]Result, 0, 20)
		for i := 0; i < 20; i++ {
			res, err := sim.Simulate(context.Background(), home, away)
			require.NoError(t, err)
			require.NoError(t, res.Validate())
			assert.Len(t, res.Events, res.HomeScore+res.AwayScore)
			out = append(out, *res)
		}
		return out
	}

	assert.Equal(t, run(), run())
}

func TestReputationSimulatorRejectsShortLineup(t *testing.T) {
	sim := NewReputationSimulator(1)
	_, err := sim.Simulate(context.Background(), Lineup{ClubID: 1}, lineupFor(t, 2, 50))
	assert.ErrorIs(t, err, ErrInvalidLineup)
}
