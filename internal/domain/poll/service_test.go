package poll

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"poll-registry/internal/platform/clock"
)

func TestServiceUsesClock(t *testing.T) {
	r, _ := newTestRegistry(t)
	clk := clock.NewFake(t0)
	svc := NewService(r, clk)

	id, err := svc.Create("Q?", []string{"A", "B"}, time.Minute, alice)
	require.NoError(t, err)

	p, err := svc.Get(id)
	require.NoError(t, err)
	assert.Equal(t, t0, p.CreatedAt)
	assert.Equal(t, t0.Add(time.Minute), p.EndTime)

	require.NoError(t, svc.Vote(id, 0, bob))
	assert.True(t, svc.HasVoted(id, bob))

	clk.Advance(time.Minute)
	assert.ErrorIs(t, svc.Vote(id, 1, carol), ErrPollExpired)
	p, _ = svc.Get(id)
	assert.True(t, p.Expired(svc.Now()))

	end, err := svc.Extend(id, time.Hour, alice)
	require.NoError(t, err)
	assert.Equal(t, t0.Add(time.Minute+time.Hour), end)
	require.NoError(t, svc.Vote(id, 1, carol))

	res, err := svc.Results(id)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), res.TotalVotes)
	assert.InDelta(t, 50.0, res.Options[0].Percentage, 0.001)

	require.NoError(t, svc.Close(id, owner))
	assert.False(t, svc.IsActive(id))
	assert.Empty(t, svc.Active())

	require.NoError(t, svc.TransferOwnership(bob, owner))
	assert.Equal(t, bob, svc.Owner())

	page, total := svc.List(0, 10)
	assert.Len(t, page, 1)
	assert.Equal(t, uint64(1), total)
}

func TestServiceDefaultsToSystemClock(t *testing.T) {
	r, _ := newTestRegistry(t)
	svc := NewService(r, nil)

	before := time.Now().UTC()
	assert.False(t, svc.Now().Before(before.Add(-time.Second)))
}
