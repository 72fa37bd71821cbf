package risk

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrailingStop_RatchetThenExit(t *testing.T) {
	ts := NewTrailingStop(0.05)
	pos := ts.Open(100, time.Unix(0, 0))
	assert.InDelta(t, 95.0, pos.Stop, 1e-9)
	assert.Equal(t, 100.0, pos.Peak)

	up := ts.Update(pos, 110, 108)
	assert.True(t, up.Ratcheted)
	assert.False(t, up.Exit)
	assert.InDelta(t, 104.5, pos.Stop, 1e-9)
	assert.Equal(t, 110.0, pos.Peak)

	up = ts.Update(pos, 105, 100)
	assert.False(t, up.Ratcheted)
	assert.True(t, up.Exit, "close 100 is below the 104.5 stop")
	assert.InDelta(t, 104.5, up.Stop, 1e-9)
}

func TestTrailingStop_CloseAtStopDoesNotExit(t *testing.T) {
	ts := NewTrailingStop(0.1)
	pos := ts.Open(100, time.Time{})
	up := ts.Update(pos, 100, 90)
	assert.False(t, up.Exit)
	assert.False(t, up.Ratcheted)
}

func TestTrailingStop_UnsetStopIsAssigned(t *testing.T) {
	ts := NewTrailingStop(0.2)
	pos := ts.Open(50, time.Time{})
	pos.StopSet = false
	pos.Stop = 0

	up := ts.Update(pos, 40, 45)
	require.True(t, up.Ratcheted)
	assert.InDelta(t, 40.0, pos.Stop, 1e-9, "peak stays at entry")
}

func TestTrailingStop_NeverDecreases(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	ts := NewTrailingStop(0.03)
	pos := ts.Open(100, time.Time{})

	prev := pos.Stop
	price := 100.0
	for i := 0; i < 500; i++ {
		price *= 1 + (rng.Float64()-0.5)*0.04
		up := ts.Update(pos, price*1.01, price)
		assert.GreaterOrEqual(t, up.Stop, prev, "bar %d", i)
		prev = up.Stop
	}
}
