package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LeonardoBeccarini/greenpower/internal/model"
	"github.com/LeonardoBeccarini/greenpower/pkg/schedule"
)

func newTestRegistry(t *testing.T) (*Registry, *schedule.Manual) {
	t.Helper()
	clk := schedule.NewManual(epoch)
	r, err := NewRegistry(testConfig(t, clk, nil))
	require.NoError(t, err)
	t.Cleanup(r.Close)
	return r, clk
}

func TestRegistryIsolatesSessions(t *testing.T) {
	r, clk := newTestRegistry(t)

	a := r.Get("a")
	b := r.Get("b")
	assert.NotSame(t, a, b)
	assert.Same(t, a, r.Get("a"))

	require.NoError(t, a.Submit("admin", "greenhouse123", nil))
	clk.Advance(time.Second)

	assert.Equal(t, model.StateLoggedIn, a.State())
	assert.Equal(t, model.StateLoggedOut, b.State())
	assert.Equal(t, 1, r.LoggedIn())
	assert.Equal(t, 2, r.Len())
}

func TestRegistryLookupDoesNotCreate(t *testing.T) {
	r, _ := newTestRegistry(t)
	_, ok := r.Lookup("missing")
	assert.False(t, ok)
	assert.Zero(t, r.Len())
}

func TestRegistryRemoveLogsOut(t *testing.T) {
	r, clk := newTestRegistry(t)
	c := r.Get("a")
	require.NoError(t, c.Submit("admin", "greenhouse123", nil))
	clk.Advance(time.Second)
	dash, err := c.Dashboard()
	require.NoError(t, err)

	r.Remove("a")
	assert.False(t, dash.Mounted())
	assert.Zero(t, r.Len())
}

func TestRegistrySweepKeepsLoggedIn(t *testing.T) {
	r, clk := newTestRegistry(t)
	r.Get("idle")
	in := r.Get("in")
	require.NoError(t, in.Submit("admin", "greenhouse123", nil))
	clk.Advance(time.Second)

	clk.Advance(2 * time.Hour)
	assert.Equal(t, 1, r.Sweep(time.Hour))
	_, ok := r.Lookup("in")
	assert.True(t, ok)
	_, ok = r.Lookup("idle")
	assert.False(t, ok)
}

func TestRegistryCloseLogsEveryoneOut(t *testing.T) {
	r, clk := newTestRegistry(t)
	for _, id := range []string{"a", "b"} {
		require.NoError(t, r.Get(id).Submit("admin", "greenhouse123", nil))
	}
	clk.Advance(time.Second)
	require.Equal(t, 2, r.LoggedIn())

	r.Close()
	assert.Zero(t, r.Len())
	assert.Zero(t, clk.Pending())
}
