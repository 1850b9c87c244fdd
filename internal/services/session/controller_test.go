package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/LeonardoBeccarini/greenpower/internal/model"
	sensorSimulator "github.com/LeonardoBeccarini/greenpower/internal/sensor-simulator"
	"github.com/LeonardoBeccarini/greenpower/pkg/schedule"
)

var epoch = time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)

type authEvents struct {
	mu       sync.Mutex
	attempts []error
	opened   []string
	closed   []string
}

func (a *authEvents) LoginAttempted(_ string, err error) {
	a.mu.Lock()
	a.attempts = append(a.attempts, err)
	a.mu.Unlock()
}

func (a *authEvents) SessionOpened(user string) {
	a.mu.Lock()
	a.opened = append(a.opened, user)
	a.mu.Unlock()
}

func (a *authEvents) SessionClosed(user string) {
	a.mu.Lock()
	a.closed = append(a.closed, user)
	a.mu.Unlock()
}

func testCredentials(t *testing.T) *Credentials {
	t.Helper()
	creds, err := NewCredentials(DemoUsername, DemoPassword, bcrypt.MinCost)
	require.NoError(t, err)
	return creds
}

func testConfig(t *testing.T, clk schedule.Clock, obs Observer) Config {
	return Config{
		LoginLatency: time.Second,
		Credentials:  testCredentials(t),
		Clock:        clk,
		NewSource:    func() sensorSimulator.Source { return sensorSimulator.NewSource(7) },
		Observer:     obs,
	}
}

func newManualController(t *testing.T) (*Controller, *schedule.Manual, *authEvents) {
	t.Helper()
	clk := schedule.NewManual(epoch)
	obs := &authEvents{}
	c, err := NewController(testConfig(t, clk, obs))
	require.NoError(t, err)
	t.Cleanup(c.Logout)
	return c, clk, obs
}

type result struct {
	mu     sync.Mutex
	called int
	err    error
}

func (r *result) done(err error) {
	r.mu.Lock()
	r.called++
	r.err = err
	r.mu.Unlock()
}

func TestCredentialsCheck(t *testing.T) {
	creds := testCredentials(t)
	assert.True(t, creds.Check("admin", "greenhouse123"))
	assert.False(t, creds.Check("admin", "greenhouse"))
	assert.False(t, creds.Check("Admin", "greenhouse123"))
	assert.False(t, creds.Check("", ""))
	assert.NotContains(t, string(creds.PasswordHash), DemoPassword)

	var none *Credentials
	assert.False(t, none.Check("admin", "greenhouse123"))
}

func TestSubmitSuccessAfterLatency(t *testing.T) {
	c, clk, obs := newManualController(t)
	var res result

	require.NoError(t, c.Submit("admin", "greenhouse123", res.done))
	assert.Equal(t, model.StateAuthenticating, c.State())
	assert.False(t, c.Session().Authenticated)

	clk.Advance(999 * time.Millisecond)
	assert.Equal(t, model.StateAuthenticating, c.State())
	assert.Zero(t, res.called)

	clk.Advance(time.Millisecond)
	assert.Equal(t, 1, res.called)
	assert.NoError(t, res.err)
	assert.Equal(t, model.StateLoggedIn, c.State())
	assert.Equal(t, model.Session{Authenticated: true, User: "admin"}, c.Session())

	dash, err := c.Dashboard()
	require.NoError(t, err)
	assert.True(t, dash.Mounted())
	assert.Equal(t, "admin", dash.Snapshot().User)

	assert.Equal(t, []error{nil}, obs.attempts)
	assert.Equal(t, []string{"admin"}, obs.opened)
}

func TestSubmitInvalidCredentials(t *testing.T) {
	c, clk, obs := newManualController(t)
	var res result

	require.NoError(t, c.Submit("admin", "wrong", res.done))
	clk.Advance(time.Second)

	assert.ErrorIs(t, res.err, ErrInvalidCredentials)
	assert.Equal(t, model.StateLoggedOut, c.State())
	assert.Equal(t, model.Session{}, c.Session())
	_, err := c.Dashboard()
	assert.ErrorIs(t, err, ErrNotLoggedIn)
	require.Len(t, obs.attempts, 1)
	assert.ErrorIs(t, obs.attempts[0], ErrInvalidCredentials)
	assert.Empty(t, obs.opened)
}

func TestSecondSubmitDuringLatencyIsRefused(t *testing.T) {
	c, clk, _ := newManualController(t)
	var first, second result

	require.NoError(t, c.Submit("admin", "greenhouse123", first.done))
	clk.Advance(500 * time.Millisecond)
	err := c.Submit("admin", "greenhouse123", second.done)
	assert.ErrorIs(t, err, ErrLoginInProgress)

	clk.Advance(500 * time.Millisecond)
	assert.Equal(t, 1, first.called)
	assert.Zero(t, second.called)
	assert.Equal(t, model.StateLoggedIn, c.State())
}

func TestSubmitWhileLoggedIn(t *testing.T) {
	c, clk, _ := newManualController(t)
	require.NoError(t, c.Submit("admin", "greenhouse123", nil))
	clk.Advance(time.Second)

	assert.ErrorIs(t, c.Submit("admin", "greenhouse123", nil), ErrAlreadyLoggedIn)
}

func TestLogoutUnmountsDashboard(t *testing.T) {
	c, clk, obs := newManualController(t)
	require.NoError(t, c.Submit("admin", "greenhouse123", nil))
	clk.Advance(time.Second)
	dash, err := c.Dashboard()
	require.NoError(t, err)

	require.True(t, dash.TriggerIrrigation())
	c.Logout()

	assert.Equal(t, model.StateLoggedOut, c.State())
	assert.Equal(t, model.Session{}, c.Session())
	assert.False(t, dash.Mounted())
	assert.Zero(t, dash.PendingTasks())
	assert.Zero(t, clk.Pending())

	before := len(dash.Notifications())
	clk.Advance(time.Hour)
	assert.Len(t, dash.Notifications(), before)
	assert.Equal(t, []string{"admin"}, obs.closed)
}

func TestLogoutWhenLoggedOutIsNoop(t *testing.T) {
	c, _, obs := newManualController(t)
	c.Logout()
	assert.Equal(t, model.StateLoggedOut, c.State())
	assert.Empty(t, obs.closed)
}

func TestLogoutWhileAuthenticatingCancels(t *testing.T) {
	c, clk, obs := newManualController(t)
	var res result
	require.NoError(t, c.Submit("admin", "greenhouse123", res.done))

	c.Logout()
	assert.Equal(t, model.StateLoggedOut, c.State())
	assert.ErrorIs(t, res.err, ErrLoginCanceled)

	clk.Advance(time.Minute)
	assert.Equal(t, model.StateLoggedOut, c.State())
	assert.Equal(t, 1, res.called)
	assert.Empty(t, obs.attempts)
}

func TestReloginBuildsFreshDashboard(t *testing.T) {
	c, clk, _ := newManualController(t)
	require.NoError(t, c.Submit("admin", "greenhouse123", nil))
	clk.Advance(time.Second)
	first, _ := c.Dashboard()
	first.ToggleLights()

	c.Logout()
	require.NoError(t, c.Submit("admin", "greenhouse123", nil))
	clk.Advance(time.Second)
	second, err := c.Dashboard()
	require.NoError(t, err)

	assert.NotSame(t, first, second)
	assert.False(t, second.Snapshot().Actuators.LightsOn)
}

func TestLoginBlocksUntilResolved(t *testing.T) {
	cfg := testConfig(t, schedule.Real(), nil)
	cfg.LoginLatency = 10 * time.Millisecond
	c, err := NewController(cfg)
	require.NoError(t, err)
	defer c.Logout()

	assert.ErrorIs(t, c.Login(context.Background(), "admin", "nope"), ErrInvalidCredentials)
	require.NoError(t, c.Login(context.Background(), "admin", "greenhouse123"))
	assert.Equal(t, model.StateLoggedIn, c.State())
}

func TestLoginContextCancel(t *testing.T) {
	cfg := testConfig(t, schedule.Real(), nil)
	cfg.LoginLatency = time.Hour
	c, err := NewController(cfg)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, c.Login(ctx, "admin", "greenhouse123"), context.DeadlineExceeded)
	assert.Equal(t, model.StateLoggedOut, c.State())
}
