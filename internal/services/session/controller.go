// Package session owns the login flow of one browser session and the
// lifetime of the dashboard mounted behind it.
package session

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/LeonardoBeccarini/greenpower/internal/model"
	"github.com/LeonardoBeccarini/greenpower/internal/services/dashboard"
	sensorSimulator "github.com/LeonardoBeccarini/greenpower/internal/sensor-simulator"
	"github.com/LeonardoBeccarini/greenpower/pkg/schedule"
)

// Observer is told about login outcomes and session lifetimes.
type Observer interface {
	LoginAttempted(user string, err error)
	SessionOpened(user string)
	SessionClosed(user string)
}

type nopObserver struct{}

func (nopObserver) LoginAttempted(string, error) {}
func (nopObserver) SessionOpened(string) {}
func (nopObserver) SessionClosed(string) {}

type Config struct {
	LoginLatency time.Duration
	// Credentials defaults to DemoCredentials.
	Credentials *Credentials
	Clock       schedule.Clock
	// Dashboard is the template for every dashboard mounted on login.
	Dashboard dashboard.Config
	// NewSource gives each dashboard its own random source; nil seeds from time.
	NewSource func() sensorSimulator.Source
	Observer  Observer
	Logger    *zap.SugaredLogger
}

func (c Config) withDefaults() (Config, error) {
	if c.LoginLatency < 0 {
		c.LoginLatency = 0
	}
	if c.Credentials == nil {
		creds, err := DemoCredentials()
		if err != nil {
			return c, err
		}
		c.Credentials = creds
	}
	if c.Clock == nil {
		c.Clock = schedule.Real()
	}
	if c.Dashboard.Clock == nil {
		c.Dashboard.Clock = c.Clock
	}
	if c.Observer == nil {
		c.Observer = nopObserver{}
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop().Sugar()
	}
	if c.Dashboard.Logger == nil {
		c.Dashboard.Logger = c.Logger
	}
	return c, nil
}

// Controller is the state machine LoggedOut -> Authenticating -> LoggedIn of
// one browser session.
type Controller struct {
	cfg Config
	log *zap.SugaredLogger

	mu      sync.Mutex
	state   model.SessionState
	session model.Session
	dash    *dashboard.Controller

	attempt uint64
	pending schedule.Timer
	done    func(error)
}

// NewController returns a logged out Controller.
func NewController(cfg Config) (*Controller, error) {
	cfg, err := cfg.withDefaults()
	if err != nil {
		return nil, err
	}
	return &Controller{cfg: cfg, log: cfg.Logger, state: model.StateLoggedOut}, nil
}

// Submit starts a login attempt that resolves after the configured latency and
// reports its outcome to done. It fails immediately with ErrLoginInProgress
// while another attempt is resolving.
func (c *Controller) Submit(username, password string, done func(error)) error {
	if done == nil {
		done = func(error) {}
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case model.StateAuthenticating:
		return ErrLoginInProgress
	case model.StateLoggedIn:
		return ErrAlreadyLoggedIn
	}

	c.state = model.StateAuthenticating
	c.attempt++
	id := c.attempt
	c.done = done
	c.pending = c.cfg.Clock.AfterFunc(c.cfg.LoginLatency, func() {
		c.resolve(id, username, password)
	})
	c.log.Debugw("session: login submitted", "user", username)
	return nil
}

// Login submits credentials and waits for the outcome. If ctx ends first the
// attempt is canceled and ctx.Err() returned.
func (c *Controller) Login(ctx context.Context, username, password string) error {
	res := make(chan error, 1)
	if err := c.Submit(username, password, func(err error) { res <- err }); err != nil {
		return err
	}
	select {
	case err := <-res:
		return err
	case <-ctx.Done():
		c.cancelAttempt()
		return ctx.Err()
	}
}

func (c *Controller) resolve(id uint64, username, password string) {
	ok := c.cfg.Credentials.Check(username, password)

	c.mu.Lock()
	if c.attempt != id || c.state != model.StateAuthenticating {
		c.mu.Unlock()
		return
	}
	done := c.done
	c.done = nil
	c.pending = nil

	if !ok {
		c.state = model.StateLoggedOut
		c.mu.Unlock()

		c.log.Infow("session: login rejected", "user", username)
		c.cfg.Observer.LoginAttempted(username, ErrInvalidCredentials)
		done(ErrInvalidCredentials)
		return
	}

	dcfg := c.cfg.Dashboard
	if c.cfg.NewSource != nil {
		dcfg.Source = c.cfg.NewSource()
	}
	c.state = model.StateLoggedIn
	c.session = model.Session{Authenticated: true, User: username}
	c.dash = dashboard.New(username, dcfg)
	// mounted under mu so a concurrent Logout always sees a live dashboard
	c.dash.Mount()
	c.mu.Unlock()

	c.log.Infow("session: logged in", "user", username)
	c.cfg.Observer.LoginAttempted(username, nil)
	c.cfg.Observer.SessionOpened(username)
	done(nil)
}

// cancelAttempt drops the pending attempt, if any, back to LoggedOut.
func (c *Controller) cancelAttempt() {
	c.mu.Lock()
	if c.state != model.StateAuthenticating {
		c.mu.Unlock()
		return
	}
	done := c.abortLocked()
	c.mu.Unlock()
	done(ErrLoginCanceled)
}

func (c *Controller) abortLocked() func(error) {
	if c.pending != nil {
		c.pending.Stop()
		c.pending = nil
	}
	c.attempt++
	c.state = model.StateLoggedOut
	done := c.done
	c.done = nil
	if done == nil {
		done = func(error) {}
	}
	return done
}

// Logout tears the dashboard down and resets the session. While
// authenticating it cancels the pending attempt. LoggedOut is a no-op.
func (c *Controller) Logout() {
	c.mu.Lock()
	switch c.state {
	case model.StateLoggedOut:
		c.mu.Unlock()
		return
	case model.StateAuthenticating:
		done := c.abortLocked()
		c.mu.Unlock()
		c.log.Infow("session: login canceled by logout")
		done(ErrLoginCanceled)
		return
	}

	user := c.session.User
	dash := c.dash
	c.dash = nil
	c.session = model.Session{}
	c.state = model.StateLoggedOut
	dash.Unmount()
	c.mu.Unlock()

	c.log.Infow("session: logged out", "user", user)
	c.cfg.Observer.SessionClosed(user)
}

func (c *Controller) State() model.SessionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) Session() model.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

// Dashboard returns the mounted dashboard, or ErrNotLoggedIn.
func (c *Controller) Dashboard() (*dashboard.Controller, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != model.StateLoggedIn {
		return nil, ErrNotLoggedIn
	}
	return c.dash, nil
}
