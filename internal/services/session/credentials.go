package session

import (
	"crypto/subtle"
	"fmt"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

const (
	DemoUsername = "admin"
	DemoPassword = "greenhouse123"
)

// Credentials is the single accepted login pair. Only the bcrypt hash of the
// password is kept.
type Credentials struct {
	Username     string
	PasswordHash []byte
}

// NewCredentials hashes password with bcrypt.
func NewCredentials(username, password string, cost int) (*Credentials, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return nil, fmt.Errorf("session: hash password: %w", err)
	}
	return &Credentials{Username: username, PasswordHash: hash}, nil
}

var (
	demoOnce sync.Once
	demo     *Credentials
	demoErr  error
)

// DemoCredentials returns the admin / greenhouse123 pair, hashed once per process.
func DemoCredentials() (*Credentials, error) {
	demoOnce.Do(func() {
		demo, demoErr = NewCredentials(DemoUsername, DemoPassword, bcrypt.DefaultCost)
	})
	return demo, demoErr
}

// Check reports whether username and password match. Both comparisons always run.
func (c *Credentials) Check(username, password string) bool {
	if c == nil {
		return false
	}
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(c.Username)) == 1
	passOK := bcrypt.CompareHashAndPassword(c.PasswordHash, []byte(password)) == nil
	return userOK && passOK
}
