// Package auth reads the signed-in user's identity from a Firebase ID token.
// Sessions are managed elsewhere; this package only reads what it is given.
package auth

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrNoToken is returned when neither the environment nor the token file
	// provides a token.
	ErrNoToken = errors.New("no identity token configured")
	// ErrTokenExpired is returned for tokens whose exp claim has passed.
	ErrTokenExpired = errors.New("identity token expired")
)

// Identity is the current user as seen by the client.
type Identity struct {
	UserID    string
	Email     string
	ExpiresAt time.Time
}

// Provider supplies the bearer token and the identity it encodes.
type Provider interface {
	Token() (string, error)
	Identity() (Identity, error)
}

type claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// TokenProvider reads a token from a fixed string or a file. The file is
// re-read when it changes on disk so a refreshed token is picked up without
// restarting.
type TokenProvider struct {
	static string
	path   string
	now    func() time.Time

	mu      sync.Mutex
	modTime time.Time
	token   string
}

// NewTokenProvider prefers static when set, else reads path.
func NewTokenProvider(static, path string) *TokenProvider {
	return &TokenProvider{
		static: strings.TrimSpace(static),
		path:   strings.TrimSpace(path),
		now:    time.Now,
	}
}

// Token returns the raw token.
func (p *TokenProvider) Token() (string, error) {
	if p.static != "" {
		return p.static, nil
	}
	if p.path == "" {
		return "", ErrNoToken
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	info, err := os.Stat(p.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", ErrNoToken
		}
		return "", fmt.Errorf("stat token file: %w", err)
	}
	if p.token != "" && info.ModTime().Equal(p.modTime) {
		return p.token, nil
	}
	raw, err := os.ReadFile(p.path)
	if err != nil {
		return "", fmt.Errorf("read token file: %w", err)
	}
	token := strings.TrimSpace(string(raw))
	if token == "" {
		return "", ErrNoToken
	}
	p.token = token
	p.modTime = info.ModTime()
	return token, nil
}

// Identity decodes the token's claims without verifying the signature; the
// backend verifies it on every request.
func (p *TokenProvider) Identity() (Identity, error) {
	token, err := p.Token()
	if err != nil {
		return Identity{}, err
	}
	return parseIdentity(token, p.now())
}

func parseIdentity(token string, now time.Time) (Identity, error) {
	var c claims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &c); err != nil {
		return Identity{}, fmt.Errorf("parse identity token: %w", err)
	}
	id := Identity{UserID: c.UserID, Email: c.Email}
	if id.UserID == "" {
		id.UserID = c.Subject
	}
	if id.UserID == "" {
		return Identity{}, fmt.Errorf("parse identity token: missing user id")
	}
	if c.ExpiresAt != nil {
		id.ExpiresAt = c.ExpiresAt.Time
		if !now.Before(id.ExpiresAt) {
			return id, ErrTokenExpired
		}
	}
	return id, nil
}
