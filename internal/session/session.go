// Package session exposes the signed-in user identity persisted by the auth
// collaborator. It never talks to the auth backend itself.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/daypact/daypact/internal/clock"
	"github.com/daypact/daypact/internal/errs"
	"github.com/daypact/daypact/internal/storage"
)

const sessionKey = "session"

type tokenFile struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Manager reads and writes the persisted session token.
type Manager struct {
	kv    storage.Store
	clock clock.Clock
}

// NewManager constructs a session manager over local storage.
func NewManager(kv storage.Store, clk clock.Clock) *Manager {
	return &Manager{kv: kv, clock: clk}
}

// Save persists a freshly issued access token.
func (m *Manager) Save(ctx context.Context, accessToken string, expiresAt time.Time) error {
	raw, err := json.Marshal(tokenFile{AccessToken: accessToken, ExpiresAt: expiresAt})
	if err != nil {
		return err
	}
	return m.kv.Set(ctx, sessionKey, raw)
}

// Clear signs out by dropping the stored token.
func (m *Manager) Clear(ctx context.Context) error {
	return m.kv.Delete(ctx, sessionKey)
}

// CurrentUserID returns the signed-in user id, or errs.ErrSignedOut when
// there is no valid session. The JWT signature is the server's concern; the
// client only reads its own subject claim.
func (m *Manager) CurrentUserID(ctx context.Context) (string, error) {
	raw, err := m.kv.Get(ctx, sessionKey)
	if errors.Is(err, errs.ErrNotFound) {
		return "", errs.ErrSignedOut
	}
	if err != nil {
		return "", err
	}

	var tf tokenFile
	if err := json.Unmarshal(raw, &tf); err != nil {
		return "", errs.ErrSignedOut
	}
	if tf.AccessToken == "" || m.clock.Now().After(tf.ExpiresAt) {
		return "", errs.ErrSignedOut
	}

	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(tf.AccessToken, &claims); err != nil {
		return "", errs.ErrSignedOut
	}
	if claims.Subject == "" {
		return "", errs.ErrSignedOut
	}
	return claims.Subject, nil
}
