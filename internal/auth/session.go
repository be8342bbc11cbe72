package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"ytabot/internal/domain"
)

// Scopes granted during authorization: read-only analytics (including the
// monetary reports), plus channel data for identifier resolution.
var Scopes = []string{
	"https://www.googleapis.com/auth/yt-analytics.readonly",
	"https://www.googleapis.com/auth/yt-analytics-monetary.readonly",
	"https://www.googleapis.com/auth/youtube.readonly",
}

// OAuthFlow is the subset of *oauth2.Config the session manager drives.
type OAuthFlow interface {
	AuthCodeURL(state string, opts ...oauth2.AuthCodeOption) string
	Exchange(ctx context.Context, code string, opts ...oauth2.AuthCodeOption) (*oauth2.Token, error)
	TokenSource(ctx context.Context, t *oauth2.Token) oauth2.TokenSource
}

// NewOAuthConfig builds the Google endpoint config for the installed-app
// (out-of-band) flow shared by the CLI and the bot.
func NewOAuthConfig(clientID, clientSecret string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint:     google.Endpoint,
		RedirectURL:  "urn:ietf:wg:oauth:2.0:oob",
		Scopes:       Scopes,
	}
}

// Manager drives the two-phase authorization-code flow and hands out valid
// credentials, refreshing them silently when expired.
//
// The pending state is derived, not held in memory: a user with no stored
// credential may complete authorization at any time, so the flow survives
// process restarts.
type Manager struct {
	flow   OAuthFlow
	store  Store
	logger *zap.Logger
	now    func() time.Time
}

func NewManager(flow OAuthFlow, store Store, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		flow:   flow,
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// BeginAuth returns the consent URL for the user. Idempotent; stored
// credentials are untouched.
func (m *Manager) BeginAuth(userID string) string {
	url := m.flow.AuthCodeURL("state-"+userID,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"))

	m.logger.Info("authorization started", zap.String("user_id", userID))
	return url
}

// CompleteAuth exchanges the authorization code and persists the resulting
// credential. A rejected code maps to ErrInvalidCode and leaves the store
// unchanged.
func (m *Manager) CompleteAuth(ctx context.Context, userID, code string) (*domain.UserCredential, error) {
	tok, err := m.flow.Exchange(ctx, code)
	if err != nil {
		m.logger.Warn("code exchange failed",
			zap.String("user_id", userID),
			zap.Error(err))
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidCode, err)
	}

	cred := domain.CredentialFromToken(userID, tok, Scopes)
	if err := m.store.Save(cred); err != nil {
		return nil, fmt.Errorf("persist credential: %w", err)
	}

	m.logger.Info("authorization complete",
		zap.String("user_id", userID),
		zap.Time("expiry", cred.Expiry))
	return cred, nil
}

// Authorized reports whether a usable credential exists for the user.
func (m *Manager) Authorized(userID string) bool {
	_, err := m.store.Load(userID)
	return err == nil
}

// ValidCredential loads the stored credential, refreshing and re-persisting
// it when the access token has expired. An unexpired credential is returned
// without any provider round trip.
func (m *Manager) ValidCredential(ctx context.Context, userID string) (*domain.UserCredential, error) {
	cred, err := m.store.Load(userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrUnauthenticated
		}
		return nil, err
	}

	if !cred.Expired(m.now()) {
		return cred, nil
	}

	refreshed, err := m.flow.TokenSource(ctx, cred.Token()).Token()
	if err != nil {
		m.logger.Warn("token refresh failed",
			zap.String("user_id", userID),
			zap.Error(err))
		return nil, fmt.Errorf("%w: %v", domain.ErrRefreshFailed, err)
	}

	next := domain.CredentialFromToken(userID, refreshed, cred.Scopes)
	if next.RefreshToken == "" {
		// The provider may omit the refresh token on renewal.
		next.RefreshToken = cred.RefreshToken
	}
	if err := m.store.Save(next); err != nil {
		return nil, fmt.Errorf("persist refreshed credential: %w", err)
	}

	m.logger.Info("credential refreshed",
		zap.String("user_id", userID),
		zap.Time("expiry", next.Expiry))
	return next, nil
}

// Revoke removes the stored credential so the user can re-authorize.
func (m *Manager) Revoke(userID string) error {
	return m.store.Delete(userID)
}
