package domain

import (
	"time"

	"golang.org/x/oauth2"
)

// UserCredential is the stored OAuth grant for one user. One record per
// UserID, mutated only on code exchange and on refresh. Stored as structured
// JSON so the on-disk record can be inspected and migrated.
type UserCredential struct {
	UserID       string    `json:"user_id"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	TokenType    string    `json:"token_type,omitempty"`
	Expiry       time.Time `json:"expiry"`
	Scopes       []string  `json:"scopes,omitempty"`
}

// Expired reports whether the access token lifetime has passed at now.
// A zero Expiry means the provider issued a non-expiring token.
func (c *UserCredential) Expired(now time.Time) bool {
	if c.Expiry.IsZero() {
		return false
	}
	return !now.Before(c.Expiry)
}

// Token converts the credential into the oauth2 representation used to build
// API clients and token sources.
func (c *UserCredential) Token() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  c.AccessToken,
		RefreshToken: c.RefreshToken,
		TokenType:    c.TokenType,
		Expiry:       c.Expiry,
	}
}

// CredentialFromToken builds a UserCredential from a freshly issued token.
// A refreshed token may omit the refresh token; the caller keeps the old one.
func CredentialFromToken(userID string, tok *oauth2.Token, scopes []string) *UserCredential {
	return &UserCredential{
		UserID:       userID,
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		TokenType:    tok.TokenType,
		Expiry:       tok.Expiry,
		Scopes:       scopes,
	}
}
