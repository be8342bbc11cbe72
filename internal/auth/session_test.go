package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"ytabot/internal/domain"
)

type fakeFlow struct {
	exchangeTok    *oauth2.Token
	exchangeErr    error
	exchangedCodes []string

	refreshTok   *oauth2.Token
	refreshErr   error
	refreshCalls int
}

func (f *fakeFlow) AuthCodeURL(state string, opts ...oauth2.AuthCodeOption) string {
	return "https://accounts.example/consent?state=" + state
}

func (f *fakeFlow) Exchange(_ context.Context, code string, _ ...oauth2.AuthCodeOption) (*oauth2.Token, error) {
	f.exchangedCodes = append(f.exchangedCodes, code)
	if f.exchangeErr != nil {
		return nil, f.exchangeErr
	}
	return f.exchangeTok, nil
}

func (f *fakeFlow) TokenSource(_ context.Context, _ *oauth2.Token) oauth2.TokenSource {
	return tokenSourceFunc(func() (*oauth2.Token, error) {
		f.refreshCalls++
		if f.refreshErr != nil {
			return nil, f.refreshErr
		}
		return f.refreshTok, nil
	})
}

type tokenSourceFunc func() (*oauth2.Token, error)

func (fn tokenSourceFunc) Token() (*oauth2.Token, error) { return fn() }

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

var testNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestManager(t *testing.T, flow *fakeFlow) (*Manager, *FileStore) {
	t.Helper()
	store := newTestStore(t)
	m := NewManager(flow, store, zap.NewNop())
	m.now = fixedClock(testNow)
	return m, store
}

func TestBeginAuthIsIdempotent(t *testing.T) {
	m, _ := newTestManager(t, &fakeFlow{})

	first := m.BeginAuth("u1")
	second := m.BeginAuth("u1")
	assert.Equal(t, first, second)
	assert.Contains(t, first, "state=state-u1")
}

func TestCompleteAuthPersistsCredential(t *testing.T) {
	flow := &fakeFlow{
		exchangeTok: &oauth2.Token{
			AccessToken:  "access",
			RefreshToken: "refresh",
			TokenType:    "Bearer",
			Expiry:       testNow.Add(time.Hour),
		},
	}
	m, store := newTestManager(t, flow)

	cred, err := m.CompleteAuth(context.Background(), "u1", "good-code")
	require.NoError(t, err)
	assert.Equal(t, []string{"good-code"}, flow.exchangedCodes)
	assert.Equal(t, "access", cred.AccessToken)

	stored, err := store.Load("u1")
	require.NoError(t, err)
	assert.Equal(t, "refresh", stored.RefreshToken)
	assert.Equal(t, Scopes, stored.Scopes)
}

func TestCompleteAuthBadCodeLeavesStoreAbsent(t *testing.T) {
	flow := &fakeFlow{exchangeErr: errors.New("invalid_grant")}
	m, store := newTestManager(t, flow)

	_, err := m.CompleteAuth(context.Background(), "u1", "bad-code")
	assert.ErrorIs(t, err, domain.ErrInvalidCode)

	_, err = store.Load("u1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCompleteAuthWorksWithoutPriorBeginAuth(t *testing.T) {
	// The pending state is derived from credential absence, so completing
	// after a process restart (no BeginAuth in this process) must succeed.
	flow := &fakeFlow{
		exchangeTok: &oauth2.Token{AccessToken: "a", RefreshToken: "r", Expiry: testNow.Add(time.Hour)},
	}
	m, _ := newTestManager(t, flow)

	_, err := m.CompleteAuth(context.Background(), "u1", "code")
	require.NoError(t, err)
	assert.True(t, m.Authorized("u1"))
}

func TestValidCredentialEmptyStore(t *testing.T) {
	m, _ := newTestManager(t, &fakeFlow{})

	_, err := m.ValidCredential(context.Background(), "u1")
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestValidCredentialUnexpiredSkipsRefresh(t *testing.T) {
	flow := &fakeFlow{}
	m, store := newTestManager(t, flow)

	require.NoError(t, store.Save(&domain.UserCredential{
		UserID:       "u1",
		AccessToken:  "still-good",
		RefreshToken: "refresh",
		Expiry:       testNow.Add(30 * time.Minute),
	}))

	cred, err := m.ValidCredential(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "still-good", cred.AccessToken)
	assert.Zero(t, flow.refreshCalls)
}

func TestValidCredentialExpiredRefreshesOnceAndPersists(t *testing.T) {
	flow := &fakeFlow{
		refreshTok: &oauth2.Token{
			AccessToken: "renewed",
			TokenType:   "Bearer",
			Expiry:      testNow.Add(time.Hour),
		},
	}
	m, store := newTestManager(t, flow)

	require.NoError(t, store.Save(&domain.UserCredential{
		UserID:       "u1",
		AccessToken:  "stale",
		RefreshToken: "refresh",
		Expiry:       testNow.Add(-time.Minute),
		Scopes:       Scopes,
	}))

	cred, err := m.ValidCredential(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "renewed", cred.AccessToken)
	assert.Equal(t, 1, flow.refreshCalls)

	// The refreshed token omitted the refresh token; the stored one is kept.
	stored, err := store.Load("u1")
	require.NoError(t, err)
	assert.Equal(t, "renewed", stored.AccessToken)
	assert.Equal(t, "refresh", stored.RefreshToken)
}

func TestValidCredentialRefreshFailure(t *testing.T) {
	flow := &fakeFlow{refreshErr: errors.New("invalid_grant: token revoked")}
	m, store := newTestManager(t, flow)

	require.NoError(t, store.Save(&domain.UserCredential{
		UserID:       "u1",
		AccessToken:  "stale",
		RefreshToken: "revoked",
		Expiry:       testNow.Add(-time.Minute),
	}))

	_, err := m.ValidCredential(context.Background(), "u1")
	assert.ErrorIs(t, err, domain.ErrRefreshFailed)
}

func TestRevoke(t *testing.T) {
	m, store := newTestManager(t, &fakeFlow{})

	require.NoError(t, store.Save(&domain.UserCredential{UserID: "u1", AccessToken: "a"}))
	require.NoError(t, m.Revoke("u1"))
	assert.False(t, m.Authorized("u1"))
}
