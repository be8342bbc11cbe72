package domain

import "errors"

// Sentinel errors shared across the credential, auth and analytics layers.
// Callers match them with errors.Is; wrapping layers add context with %w.
var (
	// ErrNotFound signals an absent credential record or an unknown channel.
	ErrNotFound = errors.New("not found")

	// ErrCredentialCorrupt signals a credential record that exists but cannot
	// be decoded. Distinct from ErrNotFound so callers can tell "never
	// authorized" apart from "token file damaged".
	ErrCredentialCorrupt = errors.New("credential record corrupt")

	// ErrInvalidCode signals an authorization code the OAuth provider
	// rejected (expired, malformed or already exchanged).
	ErrInvalidCode = errors.New("invalid authorization code")

	// ErrUnauthenticated signals that no credential exists for the user.
	ErrUnauthenticated = errors.New("user not authenticated")

	// ErrRefreshFailed signals a refresh token the provider no longer
	// accepts. The user must re-run the authorization flow.
	ErrRefreshFailed = errors.New("token refresh failed")

	// ErrQuotaExceeded signals the YouTube API daily quota is exhausted.
	ErrQuotaExceeded = errors.New("api quota exceeded")

	// ErrPermissionDenied signals the credential lacks access to the
	// requested data. Expected for revenue on non-monetized channels.
	ErrPermissionDenied = errors.New("api permission denied")

	// ErrAPIUnavailable signals an upstream failure that is neither a quota
	// nor a permission problem.
	ErrAPIUnavailable = errors.New("api unavailable")
)
