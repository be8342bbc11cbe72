package youtube

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/api/googleapi"

	"ytabot/internal/domain"
)

func apiError(code int, reasons ...string) *googleapi.Error {
	gerr := &googleapi.Error{Code: code}
	for _, r := range reasons {
		gerr.Errors = append(gerr.Errors, googleapi.ErrorItem{Reason: r})
	}
	return gerr
}

func TestClassifyAPIError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want error
	}{
		{"quota exceeded", apiError(403, "quotaExceeded"), domain.ErrQuotaExceeded},
		{"daily limit", apiError(403, "dailyLimitExceeded"), domain.ErrQuotaExceeded},
		{"rate limit", apiError(403, "rateLimitExceeded"), domain.ErrQuotaExceeded},
		{"forbidden without quota reason", apiError(403, "insufficientPermissions"), domain.ErrPermissionDenied},
		{"forbidden without reasons", apiError(403), domain.ErrPermissionDenied},
		{"too many requests", apiError(429), domain.ErrQuotaExceeded},
		{"not found", apiError(404), domain.ErrNotFound},
		{"server error", apiError(500), domain.ErrAPIUnavailable},
		{"transport error", errors.New("connection refused"), domain.ErrAPIUnavailable},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := classifyAPIError("query analytics", tc.err)
			assert.ErrorIs(t, got, tc.want)
			assert.Contains(t, got.Error(), "query analytics")
		})
	}
}

func TestRowHelpers(t *testing.T) {
	row := []interface{}{"US", 1234.0, 56.78}

	assert.Equal(t, "US", rowString(row, 0))
	assert.Equal(t, int64(1234), rowInt(row, 1))
	assert.InDelta(t, 56.78, rowFloat(row, 2), 0.0001)

	// Out-of-range and mistyped cells yield zero values, not panics.
	assert.Equal(t, "", rowString(row, 5))
	assert.Equal(t, int64(0), rowInt(row, 5))
	assert.Equal(t, "", rowString(row, 1))
	assert.Equal(t, int64(0), rowInt(row, 0))
}
