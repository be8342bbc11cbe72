package youtube

import (
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/api/googleapi"

	"ytabot/internal/domain"
)

// classifyAPIError maps a Google API failure onto the domain error taxonomy.
// Quota exhaustion and permission problems arrive as 403s distinguished only
// by the error reason.
func classifyAPIError(op string, err error) error {
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return fmt.Errorf("%s: %w: %v", op, domain.ErrAPIUnavailable, err)
	}

	switch gerr.Code {
	case http.StatusForbidden:
		for _, e := range gerr.Errors {
			if e.Reason == "quotaExceeded" || e.Reason == "dailyLimitExceeded" ||
				e.Reason == "rateLimitExceeded" {
				return fmt.Errorf("%s: %w", op, domain.ErrQuotaExceeded)
			}
		}
		return fmt.Errorf("%s: %w", op, domain.ErrPermissionDenied)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%s: %w", op, domain.ErrQuotaExceeded)
	case http.StatusNotFound:
		return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	default:
		return fmt.Errorf("%s: %w: %v", op, domain.ErrAPIUnavailable, gerr)
	}
}
