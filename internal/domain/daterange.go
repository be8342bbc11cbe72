package domain

import (
	"fmt"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// DateRange is an inclusive calendar date interval. Immutable value object;
// construct through NewDateRange or ParseDateRange.
type DateRange struct {
	Start time.Time `json:"start_date"`
	End   time.Time `json:"end_date"`
}

// NewDateRange validates start <= end and truncates both bounds to midnight UTC.
func NewDateRange(start, end time.Time) (DateRange, error) {
	start = truncateDate(start)
	end = truncateDate(end)
	if start.After(end) {
		return DateRange{}, fmt.Errorf("start date %s is after end date %s",
			start.Format(dateLayout), end.Format(dateLayout))
	}
	return DateRange{Start: start, End: end}, nil
}

// ParseDateRange parses "YYYY-MM-DD:YYYY-MM-DD".
func ParseDateRange(s string) (DateRange, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return DateRange{}, fmt.Errorf("invalid range %q, expected start:end", s)
	}
	start, err := time.Parse(dateLayout, parts[0])
	if err != nil {
		return DateRange{}, fmt.Errorf("invalid start date %q: %w", parts[0], err)
	}
	end, err := time.Parse(dateLayout, parts[1])
	if err != nil {
		return DateRange{}, fmt.Errorf("invalid end date %q: %w", parts[1], err)
	}
	return NewDateRange(start, end)
}

// Days returns the number of calendar days covered, inclusive.
func (r DateRange) Days() int {
	return int(r.End.Sub(r.Start).Hours()/24) + 1
}

// StartString returns the start bound in API date format.
func (r DateRange) StartString() string {
	return r.Start.Format(dateLayout)
}

// EndString returns the end bound in API date format.
func (r DateRange) EndString() string {
	return r.End.Format(dateLayout)
}

func (r DateRange) String() string {
	return r.StartString() + ":" + r.EndString()
}

func truncateDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
