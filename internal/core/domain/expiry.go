package domain

import (
	"math"
	"strings"
	"time"
)

type RequirementStatus string

const (
	RequirementPending      RequirementStatus = "pending"
	RequirementValid        RequirementStatus = "valid"
	RequirementExpiringSoon RequirementStatus = "expiring_soon"
	RequirementExpired      RequirementStatus = "expired"
)

// ExpiringSoonDays is the inclusive upper bound of the expiring_soon band.
const ExpiringSoonDays = 30

// ClassifyExpiry maps an optional expiry to a requirement status and the
// whole days remaining, floored. A nil expiry is pending with no day count.
func ClassifyExpiry(now time.Time, expiry *time.Time) (RequirementStatus, *int) {
	if expiry == nil || expiry.IsZero() {
		return RequirementPending, nil
	}
	days := int(math.Floor(expiry.UTC().Sub(now.UTC()).Hours() / 24))
	switch {
	case days < 0:
		return RequirementExpired, &days
	case days <= ExpiringSoonDays:
		return RequirementExpiringSoon, &days
	default:
		return RequirementValid, &days
	}
}

// ClassifyExpiryValue classifies a raw timestamp. Unparseable input is
// pending, never an error.
func ClassifyExpiryValue(now time.Time, raw string) (RequirementStatus, *int) {
	if strings.TrimSpace(raw) == "" {
		return RequirementPending, nil
	}
	t, err := ParseTimestamp(raw)
	if err != nil {
		return RequirementPending, nil
	}
	return ClassifyExpiry(now, &t)
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
	time.DateOnly,
}

// ParseTimestamp reads an ISO-8601 timestamp or date. Offsets are honoured
// (both Z and +00:00), naive values are taken as UTC, and the result is UTC.
func ParseTimestamp(raw string) (time.Time, error) {
	value := strings.TrimSpace(raw)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, NewError(ErrInvalidInput, "parse timestamp", "unrecognised timestamp "+raw)
}
