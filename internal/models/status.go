package models

import (
	"fmt"
	"strings"
	"time"
)

// AssessmentStatus is the lifecycle phase of an assessment derived from wall-clock time.
type AssessmentStatus string

const (
	// StatusUpcoming means the submission window has not opened yet.
	StatusUpcoming AssessmentStatus = "Upcoming"
	// StatusActive means now lies within [startAt, deadline].
	StatusActive AssessmentStatus = "Active"
	// StatusClosed means the deadline has passed.
	StatusClosed AssessmentStatus = "Closed"
)

// ReferenceZone is the single zone all instants are normalised to before comparison.
var ReferenceZone = time.UTC

// ResolveStatus derives the phase of a [startAt, deadline] window at the given instant.
// The result is never persisted.
func ResolveStatus(startAt, deadline, now time.Time) AssessmentStatus {
	start := startAt.In(ReferenceZone)
	end := deadline.In(ReferenceZone)
	current := now.In(ReferenceZone)

	switch {
	case current.Before(start):
		return StatusUpcoming
	case current.After(end):
		return StatusClosed
	default:
		return StatusActive
	}
}

var instantLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
}

// ParseInstant parses an ISO-8601 timestamp. Values without zone information are
// interpreted in ReferenceZone.
func ParseInstant(value string) (time.Time, error) {
	trimmed := strings.TrimSpace(value)
	for _, layout := range instantLayouts {
		parsed, err := time.ParseInLocation(layout, trimmed, ReferenceZone)
		if err == nil {
			return parsed.In(ReferenceZone), nil
		}
	}

	return time.Time{}, fmt.Errorf("invalid timestamp %q", value)
}
