package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestResolveStatusBoundaries(t *testing.T) {
	start := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	deadline := start.Add(time.Hour)

	cases := []struct {
		name string
		now  time.Time
		want AssessmentStatus
	}{
		{name: "before start", now: start.Add(-time.Nanosecond), want: StatusUpcoming},
		{name: "at start", now: start, want: StatusActive},
		{name: "inside window", now: start.Add(30 * time.Minute), want: StatusActive},
		{name: "at deadline", now: deadline, want: StatusActive},
		{name: "after deadline", now: deadline.Add(time.Nanosecond), want: StatusClosed},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, ResolveStatus(start, deadline, tc.now))
		})
	}
}

func TestResolveStatusClosedIffAfterDeadline(t *testing.T) {
	start := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	deadline := start.Add(2 * time.Hour)

	for offset := -3 * time.Hour; offset <= 3*time.Hour; offset += 7 * time.Minute {
		now := start.Add(offset)
		status := ResolveStatus(start, deadline, now)
		require.Contains(t, []AssessmentStatus{StatusUpcoming, StatusActive, StatusClosed}, status)
		require.Equal(t, now.After(deadline), status == StatusClosed, "offset %s", offset)
	}
}

func TestResolveStatusNormalisesZones(t *testing.T) {
	jakarta := time.FixedZone("WIB", 7*60*60)
	start := time.Date(2025, 3, 1, 16, 0, 0, 0, jakarta) // 09:00 UTC
	deadline := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	require.Equal(t, StatusActive, ResolveStatus(start, deadline, time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)))
	require.Equal(t, StatusUpcoming, ResolveStatus(start, deadline, time.Date(2025, 3, 1, 15, 59, 0, 0, jakarta)))
}

func TestParseInstantWithoutZoneUsesReference(t *testing.T) {
	parsed, err := ParseInstant("2025-03-01T09:00:00")
	require.NoError(t, err)
	require.Equal(t, time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC), parsed)

	withZone, err := ParseInstant("2025-03-01T16:00:00+07:00")
	require.NoError(t, err)
	require.True(t, parsed.Equal(withZone))
	require.Equal(t, time.UTC, withZone.Location())

	_, err = ParseInstant("next tuesday")
	require.Error(t, err)
}

func TestAssessmentExceedsMaxMarks(t *testing.T) {
	ceiling := 10.0
	bounded := Assessment{MaxMarks: &ceiling}
	require.False(t, bounded.ExceedsMaxMarks(10))
	require.True(t, bounded.ExceedsMaxMarks(10.5))

	unbounded := Assessment{}
	require.False(t, unbounded.ExceedsMaxMarks(1e9))
}
