package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-assessment-api/internal/dto"
)

func newCachedFixture(t *testing.T) (*fixture, *miniredis.Miniredis) {
	f, mr, _ := newCachedFixtureWithCache(t)
	return f, mr
}

func newCachedFixtureWithCache(t *testing.T) (*fixture, *miniredis.Miniredis, RosterCache) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	f := newFixture(t)
	cache := NewRosterCache(client, time.Minute, testLogger())
	f.submissionSvc = NewSubmissionService(f.assessments, f.submissions, f.students, f.storage, f.files, cache, testValidator(), UploadOptions{MaxSizeMB: 1, Concurrency: 2}, testLogger()).(*submissionService)
	f.submissionSvc.now = f.clock.Now
	f.gradingSvc = NewGradingService(f.assessments, f.submissions, f.files, cache, testValidator(), testLogger())

	return f, mr, cache
}

func TestRosterCacheServesUntilInvalidated(t *testing.T) {
	f, mr := newCachedFixture(t)
	ctx := context.Background()
	assessment := f.createAssessment(t, nil)
	submission := f.submit(t, assessment.ID, "stu-1", "cached answer")

	first, err := f.submissionSvc.Roster(ctx, assessment.ID)
	require.NoError(t, err)
	require.True(t, mr.Exists(rosterCacheKey(assessment.ID)))

	stored, err := f.submissions.GetByID(ctx, submission.ID)
	require.NoError(t, err)
	stored.TextAnswer = "changed behind the cache"
	f.submissions.items[stored.ID] = stored

	cached, err := f.submissionSvc.Roster(ctx, assessment.ID)
	require.NoError(t, err)
	require.Equal(t, first.Entries[0].Submission.TextAnswer, cached.Entries[0].Submission.TextAnswer)

	_, err = f.gradingSvc.SetMarks(ctx, submission.ID, dto.SetMarksRequest{Marks: floatPtr(5)})
	require.NoError(t, err)
	require.False(t, mr.Exists(rosterCacheKey(assessment.ID)))

	fresh, err := f.submissionSvc.Roster(ctx, assessment.ID)
	require.NoError(t, err)
	require.Equal(t, "changed behind the cache", fresh.Entries[0].Submission.TextAnswer)
	require.Equal(t, 5.0, *fresh.Entries[0].Submission.Marks)
}

func TestRosterCacheInvalidatedBySubmission(t *testing.T) {
	f, mr := newCachedFixture(t)
	ctx := context.Background()
	assessment := f.createAssessment(t, nil)

	empty, err := f.submissionSvc.Roster(ctx, assessment.ID)
	require.NoError(t, err)
	require.Equal(t, 3, empty.NotSubmitted)
	require.True(t, mr.Exists(rosterCacheKey(assessment.ID)))

	f.submit(t, assessment.ID, "stu-3", "new")

	updated, err := f.submissionSvc.Roster(ctx, assessment.ID)
	require.NoError(t, err)
	require.Equal(t, 1, updated.Submitted)
	require.Equal(t, 2, updated.NotSubmitted)
}

func TestRosterCacheResignsLinksOnEveryRead(t *testing.T) {
	f, mr := newCachedFixture(t)
	ctx := context.Background()
	assessment := f.createAssessment(t, nil)
	f.submit(t, assessment.ID, "stu-1", "with file", FileUpload{Name: "proof.png", Data: []byte("png bytes")})

	first, err := f.submissionSvc.Roster(ctx, assessment.ID)
	require.NoError(t, err)
	second, err := f.submissionSvc.Roster(ctx, assessment.ID)
	require.NoError(t, err)

	firstURL := first.Entries[0].Submission.Files[0].URL
	secondURL := second.Entries[0].Submission.Files[0].URL
	require.NotEmpty(t, secondURL)
	require.NotEqual(t, firstURL, secondURL)

	raw, err := mr.Get(rosterCacheKey(assessment.ID))
	require.NoError(t, err)
	require.NotContains(t, raw, "signed.example.com")
}

func TestRosterCacheExpires(t *testing.T) {
	f, mr := newCachedFixture(t)
	assessment := f.createAssessment(t, nil)

	_, err := f.submissionSvc.Roster(context.Background(), assessment.ID)
	require.NoError(t, err)
	require.True(t, mr.Exists(rosterCacheKey(assessment.ID)))

	mr.FastForward(2 * time.Minute)
	require.False(t, mr.Exists(rosterCacheKey(assessment.ID)))
}

func TestNilRedisClientDisablesCache(t *testing.T) {
	cache := NewRosterCache(nil, time.Minute, testLogger())
	cache.Set(context.Background(), "a", []RosterRow{{}})

	rows, ok := cache.Get(context.Background(), "a")
	require.False(t, ok)
	require.Nil(t, rows)
}

func TestRosterCacheInvalidatedByEnrolment(t *testing.T) {
	f, mr, cache := newCachedFixtureWithCache(t)
	ctx := context.Background()
	assessment := f.createAssessment(t, nil)
	students := NewStudentService(f.students, f.programs, f.assessments, cache, testValidator(), testLogger())

	before, err := f.submissionSvc.Roster(ctx, assessment.ID)
	require.NoError(t, err)
	require.Equal(t, 3, before.Total)
	require.True(t, mr.Exists(rosterCacheKey(assessment.ID)))

	enrolled, err := students.Enrol(ctx, dto.StudentCreateRequest{
		Name:       "Dewi",
		RollNumber: "004",
		Email:      "dewi@example.com",
		ProgramID:  "prog-1",
	})
	require.NoError(t, err)
	require.False(t, mr.Exists(rosterCacheKey(assessment.ID)))

	after, err := f.submissionSvc.Roster(ctx, assessment.ID)
	require.NoError(t, err)
	require.Equal(t, 4, after.Total)
	require.Equal(t, 4, after.NotSubmitted)

	seen := 0
	for _, entry := range after.Entries {
		if entry.Student.ID == enrolled.ID {
			seen++
		}
	}
	require.Equal(t, 1, seen)
}
