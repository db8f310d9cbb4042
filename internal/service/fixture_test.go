package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-assessment-api/internal/dto"
	"github.com/noah-isme/gema-assessment-api/internal/models"
)

var t0 = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

type fixture struct {
	clock       *fixedClock
	programs    *fakeProgramRepo
	students    *fakeStudentRepo
	assessments *fakeAssessmentRepo
	submissions *fakeSubmissionRepo
	storage     *fakeStorage
	files       *FileResolver

	assessmentSvc *assessmentService
	submissionSvc *submissionService
	gradingSvc    GradingService
	reportSvc     ReportService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		clock:       &fixedClock{now: t0.Add(-time.Hour)},
		programs:    newFakeProgramRepo(models.Program{ID: "prog-1", Name: "Informatics"}),
		assessments: newFakeAssessmentRepo(),
		submissions: newFakeSubmissionRepo(),
		storage:     &fakeStorage{},
		students: &fakeStudentRepo{items: []models.Student{
			{ID: "stu-1", Name: "Ani", RollNumber: "001", Email: "ani@example.com", ProgramID: "prog-1", Specialization: "AI", Year: "2"},
			{ID: "stu-2", Name: "Budi", RollNumber: "002", Email: "budi@example.com", ProgramID: "prog-1", Specialization: "AI", Year: "2"},
			{ID: "stu-3", Name: "Citra", RollNumber: "003", Email: "citra@example.com", ProgramID: "prog-1", Specialization: "Data", Year: "2"},
		}},
	}
	f.files = NewFileResolver(f.storage, time.Hour, testLogger())

	opts := UploadOptions{MaxSizeMB: 1, Concurrency: 2}
	f.assessmentSvc = NewAssessmentService(f.assessments, f.programs, f.submissions, f.storage, f.files, testValidator(), opts, testLogger()).(*assessmentService)
	f.assessmentSvc.now = f.clock.Now
	f.submissionSvc = NewSubmissionService(f.assessments, f.submissions, f.students, f.storage, f.files, nil, testValidator(), opts, testLogger()).(*submissionService)
	f.submissionSvc.now = f.clock.Now
	f.gradingSvc = NewGradingService(f.assessments, f.submissions, f.files, nil, testValidator(), testLogger())
	f.reportSvc = NewReportService(f.programs, f.assessments, f.students, f.submissions, f.files, 24*time.Hour, testLogger())

	return f
}

func (f *fixture) createAssessment(t *testing.T, maxMarks *float64) dto.AssessmentResponse {
	t.Helper()
	created, err := f.assessmentSvc.Create(context.Background(), dto.AssessmentCreateRequest{
		ProgramID: "prog-1",
		Title:     "Midterm",
		StartAt:   t0.Format(time.RFC3339),
		Deadline:  t0.Add(time.Hour).Format(time.RFC3339),
		MaxMarks:  maxMarks,
	}, "admin-1")
	require.NoError(t, err)
	return created
}

func (f *fixture) submit(t *testing.T, assessmentID, studentID, text string, files ...FileUpload) dto.SubmissionResponse {
	t.Helper()
	response, err := f.submissionSvc.Submit(context.Background(), studentID, dto.SubmissionCreateRequest{
		AssessmentID: assessmentID,
		TextAnswer:   text,
	}, files)
	require.NoError(t, err)
	return response
}

func floatPtr(v float64) *float64 {
	return &v
}

func stringPtr(v string) *string {
	return &v
}
