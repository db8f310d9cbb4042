package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-assessment-api/internal/models"
	"github.com/noah-isme/gema-assessment-api/internal/repository"
	"github.com/noah-isme/gema-assessment-api/pkg/blob"
)

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

func testValidator() *validator.Validate {
	return validator.New(validator.WithRequiredStructEnabled())
}

type fixedClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fixedClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

var idCounter struct {
	sync.Mutex
	n int
}

func nextID(prefix string) string {
	idCounter.Lock()
	defer idCounter.Unlock()
	idCounter.n++
	return fmt.Sprintf("%s-%d", prefix, idCounter.n)
}

type fakeProgramRepo struct {
	items map[string]models.Program
}

func newFakeProgramRepo(programs ...models.Program) *fakeProgramRepo {
	repo := &fakeProgramRepo{items: map[string]models.Program{}}
	for _, program := range programs {
		repo.items[program.ID] = program
	}
	return repo
}

func (f *fakeProgramRepo) List(ctx context.Context) ([]models.Program, error) {
	result := make([]models.Program, 0, len(f.items))
	for _, item := range f.items {
		result = append(result, item)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (f *fakeProgramRepo) GetByID(ctx context.Context, id string) (models.Program, error) {
	item, ok := f.items[id]
	if !ok {
		return models.Program{}, gorm.ErrRecordNotFound
	}
	return item, nil
}

func (f *fakeProgramRepo) GetByName(ctx context.Context, name string) (models.Program, error) {
	for _, item := range f.items {
		if item.Name == name {
			return item, nil
		}
	}
	return models.Program{}, gorm.ErrRecordNotFound
}

func (f *fakeProgramRepo) Create(ctx context.Context, program *models.Program) error {
	if _, err := f.GetByName(ctx, program.Name); err == nil {
		return gorm.ErrDuplicatedKey
	}
	if program.ID == "" {
		program.ID = nextID("program")
	}
	f.items[program.ID] = *program
	return nil
}

func (f *fakeProgramRepo) Update(ctx context.Context, program *models.Program) error {
	f.items[program.ID] = *program
	return nil
}

func (f *fakeProgramRepo) Delete(ctx context.Context, id string) error {
	if _, ok := f.items[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(f.items, id)
	return nil
}

type fakeStudentRepo struct {
	items []models.Student
}

func (f *fakeStudentRepo) GetByID(ctx context.Context, id string) (models.Student, error) {
	for _, item := range f.items {
		if item.ID == id {
			return item, nil
		}
	}
	return models.Student{}, gorm.ErrRecordNotFound
}

func (f *fakeStudentRepo) GetByEmail(ctx context.Context, email string) (models.Student, error) {
	for _, item := range f.items {
		if strings.EqualFold(item.Email, email) {
			return item, nil
		}
	}
	return models.Student{}, gorm.ErrRecordNotFound
}

func (f *fakeStudentRepo) ListByProgram(ctx context.Context, programID string) ([]models.Student, error) {
	var result []models.Student
	for _, item := range f.items {
		if item.ProgramID == programID {
			result = append(result, item)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].RollNumber < result[j].RollNumber })
	return result, nil
}

func (f *fakeStudentRepo) Create(ctx context.Context, student *models.Student) error {
	if _, err := f.GetByEmail(ctx, student.Email); err == nil {
		return gorm.ErrDuplicatedKey
	}
	if student.ID == "" {
		student.ID = nextID("student")
	}
	f.items = append(f.items, *student)
	return nil
}

type fakeAssessmentRepo struct {
	mu    sync.Mutex
	items map[string]models.Assessment
}

func newFakeAssessmentRepo(assessments ...models.Assessment) *fakeAssessmentRepo {
	repo := &fakeAssessmentRepo{items: map[string]models.Assessment{}}
	for _, assessment := range assessments {
		repo.items[assessment.ID] = assessment
	}
	return repo
}

func (f *fakeAssessmentRepo) List(ctx context.Context, filter repository.AssessmentFilter) ([]models.Assessment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []models.Assessment
	for _, item := range f.items {
		if filter.ProgramID == "" || item.ProgramID == filter.ProgramID {
			result = append(result, item)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}

func (f *fakeAssessmentRepo) GetByID(ctx context.Context, id string) (models.Assessment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	item, ok := f.items[id]
	if !ok {
		return models.Assessment{}, gorm.ErrRecordNotFound
	}
	item.AttachedFiles = append([]models.StoredFile(nil), item.AttachedFiles...)
	return item, nil
}

func (f *fakeAssessmentRepo) Create(ctx context.Context, assessment *models.Assessment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if assessment.ID == "" {
		assessment.ID = nextID("assessment")
	}
	f.items[assessment.ID] = *assessment
	return nil
}

func (f *fakeAssessmentRepo) Update(ctx context.Context, assessment *models.Assessment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	current, ok := f.items[assessment.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if current.IsLocked {
		return repository.ErrLocked
	}
	current.Title = assessment.Title
	current.Description = assessment.Description
	current.StartAt = assessment.StartAt
	current.Deadline = assessment.Deadline
	current.MaxMarks = assessment.MaxMarks
	f.items[assessment.ID] = current
	return nil
}

func (f *fakeAssessmentRepo) SetLocked(ctx context.Context, id string, locked bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	current, ok := f.items[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	current.IsLocked = locked
	f.items[id] = current
	return nil
}

func (f *fakeAssessmentRepo) AppendFiles(ctx context.Context, id string, files []models.StoredFile) (models.Assessment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	current, ok := f.items[id]
	if !ok {
		return models.Assessment{}, gorm.ErrRecordNotFound
	}
	if current.IsLocked {
		return models.Assessment{}, repository.ErrLocked
	}
	merged := append([]models.StoredFile(nil), current.AttachedFiles...)
	current.AttachedFiles = append(merged, files...)
	f.items[id] = current
	return current, nil
}

func (f *fakeAssessmentRepo) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	current, ok := f.items[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if current.IsLocked {
		return repository.ErrLocked
	}
	delete(f.items, id)
	return nil
}

type fakeSubmissionRepo struct {
	mu          sync.Mutex
	items       map[string]models.Submission
	createCalls int
	failUpdate  map[string]error
	failDelete  error
}

func newFakeSubmissionRepo(submissions ...models.Submission) *fakeSubmissionRepo {
	repo := &fakeSubmissionRepo{items: map[string]models.Submission{}, failUpdate: map[string]error{}}
	for _, submission := range submissions {
		repo.items[submission.ID] = submission
	}
	return repo
}

func (f *fakeSubmissionRepo) GetByID(ctx context.Context, id string) (models.Submission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	item, ok := f.items[id]
	if !ok {
		return models.Submission{}, gorm.ErrRecordNotFound
	}
	return item, nil
}

func (f *fakeSubmissionRepo) FindByAssessmentAndStudent(ctx context.Context, assessmentID, studentID string) (models.Submission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, item := range f.items {
		if item.AssessmentID == assessmentID && item.StudentID == studentID {
			return item, nil
		}
	}
	return models.Submission{}, gorm.ErrRecordNotFound
}

func (f *fakeSubmissionRepo) ListByAssessment(ctx context.Context, assessmentID string) ([]models.Submission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []models.Submission
	for _, item := range f.items {
		if item.AssessmentID == assessmentID {
			result = append(result, item)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].SubmittedAt.Before(result[j].SubmittedAt) })
	return result, nil
}

func (f *fakeSubmissionRepo) ListByStudent(ctx context.Context, studentID string) ([]models.Submission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []models.Submission
	for _, item := range f.items {
		if item.StudentID == studentID {
			result = append(result, item)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].SubmittedAt.After(result[j].SubmittedAt) })
	return result, nil
}

func (f *fakeSubmissionRepo) Create(ctx context.Context, submission *models.Submission) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++
	for _, item := range f.items {
		if item.AssessmentID == submission.AssessmentID && item.StudentID == submission.StudentID {
			return gorm.ErrDuplicatedKey
		}
	}
	if submission.ID == "" {
		submission.ID = nextID("submission")
	}
	f.items[submission.ID] = *submission
	return nil
}

func (f *fakeSubmissionRepo) Update(ctx context.Context, submission *models.Submission) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	current, ok := f.items[submission.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	current.Files = submission.Files
	current.URLs = submission.URLs
	current.TextAnswer = submission.TextAnswer
	current.SubmittedAt = submission.SubmittedAt
	current.IsLate = submission.IsLate
	f.items[submission.ID] = current
	return nil
}

func (f *fakeSubmissionRepo) UpdateMarks(ctx context.Context, id string, marks float64, feedback string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failUpdate[id]; err != nil {
		return err
	}
	current, ok := f.items[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	current.Marks = &marks
	current.Feedback = &feedback
	f.items[id] = current
	return nil
}

func (f *fakeSubmissionRepo) PublishByAssessment(ctx context.Context, assessmentID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	for id, item := range f.items {
		if item.AssessmentID == assessmentID && !item.MarksPublished {
			item.MarksPublished = true
			f.items[id] = item
			count++
		}
	}
	return count, nil
}

func (f *fakeSubmissionRepo) DeleteByAssessment(ctx context.Context, assessmentID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failDelete != nil {
		return f.failDelete
	}
	for id, item := range f.items {
		if item.AssessmentID == assessmentID {
			delete(f.items, id)
		}
	}
	return nil
}

func (f *fakeSubmissionRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.items)
}

type fakeStorage struct {
	mu         sync.Mutex
	uploads    []string
	failOn     string
	public     bool
	signErr    error
	signCalls  int
	lastTTL    time.Duration
	uploadWait time.Duration
}

func (f *fakeStorage) Upload(ctx context.Context, data []byte, destination, contentType string) (blob.UploadResult, error) {
	if f.uploadWait > 0 {
		time.Sleep(f.uploadWait)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failOn != "" && strings.Contains(string(data), f.failOn) {
		return blob.UploadResult{}, errors.New("storage unavailable")
	}
	f.uploads = append(f.uploads, destination)
	result := blob.UploadResult{Path: destination}
	if f.public {
		result.PublicURL = "https://cdn.example.com/" + destination
	}
	return result, nil
}

func (f *fakeStorage) SignedURL(ctx context.Context, path string, ttl time.Duration) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.signCalls++
	f.lastTTL = ttl
	if f.signErr != nil {
		return "", f.signErr
	}
	return fmt.Sprintf("https://signed.example.com/%s?n=%d", path, f.signCalls), nil
}

func (f *fakeStorage) uploaded() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.uploads...)
}
