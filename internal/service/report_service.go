package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-assessment-api/internal/models"
	"github.com/noah-isme/gema-assessment-api/internal/report"
	"github.com/noah-isme/gema-assessment-api/internal/repository"
)

// ReportFile is a rendered workbook ready for download.
type ReportFile struct {
	Filename    string
	ContentType string
	Content     []byte
}

// ReportService compiles graded data into spreadsheet exports.
type ReportService interface {
	AssessmentReport(ctx context.Context, programID, assessmentID string) (ReportFile, error)
	CombinedReport(ctx context.Context) (ReportFile, error)
}

type reportService struct {
	programs    repository.ProgramRepository
	assessments repository.AssessmentRepository
	students    repository.StudentRepository
	submissions repository.SubmissionRepository
	files       *FileResolver
	signedTTL   time.Duration
	logger      zerolog.Logger
	tracer      trace.Tracer
}

// NewReportService constructs the report service. Links inside reports are signed for
// signedTTL so downloaded files stay usable longer than API responses.
func NewReportService(
	programs repository.ProgramRepository,
	assessments repository.AssessmentRepository,
	students repository.StudentRepository,
	submissions repository.SubmissionRepository,
	files *FileResolver,
	signedTTL time.Duration,
	logger zerolog.Logger,
) ReportService {
	if signedTTL <= 0 {
		signedTTL = 24 * time.Hour
	}
	return &reportService{
		programs:    programs,
		assessments: assessments,
		students:    students,
		submissions: submissions,
		files:       files,
		signedTTL:   signedTTL,
		logger:      logger.With().Str("component", "report_service").Logger(),
		tracer:      otel.Tracer("github.com/noah-isme/gema-assessment-api/internal/service/report"),
	}
}

func (s *reportService) AssessmentReport(ctx context.Context, programID, assessmentID string) (ReportFile, error) {
	ctx, span := s.tracer.Start(ctx, "report.assessment")
	span.SetAttributes(
		attribute.String("report.program_id", programID),
		attribute.String("report.assessment_id", assessmentID),
	)
	defer span.End()

	program, err := s.programs.GetByID(ctx, programID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			span.SetStatus(codes.Error, "program_not_found")
			return ReportFile{}, ErrProgramNotFound
		}
		span.RecordError(err)
		return ReportFile{}, err
	}
	assessment, err := s.assessments.GetByID(ctx, assessmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			span.SetStatus(codes.Error, "assessment_not_found")
			return ReportFile{}, ErrAssessmentNotFound
		}
		span.RecordError(err)
		return ReportFile{}, err
	}

	rows, err := s.rows(ctx, program.ID, assessment.ID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "roster_failed")
		return ReportFile{}, err
	}

	content, err := report.AssessmentWorkbook(assessment.Title, program.Name, rows)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "render_failed")
		return ReportFile{}, err
	}

	span.SetAttributes(attribute.Int("report.rows", len(rows)))
	s.logger.Info().
		Str("program_id", program.ID).
		Str("assessment_id", assessment.ID).
		Int("rows", len(rows)).
		Msg("assessment report compiled")

	return ReportFile{
		Filename:    report.AssessmentFilename(program.Name, assessment.Title),
		ContentType: report.ContentType,
		Content:     content,
	}, nil
}

func (s *reportService) CombinedReport(ctx context.Context) (ReportFile, error) {
	ctx, span := s.tracer.Start(ctx, "report.combined")
	defer span.End()

	programs, err := s.programs.List(ctx)
	if err != nil {
		span.RecordError(err)
		return ReportFile{}, err
	}

	sections := make([]report.ProgramSection, 0, len(programs))
	for _, program := range programs {
		assessments, err := s.assessments.List(ctx, repository.AssessmentFilter{ProgramID: program.ID})
		if err != nil {
			span.RecordError(err)
			return ReportFile{}, err
		}

		section := report.ProgramSection{Program: program.Name}
		// oldest assessment first
		for i := len(assessments) - 1; i >= 0; i-- {
			assessment := assessments[i]
			rows, err := s.rows(ctx, program.ID, assessment.ID)
			if err != nil {
				span.RecordError(err)
				return ReportFile{}, err
			}
			section.Assessments = append(section.Assessments, report.AssessmentGroup{Title: assessment.Title, Rows: rows})
		}
		sections = append(sections, section)
	}

	content, err := report.CombinedWorkbook(sections)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "render_failed")
		return ReportFile{}, err
	}

	span.SetAttributes(attribute.Int("report.programs", len(sections)))
	s.logger.Info().Int("programs", len(sections)).Msg("combined report compiled")

	return ReportFile{
		Filename:    report.CombinedFilename,
		ContentType: report.ContentType,
		Content:     content,
	}, nil
}

func (s *reportService) rows(ctx context.Context, programID, assessmentID string) ([]report.Row, error) {
	joined, err := joinRoster(ctx, s.students, s.submissions, programID, assessmentID)
	if err != nil {
		return nil, err
	}

	rows := make([]report.Row, 0, len(joined))
	for _, entry := range joined {
		rows = append(rows, s.row(ctx, entry))
	}
	return rows, nil
}

func (s *reportService) row(ctx context.Context, entry RosterRow) report.Row {
	row := report.Row{
		RollNumber:     entry.Student.RollNumber,
		Name:           entry.Student.Name,
		Email:          entry.Student.Email,
		Specialization: entry.Student.Specialization,
		Year:           entry.Student.Year,
	}
	if entry.Submission == nil {
		return row
	}

	submission := *entry.Submission
	for _, file := range s.files.ResolveWithTTL(ctx, []models.StoredFile(submission.Files), s.signedTTL) {
		row.Files = append(row.Files, report.FileLink{Name: file.Name, URL: file.URL})
	}
	row.TextAnswer = submission.TextAnswer
	row.URLs = append(row.URLs, submission.URLs...)
	row.Marks = submission.Marks
	row.Feedback = submission.Feedback
	return row
}
