package dto

// SetMarksRequest grades a single submission.
type SetMarksRequest struct {
	Marks    *float64 `json:"marks" validate:"required"`
	Feedback *string  `json:"feedback" validate:"omitempty,max=5000"`
}

// BulkMarksItem is one entry of a bulk grading request.
type BulkMarksItem struct {
	SubmissionID string   `json:"submission_id"`
	Marks        *float64 `json:"marks"`
	Feedback     *string  `json:"feedback"`
}

// BulkSetMarksRequest grades several submissions of one assessment.
type BulkSetMarksRequest struct {
	AssessmentID string          `json:"assessment_id" validate:"required"`
	Items        []BulkMarksItem `json:"items" validate:"required,min=1,max=500"`
}

// Bulk grading skip reasons.
const (
	SkipReasonSubmissionNotFound = "submission_not_found"
	SkipReasonExceedsMaxMarks    = "exceeds_max_marks"
	SkipReasonInvalidMarks       = "invalid_marks"
	SkipReasonUpdateFailed       = "update_failed"
)

// BulkSkippedItem reports an item that was not applied.
type BulkSkippedItem struct {
	SubmissionID string `json:"submission_id"`
	Reason       string `json:"reason"`
	Message      string `json:"message"`
}

// BulkSetMarksResponse summarises a bulk grading run.
type BulkSetMarksResponse struct {
	Applied int               `json:"applied"`
	Skipped []BulkSkippedItem `json:"skipped"`
}

// PublishResponse reports how many submissions were newly published.
type PublishResponse struct {
	AssessmentID string `json:"assessment_id"`
	Published    int64  `json:"published"`
}
