// Package report renders assessment results into Excel workbooks.
package report

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

const (
	// Placeholder fills cells that have no value.
	Placeholder = "—"
	// ContentType is the MIME type of generated workbooks.
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	// CombinedFilename is the download name of the all-programs workbook.
	CombinedFilename = "all_assessments_report.xlsx"

	defaultSheet = "Sheet1"
	emptySheet   = "No Data"
	sheetSuffix  = " - Assessment"
)

type column struct {
	title string
	width float64
}

var columns = []column{
	{"Roll No", 15},
	{"Name", 25},
	{"Email", 35},
	{"Specialization", 20},
	{"Year/Sem", 12},
	{"Submission Files", 40},
	{"Text Answer", 40},
	{"URLs Submitted", 40},
	{"Marks", 10},
	{"Feedback", 30},
}

// FileLink is a named download link listed in the files column.
type FileLink struct {
	Name string
	URL  string
}

// Row is one enrolled student and their submission, if any.
type Row struct {
	RollNumber     string
	Name           string
	Email          string
	Specialization string
	Year           string
	Files          []FileLink
	TextAnswer     string
	URLs           []string
	Marks          *float64
	Feedback       *string
}

// AssessmentGroup is one assessment's block inside a program sheet.
type AssessmentGroup struct {
	Title string
	Rows  []Row
}

// ProgramSection is one sheet of the combined workbook.
type ProgramSection struct {
	Program     string
	Assessments []AssessmentGroup
}

// AssessmentFilename returns the download name of a single assessment report.
func AssessmentFilename(program, assessment string) string {
	name := fmt.Sprintf("%s_%s_report.xlsx", program, assessment)
	return strings.NewReplacer(" ", "_", "/", "_", "\\", "_", "\"", "").Replace(name)
}

// AssessmentWorkbook renders a single assessment: a merged title row, a blank row,
// the header on row 3 and one row per student from row 4.
func AssessmentWorkbook(title, program string, rows []Row) ([]byte, error) {
	b, err := newBuilder()
	if err != nil {
		return nil, err
	}
	defer b.close()

	sheet := sheetName(truncateUnits(cleanSheetText(program), excelize.MaxSheetNameLength-len(sheetSuffix)) + sheetSuffix)
	if err := b.file.SetSheetName(defaultSheet, sheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	if err := b.writeBanner(sheet, 1, fmt.Sprintf("%s — %s", title, program), b.titleStyle); err != nil {
		return nil, err
	}
	if err := b.writeHeader(sheet, 3); err != nil {
		return nil, err
	}
	for i, row := range rows {
		if err := b.writeRow(sheet, 4+i, row); err != nil {
			return nil, err
		}
	}

	return b.bytes()
}

// CombinedWorkbook renders one sheet per program with its assessments stacked, each
// preceded by a merged title row and followed by a blank row. Without programs a
// single placeholder sheet is produced.
func CombinedWorkbook(sections []ProgramSection) ([]byte, error) {
	b, err := newBuilder()
	if err != nil {
		return nil, err
	}
	defer b.close()

	if len(sections) == 0 {
		if err := b.file.SetSheetName(defaultSheet, emptySheet); err != nil {
			return nil, fmt.Errorf("rename sheet: %w", err)
		}
		return b.bytes()
	}

	used := make(map[string]struct{}, len(sections))
	for i, section := range sections {
		sheet := uniqueSheetName(sheetName(section.Program), used)
		if i == 0 {
			if err := b.file.SetSheetName(defaultSheet, sheet); err != nil {
				return nil, fmt.Errorf("rename sheet: %w", err)
			}
		} else if _, err := b.file.NewSheet(sheet); err != nil {
			return nil, fmt.Errorf("create sheet %q: %w", sheet, err)
		}

		if err := b.writeHeader(sheet, 1); err != nil {
			return nil, err
		}

		rowIdx := 2
		for _, group := range section.Assessments {
			if err := b.writeBanner(sheet, rowIdx, group.Title, b.separatorStyle); err != nil {
				return nil, err
			}
			rowIdx++
			for _, row := range group.Rows {
				if err := b.writeRow(sheet, rowIdx, row); err != nil {
					return nil, err
				}
				rowIdx++
			}
			rowIdx++
		}
	}

	b.file.SetActiveSheet(0)
	return b.bytes()
}
