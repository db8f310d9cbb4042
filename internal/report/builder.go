package report

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

type builder struct {
	file           *excelize.File
	headerStyle    int
	cellStyle      int
	titleStyle     int
	separatorStyle int
}

func thinBorder() []excelize.Border {
	return []excelize.Border{
		{Type: "left", Color: "000000", Style: 1},
		{Type: "right", Color: "000000", Style: 1},
		{Type: "top", Color: "000000", Style: 1},
		{Type: "bottom", Color: "000000", Style: 1},
	}
}

func newBuilder() (*builder, error) {
	f := excelize.NewFile()
	b := &builder{file: f}

	styles := []struct {
		target *int
		style  *excelize.Style
	}{
		{&b.headerStyle, &excelize.Style{
			Font:      &excelize.Font{Bold: true, Color: "FFFFFF", Size: 11, Family: "Calibri"},
			Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"4A00E0"}},
			Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
			Border:    thinBorder(),
		}},
		{&b.cellStyle, &excelize.Style{
			Alignment: &excelize.Alignment{Vertical: "top", WrapText: true},
			Border:    thinBorder(),
		}},
		{&b.titleStyle, &excelize.Style{
			Font:      &excelize.Font{Bold: true, Color: "4A00E0", Size: 14, Family: "Calibri"},
			Alignment: &excelize.Alignment{Horizontal: "center"},
		}},
		{&b.separatorStyle, &excelize.Style{
			Font: &excelize.Font{Bold: true, Color: "6C5CE7", Size: 12, Family: "Calibri"},
		}},
	}
	for _, s := range styles {
		id, err := f.NewStyle(s.style)
		if err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("create style: %w", err)
		}
		*s.target = id
	}

	return b, nil
}

func (b *builder) close() {
	_ = b.file.Close()
}

func (b *builder) bytes() ([]byte, error) {
	buf, err := b.file.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func (b *builder) writeHeader(sheet string, row int) error {
	for i, col := range columns {
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return err
		}
		if err := b.file.SetCellValue(sheet, cell, col.title); err != nil {
			return err
		}
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := b.file.SetColWidth(sheet, name, name, col.width); err != nil {
			return err
		}
	}

	first, _ := excelize.CoordinatesToCellName(1, row)
	last, _ := excelize.CoordinatesToCellName(len(columns), row)
	return b.file.SetCellStyle(sheet, first, last, b.headerStyle)
}

// writeBanner merges the row across all columns and writes text into it.
func (b *builder) writeBanner(sheet string, row int, text string, style int) error {
	first, _ := excelize.CoordinatesToCellName(1, row)
	last, _ := excelize.CoordinatesToCellName(len(columns), row)
	if err := b.file.MergeCell(sheet, first, last); err != nil {
		return fmt.Errorf("merge banner: %w", err)
	}
	if err := b.file.SetCellValue(sheet, first, text); err != nil {
		return err
	}
	return b.file.SetCellStyle(sheet, first, last, style)
}

func (b *builder) writeRow(sheet string, row int, data Row) error {
	first, _ := excelize.CoordinatesToCellName(1, row)
	if err := b.file.SetSheetRow(sheet, first, &[]interface{}{
		data.RollNumber,
		data.Name,
		data.Email,
		data.Specialization,
		data.Year,
		filesCell(data.Files),
		orPlaceholder(data.TextAnswer),
		orPlaceholder(strings.Join(data.URLs, "\n")),
		marksCell(data.Marks),
		feedbackCell(data.Feedback),
	}); err != nil {
		return fmt.Errorf("write row %d: %w", row, err)
	}

	last, _ := excelize.CoordinatesToCellName(len(columns), row)
	return b.file.SetCellStyle(sheet, first, last, b.cellStyle)
}

func filesCell(files []FileLink) string {
	if len(files) == 0 {
		return Placeholder
	}
	lines := make([]string, 0, len(files))
	for _, file := range files {
		lines = append(lines, fmt.Sprintf("%s: %s", file.Name, file.URL))
	}
	return strings.Join(lines, "\n")
}

func marksCell(marks *float64) interface{} {
	if marks == nil {
		return Placeholder
	}
	return *marks
}

func feedbackCell(feedback *string) string {
	if feedback == nil {
		return Placeholder
	}
	return orPlaceholder(*feedback)
}

func orPlaceholder(value string) string {
	if strings.TrimSpace(value) == "" {
		return Placeholder
	}
	return value
}
