package excel

import (
	"bytes"
	"fmt"

	"klaso-client/internal/model"

	"github.com/xuri/excelize/v2"
)

const (
	sheetSummary = "Summary"
	sheetGrades  = "Grades"
)

// Render writes a saved report as an xlsx workbook.
func Render(report model.SavedReport) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	// NewFile starts with "Sheet1".
	if err := f.SetSheetName("Sheet1", sheetSummary); err != nil {
		return nil, err
	}

	header := [][]interface{}{
		{"Title", report.Title},
		{"Type", string(report.Type)},
		{"Period", report.Period},
		{"Academic year", report.AcademicYear},
		{"Generated", report.GeneratedDate.Format("2006-01-02 15:04")},
	}
	if err := writeRows(f, sheetSummary, 1, header); err != nil {
		return nil, err
	}
	next := len(header) + 2

	var err error
	switch {
	case report.Bulletin != nil:
		err = writeBulletin(f, next, report.Bulletin)
	case report.Summary != nil:
		err = writeSummary(f, next, report.Summary)
	default:
		err = fmt.Errorf("report %s has no content", report.ID)
	}
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeBulletin(f *excelize.File, start int, b *model.StudentBulletin) error {
	rows := [][]interface{}{
		{"Student", b.Student.FirstName + " " + b.Student.LastName},
		{"Class", b.Student.ClassName},
		{"General average", b.GeneralAverage},
		{"Class rank", rankLabel(b.ClassRank)},
		{"Attendance rate", b.Attendance.AttendanceRate},
		{"Days recorded", b.Attendance.TotalDays},
		{"Absences", b.Attendance.AbsentDays},
		{"Late arrivals", b.Attendance.LateDays},
		{"Comments", b.Comments},
		{},
		{"Subject", "Average"},
	}
	for _, s := range b.Grades {
		avg := interface{}(s.Average)
		if !s.Meaningful {
			avg = "n/a"
		}
		rows = append(rows, []interface{}{s.Subject, avg})
	}
	if err := writeRows(f, sheetSummary, start, rows); err != nil {
		return err
	}

	if _, err := f.NewSheet(sheetGrades); err != nil {
		return err
	}
	detail := [][]interface{}{{"Subject", "Date", "Type", "Value", "Max", "Coefficient", "Description"}}
	for _, s := range b.Grades {
		for _, g := range s.Grades {
			detail = append(detail, []interface{}{
				s.Subject, g.GradeDate.String(), string(g.GradeType), g.Value, g.MaxValue, g.Coefficient, g.Description,
			})
		}
	}
	return writeRows(f, sheetGrades, 1, detail)
}

func writeSummary(f *excelize.File, start int, s *model.ClassSummary) error {
	rows := [][]interface{}{
		{"Class", s.ClassName},
		{"Students", s.TotalStudents},
		{"Class average", s.AverageGrade},
		{"Attendance rate", s.AttendanceRate},
		{},
		{"Top students", "Average"},
	}
	for _, t := range s.TopStudents {
		rows = append(rows, []interface{}{t.StudentName, t.Average})
	}
	return writeRows(f, sheetSummary, start, rows)
}

func writeRows(f *excelize.File, sheet string, start int, rows [][]interface{}) error {
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, start+i)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, start+i, err)
		}
	}
	return nil
}

func rankLabel(rank int) interface{} {
	if rank == 0 {
		return "unranked"
	}
	return rank
}
