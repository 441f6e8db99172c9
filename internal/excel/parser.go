package excel

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"klaso-client/internal/model"
	"klaso-client/pkg/errors"

	"github.com/xuri/excelize/v2"
)

const (
	ColStudentID   = "student_id"
	ColSubject     = "subject"
	ColValue       = "value"
	ColMaxValue    = "max_value"
	ColCoefficient = "coefficient"
	ColGradeType   = "grade_type"
	ColDate        = "date"
	ColDescription = "description"

	defaultMaxValue    = 20
	defaultCoefficient = 1
)

var requiredColumns = []string{ColStudentID, ColSubject, ColValue, ColGradeType, ColDate}

// Columns lists every column of the grade sheet, in template order.
var Columns = []string{ColStudentID, ColSubject, ColValue, ColMaxValue, ColCoefficient, ColGradeType, ColDate, ColDescription}

// dateLayouts are tried in order; the second one is how excelize renders
// cells using the built-in short date format.
var dateLayouts = []string{model.DateLayout, "01-02-06", "02/01/2006"}

// Row is one parsed grade line with its sheet line number.
type Row struct {
	Line    int
	Request model.CreateGradeRequest
}

type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

// Parse reads the first sheet of a workbook. Every row is stamped with the
// target classroom. Missing max_value and coefficient default to 20 and 1.
func (p *Parser) Parse(ctx context.Context, data []byte, classroomID model.ID) ([]Row, error) {
	file, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open Excel file: %v", errors.ErrInvalidFileFormat, err)
	}
	defer file.Close()

	sheets := file.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.ErrInvalidFileFormat
	}

	rows, err := file.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %w", err)
	}

	if len(rows) < 2 { // Header + at least one data row
		return nil, errors.ErrInvalidFileFormat
	}

	columnMap := make(map[string]int)
	for i, col := range rows[0] {
		columnMap[strings.ToLower(strings.TrimSpace(col))] = i
	}

	for _, col := range requiredColumns {
		if _, exists := columnMap[col]; !exists {
			return nil, fmt.Errorf("%w: missing required column: %s", errors.ErrInvalidFileFormat, col)
		}
	}

	var out []Row
	for i, row := range rows[1:] {
		line := i + 2
		if blank(row) {
			continue
		}

		req, err := p.parseRow(row, columnMap)
		if err != nil {
			return nil, fmt.Errorf("error parsing row %d: %w", line, err)
		}
		req.ClassroomID = classroomID

		out = append(out, Row{Line: line, Request: req})
	}

	if len(out) == 0 {
		return nil, errors.ErrInvalidFileFormat
	}
	return out, nil
}

func (p *Parser) parseRow(row []string, columnMap map[string]int) (model.CreateGradeRequest, error) {
	getValue := func(colName string) string {
		if idx, exists := columnMap[colName]; exists && idx < len(row) {
			return strings.TrimSpace(row[idx])
		}
		return ""
	}

	rawValue := getValue(ColValue)
	if rawValue == "" {
		return model.CreateGradeRequest{}, fmt.Errorf("%s is required", ColValue)
	}
	value, err := parseNumber(rawValue, 0)
	if err != nil {
		return model.CreateGradeRequest{}, fmt.Errorf("invalid %s: %w", ColValue, err)
	}
	maxValue, err := parseNumber(getValue(ColMaxValue), defaultMaxValue)
	if err != nil {
		return model.CreateGradeRequest{}, fmt.Errorf("invalid %s: %w", ColMaxValue, err)
	}
	coefficient, err := parseNumber(getValue(ColCoefficient), defaultCoefficient)
	if err != nil {
		return model.CreateGradeRequest{}, fmt.Errorf("invalid %s: %w", ColCoefficient, err)
	}

	var date model.Date
	if raw := getValue(ColDate); raw != "" {
		if date, err = parseDate(raw); err != nil {
			return model.CreateGradeRequest{}, fmt.Errorf("invalid %s: %w", ColDate, err)
		}
	}

	return model.CreateGradeRequest{
		Value:       value,
		MaxValue:    maxValue,
		Coefficient: coefficient,
		GradeType:   model.GradeType(strings.ToLower(getValue(ColGradeType))),
		Subject:     getValue(ColSubject),
		Description: getValue(ColDescription),
		GradeDate:   date,
		StudentID:   model.ID(getValue(ColStudentID)),
	}, nil
}

// parseNumber accepts a decimal comma. An empty cell yields fallback.
func parseNumber(s string, fallback float64) (float64, error) {
	if s == "" {
		return fallback, nil
	}
	return strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
}

func parseDate(s string) (model.Date, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return model.DateOf(t), nil
		}
	}
	return model.Date{}, fmt.Errorf("unrecognised date %q", s)
}

func blank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
