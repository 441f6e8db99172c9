package excel

import (
	"context"
	"fmt"

	"klaso-client/internal/logger"
	"klaso-client/internal/model"

	"github.com/rs/zerolog"
)

type ParsingStrategy interface {
	Parse(ctx context.Context, data []byte, classroomID model.ID) ([]Row, error)
	Validate(ctx context.Context, rows []Row) error
}

type ExcelStrategy struct {
	parser    *Parser
	validator *Validator
}

func NewExcelStrategy() ParsingStrategy {
	return &ExcelStrategy{
		parser:    NewParser(),
		validator: NewValidator(),
	}
}

func (s *ExcelStrategy) Parse(ctx context.Context, data []byte, classroomID model.ID) ([]Row, error) {
	return s.parser.Parse(ctx, data, classroomID)
}

func (s *ExcelStrategy) Validate(ctx context.Context, rows []Row) error {
	return s.validator.Validate(ctx, rows)
}

// GradeCreator is the grade repository as seen by the importer.
type GradeCreator interface {
	Create(ctx context.Context, req model.CreateGradeRequest) (model.Grade, error)
}

// Importer turns a grade sheet into grades. The sheet is rejected as a whole
// when any row is invalid; once validated, rows are created one at a time
// and a rejected row does not stop the others.
type Importer struct {
	strategy ParsingStrategy
	grades   GradeCreator
	log      zerolog.Logger
}

func NewImporter(grades GradeCreator) *Importer {
	return &Importer{
		strategy: NewExcelStrategy(),
		grades:   grades,
		log:      logger.Get(),
	}
}

func (i *Importer) Import(ctx context.Context, data []byte, classroomID model.ID) (model.ImportResponse, error) {
	log := i.log.With().Str("classroom_id", classroomID.String()).Logger()

	log.Debug().Msg("Parsing grade sheet")
	rows, err := i.strategy.Parse(ctx, data, classroomID)
	if err != nil {
		log.Error().Err(err).Msg("Failed to parse grade sheet")
		return model.ImportResponse{}, err
	}

	log.Debug().Int("row_count", len(rows)).Msg("Validating grade sheet")
	if err := i.strategy.Validate(ctx, rows); err != nil {
		log.Error().Err(err).Msg("Grade sheet validation failed")
		return model.ImportResponse{}, err
	}

	resp := model.ImportResponse{Total: len(rows)}
	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return resp, err
		}

		if _, err := i.grades.Create(ctx, row.Request); err != nil {
			log.Error().
				Err(err).
				Int("row", row.Line).
				Str("student_id", row.Request.StudentID.String()).
				Msg("Failed to create grade")
			resp.Errors = append(resp.Errors, fmt.Sprintf("row %d: %v", row.Line, err))
			continue
		}
		resp.Created++
	}

	log.Info().Int("created", resp.Created).Int("total", resp.Total).Msg("Grade sheet imported")
	return resp, nil
}
