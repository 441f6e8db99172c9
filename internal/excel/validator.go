package excel

import (
	"context"
	stderrors "errors"
	"fmt"

	"klaso-client/internal/validation"
	"klaso-client/pkg/errors"
)

type Validator struct{}

func NewValidator() *Validator {
	return &Validator{}
}

// Validate checks every row and reports all failures at once, each field
// prefixed with its sheet line.
func (v *Validator) Validate(ctx context.Context, rows []Row) error {
	if len(rows) == 0 {
		return errors.ErrSchemaValidation
	}

	var failures errors.ValidationErrors
	for _, row := range rows {
		err := validation.Struct(row.Request)
		if err == nil {
			continue
		}

		var fieldErrs errors.ValidationErrors
		if !stderrors.As(err, &fieldErrs) {
			return fmt.Errorf("row %d: %w", row.Line, err)
		}
		for _, fe := range fieldErrs {
			fe.Field = fmt.Sprintf("row %d: %s", row.Line, fe.Field)
			failures = append(failures, fe)
		}
	}

	if len(failures) > 0 {
		return failures
	}
	return nil
}
