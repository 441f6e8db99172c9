// Package validation checks request shapes before they reach a repository.
package validation

import (
	stderrors "errors"
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"klaso-client/internal/model"
	"klaso-client/pkg/errors"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

const (
	gradeTypeTag        = "grade_type"
	attendanceStatusTag = "attendance_status"
	timeSlotTag         = "time_slot"
	academicYearTag     = "academic_year"
)

var (
	validate   *validator.Validate
	translator ut.Translator

	timeSlotRegex     = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d-([01]\d|2[0-3]):[0-5]\d$`)
	academicYearRegex = regexp.MustCompile(`^(\d{4})-(\d{4})$`)
)

func init() {
	validate = validator.New()

	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ = uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	// Report JSON names, the ones API callers know.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// A zero Date counts as missing for "required".
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(model.Date); ok && !d.IsZero() {
			return d.Time
		}
		return nil
	}, model.Date{})

	_ = validate.RegisterValidation(gradeTypeTag, gradeTypeValidation)
	_ = validate.RegisterValidation(attendanceStatusTag, attendanceStatusValidation)
	_ = validate.RegisterValidation(timeSlotTag, timeSlotValidation)
	_ = validate.RegisterValidation(academicYearTag, academicYearValidation)

	registerFn := func(ut.Translator) error { return nil }
	for _, tag := range []string{gradeTypeTag, attendanceStatusTag, timeSlotTag, academicYearTag} {
		_ = validate.RegisterTranslation(tag, translator, registerFn, translateCustom)
	}
}

// Struct validates a request and returns errors.ValidationErrors listing every
// failing field, or nil.
func Struct(req interface{}) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !stderrors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %v", errors.ErrSchemaValidation, err)
	}

	out := make(errors.ValidationErrors, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, errors.ValidationError{
			Field:   fieldPath(fe),
			Value:   fe.Value(),
			Message: fe.Translate(translator),
		})
	}
	return out
}

// fieldPath drops the top-level struct name from the namespace, so nested
// failures read "grades[1].status".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func translateCustom(_ ut.Translator, fe validator.FieldError) string {
	switch fe.Tag() {
	case gradeTypeTag:
		return fe.Field() + " must be one of homework, test, exam, participation, project"
	case attendanceStatusTag:
		return fe.Field() + " must be one of present, absent, late, excused"
	case timeSlotTag:
		return fe.Field() + " must look like 08:00-09:00"
	case academicYearTag:
		return fe.Field() + " must be two consecutive years, like 2024-2025"
	default:
		return ""
	}
}

func gradeTypeValidation(fl validator.FieldLevel) bool {
	return model.GradeType(fl.Field().String()).Valid()
}

func attendanceStatusValidation(fl validator.FieldLevel) bool {
	return model.AttendanceStatus(fl.Field().String()).Valid()
}

func timeSlotValidation(fl validator.FieldLevel) bool {
	slot := fl.Field().String()
	if !timeSlotRegex.MatchString(slot) {
		return false
	}
	start, end, _ := strings.Cut(slot, "-")
	return start < end
}

func academicYearValidation(fl validator.FieldLevel) bool {
	m := academicYearRegex.FindStringSubmatch(fl.Field().String())
	if m == nil {
		return false
	}
	from, _ := strconv.Atoi(m[1])
	to, _ := strconv.Atoi(m[2])
	return to == from+1
}
