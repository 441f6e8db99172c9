package report

import (
	"time"

	"klaso-client/internal/model"

	"github.com/google/uuid"
)

const (
	DefaultTitle        = "Untitled report"
	DefaultPeriod       = "Not specified"
	DefaultAcademicYear = "2024-2025"
)

type Identity interface {
	Require() (model.User, error)
}

// Draft holds the caller-supplied part of a saved report. Zero fields are
// replaced with defaults.
type Draft struct {
	Title        string
	Type         model.ReportType
	Period       string
	AcademicYear string
	ClassroomID  model.ID
	StudentID    model.ID
	Bulletin     *model.StudentBulletin
	Summary      *model.ClassSummary
}

// NewSavedReport stamps a draft with an identifier, the author and the
// generation time. It fails when nobody is signed in.
func NewSavedReport(identity Identity, draft Draft, now time.Time) (model.SavedReport, error) {
	user, err := identity.Require()
	if err != nil {
		return model.SavedReport{}, err
	}

	r := model.SavedReport{
		ID:            uuid.NewString(),
		Title:         orDefault(draft.Title, DefaultTitle),
		Type:          draft.Type,
		GeneratedDate: now,
		Period:        orDefault(draft.Period, DefaultPeriod),
		AcademicYear:  orDefault(draft.AcademicYear, DefaultAcademicYear),
		ClassroomID:   draft.ClassroomID,
		StudentID:     draft.StudentID,
		Bulletin:      draft.Bulletin,
		Summary:       draft.Summary,
		CreatedBy:     user.ID,
		CreatedAt:     now,
	}
	if r.Type == "" {
		r.Type = model.ReportTypeStudentBulletin
	}
	return r, nil
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
