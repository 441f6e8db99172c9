package model

type GradeType string

const (
	GradeTypeHomework      GradeType = "homework"
	GradeTypeTest          GradeType = "test"
	GradeTypeExam          GradeType = "exam"
	GradeTypeParticipation GradeType = "participation"
	GradeTypeProject       GradeType = "project"
)

func (t GradeType) Valid() bool {
	switch t {
	case GradeTypeHomework, GradeTypeTest, GradeTypeExam, GradeTypeParticipation, GradeTypeProject:
		return true
	default:
		return false
	}
}

// GradeStatus is set on grades entered through an evaluation.
type GradeStatus string

const (
	GradeStatusPresent           GradeStatus = "PRESENT"
	GradeStatusAbsentJustified   GradeStatus = "ABSENT_JUSTIFIED"
	GradeStatusAbsentUnjustified GradeStatus = "ABSENT_UNJUSTIFIED"
	GradeStatusNotSubmitted      GradeStatus = "NOT_SUBMITTED"
)

type Grade struct {
	ID               ID          `json:"id"`
	Value            float64     `json:"value"`
	MaxValue         float64     `json:"maxValue"`
	Coefficient      float64     `json:"coefficient"`
	GradeType        GradeType   `json:"gradeType"`
	Subject          string      `json:"subject"`
	Description      string      `json:"description,omitempty"`
	GradeDate        Date        `json:"gradeDate"`
	StudentID        ID          `json:"studentId"`
	ClassroomID      ID          `json:"classroomId"`
	EvaluationID     ID          `json:"evaluationId,omitempty"`
	Status           GradeStatus `json:"status,omitempty"`
	StudentFirstName *string     `json:"studentFirstName,omitempty"`
	StudentLastName  *string     `json:"studentLastName,omitempty"`
	ClassroomName    *string     `json:"classroomName,omitempty"`
	CreatedAt        Timestamp   `json:"createdAt"`
	UpdatedAt        Timestamp   `json:"updatedAt"`
}

func (g Grade) EntityID() ID { return g.ID }
func (g Grade) ParentID() ID { return g.ClassroomID }

type CreateGradeRequest struct {
	Value       float64   `json:"value" validate:"gte=0,ltefield=MaxValue"`
	MaxValue    float64   `json:"maxValue" validate:"gt=0"`
	Coefficient float64   `json:"coefficient" validate:"gt=0"`
	GradeType   GradeType `json:"gradeType" validate:"required,grade_type"`
	Subject     string    `json:"subject" validate:"required,max=100"`
	Description string    `json:"description,omitempty"`
	GradeDate   Date      `json:"gradeDate" validate:"required"`
	StudentID   ID        `json:"studentId" validate:"required"`
	ClassroomID ID        `json:"classroomId" validate:"required"`
}

type UpdateGradeRequest struct {
	Value       *float64   `json:"value,omitempty" validate:"omitempty,gte=0"`
	MaxValue    *float64   `json:"maxValue,omitempty" validate:"omitempty,gt=0"`
	Coefficient *float64   `json:"coefficient,omitempty" validate:"omitempty,gt=0"`
	GradeType   *GradeType `json:"gradeType,omitempty" validate:"omitempty,grade_type"`
	Subject     *string    `json:"subject,omitempty" validate:"omitempty,min=1,max=100"`
	Description *string    `json:"description,omitempty"`
	GradeDate   *Date      `json:"gradeDate,omitempty"`
}

// StudentAverage is derived from a grade snapshot and never cached.
type StudentAverage struct {
	StudentID   ID      `json:"studentId"`
	Average     float64 `json:"average"`
	TotalGrades int     `json:"totalGrades"`
}

// Evaluation groups the grades of one assessment given to a classroom.
type Evaluation struct {
	ID             ID        `json:"id"`
	ClassroomID    ID        `json:"classroomId"`
	Subject        string    `json:"subject"`
	GradeType      GradeType `json:"gradeType"`
	MaxValue       float64   `json:"maxValue"`
	Coefficient    float64   `json:"coefficient"`
	EvaluationDate Date      `json:"evaluationDate"`
	Description    *string   `json:"description,omitempty"`
}

func (e Evaluation) EntityID() ID { return e.ID }
func (e Evaluation) ParentID() ID { return e.ClassroomID }

type CreateEvaluationRequest struct {
	ClassroomID    ID        `json:"classroomId" validate:"required"`
	Subject        string    `json:"subject" validate:"required,max=100"`
	GradeType      GradeType `json:"gradeType" validate:"required,grade_type"`
	MaxValue       float64   `json:"maxValue" validate:"gt=0"`
	Coefficient    float64   `json:"coefficient" validate:"gt=0"`
	EvaluationDate Date      `json:"evaluationDate" validate:"required"`
	Description    *string   `json:"description,omitempty"`
}

type UpdateEvaluationRequest struct {
	Subject        *string    `json:"subject,omitempty" validate:"omitempty,min=1,max=100"`
	GradeType      *GradeType `json:"gradeType,omitempty" validate:"omitempty,grade_type"`
	MaxValue       *float64   `json:"maxValue,omitempty" validate:"omitempty,gt=0"`
	Coefficient    *float64   `json:"coefficient,omitempty" validate:"omitempty,gt=0"`
	EvaluationDate *Date      `json:"evaluationDate,omitempty"`
	Description    *string    `json:"description,omitempty"`
}

// EvaluationGradeEntry is one line of a bulk evaluation grading.
type EvaluationGradeEntry struct {
	StudentID ID          `json:"studentId" validate:"required"`
	Value     *float64    `json:"value,omitempty" validate:"omitempty,gte=0"`
	Status    GradeStatus `json:"status" validate:"required,oneof=PRESENT ABSENT_JUSTIFIED ABSENT_UNJUSTIFIED NOT_SUBMITTED"`
}

type EvaluationGradesRequest struct {
	Grades []EvaluationGradeEntry `json:"grades" validate:"required,min=1,dive"`
}
