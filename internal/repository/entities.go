package repository

import (
	"context"

	"klaso-client/internal/model"
	"klaso-client/internal/remote"
)

type Establishments struct {
	*Repository[model.Establishment, model.CreateEstablishmentRequest, model.UpdateEstablishmentRequest]
}

func NewEstablishments(collab Collaborator[model.Establishment], identity Identity) *Establishments {
	return &Establishments{
		Repository: New[model.Establishment, model.CreateEstablishmentRequest, model.UpdateEstablishmentRequest](
			"establishment", collab, OwnerScoped(identity)),
	}
}

// LoadOwned loads the establishments of the current user.
func (r *Establishments) LoadOwned(ctx context.Context) ([]model.Establishment, error) {
	user, err := r.identity.Require()
	if err != nil {
		return nil, err
	}
	return r.Load(ctx, user.ID)
}

type Classrooms struct {
	*Repository[model.Classroom, model.CreateClassroomRequest, model.UpdateClassroomRequest]
}

func NewClassrooms(collab Collaborator[model.Classroom], identity Identity) *Classrooms {
	return &Classrooms{
		Repository: New[model.Classroom, model.CreateClassroomRequest, model.UpdateClassroomRequest](
			"classroom", collab, OwnerScoped(identity)),
	}
}

type Students struct {
	*Repository[model.Student, model.CreateStudentRequest, model.UpdateStudentRequest]
}

func NewStudents(collab Collaborator[model.Student]) *Students {
	return &Students{
		Repository: New[model.Student, model.CreateStudentRequest, model.UpdateStudentRequest]("student", collab),
	}
}

// Roster lists the active students of a classroom. Inactive students stay
// cached so their grades and attendance still resolve.
func (r *Students) Roster(classroomID model.ID) []model.Student {
	return r.Filter(func(s model.Student) bool {
		return s.ClassroomID == classroomID && s.IsActive
	})
}

// StudentGradeLister lists a single student's grades.
type StudentGradeLister interface {
	ListByStudent(ctx context.Context, studentID model.ID) ([]model.Grade, error)
}

type Grades struct {
	*Repository[model.Grade, model.CreateGradeRequest, model.UpdateGradeRequest]
	students StudentGradeLister
}

func NewGrades(collab Collaborator[model.Grade], students StudentGradeLister) *Grades {
	return &Grades{
		Repository: New[model.Grade, model.CreateGradeRequest, model.UpdateGradeRequest]("grade", collab),
		students:   students,
	}
}

// LoadForStudent refreshes one student's grades, leaving the others cached.
func (r *Grades) LoadForStudent(ctx context.Context, studentID model.ID) ([]model.Grade, error) {
	grades, err := r.students.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}

	r.replaceWhere(func(g model.Grade) bool { return g.StudentID == studentID }, clone(grades))
	return grades, nil
}

func (r *Grades) ByStudent(studentID model.ID) []model.Grade {
	return r.Filter(func(g model.Grade) bool { return g.StudentID == studentID })
}

type Attendances struct {
	*Repository[model.Attendance, model.CreateAttendanceRequest, model.UpdateAttendanceRequest]
}

func NewAttendances(collab Collaborator[model.Attendance]) *Attendances {
	return &Attendances{
		Repository: New[model.Attendance, model.CreateAttendanceRequest, model.UpdateAttendanceRequest]("attendance", collab),
	}
}

func (r *Attendances) LoadOnDate(ctx context.Context, classroomID model.ID, date model.Date) ([]model.Attendance, error) {
	return r.LoadScope(ctx, model.Scope{ParentID: classroomID, Date: &date})
}

// CreateMany records attendances one after another and stops at the first
// failure, returning what was created before it.
func (r *Attendances) CreateMany(ctx context.Context, reqs []model.CreateAttendanceRequest) ([]model.Attendance, error) {
	created := make([]model.Attendance, 0, len(reqs))
	for _, req := range reqs {
		item, err := r.Create(ctx, req)
		if err != nil {
			r.log.Warn().
				Err(err).
				Int("created", len(created)).
				Int("requested", len(reqs)).
				Msg("Bulk attendance stopped")
			return created, err
		}
		created = append(created, item)
	}
	return created, nil
}

func (r *Attendances) ByStudent(studentID model.ID) []model.Attendance {
	return r.Filter(func(a model.Attendance) bool { return a.StudentID == studentID })
}

func (r *Attendances) ByDate(date model.Date) []model.Attendance {
	return r.Filter(func(a model.Attendance) bool { return a.Date.SameDay(date) })
}

// EvaluationGrader reads and saves the grades of one evaluation in a single call.
type EvaluationGrader interface {
	SaveGrades(ctx context.Context, evaluationID model.ID, req model.EvaluationGradesRequest) ([]model.Grade, error)
	Grades(ctx context.Context, evaluationID model.ID) ([]model.Grade, error)
}

type Evaluations struct {
	*Repository[model.Evaluation, model.CreateEvaluationRequest, model.UpdateEvaluationRequest]
	grader EvaluationGrader
}

func NewEvaluations(collab Collaborator[model.Evaluation], grader EvaluationGrader) *Evaluations {
	return &Evaluations{
		Repository: New[model.Evaluation, model.CreateEvaluationRequest, model.UpdateEvaluationRequest]("evaluation", collab),
		grader:     grader,
	}
}

// SaveGrades submits every grade of an evaluation. The returned grades are
// not merged into any cache; reload the classroom's grades to see them.
func (r *Evaluations) SaveGrades(ctx context.Context, evaluationID model.ID, entries []model.EvaluationGradeEntry) ([]model.Grade, error) {
	return r.grader.SaveGrades(ctx, evaluationID, model.EvaluationGradesRequest{Grades: entries})
}

// GradesOf fetches the grades of an evaluation without caching them.
func (r *Evaluations) GradesOf(ctx context.Context, evaluationID model.ID) ([]model.Grade, error) {
	return r.grader.Grades(ctx, evaluationID)
}

// Set bundles every entity repository of one session.
type Set struct {
	Establishments *Establishments
	Classrooms     *Classrooms
	Students       *Students
	Grades         *Grades
	Attendances    *Attendances
	Evaluations    *Evaluations
}

func NewSet(resources *remote.Resources, identity Identity) *Set {
	return &Set{
		Establishments: NewEstablishments(resources.Establishments, identity),
		Classrooms:     NewClassrooms(resources.Classrooms, identity),
		Students:       NewStudents(resources.Students),
		Grades:         NewGrades(resources.Grades, resources.Grades),
		Attendances:    NewAttendances(resources.Attendances),
		Evaluations:    NewEvaluations(resources.Evaluations, resources.Evaluations),
	}
}
