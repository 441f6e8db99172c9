// Package report assembles bulletins and class summaries from cached data.
// It never loads anything; callers make sure the relevant repositories were
// loaded first.
package report

import (
	"fmt"

	"klaso-client/internal/logger"
	"klaso-client/internal/model"
	"klaso-client/internal/stats"
	"klaso-client/pkg/errors"

	"github.com/rs/zerolog"
)

const (
	topStudentCount = 3
	unknownStudent  = "Unknown"
)

type StudentCache interface {
	CachedByID(id model.ID) (model.Student, bool)
	Roster(classroomID model.ID) []model.Student
}

type ClassroomCache interface {
	CachedByID(id model.ID) (model.Classroom, bool)
}

type GradeCache interface {
	Snapshot() []model.Grade
}

type AttendanceCache interface {
	Snapshot() []model.Attendance
}

type Assembler struct {
	students    StudentCache
	classrooms  ClassroomCache
	grades      GradeCache
	attendances AttendanceCache
	log         zerolog.Logger
}

func NewAssembler(students StudentCache, classrooms ClassroomCache, grades GradeCache, attendances AttendanceCache) *Assembler {
	return &Assembler{
		students:    students,
		classrooms:  classrooms,
		grades:      grades,
		attendances: attendances,
		log:         logger.For("report"),
	}
}

// Bulletin builds the bulletin of one student. Both the student and the
// student's classroom must be cached.
func (a *Assembler) Bulletin(studentID model.ID, period string) (model.StudentBulletin, error) {
	student, ok := a.students.CachedByID(studentID)
	if !ok {
		return model.StudentBulletin{}, fmt.Errorf("student %s: %w", studentID, errors.ErrNotInCache)
	}
	classroom, ok := a.classrooms.CachedByID(student.ClassroomID)
	if !ok {
		return model.StudentBulletin{}, fmt.Errorf("classroom %s: %w", student.ClassroomID, errors.ErrNotInCache)
	}

	grades := a.grades.Snapshot()
	var own []model.Grade
	for _, g := range grades {
		if g.StudentID == studentID {
			own = append(own, g)
		}
	}

	subjects := stats.SubjectAverages(own)
	reports := make([]model.SubjectReport, 0, len(subjects))
	for _, s := range subjects {
		reports = append(reports, model.SubjectReport{
			Subject:    s.Subject,
			Average:    stats.Round2(s.Average),
			Meaningful: s.Meaningful,
			Grades:     s.Grades,
		})
	}

	average := stats.StudentAverage(own, studentID)
	attendance := stats.StudentAttendance(a.attendances.Snapshot(), studentID)

	bulletin := model.StudentBulletin{
		Student: model.BulletinStudent{
			FirstName: student.FirstName,
			LastName:  student.LastName,
			ClassName: classroom.Name,
		},
		Period:         period,
		Grades:         reports,
		Attendance:     attendance,
		GeneralAverage: stats.Round2(average.Average),
		ClassRank:      stats.RankOf(stats.ClassroomAverages(grades, classroom.ID), studentID),
	}
	// The remark follows the average as displayed.
	bulletin.Comments = Comments(bulletin.GeneralAverage, attendance.AttendanceRate)

	a.log.Debug().
		Str("student_id", studentID.String()).
		Int("subjects", len(reports)).
		Int("rank", bulletin.ClassRank).
		Msg("Bulletin assembled")

	return bulletin, nil
}

func (a *Assembler) ClassSummary(classroomID model.ID) (model.ClassSummary, error) {
	classroom, ok := a.classrooms.CachedByID(classroomID)
	if !ok {
		return model.ClassSummary{}, fmt.Errorf("classroom %s: %w", classroomID, errors.ErrNotInCache)
	}

	grades := a.grades.Snapshot()
	ranked := stats.Rank(stats.ClassroomAverages(grades, classroomID))
	if len(ranked) > topStudentCount {
		ranked = ranked[:topStudentCount]
	}

	top := make([]model.TopStudent, 0, len(ranked))
	for _, r := range ranked {
		name := unknownStudent
		if s, ok := a.students.CachedByID(r.StudentID); ok {
			name = s.FullName()
		}
		top = append(top, model.TopStudent{StudentName: name, Average: stats.Round2(r.Average)})
	}

	summary := model.ClassSummary{
		ClassName:      classroom.Name,
		TotalStudents:  len(a.students.Roster(classroomID)),
		AverageGrade:   stats.Round2(stats.ClassroomAverage(grades, classroomID)),
		AttendanceRate: stats.ClassroomAttendanceRate(a.attendances.Snapshot(), classroomID),
		TopStudents:    top,
	}

	a.log.Debug().
		Str("classroom_id", classroomID.String()).
		Int("students", summary.TotalStudents).
		Msg("Class summary assembled")

	return summary, nil
}
