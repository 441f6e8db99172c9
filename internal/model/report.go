package model

import "time"

type ReportType string

const (
	ReportTypeStudentBulletin  ReportType = "student_bulletin"
	ReportTypeClassSummary     ReportType = "class_summary"
	ReportTypeAttendanceReport ReportType = "attendance_report"
	ReportTypeGradeReport      ReportType = "grade_report"
)

type BulletinStudent struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	ClassName string `json:"className"`
}

type SubjectReport struct {
	Subject string  `json:"subject"`
	Average float64 `json:"average"`
	// Meaningful is false when the subject's coefficients sum to zero.
	Meaningful bool    `json:"meaningful"`
	Grades     []Grade `json:"grades"`
}

type StudentBulletin struct {
	Student        BulletinStudent `json:"student"`
	Period         string          `json:"period,omitempty"`
	Grades         []SubjectReport `json:"grades"`
	Attendance     AttendanceStats `json:"attendance"`
	GeneralAverage float64         `json:"generalAverage"`
	ClassRank      int             `json:"classRank"`
	Comments       string          `json:"comments"`
}

type TopStudent struct {
	StudentName string  `json:"studentName"`
	Average     float64 `json:"average"`
}

type ClassSummary struct {
	ClassName      string       `json:"className"`
	TotalStudents  int          `json:"totalStudents"`
	AverageGrade   float64      `json:"averageGrade"`
	AttendanceRate float64      `json:"attendanceRate"`
	TopStudents    []TopStudent `json:"topStudents"`
}

// SavedReport is the archived form of a generated report.
type SavedReport struct {
	ID            string           `json:"id"`
	Title         string           `json:"title"`
	Type          ReportType       `json:"type"`
	GeneratedDate time.Time        `json:"generatedDate"`
	Period        string           `json:"period"`
	AcademicYear  string           `json:"academicYear"`
	ClassroomID   ID               `json:"classroomId,omitempty"`
	StudentID     ID               `json:"studentId,omitempty"`
	Bulletin      *StudentBulletin `json:"bulletin,omitempty"`
	Summary       *ClassSummary    `json:"summary,omitempty"`
	CreatedBy     ID               `json:"createdBy"`
	CreatedAt     time.Time        `json:"createdAt"`
}
