package model

type AttendanceStatus string

const (
	AttendanceStatusPresent AttendanceStatus = "present"
	AttendanceStatusAbsent  AttendanceStatus = "absent"
	AttendanceStatusLate    AttendanceStatus = "late"
	AttendanceStatusExcused AttendanceStatus = "excused"
)

// Valid returns true when the status is a supported value.
func (s AttendanceStatus) Valid() bool {
	switch s {
	case AttendanceStatusPresent, AttendanceStatusAbsent, AttendanceStatusLate, AttendanceStatusExcused:
		return true
	default:
		return false
	}
}

type Attendance struct {
	ID                    ID               `json:"id"`
	StudentID             ID               `json:"studentId"`
	ClassroomID           ID               `json:"classroomId"`
	Date                  Date             `json:"date"`
	Status                AttendanceStatus `json:"status"`
	TimeSlot              string           `json:"timeSlot"` // e.g. "08:00-09:00"
	Notes                 string           `json:"notes,omitempty"`
	JustifiedAbsence      *bool            `json:"justifiedAbsence,omitempty"`
	JustificationDocument string           `json:"justificationDocument,omitempty"`
	CreatedAt             Timestamp        `json:"createdAt"`
	UpdatedAt             Timestamp        `json:"updatedAt"`
}

func (a Attendance) EntityID() ID { return a.ID }
func (a Attendance) ParentID() ID { return a.ClassroomID }

type CreateAttendanceRequest struct {
	StudentID        ID               `json:"studentId" validate:"required"`
	ClassroomID      ID               `json:"classroomId" validate:"required"`
	Date             Date             `json:"date" validate:"required"`
	Status           AttendanceStatus `json:"status" validate:"required,attendance_status"`
	TimeSlot         string           `json:"timeSlot" validate:"required,time_slot"`
	Notes            string           `json:"notes,omitempty" validate:"max=500"`
	JustifiedAbsence *bool            `json:"justifiedAbsence,omitempty"`
}

type UpdateAttendanceRequest struct {
	Status           *AttendanceStatus `json:"status,omitempty" validate:"omitempty,attendance_status"`
	TimeSlot         *string           `json:"timeSlot,omitempty" validate:"omitempty,time_slot"`
	Notes            *string           `json:"notes,omitempty" validate:"omitempty,max=500"`
	JustifiedAbsence *bool             `json:"justifiedAbsence,omitempty"`
}

// AttendanceStats is derived from an attendance snapshot and never cached.
type AttendanceStats struct {
	StudentID      ID      `json:"studentId"`
	TotalDays      int     `json:"totalDays"`
	PresentDays    int     `json:"presentDays"`
	AbsentDays     int     `json:"absentDays"`
	LateDays       int     `json:"lateDays"`
	AttendanceRate float64 `json:"attendanceRate"`
}
