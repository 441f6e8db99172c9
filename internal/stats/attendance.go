package stats

import "klaso-client/internal/model"

// AttendanceRate is present/total×100 rounded to two decimals; 0 for no records.
func AttendanceRate(records []model.Attendance) float64 {
	if len(records) == 0 {
		return 0
	}
	present := 0
	for _, a := range records {
		if a.Status == model.AttendanceStatusPresent {
			present++
		}
	}
	return Round2(float64(present) / float64(len(records)) * 100)
}

func StudentAttendance(records []model.Attendance, studentID model.ID) model.AttendanceStats {
	stats := model.AttendanceStats{StudentID: studentID}

	var own []model.Attendance
	for _, a := range records {
		if a.StudentID != studentID {
			continue
		}
		own = append(own, a)
		switch a.Status {
		case model.AttendanceStatusPresent:
			stats.PresentDays++
		case model.AttendanceStatusAbsent:
			stats.AbsentDays++
		case model.AttendanceStatusLate:
			stats.LateDays++
		}
	}

	stats.TotalDays = len(own)
	stats.AttendanceRate = AttendanceRate(own)
	return stats
}

// ClassroomAttendance returns per-student stats in order of first record.
func ClassroomAttendance(records []model.Attendance, classroomID model.ID) []model.AttendanceStats {
	inClass := classroomRecords(records, classroomID)

	var order []model.ID
	seen := make(map[model.ID]bool)
	for _, a := range inClass {
		if !seen[a.StudentID] {
			seen[a.StudentID] = true
			order = append(order, a.StudentID)
		}
	}

	out := make([]model.AttendanceStats, 0, len(order))
	for _, id := range order {
		out = append(out, StudentAttendance(inClass, id))
	}
	return out
}

// ClassroomAttendanceRate pools every record of the classroom.
func ClassroomAttendanceRate(records []model.Attendance, classroomID model.ID) float64 {
	return AttendanceRate(classroomRecords(records, classroomID))
}

func classroomRecords(records []model.Attendance, classroomID model.ID) []model.Attendance {
	var out []model.Attendance
	for _, a := range records {
		if a.ClassroomID == classroomID {
			out = append(out, a)
		}
	}
	return out
}
