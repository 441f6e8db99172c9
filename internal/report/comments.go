package report

type threshold struct {
	min      float64
	sentence string
}

var averageLadder = []threshold{
	{16, "Excellent work, keep it up!"},
	{14, "Good work, a little more effort can improve the results further."},
	{12, "Satisfactory work, but could do better."},
	{10, "Passable results, sustained effort is needed."},
}

const averageFallback = "Insufficient results, catching up is required."

var attendanceLadder = []threshold{
	{95, "Exemplary attendance."},
	{90, "Good attendance."},
	{80, "Correct attendance, but watch the absences."},
}

const attendanceFallback = "Insufficient attendance, too many absences."

// Comments returns the canned remark for a general average and an attendance
// rate, joined by a single space.
func Comments(average, attendanceRate float64) string {
	return pick(averageLadder, average, averageFallback) + " " +
		pick(attendanceLadder, attendanceRate, attendanceFallback)
}

func pick(ladder []threshold, v float64, fallback string) string {
	for _, t := range ladder {
		if v >= t.min {
			return t.sentence
		}
	}
	return fallback
}
