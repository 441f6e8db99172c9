// Package stats derives averages, rankings and attendance rates from cached
// snapshots. Nothing here performs I/O or keeps state; results are recomputed
// on every call.
package stats

import (
	"math"
	"sort"

	"klaso-client/internal/model"
)

// Scale is the grading scale every grade is normalised to.
const Scale = 20.0

type SubjectAverage struct {
	Subject string
	Average float64
	// Meaningful is false when the subject's coefficients sum to zero; Average is then 0.
	Meaningful bool
	Grades     []model.Grade
}

// Ranking is a student average with its 1-based position in the classroom.
type Ranking struct {
	model.StudentAverage
	Rank int
}

// normalized reports value/maxValue on the 20-point scale. Grades without a
// positive maximum cannot be normalised and are left out of every average.
func normalized(g model.Grade) (float64, bool) {
	if g.MaxValue <= 0 {
		return 0, false
	}
	return g.Value / g.MaxValue * Scale, true
}

// weightedMean computes Σ(value/max×20×coef) / Σcoef over grades.
func weightedMean(grades []model.Grade) (avg float64, meaningful bool, counted int) {
	var points, coefficients float64
	for _, g := range grades {
		n, ok := normalized(g)
		if !ok {
			continue
		}
		points += n * g.Coefficient
		coefficients += g.Coefficient
		counted++
	}
	if coefficients <= 0 {
		return 0, false, counted
	}
	return points / coefficients, true, counted
}

// SubjectAverages groups the given grades by subject, in order of first
// appearance, and averages each group.
func SubjectAverages(grades []model.Grade) []SubjectAverage {
	var order []string
	bySubject := make(map[string][]model.Grade)
	for _, g := range grades {
		if _, seen := bySubject[g.Subject]; !seen {
			order = append(order, g.Subject)
		}
		bySubject[g.Subject] = append(bySubject[g.Subject], g)
	}

	out := make([]SubjectAverage, 0, len(order))
	for _, subject := range order {
		avg, meaningful, _ := weightedMean(bySubject[subject])
		out = append(out, SubjectAverage{
			Subject:    subject,
			Average:    avg,
			Meaningful: meaningful,
			Grades:     bySubject[subject],
		})
	}
	return out
}

// SubjectAverageOf averages the grades of one subject.
func SubjectAverageOf(grades []model.Grade, subject string) (float64, bool) {
	var matching []model.Grade
	for _, g := range grades {
		if g.Subject == subject {
			matching = append(matching, g)
		}
	}
	avg, meaningful, _ := weightedMean(matching)
	return avg, meaningful
}

// GeneralAverage is the plain mean of the meaningful subject averages.
// Subjects are deliberately not weighted against each other.
func GeneralAverage(subjects []SubjectAverage) float64 {
	var sum float64
	var n int
	for _, s := range subjects {
		if !s.Meaningful {
			continue
		}
		sum += s.Average
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

func StudentAverage(grades []model.Grade, studentID model.ID) model.StudentAverage {
	own := filterGrades(grades, func(g model.Grade) bool { return g.StudentID == studentID })

	counted := 0
	for _, g := range own {
		if _, ok := normalized(g); ok {
			counted++
		}
	}

	return model.StudentAverage{
		StudentID:   studentID,
		Average:     GeneralAverage(SubjectAverages(own)),
		TotalGrades: counted,
	}
}

// ClassroomAverages returns one average per student graded in the classroom,
// in order of each student's first grade.
func ClassroomAverages(grades []model.Grade, classroomID model.ID) []model.StudentAverage {
	inClass := filterGrades(grades, func(g model.Grade) bool { return g.ClassroomID == classroomID })

	var order []model.ID
	seen := make(map[model.ID]bool)
	for _, g := range inClass {
		if !seen[g.StudentID] {
			seen[g.StudentID] = true
			order = append(order, g.StudentID)
		}
	}

	out := make([]model.StudentAverage, 0, len(order))
	for _, id := range order {
		out = append(out, StudentAverage(inClass, id))
	}
	return out
}

// ClassroomAverage is the mean of the classroom's student averages.
func ClassroomAverage(grades []model.Grade, classroomID model.ID) float64 {
	averages := ClassroomAverages(grades, classroomID)
	if len(averages) == 0 {
		return 0
	}
	var sum float64
	for _, a := range averages {
		sum += a.Average
	}
	return sum / float64(len(averages))
}

// Rank orders averages from best to worst. Equal averages keep their input order.
func Rank(averages []model.StudentAverage) []Ranking {
	ranked := make([]Ranking, len(averages))
	for i, a := range averages {
		ranked[i] = Ranking{StudentAverage: a}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Average > ranked[j].Average
	})
	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	return ranked
}

// RankOf returns the student's 1-based rank, or 0 when the student is not ranked.
func RankOf(averages []model.StudentAverage, studentID model.ID) int {
	for _, r := range Rank(averages) {
		if r.StudentID == studentID {
			return r.Rank
		}
	}
	return 0
}

// Round2 rounds to two decimals for display.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func filterGrades(grades []model.Grade, keep func(model.Grade) bool) []model.Grade {
	var out []model.Grade
	for _, g := range grades {
		if keep(g) {
			out = append(out, g)
		}
	}
	return out
}
