package stats

import (
	"math"
	"testing"

	"klaso-client/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func grade(student, subject string, value, max, coef float64) model.Grade {
	return model.Grade{
		StudentID:   model.ID(student),
		ClassroomID: "c1",
		Subject:     subject,
		Value:       value,
		MaxValue:    max,
		Coefficient: coef,
	}
}

func TestSubjectAverageOf(t *testing.T) {
	tests := []struct {
		name       string
		grades     []model.Grade
		want       float64
		meaningful bool
	}{
		{
			name:       "equal coefficients",
			grades:     []model.Grade{grade("s1", "Math", 15, 20, 1), grade("s1", "Math", 10, 20, 1)},
			want:       12.5,
			meaningful: true,
		},
		{
			name:       "weighted and mixed scales",
			grades:     []model.Grade{grade("s1", "Math", 8, 10, 2), grade("s1", "Math", 50, 100, 1)},
			want:       (16.0*2 + 10.0*1) / 3,
			meaningful: true,
		},
		{
			name:       "zero coefficient",
			grades:     []model.Grade{grade("s1", "Math", 18, 20, 0), grade("s1", "Math", 4, 20, 0)},
			want:       0,
			meaningful: false,
		},
		{
			name:       "non-positive max is skipped",
			grades:     []model.Grade{grade("s1", "Math", 5, 0, 1), grade("s1", "Math", 14, 20, 1)},
			want:       14,
			meaningful: true,
		},
		{
			name:       "other subjects ignored",
			grades:     []model.Grade{grade("s1", "Math", 20, 20, 1), grade("s1", "History", 0, 20, 1)},
			want:       20,
			meaningful: true,
		},
		{
			name:       "no grades",
			grades:     nil,
			want:       0,
			meaningful: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			avg, meaningful := SubjectAverageOf(tt.grades, "Math")
			assert.InDelta(t, tt.want, avg, 1e-9)
			assert.Equal(t, tt.meaningful, meaningful)
			assert.False(t, math.IsNaN(avg))
		})
	}
}

func TestSubjectAverageBounds(t *testing.T) {
	grades := []model.Grade{
		grade("s1", "Math", 0, 20, 3),
		grade("s1", "Math", 20, 20, 0.5),
		grade("s1", "Math", 7, 8, 2),
		grade("s1", "Math", 33, 40, 1),
	}

	for i := 1; i <= len(grades); i++ {
		avg, meaningful := SubjectAverageOf(grades[:i], "Math")
		assert.True(t, meaningful)
		assert.GreaterOrEqual(t, avg, 0.0)
		assert.LessOrEqual(t, avg, Scale)
	}
}

func TestSubjectAveragesKeepsFirstAppearanceOrder(t *testing.T) {
	grades := []model.Grade{
		grade("s1", "Physics", 12, 20, 1),
		grade("s1", "Math", 16, 20, 1),
		grade("s1", "Physics", 14, 20, 1),
		grade("s1", "Art", 10, 20, 0),
	}

	subjects := SubjectAverages(grades)
	require.Len(t, subjects, 3)

	assert.Equal(t, "Physics", subjects[0].Subject)
	assert.InDelta(t, 13, subjects[0].Average, 1e-9)
	assert.Len(t, subjects[0].Grades, 2)

	assert.Equal(t, "Math", subjects[1].Subject)
	assert.InDelta(t, 16, subjects[1].Average, 1e-9)

	assert.Equal(t, "Art", subjects[2].Subject)
	assert.False(t, subjects[2].Meaningful)
	assert.Zero(t, subjects[2].Average)
}

func TestStudentAverage(t *testing.T) {
	t.Run("single subject bulletin", func(t *testing.T) {
		grades := []model.Grade{
			grade("s1", "Math", 15, 20, 1),
			grade("s1", "Math", 10, 20, 1),
		}

		got := StudentAverage(grades, "s1")
		assert.Equal(t, model.ID("s1"), got.StudentID)
		assert.InDelta(t, 12.5, got.Average, 1e-9)
		assert.Equal(t, 2, got.TotalGrades)
	})

	t.Run("subjects are not weighted", func(t *testing.T) {
		grades := []model.Grade{
			grade("s1", "Math", 20, 20, 5),
			grade("s1", "History", 10, 20, 1),
			grade("s2", "History", 0, 20, 1),
		}

		got := StudentAverage(grades, "s1")
		assert.InDelta(t, 15, got.Average, 1e-9)
		assert.Equal(t, 2, got.TotalGrades)
	})

	t.Run("zero coefficient subject is left out", func(t *testing.T) {
		grades := []model.Grade{
			grade("s1", "Math", 12, 20, 1),
			grade("s1", "Art", 20, 20, 0),
		}

		assert.InDelta(t, 12, StudentAverage(grades, "s1").Average, 1e-9)
	})

	t.Run("no grades", func(t *testing.T) {
		got := StudentAverage(nil, "s1")
		assert.Zero(t, got.Average)
		assert.Zero(t, got.TotalGrades)
	})
}

func TestClassroomAverages(t *testing.T) {
	grades := []model.Grade{
		grade("s2", "Math", 10, 20, 1),
		grade("s1", "Math", 16, 20, 1),
		grade("s2", "Math", 14, 20, 1),
		{StudentID: "s9", ClassroomID: "other", Subject: "Math", Value: 20, MaxValue: 20, Coefficient: 1},
	}

	averages := ClassroomAverages(grades, "c1")
	require.Len(t, averages, 2)
	assert.Equal(t, model.ID("s2"), averages[0].StudentID)
	assert.InDelta(t, 12, averages[0].Average, 1e-9)
	assert.Equal(t, model.ID("s1"), averages[1].StudentID)
	assert.InDelta(t, 16, averages[1].Average, 1e-9)

	assert.InDelta(t, 14, ClassroomAverage(grades, "c1"), 1e-9)
	assert.Zero(t, ClassroomAverage(grades, "empty"))
}

func TestRank(t *testing.T) {
	averages := []model.StudentAverage{
		{StudentID: "C", Average: 12},
		{StudentID: "A", Average: 15},
		{StudentID: "B", Average: 15},
	}

	ranked := Rank(averages)
	require.Len(t, ranked, 3)

	var order []model.ID
	for _, r := range ranked {
		order = append(order, r.StudentID)
	}
	assert.Equal(t, []model.ID{"A", "B", "C"}, order)
	assert.Equal(t, 1, ranked[0].Rank)
	assert.Equal(t, 2, ranked[1].Rank)
	assert.Equal(t, 3, ranked[2].Rank)

	// input untouched
	assert.Equal(t, model.ID("C"), averages[0].StudentID)

	assert.Equal(t, 3, RankOf(averages, "C"))
	assert.Equal(t, 0, RankOf(averages, "missing"))
	assert.Empty(t, Rank(nil))
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 12.35, Round2(12.345678))
	assert.Equal(t, 66.67, Round2(200.0/3))
	assert.Equal(t, 0.0, Round2(0))
}
