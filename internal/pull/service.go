// Package pull preloads the repositories a screen or a report depends on.
package pull

import (
	"context"
	stderrors "errors"
	"fmt"

	"klaso-client/internal/logger"
	"klaso-client/internal/model"
	"klaso-client/internal/repository"

	"github.com/rs/zerolog"
)

// Result counts what each repository received.
type Result struct {
	Establishments int `json:"establishments,omitempty"`
	Classrooms     int `json:"classrooms,omitempty"`
	Students       int `json:"students,omitempty"`
	Grades         int `json:"grades,omitempty"`
	Attendances    int `json:"attendances,omitempty"`
	Evaluations    int `json:"evaluations,omitempty"`
}

type Service struct {
	repos *repository.Set
	log   zerolog.Logger
}

func NewService(repos *repository.Set) *Service {
	return &Service{
		repos: repos,
		log:   logger.Get(),
	}
}

// LoadEstablishments loads the current user's establishments.
func (s *Service) LoadEstablishments(ctx context.Context) (Result, error) {
	s.log.Info().Msg("Loading establishments")

	items, err := s.repos.Establishments.LoadOwned(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("failed to load establishments: %w", err)
	}

	s.log.Info().Int("count", len(items)).Msg("Establishments loaded")
	return Result{Establishments: len(items)}, nil
}

// LoadEstablishment loads the classrooms of one establishment.
func (s *Service) LoadEstablishment(ctx context.Context, establishmentID model.ID) (Result, error) {
	s.log.Info().Str("establishment_id", establishmentID.String()).Msg("Loading classrooms")

	items, err := s.repos.Classrooms.Load(ctx, establishmentID)
	if err != nil {
		return Result{}, fmt.Errorf("failed to load classrooms: %w", err)
	}

	s.log.Info().Int("count", len(items)).Msg("Classrooms loaded")
	return Result{Classrooms: len(items)}, nil
}

// LoadClassroom loads everything a bulletin or class summary of the classroom
// reads. Every load is attempted; failures are joined and the counts of the
// loads that succeeded are still returned.
func (s *Service) LoadClassroom(ctx context.Context, classroomID model.ID) (Result, error) {
	log := s.log.With().Str("classroom_id", classroomID.String()).Logger()
	log.Info().Msg("Loading classroom")

	var (
		result Result
		errs   []error
	)

	students, err := s.repos.Students.Load(ctx, classroomID)
	if err != nil {
		errs = append(errs, fmt.Errorf("failed to load students: %w", err))
	}
	result.Students = len(students)

	grades, err := s.repos.Grades.Load(ctx, classroomID)
	if err != nil {
		errs = append(errs, fmt.Errorf("failed to load grades: %w", err))
	}
	result.Grades = len(grades)

	attendances, err := s.repos.Attendances.Load(ctx, classroomID)
	if err != nil {
		errs = append(errs, fmt.Errorf("failed to load attendances: %w", err))
	}
	result.Attendances = len(attendances)

	evaluations, err := s.repos.Evaluations.Load(ctx, classroomID)
	if err != nil {
		errs = append(errs, fmt.Errorf("failed to load evaluations: %w", err))
	}
	result.Evaluations = len(evaluations)

	if len(errs) > 0 {
		log.Error().Int("failed", len(errs)).Msg("Classroom load incomplete")
		return result, stderrors.Join(errs...)
	}

	log.Info().
		Int("students", result.Students).
		Int("grades", result.Grades).
		Int("attendances", result.Attendances).
		Int("evaluations", result.Evaluations).
		Msg("Classroom loaded")
	return result, nil
}

// LoadAll loads the establishment's classrooms and then the given classroom.
func (s *Service) LoadAll(ctx context.Context, establishmentID, classroomID model.ID) (Result, error) {
	est, err := s.LoadEstablishment(ctx, establishmentID)
	if err != nil {
		return est, err
	}

	result, err := s.LoadClassroom(ctx, classroomID)
	result.Classrooms = est.Classrooms
	return result, err
}
