package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/campuspass/campuspass-api/internal/dto"
	"github.com/campuspass/campuspass-api/internal/repository"
)

// StudentService exposes the roster used by the issuance picker.
type StudentService interface {
	List(ctx context.Context) ([]dto.StudentResponse, error)
}

type studentService struct {
	repo   repository.StudentRepository
	logger zerolog.Logger
}

// NewStudentService builds a new student roster service.
func NewStudentService(repo repository.StudentRepository, logger zerolog.Logger) StudentService {
	return &studentService{
		repo:   repo,
		logger: logger.With().Str("component", "student_service").Logger(),
	}
}

func (s *studentService) List(ctx context.Context) ([]dto.StudentResponse, error) {
	students, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	return dto.NewStudentResponseSlice(students), nil
}
