package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/campuspass/campuspass-api/internal/dto"
	"github.com/campuspass/campuspass-api/internal/idgen"
	"github.com/campuspass/campuspass-api/internal/models"
	"github.com/campuspass/campuspass-api/internal/observability"
	"github.com/campuspass/campuspass-api/internal/qr"
	"github.com/campuspass/campuspass-api/internal/repository"
)

// ErrPassNotFound indicates the requested pass does not exist.
var ErrPassNotFound = errors.New("pass not found")

// PassService exposes pass issuance use cases. Issuance is idempotent per
// (event, student) pair: repeat requests return the existing pass.
type PassService interface {
	Issue(ctx context.Context, eventID string, payload dto.PassIssueRequest) (dto.PassIssueResponse, error)
	ListByEvent(ctx context.Context, eventID string) ([]dto.PassResponse, error)
	QRCode(ctx context.Context, passID string, size int) ([]byte, error)
}

type passService struct {
	passes    repository.PassRepository
	events    repository.EventRepository
	students  repository.StudentRepository
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewPassService builds a new pass issuance service.
func NewPassService(passes repository.PassRepository, events repository.EventRepository, students repository.StudentRepository, validate *validator.Validate, logger zerolog.Logger) PassService {
	return &passService{
		passes:    passes,
		events:    events,
		students:  students,
		validator: validate,
		logger:    logger.With().Str("component", "pass_service").Logger(),
	}
}

// Issue creates passes for the given students. Per-student failures are
// collected and never abort the rest of the batch; the only hard failure
// is an unknown event.
func (s *passService) Issue(ctx context.Context, eventID string, payload dto.PassIssueRequest) (dto.PassIssueResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.PassIssueResponse{}, err
	}

	event, err := s.events.GetByEventID(ctx, eventID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.PassIssueResponse{}, ErrEventNotFound
		}
		return dto.PassIssueResponse{}, err
	}

	issued := make([]dto.PassResponse, 0, len(payload.StudentIDs))
	issueErrors := make([]string, 0)

	for _, studentID := range payload.StudentIDs {
		pass, err := s.issueOne(ctx, event, studentID)
		if err != nil {
			issueErrors = append(issueErrors, err.Error())
			observability.PassIssuance().WithLabelValues("failed").Inc()
			continue
		}
		issued = append(issued, dto.NewPassResponse(pass, event.EventID))
	}

	s.logger.Info().
		Str("event_id", event.EventID).
		Int("requested", len(payload.StudentIDs)).
		Int("issued", len(issued)).
		Int("errors", len(issueErrors)).
		Msg("pass batch processed")

	return dto.PassIssueResponse{Issued: issued, Errors: issueErrors}, nil
}

// issueOne serves a single student independently of the rest of the batch.
func (s *passService) issueOne(ctx context.Context, event models.Event, studentID uint) (models.Pass, error) {
	student, err := s.students.GetByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Pass{}, fmt.Errorf("student not found: %d", studentID)
		}
		return models.Pass{}, fmt.Errorf("failed to resolve student %d: %v", studentID, err)
	}

	existing, err := s.passes.FindByEventAndStudent(ctx, event.ID, studentID)
	if err == nil {
		observability.PassIssuance().WithLabelValues("reused").Inc()
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Pass{}, fmt.Errorf("failed to look up pass for student %d: %v", studentID, err)
	}

	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		passID := idgen.NewPassID()

		qrText, err := qr.EncodeEventPass(event.EventID, passID, strconv.FormatUint(uint64(studentID), 10), student.Name)
		if err != nil {
			return models.Pass{}, fmt.Errorf("failed to encode pass payload for student %d: %v", studentID, err)
		}

		pass := models.Pass{
			PassID:    passID,
			EventID:   event.ID,
			StudentID: studentID,
			QRData:    datatypes.JSON(qrText),
		}

		err = s.passes.Create(ctx, &pass)
		if err == nil {
			pass.Student = student
			observability.PassIssuance().WithLabelValues("issued").Inc()
			return pass, nil
		}

		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Either a concurrent issuance won the (event, student) pair or
			// the pass id collided. The pair lookup tells them apart.
			if existing, ferr := s.passes.FindByEventAndStudent(ctx, event.ID, studentID); ferr == nil {
				observability.PassIssuance().WithLabelValues("reused").Inc()
				return existing, nil
			}
			s.logger.Warn().Str("pass_id", passID).Msg("pass id collision, regenerating")
			continue
		}

		return models.Pass{}, fmt.Errorf("failed to create pass for student %d: %v", studentID, err)
	}

	return models.Pass{}, fmt.Errorf("could not allocate a unique pass id for student %d", studentID)
}

func (s *passService) ListByEvent(ctx context.Context, eventID string) ([]dto.PassResponse, error) {
	event, err := s.events.GetByEventID(ctx, eventID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}

	passes, err := s.passes.ListByEvent(ctx, event.ID)
	if err != nil {
		return nil, err
	}

	return dto.NewPassResponseSlice(passes, event.EventID), nil
}

func (s *passService) QRCode(ctx context.Context, passID string, size int) ([]byte, error) {
	pass, err := s.passes.GetByPassID(ctx, passID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPassNotFound
		}
		return nil, err
	}

	return qr.RenderPNG(string(pass.QRData), size)
}
