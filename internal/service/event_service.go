package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/campuspass/campuspass-api/internal/dto"
	"github.com/campuspass/campuspass-api/internal/idgen"
	"github.com/campuspass/campuspass-api/internal/models"
	"github.com/campuspass/campuspass-api/internal/qr"
	"github.com/campuspass/campuspass-api/internal/repository"
)

// ErrEventNotFound indicates the requested event does not exist.
var ErrEventNotFound = errors.New("event not found")

// ErrInvalidEventStatus indicates a status value outside the allowed enum.
var ErrInvalidEventStatus = errors.New("invalid event status")

// Generated identifiers are uniqueness candidates only; the database
// constraint is authoritative and collisions trigger regeneration.
const maxIDAttempts = 3

// EventService exposes event domain use cases.
type EventService interface {
	Create(ctx context.Context, payload dto.EventCreateRequest, creatorID uint) (dto.EventResponse, error)
	Get(ctx context.Context, eventID string) (dto.EventResponse, error)
	ListByCreator(ctx context.Context, creatorID uint) ([]dto.EventResponse, error)
	UpdateStatus(ctx context.Context, eventID, status string) (dto.EventResponse, error)
	QRCode(ctx context.Context, eventID string, size int) ([]byte, error)
}

type eventService struct {
	repo      repository.EventRepository
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewEventService builds a new event service.
func NewEventService(repo repository.EventRepository, validate *validator.Validate, logger zerolog.Logger) EventService {
	return &eventService{
		repo:      repo,
		validator: validate,
		logger:    logger.With().Str("component", "event_service").Logger(),
	}
}

func (s *eventService) Create(ctx context.Context, payload dto.EventCreateRequest, creatorID uint) (dto.EventResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.EventResponse{}, err
	}

	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		eventID := idgen.NewEventID()

		qrText, err := qr.EncodeEventInfo(eventID, payload.Title, payload.Date, payload.Time)
		if err != nil {
			return dto.EventResponse{}, err
		}

		event := models.Event{
			EventID:     eventID,
			Title:       payload.Title,
			Description: payload.Description,
			Date:        payload.Date,
			Time:        payload.Time,
			Venue:       payload.Venue,
			Organizer:   payload.Organizer,
			QRData:      datatypes.JSON(qrText),
			Status:      models.EventStatusActive,
			CreatedBy:   creatorID,
		}

		if err := s.repo.Create(ctx, &event); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				s.logger.Warn().Str("event_id", eventID).Msg("event id collision, regenerating")
				continue
			}
			return dto.EventResponse{}, err
		}

		s.logger.Info().Str("event_id", eventID).Uint("created_by", creatorID).Msg("event created")

		return dto.NewEventResponse(event), nil
	}

	return dto.EventResponse{}, fmt.Errorf("could not allocate a unique event id after %d attempts", maxIDAttempts)
}

func (s *eventService) Get(ctx context.Context, eventID string) (dto.EventResponse, error) {
	event, err := s.repo.GetByEventID(ctx, eventID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.EventResponse{}, ErrEventNotFound
		}
		return dto.EventResponse{}, err
	}

	return dto.NewEventResponse(event), nil
}

func (s *eventService) ListByCreator(ctx context.Context, creatorID uint) ([]dto.EventResponse, error) {
	events, err := s.repo.ListByCreator(ctx, creatorID)
	if err != nil {
		return nil, err
	}

	return dto.NewEventResponseSlice(events), nil
}

func (s *eventService) UpdateStatus(ctx context.Context, eventID, status string) (dto.EventResponse, error) {
	if !models.ValidEventStatus(status) {
		return dto.EventResponse{}, ErrInvalidEventStatus
	}

	if err := s.repo.UpdateStatus(ctx, eventID, status); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.EventResponse{}, ErrEventNotFound
		}
		return dto.EventResponse{}, err
	}

	s.logger.Info().Str("event_id", eventID).Str("status", status).Msg("event status updated")

	return s.Get(ctx, eventID)
}

func (s *eventService) QRCode(ctx context.Context, eventID string, size int) ([]byte, error) {
	event, err := s.repo.GetByEventID(ctx, eventID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}

	return qr.RenderPNG(string(event.QRData), size)
}
