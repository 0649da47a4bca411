package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/campuspass/campuspass-api/internal/dto"
	"github.com/campuspass/campuspass-api/internal/models"
	"github.com/campuspass/campuspass-api/internal/observability"
	"github.com/campuspass/campuspass-api/internal/qr"
	"github.com/campuspass/campuspass-api/internal/repository"
)

// RedeemedSubject is the NATS subject redemption events are published on.
const RedeemedSubject = "campuspass.pass.redeemed"

// ScanService validates raw QR text submitted by a scanner. An event_info
// payload is a read-only lookup; an event_pass payload consumes the pass's
// single use. Decode and lookup failures are returned as structured
// invalid results, never as errors.
type ScanService interface {
	Validate(ctx context.Context, rawQR string, scannerID uint) (dto.ScanResult, error)
}

type scanService struct {
	events repository.EventRepository
	passes repository.PassRepository
	nats   *nats.Conn
	logger zerolog.Logger
	tracer trace.Tracer
	now    func() time.Time
}

// redeemedEvent is the message published after a successful redemption.
type redeemedEvent struct {
	PassID    string    `json:"pass_id"`
	EventID   string    `json:"event_id"`
	StudentID uint      `json:"student_id"`
	ScannedBy uint      `json:"scanned_by"`
	UsedAt    time.Time `json:"used_at"`
}

// NewScanService builds a new scan service. The NATS connection is
// optional; redemption events are skipped when it is nil.
func NewScanService(events repository.EventRepository, passes repository.PassRepository, natsConn *nats.Conn, logger zerolog.Logger) ScanService {
	return &scanService{
		events: events,
		passes: passes,
		nats:   natsConn,
		logger: logger.With().Str("component", "scan_service").Logger(),
		tracer: otel.Tracer("github.com/campuspass/campuspass-api/internal/service/scan"),
		now:    time.Now,
	}
}

func (s *scanService) Validate(ctx context.Context, rawQR string, scannerID uint) (dto.ScanResult, error) {
	ctx, span := s.tracer.Start(ctx, "scan.validate")
	defer span.End()

	payload, err := qr.Decode(rawQR)
	if err != nil {
		span.SetAttributes(attribute.String("scan.outcome", "invalid_format"))
		observability.PassRedemption().WithLabelValues("invalid_format").Inc()

		message := "invalid QR code format"
		if errors.Is(err, qr.ErrUnknownPayloadType) {
			message = "unknown QR code type"
		}

		return dto.ScanResult{Valid: false, Reason: dto.ScanReasonInvalidFormat, Message: message}, nil
	}

	switch {
	case payload.Pass != nil:
		return s.redeemPass(ctx, span, payload.Pass, scannerID)
	default:
		return s.lookupEvent(ctx, span, payload.Info)
	}
}

func (s *scanService) lookupEvent(ctx context.Context, span trace.Span, info *qr.EventInfo) (dto.ScanResult, error) {
	event, err := s.events.GetByEventID(ctx, info.EventID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			span.SetAttributes(attribute.String("scan.outcome", "not_found"))
			observability.PassRedemption().WithLabelValues("not_found").Inc()
			return dto.ScanResult{Valid: false, Reason: dto.ScanReasonNotFound, Message: "event not found"}, nil
		}
		return dto.ScanResult{}, err
	}

	span.SetAttributes(attribute.String("scan.outcome", "event_info"))

	return dto.ScanResult{
		Valid:   true,
		Message: "event QR code",
		Data: dto.EventInfoData{
			EventTitle: event.Title,
			EventDate:  event.Date,
			EventTime:  event.Time,
			Venue:      event.Venue,
			Organizer:  event.Organizer,
		},
	}, nil
}

func (s *scanService) redeemPass(ctx context.Context, span trace.Span, credential *qr.EventPass, scannerID uint) (dto.ScanResult, error) {
	usedAt := s.now()

	pass, err := s.passes.Redeem(ctx, credential.PassID, scannerID, usedAt)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrPassAlreadyRedeemed):
			span.SetAttributes(attribute.String("scan.outcome", "already_used"))
			observability.PassRedemption().WithLabelValues("already_used").Inc()
			return dto.ScanResult{Valid: false, Reason: dto.ScanReasonAlreadyUsed, Message: "pass already used"}, nil
		case errors.Is(err, gorm.ErrRecordNotFound):
			span.SetAttributes(attribute.String("scan.outcome", "not_found"))
			observability.PassRedemption().WithLabelValues("not_found").Inc()
			return dto.ScanResult{Valid: false, Reason: dto.ScanReasonNotFound, Message: "invalid pass"}, nil
		default:
			return dto.ScanResult{}, err
		}
	}

	event, err := s.events.GetByID(ctx, pass.EventID)
	if err != nil {
		// The pass is already consumed at this point; report the
		// redemption rather than failing the scan.
		s.logger.Error().Err(err).Str("pass_id", pass.PassID).Msg("failed to resolve event for redeemed pass")
		event = models.Event{}
	}

	span.SetAttributes(attribute.String("scan.outcome", "success"))
	observability.PassRedemption().WithLabelValues("success").Inc()

	s.publishRedeemed(pass, event, scannerID, usedAt)

	s.logger.Info().
		Str("pass_id", pass.PassID).
		Str("event_id", event.EventID).
		Uint("scanned_by", scannerID).
		Msg("pass redeemed")

	return dto.ScanResult{
		Valid:   true,
		Message: "pass validated successfully",
		Data: dto.PassScanData{
			StudentName:  pass.Student.Name,
			StudentEmail: pass.Student.Email,
			EventTitle:   event.Title,
			EventDate:    event.Date,
			EventTime:    event.Time,
			Venue:        event.Venue,
		},
	}, nil
}

// publishRedeemed notifies downstream consumers. Publish failures are
// logged and never affect the scan outcome.
func (s *scanService) publishRedeemed(pass models.Pass, event models.Event, scannerID uint, usedAt time.Time) {
	if s.nats == nil {
		return
	}

	message, err := json.Marshal(redeemedEvent{
		PassID:    pass.PassID,
		EventID:   event.EventID,
		StudentID: pass.StudentID,
		ScannedBy: scannerID,
		UsedAt:    usedAt,
	})
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to encode redemption event")
		return
	}

	if err := s.nats.Publish(RedeemedSubject, message); err != nil {
		s.logger.Warn().Err(err).Str("pass_id", pass.PassID).Msg("failed to publish redemption event")
	}
}
