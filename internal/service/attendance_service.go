package service

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/campuspass/campuspass-api/internal/dto"
	"github.com/campuspass/campuspass-api/internal/ledger"
)

var (
	// ErrAttendanceNotFound indicates no ledger row matched the composite key.
	ErrAttendanceNotFound = errors.New("attendance record not found")
	// ErrInvalidRecordID indicates a record identifier that does not follow
	// the studentId_date_HH-MM-SS form.
	ErrInvalidRecordID = errors.New("invalid record identifier")
	// ErrInvalidAttendanceStatus indicates a status outside {Present, Absent}.
	ErrInvalidAttendanceStatus = errors.New("invalid status value, must be 'Present' or 'Absent'")
	// ErrInvalidDateFilter indicates a date filter not in YYYY-MM-DD form.
	ErrInvalidDateFilter = errors.New("invalid date format, use YYYY-MM-DD")
	// ErrDuplicateAttendance indicates an append whose composite key already
	// exists in the ledger.
	ErrDuplicateAttendance = errors.New("attendance record already exists for this student, date and time")
)

var dateFilterPattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// StatsInvalidator drops cached statistics after a ledger mutation.
type StatsInvalidator interface {
	Invalidate(ctx context.Context)
}

// AttendanceService is the facade over the attendance ledger.
type AttendanceService interface {
	Record(ctx context.Context, payload dto.AttendanceCreateRequest) (ledger.Record, error)
	Records(ctx context.Context, date string) ([]ledger.Record, error)
	AllRecords(ctx context.Context) ([]ledger.Record, error)
	UpdateStatus(ctx context.Context, payload dto.AttendanceStatusUpdateRequest) (dto.AttendanceUpdateResponse, error)
}

type attendanceService struct {
	store     *ledger.Store
	stats     StatsInvalidator
	validator *validator.Validate
	logger    zerolog.Logger
	now       func() time.Time
}

// NewAttendanceService builds the ledger facade. The invalidator is
// optional; pass nil when statistics caching is disabled.
func NewAttendanceService(store *ledger.Store, stats StatsInvalidator, validate *validator.Validate, logger zerolog.Logger) AttendanceService {
	return &attendanceService{
		store:     store,
		stats:     stats,
		validator: validate,
		logger:    logger.With().Str("component", "attendance_service").Logger(),
		now:       time.Now,
	}
}

// Record appends one captured row. Duplicate (studentId, date, time) keys
// are rejected here, before the ledger is touched: the ledger itself does
// not enforce key uniqueness at append time.
func (s *attendanceService) Record(ctx context.Context, payload dto.AttendanceCreateRequest) (ledger.Record, error) {
	if err := s.validator.Struct(payload); err != nil {
		return ledger.Record{}, err
	}

	if _, exists, err := s.store.Find(payload.StudentID, payload.Date, payload.Time); err != nil {
		return ledger.Record{}, err
	} else if exists {
		return ledger.Record{}, ErrDuplicateAttendance
	}

	record := ledger.Record{
		StudentID: payload.StudentID,
		Name:      payload.Name,
		Date:      payload.Date,
		Time:      payload.Time,
		Subject:   payload.Subject,
		Status:    payload.Status,
	}

	if err := s.store.Append(record); err != nil {
		return ledger.Record{}, err
	}

	record.RecordID = ledger.DisplayID(record.StudentID, record.Date, record.Time)

	s.invalidateStats(ctx)

	return record, nil
}

func (s *attendanceService) Records(ctx context.Context, date string) ([]ledger.Record, error) {
	if date != "" && !dateFilterPattern.MatchString(date) {
		return nil, ErrInvalidDateFilter
	}

	return s.store.List(date)
}

func (s *attendanceService) AllRecords(ctx context.Context) ([]ledger.Record, error) {
	return s.store.ListAll()
}

// UpdateStatus parses the composite record identifier, validates the
// status enum, and rewrites the matching row's status in place.
func (s *attendanceService) UpdateStatus(ctx context.Context, payload dto.AttendanceStatusUpdateRequest) (dto.AttendanceUpdateResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AttendanceUpdateResponse{}, err
	}

	if !ledger.ValidStatus(payload.Status) {
		return dto.AttendanceUpdateResponse{}, ErrInvalidAttendanceStatus
	}

	studentID, date, timeOfDay, err := parseRecordID(payload.RecordID)
	if err != nil {
		return dto.AttendanceUpdateResponse{}, err
	}

	if err := s.store.UpdateStatus(studentID, date, timeOfDay, payload.Status); err != nil {
		if errors.Is(err, ledger.ErrRecordNotFound) {
			return dto.AttendanceUpdateResponse{}, ErrAttendanceNotFound
		}
		return dto.AttendanceUpdateResponse{}, err
	}

	s.invalidateStats(ctx)

	return dto.AttendanceUpdateResponse{
		RecordID:  payload.RecordID,
		StudentID: studentID,
		Date:      date,
		Time:      timeOfDay,
		Status:    payload.Status,
		UpdatedAt: s.now().UTC(),
	}, nil
}

func (s *attendanceService) invalidateStats(ctx context.Context) {
	if s.stats != nil {
		s.stats.Invalidate(ctx)
	}
}

// parseRecordID splits studentId_date_HH-MM-SS into its composite key.
// Time hyphens are restored to colons.
func parseRecordID(recordID string) (studentID, date, timeOfDay string, err error) {
	parts := strings.Split(recordID, "_")
	if len(parts) < 3 {
		return "", "", "", ErrInvalidRecordID
	}

	studentID = parts[0]
	date = parts[1]
	timeOfDay = strings.ReplaceAll(parts[2], "-", ":")

	if studentID == "" || date == "" || timeOfDay == "" {
		return "", "", "", ErrInvalidRecordID
	}

	return studentID, date, timeOfDay, nil
}
