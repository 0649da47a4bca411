package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/campuspass/campuspass-api/internal/dto"
	"github.com/campuspass/campuspass-api/internal/service"
	"github.com/campuspass/campuspass-api/internal/utils"
)

// AttendanceHandler wires the attendance ledger and statistics routes.
type AttendanceHandler struct {
	attendance service.AttendanceService
	stats      service.StatsService
	logger     zerolog.Logger
}

// NewAttendanceHandler constructs the handler.
func NewAttendanceHandler(attendance service.AttendanceService, stats service.StatsService, logger zerolog.Logger) *AttendanceHandler {
	return &AttendanceHandler{
		attendance: attendance,
		stats:      stats,
		logger:     logger.With().Str("component", "attendance_handler").Logger(),
	}
}

// Register attaches attendance endpoints to the router group.
func (h *AttendanceHandler) Register(router fiber.Router) {
	router.Post("", h.record)
	router.Get("", h.records)
	router.Get("/all", h.allRecords)
	router.Put("/status", h.updateStatus)
	router.Get("/statistics", h.statistics)
}

func (h *AttendanceHandler) record(c *fiber.Ctx) error {
	var payload dto.AttendanceCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	record, err := h.attendance.Record(c.Context(), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "attendance recorded", record)
}

func (h *AttendanceHandler) records(c *fiber.Ctx) error {
	records, err := h.attendance.Records(c.Context(), c.Query("date"))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "attendance records retrieved", fiber.Map{
		"records": records,
		"count":   len(records),
	})
}

func (h *AttendanceHandler) allRecords(c *fiber.Ctx) error {
	records, err := h.attendance.AllRecords(c.Context())
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "attendance records retrieved", fiber.Map{
		"records": records,
		"count":   len(records),
	})
}

func (h *AttendanceHandler) updateStatus(c *fiber.Ctx) error {
	var payload dto.AttendanceStatusUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.attendance.UpdateStatus(c.Context(), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "attendance status updated successfully", result)
}

func (h *AttendanceHandler) statistics(c *fiber.Ctx) error {
	date := c.Query("date")
	subject := c.Query("subject")

	statistics, err := h.stats.Statistics(c.Context(), date, subject)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "attendance statistics generated", fiber.Map{
		"statistics": statistics,
		"filters":    dto.StatisticsFilters{Date: date, Subject: subject},
	})
}

func (h *AttendanceHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrAttendanceNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "attendance record not found for the specified student, date, and time")
	case errors.Is(err, service.ErrInvalidRecordID),
		errors.Is(err, service.ErrInvalidAttendanceStatus),
		errors.Is(err, service.ErrInvalidDateFilter):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrDuplicateAttendance):
		return utils.SendError(c, fiber.StatusConflict, err.Error())
	case isValidationError(err):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	default:
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
