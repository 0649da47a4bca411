package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/campuspass/campuspass-api/internal/dto"
	"github.com/campuspass/campuspass-api/internal/service"
	"github.com/campuspass/campuspass-api/internal/utils"
)

// ScanHandler wires the QR validation endpoint.
type ScanHandler struct {
	service service.ScanService
	logger  zerolog.Logger
}

// NewScanHandler constructs the handler.
func NewScanHandler(service service.ScanService, logger zerolog.Logger) *ScanHandler {
	return &ScanHandler{
		service: service,
		logger:  logger.With().Str("component", "scan_handler").Logger(),
	}
}

// Register attaches the scan endpoint to the router group.
func (h *ScanHandler) Register(router fiber.Router) {
	router.Post("", h.scan)
}

// scan validates raw QR text on behalf of the authenticated scanner. The
// result is always a structured envelope; invalid credentials are not
// error responses.
func (h *ScanHandler) scan(c *fiber.Ctx) error {
	var payload dto.ScanRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	if payload.QRData == "" {
		return utils.SendError(c, fiber.StatusBadRequest, "qr_data is required")
	}

	result, err := h.service.Validate(c.Context(), payload.QRData, userIDFromContext(c))
	if err != nil {
		h.logger.Error().Err(err).Msg("qr validation failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "validation error")
	}

	return c.Status(fiber.StatusOK).JSON(result)
}
