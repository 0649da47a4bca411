package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/campuspass/campuspass-api/internal/dto"
	"github.com/campuspass/campuspass-api/internal/service"
	"github.com/campuspass/campuspass-api/internal/utils"
)

// PassHandler wires pass issuance HTTP routes.
type PassHandler struct {
	service service.PassService
	logger  zerolog.Logger
}

// NewPassHandler constructs the handler.
func NewPassHandler(service service.PassService, logger zerolog.Logger) *PassHandler {
	return &PassHandler{
		service: service,
		logger:  logger.With().Str("component", "pass_handler").Logger(),
	}
}

// RegisterEventRoutes attaches the event-scoped pass endpoints.
func (h *PassHandler) RegisterEventRoutes(router fiber.Router) {
	router.Post("/:eventId/passes", h.issue)
	router.Get("/:eventId/passes", h.list)
}

// RegisterPassRoutes attaches the pass-scoped endpoints.
func (h *PassHandler) RegisterPassRoutes(router fiber.Router) {
	router.Get("/:passId/qr", h.qrImage)
}

func (h *PassHandler) issue(c *fiber.Ctx) error {
	var payload dto.PassIssueRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.service.Issue(c.Context(), c.Params("eventId"), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "passes generated", result)
}

func (h *PassHandler) list(c *fiber.Ctx) error {
	passes, err := h.service.ListByEvent(c.Context(), c.Params("eventId"))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "passes retrieved", passes)
}

func (h *PassHandler) qrImage(c *fiber.Ctx) error {
	size, err := parseQueryInt(c, "size")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid size")
	}

	png, err := h.service.QRCode(c.Context(), c.Params("passId"), size)
	if err != nil {
		return h.handleError(c, err)
	}

	c.Set(fiber.HeaderContentType, "image/png")
	return c.Send(png)
}

func (h *PassHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrEventNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "event not found")
	case errors.Is(err, service.ErrPassNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "pass not found")
	case isValidationError(err):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	default:
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
