package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/lingua-go-api/internal/dto"
	"github.com/noah-isme/lingua-go-api/internal/service"
	"github.com/noah-isme/lingua-go-api/internal/utils"
)

// StudentHandler exposes per-student pipeline views: recurring challenges and
// notifications.
type StudentHandler struct {
	mistakes      service.MistakeService
	notifications service.NotificationService
	logger        zerolog.Logger
}

// NewStudentHandler builds a student handler instance.
func NewStudentHandler(mistakes service.MistakeService, notifications service.NotificationService, logger zerolog.Logger) *StudentHandler {
	return &StudentHandler{
		mistakes:      mistakes,
		notifications: notifications,
		logger:        logger.With().Str("component", "student_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *StudentHandler) Register(router fiber.Router) {
	router.Get("/:id/challenges", h.challenges)
	router.Get("/:id/notifications", h.listNotifications)
}

func (h *StudentHandler) challenges(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	challenges, err := h.mistakes.DetectRecurringChallenges(c.Context(), id)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("challenge analysis error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}

	return utils.SendSuccess(c, "challenges retrieved", dto.NewChallengesResponse(challenges))
}

func (h *StudentHandler) listNotifications(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	limit, err := parseQueryInt(c, "limit")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid limit")
	}
	offset, err := parseQueryInt(c, "offset")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid offset")
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	notifications, err := h.notifications.ListByStudent(c.Context(), id, limit, offset)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("notification listing error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}

	return utils.SendSuccess(c, "notifications retrieved", dto.NewNotificationsResponse(notifications))
}
