package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/lingua-go-api/internal/dto"
	"github.com/noah-isme/lingua-go-api/internal/service"
	"github.com/noah-isme/lingua-go-api/internal/utils"
)

// AuthoringHandler manages generated activity content endpoints.
type AuthoringHandler struct {
	service   service.AuthoringService
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewAuthoringHandler builds an authoring handler instance.
func NewAuthoringHandler(service service.AuthoringService, validator *validator.Validate, logger zerolog.Logger) *AuthoringHandler {
	return &AuthoringHandler{
		service:   service,
		validator: validator,
		logger:    logger.With().Str("component", "authoring_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *AuthoringHandler) Register(router fiber.Router) {
	router.Post("/questions", h.questions)
	router.Post("/prompts", h.prompt)
}

func (h *AuthoringHandler) questions(c *fiber.Ctx) error {
	var payload dto.GenerateQuestionsRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := h.validator.Struct(payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	questions, err := h.service.GenerateQuestions(c.Context(), payload.ActivityType, payload.Level, payload.Topic, payload.Count)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "questions generated", dto.NewGeneratedQuestionsResponse(questions))
}

func (h *AuthoringHandler) prompt(c *fiber.Ctx) error {
	var payload dto.GeneratePromptRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := h.validator.Struct(payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	prompt, err := h.service.GeneratePrompt(c.Context(), payload.ActivityType, payload.Level, payload.Topic)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "prompt generated", dto.NewGeneratedPromptResponse(prompt))
}

func (h *AuthoringHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrAuthoringUnavailable):
		return utils.SendError(c, fiber.StatusBadGateway, "content authoring unavailable")
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg("authoring error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
