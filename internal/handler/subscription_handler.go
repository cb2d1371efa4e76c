package handler

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/quizzo-go-api/internal/dto"
	"github.com/noah-isme/quizzo-go-api/internal/service"
	"github.com/noah-isme/quizzo-go-api/internal/utils"
)

// SubscriptionHandler serves the chapter subscription endpoints.
type SubscriptionHandler struct {
	service   service.SubscriptionService
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewSubscriptionHandler builds a subscription handler instance.
func NewSubscriptionHandler(service service.SubscriptionService, validate *validator.Validate, logger zerolog.Logger) *SubscriptionHandler {
	return &SubscriptionHandler{
		service:   service,
		validator: validate,
		logger:    logger.With().Str("component", "subscription_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *SubscriptionHandler) Register(router fiber.Router) {
	router.Get("/subscriptions", h.list)
	router.Post("/subscriptions", h.subscribe)
	router.Delete("/subscriptions/:chapterID", h.unsubscribe)
}

func (h *SubscriptionHandler) list(c *fiber.Ctx) error {
	response, err := h.service.List(c.UserContext(), userIDFromContext(c))
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err)
	}
	return utils.SendSuccess(c, "subscriptions retrieved", response)
}

func (h *SubscriptionHandler) subscribe(c *fiber.Ctx) error {
	var payload dto.SubscribeRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := h.validator.Struct(payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	response, err := h.service.Subscribe(c.UserContext(), userIDFromContext(c), payload.ChapterID)
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err)
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "subscribed to chapter", response)
}

func (h *SubscriptionHandler) unsubscribe(c *fiber.Ctx) error {
	chapterID, err := parseUintParam(c, "chapterID")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.Unsubscribe(c.UserContext(), userIDFromContext(c), chapterID); err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err)
	}
	return utils.SendSuccess(c, "unsubscribed from chapter", nil)
}
