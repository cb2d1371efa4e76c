package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/quizzo-go-api/internal/service"
	"github.com/noah-isme/quizzo-go-api/internal/utils"
)

// DashboardHandler serves the authenticated learner's aggregate views.
type DashboardHandler struct {
	service service.DashboardService
	logger  zerolog.Logger
}

// NewDashboardHandler builds a dashboard handler instance.
func NewDashboardHandler(service service.DashboardService, logger zerolog.Logger) *DashboardHandler {
	return &DashboardHandler{
		service: service,
		logger:  logger.With().Str("component", "dashboard_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *DashboardHandler) Register(router fiber.Router) {
	router.Get("/dashboard", h.dashboard)
	router.Get("/stats", h.stats)
}

func (h *DashboardHandler) dashboard(c *fiber.Ctx) error {
	response, err := h.service.GetDashboard(c.UserContext(), userIDFromContext(c))
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err)
	}
	return utils.SendSuccess(c, "dashboard retrieved", response)
}

func (h *DashboardHandler) stats(c *fiber.Ctx) error {
	response, err := h.service.GetUserStats(c.UserContext(), userIDFromContext(c))
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err)
	}
	return utils.SendSuccess(c, "statistics retrieved", response)
}

// PublicHandler serves endpoints reachable without authentication.
type PublicHandler struct {
	service service.DashboardService
	logger  zerolog.Logger
}

// NewPublicHandler builds a public handler instance.
func NewPublicHandler(service service.DashboardService, logger zerolog.Logger) *PublicHandler {
	return &PublicHandler{
		service: service,
		logger:  logger.With().Str("component", "public_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *PublicHandler) Register(router fiber.Router) {
	router.Get("/profiles/:username", h.profile)
}

func (h *PublicHandler) profile(c *fiber.Ctx) error {
	username := strings.TrimSpace(c.Params("username"))
	if username == "" {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid username")
	}

	response, err := h.service.GetPublicProfile(c.UserContext(), username)
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err)
	}
	return utils.SendSuccess(c, "public profile retrieved", response)
}
