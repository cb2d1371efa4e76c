package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/quizzo-go-api/internal/dto"
	"github.com/noah-isme/quizzo-go-api/internal/service"
	"github.com/noah-isme/quizzo-go-api/internal/utils"
)

// AdminHandler serves the authoring and aggregate endpoints restricted to
// administrators.
type AdminHandler struct {
	content     service.AdminContentService
	stats       service.AdminStatsService
	revaluation service.RevaluationService
	logger      zerolog.Logger
}

// NewAdminHandler builds an admin handler instance.
func NewAdminHandler(
	content service.AdminContentService,
	stats service.AdminStatsService,
	revaluation service.RevaluationService,
	logger zerolog.Logger,
) *AdminHandler {
	return &AdminHandler{
		content:     content,
		stats:       stats,
		revaluation: revaluation,
		logger:      logger.With().Str("component", "admin_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *AdminHandler) Register(router fiber.Router) {
	router.Get("/stats", h.platformStats)

	router.Post("/quizzes", h.createQuiz)
	router.Put("/quizzes/:id", h.updateQuiz)
	router.Delete("/quizzes/:id", h.deleteQuiz)
	router.Get("/quizzes/:id/questions", h.listQuestions)
	router.Get("/quizzes/:id/aggregate", h.quizAggregate)
	router.Post("/quizzes/:id/revaluate", h.revaluate)

	router.Post("/questions", h.createQuestion)
	router.Put("/questions/:id", h.updateQuestion)
	router.Delete("/questions/:id", h.deleteQuestion)
}

func (h *AdminHandler) platformStats(c *fiber.Ctx) error {
	response, err := h.stats.GetStats(c.UserContext())
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err)
	}
	return utils.SendSuccess(c, "platform statistics retrieved", response)
}

func (h *AdminHandler) createQuiz(c *fiber.Ctx) error {
	var payload dto.QuizCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	quiz, err := h.content.CreateQuiz(c.UserContext(), payload)
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err)
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "quiz created", quiz)
}

func (h *AdminHandler) updateQuiz(c *fiber.Ctx) error {
	quizID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.QuizUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	quiz, err := h.content.UpdateQuiz(c.UserContext(), quizID, payload)
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err)
	}
	return utils.SendSuccess(c, "quiz updated", quiz)
}

func (h *AdminHandler) deleteQuiz(c *fiber.Ctx) error {
	quizID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.content.DeleteQuiz(c.UserContext(), quizID); err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err)
	}
	return utils.SendSuccess(c, "quiz deleted", nil)
}

func (h *AdminHandler) listQuestions(c *fiber.Ctx) error {
	quizID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	questions, err := h.content.ListQuestions(c.UserContext(), quizID)
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err)
	}
	return utils.SendSuccess(c, "quiz questions retrieved", questions)
}

func (h *AdminHandler) quizAggregate(c *fiber.Ctx) error {
	quizID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	response, err := h.stats.GetQuizAggregate(c.UserContext(), quizID)
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err)
	}
	return utils.SendSuccess(c, "quiz aggregate retrieved", response)
}

func (h *AdminHandler) revaluate(c *fiber.Ctx) error {
	quizID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	summary, err := h.revaluation.Revaluate(c.UserContext(), quizID)
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err)
	}
	return utils.SendSuccess(c, "quiz revaluated", summary)
}

func (h *AdminHandler) createQuestion(c *fiber.Ctx) error {
	var payload dto.QuestionCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	question, err := h.content.CreateQuestion(c.UserContext(), payload)
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err)
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "question created", question)
}

func (h *AdminHandler) updateQuestion(c *fiber.Ctx) error {
	questionID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.QuestionUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	question, err := h.content.UpdateQuestion(c.UserContext(), questionID, payload)
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err)
	}
	return utils.SendSuccess(c, "question updated", question)
}

func (h *AdminHandler) deleteQuestion(c *fiber.Ctx) error {
	questionID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.content.DeleteQuestion(c.UserContext(), questionID); err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err)
	}
	return utils.SendSuccess(c, "question deleted", nil)
}
