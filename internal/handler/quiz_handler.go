package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/quizzo-go-api/internal/dto"
	"github.com/noah-isme/quizzo-go-api/internal/service"
	"github.com/noah-isme/quizzo-go-api/internal/utils"
)

// QuizHandler serves the learner-facing quiz endpoints.
type QuizHandler struct {
	quizzes     service.QuizService
	submissions service.SubmissionService
	logger      zerolog.Logger
}

// NewQuizHandler builds a quiz handler instance.
func NewQuizHandler(quizzes service.QuizService, submissions service.SubmissionService, logger zerolog.Logger) *QuizHandler {
	return &QuizHandler{
		quizzes:     quizzes,
		submissions: submissions,
		logger:      logger.With().Str("component", "quiz_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *QuizHandler) Register(router fiber.Router) {
	router.Get("/quizzes/upcoming", h.upcoming)
	router.Get("/quizzes/open", h.open)
	router.Get("/quizzes/:id", h.metadata)
	router.Get("/quizzes/:id/questions", h.questions)
	router.Post("/quizzes/:id/submit", h.submit)
	router.Get("/quizzes/:id/result", h.result)
	router.Get("/chapters/:id/quizzes", h.byChapter)
}

func (h *QuizHandler) upcoming(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	response, err := h.quizzes.ListUpcoming(c.UserContext(), userID)
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err)
	}
	return utils.SendSuccess(c, "upcoming quizzes retrieved", response)
}

func (h *QuizHandler) open(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	response, err := h.quizzes.ListOpen(c.UserContext(), userID)
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err)
	}
	return utils.SendSuccess(c, "open quizzes retrieved", response)
}

func (h *QuizHandler) byChapter(c *fiber.Ctx) error {
	chapterID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	response, err := h.quizzes.ListByChapter(c.UserContext(), userIDFromContext(c), chapterID)
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err)
	}
	return utils.SendSuccess(c, "chapter quizzes retrieved", response)
}

func (h *QuizHandler) metadata(c *fiber.Ctx) error {
	quizID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	response, err := h.quizzes.GetMetadata(c.UserContext(), userIDFromContext(c), quizID)
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err)
	}
	return utils.SendSuccess(c, "quiz retrieved", response)
}

func (h *QuizHandler) questions(c *fiber.Ctx) error {
	quizID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	response, err := h.quizzes.GetQuestions(c.UserContext(), userIDFromContext(c), quizID)
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err)
	}
	return utils.SendSuccess(c, "quiz questions retrieved", response)
}

func (h *QuizHandler) submit(c *fiber.Ctx) error {
	quizID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.SubmitRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	response, err := h.submissions.Submit(c.UserContext(), userIDFromContext(c), quizID, payload)
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err)
	}
	return utils.SendSuccess(c, "quiz submitted", response)
}

func (h *QuizHandler) result(c *fiber.Ctx) error {
	quizID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	response, err := h.submissions.GetResult(c.UserContext(), userIDFromContext(c), quizID)
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err)
	}
	return utils.SendSuccess(c, "quiz result retrieved", response)
}
