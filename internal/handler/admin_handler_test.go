package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/quizzo-go-api/internal/dto"
	"github.com/noah-isme/quizzo-go-api/internal/handler"
	"github.com/noah-isme/quizzo-go-api/internal/models"
	"github.com/noah-isme/quizzo-go-api/internal/service"
)

type stubAdminContentService struct {
	quiz     models.Quiz
	question dto.QuestionResponse
	err      error
	lastID   uint
	deletes  int
}

func (s *stubAdminContentService) CreateQuiz(_ context.Context, payload dto.QuizCreateRequest) (models.Quiz, error) {
	return s.quiz, s.err
}

func (s *stubAdminContentService) UpdateQuiz(_ context.Context, quizID uint, payload dto.QuizUpdateRequest) (models.Quiz, error) {
	s.lastID = quizID
	return s.quiz, s.err
}

func (s *stubAdminContentService) DeleteQuiz(_ context.Context, quizID uint) error {
	s.lastID = quizID
	s.deletes++
	return s.err
}

func (s *stubAdminContentService) CreateQuestion(_ context.Context, payload dto.QuestionCreateRequest) (dto.QuestionResponse, error) {
	return s.question, s.err
}

func (s *stubAdminContentService) UpdateQuestion(_ context.Context, questionID uint, payload dto.QuestionUpdateRequest) (dto.QuestionResponse, error) {
	s.lastID = questionID
	return s.question, s.err
}

func (s *stubAdminContentService) DeleteQuestion(_ context.Context, questionID uint) error {
	s.lastID = questionID
	s.deletes++
	return s.err
}

func (s *stubAdminContentService) ListQuestions(_ context.Context, quizID uint) ([]dto.QuestionResponse, error) {
	s.lastID = quizID
	return []dto.QuestionResponse{s.question}, s.err
}

type stubAdminStatsService struct {
	stats     dto.AdminStatsResponse
	aggregate dto.QuizAggregateResponse
	err       error
}

func (s *stubAdminStatsService) GetStats(_ context.Context) (dto.AdminStatsResponse, error) {
	return s.stats, s.err
}

func (s *stubAdminStatsService) GetQuizAggregate(_ context.Context, quizID uint) (dto.QuizAggregateResponse, error) {
	return s.aggregate, s.err
}

type stubRevaluationService struct {
	summary  dto.RevaluationSummary
	err      error
	lastQuiz uint
}

func (s *stubRevaluationService) Revaluate(_ context.Context, quizID uint) (dto.RevaluationSummary, error) {
	s.lastQuiz = quizID
	return s.summary, s.err
}

var (
	_ service.AdminContentService = (*stubAdminContentService)(nil)
	_ service.AdminStatsService   = (*stubAdminStatsService)(nil)
	_ service.RevaluationService  = (*stubRevaluationService)(nil)
)

func newAdminApp(content *stubAdminContentService, stats *stubAdminStatsService, revaluation *stubRevaluationService) *fiber.App {
	app := fiber.New()
	group := app.Group("/api/v1/admin", func(c *fiber.Ctx) error {
		c.Locals("user_id", uint(1))
		c.Locals("user_role", models.RoleAdmin)
		return c.Next()
	})
	handler.NewAdminHandler(content, stats, revaluation, zerolog.Nop()).Register(group)
	return app
}

func TestAdminHandlerCreateQuizReturns201(t *testing.T) {
	content := &stubAdminContentService{quiz: models.Quiz{Title: "Graphs"}}
	app := newAdminApp(content, &stubAdminStatsService{}, &stubRevaluationService{})

	body := []byte(`{"chapter_id":4,"title":"Graphs","scheduled":false}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/quizzes", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var payload struct {
		Success bool        `json:"success"`
		Data    models.Quiz `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	resp.Body.Close()
	require.True(t, payload.Success)
	require.Equal(t, "Graphs", payload.Data.Title)
}

func TestAdminHandlerCreateQuizMapsScheduleAndKeyErrors(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"bad schedule", service.ErrInvalidSchedule, fiber.StatusBadRequest},
		{"unknown chapter", service.ErrChapterNotFound, fiber.StatusNotFound},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := newAdminApp(&stubAdminContentService{err: tc.err}, &stubAdminStatsService{}, &stubRevaluationService{})

			req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/quizzes", bytes.NewReader([]byte(`{"chapter_id":1,"title":"x"}`)))
			req.Header.Set("Content-Type", "application/json")
			resp, err := app.Test(req, -1)
			require.NoError(t, err)
			require.Equal(t, tc.status, resp.StatusCode)
			resp.Body.Close()
		})
	}
}

func TestAdminHandlerCreateQuestionRejectsBadAnswerKey(t *testing.T) {
	app := newAdminApp(&stubAdminContentService{err: service.ErrInvalidAnswerKey}, &stubAdminStatsService{}, &stubRevaluationService{})

	body := []byte(`{"quiz_id":1,"statement":"2+2?","type":"MCQ","options":["3","4"],"correct_answer":"b"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/questions", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestAdminHandlerRevaluateReportsSummary(t *testing.T) {
	revaluation := &stubRevaluationService{summary: dto.RevaluationSummary{
		QuizID:             9,
		UsersRevaluated:    3,
		SubmissionsUpdated: 5,
	}}
	app := newAdminApp(&stubAdminContentService{}, &stubAdminStatsService{}, revaluation)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/quizzes/9/revaluate", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, uint(9), revaluation.lastQuiz)

	var payload struct {
		Success bool                   `json:"success"`
		Data    dto.RevaluationSummary `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	resp.Body.Close()
	require.Equal(t, 3, payload.Data.UsersRevaluated)
	require.Equal(t, 5, payload.Data.SubmissionsUpdated)
}

func TestAdminHandlerDeleteQuestionUsesPathID(t *testing.T) {
	content := &stubAdminContentService{}
	app := newAdminApp(content, &stubAdminStatsService{}, &stubRevaluationService{})

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/admin/questions/42", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	resp.Body.Close()
	require.Equal(t, uint(42), content.lastID)
	require.Equal(t, 1, content.deletes)
}

func TestAdminHandlerStatsAndAggregate(t *testing.T) {
	stats := &stubAdminStatsService{
		stats:     dto.AdminStatsResponse{TotalUsers: 12, TotalQuizzes: 4},
		aggregate: dto.QuizAggregateResponse{QuizID: 4, Participants: 2, AveragePercentage: 55.5},
	}
	app := newAdminApp(&stubAdminContentService{}, stats, &stubRevaluationService{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/stats", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var statsPayload struct {
		Data dto.AdminStatsResponse `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&statsPayload))
	resp.Body.Close()
	require.Equal(t, int64(12), statsPayload.Data.TotalUsers)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/admin/quizzes/4/aggregate", nil)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var aggPayload struct {
		Data dto.QuizAggregateResponse `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&aggPayload))
	resp.Body.Close()
	require.Equal(t, 2, aggPayload.Data.Participants)
	require.InDelta(t, 55.5, aggPayload.Data.AveragePercentage, 0.001)
}
