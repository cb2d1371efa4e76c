package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/quizzo-go-api/internal/cache"
	"github.com/noah-isme/quizzo-go-api/internal/dto"
	"github.com/noah-isme/quizzo-go-api/internal/repository"
	"github.com/noah-isme/quizzo-go-api/internal/scoring"
)

const (
	adminStatsCacheTTL     = 5 * time.Minute
	adminAggregateCacheTTL = 15 * time.Minute
)

// AdminStatsService serves platform-wide counters and per-quiz cohort
// aggregates for the admin surface.
type AdminStatsService interface {
	GetStats(ctx context.Context) (dto.AdminStatsResponse, error)
	GetQuizAggregate(ctx context.Context, quizID uint) (dto.QuizAggregateResponse, error)
}

type adminStatsService struct {
	users       repository.UserRepository
	chapters    repository.ChapterRepository
	quizzes     repository.QuizRepository
	questions   repository.QuestionRepository
	submissions repository.SubmissionRepository
	store       cache.Store
	logger      zerolog.Logger
}

// NewAdminStatsService constructs the admin aggregation service.
func NewAdminStatsService(
	users repository.UserRepository,
	chapters repository.ChapterRepository,
	quizzes repository.QuizRepository,
	questions repository.QuestionRepository,
	submissions repository.SubmissionRepository,
	store cache.Store,
	logger zerolog.Logger,
) AdminStatsService {
	return &adminStatsService{
		users:       users,
		chapters:    chapters,
		quizzes:     quizzes,
		questions:   questions,
		submissions: submissions,
		store:       store,
		logger:      logger.With().Str("component", "admin_stats_service").Logger(),
	}
}

func (s *adminStatsService) GetStats(ctx context.Context) (dto.AdminStatsResponse, error) {
	var cached dto.AdminStatsResponse
	if s.store.Get(ctx, cache.AdminStatsKey, &cached) {
		return cached, nil
	}

	var response dto.AdminStatsResponse
	var err error
	if response.TotalUsers, err = s.users.Count(ctx); err != nil {
		return dto.AdminStatsResponse{}, err
	}
	if response.TotalCourses, err = s.chapters.CountCourses(ctx); err != nil {
		return dto.AdminStatsResponse{}, err
	}
	if response.TotalQuizzes, err = s.quizzes.Count(ctx); err != nil {
		return dto.AdminStatsResponse{}, err
	}
	if response.TotalSubmissions, err = s.submissions.Count(ctx); err != nil {
		return dto.AdminStatsResponse{}, err
	}

	s.store.Set(ctx, cache.AdminStatsKey, response, adminStatsCacheTTL)
	return response, nil
}

func (s *adminStatsService) GetQuizAggregate(ctx context.Context, quizID uint) (dto.QuizAggregateResponse, error) {
	cacheKey := cache.AdminQuizAggregateKey(quizID)
	var cached dto.QuizAggregateResponse
	if s.store.Get(ctx, cacheKey, &cached) {
		return cached, nil
	}

	quiz, err := s.quizzes.GetByID(ctx, quizID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.QuizAggregateResponse{}, ErrQuizNotFound
		}
		return dto.QuizAggregateResponse{}, err
	}

	questions, err := s.questions.ListByQuiz(ctx, quizID)
	if err != nil {
		return dto.QuizAggregateResponse{}, err
	}

	userIDs, err := s.submissions.DistinctUserIDsByQuiz(ctx, quizID)
	if err != nil {
		return dto.QuizAggregateResponse{}, err
	}

	var percentageSum float64
	for _, userID := range userIDs {
		submissions, err := s.submissions.ListByUserAndQuiz(ctx, userID, quizID)
		if err != nil {
			return dto.QuizAggregateResponse{}, err
		}
		percentageSum += scoring.Tally(questions, submissions).Percentage
	}

	response := dto.QuizAggregateResponse{
		QuizID:       quizID,
		Title:        quiz.Title,
		Participants: len(userIDs),
	}
	if len(userIDs) > 0 {
		response.AveragePercentage = percentageSum / float64(len(userIDs))
	}

	s.store.Set(ctx, cacheKey, response, adminAggregateCacheTTL)
	return response, nil
}
