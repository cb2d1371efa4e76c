package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/noah-isme/quizzo-go-api/internal/cache"
	"github.com/noah-isme/quizzo-go-api/internal/dto"
	"github.com/noah-isme/quizzo-go-api/internal/models"
	"github.com/noah-isme/quizzo-go-api/internal/observability"
	"github.com/noah-isme/quizzo-go-api/internal/repository"
	"github.com/noah-isme/quizzo-go-api/internal/scoring"
)

// RevaluationService re-judges stored submissions after an administrator
// rewrites a quiz's question content. Answers are untouched; only their
// correctness is recomputed against the current question set.
type RevaluationService interface {
	// Revaluate processes every user holding submissions for the quiz.
	// One user's failure is recorded and skipped rather than aborting
	// the rest.
	Revaluate(ctx context.Context, quizID uint) (dto.RevaluationSummary, error)
}

type revaluationService struct {
	quizzes     repository.QuizRepository
	questions   repository.QuestionRepository
	submissions repository.SubmissionRepository
	users       repository.UserRepository
	store       cache.Store
	invalidator *cache.Invalidator
	logger      zerolog.Logger
	tracer      trace.Tracer
}

// NewRevaluationService constructs the revaluation engine.
func NewRevaluationService(
	quizzes repository.QuizRepository,
	questions repository.QuestionRepository,
	submissions repository.SubmissionRepository,
	users repository.UserRepository,
	store cache.Store,
	logger zerolog.Logger,
) RevaluationService {
	return &revaluationService{
		quizzes:     quizzes,
		questions:   questions,
		submissions: submissions,
		users:       users,
		store:       store,
		invalidator: cache.NewInvalidator(store),
		logger:      logger.With().Str("component", "revaluation_service").Logger(),
		tracer:      otel.Tracer("github.com/noah-isme/quizzo-go-api/internal/service/revaluation"),
	}
}

func (s *revaluationService) Revaluate(ctx context.Context, quizID uint) (dto.RevaluationSummary, error) {
	ctx, span := s.tracer.Start(ctx, "quiz.revaluate", trace.WithAttributes(
		attribute.Int("quiz.id", int(quizID)),
	))
	defer span.End()

	started := time.Now()

	quiz, err := s.quizzes.GetByID(ctx, quizID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.RevaluationSummary{}, ErrQuizNotFound
		}
		return dto.RevaluationSummary{}, err
	}

	questions, err := s.questions.ListByQuiz(ctx, quizID)
	if err != nil {
		return dto.RevaluationSummary{}, err
	}

	userIDs, err := s.submissions.DistinctUserIDsByQuiz(ctx, quizID)
	if err != nil {
		return dto.RevaluationSummary{}, err
	}

	summary := dto.RevaluationSummary{QuizID: quizID}

	for _, userID := range userIDs {
		updated, err := s.revaluateUser(ctx, userID, quizID, questions)
		if err != nil {
			summary.UsersSkipped++
			s.logger.Warn().Err(err).
				Uint("quiz_id", quizID).
				Uint("user_id", userID).
				Msg("revaluation skipped user")
			continue
		}

		summary.UsersRevaluated++
		summary.SubmissionsUpdated += updated

		s.invalidator.User(ctx, userID)
		s.invalidateProfile(ctx, userID)
	}

	s.invalidator.Quiz(ctx, quizID, quiz.ChapterID)

	observability.RevaluationsTotal().Inc()
	observability.RevaluationDuration().Observe(time.Since(started).Seconds())

	s.logger.Info().
		Uint("quiz_id", quizID).
		Int("users_revaluated", summary.UsersRevaluated).
		Int("users_skipped", summary.UsersSkipped).
		Int("submissions_updated", summary.SubmissionsUpdated).
		Msg("revaluation complete")

	return summary, nil
}

func (s *revaluationService) revaluateUser(ctx context.Context, userID, quizID uint, questions []models.Question) (int, error) {
	submissions, err := s.submissions.ListByUserAndQuiz(ctx, userID, quizID)
	if err != nil {
		return 0, err
	}

	questionByID := make(map[uint]models.Question, len(questions))
	for _, question := range questions {
		questionByID[question.ID] = question
	}

	changed := make([]*models.Submission, 0, len(submissions))
	for i := range submissions {
		submission := &submissions[i]
		question, ok := questionByID[submission.QuestionID]
		if !ok {
			// The question was deleted; its rows keep their last verdict
			// and stop contributing to totals.
			continue
		}

		verdict := scoring.JudgeStored(question, json.RawMessage(submission.Answer))
		if verdict != submission.IsCorrect {
			submission.IsCorrect = verdict
			changed = append(changed, submission)
		}
	}

	if err := s.submissions.SaveBatch(ctx, changed); err != nil {
		return 0, err
	}

	return len(changed), nil
}

func (s *revaluationService) invalidateProfile(ctx context.Context, userID uint) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		s.logger.Warn().Err(err).Uint("user_id", userID).Msg("could not resolve username for profile invalidation")
		return
	}
	s.store.Delete(ctx, cache.PublicProfileKey(user.Username))
}
