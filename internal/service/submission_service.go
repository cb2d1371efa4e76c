package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/noah-isme/quizzo-go-api/internal/cache"
	"github.com/noah-isme/quizzo-go-api/internal/dto"
	"github.com/noah-isme/quizzo-go-api/internal/models"
	"github.com/noah-isme/quizzo-go-api/internal/notify"
	"github.com/noah-isme/quizzo-go-api/internal/observability"
	"github.com/noah-isme/quizzo-go-api/internal/repository"
	"github.com/noah-isme/quizzo-go-api/internal/scoring"
)

var (
	// ErrAlreadySubmitted indicates a scheduled quiz that already holds a
	// submission generation for this learner; scheduled quizzes are
	// single-shot.
	ErrAlreadySubmitted = errors.New("quiz already submitted")
	// ErrNotSubmitted indicates a result was requested before any
	// submission exists.
	ErrNotSubmitted = errors.New("quiz not submitted yet")
)

const resultCacheTTL = 30 * time.Minute

// SubmissionService coordinates accepting, scoring, and persisting quiz
// attempts, and serves scored results.
type SubmissionService interface {
	// Submit validates, judges, and persists an attempt atomically. For
	// general quizzes a resubmit overwrites each question's row; for
	// scheduled quizzes a second attempt fails with ErrAlreadySubmitted.
	Submit(ctx context.Context, userID, quizID uint, payload dto.SubmitRequest) (dto.SubmitResponse, error)
	// GetResult returns the learner's scored result with per-question
	// performance, or ErrNotSubmitted.
	GetResult(ctx context.Context, userID, quizID uint) (dto.QuizResultResponse, error)
}

type submissionService struct {
	access      AccessService
	quizzes     repository.QuizRepository
	questions   repository.QuestionRepository
	submissions repository.SubmissionRepository
	users       repository.UserRepository
	store       cache.Store
	invalidator *cache.Invalidator
	notifier    notify.CompletionNotifier
	validator   *validator.Validate
	logger      zerolog.Logger
	tracer      trace.Tracer
	now         func() time.Time
}

// NewSubmissionService constructs the submission coordinator.
func NewSubmissionService(
	access AccessService,
	quizzes repository.QuizRepository,
	questions repository.QuestionRepository,
	submissions repository.SubmissionRepository,
	users repository.UserRepository,
	store cache.Store,
	notifier notify.CompletionNotifier,
	validate *validator.Validate,
	logger zerolog.Logger,
) SubmissionService {
	return &submissionService{
		access:      access,
		quizzes:     quizzes,
		questions:   questions,
		submissions: submissions,
		users:       users,
		store:       store,
		invalidator: cache.NewInvalidator(store),
		notifier:    notifier,
		validator:   validate,
		logger:      logger.With().Str("component", "submission_service").Logger(),
		tracer:      otel.Tracer("github.com/noah-isme/quizzo-go-api/internal/service/submission"),
		now:         time.Now,
	}
}

func (s *submissionService) Submit(ctx context.Context, userID, quizID uint, payload dto.SubmitRequest) (dto.SubmitResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.SubmitResponse{}, err
	}

	ctx, span := s.tracer.Start(ctx, "quiz.submit", trace.WithAttributes(
		attribute.Int("quiz.id", int(quizID)),
		attribute.Int("user.id", int(userID)),
	))
	defer span.End()

	quiz, err := s.access.CanAccess(ctx, userID, quizID)
	if err != nil {
		return dto.SubmitResponse{}, err
	}

	questions, err := s.questions.ListByQuiz(ctx, quizID)
	if err != nil {
		return dto.SubmitResponse{}, err
	}

	questionByID := make(map[uint]models.Question, len(questions))
	for _, question := range questions {
		questionByID[question.ID] = question
	}

	existingByQuestion := map[uint]models.Submission{}
	if quiz.Scheduled {
		exists, err := s.submissions.ExistsForUserAndQuiz(ctx, userID, quizID)
		if err != nil {
			return dto.SubmitResponse{}, err
		}
		if exists {
			return dto.SubmitResponse{}, ErrAlreadySubmitted
		}
	} else {
		existing, err := s.submissions.ListByUserAndQuiz(ctx, userID, quizID)
		if err != nil {
			return dto.SubmitResponse{}, err
		}
		for _, submission := range existing {
			existingByQuestion[submission.QuestionID] = submission
		}
	}

	submittedAt := s.now()
	rows := make([]*models.Submission, 0, len(payload.Answers))

	for _, incoming := range payload.Answers {
		question, ok := questionByID[incoming.QuestionID]
		if !ok {
			// Answers to deleted or foreign questions are dropped, not
			// rejected.
			continue
		}

		answer, err := scoring.ParseAnswer(question.Type, incoming.Answer)
		if err != nil {
			return dto.SubmitResponse{}, fmt.Errorf("question %d: %w", incoming.QuestionID, err)
		}

		normalized, err := answer.Normalized()
		if err != nil {
			return dto.SubmitResponse{}, fmt.Errorf("question %d: %w", incoming.QuestionID, err)
		}

		row := models.Submission{
			UserID:     userID,
			QuizID:     quizID,
			QuestionID: question.ID,
		}
		if previous, ok := existingByQuestion[question.ID]; ok {
			row = previous
		}

		row.Answer = datatypes.JSON(normalized)
		row.IsCorrect = scoring.Judge(question, answer)
		row.SubmittedAt = submittedAt
		rows = append(rows, &row)
	}

	if err := s.submissions.SaveBatch(ctx, rows); err != nil {
		span.RecordError(err)
		// Two in-flight first submits can both pass the exists check;
		// the unique submission index decides the winner and the loser
		// lands here.
		if quiz.Scheduled && errors.Is(err, gorm.ErrDuplicatedKey) {
			observability.SubmissionsTotal().WithLabelValues("duplicate").Inc()
			return dto.SubmitResponse{}, ErrAlreadySubmitted
		}
		observability.SubmissionsTotal().WithLabelValues("failed").Inc()
		return dto.SubmitResponse{}, fmt.Errorf("failed to persist submission batch: %w", err)
	}

	observability.SubmissionsTotal().WithLabelValues("accepted").Inc()

	// Invalidation runs strictly after the commit; failures degrade to
	// stale-until-TTL entries rather than failed submissions.
	s.invalidateAfterSubmit(ctx, userID, quiz)
	s.dispatchCompletion(ctx, userID, quizID)

	saved := make([]models.Submission, 0, len(rows))
	for _, row := range rows {
		saved = append(saved, *row)
	}

	s.logger.Info().
		Uint("user_id", userID).
		Uint("quiz_id", quizID).
		Int("accepted", len(rows)).
		Msg("quiz submission recorded")

	return dto.SubmitResponse{
		QuizID:         quizID,
		AcceptedCount:  len(rows),
		TotalQuestions: len(questions),
		Score:          scoring.Tally(questions, saved),
	}, nil
}

func (s *submissionService) invalidateAfterSubmit(ctx context.Context, userID uint, quiz models.Quiz) {
	username := ""
	if user, err := s.users.GetByID(ctx, userID); err == nil {
		username = user.Username
	} else {
		s.logger.Warn().Err(err).Uint("user_id", userID).Msg("could not resolve username for profile invalidation")
	}

	s.invalidator.Submission(ctx, userID, quiz.ID, quiz.ChapterID, username)
}

// dispatchCompletion hands the completion to the notification
// collaborator on a detached goroutine. Its failure is logged and
// swallowed; the submission response has already been decided.
func (s *submissionService) dispatchCompletion(ctx context.Context, userID, quizID uint) {
	detached := context.WithoutCancel(ctx)
	go func() {
		if err := s.notifier.NotifyCompletion(detached, userID, quizID); err != nil {
			s.logger.Warn().Err(err).
				Uint("user_id", userID).
				Uint("quiz_id", quizID).
				Msg("completion notification failed")
		}
	}()
}

func (s *submissionService) GetResult(ctx context.Context, userID, quizID uint) (dto.QuizResultResponse, error) {
	exists, err := s.submissions.ExistsForUserAndQuiz(ctx, userID, quizID)
	if err != nil {
		return dto.QuizResultResponse{}, err
	}
	if !exists {
		return dto.QuizResultResponse{}, ErrNotSubmitted
	}

	cacheKey := cache.QuizResultKey(quizID, userID)
	var cached dto.QuizResultResponse
	if s.store.Get(ctx, cacheKey, &cached) {
		return cached, nil
	}

	quiz, err := s.quizzes.GetByID(ctx, quizID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.QuizResultResponse{}, ErrQuizNotFound
		}
		return dto.QuizResultResponse{}, err
	}

	questions, err := s.questions.ListByQuiz(ctx, quizID)
	if err != nil {
		return dto.QuizResultResponse{}, err
	}

	submissions, err := s.submissions.ListByUserAndQuiz(ctx, userID, quizID)
	if err != nil {
		return dto.QuizResultResponse{}, err
	}

	response := buildResult(quiz, questions, submissions, s.now())
	s.store.Set(ctx, cacheKey, response, resultCacheTTL)

	return response, nil
}

func buildResult(quiz models.Quiz, questions []models.Question, submissions []models.Submission, now time.Time) dto.QuizResultResponse {
	submissionByQuestion := make(map[uint]models.Submission, len(submissions))
	var completedAt *time.Time
	for _, submission := range submissions {
		submissionByQuestion[submission.QuestionID] = submission
		if completedAt == nil || submission.SubmittedAt.After(*completedAt) {
			ts := submission.SubmittedAt
			completedAt = &ts
		}
	}

	performance := make([]dto.QuestionPerformance, 0, len(questions))
	var totalMarks float64
	for _, question := range questions {
		totalMarks += question.Marks
		entry := dto.QuestionPerformance{
			QuestionID:    question.ID,
			Statement:     question.Statement,
			Type:          question.Type,
			Marks:         question.Marks,
			CorrectAnswer: json.RawMessage(question.CorrectAnswer),
		}
		if submission, ok := submissionByQuestion[question.ID]; ok {
			entry.UserAnswer = json.RawMessage(submission.Answer)
			entry.IsCorrect = submission.IsCorrect
		}
		performance = append(performance, entry)
	}

	return dto.QuizResultResponse{
		Quiz: dto.QuizHeader{
			ID:             quiz.ID,
			Title:          quiz.Title,
			Chapter:        quiz.Chapter.Name,
			Course:         quiz.Chapter.Course.Name,
			StartTime:      quiz.StartTime,
			Duration:       quiz.Duration,
			Scheduled:      quiz.Scheduled,
			Status:         string(quiz.StatusAt(now)),
			Instructions:   quiz.Remarks,
			TotalQuestions: len(questions),
			TotalMarks:     totalMarks,
		},
		Score:               scoring.Tally(questions, submissions),
		QuestionPerformance: performance,
		CompletedAt:         completedAt,
	}
}
