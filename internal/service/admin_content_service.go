package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/noah-isme/quizzo-go-api/internal/cache"
	"github.com/noah-isme/quizzo-go-api/internal/dto"
	"github.com/noah-isme/quizzo-go-api/internal/models"
	"github.com/noah-isme/quizzo-go-api/internal/repository"
	"github.com/noah-isme/quizzo-go-api/internal/scoring"
)

var (
	// ErrQuestionNotFound indicates the question does not exist.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrInvalidSchedule indicates a scheduled quiz without a usable
	// start time or duration.
	ErrInvalidSchedule = errors.New("scheduled quiz requires a start time and an HH:MM duration")
	// ErrInvalidAnswerKey indicates a correct answer whose shape does not
	// match the question type.
	ErrInvalidAnswerKey = errors.New("correct answer does not match question type")
)

// Accepted layouts for quiz start times.
var startTimeLayouts = []string{time.RFC3339, "2006-01-02 15:04", "2006-01-02T15:04"}

// AdminContentService is the authoring surface for quizzes and
// questions. Rewriting or deleting a question that already has
// submissions triggers a revaluation of the whole quiz.
type AdminContentService interface {
	CreateQuiz(ctx context.Context, payload dto.QuizCreateRequest) (models.Quiz, error)
	UpdateQuiz(ctx context.Context, quizID uint, payload dto.QuizUpdateRequest) (models.Quiz, error)
	DeleteQuiz(ctx context.Context, quizID uint) error

	CreateQuestion(ctx context.Context, payload dto.QuestionCreateRequest) (dto.QuestionResponse, error)
	UpdateQuestion(ctx context.Context, questionID uint, payload dto.QuestionUpdateRequest) (dto.QuestionResponse, error)
	DeleteQuestion(ctx context.Context, questionID uint) error
	ListQuestions(ctx context.Context, quizID uint) ([]dto.QuestionResponse, error)
}

type adminContentService struct {
	quizzes     repository.QuizRepository
	questions   repository.QuestionRepository
	submissions repository.SubmissionRepository
	chapters    repository.ChapterRepository
	revaluation RevaluationService
	invalidator *cache.Invalidator
	validator   *validator.Validate
	sanitizer   *bluemonday.Policy
	logger      zerolog.Logger
}

// NewAdminContentService constructs the authoring service.
func NewAdminContentService(
	quizzes repository.QuizRepository,
	questions repository.QuestionRepository,
	submissions repository.SubmissionRepository,
	chapters repository.ChapterRepository,
	revaluation RevaluationService,
	store cache.Store,
	validate *validator.Validate,
	logger zerolog.Logger,
) AdminContentService {
	return &adminContentService{
		quizzes:     quizzes,
		questions:   questions,
		submissions: submissions,
		chapters:    chapters,
		revaluation: revaluation,
		invalidator: cache.NewInvalidator(store),
		validator:   validate,
		sanitizer:   bluemonday.StrictPolicy(),
		logger:      logger.With().Str("component", "admin_content_service").Logger(),
	}
}

func parseStartTime(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	for _, layout := range startTimeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("unparsable start time %q", value)
}

func (s *adminContentService) validateSchedule(scheduled bool, start *time.Time, duration string) error {
	if !scheduled {
		return nil
	}
	if start == nil {
		return ErrInvalidSchedule
	}
	if _, err := models.ParseQuizDuration(duration); err != nil {
		return ErrInvalidSchedule
	}
	return nil
}

func (s *adminContentService) CreateQuiz(ctx context.Context, payload dto.QuizCreateRequest) (models.Quiz, error) {
	if err := s.validator.Struct(payload); err != nil {
		return models.Quiz{}, err
	}

	if _, err := s.chapters.GetByID(ctx, payload.ChapterID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Quiz{}, ErrChapterNotFound
		}
		return models.Quiz{}, err
	}

	start, err := parseStartTime(payload.StartTime)
	if err != nil {
		return models.Quiz{}, ErrInvalidSchedule
	}
	if err := s.validateSchedule(payload.Scheduled, start, payload.Duration); err != nil {
		return models.Quiz{}, err
	}

	quiz := models.Quiz{
		ChapterID: payload.ChapterID,
		Title:     s.sanitizer.Sanitize(payload.Title),
		StartTime: start,
		Duration:  payload.Duration,
		Scheduled: payload.Scheduled,
		Remarks:   s.sanitizer.Sanitize(payload.Remarks),
	}
	if err := s.quizzes.Create(ctx, &quiz); err != nil {
		return models.Quiz{}, err
	}

	s.invalidator.Quiz(ctx, quiz.ID, quiz.ChapterID)
	s.invalidator.Admin(ctx)
	s.logger.Info().Uint("quiz_id", quiz.ID).Uint("chapter_id", quiz.ChapterID).Msg("quiz created")
	return quiz, nil
}

func (s *adminContentService) UpdateQuiz(ctx context.Context, quizID uint, payload dto.QuizUpdateRequest) (models.Quiz, error) {
	if err := s.validator.Struct(payload); err != nil {
		return models.Quiz{}, err
	}

	quiz, err := s.quizzes.GetByID(ctx, quizID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Quiz{}, ErrQuizNotFound
		}
		return models.Quiz{}, err
	}

	start, err := parseStartTime(payload.StartTime)
	if err != nil {
		return models.Quiz{}, ErrInvalidSchedule
	}
	if err := s.validateSchedule(payload.Scheduled, start, payload.Duration); err != nil {
		return models.Quiz{}, err
	}

	quiz.Title = s.sanitizer.Sanitize(payload.Title)
	quiz.StartTime = start
	quiz.Duration = payload.Duration
	quiz.Scheduled = payload.Scheduled
	quiz.Remarks = s.sanitizer.Sanitize(payload.Remarks)

	if err := s.quizzes.Update(ctx, &quiz); err != nil {
		return models.Quiz{}, err
	}

	s.invalidator.Quiz(ctx, quiz.ID, quiz.ChapterID)
	s.invalidator.Admin(ctx)
	s.logger.Info().Uint("quiz_id", quiz.ID).Msg("quiz updated")
	return quiz, nil
}

func (s *adminContentService) DeleteQuiz(ctx context.Context, quizID uint) error {
	quiz, err := s.quizzes.GetByID(ctx, quizID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrQuizNotFound
		}
		return err
	}

	if err := s.quizzes.Delete(ctx, quizID); err != nil {
		return err
	}

	s.invalidator.Quiz(ctx, quizID, quiz.ChapterID)
	s.invalidator.Admin(ctx)
	s.logger.Info().Uint("quiz_id", quizID).Msg("quiz deleted")
	return nil
}

// validateAnswerKey checks the authored correct answer parses under the
// declared question type. NAT keys must additionally be numeric, and an
// MSQ key must select at least one option or every answer would judge
// incorrect.
func validateAnswerKey(questionType string, key json.RawMessage) error {
	answer, err := scoring.ParseAnswer(questionType, key)
	if err != nil {
		return ErrInvalidAnswerKey
	}
	if questionType == models.QuestionTypeNAT && !answer.NumericOK {
		return ErrInvalidAnswerKey
	}
	if questionType == models.QuestionTypeMSQ && len(answer.Multiple) == 0 {
		return ErrInvalidAnswerKey
	}
	return nil
}

func questionView(question models.Question) dto.QuestionResponse {
	return dto.QuestionResponse{
		ID:            question.ID,
		QuizID:        question.QuizID,
		Statement:     question.Statement,
		Type:          question.Type,
		Options:       json.RawMessage(question.Options),
		CorrectAnswer: json.RawMessage(question.CorrectAnswer),
		Marks:         question.Marks,
	}
}

func (s *adminContentService) CreateQuestion(ctx context.Context, payload dto.QuestionCreateRequest) (dto.QuestionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.QuestionResponse{}, err
	}

	quiz, err := s.quizzes.GetByID(ctx, payload.QuizID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.QuestionResponse{}, ErrQuizNotFound
		}
		return dto.QuestionResponse{}, err
	}

	if err := validateAnswerKey(payload.Type, payload.CorrectAnswer); err != nil {
		return dto.QuestionResponse{}, err
	}

	marks := payload.Marks
	if marks == 0 {
		marks = 1
	}

	question := models.Question{
		QuizID:        payload.QuizID,
		Statement:     s.sanitizer.Sanitize(payload.Statement),
		Type:          payload.Type,
		Options:       datatypes.JSON(payload.Options),
		CorrectAnswer: datatypes.JSON(payload.CorrectAnswer),
		Marks:         marks,
	}
	if err := s.questions.Create(ctx, &question); err != nil {
		return dto.QuestionResponse{}, err
	}

	s.invalidator.Quiz(ctx, quiz.ID, quiz.ChapterID)
	s.invalidator.Admin(ctx)
	s.logger.Info().Uint("question_id", question.ID).Uint("quiz_id", quiz.ID).Msg("question created")
	return questionView(question), nil
}

func (s *adminContentService) UpdateQuestion(ctx context.Context, questionID uint, payload dto.QuestionUpdateRequest) (dto.QuestionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.QuestionResponse{}, err
	}

	question, err := s.questions.GetByID(ctx, questionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.QuestionResponse{}, ErrQuestionNotFound
		}
		return dto.QuestionResponse{}, err
	}

	if err := validateAnswerKey(payload.Type, payload.CorrectAnswer); err != nil {
		return dto.QuestionResponse{}, err
	}

	question.Statement = s.sanitizer.Sanitize(payload.Statement)
	question.Type = payload.Type
	question.Options = datatypes.JSON(payload.Options)
	question.CorrectAnswer = datatypes.JSON(payload.CorrectAnswer)
	if payload.Marks > 0 {
		question.Marks = payload.Marks
	}

	if err := s.questions.Update(ctx, &question); err != nil {
		return dto.QuestionResponse{}, err
	}

	if err := s.revaluateIfAttempted(ctx, question.QuizID); err != nil {
		return dto.QuestionResponse{}, err
	}

	s.logger.Info().Uint("question_id", questionID).Uint("quiz_id", question.QuizID).Msg("question updated")
	return questionView(question), nil
}

func (s *adminContentService) DeleteQuestion(ctx context.Context, questionID uint) error {
	question, err := s.questions.GetByID(ctx, questionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrQuestionNotFound
		}
		return err
	}

	if err := s.questions.Delete(ctx, questionID); err != nil {
		return err
	}

	if err := s.revaluateIfAttempted(ctx, question.QuizID); err != nil {
		return err
	}

	s.logger.Info().Uint("question_id", questionID).Uint("quiz_id", question.QuizID).Msg("question deleted")
	return nil
}

// revaluateIfAttempted rescores the quiz when submissions already exist;
// the revaluation itself flushes the affected cache entries. Untouched
// quizzes only need their content caches dropped.
func (s *adminContentService) revaluateIfAttempted(ctx context.Context, quizID uint) error {
	quiz, err := s.quizzes.GetByID(ctx, quizID)
	if err != nil {
		return err
	}

	userIDs, err := s.submissions.DistinctUserIDsByQuiz(ctx, quizID)
	if err != nil {
		return err
	}
	if len(userIDs) == 0 {
		s.invalidator.Quiz(ctx, quizID, quiz.ChapterID)
		s.invalidator.Admin(ctx)
		return nil
	}

	summary, err := s.revaluation.Revaluate(ctx, quizID)
	if err != nil {
		return err
	}
	s.invalidator.Admin(ctx)
	s.logger.Info().
		Uint("quiz_id", quizID).
		Int("users_revaluated", summary.UsersRevaluated).
		Int("submissions_updated", summary.SubmissionsUpdated).
		Msg("question change triggered revaluation")
	return nil
}

func (s *adminContentService) ListQuestions(ctx context.Context, quizID uint) ([]dto.QuestionResponse, error) {
	if _, err := s.quizzes.GetByID(ctx, quizID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQuizNotFound
		}
		return nil, err
	}

	questions, err := s.questions.ListByQuiz(ctx, quizID)
	if err != nil {
		return nil, err
	}

	views := make([]dto.QuestionResponse, 0, len(questions))
	for _, question := range questions {
		views = append(views, questionView(question))
	}
	return views, nil
}
