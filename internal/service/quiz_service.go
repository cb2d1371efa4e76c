package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"

	"github.com/noah-isme/quizzo-go-api/internal/cache"
	"github.com/noah-isme/quizzo-go-api/internal/dto"
	"github.com/noah-isme/quizzo-go-api/internal/models"
	"github.com/noah-isme/quizzo-go-api/internal/repository"
)

const (
	upcomingCacheTTL  = 5 * time.Minute
	openCacheTTL      = 3 * time.Minute
	chapterCacheTTL   = 3 * time.Minute
	questionsCacheTTL = 15 * time.Minute
	metadataCacheTTL  = 10 * time.Minute
)

// QuizService serves learner-facing quiz listings and content. All reads
// go through the cache; every path falls back to the record store on a
// miss and writes the result back.
type QuizService interface {
	// ListUpcoming lists scheduled quizzes in the learner's subscribed
	// chapters whose windows have not opened, sorted by start time.
	ListUpcoming(ctx context.Context, userID uint) (dto.UpcomingQuizzesResponse, error)
	// ListOpen lists quizzes attemptable right now: general quizzes and
	// started scheduled quizzes the learner has not already submitted.
	ListOpen(ctx context.Context, userID uint) (dto.OpenQuizzesResponse, error)
	// ListByChapter partitions a subscribed chapter's quizzes by
	// lifecycle state.
	ListByChapter(ctx context.Context, userID, chapterID uint) (dto.CategorizedQuizzesResponse, error)
	// GetQuestions returns the quiz's questions with answers stripped.
	// For a scheduled quiz that was already submitted it fails with
	// ErrAlreadySubmitted.
	GetQuestions(ctx context.Context, userID, quizID uint) (dto.QuizQuestionsResponse, error)
	// GetMetadata returns the quiz header without questions.
	GetMetadata(ctx context.Context, userID, quizID uint) (dto.QuizHeader, error)
}

type quizService struct {
	access        AccessService
	quizzes       repository.QuizRepository
	questions     repository.QuestionRepository
	submissions   repository.SubmissionRepository
	subscriptions repository.SubscriptionRepository
	store         cache.Store
	logger        zerolog.Logger
	now           func() time.Time
}

// NewQuizService constructs the quiz read service.
func NewQuizService(
	access AccessService,
	quizzes repository.QuizRepository,
	questions repository.QuestionRepository,
	submissions repository.SubmissionRepository,
	subscriptions repository.SubscriptionRepository,
	store cache.Store,
	logger zerolog.Logger,
) QuizService {
	return &quizService{
		access:        access,
		quizzes:       quizzes,
		questions:     questions,
		submissions:   submissions,
		subscriptions: subscriptions,
		store:         store,
		logger:        logger.With().Str("component", "quiz_service").Logger(),
		now:           time.Now,
	}
}

func (s *quizService) subscribedChapterIDs(ctx context.Context, userID uint) ([]uint, error) {
	subscriptions, err := s.subscriptions.ListActiveByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	chapterIDs := make([]uint, 0, len(subscriptions))
	for _, subscription := range subscriptions {
		chapterIDs = append(chapterIDs, subscription.ChapterID)
	}

	return chapterIDs, nil
}

func (s *quizService) ListUpcoming(ctx context.Context, userID uint) (dto.UpcomingQuizzesResponse, error) {
	cacheKey := cache.UserUpcomingQuizzesKey(userID)
	var cached dto.UpcomingQuizzesResponse
	if s.store.Get(ctx, cacheKey, &cached) {
		return cached, nil
	}

	chapterIDs, err := s.subscribedChapterIDs(ctx, userID)
	if err != nil {
		return dto.UpcomingQuizzesResponse{}, err
	}

	quizzes, err := s.quizzes.ListByChapters(ctx, chapterIDs)
	if err != nil {
		return dto.UpcomingQuizzesResponse{}, err
	}

	now := s.now()
	response := dto.UpcomingQuizzesResponse{UpcomingQuizzes: []dto.QuizSummary{}}
	for _, quiz := range quizzes {
		if quiz.StatusAt(now) == models.StatusUpcoming {
			response.UpcomingQuizzes = append(response.UpcomingQuizzes, dto.NewQuizSummary(quiz, now))
		}
	}

	s.store.Set(ctx, cacheKey, response, upcomingCacheTTL)
	return response, nil
}

func (s *quizService) ListOpen(ctx context.Context, userID uint) (dto.OpenQuizzesResponse, error) {
	cacheKey := cache.UserOpenQuizzesKey(userID)
	var cached dto.OpenQuizzesResponse
	if s.store.Get(ctx, cacheKey, &cached) {
		return cached, nil
	}

	chapterIDs, err := s.subscribedChapterIDs(ctx, userID)
	if err != nil {
		return dto.OpenQuizzesResponse{}, err
	}

	quizzes, err := s.quizzes.ListByChapters(ctx, chapterIDs)
	if err != nil {
		return dto.OpenQuizzesResponse{}, err
	}

	submitted, err := s.submissions.SubmittedQuizIDs(ctx, userID)
	if err != nil {
		return dto.OpenQuizzesResponse{}, err
	}

	now := s.now()
	response := dto.OpenQuizzesResponse{OpenQuizzes: []dto.QuizSummary{}}
	for _, quiz := range quizzes {
		status := quiz.StatusAt(now)
		if status == models.StatusUpcoming {
			continue
		}
		// Scheduled quizzes are single-shot: a submitted one is no
		// longer open. General quizzes stay open for practice.
		if quiz.Scheduled {
			if _, done := submitted[quiz.ID]; done {
				continue
			}
		}
		response.OpenQuizzes = append(response.OpenQuizzes, dto.NewQuizSummary(quiz, now))
	}

	s.store.Set(ctx, cacheKey, response, openCacheTTL)
	return response, nil
}

func (s *quizService) ListByChapter(ctx context.Context, userID, chapterID uint) (dto.CategorizedQuizzesResponse, error) {
	if _, err := s.subscriptions.GetActive(ctx, userID, chapterID); err != nil {
		return dto.CategorizedQuizzesResponse{}, ErrNotSubscribed
	}

	cacheKey := cache.ChapterQuizzesKey(chapterID)
	var cached dto.CategorizedQuizzesResponse
	if s.store.Get(ctx, cacheKey, &cached) {
		return cached, nil
	}

	quizzes, err := s.quizzes.ListByChapter(ctx, chapterID)
	if err != nil {
		return dto.CategorizedQuizzesResponse{}, err
	}

	now := s.now()
	categorized := models.CategorizeQuizzes(quizzes, now)

	response := dto.CategorizedQuizzesResponse{
		General:  summarize(categorized[models.StatusGeneral], now),
		Upcoming: summarize(categorized[models.StatusUpcoming], now),
		Live:     summarize(categorized[models.StatusLive], now),
		Ended:    summarize(categorized[models.StatusEnded], now),
	}

	s.store.Set(ctx, cacheKey, response, chapterCacheTTL)
	return response, nil
}

func summarize(quizzes []models.Quiz, now time.Time) []dto.QuizSummary {
	summaries := make([]dto.QuizSummary, 0, len(quizzes))
	for _, quiz := range quizzes {
		summaries = append(summaries, dto.NewQuizSummary(quiz, now))
	}
	return summaries
}

func (s *quizService) GetQuestions(ctx context.Context, userID, quizID uint) (dto.QuizQuestionsResponse, error) {
	quiz, err := s.access.CanAccess(ctx, userID, quizID)
	if err != nil {
		return dto.QuizQuestionsResponse{}, err
	}

	if quiz.Scheduled {
		exists, err := s.submissions.ExistsForUserAndQuiz(ctx, userID, quizID)
		if err != nil {
			return dto.QuizQuestionsResponse{}, err
		}
		if exists {
			return dto.QuizQuestionsResponse{}, ErrAlreadySubmitted
		}
	}

	cacheKey := cache.QuizQuestionsKey(quizID)
	var cached dto.QuizQuestionsResponse
	if s.store.Get(ctx, cacheKey, &cached) {
		return cached, nil
	}

	questions, err := s.questions.ListByQuiz(ctx, quizID)
	if err != nil {
		return dto.QuizQuestionsResponse{}, err
	}

	response := dto.QuizQuestionsResponse{
		Quiz:      s.header(quiz, questions),
		Questions: make([]dto.QuestionView, 0, len(questions)),
	}

	for i, question := range questions {
		var options interface{}
		if len(question.Options) > 0 {
			_ = json.Unmarshal(question.Options, &options)
		}
		response.Questions = append(response.Questions, dto.QuestionView{
			ID:             question.ID,
			QuestionNumber: i + 1,
			Statement:      question.Statement,
			Type:           question.Type,
			Options:        options,
			Marks:          question.Marks,
		})
	}

	s.store.Set(ctx, cacheKey, response, questionsCacheTTL)
	return response, nil
}

func (s *quizService) GetMetadata(ctx context.Context, userID, quizID uint) (dto.QuizHeader, error) {
	quiz, err := s.access.CanAccess(ctx, userID, quizID)
	if err != nil {
		return dto.QuizHeader{}, err
	}

	cacheKey := cache.QuizMetadataKey(quizID)
	var cached dto.QuizHeader
	if s.store.Get(ctx, cacheKey, &cached) {
		return cached, nil
	}

	questions, err := s.questions.ListByQuiz(ctx, quizID)
	if err != nil {
		return dto.QuizHeader{}, err
	}

	header := s.header(quiz, questions)
	s.store.Set(ctx, cacheKey, header, metadataCacheTTL)
	return header, nil
}

func (s *quizService) header(quiz models.Quiz, questions []models.Question) dto.QuizHeader {
	var totalMarks float64
	for _, question := range questions {
		totalMarks += question.Marks
	}

	return dto.QuizHeader{
		ID:             quiz.ID,
		Title:          quiz.Title,
		Chapter:        quiz.Chapter.Name,
		Course:         quiz.Chapter.Course.Name,
		StartTime:      quiz.StartTime,
		Duration:       quiz.Duration,
		Scheduled:      quiz.Scheduled,
		Status:         string(quiz.StatusAt(s.now())),
		Instructions:   quiz.Remarks,
		TotalQuestions: len(questions),
		TotalMarks:     totalMarks,
	}
}
