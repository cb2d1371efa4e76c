package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/quizzo-go-api/internal/cache"
	"github.com/noah-isme/quizzo-go-api/internal/dto"
	"github.com/noah-isme/quizzo-go-api/internal/models"
	"github.com/noah-isme/quizzo-go-api/internal/repository"
	"github.com/noah-isme/quizzo-go-api/internal/scoring"
)

// ErrUserNotFound indicates no account matches the requested identifier.
var ErrUserNotFound = errors.New("user not found")

const (
	dashboardCacheTTL = 5 * time.Minute
	statsCacheTTL     = 15 * time.Minute
	profileCacheTTL   = time.Hour

	recentQuizLimit = 5
	topPerformances = 5
)

// DashboardService aggregates a learner's submission history into the
// dashboard, statistics, and public profile views.
type DashboardService interface {
	GetDashboard(ctx context.Context, userID uint) (dto.DashboardResponse, error)
	GetUserStats(ctx context.Context, userID uint) (dto.UserStatsResponse, error)
	// GetPublicProfile is reachable without authentication and exposes
	// only aggregate numbers.
	GetPublicProfile(ctx context.Context, username string) (dto.PublicProfileResponse, error)
}

type dashboardService struct {
	users         repository.UserRepository
	quizzes       repository.QuizRepository
	questions     repository.QuestionRepository
	submissions   repository.SubmissionRepository
	subscriptions repository.SubscriptionRepository
	store         cache.Store
	logger        zerolog.Logger
	now           func() time.Time
}

// NewDashboardService constructs the aggregation service.
func NewDashboardService(
	users repository.UserRepository,
	quizzes repository.QuizRepository,
	questions repository.QuestionRepository,
	submissions repository.SubmissionRepository,
	subscriptions repository.SubscriptionRepository,
	store cache.Store,
	logger zerolog.Logger,
) DashboardService {
	return &dashboardService{
		users:         users,
		quizzes:       quizzes,
		questions:     questions,
		submissions:   submissions,
		subscriptions: subscriptions,
		store:         store,
		logger:        logger.With().Str("component", "dashboard_service").Logger(),
		now:           time.Now,
	}
}

// quizPerformance is one attempted quiz with its tallied score, ordered
// by the learner's latest submission to it.
type quizPerformance struct {
	quiz       models.Quiz
	score      scoring.Score
	correct    int
	answered   int
	lastActive time.Time
}

func (s *dashboardService) collectPerformance(ctx context.Context, userID uint) ([]quizPerformance, error) {
	quizIDs, err := s.submissions.DistinctQuizIDsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	performances := make([]quizPerformance, 0, len(quizIDs))
	for _, quizID := range quizIDs {
		quiz, err := s.quizzes.GetByID(ctx, quizID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				// The quiz was deleted after the learner attempted it.
				continue
			}
			return nil, err
		}

		questions, err := s.questions.ListByQuiz(ctx, quizID)
		if err != nil {
			return nil, err
		}

		submissions, err := s.submissions.ListByUserAndQuiz(ctx, userID, quizID)
		if err != nil {
			return nil, err
		}

		perf := quizPerformance{
			quiz:     quiz,
			score:    scoring.Tally(questions, submissions),
			answered: len(submissions),
		}
		for _, submission := range submissions {
			if submission.IsCorrect {
				perf.correct++
			}
			if submission.SubmittedAt.After(perf.lastActive) {
				perf.lastActive = submission.SubmittedAt
			}
		}

		performances = append(performances, perf)
	}

	sort.Slice(performances, func(i, j int) bool {
		return performances[i].lastActive.After(performances[j].lastActive)
	})

	return performances, nil
}

func quizScoreView(perf quizPerformance) dto.QuizScore {
	return dto.QuizScore{
		QuizID:    perf.quiz.ID,
		QuizTitle: perf.quiz.Title,
		Chapter:   perf.quiz.Chapter.Name,
		Course:    perf.quiz.Chapter.Course.Name,
		Score:     perf.score,
	}
}

func overallAccuracy(correct, answered int) float64 {
	if answered == 0 {
		return 0
	}
	return float64(correct) / float64(answered) * 100
}

func (s *dashboardService) GetDashboard(ctx context.Context, userID uint) (dto.DashboardResponse, error) {
	cacheKey := cache.UserDashboardKey(userID)
	var cached dto.DashboardResponse
	if s.store.Get(ctx, cacheKey, &cached) {
		return cached, nil
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.DashboardResponse{}, ErrUserNotFound
		}
		return dto.DashboardResponse{}, err
	}

	performances, err := s.collectPerformance(ctx, userID)
	if err != nil {
		return dto.DashboardResponse{}, err
	}

	subscriptions, err := s.subscriptions.ListActiveByUser(ctx, userID)
	if err != nil {
		return dto.DashboardResponse{}, err
	}
	chapterIDs := make([]uint, 0, len(subscriptions))
	for _, subscription := range subscriptions {
		chapterIDs = append(chapterIDs, subscription.ChapterID)
	}

	quizzes, err := s.quizzes.ListByChapters(ctx, chapterIDs)
	if err != nil {
		return dto.DashboardResponse{}, err
	}

	now := s.now()
	upcoming := []dto.QuizSummary{}
	for _, quiz := range quizzes {
		if quiz.StatusAt(now) == models.StatusUpcoming {
			upcoming = append(upcoming, dto.NewQuizSummary(quiz, now))
		}
	}

	recent := []dto.QuizScore{}
	correct, answered := 0, 0
	for i, perf := range performances {
		if i < recentQuizLimit {
			recent = append(recent, quizScoreView(perf))
		}
		correct += perf.correct
		answered += perf.answered
	}

	response := dto.DashboardResponse{
		User: dto.UserLite{
			ID:       user.ID,
			Name:     user.Name,
			Username: user.Username,
		},
		UpcomingQuizzes: upcoming,
		RecentQuizzes:   recent,
		Stats: dto.DashboardStat{
			TotalQuizzesTaken: len(performances),
			OverallAccuracy:   overallAccuracy(correct, answered),
		},
	}

	s.store.Set(ctx, cacheKey, response, dashboardCacheTTL)
	return response, nil
}

func (s *dashboardService) GetUserStats(ctx context.Context, userID uint) (dto.UserStatsResponse, error) {
	cacheKey := cache.UserStatsKey(userID)
	var cached dto.UserStatsResponse
	if s.store.Get(ctx, cacheKey, &cached) {
		return cached, nil
	}

	performances, err := s.collectPerformance(ctx, userID)
	if err != nil {
		return dto.UserStatsResponse{}, err
	}

	overall := dto.UserQuizStats{
		TotalQuizzes: len(performances),
		QuizScores:   make([]dto.QuizScore, 0, len(performances)),
	}

	type chapterAgg struct {
		chapter  models.Chapter
		taken    int
		answered int
		correct  int
	}
	chapterOrder := []uint{}
	chapters := map[uint]*chapterAgg{}

	for _, perf := range performances {
		overall.QuizScores = append(overall.QuizScores, quizScoreView(perf))
		overall.TotalQuestions += perf.answered
		overall.CorrectAnswers += perf.correct

		agg, ok := chapters[perf.quiz.ChapterID]
		if !ok {
			agg = &chapterAgg{chapter: perf.quiz.Chapter}
			chapters[perf.quiz.ChapterID] = agg
			chapterOrder = append(chapterOrder, perf.quiz.ChapterID)
		}
		agg.taken++
		agg.answered += perf.answered
		agg.correct += perf.correct
	}
	overall.OverallAccuracy = overallAccuracy(overall.CorrectAnswers, overall.TotalQuestions)

	performance := make([]dto.ChapterPerformance, 0, len(chapterOrder))
	for _, chapterID := range chapterOrder {
		agg := chapters[chapterID]
		performance = append(performance, dto.ChapterPerformance{
			ChapterID:      chapterID,
			ChapterName:    agg.chapter.Name,
			CourseName:     agg.chapter.Course.Name,
			QuizzesTaken:   agg.taken,
			TotalQuestions: agg.answered,
			CorrectAnswers: agg.correct,
			Accuracy:       overallAccuracy(agg.correct, agg.answered),
		})
	}

	response := dto.UserStatsResponse{
		OverallStats:       overall,
		ChapterPerformance: performance,
	}

	s.store.Set(ctx, cacheKey, response, statsCacheTTL)
	return response, nil
}

func (s *dashboardService) GetPublicProfile(ctx context.Context, username string) (dto.PublicProfileResponse, error) {
	cacheKey := cache.PublicProfileKey(username)
	var cached dto.PublicProfileResponse
	if s.store.Get(ctx, cacheKey, &cached) {
		return cached, nil
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.PublicProfileResponse{}, ErrUserNotFound
		}
		return dto.PublicProfileResponse{}, err
	}

	performances, err := s.collectPerformance(ctx, user.ID)
	if err != nil {
		return dto.PublicProfileResponse{}, err
	}

	stats := dto.PublicProfileStats{TotalQuizzesTaken: len(performances)}
	correct := 0
	for _, perf := range performances {
		stats.TotalQuestionsAnswered += perf.answered
		stats.TotalMarksObtained += perf.score.ObtainedMarks
		stats.TotalMarksPossible += perf.score.TotalMarks
		correct += perf.correct
	}
	stats.OverallAccuracy = overallAccuracy(correct, stats.TotalQuestionsAnswered)

	byScore := make([]quizPerformance, len(performances))
	copy(byScore, performances)
	sort.Slice(byScore, func(i, j int) bool {
		return byScore[i].score.Percentage > byScore[j].score.Percentage
	})

	top := []dto.QuizScore{}
	for i, perf := range byScore {
		if i == topPerformances {
			break
		}
		top = append(top, quizScoreView(perf))
	}

	response := dto.PublicProfileResponse{
		User: dto.UserLite{
			ID:       user.ID,
			Name:     user.Name,
			Username: user.Username,
		},
		PublicStats:     stats,
		TopPerformances: top,
	}

	s.store.Set(ctx, cacheKey, response, profileCacheTTL)
	return response, nil
}
