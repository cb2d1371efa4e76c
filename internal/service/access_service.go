package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/quizzo-go-api/internal/models"
	"github.com/noah-isme/quizzo-go-api/internal/repository"
)

var (
	// ErrQuizNotFound indicates the quiz does not exist.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrNotSubscribed indicates the learner holds no active subscription
	// on the quiz's chapter.
	ErrNotSubscribed = errors.New("not subscribed to this chapter")
	// ErrQuizNotStarted indicates a scheduled quiz whose window has not
	// opened; its content must not be retrievable yet.
	ErrQuizNotStarted = errors.New("quiz has not started yet")
)

// AccessService is the eligibility gate in front of quiz content. It
// decides whether a learner may fetch or submit a quiz; submission-time
// single-shot rules are enforced by the submission service, not here.
type AccessService interface {
	// CanAccess returns the quiz when the learner is eligible, or one of
	// ErrQuizNotFound, ErrNotSubscribed, ErrQuizNotStarted. Live and
	// ended scheduled quizzes and all general quizzes are accessible.
	CanAccess(ctx context.Context, userID, quizID uint) (models.Quiz, error)
}

type accessService struct {
	quizzes       repository.QuizRepository
	subscriptions repository.SubscriptionRepository
	logger        zerolog.Logger
	now           func() time.Time
}

// NewAccessService constructs the eligibility gate.
func NewAccessService(quizzes repository.QuizRepository, subscriptions repository.SubscriptionRepository, logger zerolog.Logger) AccessService {
	return &accessService{
		quizzes:       quizzes,
		subscriptions: subscriptions,
		logger:        logger.With().Str("component", "access_service").Logger(),
		now:           time.Now,
	}
}

func (s *accessService) CanAccess(ctx context.Context, userID, quizID uint) (models.Quiz, error) {
	quiz, err := s.quizzes.GetByID(ctx, quizID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Quiz{}, ErrQuizNotFound
		}
		return models.Quiz{}, err
	}

	if _, err := s.subscriptions.GetActive(ctx, userID, quiz.ChapterID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Quiz{}, ErrNotSubscribed
		}
		return models.Quiz{}, err
	}

	if quiz.StatusAt(s.now()) == models.StatusUpcoming {
		return models.Quiz{}, ErrQuizNotStarted
	}

	return quiz, nil
}
