package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/quizzo-go-api/internal/cache"
	"github.com/noah-isme/quizzo-go-api/internal/dto"
	"github.com/noah-isme/quizzo-go-api/internal/models"
	"github.com/noah-isme/quizzo-go-api/internal/repository"
)

var (
	// ErrChapterNotFound indicates the chapter does not exist.
	ErrChapterNotFound = errors.New("chapter not found")
	// ErrAlreadySubscribed indicates an active subscription already
	// covers the chapter.
	ErrAlreadySubscribed = errors.New("already subscribed to this chapter")
)

const subscriptionsCacheTTL = 10 * time.Minute

// SubscriptionService manages a learner's chapter subscriptions.
// Unsubscribing deactivates the row rather than deleting it, so past
// submissions stay attributable and a re-subscribe simply reactivates.
type SubscriptionService interface {
	List(ctx context.Context, userID uint) (dto.SubscriptionsResponse, error)
	Subscribe(ctx context.Context, userID, chapterID uint) (dto.SubscriptionView, error)
	Unsubscribe(ctx context.Context, userID, chapterID uint) error
}

type subscriptionService struct {
	subscriptions repository.SubscriptionRepository
	chapters      repository.ChapterRepository
	quizzes       repository.QuizRepository
	store         cache.Store
	invalidator   *cache.Invalidator
	logger        zerolog.Logger
	now           func() time.Time
}

// NewSubscriptionService constructs the subscription service.
func NewSubscriptionService(
	subscriptions repository.SubscriptionRepository,
	chapters repository.ChapterRepository,
	quizzes repository.QuizRepository,
	store cache.Store,
	invalidator *cache.Invalidator,
	logger zerolog.Logger,
) SubscriptionService {
	return &subscriptionService{
		subscriptions: subscriptions,
		chapters:      chapters,
		quizzes:       quizzes,
		store:         store,
		invalidator:   invalidator,
		logger:        logger.With().Str("component", "subscription_service").Logger(),
		now:           time.Now,
	}
}

func (s *subscriptionService) List(ctx context.Context, userID uint) (dto.SubscriptionsResponse, error) {
	cacheKey := cache.UserSubscriptionsKey(userID)
	var cached dto.SubscriptionsResponse
	if s.store.Get(ctx, cacheKey, &cached) {
		return cached, nil
	}

	subscriptions, err := s.subscriptions.ListActiveByUser(ctx, userID)
	if err != nil {
		return dto.SubscriptionsResponse{}, err
	}

	response := dto.SubscriptionsResponse{Subscriptions: []dto.SubscriptionView{}}
	for _, subscription := range subscriptions {
		quizzes, err := s.quizzes.ListByChapter(ctx, subscription.ChapterID)
		if err != nil {
			return dto.SubscriptionsResponse{}, err
		}
		response.Subscriptions = append(response.Subscriptions, dto.SubscriptionView{
			ID:           subscription.ID,
			ChapterID:    subscription.ChapterID,
			ChapterName:  subscription.Chapter.Name,
			CourseName:   subscription.Chapter.Course.Name,
			SubscribedOn: subscription.SubscribedOn,
			QuizCount:    len(quizzes),
		})
	}

	s.store.Set(ctx, cacheKey, response, subscriptionsCacheTTL)
	return response, nil
}

func (s *subscriptionService) Subscribe(ctx context.Context, userID, chapterID uint) (dto.SubscriptionView, error) {
	chapter, err := s.chapters.GetByID(ctx, chapterID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubscriptionView{}, ErrChapterNotFound
		}
		return dto.SubscriptionView{}, err
	}

	subscription, err := s.subscriptions.Find(ctx, userID, chapterID)
	switch {
	case err == nil && subscription.Active:
		return dto.SubscriptionView{}, ErrAlreadySubscribed
	case err == nil:
		// A deactivated row exists from a past unsubscribe.
		subscription.Active = true
		subscription.SubscribedOn = s.now()
		if err := s.subscriptions.Update(ctx, &subscription); err != nil {
			return dto.SubscriptionView{}, err
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		subscription = models.Subscription{
			UserID:       userID,
			ChapterID:    chapterID,
			SubscribedOn: s.now(),
			Active:       true,
		}
		if err := s.subscriptions.Create(ctx, &subscription); err != nil {
			return dto.SubscriptionView{}, err
		}
	default:
		return dto.SubscriptionView{}, err
	}

	s.invalidator.User(ctx, userID)
	s.logger.Info().
		Uint("user_id", userID).
		Uint("chapter_id", chapterID).
		Msg("learner subscribed to chapter")

	return dto.SubscriptionView{
		ID:           subscription.ID,
		ChapterID:    chapterID,
		ChapterName:  chapter.Name,
		CourseName:   chapter.Course.Name,
		SubscribedOn: subscription.SubscribedOn,
	}, nil
}

func (s *subscriptionService) Unsubscribe(ctx context.Context, userID, chapterID uint) error {
	subscription, err := s.subscriptions.GetActive(ctx, userID, chapterID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotSubscribed
		}
		return err
	}

	subscription.Active = false
	if err := s.subscriptions.Update(ctx, &subscription); err != nil {
		return err
	}

	s.invalidator.User(ctx, userID)
	s.logger.Info().
		Uint("user_id", userID).
		Uint("chapter_id", chapterID).
		Msg("learner unsubscribed from chapter")

	return nil
}
