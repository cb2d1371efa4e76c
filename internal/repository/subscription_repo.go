package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/quizzo-go-api/internal/models"
)

// SubscriptionRepository defines data operations for chapter
// subscriptions.
type SubscriptionRepository interface {
	// GetActive returns the active subscription for (user, chapter), or
	// gorm.ErrRecordNotFound.
	GetActive(ctx context.Context, userID, chapterID uint) (models.Subscription, error)
	// Find returns the subscription row regardless of its active flag.
	Find(ctx context.Context, userID, chapterID uint) (models.Subscription, error)
	ListActiveByUser(ctx context.Context, userID uint) ([]models.Subscription, error)
	Create(ctx context.Context, subscription *models.Subscription) error
	Update(ctx context.Context, subscription *models.Subscription) error
}

type subscriptionRepository struct {
	db *gorm.DB
}

// NewSubscriptionRepository instantiates the repository.
func NewSubscriptionRepository(db *gorm.DB) SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

func (r *subscriptionRepository) GetActive(ctx context.Context, userID, chapterID uint) (models.Subscription, error) {
	var subscription models.Subscription
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND chapter_id = ? AND active = ?", userID, chapterID, true).
		First(&subscription).Error; err != nil {
		return models.Subscription{}, err
	}

	return subscription, nil
}

func (r *subscriptionRepository) Find(ctx context.Context, userID, chapterID uint) (models.Subscription, error) {
	var subscription models.Subscription
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND chapter_id = ?", userID, chapterID).
		First(&subscription).Error; err != nil {
		return models.Subscription{}, err
	}

	return subscription, nil
}

func (r *subscriptionRepository) ListActiveByUser(ctx context.Context, userID uint) ([]models.Subscription, error) {
	var subscriptions []models.Subscription
	if err := r.db.WithContext(ctx).
		Preload("Chapter").
		Preload("Chapter.Course").
		Where("user_id = ? AND active = ?", userID, true).
		Find(&subscriptions).Error; err != nil {
		return nil, err
	}

	return subscriptions, nil
}

func (r *subscriptionRepository) Create(ctx context.Context, subscription *models.Subscription) error {
	return r.db.WithContext(ctx).Create(subscription).Error
}

func (r *subscriptionRepository) Update(ctx context.Context, subscription *models.Subscription) error {
	return r.db.WithContext(ctx).Save(subscription).Error
}
