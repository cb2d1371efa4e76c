package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/quizzo-go-api/internal/models"
)

// QuizRepository defines data operations for quizzes.
type QuizRepository interface {
	GetByID(ctx context.Context, id uint) (models.Quiz, error)
	ListByChapters(ctx context.Context, chapterIDs []uint) ([]models.Quiz, error)
	ListByChapter(ctx context.Context, chapterID uint) ([]models.Quiz, error)
	Create(ctx context.Context, quiz *models.Quiz) error
	Update(ctx context.Context, quiz *models.Quiz) error
	Delete(ctx context.Context, id uint) error
	Count(ctx context.Context) (int64, error)
}

type quizRepository struct {
	db *gorm.DB
}

// NewQuizRepository instantiates the repository.
func NewQuizRepository(db *gorm.DB) QuizRepository {
	return &quizRepository{db: db}
}

func (r *quizRepository) baseQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.Quiz{}).
		Preload("Chapter").
		Preload("Chapter.Course").
		Preload("Questions")
}

func (r *quizRepository) GetByID(ctx context.Context, id uint) (models.Quiz, error) {
	var quiz models.Quiz
	if err := r.baseQuery(ctx).First(&quiz, id).Error; err != nil {
		return models.Quiz{}, err
	}

	return quiz, nil
}

func (r *quizRepository) ListByChapters(ctx context.Context, chapterIDs []uint) ([]models.Quiz, error) {
	if len(chapterIDs) == 0 {
		return []models.Quiz{}, nil
	}

	var quizzes []models.Quiz
	if err := r.baseQuery(ctx).
		Where("chapter_id IN ?", chapterIDs).
		Order("start_time ASC").
		Find(&quizzes).Error; err != nil {
		return nil, err
	}

	return quizzes, nil
}

func (r *quizRepository) ListByChapter(ctx context.Context, chapterID uint) ([]models.Quiz, error) {
	return r.ListByChapters(ctx, []uint{chapterID})
}

func (r *quizRepository) Create(ctx context.Context, quiz *models.Quiz) error {
	return r.db.WithContext(ctx).Create(quiz).Error
}

// Update writes the quiz row only; preloaded associations are left
// untouched.
func (r *quizRepository) Update(ctx context.Context, quiz *models.Quiz) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(quiz).Error
}

func (r *quizRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Quiz{}, id).Error
}

func (r *quizRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Quiz{}).Count(&count).Error
	return count, err
}
