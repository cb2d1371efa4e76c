package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/quizzo-go-api/internal/models"
)

// ChapterRepository defines data operations for chapters and courses.
type ChapterRepository interface {
	GetByID(ctx context.Context, id uint) (models.Chapter, error)
	CountCourses(ctx context.Context) (int64, error)
}

type chapterRepository struct {
	db *gorm.DB
}

// NewChapterRepository instantiates the repository.
func NewChapterRepository(db *gorm.DB) ChapterRepository {
	return &chapterRepository{db: db}
}

func (r *chapterRepository) GetByID(ctx context.Context, id uint) (models.Chapter, error) {
	var chapter models.Chapter
	if err := r.db.WithContext(ctx).
		Preload("Course").
		First(&chapter, id).Error; err != nil {
		return models.Chapter{}, err
	}

	return chapter, nil
}

func (r *chapterRepository) CountCourses(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Course{}).Count(&count).Error
	return count, err
}
