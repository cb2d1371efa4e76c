package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/quizzo-go-api/internal/models"
)

// SubmissionRepository defines data operations for submissions. All
// writes go through SaveBatch so a request's rows commit atomically.
type SubmissionRepository interface {
	ListByUserAndQuiz(ctx context.Context, userID, quizID uint) ([]models.Submission, error)
	ListByUser(ctx context.Context, userID uint) ([]models.Submission, error)
	ListByUserAndQuizzes(ctx context.Context, userID uint, quizIDs []uint) ([]models.Submission, error)
	ExistsForUserAndQuiz(ctx context.Context, userID, quizID uint) (bool, error)
	DistinctQuizIDsByUser(ctx context.Context, userID uint) ([]uint, error)
	DistinctUserIDsByQuiz(ctx context.Context, quizID uint) ([]uint, error)
	SubmittedQuizIDs(ctx context.Context, userID uint) (map[uint]struct{}, error)
	SaveBatch(ctx context.Context, submissions []*models.Submission) error
	Count(ctx context.Context) (int64, error)
}

type submissionRepository struct {
	db *gorm.DB
}

// NewSubmissionRepository instantiates the repository.
func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

func (r *submissionRepository) ListByUserAndQuiz(ctx context.Context, userID, quizID uint) ([]models.Submission, error) {
	var submissions []models.Submission
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND quiz_id = ?", userID, quizID).
		Order("question_id ASC").
		Find(&submissions).Error; err != nil {
		return nil, err
	}

	return submissions, nil
}

func (r *submissionRepository) ListByUser(ctx context.Context, userID uint) ([]models.Submission, error) {
	var submissions []models.Submission
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("submitted_at DESC").
		Find(&submissions).Error; err != nil {
		return nil, err
	}

	return submissions, nil
}

func (r *submissionRepository) ListByUserAndQuizzes(ctx context.Context, userID uint, quizIDs []uint) ([]models.Submission, error) {
	if len(quizIDs) == 0 {
		return []models.Submission{}, nil
	}

	var submissions []models.Submission
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND quiz_id IN ?", userID, quizIDs).
		Find(&submissions).Error; err != nil {
		return nil, err
	}

	return submissions, nil
}

func (r *submissionRepository) ExistsForUserAndQuiz(ctx context.Context, userID, quizID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Submission{}).
		Where("user_id = ? AND quiz_id = ?", userID, quizID).
		Count(&count).Error; err != nil {
		return false, err
	}

	return count > 0, nil
}

func (r *submissionRepository) DistinctQuizIDsByUser(ctx context.Context, userID uint) ([]uint, error) {
	var quizIDs []uint
	if err := r.db.WithContext(ctx).Model(&models.Submission{}).
		Where("user_id = ?", userID).
		Distinct("quiz_id").
		Pluck("quiz_id", &quizIDs).Error; err != nil {
		return nil, err
	}

	return quizIDs, nil
}

func (r *submissionRepository) DistinctUserIDsByQuiz(ctx context.Context, quizID uint) ([]uint, error) {
	var userIDs []uint
	if err := r.db.WithContext(ctx).Model(&models.Submission{}).
		Where("quiz_id = ?", quizID).
		Distinct("user_id").
		Pluck("user_id", &userIDs).Error; err != nil {
		return nil, err
	}

	return userIDs, nil
}

func (r *submissionRepository) SubmittedQuizIDs(ctx context.Context, userID uint) (map[uint]struct{}, error) {
	quizIDs, err := r.DistinctQuizIDsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	submitted := make(map[uint]struct{}, len(quizIDs))
	for _, id := range quizIDs {
		submitted[id] = struct{}{}
	}

	return submitted, nil
}

// SaveBatch persists the rows inside one transaction: rows with an ID are
// updated in place, the rest are created. Either all commit or none do.
func (r *submissionRepository) SaveBatch(ctx context.Context, submissions []*models.Submission) error {
	if len(submissions) == 0 {
		return nil
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, submission := range submissions {
			if submission.ID != 0 {
				if err := tx.Save(submission).Error; err != nil {
					return err
				}
				continue
			}
			if err := tx.Create(submission).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *submissionRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Submission{}).Count(&count).Error
	return count, err
}
