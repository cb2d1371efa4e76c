package models

import (
	"time"

	"gorm.io/datatypes"
)

// Submission is one row per (user, quiz, question). For scheduled quizzes
// the first generation of rows is final; for general quizzes a later
// submit overwrites the row in place. Rows are written only by the
// submission coordinator and rewritten only by revaluation.
type Submission struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	UserID      uint           `gorm:"not null;uniqueIndex:idx_submission_user_quiz_question;index:idx_submission_user" json:"user_id"`
	QuizID      uint           `gorm:"not null;uniqueIndex:idx_submission_user_quiz_question;index:idx_submission_quiz" json:"quiz_id"`
	QuestionID  uint           `gorm:"not null;uniqueIndex:idx_submission_user_quiz_question" json:"question_id"`
	Answer      datatypes.JSON `gorm:"not null" json:"answer"`
	IsCorrect   bool           `gorm:"not null" json:"is_correct"`
	SubmittedAt time.Time      `gorm:"not null" json:"submitted_at"`
}
