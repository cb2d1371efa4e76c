package dto

import (
	"encoding/json"
	"time"

	"github.com/noah-isme/quizzo-go-api/internal/scoring"
)

// AnswerSubmission carries one raw answer; its shape is validated against
// the question's declared type, not sniffed.
type AnswerSubmission struct {
	QuestionID uint            `json:"question_id" validate:"required,gt=0"`
	Answer     json.RawMessage `json:"answer" validate:"required"`
}

// SubmitRequest is the payload for submitting a quiz attempt.
type SubmitRequest struct {
	Answers []AnswerSubmission `json:"answers" validate:"required,min=1,dive"`
}

// SubmitResponse reports how much of the attempt was recorded.
type SubmitResponse struct {
	QuizID         uint          `json:"quiz_id"`
	AcceptedCount  int           `json:"accepted_count"`
	TotalQuestions int           `json:"total_questions"`
	Score          scoring.Score `json:"score"`
}

// QuestionPerformance is the per-question breakdown in a result view.
// The correct answer is revealed here because results are only available
// after submitting.
type QuestionPerformance struct {
	QuestionID    uint            `json:"question_id"`
	Statement     string          `json:"statement"`
	Type          string          `json:"type"`
	Marks         float64         `json:"marks"`
	CorrectAnswer json.RawMessage `json:"correct_answer"`
	UserAnswer    json.RawMessage `json:"user_answer"`
	IsCorrect     bool            `json:"is_correct"`
}

// QuizResultResponse is a learner's scored result for one quiz.
type QuizResultResponse struct {
	Quiz                QuizHeader            `json:"quiz"`
	Score               scoring.Score         `json:"score"`
	QuestionPerformance []QuestionPerformance `json:"question_performance"`
	CompletedAt         *time.Time            `json:"completed_at"`
}

// RevaluationSummary reports the outcome of re-judging a quiz's stored
// submissions after its questions changed.
type RevaluationSummary struct {
	QuizID             uint `json:"quiz_id"`
	UsersRevaluated    int  `json:"users_revaluated"`
	UsersSkipped       int  `json:"users_skipped"`
	SubmissionsUpdated int  `json:"submissions_updated"`
}
