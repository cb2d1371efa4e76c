package dto

import (
	"time"

	"github.com/noah-isme/quizzo-go-api/internal/models"
)

// QuizSummary is the listing view of a quiz.
type QuizSummary struct {
	ID            uint       `json:"id"`
	Title         string     `json:"title"`
	Chapter       string     `json:"chapter"`
	Course        string     `json:"course"`
	StartTime     *time.Time `json:"start_time"`
	Duration      string     `json:"duration"`
	Scheduled     bool       `json:"scheduled"`
	Status        string     `json:"status"`
	Remarks       string     `json:"remarks"`
	QuestionCount int        `json:"question_count"`
	TotalMarks    float64    `json:"total_marks,omitempty"`
}

// NewQuizSummary converts a quiz model (with chapter, course, and
// questions preloaded) into its listing view at the given instant.
func NewQuizSummary(quiz models.Quiz, now time.Time) QuizSummary {
	var totalMarks float64
	for _, question := range quiz.Questions {
		totalMarks += question.Marks
	}

	return QuizSummary{
		ID:            quiz.ID,
		Title:         quiz.Title,
		Chapter:       quiz.Chapter.Name,
		Course:        quiz.Chapter.Course.Name,
		StartTime:     quiz.StartTime,
		Duration:      quiz.Duration,
		Scheduled:     quiz.Scheduled,
		Status:        string(quiz.StatusAt(now)),
		Remarks:       quiz.Remarks,
		QuestionCount: len(quiz.Questions),
		TotalMarks:    totalMarks,
	}
}

// UpcomingQuizzesResponse lists scheduled quizzes that have not started.
type UpcomingQuizzesResponse struct {
	UpcomingQuizzes []QuizSummary `json:"upcoming_quizzes"`
}

// OpenQuizzesResponse lists quizzes a learner can attempt right now.
type OpenQuizzesResponse struct {
	OpenQuizzes []QuizSummary `json:"open_quizzes"`
}

// CategorizedQuizzesResponse partitions a chapter's quizzes by lifecycle
// state.
type CategorizedQuizzesResponse struct {
	General  []QuizSummary `json:"general"`
	Upcoming []QuizSummary `json:"upcoming"`
	Live     []QuizSummary `json:"live"`
	Ended    []QuizSummary `json:"ended"`
}

// QuizHeader carries quiz metadata shared by question and result views.
type QuizHeader struct {
	ID             uint       `json:"id"`
	Title          string     `json:"title"`
	Chapter        string     `json:"chapter"`
	Course         string     `json:"course"`
	StartTime      *time.Time `json:"start_time"`
	Duration       string     `json:"duration"`
	Scheduled      bool       `json:"scheduled"`
	Status         string     `json:"status"`
	Instructions   string     `json:"instructions"`
	TotalQuestions int        `json:"total_questions"`
	TotalMarks     float64    `json:"total_marks"`
}

// QuestionView is the learner-facing shape of a question; the correct
// answer is never serialized.
type QuestionView struct {
	ID             uint        `json:"id"`
	QuestionNumber int         `json:"question_number"`
	Statement      string      `json:"statement"`
	Type           string      `json:"type"`
	Options        interface{} `json:"options"`
	Marks          float64     `json:"marks"`
}

// QuizQuestionsResponse bundles the quiz header with its questions.
type QuizQuestionsResponse struct {
	Quiz      QuizHeader     `json:"quiz"`
	Questions []QuestionView `json:"questions"`
}
