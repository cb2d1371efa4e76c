package dto

import (
	"time"

	"github.com/noah-isme/quizzo-go-api/internal/scoring"
)

// QuizScore pairs a quiz with a learner's score on it.
type QuizScore struct {
	QuizID    uint          `json:"quiz_id"`
	QuizTitle string        `json:"quiz_title"`
	Chapter   string        `json:"chapter"`
	Course    string        `json:"course"`
	Score     scoring.Score `json:"score"`
}

// UserQuizStats aggregates a learner's activity across all quizzes.
type UserQuizStats struct {
	TotalQuizzes    int         `json:"total_quizzes"`
	TotalQuestions  int         `json:"total_questions"`
	CorrectAnswers  int         `json:"correct_answers"`
	OverallAccuracy float64     `json:"overall_accuracy"`
	QuizScores      []QuizScore `json:"quiz_scores"`
}

// DashboardResponse is the learner home view.
type DashboardResponse struct {
	User            UserLite      `json:"user"`
	UpcomingQuizzes []QuizSummary `json:"upcoming_quizzes"`
	RecentQuizzes   []QuizScore   `json:"recent_quizzes"`
	Stats           DashboardStat `json:"stats"`
}

// DashboardStat is the compact stat block on the dashboard.
type DashboardStat struct {
	TotalQuizzesTaken int     `json:"total_quizzes_taken"`
	OverallAccuracy   float64 `json:"overall_accuracy"`
}

// UserLite identifies a learner without exposing account details.
type UserLite struct {
	ID       uint   `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
}

// ChapterPerformance summarizes accuracy within one subscribed chapter.
type ChapterPerformance struct {
	ChapterID      uint    `json:"chapter_id"`
	ChapterName    string  `json:"chapter_name"`
	CourseName     string  `json:"course_name"`
	QuizzesTaken   int     `json:"quizzes_taken"`
	TotalQuestions int     `json:"total_questions"`
	CorrectAnswers int     `json:"correct_answers"`
	Accuracy       float64 `json:"accuracy"`
}

// UserStatsResponse is the detailed statistics view.
type UserStatsResponse struct {
	OverallStats       UserQuizStats        `json:"overall_stats"`
	ChapterPerformance []ChapterPerformance `json:"chapter_performance"`
}

// PublicProfileResponse is the anonymously accessible profile view.
type PublicProfileResponse struct {
	User            UserLite           `json:"user"`
	PublicStats     PublicProfileStats `json:"public_stats"`
	TopPerformances []QuizScore        `json:"top_performances"`
}

// PublicProfileStats carries only aggregate, non-sensitive numbers.
type PublicProfileStats struct {
	TotalQuizzesTaken      int     `json:"total_quizzes_taken"`
	TotalQuestionsAnswered int     `json:"total_questions_answered"`
	OverallAccuracy        float64 `json:"overall_accuracy"`
	TotalMarksObtained     float64 `json:"total_marks_obtained"`
	TotalMarksPossible     float64 `json:"total_marks_possible"`
}

// SubscriptionView is one active chapter subscription.
type SubscriptionView struct {
	ID           uint      `json:"id"`
	ChapterID    uint      `json:"chapter_id"`
	ChapterName  string    `json:"chapter_name"`
	CourseName   string    `json:"course_name"`
	SubscribedOn time.Time `json:"subscribed_on"`
	QuizCount    int       `json:"quiz_count"`
}

// SubscriptionsResponse lists the learner's active subscriptions.
type SubscriptionsResponse struct {
	Subscriptions []SubscriptionView `json:"subscriptions"`
}

// SubscribeRequest targets a chapter to subscribe to or unsubscribe from.
type SubscribeRequest struct {
	ChapterID uint `json:"chapter_id" validate:"required,gt=0"`
}
