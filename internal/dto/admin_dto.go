package dto

import "encoding/json"

// QuizCreateRequest describes an administrator creating a quiz.
type QuizCreateRequest struct {
	ChapterID uint   `json:"chapter_id" validate:"required,gt=0"`
	Title     string `json:"title" validate:"required,min=1,max=100"`
	StartTime string `json:"start_time" validate:"omitempty"`
	Duration  string `json:"duration" validate:"omitempty,max=10"`
	Scheduled bool   `json:"scheduled"`
	Remarks   string `json:"remarks"`
}

// QuizUpdateRequest rewrites a quiz's schedule and metadata.
type QuizUpdateRequest struct {
	Title     string `json:"title" validate:"required,min=1,max=100"`
	StartTime string `json:"start_time" validate:"omitempty"`
	Duration  string `json:"duration" validate:"omitempty,max=10"`
	Scheduled bool   `json:"scheduled"`
	Remarks   string `json:"remarks"`
}

// QuestionCreateRequest describes an administrator authoring a question.
type QuestionCreateRequest struct {
	QuizID        uint            `json:"quiz_id" validate:"required,gt=0"`
	Statement     string          `json:"statement" validate:"required,min=1"`
	Type          string          `json:"type" validate:"required,oneof=MCQ MSQ NAT"`
	Options       json.RawMessage `json:"options"`
	CorrectAnswer json.RawMessage `json:"correct_answer" validate:"required"`
	Marks         float64         `json:"marks" validate:"omitempty,gt=0"`
}

// QuestionUpdateRequest rewrites a question's content; submissions made
// against the old content are revaluated afterwards.
type QuestionUpdateRequest struct {
	Statement     string          `json:"statement" validate:"required,min=1"`
	Type          string          `json:"type" validate:"required,oneof=MCQ MSQ NAT"`
	Options       json.RawMessage `json:"options"`
	CorrectAnswer json.RawMessage `json:"correct_answer" validate:"required"`
	Marks         float64         `json:"marks" validate:"omitempty,gt=0"`
}

// QuestionResponse is the admin-facing question view, correct answer
// included.
type QuestionResponse struct {
	ID            uint            `json:"id"`
	QuizID        uint            `json:"quiz_id"`
	Statement     string          `json:"statement"`
	Type          string          `json:"type"`
	Options       json.RawMessage `json:"options"`
	CorrectAnswer json.RawMessage `json:"correct_answer"`
	Marks         float64         `json:"marks"`
}

// AdminStatsResponse is the admin dashboard counter block.
type AdminStatsResponse struct {
	TotalUsers       int64 `json:"total_users"`
	TotalCourses     int64 `json:"total_courses"`
	TotalQuizzes     int64 `json:"total_quizzes"`
	TotalSubmissions int64 `json:"total_submissions"`
}

// QuizAggregateResponse summarizes how a cohort performed on one quiz.
type QuizAggregateResponse struct {
	QuizID            uint    `json:"quiz_id"`
	Title             string  `json:"title"`
	Participants      int     `json:"participants"`
	AveragePercentage float64 `json:"average_percentage"`
}
