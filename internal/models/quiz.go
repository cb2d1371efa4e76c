package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// QuizStatus is the time-relative lifecycle state of a quiz.
type QuizStatus string

const (
	// StatusGeneral is an always-open, repeatable practice quiz.
	StatusGeneral QuizStatus = "general"
	// StatusUpcoming is a scheduled quiz whose window has not opened yet.
	StatusUpcoming QuizStatus = "upcoming"
	// StatusLive is a scheduled quiz currently inside its window.
	StatusLive QuizStatus = "live"
	// StatusEnded is a scheduled quiz whose window has closed.
	StatusEnded QuizStatus = "ended"
)

// DefaultQuizWindow is assumed when a scheduled quiz has no parsable
// duration.
const DefaultQuizWindow = 2 * time.Hour

// Quiz belongs to a chapter. A scheduled quiz has a start time and a
// duration window and accepts a single submission generation; a
// non-scheduled quiz is open-ended practice.
type Quiz struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	ChapterID uint       `gorm:"not null;index" json:"chapter_id"`
	Title     string     `gorm:"size:100;not null" json:"title"`
	StartTime *time.Time `json:"start_time"`
	Duration  string     `gorm:"size:10" json:"duration"`
	Scheduled bool       `gorm:"not null;default:false" json:"scheduled"`
	Remarks   string     `gorm:"type:text" json:"remarks"`
	Chapter   Chapter    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"chapter,omitempty"`
	Questions []Question `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"questions,omitempty"`
}

// Window returns the start and end of the quiz's live window. The second
// return is false for non-scheduled quizzes or when no start time is set.
func (q Quiz) Window() (time.Time, time.Time, bool) {
	if !q.Scheduled || q.StartTime == nil {
		return time.Time{}, time.Time{}, false
	}

	start := *q.StartTime
	return start, start.Add(q.windowLength()), true
}

// StatusAt classifies the quiz relative to the supplied instant. Exactly
// one status is returned, and non-scheduled quizzes are always general.
func (q Quiz) StatusAt(now time.Time) QuizStatus {
	start, end, ok := q.Window()
	if !ok {
		return StatusGeneral
	}

	switch {
	case now.Before(start):
		return StatusUpcoming
	case now.Before(end):
		return StatusLive
	default:
		return StatusEnded
	}
}

func (q Quiz) windowLength() time.Duration {
	d, err := ParseQuizDuration(q.Duration)
	if err != nil {
		return DefaultQuizWindow
	}
	return d
}

// ParseQuizDuration parses the HH:MM duration format used for quiz
// windows.
func ParseQuizDuration(value string) (time.Duration, error) {
	parts := strings.Split(strings.TrimSpace(value), ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("duration must be in HH:MM format, got %q", value)
	}

	hours, err := strconv.Atoi(parts[0])
	if err != nil || hours < 0 {
		return 0, fmt.Errorf("invalid duration hours %q", parts[0])
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil || minutes < 0 || minutes > 59 {
		return 0, fmt.Errorf("invalid duration minutes %q", parts[1])
	}

	return time.Duration(hours)*time.Hour + time.Duration(minutes)*time.Minute, nil
}

// CategorizeQuizzes partitions quizzes by lifecycle state at the supplied
// instant. Every quiz lands in exactly one bucket.
func CategorizeQuizzes(quizzes []Quiz, now time.Time) map[QuizStatus][]Quiz {
	categorized := map[QuizStatus][]Quiz{
		StatusGeneral:  {},
		StatusUpcoming: {},
		StatusLive:     {},
		StatusEnded:    {},
	}

	for _, quiz := range quizzes {
		status := quiz.StatusAt(now)
		categorized[status] = append(categorized[status], quiz)
	}

	return categorized
}
