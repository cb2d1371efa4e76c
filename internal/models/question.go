package models

import "gorm.io/datatypes"

// Question types supported by the scoring engine.
const (
	// QuestionTypeMCQ is single-choice: exactly one correct option index.
	QuestionTypeMCQ = "MCQ"
	// QuestionTypeMSQ is multi-choice: a set of correct option indices.
	QuestionTypeMSQ = "MSQ"
	// QuestionTypeNAT is numeric-answer: a single numeric value.
	QuestionTypeNAT = "NAT"
)

// Question belongs to a quiz. Options and CorrectAnswer are stored as
// JSON; the correct answer's shape depends on Type (MCQ: [index],
// MSQ: [indices...], NAT: [value]). Administrators may rewrite questions
// at any time, including after submissions exist.
type Question struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	QuizID        uint           `gorm:"not null;index" json:"quiz_id"`
	Statement     string         `gorm:"type:text;not null" json:"statement"`
	Type          string         `gorm:"size:10;not null" json:"type"`
	Options       datatypes.JSON `json:"options"`
	CorrectAnswer datatypes.JSON `gorm:"not null" json:"-"`
	Marks         float64        `gorm:"not null;default:1" json:"marks"`
}

// ValidQuestionType reports whether the supplied type is one the scoring
// engine can judge.
func ValidQuestionType(t string) bool {
	switch t {
	case QuestionTypeMCQ, QuestionTypeMSQ, QuestionTypeNAT:
		return true
	default:
		return false
	}
}
