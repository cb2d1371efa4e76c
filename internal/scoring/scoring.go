package scoring

import (
	"encoding/json"
	"math"

	"github.com/noah-isme/quizzo-go-api/internal/models"
)

// NumericTolerance is the absolute tolerance applied when judging NAT
// answers.
const NumericTolerance = 0.01

// Score aggregates a learner's marks for one quiz.
type Score struct {
	ObtainedMarks float64 `json:"obtained_marks"`
	TotalMarks    float64 `json:"total_marks"`
	Percentage    float64 `json:"percentage"`
}

// Judge reports whether the answer is correct for the question. It is a
// pure function of its inputs and never fails: malformed correct answers
// and failed numeric coercions judge incorrect.
func Judge(question models.Question, answer Answer) bool {
	if answer.Kind != question.Type {
		return false
	}

	correctRaw := json.RawMessage(question.CorrectAnswer)

	switch question.Type {
	case models.QuestionTypeMCQ:
		correct, ok := correctSingle(correctRaw)
		return ok && answer.Single == correct
	case models.QuestionTypeMSQ:
		correct, ok := correctSet(correctRaw)
		return ok && sameSet(answer.Multiple, correct)
	case models.QuestionTypeNAT:
		correct, ok := correctNumeric(correctRaw)
		return ok && answer.NumericOK && math.Abs(answer.Numeric-correct) < NumericTolerance
	default:
		return false
	}
}

// JudgeStored re-judges a stored submission answer against the question's
// current type and correct answer. Used by revaluation; answers whose
// stored shape no longer matches the (possibly retyped) question judge
// incorrect.
func JudgeStored(question models.Question, stored json.RawMessage) bool {
	answer, err := ParseAnswer(question.Type, stored)
	if err != nil {
		return false
	}
	return Judge(question, answer)
}

// Tally computes the score from the quiz's full question set and the
// learner's latest submissions. TotalMarks covers every question, whether
// answered or not.
func Tally(questions []models.Question, submissions []models.Submission) Score {
	correctByQuestion := make(map[uint]bool, len(submissions))
	for _, submission := range submissions {
		correctByQuestion[submission.QuestionID] = submission.IsCorrect
	}

	var score Score
	for _, question := range questions {
		score.TotalMarks += question.Marks
		if correctByQuestion[question.ID] {
			score.ObtainedMarks += question.Marks
		}
	}

	if score.TotalMarks > 0 {
		score.Percentage = score.ObtainedMarks / score.TotalMarks * 100
	}

	return score
}

func correctSingle(raw json.RawMessage) (int, bool) {
	indices, ok := decodeIndices(raw)
	if !ok || len(indices) != 1 {
		return 0, false
	}
	return indices[0], true
}

func correctSet(raw json.RawMessage) ([]int, bool) {
	indices, ok := decodeIndices(raw)
	if !ok || len(indices) == 0 {
		return nil, false
	}
	return indices, true
}

func correctNumeric(raw json.RawMessage) (float64, bool) {
	answer, err := ParseAnswer(models.QuestionTypeNAT, raw)
	if err != nil || !answer.NumericOK {
		return 0, false
	}
	return answer.Numeric, true
}

func decodeIndices(raw json.RawMessage) ([]int, bool) {
	var value interface{}
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil, false
	}

	list, ok := value.([]interface{})
	if !ok {
		list = []interface{}{value}
	}

	indices := make([]int, 0, len(list))
	for _, item := range list {
		index, ok := asOptionIndex(item)
		if !ok {
			return nil, false
		}
		indices = append(indices, index)
	}

	return indices, true
}

// sameSet compares selections as sets: order and duplicates on either
// side are ignored, but a proper subset or superset is not equal.
func sameSet(a, b []int) bool {
	setA := make(map[int]struct{}, len(a))
	for _, v := range a {
		setA[v] = struct{}{}
	}
	setB := make(map[int]struct{}, len(b))
	for _, v := range b {
		setB[v] = struct{}{}
	}

	if len(setA) != len(setB) {
		return false
	}
	for v := range setA {
		if _, ok := setB[v]; !ok {
			return false
		}
	}
	return true
}
