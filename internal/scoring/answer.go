package scoring

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/noah-isme/quizzo-go-api/internal/models"
)

// ErrBadAnswerShape indicates an answer payload that does not match the
// question type's expected shape. It aborts the whole submission batch.
var ErrBadAnswerShape = errors.New("answer shape does not match question type")

// Answer is the typed form of a learner's response, chosen by the
// question's declared type rather than by sniffing the payload shape.
type Answer struct {
	Kind     string
	Single   int
	Multiple []int
	Numeric  float64
	// NumericOK is false when a NAT payload was shaped acceptably but
	// could not be coerced to a number; such answers judge incorrect.
	NumericOK bool
	// NumericRaw preserves the original NAT payload when coercion failed.
	NumericRaw string
}

// ParseAnswer validates and coerces a raw JSON answer payload against the
// question type. Clients may send scalars or collections; both are
// accepted where they are unambiguous.
func ParseAnswer(questionType string, raw json.RawMessage) (Answer, error) {
	if len(raw) == 0 {
		return Answer{}, fmt.Errorf("%w: empty payload", ErrBadAnswerShape)
	}

	var value interface{}
	if err := json.Unmarshal(raw, &value); err != nil {
		return Answer{}, fmt.Errorf("%w: invalid json", ErrBadAnswerShape)
	}

	switch questionType {
	case models.QuestionTypeMCQ:
		return parseSingle(value)
	case models.QuestionTypeMSQ:
		return parseMultiple(value)
	case models.QuestionTypeNAT:
		return parseNumeric(value)
	default:
		return Answer{}, fmt.Errorf("%w: unknown question type %q", ErrBadAnswerShape, questionType)
	}
}

func parseSingle(value interface{}) (Answer, error) {
	if list, ok := value.([]interface{}); ok {
		if len(list) != 1 {
			return Answer{}, fmt.Errorf("%w: MCQ answer must hold exactly one selection", ErrBadAnswerShape)
		}
		value = list[0]
	}

	index, ok := asOptionIndex(value)
	if !ok {
		return Answer{}, fmt.Errorf("%w: MCQ selection must be an option index", ErrBadAnswerShape)
	}

	return Answer{Kind: models.QuestionTypeMCQ, Single: index}, nil
}

func parseMultiple(value interface{}) (Answer, error) {
	list, ok := value.([]interface{})
	if !ok {
		// Scalar selections arrive from older clients; treat as a
		// one-element collection.
		list = []interface{}{value}
	}

	indices := make([]int, 0, len(list))
	for _, item := range list {
		index, ok := asOptionIndex(item)
		if !ok {
			return Answer{}, fmt.Errorf("%w: MSQ selections must be option indices", ErrBadAnswerShape)
		}
		indices = append(indices, index)
	}

	return Answer{Kind: models.QuestionTypeMSQ, Multiple: indices}, nil
}

func parseNumeric(value interface{}) (Answer, error) {
	if list, ok := value.([]interface{}); ok {
		if len(list) != 1 {
			return Answer{}, fmt.Errorf("%w: NAT answer must hold exactly one value", ErrBadAnswerShape)
		}
		value = list[0]
	}

	answer := Answer{Kind: models.QuestionTypeNAT}
	switch v := value.(type) {
	case float64:
		answer.Numeric = v
		answer.NumericOK = true
	case string:
		answer.NumericRaw = v
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err == nil {
			answer.Numeric = parsed
			answer.NumericOK = true
		}
	case bool, nil:
		return Answer{}, fmt.Errorf("%w: NAT answer must be numeric", ErrBadAnswerShape)
	default:
		return Answer{}, fmt.Errorf("%w: NAT answer must be numeric", ErrBadAnswerShape)
	}

	return answer, nil
}

func asOptionIndex(value interface{}) (int, bool) {
	number, ok := value.(float64)
	if !ok {
		return 0, false
	}
	if number != float64(int(number)) || number < 0 {
		return 0, false
	}
	return int(number), true
}

// Normalized renders the answer in its canonical stored form: a JSON
// array mirroring the correct-answer convention (MCQ [index],
// MSQ [indices...], NAT [value]).
func (a Answer) Normalized() (json.RawMessage, error) {
	switch a.Kind {
	case models.QuestionTypeMCQ:
		return json.Marshal([]int{a.Single})
	case models.QuestionTypeMSQ:
		if a.Multiple == nil {
			return json.Marshal([]int{})
		}
		return json.Marshal(a.Multiple)
	case models.QuestionTypeNAT:
		if !a.NumericOK {
			// Preserve the unparsable payload so revaluation keeps
			// judging it against the stored answer, not a blank.
			return json.Marshal([]string{a.NumericRaw})
		}
		return json.Marshal([]float64{a.Numeric})
	default:
		return nil, fmt.Errorf("cannot normalize answer of kind %q", a.Kind)
	}
}
