package scoring

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/quizzo-go-api/internal/models"
)

func TestParseAnswerMCQ(t *testing.T) {
	answer, err := ParseAnswer(models.QuestionTypeMCQ, json.RawMessage(`2`))
	require.NoError(t, err)
	require.Equal(t, 2, answer.Single)

	answer, err = ParseAnswer(models.QuestionTypeMCQ, json.RawMessage(`[1]`))
	require.NoError(t, err)
	require.Equal(t, 1, answer.Single)

	for _, raw := range []string{`[0,1]`, `[]`, `"a"`, `1.5`, `-1`, `true`, `null`} {
		_, err := ParseAnswer(models.QuestionTypeMCQ, json.RawMessage(raw))
		require.ErrorIs(t, err, ErrBadAnswerShape, "payload %s", raw)
	}
}

func TestParseAnswerMSQ(t *testing.T) {
	answer, err := ParseAnswer(models.QuestionTypeMSQ, json.RawMessage(`[0,2]`))
	require.NoError(t, err)
	require.Equal(t, []int{0, 2}, answer.Multiple)

	// Scalar coerces to a one-element collection.
	answer, err = ParseAnswer(models.QuestionTypeMSQ, json.RawMessage(`3`))
	require.NoError(t, err)
	require.Equal(t, []int{3}, answer.Multiple)

	_, err = ParseAnswer(models.QuestionTypeMSQ, json.RawMessage(`[0,"x"]`))
	require.ErrorIs(t, err, ErrBadAnswerShape)
}

func TestParseAnswerNAT(t *testing.T) {
	answer, err := ParseAnswer(models.QuestionTypeNAT, json.RawMessage(`42.5`))
	require.NoError(t, err)
	require.True(t, answer.NumericOK)
	require.InDelta(t, 42.5, answer.Numeric, 1e-9)

	answer, err = ParseAnswer(models.QuestionTypeNAT, json.RawMessage(`[" 7 "]`))
	require.NoError(t, err)
	require.True(t, answer.NumericOK)
	require.InDelta(t, 7, answer.Numeric, 1e-9)

	// Coercion failure is tolerated at the boundary and judged incorrect.
	answer, err = ParseAnswer(models.QuestionTypeNAT, json.RawMessage(`"not a number"`))
	require.NoError(t, err)
	require.False(t, answer.NumericOK)

	for _, raw := range []string{`true`, `null`, `[1,2]`, `[]`} {
		_, err := ParseAnswer(models.QuestionTypeNAT, json.RawMessage(raw))
		require.ErrorIs(t, err, ErrBadAnswerShape, "payload %s", raw)
	}
}

func TestParseAnswerUnknownType(t *testing.T) {
	_, err := ParseAnswer("ESSAY", json.RawMessage(`1`))
	require.ErrorIs(t, err, ErrBadAnswerShape)
}

func TestNormalizedRoundTrip(t *testing.T) {
	cases := []struct {
		questionType string
		raw          string
		want         string
	}{
		{models.QuestionTypeMCQ, `1`, `[1]`},
		{models.QuestionTypeMCQ, `[2]`, `[2]`},
		{models.QuestionTypeMSQ, `[2,0,2]`, `[2,0,2]`},
		{models.QuestionTypeNAT, `3.25`, `[3.25]`},
		{models.QuestionTypeNAT, `"oops"`, `["oops"]`},
	}

	for _, tc := range cases {
		answer, err := ParseAnswer(tc.questionType, json.RawMessage(tc.raw))
		require.NoError(t, err)

		normalized, err := answer.Normalized()
		require.NoError(t, err)
		require.JSONEq(t, tc.want, string(normalized))

		// The stored form must parse back to an equivalent answer.
		reparsed, err := ParseAnswer(tc.questionType, normalized)
		require.NoError(t, err)
		require.Equal(t, answer.Kind, reparsed.Kind)
	}
}
