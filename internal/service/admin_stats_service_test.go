package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/noah-isme/quizzo-go-api/internal/cache"
	"github.com/noah-isme/quizzo-go-api/internal/dto"
	"github.com/noah-isme/quizzo-go-api/internal/repository"
)

func newAdminStatsService(t *testing.T, db *gorm.DB, store cache.Store) AdminStatsService {
	t.Helper()

	return NewAdminStatsService(
		repository.NewUserRepository(db),
		repository.NewChapterRepository(db),
		repository.NewQuizRepository(db),
		repository.NewQuestionRepository(db),
		repository.NewSubmissionRepository(db),
		store,
		zerolog.Nop(),
	)
}

func TestGetStatsCountsPlatformEntities(t *testing.T) {
	db := newTestDB(t)
	store, _ := newTestStore(t)
	fixture := seedQuizFixture(t, db, false, nil)

	submitFixtureAnswers(t, db, store, fixture, []dto.AnswerSubmission{
		{QuestionID: fixture.questions[0].ID, Answer: json.RawMessage(`1`)},
		{QuestionID: fixture.questions[1].ID, Answer: json.RawMessage(`[0,2]`)},
	})

	svc := newAdminStatsService(t, db, store)
	stats, err := svc.GetStats(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, 1, stats.TotalUsers)
	require.EqualValues(t, 1, stats.TotalCourses)
	require.EqualValues(t, 1, stats.TotalQuizzes)
	require.EqualValues(t, 2, stats.TotalSubmissions)
}

func TestGetQuizAggregateAverages(t *testing.T) {
	db := newTestDB(t)
	store, _ := newTestStore(t)
	fixture := seedQuizFixture(t, db, false, nil)

	// 7 of 10 marks: MCQ and NAT right, MSQ wrong.
	submitFixtureAnswers(t, db, store, fixture, []dto.AnswerSubmission{
		{QuestionID: fixture.questions[0].ID, Answer: json.RawMessage(`1`)},
		{QuestionID: fixture.questions[1].ID, Answer: json.RawMessage(`[1]`)},
		{QuestionID: fixture.questions[2].ID, Answer: json.RawMessage(`42`)},
	})

	svc := newAdminStatsService(t, db, store)
	aggregate, err := svc.GetQuizAggregate(context.Background(), fixture.quiz.ID)
	require.NoError(t, err)
	require.Equal(t, fixture.quiz.ID, aggregate.QuizID)
	require.Equal(t, 1, aggregate.Participants)
	require.InDelta(t, 70.0, aggregate.AveragePercentage, 0.001)

	_, err = svc.GetQuizAggregate(context.Background(), 9999)
	require.ErrorIs(t, err, ErrQuizNotFound)
}
