package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/noah-isme/quizzo-go-api/internal/cache"
	"github.com/noah-isme/quizzo-go-api/internal/dto"
	"github.com/noah-isme/quizzo-go-api/internal/models"
	"github.com/noah-isme/quizzo-go-api/internal/notify"
	"github.com/noah-isme/quizzo-go-api/internal/repository"
	"github.com/noah-isme/quizzo-go-api/internal/scoring"
)

func newSubmissionService(t *testing.T, db *gorm.DB, store cache.Store) SubmissionService {
	t.Helper()

	quizRepo := repository.NewQuizRepository(db)
	questionRepo := repository.NewQuestionRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	subscriptionRepo := repository.NewSubscriptionRepository(db)
	userRepo := repository.NewUserRepository(db)

	access := NewAccessService(quizRepo, subscriptionRepo, zerolog.Nop())
	validate := validator.New(validator.WithRequiredStructEnabled())

	return NewSubmissionService(access, quizRepo, questionRepo, submissionRepo, userRepo, store, notify.NewNopNotifier(), validate, zerolog.Nop())
}

func answersAllCorrect(fixture quizFixture) []dto.AnswerSubmission {
	return []dto.AnswerSubmission{
		{QuestionID: fixture.questions[0].ID, Answer: json.RawMessage(`1`)},
		{QuestionID: fixture.questions[1].ID, Answer: json.RawMessage(`[2,0]`)},
		{QuestionID: fixture.questions[2].ID, Answer: json.RawMessage(`"42.005"`)},
	}
}

func TestSubmitGeneralQuizScoresAndPersists(t *testing.T) {
	db := newTestDB(t)
	store, _ := newTestStore(t)
	fixture := seedQuizFixture(t, db, false, nil)

	svc := newSubmissionService(t, db, store)

	payload := dto.SubmitRequest{Answers: append(answersAllCorrect(fixture),
		// Answers to unknown questions are dropped silently.
		dto.AnswerSubmission{QuestionID: 9999, Answer: json.RawMessage(`0`)},
	)}

	response, err := svc.Submit(context.Background(), fixture.user.ID, fixture.quiz.ID, payload)
	require.NoError(t, err)
	require.Equal(t, 3, response.AcceptedCount)
	require.Equal(t, 3, response.TotalQuestions)
	require.InDelta(t, 10.0, response.Score.ObtainedMarks, 0.001)
	require.InDelta(t, 100.0, response.Score.Percentage, 0.001)

	var rows []models.Submission
	require.NoError(t, db.Where("user_id = ? AND quiz_id = ?", fixture.user.ID, fixture.quiz.ID).Find(&rows).Error)
	require.Len(t, rows, 3)
	for _, row := range rows {
		require.True(t, row.IsCorrect)
	}
}

func TestSubmitScheduledQuizIsSingleShot(t *testing.T) {
	db := newTestDB(t)
	store, _ := newTestStore(t)
	start := time.Now().Add(-10 * time.Minute)
	fixture := seedQuizFixture(t, db, true, &start)

	svc := newSubmissionService(t, db, store)

	payload := dto.SubmitRequest{Answers: answersAllCorrect(fixture)}
	_, err := svc.Submit(context.Background(), fixture.user.ID, fixture.quiz.ID, payload)
	require.NoError(t, err)

	_, err = svc.Submit(context.Background(), fixture.user.ID, fixture.quiz.ID, payload)
	require.ErrorIs(t, err, ErrAlreadySubmitted)
}

func TestSubmitGeneralQuizOverwritesPriorRows(t *testing.T) {
	db := newTestDB(t)
	store, _ := newTestStore(t)
	fixture := seedQuizFixture(t, db, false, nil)

	svc := newSubmissionService(t, db, store)

	wrong := dto.SubmitRequest{Answers: []dto.AnswerSubmission{
		{QuestionID: fixture.questions[0].ID, Answer: json.RawMessage(`0`)},
	}}
	response, err := svc.Submit(context.Background(), fixture.user.ID, fixture.quiz.ID, wrong)
	require.NoError(t, err)
	require.InDelta(t, 0.0, response.Score.ObtainedMarks, 0.001)

	right := dto.SubmitRequest{Answers: []dto.AnswerSubmission{
		{QuestionID: fixture.questions[0].ID, Answer: json.RawMessage(`1`)},
	}}
	response, err = svc.Submit(context.Background(), fixture.user.ID, fixture.quiz.ID, right)
	require.NoError(t, err)
	require.InDelta(t, 2.0, response.Score.ObtainedMarks, 0.001)

	var count int64
	require.NoError(t, db.Model(&models.Submission{}).
		Where("user_id = ? AND quiz_id = ?", fixture.user.ID, fixture.quiz.ID).
		Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestSubmitRejectsMalformedAnswerWithoutPartialWrite(t *testing.T) {
	db := newTestDB(t)
	store, _ := newTestStore(t)
	fixture := seedQuizFixture(t, db, false, nil)

	svc := newSubmissionService(t, db, store)

	payload := dto.SubmitRequest{Answers: []dto.AnswerSubmission{
		{QuestionID: fixture.questions[1].ID, Answer: json.RawMessage(`[2,0]`)},
		{QuestionID: fixture.questions[0].ID, Answer: json.RawMessage(`"apple"`)},
	}}

	_, err := svc.Submit(context.Background(), fixture.user.ID, fixture.quiz.ID, payload)
	require.ErrorIs(t, err, scoring.ErrBadAnswerShape)

	var count int64
	require.NoError(t, db.Model(&models.Submission{}).Count(&count).Error)
	require.EqualValues(t, 0, count)
}

func TestSubmitEnforcesEligibility(t *testing.T) {
	db := newTestDB(t)
	store, _ := newTestStore(t)
	start := time.Now().Add(time.Hour)
	fixture := seedQuizFixture(t, db, true, &start)

	svc := newSubmissionService(t, db, store)
	payload := dto.SubmitRequest{Answers: answersAllCorrect(fixture)}

	_, err := svc.Submit(context.Background(), fixture.user.ID, fixture.quiz.ID, payload)
	require.ErrorIs(t, err, ErrQuizNotStarted)

	require.NoError(t, db.Model(&models.Subscription{}).
		Where("user_id = ?", fixture.user.ID).
		Update("active", false).Error)

	_, err = svc.Submit(context.Background(), fixture.user.ID, fixture.quiz.ID, payload)
	require.ErrorIs(t, err, ErrNotSubscribed)

	_, err = svc.Submit(context.Background(), fixture.user.ID, 9999, payload)
	require.ErrorIs(t, err, ErrQuizNotFound)
}

func TestSubmitInvalidatesDerivedCaches(t *testing.T) {
	db := newTestDB(t)
	store, _ := newTestStore(t)
	fixture := seedQuizFixture(t, db, false, nil)

	ctx := context.Background()
	store.Set(ctx, cache.UserDashboardKey(fixture.user.ID), "stale", time.Minute)
	store.Set(ctx, cache.QuizResultKey(fixture.quiz.ID, fixture.user.ID), "stale", time.Minute)
	store.Set(ctx, cache.ChapterQuizzesKey(fixture.chapter.ID), "stale", time.Minute)
	store.Set(ctx, cache.PublicProfileKey(fixture.user.Username), "stale", time.Minute)

	svc := newSubmissionService(t, db, store)
	_, err := svc.Submit(ctx, fixture.user.ID, fixture.quiz.ID, dto.SubmitRequest{Answers: answersAllCorrect(fixture)})
	require.NoError(t, err)

	var sink string
	require.False(t, store.Get(ctx, cache.UserDashboardKey(fixture.user.ID), &sink))
	require.False(t, store.Get(ctx, cache.QuizResultKey(fixture.quiz.ID, fixture.user.ID), &sink))
	require.False(t, store.Get(ctx, cache.ChapterQuizzesKey(fixture.chapter.ID), &sink))
	require.False(t, store.Get(ctx, cache.PublicProfileKey(fixture.user.Username), &sink))
}

func TestGetResultLifecycle(t *testing.T) {
	db := newTestDB(t)
	store, _ := newTestStore(t)
	fixture := seedQuizFixture(t, db, false, nil)

	svc := newSubmissionService(t, db, store)
	ctx := context.Background()

	_, err := svc.GetResult(ctx, fixture.user.ID, fixture.quiz.ID)
	require.ErrorIs(t, err, ErrNotSubmitted)

	_, err = svc.Submit(ctx, fixture.user.ID, fixture.quiz.ID, dto.SubmitRequest{Answers: []dto.AnswerSubmission{
		{QuestionID: fixture.questions[0].ID, Answer: json.RawMessage(`1`)},
		{QuestionID: fixture.questions[1].ID, Answer: json.RawMessage(`[1]`)},
	}})
	require.NoError(t, err)

	result, err := svc.GetResult(ctx, fixture.user.ID, fixture.quiz.ID)
	require.NoError(t, err)
	require.Equal(t, fixture.quiz.ID, result.Quiz.ID)
	require.Len(t, result.QuestionPerformance, 3)
	require.InDelta(t, 2.0, result.Score.ObtainedMarks, 0.001)
	require.InDelta(t, 10.0, result.Score.TotalMarks, 0.001)
	require.NotNil(t, result.CompletedAt)

	// Cached response is served unchanged after the table mutates.
	require.NoError(t, db.Model(&models.Submission{}).
		Where("user_id = ?", fixture.user.ID).
		Update("is_correct", false).Error)

	cachedResult, err := svc.GetResult(ctx, fixture.user.ID, fixture.quiz.ID)
	require.NoError(t, err)
	require.InDelta(t, 2.0, cachedResult.Score.ObtainedMarks, 0.001)
}

// raceSubmissionRepo reports no prior submission so the unique index,
// not the pre-check, decides the winner of concurrent first submits.
type raceSubmissionRepo struct {
	repository.SubmissionRepository
}

func (raceSubmissionRepo) ExistsForUserAndQuiz(context.Context, uint, uint) (bool, error) {
	return false, nil
}

func TestSubmitScheduledQuizRaceLoserGetsAlreadySubmitted(t *testing.T) {
	db := newTestDB(t)
	store, _ := newTestStore(t)
	start := time.Now().Add(-10 * time.Minute)
	fixture := seedQuizFixture(t, db, true, &start)

	quizRepo := repository.NewQuizRepository(db)
	questionRepo := repository.NewQuestionRepository(db)
	subscriptionRepo := repository.NewSubscriptionRepository(db)
	userRepo := repository.NewUserRepository(db)
	submissionRepo := raceSubmissionRepo{repository.NewSubmissionRepository(db)}

	access := NewAccessService(quizRepo, subscriptionRepo, zerolog.Nop())
	validate := validator.New(validator.WithRequiredStructEnabled())
	svc := NewSubmissionService(access, quizRepo, questionRepo, submissionRepo, userRepo, store, notify.NewNopNotifier(), validate, zerolog.Nop())

	payload := dto.SubmitRequest{Answers: answersAllCorrect(fixture)}
	ctx := context.Background()

	_, err := svc.Submit(ctx, fixture.user.ID, fixture.quiz.ID, payload)
	require.NoError(t, err)

	_, err = svc.Submit(ctx, fixture.user.ID, fixture.quiz.ID, payload)
	require.ErrorIs(t, err, ErrAlreadySubmitted)
}
