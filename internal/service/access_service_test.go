package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/quizzo-go-api/internal/models"
	"github.com/noah-isme/quizzo-go-api/internal/repository"
)

func TestCanAccessChecksExistSubscribedStarted(t *testing.T) {
	db := newTestDB(t)
	future := time.Now().Add(time.Hour)
	fixture := seedQuizFixture(t, db, true, &future)

	svc := NewAccessService(repository.NewQuizRepository(db), repository.NewSubscriptionRepository(db), zerolog.Nop())
	ctx := context.Background()

	_, err := svc.CanAccess(ctx, fixture.user.ID, 9999)
	require.ErrorIs(t, err, ErrQuizNotFound)

	_, err = svc.CanAccess(ctx, fixture.user.ID, fixture.quiz.ID)
	require.ErrorIs(t, err, ErrQuizNotStarted)

	// Existence is checked before subscription, upcoming last.
	require.NoError(t, db.Model(&models.Subscription{}).
		Where("user_id = ?", fixture.user.ID).
		Update("active", false).Error)
	_, err = svc.CanAccess(ctx, fixture.user.ID, fixture.quiz.ID)
	require.ErrorIs(t, err, ErrNotSubscribed)
}

func TestCanAccessAllowsLiveEndedAndGeneral(t *testing.T) {
	db := newTestDB(t)
	fixture := seedQuizFixture(t, db, false, nil)

	svc := NewAccessService(repository.NewQuizRepository(db), repository.NewSubscriptionRepository(db), zerolog.Nop())
	ctx := context.Background()

	quiz, err := svc.CanAccess(ctx, fixture.user.ID, fixture.quiz.ID)
	require.NoError(t, err)
	require.Equal(t, fixture.quiz.ID, quiz.ID)
	require.Equal(t, "Algebra", quiz.Chapter.Name)

	liveStart := time.Now().Add(-5 * time.Minute)
	live := createQuiz(t, db, fixture.chapter.ID, "Live", true, &liveStart, "01:00")
	_, err = svc.CanAccess(ctx, fixture.user.ID, live.ID)
	require.NoError(t, err)

	endedStart := time.Now().Add(-3 * time.Hour)
	ended := createQuiz(t, db, fixture.chapter.ID, "Ended", true, &endedStart, "01:00")
	_, err = svc.CanAccess(ctx, fixture.user.ID, ended.ID)
	require.NoError(t, err)
}
