package service

import (
	"fmt"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/quizzo-go-api/internal/cache"
	"github.com/noah-isme/quizzo-go-api/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Course{},
		&models.Chapter{},
		&models.Quiz{},
		&models.Question{},
		&models.Submission{},
		&models.Subscription{},
	))

	return db
}

func newTestStore(t *testing.T) (cache.Store, *miniredis.Miniredis) {
	t.Helper()

	mini, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mini.Close)

	client := redis.NewClient(&redis.Options{Addr: mini.Addr()})
	return cache.NewRedisStore(client, "test", time.Minute, zerolog.Nop()), mini
}

// quizFixture is a subscribed learner plus one quiz with an MCQ, an MSQ,
// and a NAT question.
type quizFixture struct {
	user      models.User
	chapter   models.Chapter
	quiz      models.Quiz
	questions []models.Question
}

func seedQuizFixture(t *testing.T, db *gorm.DB, scheduled bool, startTime *time.Time) quizFixture {
	t.Helper()

	user := models.User{Name: "Ada Lovelace", Username: "ada", Email: "ada@example.com", Password: "x", Role: models.RoleUser}
	require.NoError(t, db.Create(&user).Error)

	course := models.Course{Name: "Mathematics"}
	require.NoError(t, db.Create(&course).Error)

	chapter := models.Chapter{CourseID: course.ID, Name: "Algebra"}
	require.NoError(t, db.Create(&chapter).Error)

	quiz := models.Quiz{
		ChapterID: chapter.ID,
		Title:     "Linear Equations",
		Scheduled: scheduled,
		StartTime: startTime,
		Duration:  "01:00",
	}
	require.NoError(t, db.Create(&quiz).Error)

	questions := []models.Question{
		{
			QuizID:        quiz.ID,
			Statement:     "Pick the prime",
			Type:          models.QuestionTypeMCQ,
			Options:       datatypes.JSON(`["4","7","9"]`),
			CorrectAnswer: datatypes.JSON(`[1]`),
			Marks:         2,
		},
		{
			QuizID:        quiz.ID,
			Statement:     "Pick the even numbers",
			Type:          models.QuestionTypeMSQ,
			Options:       datatypes.JSON(`["2","3","8"]`),
			CorrectAnswer: datatypes.JSON(`[0,2]`),
			Marks:         3,
		},
		{
			QuizID:        quiz.ID,
			Statement:     "What is 6x7?",
			Type:          models.QuestionTypeNAT,
			CorrectAnswer: datatypes.JSON(`[42]`),
			Marks:         5,
		},
	}
	for i := range questions {
		require.NoError(t, db.Create(&questions[i]).Error)
	}

	subscription := models.Subscription{
		UserID:       user.ID,
		ChapterID:    chapter.ID,
		SubscribedOn: time.Now().UTC(),
		Active:       true,
	}
	require.NoError(t, db.Create(&subscription).Error)

	return quizFixture{user: user, chapter: chapter, quiz: quiz, questions: questions}
}
