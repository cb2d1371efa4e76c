package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func timePointer(t time.Time) *time.Time {
	return &t
}

func TestQuizStatusAtClassification(t *testing.T) {
	start := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)

	scheduled := Quiz{Scheduled: true, StartTime: timePointer(start), Duration: "00:30"}

	cases := []struct {
		name string
		quiz Quiz
		now  time.Time
		want QuizStatus
	}{
		{"not scheduled is always general", Quiz{Scheduled: false}, start, StatusGeneral},
		{"not scheduled ignores start time", Quiz{Scheduled: false, StartTime: timePointer(start)}, start.Add(time.Hour), StatusGeneral},
		{"scheduled without start time degrades to general", Quiz{Scheduled: true}, start, StatusGeneral},
		{"before start", scheduled, start.Add(-time.Minute), StatusUpcoming},
		{"exactly at start", scheduled, start, StatusLive},
		{"inside window", scheduled, start.Add(15 * time.Minute), StatusLive},
		{"exactly at end", scheduled, start.Add(30 * time.Minute), StatusEnded},
		{"after end", scheduled, start.Add(45 * time.Minute), StatusEnded},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, tc.quiz.StatusAt(tc.now))
		})
	}
}

func TestQuizStatusAtDefaultWindow(t *testing.T) {
	start := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)

	for _, duration := range []string{"", "garbage", "90", "1:xx"} {
		quiz := Quiz{Scheduled: true, StartTime: timePointer(start), Duration: duration}

		require.Equal(t, StatusLive, quiz.StatusAt(start.Add(119*time.Minute)), "duration %q", duration)
		require.Equal(t, StatusEnded, quiz.StatusAt(start.Add(2*time.Hour)), "duration %q", duration)
	}
}

func TestParseQuizDuration(t *testing.T) {
	d, err := ParseQuizDuration("01:30")
	require.NoError(t, err)
	require.Equal(t, 90*time.Minute, d)

	d, err = ParseQuizDuration("00:45")
	require.NoError(t, err)
	require.Equal(t, 45*time.Minute, d)

	for _, invalid := range []string{"", "1h", "01:60", "-1:00", "aa:bb", "01:30:00", "01: 30"} {
		_, err := ParseQuizDuration(invalid)
		require.Error(t, err, "input %q", invalid)
	}
}

func TestCategorizeQuizzesPartitions(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	quizzes := []Quiz{
		{ID: 1, Scheduled: false},
		{ID: 2, Scheduled: true, StartTime: timePointer(now.Add(time.Hour)), Duration: "01:00"},
		{ID: 3, Scheduled: true, StartTime: timePointer(now.Add(-30 * time.Minute)), Duration: "01:00"},
		{ID: 4, Scheduled: true, StartTime: timePointer(now.Add(-3 * time.Hour)), Duration: "01:00"},
	}

	categorized := CategorizeQuizzes(quizzes, now)

	require.Len(t, categorized[StatusGeneral], 1)
	require.Len(t, categorized[StatusUpcoming], 1)
	require.Len(t, categorized[StatusLive], 1)
	require.Len(t, categorized[StatusEnded], 1)
	require.Equal(t, uint(1), categorized[StatusGeneral][0].ID)
	require.Equal(t, uint(2), categorized[StatusUpcoming][0].ID)
	require.Equal(t, uint(3), categorized[StatusLive][0].ID)
	require.Equal(t, uint(4), categorized[StatusEnded][0].ID)

	total := 0
	for _, bucket := range categorized {
		total += len(bucket)
	}
	require.Equal(t, len(quizzes), total)
}

func TestQuizWindowEndToEnd(t *testing.T) {
	start := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)
	quiz := Quiz{Scheduled: true, StartTime: timePointer(start), Duration: "00:30"}

	require.Equal(t, StatusUpcoming, quiz.StatusAt(time.Date(2025, 3, 10, 9, 59, 0, 0, time.UTC)))
	require.Equal(t, StatusLive, quiz.StatusAt(time.Date(2025, 3, 10, 10, 15, 0, 0, time.UTC)))
	require.Equal(t, StatusEnded, quiz.StatusAt(time.Date(2025, 3, 10, 10, 45, 0, 0, time.UTC)))
}
