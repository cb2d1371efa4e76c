package cache

import "fmt"

// Cache keys follow the entityKind_id_facet convention so that a whole
// entity's namespace can be dropped with one prefix delete.

// UserPrefix covers every per-user derived view.
func UserPrefix(userID uint) string {
	return fmt.Sprintf("user_%d_", userID)
}

// UserDashboardKey caches the learner dashboard.
func UserDashboardKey(userID uint) string {
	return UserPrefix(userID) + "dashboard"
}

// UserUpcomingQuizzesKey caches the upcoming-quizzes listing.
func UserUpcomingQuizzesKey(userID uint) string {
	return UserPrefix(userID) + "upcoming_quizzes"
}

// UserOpenQuizzesKey caches the open-quizzes listing.
func UserOpenQuizzesKey(userID uint) string {
	return UserPrefix(userID) + "open_quizzes"
}

// UserSubscriptionsKey caches the active subscription listing.
func UserSubscriptionsKey(userID uint) string {
	return UserPrefix(userID) + "subscriptions"
}

// UserStatsKey caches the detailed per-chapter statistics view.
func UserStatsKey(userID uint) string {
	return UserPrefix(userID) + "detailed_stats"
}

// QuizPrefix covers every view derived from one quiz's content.
func QuizPrefix(quizID uint) string {
	return fmt.Sprintf("quiz_%d_", quizID)
}

// QuizQuestionsKey caches the learner-facing question set (answers
// stripped).
func QuizQuestionsKey(quizID uint) string {
	return QuizPrefix(quizID) + "questions"
}

// QuizMetadataKey caches the quiz metadata header.
func QuizMetadataKey(quizID uint) string {
	return QuizPrefix(quizID) + "metadata"
}

// QuizResultKey caches one learner's scored result for a quiz.
func QuizResultKey(quizID, userID uint) string {
	return fmt.Sprintf("%sresult_%d", QuizPrefix(quizID), userID)
}

// ChapterQuizzesKey caches a chapter's quiz listing.
func ChapterQuizzesKey(chapterID uint) string {
	return fmt.Sprintf("chapter_%d_quizzes", chapterID)
}

// PublicProfileKey caches the public profile for a username.
func PublicProfileKey(username string) string {
	return "public_profile_" + username
}

// AdminPrefix covers admin-facing aggregates.
const AdminPrefix = "admin_"

// AdminStatsKey caches the admin dashboard counters.
const AdminStatsKey = AdminPrefix + "stats"

// AdminQuizAggregateKey caches the participants/average aggregate for one
// quiz.
func AdminQuizAggregateKey(quizID uint) string {
	return fmt.Sprintf("%squiz_%d_aggregate", AdminPrefix, quizID)
}
