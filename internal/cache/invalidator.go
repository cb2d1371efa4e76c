package cache

import "context"

// Invalidator enumerates the cache entries whose values can go stale when
// an entity mutates. Invalidation runs strictly after the underlying
// commit; a concurrent reader may repopulate a key with pre-commit data
// inside that window, so entries stay bounded by their TTLs rather than
// being linearizable.
type Invalidator struct {
	store Store
}

// NewInvalidator builds an Invalidator over the given store.
func NewInvalidator(store Store) *Invalidator {
	return &Invalidator{store: store}
}

// User drops every per-user derived view: dashboard, listings,
// subscriptions, and stats.
func (i *Invalidator) User(ctx context.Context, userID uint) {
	i.store.DeleteByPrefix(ctx, UserPrefix(userID))
}

// Quiz drops every view derived from the quiz's content, its chapter
// listing, and its admin aggregate.
func (i *Invalidator) Quiz(ctx context.Context, quizID, chapterID uint) {
	i.store.DeleteByPrefix(ctx, QuizPrefix(quizID))
	i.store.Delete(ctx, ChapterQuizzesKey(chapterID), AdminQuizAggregateKey(quizID))
}

// Submission drops everything a new or rewritten submission can stale:
// the submitting user's views, the quiz's aggregates, and the user's
// public profile.
func (i *Invalidator) Submission(ctx context.Context, userID, quizID, chapterID uint, username string) {
	i.User(ctx, userID)
	i.Quiz(ctx, quizID, chapterID)
	if username != "" {
		i.store.Delete(ctx, PublicProfileKey(username))
	}
}

// Admin drops the admin-facing aggregates wholesale.
func (i *Invalidator) Admin(ctx context.Context) {
	i.store.DeleteByPrefix(ctx, AdminPrefix)
}
