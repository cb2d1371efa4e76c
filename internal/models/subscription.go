package models

import "time"

// Subscription grants a learner access to every quiz under a chapter.
// Unsubscribing deactivates the row; it is never deleted outside explicit
// admin hard-delete operations, so a re-subscribe reactivates it.
type Subscription struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserID       uint      `gorm:"not null;uniqueIndex:idx_subscription_user_chapter" json:"user_id"`
	ChapterID    uint      `gorm:"not null;uniqueIndex:idx_subscription_user_chapter" json:"chapter_id"`
	SubscribedOn time.Time `gorm:"not null" json:"subscribed_on"`
	Active       bool      `gorm:"not null;default:true" json:"active"`
	Chapter      Chapter   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"chapter,omitempty"`
}
