package models

import "time"

// User is a platform account, either a learner or an administrator.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	Username  string    `gorm:"size:50;uniqueIndex;not null" json:"username"`
	Email     string    `gorm:"size:120;uniqueIndex;not null" json:"email"`
	Password  string    `gorm:"size:255;not null" json:"-"`
	Role      string    `gorm:"size:10;not null" json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

const (
	// RoleAdmin marks content authors with access to the admin surface.
	RoleAdmin = "admin"
	// RoleUser marks learners.
	RoleUser = "user"
)

// IsAdmin reports whether the user holds the administrator role.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
