package models

import "gorm.io/gorm"

// Feedback is a star rating a participant left for a session. Unique per
// (session, user); re-submission overwrites the existing row.
type Feedback struct {
	gorm.Model
	SessionID uint   `gorm:"not null;uniqueIndex:idx_feedback_session_user"`
	UserID    uint   `gorm:"not null;uniqueIndex:idx_feedback_session_user"`
	Stars     int    `gorm:"not null"`
	Note      string

	User User `gorm:"foreignKey:UserID"`
}

func (Feedback) TableName() string { return "feedback" }
