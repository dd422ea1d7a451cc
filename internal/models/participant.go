package models

import (
	"time"

	"gorm.io/gorm"
)

// Participant is a user's membership record in a Session. The alias is an
// ephemeral display name shown to the peer instead of the real identity.
//
// Invariant enforced by the matchmaking coordinator: a user has at most one
// Participant row with LeftAt = nil on a non-terminal session, system-wide.
type Participant struct {
	gorm.Model
	SessionID uint      `gorm:"not null;index"`
	UserID    uint      `gorm:"not null;index"`
	Alias     string    `gorm:"size:50;not null"`
	JoinedAt  time.Time `gorm:"not null"`
	LeftAt    *time.Time

	User User `gorm:"foreignKey:UserID"`
}

// Present reports whether the participant is still in the session.
func (p *Participant) Present() bool {
	return p.LeftAt == nil
}
