package models

import (
	"time"

	"gorm.io/gorm"
)

type SessionStatus string

const (
	SessionStatusWaiting   SessionStatus = "waiting"
	SessionStatusActive    SessionStatus = "active"
	SessionStatusCompleted SessionStatus = "completed"
	SessionStatusCancelled SessionStatus = "cancelled"
)

// PairSize is the participant count at which a waiting session is promoted
// to active. Matching never grows a session past this, even when the lobby's
// MaxParticipants is configured higher; that headroom is kept for a possible
// group-session mode but is not matched against today.
const PairSize = 2

// Session is one matched (or waiting-to-be-matched) conversation instance.
// The room token is an opaque handle minted once at creation and never
// reused; clients exchange it for the actual realtime transport.
type Session struct {
	gorm.Model
	LobbyID        uint          `gorm:"not null;index"`
	Status         SessionStatus `gorm:"size:50;not null;default:'waiting';index"`
	RoomToken      string        `gorm:"size:64;unique;not null"`
	StartedAt      *time.Time
	EndedAt        *time.Time
	LastActivityAt time.Time `gorm:"not null"`

	// Metadata snapshots lobby settings (duration, paid flag) at creation
	// time so later lobby edits do not rewrite history.
	Metadata map[string]interface{} `gorm:"serializer:json"`

	Lobby        Lobby         `gorm:"foreignKey:LobbyID"`
	Participants []Participant `gorm:"foreignKey:SessionID"`
	Feedback     []Feedback    `gorm:"foreignKey:SessionID"`
}

// Terminal reports whether the session has reached a final state.
func (s *Session) Terminal() bool {
	return s.Status == SessionStatusCompleted || s.Status == SessionStatusCancelled
}
