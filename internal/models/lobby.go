package models

import "gorm.io/gorm"

type LobbyStatus string

const (
	LobbyStatusDraft  LobbyStatus = "draft"
	LobbyStatusOpen   LobbyStatus = "open"
	LobbyStatusClosed LobbyStatus = "closed"
)

// AllowedDurations lists the conversation lengths (minutes) a lobby may offer.
var AllowedDurations = []int{2, 5}

// Lobby represents a topic pool that users join to be matched for a short
// 1:1 conversation. Only lobbies with status "open" accept joins.
type Lobby struct {
	gorm.Model
	Topic           string      `gorm:"size:255;not null"`
	Description     string
	DurationMinutes int         `gorm:"not null;default:5"`
	IsPaid          bool        `gorm:"not null;default:false"`
	Status          LobbyStatus `gorm:"size:50;not null;default:'draft';index"`
	MaxParticipants int         `gorm:"not null;default:2"`
	CreatedByID     uint        `gorm:"not null;index"`
	Metadata        map[string]interface{} `gorm:"serializer:json"`

	CreatedBy User      `gorm:"foreignKey:CreatedByID"`
	Sessions  []Session `gorm:"foreignKey:LobbyID"`
}
