package matchmaking

import (
	"time"

	"mingle/backend/internal/models"
)

// region --- session view DTOs ---

type LobbyView struct {
	ID              uint   `json:"id"`
	Topic           string `json:"topic"`
	Description     string `json:"description"`
	DurationMinutes int    `json:"duration_minutes"`
	IsPaid          bool   `json:"is_paid"`
}

type ParticipantView struct {
	ID       uint       `json:"id"`
	Alias    string     `json:"alias"`
	IsSelf   bool       `json:"is_self"`
	JoinedAt time.Time  `json:"joined_at"`
	LeftAt   *time.Time `json:"left_at"`
}

// SessionView is the single response shape every session read/mutate
// endpoint returns.
type SessionView struct {
	ID             uint                   `json:"id"`
	Status         models.SessionStatus   `json:"status"`
	StartedAt      *time.Time             `json:"started_at"`
	EndedAt        *time.Time             `json:"ended_at"`
	LastActivityAt time.Time              `json:"last_activity_at"`
	RoomToken      string                 `json:"room_token"`
	Metadata       map[string]interface{} `json:"metadata"`
	Lobby          LobbyView              `json:"lobby"`
	Participants   []ParticipantView      `json:"participants"`
	Peer           *ParticipantView       `json:"peer"`
	Feedback       FeedbackView           `json:"feedback"`
}

// endregion

// NewSessionView projects a fully-loaded session (lobby, participants,
// feedback preloaded) relative to the viewing user. The peer is the first
// non-self participant, or nil while waiting.
func NewSessionView(session *models.Session, viewerID uint) SessionView {
	participants := make([]ParticipantView, 0, len(session.Participants))
	var peer *ParticipantView
	for _, p := range session.Participants {
		pv := ParticipantView{
			ID:       p.ID,
			Alias:    p.Alias,
			IsSelf:   p.UserID == viewerID,
			JoinedAt: p.JoinedAt,
			LeftAt:   p.LeftAt,
		}
		participants = append(participants, pv)
		if peer == nil && !pv.IsSelf {
			entry := pv
			peer = &entry
		}
	}

	rows := make([]feedbackRow, 0, len(session.Feedback))
	for _, f := range session.Feedback {
		rows = append(rows, feedbackRow{UserID: f.UserID, Stars: f.Stars, Note: f.Note})
	}

	return SessionView{
		ID:             session.ID,
		Status:         session.Status,
		StartedAt:      session.StartedAt,
		EndedAt:        session.EndedAt,
		LastActivityAt: session.LastActivityAt,
		RoomToken:      session.RoomToken,
		Metadata:       session.Metadata,
		Lobby: LobbyView{
			ID:              session.Lobby.ID,
			Topic:           session.Lobby.Topic,
			Description:     session.Lobby.Description,
			DurationMinutes: session.Lobby.DurationMinutes,
			IsPaid:          session.Lobby.IsPaid,
		},
		Participants: participants,
		Peer:         peer,
		Feedback:     aggregateFeedback(rows, viewerID),
	}
}
