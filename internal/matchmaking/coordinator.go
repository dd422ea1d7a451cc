package matchmaking

import (
	"errors"
	"time"

	"mingle/backend/internal/models"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Realtime event types emitted after a committed transition.
const (
	EventParticipantJoined = "participant_joined"
	EventSessionStarted    = "session_started"
	EventParticipantLeft   = "participant_left"
	EventSessionEnded      = "session_ended"
	EventFeedbackUpdated   = "feedback_updated"
)

// Notifier delivers realtime events for a session. Injected so the
// coordinator is testable without a live transport.
type Notifier interface {
	Notify(sessionID uint, event string, payload interface{})
}

// Coordinator executes join/leave/rate. Every mutating operation runs in one
// transaction that locks the rows it reads-then-writes (the lobby, the
// candidate or target session) before deciding, so two concurrent joins can
// never both claim the same waiting slot or each open a duplicate session.
type Coordinator struct {
	db      *gorm.DB
	aliases *AliasTracker
	gateway Notifier
}

// NewCoordinator creates a coordinator on the given store. The notifier may
// be nil (no realtime delivery).
func NewCoordinator(db *gorm.DB, gateway Notifier) *Coordinator {
	return &Coordinator{
		db:      db,
		aliases: NewAliasTracker(),
		gateway: gateway,
	}
}

// lockForUpdate applies a SELECT ... FOR UPDATE row lock. sqlite (used by
// tests) has a single writer and rejects the clause, so it is skipped there.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

// liveStatuses are the non-terminal session states.
var liveStatuses = []models.SessionStatus{models.SessionStatusWaiting, models.SessionStatusActive}

// Join matches the user into the lobby. It either attaches the caller to the
// oldest waiting session with a free slot (promoting it to active) or opens a
// new waiting session. The returned created flag distinguishes the two so the
// edge can answer 201 vs 200.
func (c *Coordinator) Join(userID, lobbyID uint) (*SessionView, bool, error) {
	logCtx := logrus.WithFields(logrus.Fields{"user_id": userID, "lobby_id": lobbyID})

	var (
		view     SessionView
		created  bool
		promoted bool
	)

	err := c.db.Transaction(func(tx *gorm.DB) error {
		var lobby models.Lobby
		if err := lockForUpdate(tx).First(&lobby, lobbyID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrLobbyNotFound
			}
			return err
		}
		if lobby.Status != models.LobbyStatusOpen {
			return ErrLobbyClosed
		}

		// One live participation per user, system-wide.
		var live int64
		if err := tx.Model(&models.Participant{}).
			Joins("JOIN sessions ON sessions.id = participants.session_id").
			Where("participants.user_id = ? AND participants.left_at IS NULL", userID).
			Where("sessions.status IN ?", liveStatuses).
			Where("sessions.deleted_at IS NULL").
			Count(&live).Error; err != nil {
			return err
		}
		if live > 0 {
			return ErrAlreadyInSession
		}

		threshold := models.PairSize
		if lobby.MaxParticipants < threshold {
			threshold = lobby.MaxParticipants
		}

		// Oldest waiting session with a free slot. Locked before the
		// attach decision so a concurrent join serializes behind us.
		var session models.Session
		err := lockForUpdate(tx).
			Where("lobby_id = ? AND status = ?", lobby.ID, models.SessionStatusWaiting).
			Where("(SELECT COUNT(*) FROM participants"+
				" WHERE participants.session_id = sessions.id"+
				" AND participants.left_at IS NULL"+
				" AND participants.deleted_at IS NULL) < ?", threshold).
			Order("created_at ASC").
			First(&session).Error

		now := time.Now()
		switch {
		case err == nil:
			// Attach to the waiting session and promote it.
			if err := Transition(&session, models.SessionStatusActive); err != nil {
				return err
			}
			session.StartedAt = &now
			session.LastActivityAt = now
			if err := tx.Save(&session).Error; err != nil {
				return err
			}
			promoted = true

		case errors.Is(err, gorm.ErrRecordNotFound):
			// Nobody is waiting; open a fresh session.
			session = models.Session{
				LobbyID:        lobby.ID,
				Status:         models.SessionStatusWaiting,
				RoomToken:      uuid.NewString(),
				LastActivityAt: now,
				Metadata: map[string]interface{}{
					"duration_minutes": lobby.DurationMinutes,
					"is_paid":          lobby.IsPaid,
				},
			}
			if err := tx.Create(&session).Error; err != nil {
				return err
			}
			created = true

		default:
			return err
		}

		participant := models.Participant{
			SessionID: session.ID,
			UserID:    userID,
			Alias:     c.aliases.Next(),
			JoinedAt:  now,
		}
		if err := tx.Create(&participant).Error; err != nil {
			return err
		}

		loaded, err := loadSession(tx, session.ID)
		if err != nil {
			return err
		}
		view = NewSessionView(loaded, userID)
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	logCtx.WithFields(logrus.Fields{"session_id": view.ID, "created": created}).Info("User joined lobby")

	c.emit(view.ID, EventParticipantJoined, view)
	if promoted {
		c.emit(view.ID, EventSessionStarted, view)
	}
	return &view, created, nil
}

// Leave removes the user from the session. A waiting session is cancelled
// when its sole participant leaves; an active session completes once the
// last participant is gone.
func (c *Coordinator) Leave(userID, sessionID uint) (*SessionView, error) {
	logCtx := logrus.WithFields(logrus.Fields{"user_id": userID, "session_id": sessionID})

	var (
		view  SessionView
		ended bool
	)

	err := c.db.Transaction(func(tx *gorm.DB) error {
		var session models.Session
		if err := lockForUpdate(tx).First(&session, sessionID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSessionNotFound
			}
			return err
		}

		var participant models.Participant
		if err := tx.Where("session_id = ? AND user_id = ?", session.ID, userID).
			Order("joined_at ASC").
			First(&participant).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrForbidden
			}
			return err
		}

		now := time.Now()
		if participant.LeftAt == nil {
			participant.LeftAt = &now
			if err := tx.Save(&participant).Error; err != nil {
				return err
			}
		}

		switch session.Status {
		case models.SessionStatusWaiting:
			// A waiting session never out-lives its sole participant.
			if err := Transition(&session, models.SessionStatusCancelled); err != nil {
				return err
			}
			session.EndedAt = &now
			ended = true

		case models.SessionStatusActive:
			var remaining int64
			if err := tx.Model(&models.Participant{}).
				Where("session_id = ? AND left_at IS NULL", session.ID).
				Count(&remaining).Error; err != nil {
				return err
			}
			if remaining == 0 {
				if err := Transition(&session, models.SessionStatusCompleted); err != nil {
					return err
				}
				session.EndedAt = &now
				ended = true
			}
		}

		session.LastActivityAt = now
		if err := tx.Save(&session).Error; err != nil {
			return err
		}

		loaded, err := loadSession(tx, session.ID)
		if err != nil {
			return err
		}
		view = NewSessionView(loaded, userID)
		return nil
	})
	if err != nil {
		return nil, err
	}

	logCtx.WithField("status", view.Status).Info("User left session")

	c.emit(view.ID, EventParticipantLeft, view)
	if ended {
		c.emit(view.ID, EventSessionEnded, view)
	}
	return &view, nil
}

// Rate upserts the caller's star feedback for a session. Re-rating replaces
// the previous stars/note; the aggregate average follows.
func (c *Coordinator) Rate(userID, sessionID uint, stars int, note string) (*SessionView, error) {
	if stars < 1 || stars > 5 {
		return nil, ErrInvalidStars
	}

	var view SessionView
	err := c.db.Transaction(func(tx *gorm.DB) error {
		var session models.Session
		if err := lockForUpdate(tx).First(&session, sessionID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSessionNotFound
			}
			return err
		}

		// Only someone who is or was a participant may rate.
		var membership int64
		if err := tx.Model(&models.Participant{}).
			Where("session_id = ? AND user_id = ?", session.ID, userID).
			Count(&membership).Error; err != nil {
			return err
		}
		if membership == 0 {
			return ErrForbidden
		}

		var feedback models.Feedback
		err := tx.Where("session_id = ? AND user_id = ?", session.ID, userID).First(&feedback).Error
		switch {
		case err == nil:
			feedback.Stars = stars
			feedback.Note = note
			if err := tx.Save(&feedback).Error; err != nil {
				return err
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			feedback = models.Feedback{
				SessionID: session.ID,
				UserID:    userID,
				Stars:     stars,
				Note:      note,
			}
			if err := tx.Create(&feedback).Error; err != nil {
				return err
			}
		default:
			return err
		}

		loaded, err := loadSession(tx, session.ID)
		if err != nil {
			return err
		}
		view = NewSessionView(loaded, userID)
		return nil
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"user_id":    userID,
		"session_id": sessionID,
		"stars":      stars,
	}).Info("Session rated")

	c.emit(view.ID, EventFeedbackUpdated, view)
	return &view, nil
}

// Get returns the session view for a caller who is or was a participant.
// Read-only; runs outside any lock.
func (c *Coordinator) Get(userID, sessionID uint) (*SessionView, error) {
	session, err := loadSession(c.db, sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	member := false
	for _, p := range session.Participants {
		if p.UserID == userID {
			member = true
			break
		}
	}
	if !member {
		return nil, ErrForbidden
	}

	view := NewSessionView(session, userID)
	return &view, nil
}

func (c *Coordinator) emit(sessionID uint, event string, payload interface{}) {
	if c.gateway != nil {
		c.gateway.Notify(sessionID, event, payload)
	}
}

func loadSession(db *gorm.DB, sessionID uint) (*models.Session, error) {
	var session models.Session
	err := db.
		Preload("Lobby").
		Preload("Participants", func(db *gorm.DB) *gorm.DB {
			return db.Order("participants.joined_at ASC")
		}).
		Preload("Feedback").
		First(&session, sessionID).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}
