package matchmaking

import (
	"fmt"

	"mingle/backend/internal/models"
)

// transitions is the single source of truth for the session lifecycle:
//
//	waiting -> active    (second participant attaches)
//	waiting -> cancelled (sole participant leaves before pairing)
//	active  -> completed (last participant leaves)
//
// Terminal states have no outgoing edges.
var transitions = map[models.SessionStatus][]models.SessionStatus{
	models.SessionStatusWaiting: {models.SessionStatusActive, models.SessionStatusCancelled},
	models.SessionStatusActive:  {models.SessionStatusCompleted},
}

// CanTransition reports whether a session may move from one status to another.
func CanTransition(from, to models.SessionStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Transition mutates the session status after checking the move is legal.
// Timestamp stamping is the coordinator's job; this only guards the edge.
func Transition(session *models.Session, to models.SessionStatus) error {
	if !CanTransition(session.Status, to) {
		return fmt.Errorf("illegal session transition %s -> %s", session.Status, to)
	}
	session.Status = to
	return nil
}
