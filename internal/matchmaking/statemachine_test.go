package matchmaking

import (
	"testing"

	"mingle/backend/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	legal := [][2]models.SessionStatus{
		{models.SessionStatusWaiting, models.SessionStatusActive},
		{models.SessionStatusWaiting, models.SessionStatusCancelled},
		{models.SessionStatusActive, models.SessionStatusCompleted},
	}
	for _, pair := range legal {
		assert.True(t, CanTransition(pair[0], pair[1]), "%s -> %s should be legal", pair[0], pair[1])
	}

	illegal := [][2]models.SessionStatus{
		{models.SessionStatusWaiting, models.SessionStatusCompleted},
		{models.SessionStatusActive, models.SessionStatusWaiting},
		{models.SessionStatusActive, models.SessionStatusCancelled},
		{models.SessionStatusCompleted, models.SessionStatusActive},
		{models.SessionStatusCompleted, models.SessionStatusCancelled},
		{models.SessionStatusCancelled, models.SessionStatusWaiting},
		{models.SessionStatusCancelled, models.SessionStatusCompleted},
	}
	for _, pair := range illegal {
		assert.False(t, CanTransition(pair[0], pair[1]), "%s -> %s should be rejected", pair[0], pair[1])
	}
}

func TestTransitionRejectsIllegalMove(t *testing.T) {
	session := &models.Session{Status: models.SessionStatusCompleted}

	err := Transition(session, models.SessionStatusActive)

	assert.Error(t, err)
	assert.Equal(t, models.SessionStatusCompleted, session.Status, "status must not change on a rejected transition")
}

func TestTransitionAppliesLegalMove(t *testing.T) {
	session := &models.Session{Status: models.SessionStatusWaiting}

	err := Transition(session, models.SessionStatusActive)

	assert.NoError(t, err)
	assert.Equal(t, models.SessionStatusActive, session.Status)
}
