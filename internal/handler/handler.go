package handler

import (
	"errors"
	"net/http"

	"mingle/backend/internal/analytics"
	"mingle/backend/internal/hub"
	"mingle/backend/internal/matchmaking"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

var (
	// Coordinator executes all matchmaking mutations.
	Coordinator *matchmaking.Coordinator
	// Analytics serves the usage reports.
	Analytics *analytics.Service
	// EventHub fans session events out to realtime subscribers.
	EventHub *hub.Hub
)

// Init wires the handler package's collaborators. Must be called once after
// the database is connected, before routes are registered.
func Init(db *gorm.DB) {
	EventHub = hub.NewHub()
	Coordinator = matchmaking.NewCoordinator(db, EventHub)
	Analytics = analytics.NewService(db)
}

// ErrorResponse represents a generic error response.
type ErrorResponse struct {
	Error string `json:"error" example:"An error message"`
	Code  string `json:"code,omitempty" example:"SESSION_NOT_FOUND"`
}

// respondError maps a coordinator error to its HTTP status. Unknown errors
// become opaque 500s.
func respondError(c *gin.Context, err error) {
	var mErr *matchmaking.Error
	if errors.As(err, &mErr) {
		status := http.StatusInternalServerError
		switch mErr.Code {
		case "LOBBY_NOT_FOUND", "SESSION_NOT_FOUND":
			status = http.StatusNotFound
		case "LOBBY_CLOSED", "ALREADY_IN_SESSION":
			status = http.StatusConflict
		case "FORBIDDEN":
			status = http.StatusForbidden
		case "INVALID_STARS":
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{"error": mErr.Message, "code": mErr.Code})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
}
