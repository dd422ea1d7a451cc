package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// region --- DTOs ---

// RateInput defines the structure for rating a session.
type RateInput struct {
	Stars int    `json:"stars" binding:"required,min=1,max=5"`
	Note  string `json:"note"`
}

// endregion

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Token auth already gates the route; cross-origin browsers are fine.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// GetSession godoc
// @Summary      Get a session
// @Description  Returns the full session view. Only current or former participants may read it.
// @Tags         sessions
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Session ID"
// @Success      200 {object} matchmaking.SessionView
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /sessions/{id} [get]
func GetSession(c *gin.Context) {
	userID, _ := c.Get("userID")
	sessionID, _ := strconv.Atoi(c.Param("id"))

	view, err := Coordinator.Get(userID.(uint), uint(sessionID))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// LeaveSession godoc
// @Summary      Leave a session
// @Description  Marks the caller as left. Cancels a waiting session; completes an active one once empty.
// @Tags         sessions
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Session ID"
// @Success      200 {object} matchmaking.SessionView
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /sessions/{id}/leave [post]
func LeaveSession(c *gin.Context) {
	userID, _ := c.Get("userID")
	sessionID, _ := strconv.Atoi(c.Param("id"))

	view, err := Coordinator.Leave(userID.(uint), uint(sessionID))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// RateSession godoc
// @Summary      Rate a session
// @Description  Upserts the caller's star feedback. Re-rating replaces the previous submission.
// @Tags         sessions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path int       true "Session ID"
// @Param        input body RateInput true "Rating"
// @Success      200 {object} matchmaking.SessionView
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /sessions/{id}/rate [post]
func RateSession(c *gin.Context) {
	userID, _ := c.Get("userID")
	sessionID, _ := strconv.Atoi(c.Param("id"))

	var input RateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	view, err := Coordinator.Rate(userID.(uint), uint(sessionID), input.Stars, input.Note)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// SessionEvents godoc
// @Summary      Subscribe to session events
// @Description  Upgrades to a websocket that streams participant/lifecycle/feedback events for the session.
// @Tags         sessions
// @Security     BearerAuth
// @Param        id path int true "Session ID"
// @Success      101 {string} string "Switching Protocols"
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /sessions/{id}/events [get]
func SessionEvents(c *gin.Context) {
	userID, _ := c.Get("userID")
	sessionID, _ := strconv.Atoi(c.Param("id"))

	// Participant check before the upgrade.
	if _, err := Coordinator.Get(userID.(uint), uint(sessionID)); err != nil {
		respondError(c, err)
		return
	}

	conn, err := wsUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logrus.WithError(err).Warn("Websocket upgrade failed")
		return
	}

	EventHub.ServeWS(conn, uint(sessionID), userID.(uint))
}
