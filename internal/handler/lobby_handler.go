package handler

import (
	"net/http"
	"slices"
	"strconv"

	"mingle/backend/internal/database"
	"mingle/backend/internal/models"

	"github.com/gin-gonic/gin"
)

// region --- DTOs ---

type LobbyInput struct {
	Topic           string                 `json:"topic" binding:"required"`
	Description     string                 `json:"description"`
	DurationMinutes int                    `json:"duration_minutes" binding:"required"`
	IsPaid          bool                   `json:"is_paid"`
	Status          models.LobbyStatus     `json:"status" binding:"omitempty,oneof=draft open closed"`
	MaxParticipants int                    `json:"max_participants" binding:"required,min=2,max=10"`
	Metadata        map[string]interface{} `json:"metadata"`
}

type LobbyResponse struct {
	ID              uint                   `json:"id"`
	Topic           string                 `json:"topic"`
	Description     string                 `json:"description"`
	DurationMinutes int                    `json:"duration_minutes"`
	IsPaid          bool                   `json:"is_paid"`
	Status          models.LobbyStatus     `json:"status"`
	MaxParticipants int                    `json:"max_participants"`
	Metadata        map[string]interface{} `json:"metadata"`
}

// LobbyStatsResponse aggregates a lobby's session, participant and feedback
// activity.
type LobbyStatsResponse struct {
	LobbyID             uint             `json:"lobby_id"`
	SessionsByStatus    map[string]int64 `json:"sessions_by_status"`
	ParticipantsWaiting int64            `json:"participants_waiting"`
	FeedbackCount       int64            `json:"feedback_count"`
	FeedbackAverage     float64          `json:"feedback_average"`
}

func newLobbyResponse(lobby models.Lobby) LobbyResponse {
	return LobbyResponse{
		ID:              lobby.ID,
		Topic:           lobby.Topic,
		Description:     lobby.Description,
		DurationMinutes: lobby.DurationMinutes,
		IsPaid:          lobby.IsPaid,
		Status:          lobby.Status,
		MaxParticipants: lobby.MaxParticipants,
		Metadata:        lobby.Metadata,
	}
}

// endregion

// CreateLobby godoc
// @Summary      Create a new lobby (Admin only)
// @Description  Creates a lobby. New lobbies start as drafts unless a status is given.
// @Tags         lobbies
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        input body LobbyInput true "Lobby Info"
// @Success      201  {object}  LobbyResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Router       /lobbies [post]
func CreateLobby(c *gin.Context) {
	userID, _ := c.Get("userID")

	var input LobbyInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !slices.Contains(models.AllowedDurations, input.DurationMinutes) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unsupported duration"})
		return
	}

	status := input.Status
	if status == "" {
		status = models.LobbyStatusDraft
	}

	lobby := models.Lobby{
		Topic:           input.Topic,
		Description:     input.Description,
		DurationMinutes: input.DurationMinutes,
		IsPaid:          input.IsPaid,
		Status:          status,
		MaxParticipants: input.MaxParticipants,
		CreatedByID:     userID.(uint),
		Metadata:        input.Metadata,
	}
	if err := database.DB.Create(&lobby).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create lobby"})
		return
	}

	c.JSON(http.StatusCreated, newLobbyResponse(lobby))
}

// SearchLobbies godoc
// @Summary      Search open lobbies
// @Description  Gets a paginated list of open lobbies, optionally filtered by duration.
// @Tags         lobbies
// @Produce      json
// @Param        duration query int false "Filter by duration in minutes"
// @Param        page     query int false "Page number" default(1)
// @Param        limit    query int false "Items per page" default(10)
// @Success      200 {object} PaginatedResponse[LobbyResponse]
// @Router       /lobbies [get]
func SearchLobbies(c *gin.Context) {
	page, limit := pageParams(c)

	query := database.DB.Model(&models.Lobby{}).Where("status = ?", models.LobbyStatusOpen)
	if duration := c.Query("duration"); duration != "" {
		query = query.Where("duration_minutes = ?", duration)
	}

	result, err := Paginate[models.Lobby](query.Order("created_at DESC"), page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to search lobbies"})
		return
	}

	responses := make([]LobbyResponse, 0, len(result.Data))
	for _, lobby := range result.Data {
		responses = append(responses, newLobbyResponse(lobby))
	}

	c.JSON(http.StatusOK, PaginatedResponse[LobbyResponse]{Data: responses, Meta: result.Meta})
}

// GetLobbyByID godoc
// @Summary      Get a lobby by ID
// @Tags         lobbies
// @Produce      json
// @Param        id path int true "Lobby ID"
// @Success      200 {object} LobbyResponse
// @Failure      404 {object} ErrorResponse "Lobby not found"
// @Router       /lobbies/{id} [get]
func GetLobbyByID(c *gin.Context) {
	lobbyID, _ := strconv.Atoi(c.Param("id"))

	var lobby models.Lobby
	if err := database.DB.First(&lobby, lobbyID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Lobby not found"})
		return
	}

	c.JSON(http.StatusOK, newLobbyResponse(lobby))
}

// GetLobbyStats godoc
// @Summary      Get per-lobby activity stats
// @Tags         lobbies
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Lobby ID"
// @Success      200 {object} LobbyStatsResponse
// @Failure      404 {object} ErrorResponse "Lobby not found"
// @Router       /lobbies/{id}/stats [get]
func GetLobbyStats(c *gin.Context) {
	lobbyID, _ := strconv.Atoi(c.Param("id"))

	var lobby models.Lobby
	if err := database.DB.First(&lobby, lobbyID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Lobby not found"})
		return
	}

	stats := LobbyStatsResponse{
		LobbyID:          lobby.ID,
		SessionsByStatus: make(map[string]int64),
	}

	var statusCounts []struct {
		Status models.SessionStatus
		Count  int64
	}
	database.DB.Model(&models.Session{}).
		Select("status, COUNT(*) as count").
		Where("lobby_id = ?", lobby.ID).
		Group("status").
		Scan(&statusCounts)
	for _, row := range statusCounts {
		stats.SessionsByStatus[string(row.Status)] = row.Count
	}

	database.DB.Model(&models.Participant{}).
		Joins("JOIN sessions ON sessions.id = participants.session_id").
		Where("sessions.lobby_id = ? AND sessions.status = ?", lobby.ID, models.SessionStatusWaiting).
		Where("participants.left_at IS NULL").
		Count(&stats.ParticipantsWaiting)

	var feedbackAgg struct {
		Count   int64
		Average float64
	}
	database.DB.Model(&models.Feedback{}).
		Select("COUNT(*) as count, COALESCE(AVG(stars), 0) as average").
		Joins("JOIN sessions ON sessions.id = feedback.session_id").
		Where("sessions.lobby_id = ?", lobby.ID).
		Scan(&feedbackAgg)
	stats.FeedbackCount = feedbackAgg.Count
	stats.FeedbackAverage = feedbackAgg.Average

	c.JSON(http.StatusOK, stats)
}

// UpdateLobby godoc
// @Summary      Update a lobby (Admin only)
// @Tags         lobbies
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int        true  "Lobby ID"
// @Param        input body      LobbyInput true  "New Lobby Info"
// @Success      200   {object}  LobbyResponse
// @Failure      404   {object}  ErrorResponse "Lobby not found"
// @Router       /lobbies/{id} [put]
func UpdateLobby(c *gin.Context) {
	lobbyID, _ := strconv.Atoi(c.Param("id"))

	var lobby models.Lobby
	if err := database.DB.First(&lobby, lobbyID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Lobby not found"})
		return
	}

	var input LobbyInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !slices.Contains(models.AllowedDurations, input.DurationMinutes) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unsupported duration"})
		return
	}

	lobby.Topic = input.Topic
	lobby.Description = input.Description
	lobby.DurationMinutes = input.DurationMinutes
	lobby.IsPaid = input.IsPaid
	lobby.MaxParticipants = input.MaxParticipants
	lobby.Metadata = input.Metadata
	if input.Status != "" {
		lobby.Status = input.Status
	}

	if err := database.DB.Save(&lobby).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update lobby"})
		return
	}

	c.JSON(http.StatusOK, newLobbyResponse(lobby))
}

// DeleteLobby godoc
// @Summary      Delete a lobby (Admin only)
// @Description  Soft-deletes the lobby. Existing sessions are left untouched.
// @Tags         lobbies
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Lobby ID"
// @Success      200 {object} map[string]string "{"message": "Lobby deleted"}"
// @Failure      404 {object} ErrorResponse "Lobby not found"
// @Router       /lobbies/{id} [delete]
func DeleteLobby(c *gin.Context) {
	lobbyID, _ := strconv.Atoi(c.Param("id"))

	var lobby models.Lobby
	if err := database.DB.First(&lobby, lobbyID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Lobby not found"})
		return
	}

	if err := database.DB.Delete(&lobby).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete lobby"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Lobby deleted"})
}

// JoinLobby godoc
// @Summary      Join a lobby for matching
// @Description  Pairs the caller with a waiting user or opens a new waiting session. Returns 201 when a new session was created, 200 when paired into an existing one.
// @Tags         lobbies
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Lobby ID"
// @Success      200 {object} matchmaking.SessionView "Paired into an existing session"
// @Success      201 {object} matchmaking.SessionView "New waiting session created"
// @Failure      404 {object} ErrorResponse "Lobby not found"
// @Failure      409 {object} ErrorResponse "Lobby closed or user already in a session"
// @Router       /lobbies/{id}/join [post]
func JoinLobby(c *gin.Context) {
	userID, _ := c.Get("userID")
	lobbyID, _ := strconv.Atoi(c.Param("id"))

	view, created, err := Coordinator.Join(userID.(uint), uint(lobbyID))
	if err != nil {
		respondError(c, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, view)
}
