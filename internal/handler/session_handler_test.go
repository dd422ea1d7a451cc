package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"mingle/backend/internal/database"
	"mingle/backend/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTest(t *testing.T) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	database.DB = db
	Init(db)
}

func seedUser(t *testing.T, nickname string) uint {
	t.Helper()
	user := models.User{Nickname: nickname, Email: nickname + "@example.com", PasswordHash: "x"}
	require.NoError(t, database.DB.Create(&user).Error)
	return user.ID
}

func seedOpenLobby(t *testing.T) uint {
	t.Helper()
	creator := seedUser(t, "host")
	lobby := models.Lobby{
		Topic:           "Intro chats",
		DurationMinutes: 5,
		Status:          models.LobbyStatusOpen,
		MaxParticipants: 2,
		CreatedByID:     creator,
	}
	require.NoError(t, database.DB.Create(&lobby).Error)
	return lobby.ID
}

func testContext(t *testing.T, userID uint, method, path string, body []byte, params gin.Params) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	var reader *bytes.Buffer
	if body != nil {
		reader = bytes.NewBuffer(body)
	} else {
		reader = bytes.NewBuffer(nil)
	}
	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Params = params
	c.Set("userID", userID)
	return c, w
}

func TestJoinLobbyCreatedVsJoined(t *testing.T) {
	setupTest(t)
	lobbyID := seedOpenLobby(t)
	alice := seedUser(t, "alice")
	bob := seedUser(t, "bob")
	idParam := gin.Params{{Key: "id", Value: strconv.Itoa(int(lobbyID))}}

	// First joiner opens a waiting session -> 201.
	c, w := testContext(t, alice, "POST", "/lobbies/join", nil, idParam)
	JoinLobby(c)
	assert.Equal(t, http.StatusCreated, w.Code)

	var first map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &first))
	assert.Equal(t, "waiting", first["status"])
	assert.NotEmpty(t, first["room_token"])

	// Second joiner is paired into it -> 200.
	c, w = testContext(t, bob, "POST", "/lobbies/join", nil, idParam)
	JoinLobby(c)
	assert.Equal(t, http.StatusOK, w.Code)

	var second map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &second))
	assert.Equal(t, "active", second["status"])
	assert.Equal(t, first["id"], second["id"])
	assert.NotNil(t, second["peer"])
}

func TestJoinLobbyConflictCode(t *testing.T) {
	setupTest(t)
	lobbyID := seedOpenLobby(t)
	alice := seedUser(t, "alice")
	idParam := gin.Params{{Key: "id", Value: strconv.Itoa(int(lobbyID))}}

	c, w := testContext(t, alice, "POST", "/lobbies/join", nil, idParam)
	JoinLobby(c)
	require.Equal(t, http.StatusCreated, w.Code)

	c, w = testContext(t, alice, "POST", "/lobbies/join", nil, idParam)
	JoinLobby(c)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "ALREADY_IN_SESSION")
}

func TestLeaveSessionNotFound(t *testing.T) {
	setupTest(t)
	alice := seedUser(t, "alice")

	c, w := testContext(t, alice, "POST", "/sessions/leave", nil, gin.Params{{Key: "id", Value: "4242"}})
	LeaveSession(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "SESSION_NOT_FOUND")
}

func TestRateSessionValidation(t *testing.T) {
	setupTest(t)
	lobbyID := seedOpenLobby(t)
	alice := seedUser(t, "alice")
	idParam := gin.Params{{Key: "id", Value: strconv.Itoa(int(lobbyID))}}

	c, w := testContext(t, alice, "POST", "/lobbies/join", nil, idParam)
	JoinLobby(c)
	require.Equal(t, http.StatusCreated, w.Code)
	var view map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	sessionParam := gin.Params{{Key: "id", Value: strconv.Itoa(int(view["id"].(float64)))}}

	// Out-of-range stars rejected by binding.
	c, w = testContext(t, alice, "POST", "/sessions/rate", []byte(`{"stars": 7}`), sessionParam)
	RateSession(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Valid rating lands and shows up in the aggregate.
	c, w = testContext(t, alice, "POST", "/sessions/rate", []byte(`{"stars": 5, "note": "nice"}`), sessionParam)
	RateSession(c)
	assert.Equal(t, http.StatusOK, w.Code)
	var rated map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rated))
	feedback := rated["feedback"].(map[string]interface{})
	assert.Equal(t, true, feedback["submitted"])
	assert.EqualValues(t, 5, feedback["average"])
}

func TestGetSessionForbiddenForStranger(t *testing.T) {
	setupTest(t)
	lobbyID := seedOpenLobby(t)
	alice := seedUser(t, "alice")
	mallory := seedUser(t, "mallory")
	idParam := gin.Params{{Key: "id", Value: strconv.Itoa(int(lobbyID))}}

	c, w := testContext(t, alice, "POST", "/lobbies/join", nil, idParam)
	JoinLobby(c)
	require.Equal(t, http.StatusCreated, w.Code)
	var view map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	sessionParam := gin.Params{{Key: "id", Value: strconv.Itoa(int(view["id"].(float64)))}}

	c, w = testContext(t, mallory, "GET", "/sessions", nil, sessionParam)
	GetSession(c)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "FORBIDDEN")
}

func TestGetUsageEmptyRange(t *testing.T) {
	setupTest(t)
	alice := seedUser(t, "alice")

	c, w := testContext(t, alice, "GET", "/analytics/usage?from=2020-01-01T00:00:00Z&to=2020-02-01T00:00:00Z", nil, nil)
	GetUsage(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var report map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	assert.Empty(t, report["buckets"])
	totals := report["totals"].(map[string]interface{})
	assert.EqualValues(t, 0, totals["sessions"])
}
