package analytics

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"mingle/backend/internal/database"
	"mingle/backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func seedLobby(t *testing.T, db *gorm.DB, duration int) uint {
	t.Helper()
	user := models.User{Nickname: fmt.Sprintf("admin-%d", duration), Email: fmt.Sprintf("admin-%d@example.com", duration), PasswordHash: "x"}
	require.NoError(t, db.Create(&user).Error)
	lobby := models.Lobby{
		Topic:           "topic",
		DurationMinutes: duration,
		Status:          models.LobbyStatusOpen,
		MaxParticipants: 2,
		CreatedByID:     user.ID,
	}
	require.NoError(t, db.Create(&lobby).Error)
	return lobby.ID
}

func seedSession(t *testing.T, db *gorm.DB, lobbyID uint, status models.SessionStatus, createdAt time.Time, endedAt *time.Time) uint {
	t.Helper()
	session := models.Session{
		LobbyID:        lobbyID,
		Status:         status,
		RoomToken:      fmt.Sprintf("token-%d", time.Now().UnixNano()),
		EndedAt:        endedAt,
		LastActivityAt: createdAt,
	}
	session.CreatedAt = createdAt
	require.NoError(t, db.Create(&session).Error)
	return session.ID
}

func day(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse(time.RFC3339, value)
	require.NoError(t, err)
	return parsed
}

func TestUsageZeroFill(t *testing.T) {
	db := setupTestDB(t)
	service := NewService(db)

	report, err := service.Usage(0, day(t, "2025-01-01T00:00:00Z"), day(t, "2025-02-01T00:00:00Z"), GranularityDay)

	require.NoError(t, err)
	assert.NotNil(t, report.Buckets)
	assert.Empty(t, report.Buckets)
	assert.Zero(t, report.Totals.Sessions)
	assert.Zero(t, report.Totals.Completed)
	assert.Zero(t, report.Totals.Active)
	assert.Zero(t, report.Totals.UniqueParticipants)
	assert.Zero(t, report.Totals.AverageRating)
	assert.Zero(t, report.Totals.RatingsCount)
}

func TestUsageDailyBuckets(t *testing.T) {
	db := setupTestDB(t)
	service := NewService(db)
	lobbyID := seedLobby(t, db, 5)

	jan10 := day(t, "2025-01-10T10:00:00Z")
	jan10End := day(t, "2025-01-10T10:05:00Z")
	jan12 := day(t, "2025-01-12T09:00:00Z")

	completed := seedSession(t, db, lobbyID, models.SessionStatusCompleted, jan10, &jan10End)
	seedSession(t, db, lobbyID, models.SessionStatusActive, jan12, nil)

	// Two distinct users on the completed session, one rating.
	for i, userID := range []uint{101, 102} {
		p := models.Participant{SessionID: completed, UserID: userID, Alias: fmt.Sprintf("Guest-%d", i), JoinedAt: jan10}
		require.NoError(t, db.Create(&p).Error)
	}
	feedback := models.Feedback{SessionID: completed, UserID: 101, Stars: 4}
	feedback.CreatedAt = jan10End
	require.NoError(t, db.Create(&feedback).Error)

	report, err := service.Usage(0, day(t, "2025-01-01T00:00:00Z"), day(t, "2025-02-01T00:00:00Z"), GranularityDay)
	require.NoError(t, err)

	require.Len(t, report.Buckets, 2)
	assert.Equal(t, "2025-01-10", report.Buckets[0].Label)
	assert.Equal(t, 1, report.Buckets[0].SessionsCreated)
	assert.Equal(t, 1, report.Buckets[0].SessionsCompleted)
	assert.Equal(t, 2, report.Buckets[0].UniqueParticipants)
	assert.Equal(t, 1, report.Buckets[0].FeedbackSubmitted)

	assert.Equal(t, "2025-01-12", report.Buckets[1].Label)
	assert.Equal(t, 1, report.Buckets[1].SessionsCreated)
	assert.Equal(t, 0, report.Buckets[1].SessionsCompleted)

	assert.Equal(t, 2, report.Totals.Sessions)
	assert.Equal(t, 1, report.Totals.Completed)
	assert.Equal(t, 1, report.Totals.Active)
	assert.Equal(t, 2, report.Totals.UniqueParticipants)
	assert.Equal(t, 1, report.Totals.RatingsCount)
	assert.InDelta(t, 4.0, report.Totals.AverageRating, 0.0001)
}

func TestUsageDurationFilter(t *testing.T) {
	db := setupTestDB(t)
	service := NewService(db)
	shortLobby := seedLobby(t, db, 2)
	longLobby := seedLobby(t, db, 5)

	when := day(t, "2025-03-05T12:00:00Z")
	seedSession(t, db, shortLobby, models.SessionStatusActive, when, nil)
	seedSession(t, db, longLobby, models.SessionStatusActive, when, nil)

	report, err := service.Usage(2, day(t, "2025-03-01T00:00:00Z"), day(t, "2025-04-01T00:00:00Z"), GranularityDay)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Totals.Sessions, "only the 2-minute lobby's session matches")
	require.Len(t, report.Buckets, 1)
	assert.Equal(t, 1, report.Buckets[0].SessionsCreated)
}

func TestUsageMonthGranularity(t *testing.T) {
	db := setupTestDB(t)
	service := NewService(db)
	lobbyID := seedLobby(t, db, 5)

	seedSession(t, db, lobbyID, models.SessionStatusActive, day(t, "2025-01-03T00:00:00Z"), nil)
	seedSession(t, db, lobbyID, models.SessionStatusActive, day(t, "2025-01-28T00:00:00Z"), nil)
	seedSession(t, db, lobbyID, models.SessionStatusActive, day(t, "2025-02-02T00:00:00Z"), nil)

	report, err := service.Usage(0, day(t, "2025-01-01T00:00:00Z"), day(t, "2025-03-01T00:00:00Z"), GranularityMonth)
	require.NoError(t, err)

	require.Len(t, report.Buckets, 2)
	assert.Equal(t, "2025-01", report.Buckets[0].Label)
	assert.Equal(t, 2, report.Buckets[0].SessionsCreated)
	assert.Equal(t, "2025-02", report.Buckets[1].Label)
	assert.Equal(t, 1, report.Buckets[1].SessionsCreated)
}

func TestBucketLabel(t *testing.T) {
	when := day(t, "2025-01-02T15:04:05Z")

	assert.Equal(t, "2025-01-02", BucketLabel(when, GranularityDay))
	assert.Equal(t, "2025-01", BucketLabel(when, GranularityMonth))
	assert.Equal(t, "2025-W01", BucketLabel(when, GranularityWeek))
}

func TestParseGranularity(t *testing.T) {
	got, err := ParseGranularity("")
	require.NoError(t, err)
	assert.Equal(t, GranularityDay, got)

	for _, valid := range []string{"day", "week", "month"} {
		_, err := ParseGranularity(valid)
		assert.NoError(t, err)
	}

	_, err = ParseGranularity("hour")
	assert.Error(t, err)
}
