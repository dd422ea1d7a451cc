// Package analytics produces time-bucketed usage metrics over sessions,
// participants and feedback. All reads are lock-free and tolerate eventual
// consistency with in-flight matchmaking transactions.
package analytics

import (
	"fmt"
	"sort"
	"time"

	"mingle/backend/internal/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type Granularity string

const (
	GranularityDay   Granularity = "day"
	GranularityWeek  Granularity = "week"
	GranularityMonth Granularity = "month"
)

// ParseGranularity validates a query-string granularity, defaulting to day.
func ParseGranularity(s string) (Granularity, error) {
	switch Granularity(s) {
	case "", GranularityDay:
		return GranularityDay, nil
	case GranularityWeek:
		return GranularityWeek, nil
	case GranularityMonth:
		return GranularityMonth, nil
	}
	return "", fmt.Errorf("unknown granularity %q", s)
}

// Bucket is one fixed-granularity interval of merged counts.
type Bucket struct {
	Label              string `json:"label"`
	SessionsCreated    int    `json:"sessions_created"`
	SessionsCompleted  int    `json:"sessions_completed"`
	UniqueParticipants int    `json:"unique_participants"`
	FeedbackSubmitted  int    `json:"feedback_submitted"`
}

// Totals are the whole-range aggregates.
type Totals struct {
	Sessions           int     `json:"sessions"`
	Completed          int     `json:"completed"`
	Active             int     `json:"active"`
	UniqueParticipants int     `json:"unique_participants"`
	AverageRating      float64 `json:"average_rating"`
	RatingsCount       int     `json:"ratings_count"`
}

// Report is the full analytics response. Buckets is never nil; a range with
// no matching rows yields an empty list and zero totals.
type Report struct {
	Buckets []Bucket `json:"buckets"`
	Totals  Totals   `json:"totals"`
}

// Service runs the usage queries. Bucketing happens in memory after plain
// indexed range fetches, which keeps the queries identical across dialects.
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Usage builds the bucketed report for the given range. duration filters by
// lobby duration when > 0. The three entity scans are independent and merged
// by bucket label.
func (s *Service) Usage(duration int, from, to time.Time, granularity Granularity) (*Report, error) {
	buckets := make(map[string]*Bucket)
	bucket := func(t time.Time) *Bucket {
		label := BucketLabel(t, granularity)
		b, ok := buckets[label]
		if !ok {
			b = &Bucket{Label: label}
			buckets[label] = b
		}
		return b
	}

	report := &Report{Buckets: []Bucket{}}

	// Sessions created / completed.
	var sessions []models.Session
	q := s.sessionScope(duration).
		Select("sessions.*").
		Where("sessions.created_at >= ? AND sessions.created_at < ?", from, to)
	if err := q.Find(&sessions).Error; err != nil {
		return nil, err
	}
	for _, session := range sessions {
		bucket(session.CreatedAt).SessionsCreated++
		report.Totals.Sessions++
		switch session.Status {
		case models.SessionStatusCompleted:
			report.Totals.Completed++
			if session.EndedAt != nil {
				bucket(*session.EndedAt).SessionsCompleted++
			}
		case models.SessionStatusActive:
			report.Totals.Active++
		}
	}

	// Distinct participating users, per bucket and overall.
	var participants []models.Participant
	pq := s.db.Model(&models.Participant{}).
		Select("participants.*").
		Joins("JOIN sessions ON sessions.id = participants.session_id").
		Where("participants.joined_at >= ? AND participants.joined_at < ?", from, to)
	if duration > 0 {
		pq = pq.Joins("JOIN lobbies ON lobbies.id = sessions.lobby_id").
			Where("lobbies.duration_minutes = ?", duration)
	}
	if err := pq.Find(&participants).Error; err != nil {
		return nil, err
	}
	seenByBucket := make(map[string]map[uint]bool)
	seenOverall := make(map[uint]bool)
	for _, p := range participants {
		label := BucketLabel(p.JoinedAt, granularity)
		if seenByBucket[label] == nil {
			seenByBucket[label] = make(map[uint]bool)
		}
		if !seenByBucket[label][p.UserID] {
			seenByBucket[label][p.UserID] = true
			bucket(p.JoinedAt).UniqueParticipants++
		}
		seenOverall[p.UserID] = true
	}
	report.Totals.UniqueParticipants = len(seenOverall)

	// Feedback submitted + rating aggregate.
	var feedback []models.Feedback
	fq := s.db.Model(&models.Feedback{}).
		Select("feedback.*").
		Joins("JOIN sessions ON sessions.id = feedback.session_id").
		Where("feedback.created_at >= ? AND feedback.created_at < ?", from, to)
	if duration > 0 {
		fq = fq.Joins("JOIN lobbies ON lobbies.id = sessions.lobby_id").
			Where("lobbies.duration_minutes = ?", duration)
	}
	if err := fq.Find(&feedback).Error; err != nil {
		return nil, err
	}
	var starSum int
	for _, f := range feedback {
		bucket(f.CreatedAt).FeedbackSubmitted++
		starSum += f.Stars
	}
	report.Totals.RatingsCount = len(feedback)
	if len(feedback) > 0 {
		report.Totals.AverageRating = float64(starSum) / float64(len(feedback))
	}

	for _, b := range buckets {
		report.Buckets = append(report.Buckets, *b)
	}
	sort.Slice(report.Buckets, func(i, j int) bool {
		return report.Buckets[i].Label < report.Buckets[j].Label
	})

	logrus.WithFields(logrus.Fields{
		"from":        from,
		"to":          to,
		"granularity": granularity,
		"buckets":     len(report.Buckets),
	}).Debug("Usage report built")

	return report, nil
}

func (s *Service) sessionScope(duration int) *gorm.DB {
	q := s.db.Model(&models.Session{})
	if duration > 0 {
		q = q.Joins("JOIN lobbies ON lobbies.id = sessions.lobby_id").
			Where("lobbies.duration_minutes = ?", duration)
	}
	return q
}

// BucketLabel formats a timestamp into its bucket key: "2006-01-02" for day,
// "2006-W02" (ISO week) for week, "2006-01" for month.
func BucketLabel(t time.Time, granularity Granularity) string {
	switch granularity {
	case GranularityWeek:
		year, week := t.UTC().ISOWeek()
		return fmt.Sprintf("%d-W%02d", year, week)
	case GranularityMonth:
		return t.UTC().Format("2006-01")
	default:
		return t.UTC().Format("2006-01-02")
	}
}
