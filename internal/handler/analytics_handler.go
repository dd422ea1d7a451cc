package handler

import (
	"net/http"
	"strconv"
	"time"

	"mingle/backend/internal/analytics"

	"github.com/gin-gonic/gin"
)

// GetUsage godoc
// @Summary      Usage analytics
// @Description  Returns time-bucketed session/participant/feedback counts plus range totals. Empty ranges return an empty bucket list with zero totals.
// @Tags         analytics
// @Produce      json
// @Security     BearerAuth
// @Param        duration    query int    false "Filter by lobby duration in minutes"
// @Param        from        query string false "Range start (RFC 3339), default 30 days ago"
// @Param        to          query string false "Range end (RFC 3339), default now"
// @Param        granularity query string false "day, week or month" default(day)
// @Success      200 {object} analytics.Report
// @Failure      400 {object} ErrorResponse
// @Router       /analytics/usage [get]
func GetUsage(c *gin.Context) {
	granularity, err := analytics.ParseGranularity(c.Query("granularity"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	to := time.Now()
	from := to.AddDate(0, 0, -30)
	if raw := c.Query("from"); raw != "" {
		from, err = time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid 'from' timestamp"})
			return
		}
	}
	if raw := c.Query("to"); raw != "" {
		to, err = time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid 'to' timestamp"})
			return
		}
	}
	if !to.After(from) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "'to' must be after 'from'"})
		return
	}

	duration, _ := strconv.Atoi(c.DefaultQuery("duration", "0"))

	report, err := Analytics.Usage(duration, from, to, granularity)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build usage report"})
		return
	}

	c.JSON(http.StatusOK, report)
}
