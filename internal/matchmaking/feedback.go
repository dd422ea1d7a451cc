package matchmaking

// FeedbackView carries the aggregate rating for a session plus the viewer's
// own submission. Other users' notes are never exposed through it.
type FeedbackView struct {
	Submitted bool    `json:"submitted"`
	Stars     *int    `json:"stars"`
	Note      *string `json:"note"`
	Average   float64 `json:"average"`
	Count     int     `json:"count"`
}

// feedbackRow is the subset of the Feedback entity the aggregator needs.
type feedbackRow struct {
	UserID uint
	Stars  int
	Note   string
}

func aggregateFeedback(rows []feedbackRow, viewerID uint) FeedbackView {
	view := FeedbackView{}

	var sum int
	for _, row := range rows {
		sum += row.Stars
		view.Count++
		if row.UserID == viewerID {
			stars := row.Stars
			note := row.Note
			view.Submitted = true
			view.Stars = &stars
			view.Note = &note
		}
	}
	if view.Count > 0 {
		view.Average = float64(sum) / float64(view.Count)
	}
	return view
}
