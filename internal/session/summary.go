package session

import "time"

// Summary is the record of a completed session, as persisted and shown on
// the preview's end screen.
type Summary struct {
	SessionID   string
	QuizID      string
	Path        []string
	Responses   map[string]any
	StartedAt   time.Time
	CompletedAt time.Time
}

// Duration returns how long the respondent took.
func (s Summary) Duration() time.Duration {
	if s.CompletedAt.IsZero() {
		return 0
	}
	return s.CompletedAt.Sub(s.StartedAt)
}

// BuildSummary creates a Summary from the session's current state.
func BuildSummary(s *Session) Summary {
	return Summary{
		SessionID:   s.id,
		QuizID:      s.quiz.ID,
		Path:        s.History(),
		Responses:   s.Responses(),
		StartedAt:   s.startedAt,
		CompletedAt: s.completedAt,
	}
}
