package session

// Progress describes how far through the quiz a session is, in quiz order.
// Branching can skip questions, so Position may jump by more than one.
type Progress struct {
	Position int // 1-based position of the current question; Total when completed
	Total    int
	Answered int
}

// Fraction returns progress in [0, 1]. An empty quiz counts as done.
func (p Progress) Fraction() float64 {
	if p.Total == 0 {
		return 1
	}
	return float64(p.Position) / float64(p.Total)
}

// Percent returns progress as a whole percentage.
func (p Progress) Percent() int {
	return int(p.Fraction()*100 + 0.5)
}

// Progress reports the session's position in the quiz.
func (s *Session) Progress() Progress {
	p := Progress{Total: len(s.quiz.Questions), Answered: len(s.answers)}
	if s.state == StateCompleted {
		p.Position = p.Total
		return p
	}
	p.Position = s.quiz.IndexOf(s.current) + 1
	return p
}
