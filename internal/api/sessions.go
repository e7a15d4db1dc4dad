package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/abhisek/quizflow/internal/quiz"
	"github.com/abhisek/quizflow/internal/session"
	"github.com/abhisek/quizflow/internal/store"
)

// sessionView is the respondent-facing state of a session.
type sessionView struct {
	ID       string           `json:"id"`
	QuizID   string           `json:"quizId"`
	State    string           `json:"state"`
	Question *quiz.Question   `json:"question,omitempty"`
	Progress progressView     `json:"progress"`
	Answers  map[string]any   `json:"answers"`
	History  []string         `json:"history"`
	Restored *json.RawMessage `json:"restored,omitempty"` // answer undone by going back
}

type progressView struct {
	Type     string `json:"type"`
	Position int    `json:"position"`
	Total    int    `json:"total"`
	Answered int    `json:"answered"`
	Percent  int    `json:"percent"`
}

func viewOf(s *session.Session) sessionView {
	p := s.Progress()
	v := sessionView{
		ID:     s.ID(),
		QuizID: s.QuizID(),
		State:  s.State().String(),
		Progress: progressView{
			Type:     s.Quiz().Settings.ProgressType,
			Position: p.Position,
			Total:    p.Total,
			Answered: p.Answered,
			Percent:  p.Percent(),
		},
		Answers: s.Responses(),
		History: s.History(),
	}
	if q, ok := s.CurrentQuestion(); ok {
		v.Question = &q
	}
	return v
}

// StartSessionHandler starts a respondent session on a stored quiz.
func (a *API) StartSessionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q, err := a.quizzes.Load(r.Context(), chi.URLParam(r, "quizID"))
		if err != nil {
			writeError(w, err)
			return
		}
		s := session.New(q, session.WithResolver(a.resolver))
		a.sessions.Put(s)
		a.log.Debug("session started", zap.String("session_id", s.ID()), zap.String("quiz_id", q.ID))
		writeJSON(w, http.StatusCreated, viewOf(s))
	}
}

// GetSessionHandler returns a session's current state.
func (a *API) GetSessionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var v sessionView
		err := a.sessions.Do(chi.URLParam(r, "sessionID"), func(s *session.Session) error {
			v = viewOf(s)
			return nil
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, v)
	}
}

type answerRequest struct {
	QuestionID string          `json:"questionId,omitempty"` // optional guard against stale clients
	Answer     json.RawMessage `json:"answer"`
}

// SubmitAnswerHandler answers the current question. The answer's JSON shape
// follows the question type: an option ID, a list of option IDs, a string,
// or a {name, email, phone} object. Completing the quiz records the
// response; if that fails the session steps back to the last question.
func (a *API) SubmitAnswerHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req answerRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(w, err)
			return
		}

		var (
			v      sessionView
			halted bool
		)
		err := a.sessions.Do(chi.URLParam(r, "sessionID"), func(s *session.Session) error {
			if s.State() == session.StateInProgress && req.QuestionID != "" && req.QuestionID != s.CurrentQuestionID() {
				return fmt.Errorf("%w: %q (current is %q)", errStaleQuestion, req.QuestionID, s.CurrentQuestionID())
			}
			if err := submit(s, req.Answer); err != nil {
				halted = s.State() == session.StateHalted
				return err
			}
			if s.Completed() {
				// An unrecorded completion is undone so the final answer can be resubmitted.
				if err := a.record(r.Context(), session.BuildSummary(s)); err != nil {
					if _, _, backErr := s.GoBack(); backErr != nil {
						return errors.Join(err, backErr)
					}
					return err
				}
			}
			v = viewOf(s)
			return nil
		})
		if err != nil {
			if halted {
				a.log.Error("session halted",
					zap.String("session_id", chi.URLParam(r, "sessionID")), zap.Error(err))
				writeErr(w, http.StatusInternalServerError, err.Error())
				return
			}
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, v)
	}
}

// submit parses raw against the current question and submits it. Sessions
// that are already completed or halted report their state error.
func submit(s *session.Session, raw json.RawMessage) error {
	q, ok := s.CurrentQuestion()
	if s.State() != session.StateInProgress || !ok {
		return s.SubmitAnswer(quiz.Answer{})
	}
	a, err := quiz.ParseAnswer(q, raw)
	if err != nil {
		return err
	}
	return s.SubmitAnswer(a)
}

// GoBackHandler steps the session back one question. The undone answer is
// returned as "restored" so the client can pre-fill its form.
func (a *API) GoBackHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var v sessionView
		err := a.sessions.Do(chi.URLParam(r, "sessionID"), func(s *session.Session) error {
			undone, had, err := s.GoBack()
			if err != nil {
				return err
			}
			v = viewOf(s)
			if had {
				raw, err := json.Marshal(undone)
				if err != nil {
					return err
				}
				msg := json.RawMessage(raw)
				v.Restored = &msg
			}
			return nil
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, v)
	}
}

func (a *API) record(ctx context.Context, sum session.Summary) error {
	resp := store.ResponseFromSummary(sum)
	if err := a.responses.Append(ctx, resp); err != nil {
		a.log.Error("record response failed",
			zap.String("session_id", sum.SessionID), zap.String("quiz_id", sum.QuizID), zap.Error(err))
		return fmt.Errorf("record response: %w", err)
	}
	a.log.Info("session completed",
		zap.String("session_id", sum.SessionID),
		zap.String("quiz_id", sum.QuizID),
		zap.Int64("sequence", resp.Sequence),
		zap.Int("answered", len(sum.Path)))
	return nil
}
