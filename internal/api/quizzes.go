package api

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/abhisek/quizflow/internal/builder"
	"github.com/abhisek/quizflow/internal/document"
	"github.com/abhisek/quizflow/internal/graph"
	"github.com/abhisek/quizflow/internal/quiz"
	"github.com/abhisek/quizflow/internal/store"
)

const maxDocumentBytes = 1 << 20

type quizListItem struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	QuestionCount int       `json:"questionCount"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// ListQuizzesHandler returns every quiz, newest first, without questions.
func (a *API) ListQuizzesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		quizzes, err := a.quizzes.List(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		items := make([]quizListItem, len(quizzes))
		for i, q := range quizzes {
			items[i] = quizListItem{
				ID:            q.ID,
				Title:         q.Title,
				Description:   q.Description,
				QuestionCount: len(q.Questions),
				CreatedAt:     q.CreatedAt,
				UpdatedAt:     q.UpdatedAt,
			}
		}
		writeJSON(w, http.StatusOK, items)
	}
}

// CreateQuizHandler creates an empty draft, or stores the quiz document in
// the request body under a fresh ID.
func (a *API) CreateQuizHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := readBody(w, r)
		if err != nil {
			writeError(w, err)
			return
		}

		var created quiz.Quiz
		if len(bytes.TrimSpace(body)) == 0 {
			created, err = a.editor.NewQuiz(r.Context())
		} else {
			var draft quiz.Quiz
			draft, err = document.Parse(body, document.FormatJSON, a.validate...)
			if err == nil {
				created, err = a.quizzes.Create(r.Context(), draft)
			}
		}
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, created)
	}
}

// GetQuizHandler returns one quiz.
func (a *API) GetQuizHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q, err := a.quizzes.Load(r.Context(), chi.URLParam(r, "quizID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, q)
	}
}

// UpdateQuizHandler replaces a quiz with the document in the request body.
// The ID in the path wins over any ID in the document.
func (a *API) UpdateQuizHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := readBody(w, r)
		if err != nil {
			writeError(w, err)
			return
		}
		q, err := document.Parse(body, document.FormatJSON, a.validate...)
		if err != nil {
			writeError(w, err)
			return
		}
		q.ID = chi.URLParam(r, "quizID")
		saved, err := a.quizzes.Save(r.Context(), q)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, saved)
	}
}

// DeleteQuizHandler removes a quiz and its responses.
func (a *API) DeleteQuizHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := a.quizzes.Delete(r.Context(), chi.URLParam(r, "quizID")); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// GraphHandler returns the quiz's flow graph as JSON, or as DOT or Mermaid
// text with ?format=dot|mermaid. ?end=1 adds the terminal node.
func (a *API) GraphHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q, err := a.quizzes.Load(r.Context(), chi.URLParam(r, "quizID"))
		if err != nil {
			writeError(w, err)
			return
		}

		var opts []graph.Option
		if end, _ := strconv.ParseBool(r.URL.Query().Get("end")); end {
			opts = append(opts, graph.WithEndNode())
		}
		g := graph.Project(q, opts...)

		switch r.URL.Query().Get("format") {
		case "", "json":
			writeJSON(w, http.StatusOK, g)
		case "dot":
			w.Header().Set("Content-Type", "text/vnd.graphviz; charset=utf-8")
			_, _ = io.WriteString(w, g.DOT())
		case "mermaid":
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			_, _ = io.WriteString(w, g.Mermaid())
		default:
			writeErr(w, http.StatusBadRequest, "format must be json, dot or mermaid")
		}
	}
}

type responseItem struct {
	ID          string         `json:"id"`
	Sequence    int64          `json:"sequence"`
	SessionID   string         `json:"sessionId"`
	Answers     map[string]any `json:"answers"`
	Path        []string       `json:"path"`
	StartedAt   time.Time      `json:"startedAt"`
	CompletedAt time.Time      `json:"completedAt"`
}

// ListResponsesHandler pages through a quiz's recorded responses with
// ?after=<sequence>&limit=<n>.
func (a *API) ListResponsesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		quizID := chi.URLParam(r, "quizID")
		if _, err := a.quizzes.Load(r.Context(), quizID); err != nil {
			writeError(w, err)
			return
		}

		opts := store.QueryOpts{Limit: 100}
		if v := r.URL.Query().Get("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 1000 {
				opts.Limit = n
			}
		}
		if v := r.URL.Query().Get("after"); v != "" {
			if n, err := strconv.ParseInt(v, 10, 64); err == nil {
				opts.After = n
			}
		}

		responses, err := a.responses.ListByQuiz(r.Context(), quizID, opts)
		if err != nil {
			writeError(w, err)
			return
		}
		items := make([]responseItem, len(responses))
		for i, resp := range responses {
			items[i] = responseItem{
				ID:          resp.ID,
				Sequence:    resp.Sequence,
				SessionID:   resp.SessionID,
				Answers:     resp.Answers,
				Path:        resp.Path,
				StartedAt:   resp.StartedAt,
				CompletedAt: resp.CompletedAt,
			}
		}
		writeJSON(w, http.StatusOK, items)
	}
}

type addQuestionRequest struct {
	Type  quiz.QuestionType `json:"type"`
	Title string            `json:"title"`
}

// AddQuestionHandler appends a question and returns it.
func (a *API) AddQuestionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req addQuestionRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(w, err)
			return
		}
		_, added, err := a.editor.AddQuestion(r.Context(), chi.URLParam(r, "quizID"), req.Type, req.Title)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, added)
	}
}

type updateQuestionRequest struct {
	Title    *string            `json:"title"`
	Type     *quiz.QuestionType `json:"type"`
	Required *bool              `json:"required"`
	Options  *[]quiz.Option     `json:"options"`
}

// UpdateQuestionHandler patches a question's fields and returns the quiz.
func (a *API) UpdateQuestionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req updateQuestionRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(w, err)
			return
		}
		q, err := a.editor.UpdateQuestion(r.Context(), chi.URLParam(r, "quizID"), chi.URLParam(r, "questionID"),
			builder.QuestionPatch{Title: req.Title, Type: req.Type, Required: req.Required, Options: req.Options})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, q)
	}
}

// DeleteQuestionHandler removes a question and returns the quiz.
func (a *API) DeleteQuestionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q, err := a.editor.DeleteQuestion(r.Context(), chi.URLParam(r, "quizID"), chi.URLParam(r, "questionID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, q)
	}
}

// SetBranchingHandler replaces a question's branching rules. The body maps
// option IDs to a question ID, "complete", or null.
func (a *API) SetBranchingHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var b quiz.Branching
		if err := decodeBody(r, &b); err != nil {
			writeError(w, err)
			return
		}
		q, err := a.editor.SetBranching(r.Context(), chi.URLParam(r, "quizID"), chi.URLParam(r, "questionID"), b)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, q)
	}
}

// readBody reads a quiz document, refusing bodies over maxDocumentBytes.
func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxDocumentBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, fmt.Errorf("quiz document exceeds %d bytes: %w", tooLarge.Limit, err)
		}
		return nil, fmt.Errorf("%w: %w", errBadRequest, err)
	}
	return body, nil
}
