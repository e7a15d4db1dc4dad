package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/abhisek/quizflow/internal/builder"
	"github.com/abhisek/quizflow/internal/document"
	"github.com/abhisek/quizflow/internal/quiz"
	"github.com/abhisek/quizflow/internal/session"
	"github.com/abhisek/quizflow/internal/store"
)

type errResp struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errResp{Error: msg})
}

// writeError maps err onto a status code and writes it.
func writeError(w http.ResponseWriter, err error) {
	writeErr(w, statusFor(err), err.Error())
}

func statusFor(err error) int {
	var (
		validation *quiz.ValidationError
		target     *quiz.InvalidBranchTargetError
		cycle      *quiz.CycleError
		tooLarge   *http.MaxBytesError
	)
	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, store.ErrQuizNotFound),
		errors.Is(err, ErrSessionNotFound),
		errors.Is(err, quiz.ErrQuestionNotFound):
		return http.StatusNotFound
	case errors.As(err, &validation),
		errors.As(err, &target),
		errors.As(err, &cycle),
		errors.Is(err, builder.ErrUnknownOption),
		errors.Is(err, builder.ErrNotBranchable):
		return http.StatusUnprocessableEntity
	case errors.Is(err, document.ErrInvalidDocument),
		errors.Is(err, quiz.ErrAnswerMismatch),
		errors.Is(err, quiz.ErrUnknownQuestionType),
		errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, session.ErrCompleted),
		errors.Is(err, session.ErrNoHistory),
		errors.Is(err, errStaleQuestion):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

var (
	errBadRequest    = errors.New("bad request")
	errStaleQuestion = errors.New("answer is for a question that is not current")
)

// decodeBody reads a JSON request body into v, rejecting unknown fields.
func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %w", errBadRequest, err)
	}
	return nil
}
