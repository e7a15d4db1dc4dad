package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/abhisek/quizflow/internal/session"
)

var responseColumns = []string{"id", "sequence", "quiz_id", "session_id", "answers", "path", "started_at", "completed_at"}

// ResponseFromSummary converts a completed session into a storable response.
func ResponseFromSummary(sum session.Summary) *Response {
	return &Response{
		QuizID:      sum.QuizID,
		SessionID:   sum.SessionID,
		Answers:     sum.Responses,
		Path:        sum.Path,
		StartedAt:   sum.StartedAt,
		CompletedAt: sum.CompletedAt,
	}
}

// responseRepo implements ResponseRepo on the responses table.
type responseRepo struct {
	store *Store
}

func (r *responseRepo) Append(ctx context.Context, resp *Response) error {
	seq, err := r.store.seq.Next(ctx)
	if err != nil {
		return err
	}

	answers := resp.Answers
	if answers == nil {
		answers = map[string]any{}
	}
	ab, err := json.Marshal(answers)
	if err != nil {
		return fmt.Errorf("encode answers: %w", err)
	}
	path := resp.Path
	if path == nil {
		path = []string{}
	}
	pb, err := json.Marshal(path)
	if err != nil {
		return fmt.Errorf("encode path: %w", err)
	}

	completedAt := resp.CompletedAt
	if completedAt.IsZero() {
		completedAt = r.store.timestamp()
	}
	startedAt := resp.StartedAt
	if startedAt.IsZero() {
		startedAt = completedAt
	}

	id := uuid.NewString()
	query, args := r.store.builder().
		Insert(ResponsesTable.Name).
		Columns(responseColumns...).
		Values(id, seq, resp.QuizID, resp.SessionID, string(ab), string(pb),
			startedAt.UTC().Truncate(time.Microsecond), completedAt.UTC().Truncate(time.Microsecond)).
		Query()
	if err := r.store.drv.Exec(ctx, query, args, nil); err != nil {
		return fmt.Errorf("append response: %w", err)
	}

	resp.ID = id
	resp.Sequence = seq
	return nil
}

func (r *responseRepo) ListByQuiz(ctx context.Context, quizID string, opts QueryOpts) ([]Response, error) {
	preds := []*entsql.Predicate{entsql.EQ("quiz_id", quizID)}
	if opts.After > 0 {
		preds = append(preds, entsql.GT("sequence", opts.After))
	}
	if opts.Before > 0 {
		preds = append(preds, entsql.LT("sequence", opts.Before))
	}

	sel := r.store.builder().
		Select(responseColumns...).
		From(entsql.Table(ResponsesTable.Name)).
		Where(entsql.And(preds...)).
		OrderBy("sequence")
	if opts.Limit > 0 {
		sel.Limit(opts.Limit)
	}
	query, args := sel.Query()

	var rows entsql.Rows
	if err := r.store.drv.Query(ctx, query, args, &rows); err != nil {
		return nil, fmt.Errorf("list responses: %w", err)
	}
	defer rows.Close()

	out := []Response{}
	for rows.Next() {
		var (
			resp          Response
			answers, path []byte
		)
		if err := rows.Scan(&resp.ID, &resp.Sequence, &resp.QuizID, &resp.SessionID,
			&answers, &path, &resp.StartedAt, &resp.CompletedAt); err != nil {
			return nil, fmt.Errorf("scan response: %w", err)
		}
		if err := json.Unmarshal(answers, &resp.Answers); err != nil {
			return nil, fmt.Errorf("decode answers of response %q: %w", resp.ID, err)
		}
		if err := json.Unmarshal(path, &resp.Path); err != nil {
			return nil, fmt.Errorf("decode path of response %q: %w", resp.ID, err)
		}
		out = append(out, resp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list responses: %w", err)
	}
	return out, nil
}

func (r *responseRepo) Count(ctx context.Context, quizID string) (int, error) {
	query, args := r.store.builder().
		Select(entsql.Count("*")).
		From(entsql.Table(ResponsesTable.Name)).
		Where(entsql.EQ("quiz_id", quizID)).
		Query()

	var rows entsql.Rows
	if err := r.store.drv.Query(ctx, query, args, &rows); err != nil {
		return 0, fmt.Errorf("count responses: %w", err)
	}
	defer rows.Close()

	var n int
	if rows.Next() {
		if err := rows.Scan(&n); err != nil {
			return 0, fmt.Errorf("count responses: %w", err)
		}
	}
	return n, rows.Err()
}
