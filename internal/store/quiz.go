package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/quizflow/internal/quiz"
)

var quizColumns = []string{"id", "title", "description", "questions", "settings", "created_at", "updated_at"}

// quizRepo implements QuizRepo on the quizzes table.
type quizRepo struct {
	store    *Store
	validate []quiz.ValidateOption
}

func (r *quizRepo) Create(ctx context.Context, draft quiz.Quiz) (quiz.Quiz, error) {
	if err := quiz.ValidateQuiz(draft, r.validate...); err != nil {
		return quiz.Quiz{}, err
	}

	q := draft.Clone()
	q.ID = quiz.NewQuizID()
	q.CreatedAt = r.store.timestamp()
	q.UpdatedAt = q.CreatedAt

	questions, settings, err := encodeQuiz(q)
	if err != nil {
		return quiz.Quiz{}, err
	}

	query, args := r.store.builder().
		Insert(QuizzesTable.Name).
		Columns(quizColumns...).
		Values(q.ID, q.Title, q.Description, questions, settings, q.CreatedAt, q.UpdatedAt).
		Query()
	if err := r.store.drv.Exec(ctx, query, args, nil); err != nil {
		return quiz.Quiz{}, fmt.Errorf("create quiz: %w", err)
	}
	return q, nil
}

func (r *quizRepo) Load(ctx context.Context, id string) (quiz.Quiz, error) {
	return loadQuiz(ctx, r.store.drv, r.store.builder(), id)
}

func (r *quizRepo) Save(ctx context.Context, q quiz.Quiz) (quiz.Quiz, error) {
	if err := quiz.ValidateQuiz(q, r.validate...); err != nil {
		return quiz.Quiz{}, err
	}

	q = q.Clone()
	q.UpdatedAt = r.store.timestamp()
	questions, settings, err := encodeQuiz(q)
	if err != nil {
		return quiz.Quiz{}, err
	}

	err = r.store.withTx(ctx, func(tx dialect.Tx) error {
		stored, err := loadQuiz(ctx, tx, r.store.builder(), q.ID)
		if err != nil {
			return err
		}
		q.CreatedAt = stored.CreatedAt

		query, args := r.store.builder().
			Update(QuizzesTable.Name).
			Set("title", q.Title).
			Set("description", q.Description).
			Set("questions", questions).
			Set("settings", settings).
			Set("updated_at", q.UpdatedAt).
			Where(entsql.EQ("id", q.ID)).
			Query()
		if err := tx.Exec(ctx, query, args, nil); err != nil {
			return fmt.Errorf("save quiz: %w", err)
		}
		return nil
	})
	if err != nil {
		return quiz.Quiz{}, err
	}
	return q, nil
}

func (r *quizRepo) Delete(ctx context.Context, id string) error {
	return r.store.withTx(ctx, func(tx dialect.Tx) error {
		query, args := r.store.builder().
			Delete(QuizzesTable.Name).
			Where(entsql.EQ("id", id)).
			Query()
		var res sql.Result
		if err := tx.Exec(ctx, query, args, &res); err != nil {
			return fmt.Errorf("delete quiz: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("delete quiz: %w", err)
		}
		if n == 0 {
			return fmt.Errorf("delete quiz %q: %w", id, ErrQuizNotFound)
		}

		query, args = r.store.builder().
			Delete(ResponsesTable.Name).
			Where(entsql.EQ("quiz_id", id)).
			Query()
		if err := tx.Exec(ctx, query, args, nil); err != nil {
			return fmt.Errorf("delete responses: %w", err)
		}
		return nil
	})
}

func (r *quizRepo) List(ctx context.Context) ([]quiz.Quiz, error) {
	query, args := r.store.builder().
		Select(quizColumns...).
		From(entsql.Table(QuizzesTable.Name)).
		OrderBy(entsql.Desc("created_at"), "id").
		Query()

	var rows entsql.Rows
	if err := r.store.drv.Query(ctx, query, args, &rows); err != nil {
		return nil, fmt.Errorf("list quizzes: %w", err)
	}
	defer rows.Close()

	quizzes := []quiz.Quiz{}
	for rows.Next() {
		q, err := scanQuiz(&rows)
		if err != nil {
			return nil, err
		}
		quizzes = append(quizzes, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list quizzes: %w", err)
	}
	return quizzes, nil
}

// loadQuiz reads one quiz through conn, which is either the driver or a
// transaction.
func loadQuiz(ctx context.Context, conn dialect.ExecQuerier, b *entsql.DialectBuilder, id string) (quiz.Quiz, error) {
	query, args := b.
		Select(quizColumns...).
		From(entsql.Table(QuizzesTable.Name)).
		Where(entsql.EQ("id", id)).
		Query()

	var rows entsql.Rows
	if err := conn.Query(ctx, query, args, &rows); err != nil {
		return quiz.Quiz{}, fmt.Errorf("load quiz: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return quiz.Quiz{}, fmt.Errorf("load quiz: %w", err)
		}
		return quiz.Quiz{}, fmt.Errorf("load quiz %q: %w", id, ErrQuizNotFound)
	}
	return scanQuiz(&rows)
}

func scanQuiz(rows *entsql.Rows) (quiz.Quiz, error) {
	var (
		q                   quiz.Quiz
		questions, settings []byte
	)
	if err := rows.Scan(&q.ID, &q.Title, &q.Description, &questions, &settings, &q.CreatedAt, &q.UpdatedAt); err != nil {
		return quiz.Quiz{}, fmt.Errorf("scan quiz: %w", err)
	}
	if err := json.Unmarshal(questions, &q.Questions); err != nil {
		return quiz.Quiz{}, fmt.Errorf("decode questions of quiz %q: %w", q.ID, err)
	}
	if q.Questions == nil {
		q.Questions = []quiz.Question{}
	}
	if err := json.Unmarshal(settings, &q.Settings); err != nil {
		return quiz.Quiz{}, fmt.Errorf("decode settings of quiz %q: %w", q.ID, err)
	}
	return q, nil
}

func encodeQuiz(q quiz.Quiz) (questions, settings string, err error) {
	qs := q.Questions
	if qs == nil {
		qs = []quiz.Question{}
	}
	qb, err := json.Marshal(qs)
	if err != nil {
		return "", "", fmt.Errorf("encode questions: %w", err)
	}
	sb, err := json.Marshal(q.Settings)
	if err != nil {
		return "", "", fmt.Errorf("encode settings: %w", err)
	}
	return string(qb), string(sb), nil
}

// withTx runs fn in a transaction, committing when it returns nil.
func (s *Store) withTx(ctx context.Context, fn func(tx dialect.Tx) error) error {
	tx, err := s.drv.Tx(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		if rerr := tx.Rollback(); rerr != nil {
			return fmt.Errorf("%w (rollback: %v)", err, rerr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
