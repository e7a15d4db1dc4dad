package builder

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/quizflow/internal/quiz"
	"github.com/abhisek/quizflow/internal/store"
)

func newTestService(t *testing.T) (*Service, store.QuizRepo) {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "builder.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	repo := st.QuizRepo()
	return NewService(repo), repo
}

// seeded creates a quiz with three text-list questions and returns it.
func seeded(t *testing.T, svc *Service) quiz.Quiz {
	t.Helper()
	ctx := context.Background()
	q, err := svc.NewQuiz(ctx)
	require.NoError(t, err)
	for _, title := range []string{"First", "Second", "Third"} {
		q, _, err = svc.AddQuestion(ctx, q.ID, quiz.TypeTextList, title)
		require.NoError(t, err)
	}
	return q
}

func TestNewQuiz(t *testing.T) {
	svc, repo := newTestService(t)
	q, err := svc.NewQuiz(context.Background())
	require.NoError(t, err)

	stored, err := repo.Load(context.Background(), q.ID)
	require.NoError(t, err)
	assert.Equal(t, quiz.DefaultTitle, stored.Title)
	assert.Empty(t, stored.Questions)
	assert.Equal(t, quiz.DefaultSettings(), stored.Settings)
}

func TestRename(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	q, err := svc.NewQuiz(ctx)
	require.NoError(t, err)

	q, err = svc.Rename(ctx, q.ID, "  Lead magnet ", "Find your plan")
	require.NoError(t, err)
	assert.Equal(t, "Lead magnet", q.Title)
	assert.Equal(t, "Find your plan", q.Description)

	q, err = svc.Rename(ctx, q.ID, "", "")
	require.NoError(t, err)
	assert.Equal(t, quiz.DefaultTitle, q.Title)
}

func TestRename_NotFound(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Rename(context.Background(), "missing", "x", "")
	assert.ErrorIs(t, err, store.ErrQuizNotFound)
}

func TestUpdateSettings(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	q, err := svc.NewQuiz(ctx)
	require.NoError(t, err)

	q, err = svc.UpdateSettings(ctx, q.ID, quiz.Settings{ProgressType: quiz.ProgressSteps, ProgressColor: "accent"})
	require.NoError(t, err)
	assert.Equal(t, quiz.ProgressSteps, q.Settings.ProgressType)
	assert.False(t, q.Settings.MobileOnly)

	_, err = svc.UpdateSettings(ctx, q.ID, quiz.Settings{ProgressType: "spinner"})
	assert.Error(t, err)
}

func TestAddQuestion_SeedsOptions(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	q, err := svc.NewQuiz(ctx)
	require.NoError(t, err)

	q, added, err := svc.AddQuestion(ctx, q.ID, quiz.TypeImageList, "")
	require.NoError(t, err)
	assert.Equal(t, DefaultQuestionTitle, added.Title)
	require.Len(t, added.Options, 2)
	assert.Equal(t, "Option 1", added.Options[0].Text)
	assert.Equal(t, "option2", added.Options[1].Value)

	q, field, err := svc.AddQuestion(ctx, q.ID, quiz.TypeTextField, "Comments")
	require.NoError(t, err)
	assert.Empty(t, field.Options)
	assert.Len(t, q.Questions, 2)
	assert.Equal(t, field.ID, q.Questions[1].ID)
}

func TestAddQuestion_UnknownType(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	q, err := svc.NewQuiz(ctx)
	require.NoError(t, err)

	_, _, err = svc.AddQuestion(ctx, q.ID, "slider", "x")
	assert.ErrorIs(t, err, quiz.ErrUnknownQuestionType)
}

func TestUpdateQuestion(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	q := seeded(t, svc)
	first := q.Questions[0]

	title := "Renamed"
	required := true
	q, err := svc.UpdateQuestion(ctx, q.ID, first.ID, QuestionPatch{Title: &title, Required: &required})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", q.Questions[0].Title)
	assert.True(t, q.Questions[0].Required)
	assert.Equal(t, first.Options, q.Questions[0].Options)
}

func TestUpdateQuestion_RemovedOptionDropsRule(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	q := seeded(t, svc)
	first := q.Questions[0]
	keep, drop := first.Options[0], first.Options[1]

	q, err := svc.SetBranching(ctx, q.ID, first.ID, quiz.Branching{
		keep.ID: quiz.GoTo(q.Questions[2].ID),
		drop.ID: quiz.Complete(),
	})
	require.NoError(t, err)

	opts := []quiz.Option{keep, {Text: "Brand new"}}
	q, err = svc.UpdateQuestion(ctx, q.ID, first.ID, QuestionPatch{Options: &opts})
	require.NoError(t, err)

	updated := q.Questions[0]
	require.Len(t, updated.Options, 2)
	assert.NotEmpty(t, updated.Options[1].ID, "new options get an ID")
	assert.Equal(t, quiz.Branching{keep.ID: quiz.GoTo(q.Questions[2].ID)}, updated.Branching)
}

func TestUpdateQuestion_TypeWithoutOptionsClearsBranching(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	q := seeded(t, svc)
	first := q.Questions[0]

	q, err := svc.SetBranch(ctx, q.ID, first.ID, first.Options[0].ID, quiz.Complete())
	require.NoError(t, err)

	t2 := quiz.TypeTextField
	q, err = svc.UpdateQuestion(ctx, q.ID, first.ID, QuestionPatch{Type: &t2})
	require.NoError(t, err)
	assert.Empty(t, q.Questions[0].Options)
	assert.Nil(t, q.Questions[0].Branching)
}

func TestDeleteQuestion_ResetsRulesTargetingIt(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	q := seeded(t, svc)
	first, second, third := q.Questions[0], q.Questions[1], q.Questions[2]

	q, err := svc.SetBranching(ctx, q.ID, first.ID, quiz.Branching{
		first.Options[0].ID: quiz.GoTo(third.ID),
		first.Options[1].ID: quiz.GoTo(second.ID),
	})
	require.NoError(t, err)

	q, err = svc.DeleteQuestion(ctx, q.ID, third.ID)
	require.NoError(t, err)
	require.Len(t, q.Questions, 2)
	assert.Equal(t, quiz.Branching{first.Options[1].ID: quiz.GoTo(second.ID)}, q.Questions[0].Branching)

	stored, err := repo.Load(ctx, q.ID)
	require.NoError(t, err)
	require.NoError(t, quiz.ValidateQuiz(stored))
}

func TestDeleteQuestion_NotFound(t *testing.T) {
	svc, _ := newTestService(t)
	q := seeded(t, svc)
	_, err := svc.DeleteQuestion(context.Background(), q.ID, "ghost")
	assert.ErrorIs(t, err, quiz.ErrQuestionNotFound)
}

func TestMoveQuestion(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	q := seeded(t, svc)
	ids := []string{q.Questions[0].ID, q.Questions[1].ID, q.Questions[2].ID}

	q, err := svc.MoveQuestion(ctx, q.ID, ids[2], 0)
	require.NoError(t, err)
	assert.Equal(t, []string{ids[2], ids[0], ids[1]}, questionIDs(q))

	q, err = svc.MoveQuestion(ctx, q.ID, ids[2], 99)
	require.NoError(t, err)
	assert.Equal(t, []string{ids[0], ids[1], ids[2]}, questionIDs(q))
}

func TestSetBranching_DropsDefaultEntries(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	q := seeded(t, svc)
	first := q.Questions[0]

	q, err := svc.SetBranching(ctx, q.ID, first.ID, quiz.Branching{
		first.Options[0].ID: quiz.NextDefault(),
		first.Options[1].ID: quiz.NextDefault(),
	})
	require.NoError(t, err)
	assert.Nil(t, q.Questions[0].Branching)
}

func TestSetBranching_RejectsInvalidTargetAtomically(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	q := seeded(t, svc)
	first := q.Questions[0]

	_, err := svc.SetBranching(ctx, q.ID, first.ID, quiz.Branching{first.Options[0].ID: quiz.GoTo("ghost")})
	var bt *quiz.InvalidBranchTargetError
	require.True(t, errors.As(err, &bt), "got %v", err)

	stored, err := repo.Load(ctx, q.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.Questions[0].Branching)
}

func TestSetBranching_RejectsSelfLoop(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	q := seeded(t, svc)
	first := q.Questions[0]

	_, err := svc.SetBranch(ctx, q.ID, first.ID, first.Options[0].ID, quiz.GoTo(first.ID))
	var bt *quiz.InvalidBranchTargetError
	require.True(t, errors.As(err, &bt), "got %v", err)
	assert.Equal(t, quiz.ReasonSelfLoop, bt.Reason)
}

func TestSetBranch_UnknownOption(t *testing.T) {
	svc, _ := newTestService(t)
	q := seeded(t, svc)
	_, err := svc.SetBranch(context.Background(), q.ID, q.Questions[0].ID, "nope", quiz.Complete())
	assert.ErrorIs(t, err, ErrUnknownOption)
}

func TestSetBranch_NotBranchable(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	q, err := svc.NewQuiz(ctx)
	require.NoError(t, err)
	q, field, err := svc.AddQuestion(ctx, q.ID, quiz.TypeTextField, "Tell us")
	require.NoError(t, err)

	_, err = svc.SetBranch(ctx, q.ID, field.ID, "x", quiz.Complete())
	assert.ErrorIs(t, err, ErrNotBranchable)
}

func TestSetBranch_ResetToDefault(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	q := seeded(t, svc)
	first := q.Questions[0]
	opt := first.Options[0].ID

	q, err := svc.SetBranch(ctx, q.ID, first.ID, opt, quiz.Complete())
	require.NoError(t, err)
	assert.True(t, q.Questions[0].Branching.Target(opt).IsComplete())

	q, err = svc.SetBranch(ctx, q.ID, first.ID, opt, quiz.NextDefault())
	require.NoError(t, err)
	assert.Nil(t, q.Questions[0].Branching)
}

func questionIDs(q quiz.Quiz) []string {
	ids := make([]string, len(q.Questions))
	for i, question := range q.Questions {
		ids[i] = question.ID
	}
	return ids
}
