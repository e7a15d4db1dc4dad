package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/quizflow/internal/builder"
	"github.com/abhisek/quizflow/internal/config"
	"github.com/abhisek/quizflow/internal/document"
	"github.com/abhisek/quizflow/internal/logger"
	"github.com/abhisek/quizflow/internal/quiz"
	"github.com/abhisek/quizflow/internal/store"
)

// app bundles the dependencies a command needs.
type app struct {
	cfg       *config.Config
	log       *zap.Logger
	store     *store.Store
	quizzes   store.QuizRepo
	responses store.ResponseRepo
	editor    *builder.Service
}

// openApp loads configuration, builds the logger and opens the store. The
// --db flag takes priority over QUIZFLOW_DB_DSN and forces sqlite.
func openApp(cmd *cobra.Command) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		cfg.DB.Driver = store.DriverSQLite
		cfg.DB.DSN = p
	}

	logCfg := logger.Config{
		Level:      cfg.Log.Level,
		Encoding:   cfg.Log.Encoding,
		OutputPath: cfg.Log.OutputPath,
	}
	// Interactive commands write human-readable logs unless told otherwise.
	if _, set := os.LookupEnv("QUIZFLOW_LOG_ENCODING"); !set && cmd.Name() != "serve" {
		logCfg.Encoding = "console"
	}
	log, err := logger.New(logCfg)
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}

	st, err := cfg.OpenStore()
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	log.Debug("store opened", zap.String("driver", cfg.DB.Driver))

	quizzes := st.QuizRepo(cfg.ValidateOptions()...)
	return &app{
		cfg:       cfg,
		log:       log,
		store:     st,
		quizzes:   quizzes,
		responses: st.ResponseRepo(),
		editor:    builder.NewService(quizzes),
	}, nil
}

func (a *app) Close() error {
	_ = a.log.Sync()
	return a.store.Close()
}

// loadQuiz resolves ref as a document path when such a file exists, and as
// a stored quiz ID otherwise. stored reports which one it was.
func (a *app) loadQuiz(ctx context.Context, ref string) (q quiz.Quiz, stored bool, err error) {
	if fi, statErr := os.Stat(ref); statErr == nil && !fi.IsDir() {
		q, err = document.Load(ref, a.cfg.ValidateOptions()...)
		return q, false, err
	}
	q, err = a.quizzes.Load(ctx, ref)
	if errors.Is(err, store.ErrQuizNotFound) {
		return quiz.Quiz{}, false, fmt.Errorf("%q is neither a quiz ID nor a document file", ref)
	}
	return q, err == nil, err
}

// withApp wraps a command body with openApp and Close.
func withApp(fn func(cmd *cobra.Command, args []string, a *app) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()
		return fn(cmd, args, a)
	}
}
