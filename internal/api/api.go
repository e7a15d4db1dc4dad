// Package api serves the quiz editor and respondent sessions over HTTP.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/abhisek/quizflow/internal/builder"
	"github.com/abhisek/quizflow/internal/flow"
	"github.com/abhisek/quizflow/internal/quiz"
	"github.com/abhisek/quizflow/internal/store"
)

// Config wires the API to its collaborators.
type Config struct {
	Quizzes     store.QuizRepo
	Responses   store.ResponseRepo
	Resolver    flow.Resolver
	Validate    []quiz.ValidateOption // applied to uploaded documents
	SessionTTL  time.Duration
	CORSOrigins []string
	Logger      *zap.Logger
}

// API holds the HTTP handlers' shared state.
type API struct {
	quizzes   store.QuizRepo
	responses store.ResponseRepo
	editor    *builder.Service
	sessions  *Registry
	resolver  flow.Resolver
	validate  []quiz.ValidateOption
	origins   []string
	log       *zap.Logger
}

// New creates an API from cfg.
func New(cfg Config) *API {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	origins := cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return &API{
		quizzes:   cfg.Quizzes,
		responses: cfg.Responses,
		editor:    builder.NewService(cfg.Quizzes),
		sessions:  NewRegistry(cfg.SessionTTL),
		resolver:  cfg.Resolver,
		validate:  cfg.Validate,
		origins:   origins,
		log:       log,
	}
}

// Sessions returns the live session registry.
func (a *API) Sessions() *Registry { return a.sessions }

// Handler returns the router with middleware applied.
func (a *API) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, ZapLogger(a.log), middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: a.origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
		ExposedHeaders: []string{"Content-Length"},
		MaxAge:         300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })

	r.Route("/api", func(r chi.Router) {
		r.Route("/quizzes", func(r chi.Router) {
			r.Get("/", a.ListQuizzesHandler())
			r.Post("/", a.CreateQuizHandler())
			r.Route("/{quizID}", func(r chi.Router) {
				r.Get("/", a.GetQuizHandler())
				r.Put("/", a.UpdateQuizHandler())
				r.Delete("/", a.DeleteQuizHandler())
				r.Get("/graph", a.GraphHandler())
				r.Get("/responses", a.ListResponsesHandler())
				r.Post("/sessions", a.StartSessionHandler())
				r.Post("/questions", a.AddQuestionHandler())
				r.Route("/questions/{questionID}", func(r chi.Router) {
					r.Put("/", a.UpdateQuestionHandler())
					r.Delete("/", a.DeleteQuestionHandler())
					r.Put("/branching", a.SetBranchingHandler())
				})
			})
		})
		r.Route("/sessions/{sessionID}", func(r chi.Router) {
			r.Get("/", a.GetSessionHandler())
			r.Post("/answers", a.SubmitAnswerHandler())
			r.Post("/back", a.GoBackHandler())
		})
	})
	return r
}

// Serve runs the HTTP server on addr until ctx is cancelled, evicting idle
// sessions in the background.
func (a *API) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           a.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go a.sessions.Janitor(ctx, time.Minute)

	errCh := make(chan error, 1)
	go func() {
		a.log.Info("http server listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		a.log.Info("http server shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}
