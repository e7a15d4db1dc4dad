package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/quizflow/internal/api"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the quiz builder and respondent API over HTTP",
	Args:  cobra.NoArgs,
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		addr := a.cfg.HTTP.Addr
		if cmd.Flags().Changed("addr") {
			addr, _ = cmd.Flags().GetString("addr")
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		srv := api.New(api.Config{
			Quizzes:     a.quizzes,
			Responses:   a.responses,
			Resolver:    a.cfg.Resolver(),
			Validate:    a.cfg.ValidateOptions(),
			SessionTTL:  a.cfg.HTTP.SessionTTL,
			CORSOrigins: a.cfg.HTTP.CORSOrigins,
			Logger:      a.log,
		})
		a.log.Info("starting quizflow",
			zap.String("db_driver", a.cfg.DB.Driver),
			zap.String("multi_select_policy", a.cfg.Flow.MultiSelectPolicy),
			zap.String("cycle_policy", a.cfg.Flow.CyclePolicy))

		err := srv.Serve(ctx, addr)
		if errors.Is(err, http.ErrServerClosed) || errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	}),
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides QUIZFLOW_HTTP_ADDR)")
}
