package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"github.com/Lllllllleong/lessonreview/internal/services"
)

func newServeCmd() *cobra.Command {
	var (
		addr    string
		local   bool
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the review endpoint over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := services.LoadLessonReviewConfig()
			if err != nil {
				return err
			}
			config.LocalOnly = local

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			f, err := services.NewLessonReviewWithConfig(ctx, *config)
			if err != nil {
				return err
			}
			defer f.Close()

			srv := &http.Server{
				Addr:              addr,
				Handler:           newRouter(f, timeout),
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				slog.Info("Listening.", "addr", addr)
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-ctx.Done():
			}

			slog.Info("Shutting down.")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().BoolVar(&local, "local", false, "keep runs in memory and use built-in prompts")
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Minute, "per-request timeout")
	return cmd
}

func newRouter(reviews http.Handler, timeout time.Duration) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(timeout))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Method(http.MethodPost, "/reviews", reviews)
	return r
}
