package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/lehigh-university-libraries/htrbench/internal/eval/results"
	"github.com/lehigh-university-libraries/htrbench/internal/handlers"
	"github.com/lehigh-university-libraries/htrbench/internal/storage"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	var (
		port        string
		resultPaths []string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the report viewer",
		Long: `Starts the htrbench report viewer on the specified port.

Every --results directory (or report.json file) written by "eval run" is
loaded into memory. The most recently loaded report is shown on the dashboard;
others are reachable with ?report=<id>. Reports can also be posted to
/api/reports while the server runs.`,
		Example: `  # View a single run
  htrbench serve --results eval_results/a1b2c3d4

  # Load several runs on a custom port
  htrbench serve --results eval_results/a1b2c3d4 --results eval_results/e5f6a7b8 --port 3000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			handler, err := newViewer(resultPaths)
			if err != nil {
				return err
			}

			mux := http.NewServeMux()
			handler.Routes(mux)
			mux.Handle("GET /metrics", promhttp.Handler())
			mux.HandleFunc("GET /healthcheck", func(w http.ResponseWriter, r *http.Request) {
				if _, err := w.Write([]byte("OK")); err != nil {
					slog.Error("Unable to write healthcheck", "err", err)
				}
			})

			addr := ":" + port
			server := &http.Server{
				Addr:    addr,
				Handler: mux,
			}

			serverErr := make(chan error, 1)
			go func() {
				slog.Info("htrbench viewer available", "addr", addr, "url", "http://localhost"+addr)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serverErr <- err
				}
			}()

			select {
			case <-cmd.Context().Done():
				slog.Info("Shutting down server...")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := server.Shutdown(shutdownCtx); err != nil {
					slog.Error("Server shutdown failed", "err", err)
					return err
				}
				slog.Info("Server stopped")
				return nil
			case err := <-serverErr:
				return err
			}
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "8888", "Port to listen on")
	cmd.Flags().StringArrayVarP(&resultPaths, "results", "r", nil, "Results directory or report.json to load (repeatable)")

	return cmd
}

// newViewer builds the handler and loads every results path into it
func newViewer(paths []string) (*handlers.Handler, error) {
	handler := handlers.New(storage.New())
	for _, path := range paths {
		agg, err := results.LoadResults(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load results %s: %w", path, err)
		}
		report := handler.AddReport(agg)
		slog.Info("Loaded report", "id", report.ID, "pages", len(report.Pages), "path", path)
	}
	return handler, nil
}
