package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/proposal-cli/internal/audit"
	"github.com/sells-group/proposal-cli/internal/pipeline"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the webhook server for proposal requests",
	Long:  "Accepts audit extracts over HTTP and runs proposal generation asynchronously. The narrative provider sits behind a circuit breaker so one outage cannot stall every request.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initPipeline(ctx, pipelineOptions{mode: "serve", guarded: true})
		if err != nil {
			return err
		}
		defer env.Close()

		mux := buildMux(ctx, env.Pipeline)

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: mux,
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			_ = srv.Shutdown(context.Background())
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

// buildMux registers the health and webhook routes. The pipeline may be
// nil in tests; the async runner checks before running.
func buildMux(ctx context.Context, p *pipeline.Pipeline) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})

	mux.HandleFunc("POST /webhook/propose", func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 1<<20))
		if err != nil {
			http.Error(w, `{"error":"request body too large"}`, http.StatusRequestEntityTooLarge)
			return
		}

		extract, err := audit.Parse(body)
		if err != nil {
			http.Error(w, `{"error":"invalid audit extract"}`, http.StatusBadRequest)
			return
		}

		// Run generation asynchronously; progress lands in the run ledger.
		go func() {
			if p == nil {
				return
			}
			result, runErr := p.Run(ctx, extract, pipeline.Options{})
			if runErr != nil {
				zap.L().Error("webhook proposal failed",
					zap.String("client", extract.Client.Name),
					zap.Error(runErr),
				)
				return
			}
			zap.L().Info("webhook proposal complete",
				zap.String("client", extract.Client.Name),
				zap.String("run_id", result.RunID),
				zap.String("status", string(result.Status)),
			)
		}()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"status": "accepted",
			"client": extract.Client.Name,
		})
	})

	return mux
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
