package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/pulse-dev/pulse/internal/demo"
	"github.com/pulse-dev/pulse/pkg/observe"
	"github.com/pulse-dev/pulse/pkg/pulse"
)

func newServeCmd() *cobra.Command {
	var (
		addrFlag    string
		metricsFlag bool
		maxRunsFlag int
		windowFlag  time.Duration
		debugTxFlag bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the live reactive graph demo over HTTP and WebSocket",
		RunE: func(cmd *cobra.Command, args []string) error {
			if metricsFlag {
				observe.EnableMetrics()
			}
			if debugTxFlag {
				pulse.DebugMode = true
			}
			if maxRunsFlag > 0 {
				pulse.SetStormBudget(pulse.NewStormBudget(pulse.StormBudgetConfig{
					MaxEffectRunsPerWindow: maxRunsFlag,
					WindowDuration:         windowFlag,
				}))
			}

			srv := demo.NewServer()
			defer srv.Close()

			httpServer := &http.Server{
				Addr:    addrFlag,
				Handler: srv.Handler(),
			}

			errCh := make(chan error, 1)
			go func() {
				log.Printf("demo server listening on http://%s", addrFlag)
				errCh <- httpServer.ListenAndServe()
			}()

			stop := make(chan os.Signal, 1)
			signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-stop:
				log.Println("shutting down")
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				return httpServer.Shutdown(ctx)
			}
		},
	}

	cmd.Flags().StringVar(&addrFlag, "addr", "127.0.0.1:8766", "listen address")
	cmd.Flags().BoolVar(&metricsFlag, "metrics", true, "export Prometheus metrics at /metrics")
	cmd.Flags().IntVar(&maxRunsFlag, "max-effect-runs", 0, "storm budget: max effect runs per window (0 disables)")
	cmd.Flags().DurationVar(&windowFlag, "budget-window", time.Second, "storm budget window")
	cmd.Flags().BoolVar(&debugTxFlag, "debug-tx", false, "log named transaction boundaries")

	return cmd
}
