package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/stratohq/strato/pkg/config"
	"github.com/stratohq/strato/pkg/log"
	"github.com/stratohq/strato/pkg/metrics"
	"github.com/stratohq/strato/pkg/runtime"
	"github.com/stratohq/strato/pkg/scheduler"
	"github.com/stratohq/strato/pkg/state"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the scheduler daemon",
	Long: `Run the Strato scheduler daemon.

The daemon connects to containerd, restores any checkpointed cluster state,
starts the scheduling and monitoring loops, and serves Prometheus metrics.

Examples:
  # Run with defaults against the local containerd socket
  strato serve

  # Run with a config file
  strato serve --config /etc/strato/config.yaml

  # Run with an in-memory runtime for local development
  strato serve --dev`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringP("config", "c", "", "Path to YAML config file")
	serveCmd.Flags().Bool("dev", false, "Use the in-memory fake runtime instead of containerd")
}

func runServe(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	dev, _ := cmd.Flags().GetBool("dev")

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	log.Init(log.Config{
		Level:      log.Level(cfg.Logging.Level),
		JSONOutput: !cfg.Logging.Pretty,
	})
	logger := log.WithComponent("main")

	// Runtime
	var rt runtime.Runtime
	if dev || cfg.Runtime.Dev {
		logger.Info().Msg("using in-memory runtime")
		rt = runtime.NewFake()
	} else {
		ctrd, err := runtime.NewContainerdRuntime(cfg.Runtime.ContainerdAddress)
		if err != nil {
			return fmt.Errorf("connect containerd: %w", err)
		}
		defer ctrd.Close()
		rt = ctrd
	}

	sched := scheduler.NewScheduler(cfg.ToScheduler(), rt)
	for _, c := range cfg.Policies.Constraints() {
		sched.Policies().Register(c)
	}

	// State checkpointing
	if cfg.State.Dir != "" {
		sm, err := state.NewBoltManager(cfg.State.Dir)
		if err != nil {
			return fmt.Errorf("open state store: %w", err)
		}
		defer sm.Close()
		if err := restoreNodes(sched, sm); err != nil {
			return err
		}
		sched.SetStateManager(sm)
	}

	sched.Start()
	defer sched.Stop()
	logger.Info().Msg("scheduler started")

	// Metrics endpoint
	collector := metrics.NewCollector(sched, cfg.Metrics.Interval)
	collector.Start()
	defer collector.Stop()

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	srv := &http.Server{Addr: cfg.Metrics.ListenAddr, Handler: mux}
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()
	logger.Info().Str("addr", cfg.Metrics.ListenAddr).Msg("metrics endpoint listening")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info().Str("signal", sig.String()).Msg("shutting down")
	case err := <-errCh:
		logger.Error().Err(err).Msg("metrics server failed")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)

	return nil
}

// restoreNodes re-admits checkpointed nodes so the cluster survives a daemon
// restart. Workload records are not re-admitted: their containers belong to
// the previous containerd session and are rebuilt through rescheduling.
func restoreNodes(sched *scheduler.Scheduler, sm state.Manager) error {
	nodes, err := sm.LoadNodes()
	if err != nil {
		return fmt.Errorf("load checkpointed nodes: %w", err)
	}
	for _, node := range nodes {
		if err := sched.AddNode(node); err != nil {
			return fmt.Errorf("restore node %s: %w", node.ID, err)
		}
	}
	return nil
}
