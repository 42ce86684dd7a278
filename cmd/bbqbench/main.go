// Command bbqbench exercises a bbq.Queue under a set of concurrency
// scenarios: a single-goroutine smoke pass, and spsc/spmc/mpsc/mpmc/
// backpressure throughput runs with configurable producer/consumer
// counts and queue geometry.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/rishav/bbq/internal/bbqlog"
	"github.com/rishav/bbq/internal/metrics"
	"github.com/rishav/bbq/internal/report"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cfg := DefaultConfig()
	v := viper.New()
	v.SetEnvPrefix("bbqbench")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	root := &cobra.Command{
		Use:   "bbqbench",
		Short: "bbqbench drives concurrency scenarios against a bbq.Queue",
		Long:  "bbqbench drives concurrency scenarios against a bbq.Queue and reports throughput.",
	}

	root.PersistentFlags().IntVar(&cfg.BlockNum, "blocks", cfg.BlockNum, "number of blocks in the queue (power of two, >= 2)")
	root.PersistentFlags().IntVar(&cfg.SlotNum, "slots", cfg.SlotNum, "slots per block (power of two)")
	root.PersistentFlags().StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug, info, warn, or error")
	root.PersistentFlags().BoolVar(&cfg.Development, "log-dev", cfg.Development, "use human-readable console logging instead of JSON")
	root.PersistentFlags().StringVar(&cfg.MetricsAddr, "metrics-addr", cfg.MetricsAddr, "address to serve Prometheus metrics on")
	_ = v.BindPFlags(root.PersistentFlags())

	root.AddCommand(newSmokeCmd(&cfg, v))
	root.AddCommand(newRunCmd(&cfg, v))

	return root
}

func newSmokeCmd(cfg *Config, v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "smoke",
		Short: "run a single-goroutine push/pop sanity pass",
		RunE: func(cmd *cobra.Command, args []string) error {
			applyViper(cfg, v)
			cfg.Scenario = "smoke"
			_, err := execute(cmd.Context(), *cfg)
			return err
		},
	}
}

func newRunCmd(cfg *Config, v *viper.Viper) *cobra.Command {
	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a concurrency throughput scenario",
		RunE: func(cmd *cobra.Command, args []string) error {
			applyViper(cfg, v)
			_, err := execute(cmd.Context(), *cfg)
			return err
		},
	}

	runCmd.Flags().StringVar(&cfg.Scenario, "scenario", cfg.Scenario, "spsc, spmc, mpsc, mpmc, or backpressure")
	runCmd.Flags().IntVar(&cfg.Producers, "producers", cfg.Producers, "producer goroutines")
	runCmd.Flags().IntVar(&cfg.Consumers, "consumers", cfg.Consumers, "consumer goroutines")
	runCmd.Flags().DurationVar(&cfg.Duration, "duration", cfg.Duration, "how long to run the scenario")
	_ = v.BindPFlags(runCmd.Flags())

	return runCmd
}

// applyViper lets environment variables override whatever the flags left
// at their defaults, using viper's AutomaticEnv + BindPFlags convention.
func applyViper(cfg *Config, v *viper.Viper) {
	if v.IsSet("blocks") {
		cfg.BlockNum = v.GetInt("blocks")
	}
	if v.IsSet("slots") {
		cfg.SlotNum = v.GetInt("slots")
	}
	if v.IsSet("log-level") {
		cfg.LogLevel = v.GetString("log-level")
	}
}

func execute(ctx context.Context, cfg Config) (Result, error) {
	logger, err := bbqlog.New(bbqlog.Config{Level: cfg.LogLevel, Development: cfg.Development})
	if err != nil {
		return Result{}, fmt.Errorf("bbqbench: %w", err)
	}
	defer logger.Sync()

	rec := metrics.NewRecorder()
	metricsSrv := metrics.NewServer(cfg.MetricsAddr, rec)
	if err := metricsSrv.Start(); err != nil {
		return Result{}, fmt.Errorf("bbqbench: metrics server: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = metricsSrv.Stop(shutdownCtx)
	}()

	rep := report.NewReporter(logger, 4096, time.Second)
	rep.Start()
	defer rep.Shutdown()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			logger.Infow("received shutdown signal")
			cancel()
		case <-runCtx.Done():
		}
	}()

	result, err := RunScenario(runCtx, cfg, logger, rec, rep)
	if err != nil {
		return Result{}, err
	}

	logger.Infow("scenario complete",
		"scenario", result.Scenario,
		"pushed", result.Pushed,
		"popped", result.Popped,
		"elapsed", result.Elapsed,
	)
	return result, nil
}
