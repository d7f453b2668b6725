package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/quiverdb/quiver"
	"github.com/quiverdb/quiver/internal/debug"
)

var (
	flagConfig  string
	flagShards  int
	flagVerbose bool
	flagMetrics bool
)

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "quiver",
		Short:         "In-memory sharded property graph engine",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flagConfig, "config", "", "config file (default: ./quiver.yaml)")
	root.PersistentFlags().IntVar(&flagShards, "shards", 0, "shard count override")
	root.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "debug logging")
	root.PersistentFlags().BoolVar(&flagMetrics, "metrics", false, "print OpenTelemetry metrics on exit")

	root.AddCommand(newVersionCommand())
	root.AddCommand(newDemoCommand())
	root.AddCommand(newStatsCommand())
	return root
}

// loadConfig merges the config file with the command-line overrides.
func loadConfig() (*quiver.Config, error) {
	cfg, err := quiver.LoadConfig(flagConfig)
	if err != nil {
		return nil, err
	}
	if flagShards > 0 {
		cfg.Shards = flagShards
	}
	if flagVerbose {
		cfg.Verbose = true
	}
	if flagMetrics {
		cfg.Metrics = true
	}
	return cfg, nil
}

// setupMetrics installs a stdout metric exporter; the returned shutdown
// flushes the counters.
func setupMetrics(ctx context.Context) (func(), error) {
	exporter, err := stdoutmetric.New()
	if err != nil {
		return nil, fmt.Errorf("metric exporter: %w", err)
	}
	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter)),
	)
	otel.SetMeterProvider(provider)
	return func() {
		if err := provider.Shutdown(ctx); err != nil {
			debug.Logf("metric shutdown: %v", err)
		}
	}, nil
}
