package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"example.com/activityfilter/internal/config"
	"example.com/activityfilter/internal/domain"
	"example.com/activityfilter/internal/observability"
	"example.com/activityfilter/internal/pipeline"
	"example.com/activityfilter/internal/publish"
)

func main() {
	cmd := newRootCmd(os.Stdout, os.Stderr)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	cfg := config.Load()
	var verbose bool

	cmd := &cobra.Command{
		Use:           "runfilter [input.csv]",
		Short:         "Keep only the Running rows of a wearable sensor CSV",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				cfg.InputPath = args[0]
			}
			if verbose {
				cfg.LogLevel = "debug"
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return run(ctx, cfg, stdout, newLogger(stderr, cfg.LogLevel))
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	bindFlags(cmd.Flags(), &cfg)
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	return cmd
}

func bindFlags(fs *pflag.FlagSet, cfg *config.Config) {
	fs.StringVarP(&cfg.InputPath, "input", "i", cfg.InputPath, "Wearable sensor CSV to read")
	fs.StringVarP(&cfg.OutputPath, "output", "o", cfg.OutputPath, "Path the running rows are written to")
	fs.StringVar(&cfg.MetricsFile, "metrics-file", cfg.MetricsFile, "Write Prometheus textfile metrics to this path")
	fs.StringSliceVar(&cfg.KafkaBrokers, "kafka-brokers", cfg.KafkaBrokers, "Kafka brokers for publishing retained rows")
	fs.StringVar(&cfg.KafkaTopic, "kafka-topic", cfg.KafkaTopic, "Kafka topic for retained rows")
}

func newLogger(w io.Writer, level string) *slog.Logger {
	lvl := slog.LevelInfo
	if level == "debug" {
		lvl = slog.LevelDebug
	}
	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      lvl,
		TimeFormat: time.Kitchen,
	}))
}

func run(ctx context.Context, cfg config.Config, stdout io.Writer, log *slog.Logger) error {
	opts := []pipeline.Option{
		pipeline.WithLogger(log),
		pipeline.WithStdout(stdout),
	}
	if cfg.PublishEnabled() {
		producer := publish.NewKafkaProducer(cfg.KafkaBrokers)
		defer func() {
			if err := producer.Close(); err != nil {
				log.Warn("Failed to close kafka producer", "error", err)
			}
		}()
		opts = append(opts, pipeline.WithPublisher(publish.NewPublisher(producer, cfg.KafkaTopic, publish.WithSource(cfg.InputPath))))
	}

	res, err := pipeline.New(opts...).Run(ctx, cfg.InputPath, cfg.OutputPath)

	if cfg.MetricsFile != "" {
		if mErr := observability.WriteTextfile(cfg.MetricsFile); mErr != nil {
			log.Warn("Failed to write metrics file", "path", cfg.MetricsFile, "error", mErr)
		}
	}

	if err != nil {
		log.Error("Filter run failed", "run_id", res.RunID, "kind", domain.Kind(err), "error", err)
		return err
	}
	log.Debug("Filter run complete",
		"run_id", res.RunID,
		"rows", res.RowsRead,
		"retained", res.RowsRetained,
		"published", res.Published,
		"average_risk", int(res.Risk.AverageLevel),
		"decision", res.Risk.MostFrequentDecision,
		"duration", res.Duration,
	)
	return nil
}
