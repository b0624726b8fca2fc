package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/legislative-tracker/internal/artifacts"
	"github.com/jonathan/legislative-tracker/internal/config"
	"github.com/jonathan/legislative-tracker/internal/fetch"
	"github.com/jonathan/legislative-tracker/internal/observability"
	"github.com/jonathan/legislative-tracker/internal/pipeline"
)

var runCommand = &cobra.Command{
	Use:   "run",
	Short: "Fetch, normalize and publish votes end-to-end",
	Long: `Fetches the votes of each requested year from the Chamber of Deputies web service,
pausing between requests, saves the normalized records per year and publishes
votaciones.json, estadisticas.json and README.md for the website.

Configuration can be loaded from a JSON file using --config. Command-line arguments override config file values.`,
	RunE: runPipelineCmd,
}

var runFlags pipelineFlags

func init() {
	runFlags.register(runCommand)
	rootCmd.AddCommand(runCommand)
}

func runPipelineCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := runFlags.resolve(cmd)
	if err != nil {
		return err
	}
	logger := observability.NewLogger(os.Stderr, cfg.Verbose)
	if runFlags.configPath != "" {
		logger.Debug("loaded config", "path", runFlags.configPath)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return executeRun(ctx, cfg, logger, os.Stdout)
}

// executeRun runs the full pipeline for cfg and reports to out.
func executeRun(ctx context.Context, cfg config.Config, logger *slog.Logger, out io.Writer) error {
	client := fetch.NewClient(cfg.BaseURL, &fetch.Options{
		Timeout:   time.Duration(cfg.Timeout),
		UserAgent: fetch.DefaultUserAgent,
	})
	fetcher := fetch.NewArchivingFetcher(client, &fetch.ArchivingFetcherConfig{
		Dir:    cfg.RawDir,
		Logger: logger,
	})

	var transport pipeline.Transport = fetcher
	if cfg.Offline || cfg.CacheMaxAge > 0 {
		transport = fetch.NewCachedFetcher(fetcher, &fetch.CachedFetcherConfig{
			Dir:     cfg.RawDir,
			MaxAge:  time.Duration(cfg.CacheMaxAge),
			Offline: cfg.Offline,
			Logger:  logger,
		})
	}

	opts := pipelineOptions(cfg)
	if cfg.Verbose {
		opts.OnProgress = func(e pipeline.ProgressEvent) {
			_, _ = fmt.Fprintf(out, "[%s] %s\n", e.Step, e.Message)
		}
	}
	p := pipeline.New(transport, artifacts.NewFileStore(""), opts, logger)

	summary, err := p.Run(ctx, cfg.Years)
	if err != nil {
		return err
	}

	for _, y := range summary.Years {
		if y.Error != "" {
			_, _ = fmt.Fprintf(out, "✗ %d: %s\n", y.Year, y.Error)
			continue
		}
		_, _ = fmt.Fprintf(out, "✓ %d: %d votes\n", y.Year, y.Records)
	}
	reportPublished(out, summary.Published, cfg.Verbose)
	return nil
}

// reportPublished lists the written files, or explains that nothing was.
func reportPublished(out io.Writer, published *pipeline.PublishResult, verbose bool) {
	if published == nil {
		_, _ = fmt.Fprintln(out, "No votes collected; published files left untouched")
		return
	}
	if verbose {
		observability.NewPrinter(out).PrintStatistics(published.Publication.Statistics)
	}
	for _, path := range published.Files {
		_, _ = fmt.Fprintf(out, "Generated: %s\n", path)
	}
}
