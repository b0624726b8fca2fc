package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"github.com/spf13/cobra"

	"github.com/jonathan/legislative-tracker/internal/artifacts"
	"github.com/jonathan/legislative-tracker/internal/config"
	"github.com/jonathan/legislative-tracker/internal/observability"
	"github.com/jonathan/legislative-tracker/internal/pipeline"
	"github.com/jonathan/legislative-tracker/internal/types"
)

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Rebuild the published files from saved yearly records",
	Long: `Loads previously saved yearly records (votaciones_<year>.json in the data directory,
or the files given with --in) and publishes them without contacting the web service.`,
	RunE: runPublish,
}

var (
	publishFlags  pipelineFlags
	publishInputs []string
)

func init() {
	publishFlags.register(publishCmd)
	publishCmd.Flags().StringSliceVarP(&publishInputs, "in", "i", nil, "Record JSON files to publish, in order (default: <data-dir>/votaciones_*.json)")

	rootCmd.AddCommand(publishCmd)
}

func runPublish(cmd *cobra.Command, _ []string) error {
	cfg, err := publishFlags.resolve(cmd)
	if err != nil {
		return err
	}
	logger := observability.NewLogger(os.Stderr, cfg.Verbose)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return executePublish(ctx, cfg, publishInputs, logger, os.Stdout)
}

// executePublish loads inputs (or the yearly files of cfg.DataDir) and
// publishes their concatenation.
func executePublish(ctx context.Context, cfg config.Config, inputs []string, logger *slog.Logger, out io.Writer) error {
	if len(inputs) == 0 {
		var err error
		inputs, err = yearlyFiles(cfg.DataDir)
		if err != nil {
			return err
		}
	}
	if len(inputs) == 0 {
		return fmt.Errorf("no yearly record files found in %s", cfg.DataDir)
	}

	store := artifacts.NewFileStore("")
	var records []types.Record
	for _, path := range inputs {
		loaded, err := store.LoadRecords(path)
		if err != nil {
			return err
		}
		logger.Info("loaded records", "path", path, "records", len(loaded))
		records = append(records, loaded...)
	}

	p := pipeline.New(nil, store, pipelineOptions(cfg), logger)
	published, err := p.Publish(ctx, records)
	if err != nil {
		return err
	}
	reportPublished(out, published, cfg.Verbose)
	return nil
}

// yearlyFiles lists dir/votaciones_<year>.json in ascending year order.
func yearlyFiles(dir string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "votaciones_*.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to list yearly files: %w", err)
	}
	slices.Sort(matches)
	return matches, nil
}
