package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/legislative-tracker/internal/aggregation"
	"github.com/jonathan/legislative-tracker/internal/artifacts"
	"github.com/jonathan/legislative-tracker/internal/observability"
	"github.com/jonathan/legislative-tracker/internal/parsing"
	"github.com/jonathan/legislative-tracker/internal/publishing"
	"github.com/jonathan/legislative-tracker/internal/types"
)

var exploreCmd = &cobra.Command{
	Use:   "explore",
	Short: "Describe a votes XML document or a record JSON file",
	Long: `Prints the structure of a raw votes XML document (root, namespace, first entry) or of a
record JSON file, followed by a record preview, yearly statistics and a per-field summary.
Useful when the upstream format changes.`,
	RunE: runExplore,
}

var (
	exploreInput     string
	exploreDateField string
)

func init() {
	exploreCmd.Flags().StringVarP(&exploreInput, "in", "i", "", "Path to a .xml document or a .json record file (required)")
	exploreCmd.Flags().StringVar(&exploreDateField, "date-field", "", "Vote date field (detected when empty)")

	if err := exploreCmd.MarkFlagRequired("in"); err != nil {
		panic(fmt.Sprintf("failed to mark in flag as required: %v", err))
	}

	rootCmd.AddCommand(exploreCmd)
}

func runExplore(_ *cobra.Command, _ []string) error {
	logger := observability.NewLogger(os.Stderr, false)
	return executeExplore(exploreInput, exploreDateField, logger, os.Stdout)
}

// executeExplore prints everything known about the file at in.
func executeExplore(in, dateField string, logger *slog.Logger, w io.Writer) error {
	printer := observability.NewPrinter(w)
	store := artifacts.NewFileStore("")

	var records []types.Record
	if strings.EqualFold(filepath.Ext(in), ".xml") {
		raw, err := store.ReadText(in)
		if err != nil {
			return err
		}
		outline, err := parsing.Inspect(raw)
		if err != nil {
			return fmt.Errorf("failed to inspect %s: %w", in, err)
		}
		printer.PrintOutline(outline)
		records = parsing.NewNormalizer(logger).Normalize(raw)
	} else {
		var err error
		records, err = store.LoadRecords(in)
		if err != nil {
			return err
		}
	}

	if len(records) == 0 {
		_, _ = fmt.Fprintln(w, "No votes found")
		return nil
	}

	printer.PrintRecordPreview(records)

	opts := aggregation.DefaultOptions()
	opts.DateField = dateField
	result := aggregation.Aggregate(records, opts)
	pub := publishing.Format(result, records, time.Now())
	printer.PrintStatistics(pub.Statistics)
	printer.PrintFieldSummary(aggregation.SummarizeFields(records))
	return nil
}
