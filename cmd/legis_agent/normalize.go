package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/legislative-tracker/internal/artifacts"
	"github.com/jonathan/legislative-tracker/internal/observability"
	"github.com/jonathan/legislative-tracker/internal/parsing"
)

var normalizeCmd = &cobra.Command{
	Use:   "normalize",
	Short: "Normalize a saved votes XML document into JSON records",
	Long:  "Reads a raw retornarVotacionesXAnno response and writes the normalized vote records as a JSON array.",
	RunE:  runNormalize,
}

var (
	normalizeInput   string
	normalizeOutput  string
	normalizeVerbose bool
)

func init() {
	normalizeCmd.Flags().StringVarP(&normalizeInput, "in", "i", "", "Path to the votes XML file (required)")
	normalizeCmd.Flags().StringVarP(&normalizeOutput, "out", "o", "", "Path to output JSON file (required)")
	normalizeCmd.Flags().BoolVarP(&normalizeVerbose, "verbose", "v", false, "Print detailed debug information")

	if err := normalizeCmd.MarkFlagRequired("in"); err != nil {
		panic(fmt.Sprintf("failed to mark in flag as required: %v", err))
	}
	if err := normalizeCmd.MarkFlagRequired("out"); err != nil {
		panic(fmt.Sprintf("failed to mark out flag as required: %v", err))
	}

	rootCmd.AddCommand(normalizeCmd)
}

func runNormalize(_ *cobra.Command, _ []string) error {
	logger := observability.NewLogger(os.Stderr, normalizeVerbose)
	return executeNormalize(normalizeInput, normalizeOutput, normalizeVerbose, logger, os.Stdout)
}

// executeNormalize converts the XML document at in to a JSON array at out.
func executeNormalize(in, out string, verbose bool, logger *slog.Logger, w io.Writer) error {
	store := artifacts.NewFileStore("")
	raw, err := store.ReadText(in)
	if err != nil {
		return err
	}

	records := parsing.NewNormalizer(logger).Normalize(raw)
	if len(records) == 0 {
		return fmt.Errorf("no votes found in %s", in)
	}

	if err := store.SaveJSON(records, out); err != nil {
		return err
	}

	if verbose {
		observability.NewPrinter(w).PrintRecordPreview(records)
	}
	_, _ = fmt.Fprintf(w, "Normalized %d votes\n", len(records))
	_, _ = fmt.Fprintf(w, "Output: %s\n", out)
	return nil
}
