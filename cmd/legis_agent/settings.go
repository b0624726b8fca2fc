package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/legislative-tracker/internal/aggregation"
	"github.com/jonathan/legislative-tracker/internal/config"
	"github.com/jonathan/legislative-tracker/internal/pipeline"
)

// pipelineFlags are the flags shared by the commands that publish.
type pipelineFlags struct {
	configPath   string
	years        []int
	baseURL      string
	timeout      time.Duration
	delay        time.Duration
	cacheMaxAge  time.Duration
	offline      bool
	rawDir       string
	dataDir      string
	siteDir      string
	template     string
	maxPublished int
	dateField    string
	resultField  string
	verbose      bool
}

func (f *pipelineFlags) register(cmd *cobra.Command) {
	// Config file flag (processed first)
	cmd.Flags().StringVar(&f.configPath, "config", "", "Path to config.json file (values can be overridden by other flags)")

	cmd.Flags().IntSliceVarP(&f.years, "years", "y", nil, "Years to fetch, in order (default: current year)")
	cmd.Flags().StringVar(&f.baseURL, "base-url", "", "Web service base URL (defaults to CAMARA_API_URL env var)")
	cmd.Flags().DurationVar(&f.timeout, "timeout", 0, "HTTP request timeout")
	cmd.Flags().DurationVar(&f.delay, "delay", 0, "Pause between consecutive requests")
	cmd.Flags().DurationVar(&f.cacheMaxAge, "cache-max-age", 0, "Reuse archived raw responses younger than this")
	cmd.Flags().BoolVar(&f.offline, "offline", false, "Only use archived raw responses, never call the web service")
	cmd.Flags().StringVar(&f.rawDir, "raw-dir", "", "Directory for raw XML responses")
	cmd.Flags().StringVar(&f.dataDir, "data-dir", "", "Directory for per-year JSON and CSV files")
	cmd.Flags().StringVar(&f.siteDir, "site-dir", "", "Directory for the published website data")
	cmd.Flags().StringVarP(&f.template, "template", "t", "", "Path to a README template (optional)")
	cmd.Flags().IntVar(&f.maxPublished, "max-published", 0, "Maximum number of votes in votaciones.json")
	cmd.Flags().StringVar(&f.dateField, "date-field", "", "Vote date field (detected when empty)")
	cmd.Flags().StringVar(&f.resultField, "result-field", "", "Vote outcome field")
	cmd.Flags().BoolVarP(&f.verbose, "verbose", "v", false, "Print detailed debug information")
}

// resolve builds the effective configuration: config file, then
// environment, then explicitly set flags, then defaults.
func (f *pipelineFlags) resolve(cmd *cobra.Command) (config.Config, error) {
	// Step 1: Load config file if provided
	var cfg config.Config
	if f.configPath != "" {
		loadedCfg, err := config.LoadConfig(f.configPath)
		if err != nil {
			return cfg, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = *loadedCfg
	}

	// Step 2: Environment
	cfg.ApplyEnv(os.Getenv)

	// Step 3: Apply CLI overrides (command-line args take priority)
	// Only override if the flag was explicitly set
	flags := cmd.Flags()
	if flags.Changed("years") {
		cfg.Years = f.years
	}
	if flags.Changed("base-url") {
		cfg.BaseURL = f.baseURL
	}
	if flags.Changed("timeout") {
		cfg.Timeout = config.Duration(f.timeout)
	}
	if flags.Changed("delay") {
		cfg.RequestDelay = config.Duration(f.delay)
	}
	if flags.Changed("cache-max-age") {
		cfg.CacheMaxAge = config.Duration(f.cacheMaxAge)
	}
	if flags.Changed("offline") {
		cfg.Offline = f.offline
	}
	if flags.Changed("raw-dir") {
		cfg.RawDir = f.rawDir
	}
	if flags.Changed("data-dir") {
		cfg.DataDir = f.dataDir
	}
	if flags.Changed("site-dir") {
		cfg.SiteDir = f.siteDir
	}
	if flags.Changed("template") {
		cfg.SummaryTemplate = f.template
	}
	if flags.Changed("max-published") {
		cfg.MaxPublished = f.maxPublished
	}
	if flags.Changed("date-field") {
		cfg.DateField = f.dateField
	}
	if flags.Changed("result-field") {
		cfg.ResultField = f.resultField
	}
	if flags.Changed("verbose") {
		cfg.Verbose = f.verbose
	}

	// Step 4: Validate, then apply defaults for unset values
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	delaySet := flags.Changed("delay")
	cfg = cfg.MergeWithDefaults(config.Defaults())
	if delaySet {
		// an explicit --delay 0 disables the pause
		cfg.RequestDelay = config.Duration(f.delay)
	}

	return cfg, nil
}

// pipelineOptions maps a resolved configuration onto pipeline options.
func pipelineOptions(cfg config.Config) pipeline.Options {
	return pipeline.Options{
		RequestDelay:    time.Duration(cfg.RequestDelay),
		DataDir:         cfg.DataDir,
		SiteDir:         cfg.SiteDir,
		SummaryTemplate: cfg.SummaryTemplate,
		Aggregation: aggregation.Options{
			DateField:   cfg.DateField,
			ResultField: cfg.ResultField,
			Limit:       cfg.MaxPublished,
		},
	}
}
