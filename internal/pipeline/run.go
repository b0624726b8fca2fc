// Package pipeline provides the high-level orchestration for fetching,
// normalizing and publishing Chamber vote data.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/legislative-tracker/internal/aggregation"
	"github.com/jonathan/legislative-tracker/internal/artifacts"
	"github.com/jonathan/legislative-tracker/internal/parsing"
	"github.com/jonathan/legislative-tracker/internal/publishing"
	"github.com/jonathan/legislative-tracker/internal/rendering"
	"github.com/jonathan/legislative-tracker/internal/schemas"
	"github.com/jonathan/legislative-tracker/internal/types"
)

// Published file names.
const (
	VotesFile      = "votaciones.json"
	StatisticsFile = "estadisticas.json"
	SummaryFile    = "README.md"
	CSVFile        = "votaciones.csv"
)

// Progress steps.
const (
	StepFetch     = "fetch"
	StepNormalize = "normalize"
	StepAggregate = "aggregate"
	StepValidate  = "validate"
	StepWrite     = "write"
)

// Progress categories.
const (
	CategoryIngestion  = "ingestion"
	CategoryPublishing = "publishing"
)

var (
	// ErrNoTransport is returned by Run when no Transport is configured.
	ErrNoTransport = errors.New("pipeline: no transport configured")
	// ErrNoStore is returned when no Store is configured.
	ErrNoStore = errors.New("pipeline: no store configured")
	// ErrNoYears is returned by Run when the year list is empty.
	ErrNoYears = errors.New("pipeline: no years requested")
	// ErrInvalidArtifact wraps schema failures of a generated bundle.
	ErrInvalidArtifact = errors.New("pipeline: generated artifact failed schema validation")
)

// Transport fetches the raw votes document of one year.
type Transport interface {
	FetchVotes(ctx context.Context, year int) (string, error)
}

// Store persists pipeline artifacts.
type Store interface {
	SaveJSON(v any, path string) error
	SaveText(text string, path string) error
	SaveCSV(records []types.Record, path string) error
}

// Normalizer turns a raw votes document into records.
type Normalizer interface {
	Normalize(raw string) []types.Record
}

// ProgressEvent represents a progress update during pipeline execution
type ProgressEvent struct {
	Step     string `json:"step"`
	Category string `json:"category"`
	Message  string `json:"message"`
	RunID    string `json:"run_id,omitempty"`
	Content  any    `json:"content,omitempty"`
}

// ProgressCallback is called when pipeline progress occurs
type ProgressCallback func(event ProgressEvent)

// Options holds configuration for running the pipeline
type Options struct {
	// RequestDelay is the pause between two consecutive fetches.
	RequestDelay time.Duration
	// DataDir receives per-year JSON files and the CSV export.
	DataDir string
	// SiteDir receives the published bundles and README.
	SiteDir string
	// SummaryTemplate optionally replaces the built-in README template.
	SummaryTemplate string
	Aggregation     aggregation.Options
	OnProgress      ProgressCallback
}

// Pipeline sequences fetch, normalize, aggregate and publish. Transport and
// Store are required; the other fields have working defaults.
type Pipeline struct {
	Transport  Transport
	Store      Store
	Normalizer Normalizer
	Logger     *slog.Logger
	Clock      func() time.Time
	Sleep      func(ctx context.Context, d time.Duration) error
	Options    Options
}

// YearOutcome records what happened to one requested year.
type YearOutcome struct {
	Year    int    `json:"year"`
	Records int    `json:"records"`
	File    string `json:"file,omitempty"`
	Error   string `json:"error,omitempty"`
}

// PublishResult is the output of Publish.
type PublishResult struct {
	Publication publishing.Publication
	Files       []string
}

// Summary describes a full run.
type Summary struct {
	RunID string
	Years []YearOutcome
	// Total counts records collected over every successful year.
	Total     int
	Published *PublishResult
}

// New creates a pipeline with default collaborators besides transport and store.
func New(transport Transport, store Store, opts Options, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Pipeline{
		Transport:  transport,
		Store:      store,
		Normalizer: parsing.NewNormalizer(logger),
		Logger:     logger,
		Clock:      time.Now,
		Sleep:      Sleep,
		Options:    opts,
	}
}

// Sleep waits for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Run fetches every year in order, saves each year's records and publishes
// the combined collection. A year that fails to fetch or yields no votes is
// logged and skipped.
func (p *Pipeline) Run(ctx context.Context, years []int) (*Summary, error) {
	if p.Transport == nil {
		return nil, ErrNoTransport
	}
	if p.Store == nil {
		return nil, ErrNoStore
	}
	if len(years) == 0 {
		return nil, ErrNoYears
	}

	runID := uuid.New().String()
	logger := p.logger().With("run_id", runID)
	summary := &Summary{RunID: runID, Years: make([]YearOutcome, 0, len(years))}

	logger.Info("starting run", "years", years)

	var collected []types.Record
	for i, year := range years {
		if i > 0 && p.Options.RequestDelay > 0 {
			logger.Debug("waiting before next request", "delay", p.Options.RequestDelay)
			if err := p.sleep(ctx, p.Options.RequestDelay); err != nil {
				return summary, fmt.Errorf("run interrupted before year %d: %w", year, err)
			}
		}

		outcome, records := p.collectYear(ctx, logger, runID, year)
		summary.Years = append(summary.Years, outcome)
		if err := ctx.Err(); err != nil {
			return summary, fmt.Errorf("run interrupted at year %d: %w", year, err)
		}
		collected = append(collected, records...)
	}

	summary.Total = len(collected)
	logger.Info("collection complete", "records", summary.Total)

	published, err := p.publish(ctx, logger, runID, collected)
	if err != nil {
		return summary, err
	}
	summary.Published = published
	return summary, nil
}

// collectYear fetches, normalizes and saves one year. Failures are reported
// in the outcome and produce no records.
func (p *Pipeline) collectYear(ctx context.Context, logger *slog.Logger, runID string, year int) (YearOutcome, []types.Record) {
	outcome := YearOutcome{Year: year}
	logger = logger.With("year", year)

	p.emit(runID, StepFetch, CategoryIngestion, fmt.Sprintf("Fetching votes for %d", year), nil)
	raw, err := p.Transport.FetchVotes(ctx, year)
	if err != nil {
		logger.Warn("failed to fetch votes, skipping year", "error", err)
		outcome.Error = err.Error()
		return outcome, nil
	}
	if raw == "" {
		logger.Warn("no data returned, skipping year")
		outcome.Error = "empty response"
		return outcome, nil
	}

	records := p.normalizer().Normalize(raw)
	outcome.Records = len(records)
	if len(records) == 0 {
		logger.Warn("no votes found in response, skipping year")
		outcome.Error = "no votes found"
		return outcome, nil
	}
	p.emit(runID, StepNormalize, CategoryIngestion,
		fmt.Sprintf("Normalized %d votes for %d", len(records), year), outcome)

	path := filepath.Join(p.Options.DataDir, fmt.Sprintf("votaciones_%d.json", year))
	if err := p.Store.SaveJSON(records, path); err != nil {
		logger.Warn("failed to save yearly records", "path", path, "error", err)
	} else {
		outcome.File = path
		logger.Info("saved yearly records", "path", path, "records", len(records))
	}

	return outcome, records
}

// Publish aggregates records and writes the published artifacts. An empty
// collection is logged and nothing is written; the result is then nil.
func (p *Pipeline) Publish(ctx context.Context, records []types.Record) (*PublishResult, error) {
	if p.Store == nil {
		return nil, ErrNoStore
	}
	runID := uuid.New().String()
	return p.publish(ctx, p.logger().With("run_id", runID), runID, records)
}

func (p *Pipeline) publish(ctx context.Context, logger *slog.Logger, runID string, records []types.Record) (*PublishResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(records) == 0 {
		logger.Warn("no votes to publish, leaving existing files untouched")
		return nil, nil
	}

	result := aggregation.Aggregate(records, p.Options.Aggregation)
	logger.Info("aggregated votes",
		"total", result.Total,
		"years", len(result.ByYear),
		"published", len(result.Published),
		"date_field", result.DateField,
	)
	p.emit(runID, StepAggregate, CategoryPublishing,
		fmt.Sprintf("Aggregated %d votes over %d years", result.Total, len(result.ByYear)), result.ByYear)

	pub := publishing.Format(result, records, p.clock())

	votesJSON, err := artifacts.MarshalJSON(pub.Votes)
	if err != nil {
		return nil, err
	}
	statsJSON, err := artifacts.MarshalJSON(pub.Statistics)
	if err != nil {
		return nil, err
	}
	if err := schemas.ValidateVotes(votesJSON); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidArtifact, VotesFile, err)
	}
	if err := schemas.ValidateStatistics(statsJSON); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidArtifact, StatisticsFile, err)
	}
	p.emit(runID, StepValidate, CategoryPublishing, "Validated published bundles", nil)

	readme, err := p.renderSummary(pub)
	if err != nil {
		return nil, err
	}

	out := &PublishResult{Publication: pub}
	writes := []struct {
		path  string
		write func(string) error
	}{
		{filepath.Join(p.Options.SiteDir, VotesFile), func(path string) error { return p.Store.SaveText(string(votesJSON), path) }},
		{filepath.Join(p.Options.SiteDir, StatisticsFile), func(path string) error { return p.Store.SaveText(string(statsJSON), path) }},
		{filepath.Join(p.Options.SiteDir, SummaryFile), func(path string) error { return p.Store.SaveText(readme, path) }},
		{filepath.Join(p.Options.DataDir, CSVFile), func(path string) error { return p.Store.SaveCSV(records, path) }},
	}
	for _, w := range writes {
		if err := w.write(w.path); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", w.path, err)
		}
		out.Files = append(out.Files, w.path)
		logger.Info("wrote artifact", "path", w.path)
	}
	p.emit(runID, StepWrite, CategoryPublishing, fmt.Sprintf("Wrote %d files", len(out.Files)), out.Files)

	return out, nil
}

func (p *Pipeline) renderSummary(pub publishing.Publication) (string, error) {
	if p.Options.SummaryTemplate != "" {
		return rendering.RenderSummaryFromFile(pub, p.Options.SummaryTemplate)
	}
	return rendering.RenderSummary(pub)
}

// emit calls the progress callback if configured
func (p *Pipeline) emit(runID, step, category, message string, content any) {
	if p.Options.OnProgress != nil {
		p.Options.OnProgress(ProgressEvent{
			Step:     step,
			Category: category,
			Message:  message,
			RunID:    runID,
			Content:  content,
		})
	}
}

func (p *Pipeline) logger() *slog.Logger {
	if p.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return p.Logger
}

func (p *Pipeline) normalizer() Normalizer {
	if p.Normalizer == nil {
		return parsing.NewNormalizer(p.Logger)
	}
	return p.Normalizer
}

func (p *Pipeline) clock() time.Time {
	if p.Clock == nil {
		return time.Now()
	}
	return p.Clock()
}

func (p *Pipeline) sleep(ctx context.Context, d time.Duration) error {
	if p.Sleep == nil {
		return Sleep(ctx, d)
	}
	return p.Sleep(ctx, d)
}
