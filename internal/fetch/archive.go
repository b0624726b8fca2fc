package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
)

// archiveTimeLayout stamps archived responses.
const archiveTimeLayout = "20060102_150405"

// ArchivingFetcher fetches vote documents and keeps a copy of every raw
// response on disk.
type ArchivingFetcher struct {
	client *Client
	dir    string
	logger *slog.Logger
	now    func() time.Time
}

// ArchivingFetcherConfig holds configuration for the archiving fetcher.
type ArchivingFetcherConfig struct {
	// Dir receives the raw XML responses. Empty disables archiving.
	Dir    string
	Logger *slog.Logger
	// Now overrides the clock used to stamp file names.
	Now func() time.Time
}

// NewArchivingFetcher creates a new archiving fetcher.
func NewArchivingFetcher(client *Client, config *ArchivingFetcherConfig) *ArchivingFetcher {
	if config == nil {
		config = &ArchivingFetcherConfig{}
	}
	if client == nil {
		client = NewClient("", nil)
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	now := config.Now
	if now == nil {
		now = time.Now
	}
	return &ArchivingFetcher{
		client: client,
		dir:    config.Dir,
		logger: logger,
		now:    now,
	}
}

// FetchVotes returns the raw XML of the votes of year. Archive failures are
// logged and do not fail the fetch.
func (f *ArchivingFetcher) FetchVotes(ctx context.Context, year int) (string, error) {
	f.logger.Info("requesting votes", "year", year, "endpoint", VotesByYearEndpoint)

	result, err := f.client.VotesByYear(ctx, year)
	if err != nil {
		return "", err
	}

	f.logger.Debug("received votes document",
		"year", year,
		"size", humanize.Bytes(uint64(len(result.Body))),
		"content_type", result.ContentType,
	)

	if f.dir != "" {
		path, err := f.archive(year, result.Body)
		if err != nil {
			f.logger.Warn("failed to archive raw response", "year", year, "error", err)
		} else {
			f.logger.Info("archived raw response", "year", year, "path", path)
		}
	}

	return result.Body, nil
}

// archive writes body to <dir>/<endpoint>_<year>_<timestamp>.xml.
func (f *ArchivingFetcher) archive(year int, body string) (string, error) {
	if err := os.MkdirAll(f.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}

	name := fmt.Sprintf("%s_%d_%s.xml", VotesByYearEndpoint, year, f.now().Format(archiveTimeLayout))
	path := filepath.Join(f.dir, name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		return "", fmt.Errorf("failed to write archive file: %w", err)
	}
	return path, nil
}
