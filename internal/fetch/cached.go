package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// VotesFetcher returns the raw votes document of one year.
type VotesFetcher interface {
	FetchVotes(ctx context.Context, year int) (string, error)
}

// CachedFetcher serves archived raw responses before asking the service.
type CachedFetcher struct {
	next    VotesFetcher
	dir     string
	maxAge  time.Duration
	offline bool
	logger  *slog.Logger
	now     func() time.Time
}

// CachedFetcherConfig holds configuration for the cached fetcher.
type CachedFetcherConfig struct {
	// Dir holds archives written by ArchivingFetcher.
	Dir string
	// MaxAge bounds the age of a usable archive. Zero accepts any age.
	MaxAge time.Duration
	// Offline never calls next; a year without archive fails.
	Offline bool
	Logger  *slog.Logger
	Now     func() time.Time
}

// NewCachedFetcher creates a new cached fetcher in front of next.
func NewCachedFetcher(next VotesFetcher, config *CachedFetcherConfig) *CachedFetcher {
	if config == nil {
		config = &CachedFetcherConfig{}
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	now := config.Now
	if now == nil {
		now = time.Now
	}
	return &CachedFetcher{
		next:    next,
		dir:     config.Dir,
		maxAge:  config.MaxAge,
		offline: config.Offline,
		logger:  logger,
		now:     now,
	}
}

// FetchVotes returns the newest fresh archive of year, or delegates to the
// wrapped fetcher.
func (f *CachedFetcher) FetchVotes(ctx context.Context, year int) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	path, stamp, ok := f.latestArchive(year)
	if ok && (f.maxAge <= 0 || f.now().Sub(stamp) <= f.maxAge) {
		data, err := os.ReadFile(path)
		if err == nil {
			f.logger.Info("using archived response",
				"year", year,
				"path", path,
				"age", humanize.RelTime(stamp, f.now(), "ago", "from now"),
			)
			return string(data), nil
		}
		f.logger.Warn("failed to read archived response", "path", path, "error", err)
	}

	if f.offline || f.next == nil {
		return "", &Error{
			URL:     filepath.Join(f.dir, archivePattern(year)),
			Message: fmt.Sprintf("no usable archived response for %d", year),
		}
	}
	return f.next.FetchVotes(ctx, year)
}

// latestArchive finds the most recent archive of year by its file name stamp.
func (f *CachedFetcher) latestArchive(year int) (string, time.Time, bool) {
	if f.dir == "" {
		return "", time.Time{}, false
	}
	matches, err := filepath.Glob(filepath.Join(f.dir, archivePattern(year)))
	if err != nil || len(matches) == 0 {
		return "", time.Time{}, false
	}
	// the stamp layout sorts chronologically
	slices.Sort(matches)

	prefix := fmt.Sprintf("%s_%d_", VotesByYearEndpoint, year)
	for i := len(matches) - 1; i >= 0; i-- {
		name := filepath.Base(matches[i])
		raw := strings.TrimSuffix(strings.TrimPrefix(name, prefix), ".xml")
		stamp, err := time.ParseInLocation(archiveTimeLayout, raw, time.Local)
		if err != nil {
			continue
		}
		return matches[i], stamp, true
	}
	return "", time.Time{}, false
}

func archivePattern(year int) string {
	return fmt.Sprintf("%s_%d_*.xml", VotesByYearEndpoint, year)
}
