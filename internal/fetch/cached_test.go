package fetch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubFetcher struct {
	body  string
	err   error
	calls int
}

func (s *stubFetcher) FetchVotes(_ context.Context, _ int) (string, error) {
	s.calls++
	return s.body, s.err
}

func writeArchive(t *testing.T, dir string, year int, stamp time.Time, body string) {
	t.Helper()
	name := VotesByYearEndpoint + "_" + strconv.Itoa(year) + "_" + stamp.Format(archiveTimeLayout) + ".xml"
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
}

func localNow() time.Time {
	return time.Date(2024, 12, 18, 9, 0, 0, 0, time.Local)
}

func TestCachedFetcher_UsesNewestArchive(t *testing.T) {
	dir := t.TempDir()
	writeArchive(t, dir, 2024, localNow().Add(-48*time.Hour), "old")
	writeArchive(t, dir, 2024, localNow().Add(-time.Hour), "new")
	writeArchive(t, dir, 2023, localNow().Add(-time.Minute), "other year")

	next := &stubFetcher{body: "network"}
	f := NewCachedFetcher(next, &CachedFetcherConfig{Dir: dir, Now: localNow})

	body, err := f.FetchVotes(context.Background(), 2024)
	require.NoError(t, err)
	assert.Equal(t, "new", body)
	assert.Zero(t, next.calls)
}

func TestCachedFetcher_StaleArchiveGoesToNetwork(t *testing.T) {
	dir := t.TempDir()
	writeArchive(t, dir, 2024, localNow().Add(-48*time.Hour), "old")

	next := &stubFetcher{body: "network"}
	f := NewCachedFetcher(next, &CachedFetcherConfig{Dir: dir, MaxAge: 24 * time.Hour, Now: localNow})

	body, err := f.FetchVotes(context.Background(), 2024)
	require.NoError(t, err)
	assert.Equal(t, "network", body)
	assert.Equal(t, 1, next.calls)
}

func TestCachedFetcher_MissingArchive(t *testing.T) {
	next := &stubFetcher{err: errors.New("boom")}
	f := NewCachedFetcher(next, &CachedFetcherConfig{Dir: t.TempDir()})

	_, err := f.FetchVotes(context.Background(), 2024)
	assert.EqualError(t, err, "boom")
	assert.Equal(t, 1, next.calls)
}

func TestCachedFetcher_OfflineWithoutArchive(t *testing.T) {
	next := &stubFetcher{body: "network"}
	f := NewCachedFetcher(next, &CachedFetcherConfig{Dir: t.TempDir(), Offline: true})

	_, err := f.FetchVotes(context.Background(), 2022)
	require.Error(t, err)
	var fetchErr *Error
	assert.ErrorAs(t, err, &fetchErr)
	assert.Contains(t, err.Error(), "no usable archived response for 2022")
	assert.Zero(t, next.calls)
}

func TestCachedFetcher_IgnoresUnstampedFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, VotesByYearEndpoint+"_2024_latest.xml"), []byte("x"), 0o644))

	next := &stubFetcher{body: "network"}
	body, err := NewCachedFetcher(next, &CachedFetcherConfig{Dir: dir}).FetchVotes(context.Background(), 2024)
	require.NoError(t, err)
	assert.Equal(t, "network", body)
}

func TestCachedFetcher_ReplaysArchivingFetcherOutput(t *testing.T) {
	dir := t.TempDir()
	archiver := &ArchivingFetcher{client: nil, dir: dir, now: localNow}
	_, err := archiver.archive(2024, votesXML)
	require.NoError(t, err)

	f := NewCachedFetcher(nil, &CachedFetcherConfig{Dir: dir, Offline: true, Now: localNow})
	body, err := f.FetchVotes(context.Background(), 2024)
	require.NoError(t, err)
	assert.Equal(t, votesXML, body)
}

func TestCachedFetcher_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewCachedFetcher(&stubFetcher{}, nil).FetchVotes(ctx, 2024)
	assert.ErrorIs(t, err, context.Canceled)
}
