package main

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jonathan/legislative-tracker/internal/config"
)

// getBinaryPath returns the path to the legis_agent binary for testing
func getBinaryPath(t *testing.T) string {
	binaryName := "legis_agent"
	if testing.Short() {
		t.Skip("Skipping CLI tests in short mode")
	}

	binaryPath := filepath.Join("..", "..", "bin", binaryName)
	if _, err := os.Stat(binaryPath); os.IsNotExist(err) {
		t.Skipf("Binary not found at %s, build it first with 'make build'", binaryPath)
	}

	return binaryPath
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func votesXML(votes ...string) string {
	return `<?xml version="1.0" encoding="utf-8"?>` +
		`<Votaciones xmlns="http://opendata.camara.cl/camaradiputados/v1">` +
		strings.Join(votes, "") +
		`</Votaciones>`
}

func voteXML(id, fecha, resultado string) string {
	return fmt.Sprintf(`<Votacion><ID>%s</ID><Fecha>%s</Fecha><Resultado Valor="1">%s</Resultado></Votacion>`,
		id, fecha, resultado)
}

// newVotesServer serves docs keyed by the requested year; other years get a 500.
func newVotesServer(t *testing.T, docs map[string]string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		form, _ := url.ParseQuery(string(body))
		doc, ok := docs[form.Get("prmAnno")]
		if !ok {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/xml; charset=utf-8")
		_, _ = w.Write([]byte(doc))
	}))
	t.Cleanup(server.Close)
	return server
}

// testConfig returns a resolved configuration writing under a temp dir.
func testConfig(t *testing.T) config.Config {
	t.Helper()
	root := t.TempDir()
	cfg := config.Config{
		RawDir:  filepath.Join(root, "raw"),
		DataDir: filepath.Join(root, "processed"),
		SiteDir: filepath.Join(root, "site"),
	}
	cfg = cfg.MergeWithDefaults(config.Defaults())
	cfg.RequestDelay = 0
	return cfg
}

func writeTestFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}
