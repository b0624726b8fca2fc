// Package artifacts reads and writes the flat files produced by the pipeline.
package artifacts

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/samber/lo"

	"github.com/jonathan/legislative-tracker/internal/types"
)

// FileStore saves artifacts under Root. Absolute paths bypass Root.
type FileStore struct {
	Root string
}

// NewFileStore creates a store rooted at root ("" means the working directory).
func NewFileStore(root string) *FileStore {
	return &FileStore{Root: root}
}

// Resolve returns the on-disk location of path.
func (s *FileStore) Resolve(path string) string {
	if filepath.IsAbs(path) || s.Root == "" {
		return path
	}
	return filepath.Join(s.Root, path)
}

// MarshalJSON encodes v with two-space indentation, keeping non-ASCII and
// HTML characters literal, followed by a newline.
func MarshalJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return buf.Bytes(), nil
}

// SaveJSON writes v as indented JSON to path.
func (s *FileStore) SaveJSON(v any, path string) error {
	data, err := MarshalJSON(v)
	if err != nil {
		return err
	}
	return s.write(path, data)
}

// SaveText writes text to path.
func (s *FileStore) SaveText(text string, path string) error {
	return s.write(path, []byte(text))
}

// SaveCSV writes records as CSV. The header is the union of all field
// names in first-seen order; missing and null fields become empty cells.
func (s *FileStore) SaveCSV(records []types.Record, path string) error {
	header := lo.Uniq(lo.FlatMap(records, func(r types.Record, _ int) []string {
		return r.Keys()
	}))

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	row := make([]string, len(header))
	for _, r := range records {
		for i, field := range header {
			row[i], _ = r.Get(field)
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to write CSV: %w", err)
	}
	return s.write(path, buf.Bytes())
}

// ReadText returns the content of path.
func (s *FileStore) ReadText(path string) (string, error) {
	data, err := os.ReadFile(s.Resolve(path))
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(data), nil
}

// LoadRecords reads a JSON array of records, or a votes bundle object with
// a "votaciones" array, from path.
func (s *FileStore) LoadRecords(path string) ([]types.Record, error) {
	data, err := os.ReadFile(s.Resolve(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var bundle struct {
			Votes []types.Record `json:"votaciones"`
		}
		if err := json.Unmarshal(trimmed, &bundle); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		if bundle.Votes == nil {
			return []types.Record{}, nil
		}
		return bundle.Votes, nil
	}

	var records []types.Record
	if err := json.Unmarshal(trimmed, &records); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if records == nil {
		records = []types.Record{}
	}
	return records, nil
}

func (s *FileStore) write(path string, data []byte) error {
	full := s.Resolve(path)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
