// Package parsing converts the XML documents published by the Chamber of
// Deputies open-data service into normalized vote records.
package parsing

import (
	"log/slog"
	"strings"

	"github.com/jonathan/legislative-tracker/internal/types"
)

const (
	// Namespace is the XML namespace of the Chamber open-data documents.
	Namespace = "http://opendata.camara.cl/camaradiputados/v1"
	// VoteElement is the local name of one vote event.
	VoteElement = "Votacion"
	// ValueAttr is the attribute that carries the coded value of a field.
	ValueAttr = "Valor"
	// ValueSuffix is appended to a field name to hold its coded value.
	ValueSuffix = "_" + ValueAttr
)

// Normalizer turns raw XML documents into vote records.
type Normalizer struct {
	Namespace string
	Element   string
	Logger    *slog.Logger
}

// NewNormalizer returns a Normalizer for Chamber vote documents.
// A nil logger discards diagnostics.
func NewNormalizer(logger *slog.Logger) *Normalizer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Normalizer{
		Namespace: Namespace,
		Element:   VoteElement,
		Logger:    logger,
	}
}

// Normalize returns one record per vote element found anywhere in raw, in
// document order. Empty or malformed input yields an empty slice; parse
// failures are logged and never returned.
func (n *Normalizer) Normalize(raw string) []types.Record {
	logger := n.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	records := []types.Record{}
	if strings.TrimSpace(raw) == "" {
		logger.Debug("empty XML input, nothing to normalize")
		return records
	}

	root, err := parseDocument(raw)
	if err != nil {
		logger.Error("failed to parse votes XML", "error", err, "bytes", len(raw))
		return records
	}

	root.walk(func(el *node) {
		if el.Name.Space == n.Namespace && el.Name.Local == n.Element {
			records = append(records, normalizeVote(el))
		}
	})

	logger.Debug("normalized votes", "count", len(records), "root", root.Name.Local)
	return records
}

// normalizeVote flattens the direct children of a vote element.
func normalizeVote(vote *node) types.Record {
	record := types.NewRecord(len(vote.Children) + 4)
	for _, child := range vote.Children {
		field := child.Name.Local

		if value, ok := child.attr(ValueAttr); ok {
			record.SetString(field+ValueSuffix, value)
			if child.Text != nil && *child.Text != "" {
				record.SetString(field, *child.Text)
			} else {
				record.SetString(field, value)
			}
			continue
		}

		record.Set(field, child.Text)
	}
	return record
}
