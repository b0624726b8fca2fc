// Package observability provides logging setup and formatted console output
// for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/dustin/go-humanize"
	"github.com/samber/lo"

	"github.com/jonathan/legislative-tracker/internal/aggregation"
	"github.com/jonathan/legislative-tracker/internal/parsing"
	"github.com/jonathan/legislative-tracker/internal/publishing"
	"github.com/jonathan/legislative-tracker/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, clip(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// clip shortens s to at most width runes, marking the cut with "...".
func clip(s string, width int) string {
	if utf8.RuneCountInString(s) <= width {
		return s
	}
	runes := []rune(s)
	return string(runes[:width-3]) + "..."
}

// PrintOutline outputs the structure of a raw votes document.
func (p *Printer) PrintOutline(outline *parsing.Outline) {
	if outline == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Root:      %s\n", outline.RootTag))
	if outline.RootNamespace != "" {
		sb.WriteString(fmt.Sprintf("Namespace: %s\n", outline.RootNamespace))
	}
	for _, key := range sortedKeys(outline.RootAttrs) {
		sb.WriteString(fmt.Sprintf("  @%s = %s\n", key, outline.RootAttrs[key]))
	}
	sb.WriteString(fmt.Sprintf("Children:  %s\n", humanize.Comma(int64(outline.ChildCount))))
	sb.WriteString(fmt.Sprintf("Votes:     %s\n", humanize.Comma(int64(outline.VoteCount))))

	if outline.FirstTag != "" {
		sb.WriteString(fmt.Sprintf("\nFirst entry <%s>:\n", outline.FirstTag))
		count := min(len(outline.FirstChildren), maxItemsToShow*2)
		for _, field := range outline.FirstChildren[:count] {
			sb.WriteString(fmt.Sprintf("  • %s: %s", field.Tag, field.Text))
			for _, key := range sortedKeys(field.Attrs) {
				sb.WriteString(fmt.Sprintf(" [@%s=%s]", key, field.Attrs[key]))
			}
			sb.WriteString("\n")
		}
		if len(outline.FirstChildren) > count {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(outline.FirstChildren)-count))
		}
	}

	p.printBox("XML STRUCTURE", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintRecordPreview outputs the first records of a collection.
func (p *Printer) PrintRecordPreview(records []types.Record) {
	if len(records) == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Total records: %s\n", humanize.Comma(int64(len(records)))))

	count := min(len(records), 3)
	for i, r := range records[:count] {
		sb.WriteString(fmt.Sprintf("\n#%d\n", i+1))
		for _, key := range r.Keys() {
			v, ok := r.Get(key)
			if !ok {
				v = "null"
			}
			sb.WriteString(fmt.Sprintf("  %s: %s\n", key, v))
		}
	}

	if len(records) > count {
		sb.WriteString(fmt.Sprintf("\n... and %d more records", len(records)-count))
	}

	p.printBox("NORMALIZED VOTES", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintStatistics outputs the per-year table of a statistics bundle.
func (p *Printer) PrintStatistics(stats publishing.StatisticsBundle) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Total votes: %s\n", humanize.Comma(int64(stats.Total))))
	if stats.Period.Start != nil && stats.Period.End != nil {
		sb.WriteString(fmt.Sprintf("Period:      %s → %s\n", *stats.Period.Start, *stats.Period.End))
	}

	if len(stats.ByYear) > 0 {
		sb.WriteString("\nYear   Total   Approved  Rejected  Approval\n")
		for _, year := range sortedKeys(stats.ByYear) {
			stat := stats.ByYear[year]
			sb.WriteString(fmt.Sprintf("%-6s %6s  %8s  %8s  %7.1f%%\n",
				year,
				humanize.Comma(int64(stat.Total)),
				humanize.Comma(int64(stat.Approved)),
				humanize.Comma(int64(stat.Rejected)),
				stat.ApprovalRate(),
			))
		}
	}

	p.printBox("VOTE STATISTICS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintFieldSummary outputs how each field is populated.
func (p *Printer) PrintFieldSummary(fields []aggregation.FieldSummary) {
	if len(fields) == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Fields: %d\n\n", len(fields)))
	for _, f := range fields {
		sb.WriteString(fmt.Sprintf("• %s: %s unique, %s null\n",
			f.Field, humanize.Comma(int64(f.Unique)), humanize.Comma(int64(f.Nulls))))
	}

	p.printBox("FIELD SUMMARY", strings.TrimSuffix(sb.String(), "\n"))
}

func sortedKeys[V any](m map[string]V) []string {
	keys := lo.Keys(m)
	slices.Sort(keys)
	return keys
}
