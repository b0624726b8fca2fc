// Package aggregation derives yearly statistics, the covered period and the
// bounded publication subset from a collection of vote records.
package aggregation

import (
	"slices"
	"strings"

	"github.com/samber/lo"
	"golang.org/x/text/cases"

	"github.com/jonathan/legislative-tracker/internal/types"
)

const (
	// DefaultDateField is the vote date field in Chamber documents.
	DefaultDateField = "Fecha"
	// DefaultResultField is the vote outcome field in Chamber documents.
	DefaultResultField = "Resultado"
	// DefaultLimit is the number of records kept for publication.
	DefaultLimit = 1000

	// The outcome labels are matched as literal Spanish stems. Wording
	// changes upstream will silently stop matching.
	approvedMarker = "aprobad"
	rejectedMarker = "rechazad"
)

// Options controls which fields are read and how many records are published.
type Options struct {
	// DateField names the date field. Empty means detect it.
	DateField string
	// ResultField names the vote outcome field.
	ResultField string
	// Limit bounds Published. Zero or negative publishes everything.
	Limit int
}

// DefaultOptions returns the options for Chamber vote records.
func DefaultOptions() Options {
	return Options{
		DateField:   DefaultDateField,
		ResultField: DefaultResultField,
		Limit:       DefaultLimit,
	}
}

// Result is the aggregate view of a vote collection.
type Result struct {
	Total     int
	DateField string
	ByYear    map[string]types.YearlyStat
	Period    types.Period
	Published []types.Record
}

// Years returns the years present in ByYear in ascending order.
func (r Result) Years() []string {
	years := lo.Keys(r.ByYear)
	slices.Sort(years)
	return years
}

// Aggregate computes statistics over all records and the sorted, bounded
// subset for publication. Counts always cover the full collection.
func Aggregate(records []types.Record, opts Options) Result {
	dateField := opts.DateField
	if dateField == "" {
		dateField = DetectDateField(records)
	}
	resultField := opts.ResultField
	if resultField == "" {
		resultField = DefaultResultField
	}

	res := Result{
		Total:     len(records),
		DateField: dateField,
		ByYear:    map[string]types.YearlyStat{},
		Published: []types.Record{},
	}
	if len(records) == 0 {
		return res
	}

	fold := cases.Fold()
	for _, r := range records {
		date, ok := dateOf(r, dateField)
		if !ok {
			continue
		}
		year, ok := yearOf(date)
		if !ok {
			continue
		}

		if res.Period.Start == nil || date < *res.Period.Start {
			res.Period.Start = lo.ToPtr(date)
		}
		if res.Period.End == nil || date > *res.Period.End {
			res.Period.End = lo.ToPtr(date)
		}

		stat := res.ByYear[year]
		stat.Total++
		if outcome, ok := r.Get(resultField); ok {
			folded := fold.String(outcome)
			if strings.Contains(folded, approvedMarker) {
				stat.Approved++
			}
			if strings.Contains(folded, rejectedMarker) {
				stat.Rejected++
			}
		}
		res.ByYear[year] = stat
	}

	sorted := SortByDateDesc(records, dateField)
	if opts.Limit > 0 && len(sorted) > opts.Limit {
		sorted = sorted[:opts.Limit]
	}
	res.Published = sorted

	return res
}

// SortByDateDesc returns a copy of records ordered by field, most recent
// first. Records without the field compare as the empty string and end up
// last. Equal keys keep their input order.
func SortByDateDesc(records []types.Record, field string) []types.Record {
	sorted := slices.Clone(records)
	if sorted == nil {
		sorted = []types.Record{}
	}
	slices.SortStableFunc(sorted, func(a, b types.Record) int {
		da, _ := dateOf(a, field)
		db, _ := dateOf(b, field)
		return strings.Compare(db, da)
	})
	return sorted
}

// DetectDateField picks the date field of a collection: DefaultDateField
// when any record has it, otherwise the first field seen whose name mentions
// "fecha" or "date". Returns "" when nothing qualifies.
func DetectDateField(records []types.Record) string {
	var seen []string
	for _, r := range records {
		if r.Has(DefaultDateField) {
			return DefaultDateField
		}
		seen = append(seen, r.Keys()...)
	}

	candidate, ok := lo.Find(lo.Uniq(seen), func(field string) bool {
		lower := strings.ToLower(field)
		return strings.Contains(lower, "fecha") || strings.Contains(lower, "date")
	})
	if !ok {
		return ""
	}
	return candidate
}

func dateOf(r types.Record, field string) (string, bool) {
	if field == "" {
		return "", false
	}
	return r.Get(field)
}

// yearOf returns the first four characters of date when they are digits.
func yearOf(date string) (string, bool) {
	if len(date) < 4 {
		return "", false
	}
	year := date[:4]
	for _, c := range year {
		if c < '0' || c > '9' {
			return "", false
		}
	}
	return year, true
}
