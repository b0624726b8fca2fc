package aggregation

import (
	"github.com/samber/lo"

	"github.com/jonathan/legislative-tracker/internal/types"
)

// FieldSummary describes how one field is populated across a collection.
type FieldSummary struct {
	Field string `json:"campo"`
	// Unique counts distinct non-null values.
	Unique int `json:"valores_unicos"`
	// Nulls counts records where the field is null or missing.
	Nulls int `json:"valores_nulos"`
}

// SummarizeFields reports every field seen in records, in first-seen order.
func SummarizeFields(records []types.Record) []FieldSummary {
	fields := lo.Uniq(lo.FlatMap(records, func(r types.Record, _ int) []string {
		return r.Keys()
	}))

	summaries := make([]FieldSummary, 0, len(fields))
	for _, field := range fields {
		values := map[string]struct{}{}
		nulls := 0
		for _, r := range records {
			v, ok := r.Get(field)
			if !ok {
				nulls++
				continue
			}
			values[v] = struct{}{}
		}
		summaries = append(summaries, FieldSummary{
			Field:  field,
			Unique: len(values),
			Nulls:  nulls,
		})
	}
	return summaries
}
