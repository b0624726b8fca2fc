// Package publishing shapes aggregated vote data into the JSON bundles read
// by the static website.
package publishing

import (
	"time"

	"github.com/samber/lo"

	"github.com/jonathan/legislative-tracker/internal/aggregation"
	"github.com/jonathan/legislative-tracker/internal/types"
)

// SchemaVersion tags the layout of the published bundles.
const SchemaVersion = "1.0"

// StatisticsTimeLayout is the timestamp format of the statistics bundle.
const StatisticsTimeLayout = "2006-01-02 15:04:05"

// VotesMetadata describes the votes bundle.
type VotesMetadata struct {
	GeneratedAt  string  `json:"fecha_actualizacion"` // RFC3339 format
	Total        int     `json:"total_votaciones"`
	EarliestYear *string `json:"anio_mas_antiguo"`
	LatestYear   *string `json:"anio_mas_reciente"`
	Version      string  `json:"version"`
}

// VotesBundle is the content of votaciones.json.
type VotesBundle struct {
	Metadata VotesMetadata  `json:"metadata"`
	Votes    []types.Record `json:"votaciones"`
}

// StatisticsBundle is the content of estadisticas.json.
type StatisticsBundle struct {
	Total           int                         `json:"total_votaciones"`
	GeneratedAt     string                      `json:"fecha_actualizacion"`
	Period          types.Period                `json:"periodo"`
	ByYear          map[string]types.YearlyStat `json:"por_anio"`
	AvailableFields []string                    `json:"campos_disponibles"`
}

// Publication groups every bundle produced by one run.
type Publication struct {
	Votes      VotesBundle
	Statistics StatisticsBundle
}

// Format builds the publishable bundles from an aggregate result. records is
// the full collection the result was computed from; its first record supplies
// the advertised field list.
func Format(result aggregation.Result, records []types.Record, generatedAt time.Time) Publication {
	published := result.Published
	if published == nil {
		published = []types.Record{}
	}

	byYear := make(map[string]types.YearlyStat, len(result.ByYear))
	for year, stat := range result.ByYear {
		byYear[year] = stat
	}

	fields := []string{}
	if first, ok := lo.First(records); ok {
		fields = first.Keys()
	}

	return Publication{
		Votes: VotesBundle{
			Metadata: VotesMetadata{
				GeneratedAt:  generatedAt.Format(time.RFC3339),
				Total:        result.Total,
				EarliestYear: yearPrefix(result.Period.Start),
				LatestYear:   yearPrefix(result.Period.End),
				Version:      SchemaVersion,
			},
			Votes: published,
		},
		Statistics: StatisticsBundle{
			Total:       result.Total,
			GeneratedAt: generatedAt.Format(StatisticsTimeLayout),
			Period: types.Period{
				Start: copyString(result.Period.Start),
				End:   copyString(result.Period.End),
			},
			ByYear:          byYear,
			AvailableFields: fields,
		},
	}
}

func yearPrefix(date *string) *string {
	if date == nil || len(*date) < 4 {
		return nil
	}
	return lo.ToPtr((*date)[:4])
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	return lo.ToPtr(*s)
}
