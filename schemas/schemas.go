// Package schemas embeds the JSON Schemas of the published bundles.
package schemas

import "embed"

// Schema file names.
const (
	VotesSchema      = "votaciones.schema.json"
	StatisticsSchema = "estadisticas.schema.json"
)

// FS holds every *.schema.json file of this directory.
//
//go:embed *.schema.json
var FS embed.FS
