package rendering

import (
	"fmt"
	"os"
	"slices"
	"strings"
	"text/template"

	"github.com/dustin/go-humanize"
	"github.com/samber/lo"

	"github.com/jonathan/legislative-tracker/internal/publishing"
)

// SourceURL is the upstream open-data portal credited in the summary.
const SourceURL = "https://opendata.camara.cl/"

const defaultSummaryTemplate = `# Datos - Seguimiento Legislativo Chile

**Última actualización:** {{ .UpdatedAt }}

**Total de votaciones:** {{ .Total }}
{{- if .PeriodStart }}

**Periodo:** {{ .PeriodStart }} a {{ .PeriodEnd }}
{{- end }}

## Votaciones por año
{{ if .Years }}
| Año | Total | Aprobadas | Rechazadas | % Aprobación |
|-----|------:|----------:|-----------:|-------------:|
{{- range .Years }}
| {{ .Year }} | {{ .Total }} | {{ .Approved }} | {{ .Rejected }} | {{ .ApprovalRate }} |
{{- end }}
{{ else }}
Sin votaciones fechadas.
{{ end }}
## Archivos Disponibles

- ` + "`votaciones.json`" + `: Datos de votaciones (últimas {{ .Published }})
- ` + "`estadisticas.json`" + `: Estadísticas y metadata

## Fuente

Datos obtenidos de [OpenData Cámara de Diputados]({{ .SourceURL }})

---

*Datos actualizados automáticamente por legis_agent*
`

// SummaryData is the data passed to the summary template
type SummaryData struct {
	UpdatedAt   string
	Total       string
	PeriodStart string
	PeriodEnd   string
	Published   string
	SourceURL   string
	Years       []YearRow
}

// YearRow is one line of the per-year table
type YearRow struct {
	Year         string
	Total        string
	Approved     string
	Rejected     string
	ApprovalRate string
}

// RenderSummary renders the Markdown summary of a publication with the
// built-in template.
func RenderSummary(pub publishing.Publication) (string, error) {
	tmpl, err := template.New("summary").Parse(defaultSummaryTemplate)
	if err != nil {
		return "", &TemplateError{Message: "failed to parse built-in template", Cause: err}
	}
	return execute(tmpl, pub)
}

// RenderSummaryFromFile renders the Markdown summary with the template at
// templatePath. Templates receive a SummaryData value.
func RenderSummaryFromFile(pub publishing.Publication, templatePath string) (string, error) {
	content, err := os.ReadFile(templatePath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", &TemplateError{
				Message: fmt.Sprintf("template file not found: %s", templatePath),
				Cause:   err,
			}
		}
		return "", &TemplateError{
			Message: fmt.Sprintf("failed to read template file: %s", templatePath),
			Cause:   err,
		}
	}

	tmpl, err := template.New("summary").Funcs(template.FuncMap{
		"escape": EscapeMarkdownCell,
	}).Parse(string(content))
	if err != nil {
		return "", &TemplateError{Message: "failed to parse template", Cause: err}
	}
	return execute(tmpl, pub)
}

func execute(tmpl *template.Template, pub publishing.Publication) (string, error) {
	var result strings.Builder
	if err := tmpl.Execute(&result, buildSummaryData(pub)); err != nil {
		return "", &TemplateError{Message: "failed to execute template", Cause: err}
	}
	return result.String(), nil
}

// buildSummaryData flattens a publication into display strings.
func buildSummaryData(pub publishing.Publication) SummaryData {
	stats := pub.Statistics
	data := SummaryData{
		UpdatedAt: stats.GeneratedAt,
		Total:     humanize.Comma(int64(stats.Total)),
		Published: humanize.Comma(int64(len(pub.Votes.Votes))),
		SourceURL: SourceURL,
	}
	if stats.Period.Start != nil && stats.Period.End != nil {
		data.PeriodStart = EscapeMarkdownCell(*stats.Period.Start)
		data.PeriodEnd = EscapeMarkdownCell(*stats.Period.End)
	}

	years := lo.Keys(stats.ByYear)
	slices.Sort(years)

	for _, year := range years {
		stat := stats.ByYear[year]
		data.Years = append(data.Years, YearRow{
			Year:         EscapeMarkdownCell(year),
			Total:        humanize.Comma(int64(stat.Total)),
			Approved:     humanize.Comma(int64(stat.Approved)),
			Rejected:     humanize.Comma(int64(stat.Rejected)),
			ApprovalRate: fmt.Sprintf("%.1f%%", stat.ApprovalRate()),
		})
	}
	return data
}
