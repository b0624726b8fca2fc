package schemas

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/legislative-tracker/internal/aggregation"
	"github.com/jonathan/legislative-tracker/internal/artifacts"
	"github.com/jonathan/legislative-tracker/internal/publishing"
	"github.com/jonathan/legislative-tracker/internal/types"
)

const personSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"required": ["name"],
	"properties": {
		"name": {"type": "string"}
	}
}`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func samplePublication(t *testing.T) publishing.Publication {
	t.Helper()
	var a, b types.Record
	a.SetString("ID", "1")
	a.SetString("Fecha", "2024-03-05T10:00:00")
	a.SetString("Resultado", "Aprobado")
	b.SetString("ID", "2")
	b.SetString("Fecha", "2023-01-01")
	b.Set("Resultado", nil)
	records := []types.Record{a, b}

	result := aggregation.Aggregate(records, aggregation.DefaultOptions())
	return publishing.Format(result, records, time.Date(2024, 3, 6, 8, 0, 0, 0, time.UTC))
}

func TestValidateJSON_ValidJSON(t *testing.T) {
	dir := t.TempDir()
	schemaPath := writeFile(t, dir, "schema.json", personSchema)
	jsonPath := writeFile(t, dir, "doc.json", `{"name": "Boric"}`)

	assert.NoError(t, ValidateJSON(schemaPath, jsonPath))
}

func TestValidateJSON_InvalidJSON_MissingField(t *testing.T) {
	dir := t.TempDir()
	schemaPath := writeFile(t, dir, "schema.json", personSchema)
	jsonPath := writeFile(t, dir, "doc.json", `{"age": 30}`)

	err := ValidateJSON(schemaPath, jsonPath)
	require.Error(t, err)

	var validationErr *ValidationError
	require.True(t, errors.As(err, &validationErr), "error should be ValidationError type")
	assert.Greater(t, len(validationErr.Errors), 0)
}

func TestValidateJSON_NonExistentFiles(t *testing.T) {
	dir := t.TempDir()
	schemaPath := writeFile(t, dir, "schema.json", personSchema)
	jsonPath := writeFile(t, dir, "doc.json", `{"name": "x"}`)

	err := ValidateJSON(filepath.Join(dir, "nonexistent_schema.json"), jsonPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")

	err = ValidateJSON(schemaPath, filepath.Join(dir, "nonexistent_json.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestValidateJSON_MalformedJSON(t *testing.T) {
	dir := t.TempDir()
	schemaPath := writeFile(t, dir, "schema.json", personSchema)
	jsonPath := writeFile(t, dir, "malformed.json", "{ invalid json }")

	err := ValidateJSON(schemaPath, jsonPath)
	require.Error(t, err)

	var loadErr *SchemaLoadError
	assert.True(t, errors.As(err, &loadErr))
}

func TestValidateJSONString(t *testing.T) {
	assert.NoError(t, ValidateJSONString(personSchema, `{"name": "test"}`))

	err := ValidateJSONString(personSchema, `{"age": 30}`)
	require.Error(t, err)
	validationErr, ok := err.(*ValidationError)
	require.True(t, ok)
	assert.Greater(t, len(validationErr.Errors), 0)
}

func TestValidationError_Error(t *testing.T) {
	err := &ValidationError{
		Errors: []FieldError{
			{Field: "metadata", Message: "version is required"},
			{Field: "votaciones.0.ID", Message: "Invalid type"},
		},
	}

	msg := err.Error()
	assert.Contains(t, msg, "validation failed")
	assert.Contains(t, msg, "1. metadata: version is required")
	assert.Contains(t, msg, "2. votaciones.0.ID: Invalid type")

	err.Schema = "votaciones.schema.json"
	assert.Contains(t, err.Error(), "validation against votaciones.schema.json failed")
}

func TestValidateVotes_PublishedBundle(t *testing.T) {
	pub := samplePublication(t)

	data, err := artifacts.MarshalJSON(pub.Votes)
	require.NoError(t, err)
	assert.NoError(t, ValidateVotes(data))
}

func TestValidateVotes_EmptyPeriod(t *testing.T) {
	pub := publishing.Format(aggregation.Result{ByYear: map[string]types.YearlyStat{}}, nil, time.Now())

	data, err := artifacts.MarshalJSON(pub.Votes)
	require.NoError(t, err)
	assert.NoError(t, ValidateVotes(data))

	data, err = artifacts.MarshalJSON(pub.Statistics)
	require.NoError(t, err)
	assert.NoError(t, ValidateStatistics(data))
}

func TestValidateVotes_Rejects(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{
			name: "missing votaciones",
			doc:  `{"metadata":{"fecha_actualizacion":"2024-01-01T00:00:00Z","total_votaciones":0,"anio_mas_antiguo":null,"anio_mas_reciente":null,"version":"1.0"}}`,
		},
		{
			name: "numeric field value",
			doc:  `{"metadata":{"fecha_actualizacion":"2024-01-01T00:00:00Z","total_votaciones":1,"anio_mas_antiguo":"2024","anio_mas_reciente":"2024","version":"1.0"},"votaciones":[{"ID":1}]}`,
		},
		{
			name: "negative total",
			doc:  `{"metadata":{"fecha_actualizacion":"2024-01-01T00:00:00Z","total_votaciones":-1,"anio_mas_antiguo":null,"anio_mas_reciente":null,"version":"1.0"},"votaciones":[]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateVotes([]byte(tt.doc))
			require.Error(t, err)
			var validationErr *ValidationError
			require.True(t, errors.As(err, &validationErr), "got %T: %v", err, err)
			assert.Equal(t, "votaciones.schema.json", validationErr.Schema)
			assert.NotEmpty(t, validationErr.Errors)
		})
	}
}

func TestValidateStatistics(t *testing.T) {
	pub := samplePublication(t)

	data, err := artifacts.MarshalJSON(pub.Statistics)
	require.NoError(t, err)
	assert.NoError(t, ValidateStatistics(data))

	bad := `{"total_votaciones":1,"fecha_actualizacion":"2024-01-01T00:00:00Z","periodo":{"inicio":null,"fin":null},"por_anio":{"24":{"total":1,"aprobados":0,"rechazados":0}},"campos_disponibles":[]}`
	err = ValidateStatistics([]byte(bad))
	require.Error(t, err)
	var validationErr *ValidationError
	require.True(t, errors.As(err, &validationErr))
	assert.GreaterOrEqual(t, len(validationErr.Errors), 2)
}

func TestValidateEmbedded_UnknownSchema(t *testing.T) {
	err := ValidateEmbedded("nope.schema.json", []byte(`{}`))
	require.Error(t, err)
	var loadErr *SchemaLoadError
	require.True(t, errors.As(err, &loadErr))
	assert.Contains(t, err.Error(), "schema not embedded")
}

func TestSchemaFor(t *testing.T) {
	assert.Equal(t, "votaciones.schema.json", SchemaFor("docs/data/votaciones.json"))
	assert.Equal(t, "estadisticas.schema.json", SchemaFor("estadisticas.json"))
	assert.Equal(t, "", SchemaFor("README.md"))
}
