package schemas_test

import (
	"encoding/json"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/legislative-tracker/schemas"
)

func TestAllSchemaFiles_ValidJSON(t *testing.T) {
	schemaFiles := []string{
		schemas.VotesSchema,
		schemas.StatisticsSchema,
	}

	for _, schemaFile := range schemaFiles {
		t.Run(schemaFile, func(t *testing.T) {
			data, err := fs.ReadFile(schemas.FS, schemaFile)
			require.NoError(t, err, "schema file should be embedded")

			var schemaObj map[string]interface{}
			require.NoError(t, json.Unmarshal(data, &schemaObj), "schema file should be valid JSON: %s", schemaFile)

			assert.Equal(t, "http://json-schema.org/draft-07/schema#", schemaObj["$schema"])
			assert.Equal(t, "object", schemaObj["type"])
			_, hasProps := schemaObj["properties"]
			assert.True(t, hasProps, "schema should declare properties")
		})
	}
}

func TestEmbeddedFS_OnlySchemas(t *testing.T) {
	matches, err := fs.Glob(schemas.FS, "*")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{schemas.StatisticsSchema, schemas.VotesSchema}, matches)
}
