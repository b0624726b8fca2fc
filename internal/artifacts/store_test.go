package artifacts

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/legislative-tracker/internal/types"
)

func record(fields ...string) types.Record {
	var r types.Record
	for i := 0; i+1 < len(fields); i += 2 {
		r.SetString(fields[i], fields[i+1])
	}
	return r
}

func TestSaveJSON_LiteralAndIndented(t *testing.T) {
	store := NewFileStore(t.TempDir())

	data := map[string]any{"descripcion": "Sesión & votación <especial>"}
	require.NoError(t, store.SaveJSON(data, "docs/data/test.json"))

	content, err := os.ReadFile(store.Resolve("docs/data/test.json"))
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"descripcion\": \"Sesión & votación <especial>\"\n}\n", string(content))
}

func TestSaveJSON_RecordOrderPreserved(t *testing.T) {
	store := NewFileStore(t.TempDir())

	r := record("Tipo", "General", "ID", "7")
	r.Set("Quorum", nil)
	require.NoError(t, store.SaveJSON([]types.Record{r}, "votes.json"))

	content, err := os.ReadFile(store.Resolve("votes.json"))
	require.NoError(t, err)
	assert.Equal(t, "[\n  {\n    \"Tipo\": \"General\",\n    \"ID\": \"7\",\n    \"Quorum\": null\n  }\n]\n", string(content))
}

func TestSaveText_AbsolutePathBypassesRoot(t *testing.T) {
	root := t.TempDir()
	other := filepath.Join(t.TempDir(), "nested", "README.md")

	store := NewFileStore(root)
	require.NoError(t, store.SaveText("# hola\n", other))

	content, err := os.ReadFile(other)
	require.NoError(t, err)
	assert.Equal(t, "# hola\n", string(content))
}

func TestSaveText_Permissions(t *testing.T) {
	store := NewFileStore(t.TempDir())
	require.NoError(t, store.SaveText("x", "site/data/README.md"))

	info, err := os.Stat(store.Resolve("site/data/README.md"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())

	dir, err := os.Stat(store.Resolve("site/data"))
	require.NoError(t, err)
	assert.True(t, dir.IsDir())
}

func TestSaveCSV_UnionHeader(t *testing.T) {
	store := NewFileStore(t.TempDir())

	withNull := record("ID", "3")
	withNull.Set("Descripcion", nil)
	records := []types.Record{
		record("ID", "1", "Fecha", "2024-01-01"),
		record("ID", "2", "Descripcion", "Ley, artículo 1"),
		withNull,
	}

	require.NoError(t, store.SaveCSV(records, "out/votaciones.csv"))

	content, err := os.ReadFile(store.Resolve("out/votaciones.csv"))
	require.NoError(t, err)
	assert.Equal(t, "ID,Fecha,Descripcion\n1,2024-01-01,\n2,,\"Ley, artículo 1\"\n3,,\n", string(content))
}

func TestLoadRecords_ArrayAndBundle(t *testing.T) {
	store := NewFileStore(t.TempDir())

	require.NoError(t, store.SaveText(`[{"ID":"1","Fecha":"2024-01-01"},{"ID":"2"}]`, "array.json"))
	records, err := store.LoadRecords("array.json")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, []string{"ID", "Fecha"}, records[0].Keys())

	bundle := `{"metadata":{"total_votaciones":1},"votaciones":[{"B":"x","A":null}]}`
	require.NoError(t, store.SaveText(bundle, "bundle.json"))
	records, err = store.LoadRecords("bundle.json")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, []string{"B", "A"}, records[0].Keys())
}

func TestLoadRecords_Errors(t *testing.T) {
	store := NewFileStore(t.TempDir())

	_, err := store.LoadRecords("missing.json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read")

	require.NoError(t, store.SaveText(`{ invalid`, "bad.json"))
	_, err = store.LoadRecords("bad.json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse")

	require.NoError(t, store.SaveText(`null`, "null.json"))
	records, err := store.LoadRecords("null.json")
	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)
}

func TestReadText(t *testing.T) {
	store := NewFileStore(t.TempDir())
	require.NoError(t, store.SaveText("<Votaciones/>", "raw/a.xml"))

	text, err := store.ReadText("raw/a.xml")
	require.NoError(t, err)
	assert.Equal(t, "<Votaciones/>", text)

	_, err = store.ReadText("raw/missing.xml")
	assert.Error(t, err)
}
