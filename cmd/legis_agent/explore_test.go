package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecuteExplore_XML(t *testing.T) {
	in := filepath.Join(t.TempDir(), "raw.xml")
	writeTestFile(t, in, votesXML(
		voteXML("1", "2024-01-02", "Aprobado"),
		voteXML("2", "2023-05-06", "Rechazado"),
	))

	var out bytes.Buffer
	require.NoError(t, executeExplore(in, "", discardLogger(), &out))

	output := out.String()
	assert.Contains(t, output, "XML STRUCTURE")
	assert.Contains(t, output, "Root:      Votaciones")
	assert.Contains(t, output, "NORMALIZED VOTES")
	assert.Contains(t, output, "VOTE STATISTICS")
	assert.Contains(t, output, "FIELD SUMMARY")
	assert.Contains(t, output, "• Resultado: 2 unique, 0 null")
}

func TestExecuteExplore_JSON(t *testing.T) {
	in := filepath.Join(t.TempDir(), "votes.json")
	writeTestFile(t, in, `[{"ID":"1","FechaSesion":"2024-01-02"},{"ID":"2","FechaSesion":null}]`)

	var out bytes.Buffer
	require.NoError(t, executeExplore(in, "", discardLogger(), &out))

	output := out.String()
	assert.NotContains(t, output, "XML STRUCTURE")
	assert.Contains(t, output, "Total votes: 2")
	assert.Contains(t, output, "• FechaSesion: 1 unique, 1 null")
}

func TestExecuteExplore_Errors(t *testing.T) {
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad.xml")
	writeTestFile(t, bad, "<a><b></a>")
	err := executeExplore(bad, "", discardLogger(), &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to inspect")

	empty := filepath.Join(dir, "empty.json")
	writeTestFile(t, empty, "[]")
	var out bytes.Buffer
	require.NoError(t, executeExplore(empty, "", discardLogger(), &out))
	assert.Contains(t, out.String(), "No votes found")
}
