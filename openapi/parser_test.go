package openapi

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentEndpoints(t *testing.T) {
	data, err := MarshalDocument("localhost:3030")
	require.NoError(t, err)

	found, err := ParseDocument(data, "builtin")
	require.NoError(t, err)

	assert.Equal(t, "Toy API", found.Info.Title)
	assert.Equal(t, []string{"http://localhost:3030/api"}, found.BaseURLs)

	var got []string
	for _, e := range found.Endpoints {
		got = append(got, e.Method+" "+e.Path)
	}
	assert.Equal(t, []string{
		"GET /openapi.json",
		"GET /toy",
		"POST /toy",
		"PUT /toy",
		"DELETE /toy/{toyId}",
		"GET /toy/{toyId}",
	}, got)

	assert.Equal(t, "http://localhost:3030/api/toy/{toyId}", found.Endpoints[4].FullURL)
	assert.Equal(t, []string{"toy"}, found.Endpoints[4].Tags)
}

func TestParseSpecFile(t *testing.T) {
	data, err := MarshalDocument("")
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "swagger.json")
	require.NoError(t, os.WriteFile(path, data, 0644))

	found, err := ParseSpecFile(path)
	require.NoError(t, err)
	assert.Equal(t, path, found.Source)
	assert.Equal(t, []string{"http://localhost/api"}, found.BaseURLs)
	assert.Len(t, found.Endpoints, 6)
}

func TestParseSpecFileMissing(t *testing.T) {
	_, err := ParseSpecFile(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}
