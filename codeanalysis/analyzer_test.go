package codeanalysis

import (
	"os"
	"path/filepath"
	"testing"
	"toyshop/openapi"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func toyRoutes(t *testing.T) []openapi.Endpoint {
	t.Helper()
	return openapi.Endpoints(openapi.Document("localhost:3030"), "test").Endpoints
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestAnalyzeDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "src/toy.service.js", `
import axios from 'axios'
// axios.get('/api/ignored')
export const query = () => axios.get('/api/toy?pageIdx=0')
export const getById = (id) => axios.get(`+"`/api/toy/${id}`"+`)
export const remove = (id) => axios.delete(`+"`/api/toy/${id}`"+`)
export const save = (toy) => fetch('http://localhost:3030/api/toy', { method: 'put', body: JSON.stringify(toy) })
export const stats = () => fetch('api/toy/stats/labels')
export const page = () => fetch('/about')
`)
	writeFile(t, dir, "node_modules/lib/index.js", `fetch('/api/secret')`)
	writeFile(t, dir, "README.md", `fetch('/api/docs')`)

	res, err := AnalyzeDirectory(dir, toyRoutes(t))
	require.NoError(t, err)

	assert.Len(t, res.Files, 1)
	require.Len(t, res.Calls, 5)

	byKey := map[string]APICall{}
	for _, c := range res.Calls {
		byKey[c.Method+" "+c.URL] = c
	}
	assert.True(t, byKey["GET /api/toy"].Served)
	assert.True(t, byKey["GET /api/toy/${id}"].Served)
	assert.True(t, byKey["DELETE /api/toy/${id}"].Served)
	assert.True(t, byKey["PUT /api/toy"].Served)
	assert.Equal(t, "fetch", byKey["PUT /api/toy"].Type)
	assert.False(t, byKey["GET /api/toy/stats/labels"].Served)

	unserved := res.Unserved()
	require.Len(t, unserved, 1)
	assert.Equal(t, "/api/toy/stats/labels", unserved[0].URL)
	assert.Equal(t, 8, unserved[0].Line)
}

func TestMatchRoute(t *testing.T) {
	routes := toyRoutes(t)

	assert.True(t, MatchRoute("get", "/api/toy/abc123", routes))
	assert.True(t, MatchRoute("POST", "/api/toy", routes))
	assert.True(t, MatchRoute("GET", "/api/openapi.json", routes))
	assert.False(t, MatchRoute("POST", "/api/toy/abc123", routes))
	assert.False(t, MatchRoute("GET", "/api/toys", routes))
	assert.False(t, MatchRoute("GET", "/api/toy/a/b", routes))
}

func TestAPIPath(t *testing.T) {
	cases := map[string]string{
		"/api/toy":                        "/api/toy",
		"api/toy/":                        "/api/toy",
		"https://example.com/api/toy?x=1": "/api/toy",
		"/api/toy#top":                    "/api/toy",
	}
	for in, want := range cases {
		got, ok := apiPath(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}

	for _, in := range []string{"/about", "https://example.com", "not a url", "toy"} {
		_, ok := apiPath(in)
		assert.False(t, ok, in)
	}
}
