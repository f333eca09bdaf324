package cli

import (
	"bytes"
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"
	"toyshop/openapi"
	"toyshop/toy"

	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	color.NoColor = true
}

func memoryOpener(t *testing.T) (Opener, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "toy.json")
	return func(ctx context.Context) (toy.Store, error) {
		return toy.NewMemoryStore(path, 6)
	}, path
}

func findCommand(t *testing.T, open Opener, name string) *cobra.Command {
	t.Helper()
	for _, cmd := range CreateCLICommands(open) {
		if cmd.Name() == name {
			return cmd
		}
	}
	t.Fatalf("command %q not registered", name)
	return nil
}

func TestSeedAndList(t *testing.T) {
	ctx := context.Background()
	s, err := toy.NewMemoryStore("", 6)
	require.NoError(t, err)

	n, err := SeedToys(ctx, s)
	require.NoError(t, err)
	assert.Equal(t, 8, n)

	var buf bytes.Buffer
	err = listToys(ctx, s, &buf, listFlags{labels: []string{"Baby"}, sort: "price", desc: true})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "Found 3 toy(s)")
	assert.Contains(t, out, "Talking Doll")
	assert.Contains(t, out, "Wooden Train")
	assert.Contains(t, out, "Teddy Bear")
	assert.NotContains(t, out, "Race Car")
	assert.Less(t, bytes.Index(buf.Bytes(), []byte("Talking Doll")), bytes.Index(buf.Bytes(), []byte("Teddy Bear")))
}

func TestListEmptyAndInvalid(t *testing.T) {
	ctx := context.Background()
	s, err := toy.NewMemoryStore("", 6)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, listToys(ctx, s, &buf, listFlags{}))
	assert.Contains(t, buf.String(), "No toys found")

	err = listToys(ctx, s, &buf, listFlags{sort: "color"})
	assert.True(t, errors.Is(err, toy.ErrInvalidQuery))
}

func TestRenderToysNaNPrice(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, renderToys(&buf, []toy.Toy{{ID: "x1", Name: "Odd", Price: toy.Price(math.NaN())}}))
	assert.Contains(t, buf.String(), "NaN")
	assert.Contains(t, buf.String(), "x1")
}

func TestRemoveToyWithoutPrompt(t *testing.T) {
	ctx := context.Background()
	s, err := toy.NewMemoryStore("", 6)
	require.NoError(t, err)
	saved, err := s.Save(ctx, toy.Toy{Name: "Drum"})
	require.NoError(t, err)

	require.NoError(t, removeToy(ctx, s, saved.ID, true))

	_, err = s.Get(ctx, saved.ID)
	assert.True(t, errors.Is(err, toy.ErrNotFound))

	assert.Error(t, removeToy(ctx, s, saved.ID, true))
}

func TestSeedCommandPersists(t *testing.T) {
	open, _ := memoryOpener(t)

	seed := findCommand(t, open, "seed")
	list := findCommand(t, open, "toys")
	require.NoError(t, seed.RunE(seed, nil))

	var buf bytes.Buffer
	list.SetOut(&buf)
	list.SetArgs([]string{"list", "--txt", "kite"})
	require.NoError(t, list.Execute())
	assert.Contains(t, buf.String(), "Found 1 toy(s)")
}

func TestRoutesCommand(t *testing.T) {
	open, _ := memoryOpener(t)
	routes := findCommand(t, open, "routes")

	var buf bytes.Buffer
	routes.SetOut(&buf)
	routes.SetArgs([]string{"--host", "toys.local:8080"})
	require.NoError(t, routes.Execute())

	out := buf.String()
	assert.Contains(t, out, "API: Toy API (v1.0.0)")
	assert.Contains(t, out, "http://toys.local:8080/api/toy/{toyId}")
}

func TestRenderEndpointsTruncatesSummary(t *testing.T) {
	found := &openapi.DiscoveredEndpoints{
		Endpoints: []openapi.Endpoint{{Method: "GET", Path: "/x", Description: "a very long description that keeps going well past fifty characters"}},
	}
	var buf bytes.Buffer
	require.NoError(t, renderEndpoints(&buf, found))
	assert.Contains(t, buf.String(), "...")
}

func TestAuditFrontend(t *testing.T) {
	dir := t.TempDir()
	src := "const a = () => fetch('/api/toy')\nconst b = () => fetch('/api/toy/export', { method: 'POST' })\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.js"), []byte(src), 0o644))

	var buf bytes.Buffer
	unserved, err := auditFrontend(&buf, dir)
	require.NoError(t, err)
	assert.Equal(t, 1, unserved)
	assert.Contains(t, buf.String(), "/api/toy/export")
	assert.Contains(t, buf.String(), "NO")
}
