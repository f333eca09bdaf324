package logger

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	color.NoColor = true
}

func TestLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriter(&buf)

	l.Info("server up")
	l.Warn("slow")
	l.Error("Cannot get toy", errors.New("toy not found"))
	l.Error("plain", nil)

	out := buf.String()
	assert.Contains(t, out, " - INFO - server up")
	assert.Contains(t, out, " - WARN - slow")
	assert.Contains(t, out, " - ERROR - Cannot get toy: toy not found")
	assert.Contains(t, out, " - ERROR - plain\n")
}

func TestLoggerFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "backend.log")
	l, err := New(path)
	require.NoError(t, err)

	l.Infof("listening on %d", 3030)
	require.NoError(t, l.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "INFO - listening on 3030")
}
