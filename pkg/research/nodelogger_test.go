package research

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNodeLoggerWritesRequestAndResponse(t *testing.T) {
	dir := t.TempDir()
	l := NewNodeLogger(dir)
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	require.NoError(t, l.LogRequest(at, "static+history text"))
	require.NoError(t, l.LogResponse(at, "model response text"))

	entries, err := os.ReadDir(filepath.Join(dir, "logs_and_debug"))
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}
