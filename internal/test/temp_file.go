package test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// CreateTempFile creates a temporary file with the given content.
// The file is removed at the end of the test.
func CreateTempFile(t *testing.T, byts []byte) string {
	fpath := filepath.Join(t.TempDir(), "ingest.yml")
	err := os.WriteFile(fpath, byts, 0o644)
	require.NoError(t, err)
	return fpath
}
