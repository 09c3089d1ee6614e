package validation_test

import (
	"os"
	"path/filepath"
	"testing"

	"rbc2mm/internal/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsValidPath(t *testing.T) {
	tmpDir := t.TempDir()
	testFile := filepath.Join(tmpDir, "test.csv")
	require.NoError(t, os.WriteFile(testFile, []byte("test"), 0600))

	tests := []struct {
		name        string
		path        string
		expectError bool
		errContains string
	}{
		{name: "File", path: testFile},
		{name: "Directory", path: tmpDir},
		{name: "Non-existent path", path: filepath.Join(tmpDir, "missing.csv"), expectError: true, errContains: "path does not exist"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validation.IsValidPath(tt.path)
			if tt.expectError {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContains)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestIsValidOutputFormat(t *testing.T) {
	assert.NoError(t, validation.IsValidOutputFormat("Funds.tsv"))
	assert.NoError(t, validation.IsValidOutputFormat("out/ledger.CSV"))

	err := validation.IsValidOutputFormat("ledger.json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported output format")
}

func TestIsValidFilePermissions(t *testing.T) {
	assert.NoError(t, validation.IsValidFilePermissions(0600))
	assert.NoError(t, validation.IsValidFilePermissions(0640))
	assert.Error(t, validation.IsValidFilePermissions(0644))
	assert.Error(t, validation.IsValidFilePermissions(0777))
}
