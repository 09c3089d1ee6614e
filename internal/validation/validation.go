package validation

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// IsValidPath checks if a given path exists and is a file or directory.
func IsValidPath(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return fmt.Errorf("path does not exist: %s", path)
	}
	if err != nil {
		return fmt.Errorf("error checking path %s: %w", path, err)
	}

	if !info.IsDir() && !info.Mode().IsRegular() {
		return fmt.Errorf("path %s is neither a file nor a directory", path)
	}

	return nil
}

// IsValidOutputFormat checks that a ledger path ends in a supported extension.
func IsValidOutputFormat(path string) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".tsv":
		return nil
	default:
		return fmt.Errorf("unsupported output format: %s. Supported formats are '.csv', '.tsv'", path)
	}
}

// IsValidFilePermissions checks that a secret file is not readable by others.
func IsValidFilePermissions(mode os.FileMode) error {
	if mode&0007 != 0 {
		return fmt.Errorf("file permissions are too permissive: %s. Recommended 0600 or 0640", mode.String())
	}
	return nil
}
