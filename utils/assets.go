package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
)

// TempFilePrefix prefixes every temporary asset file written by this process.
const TempFilePrefix = "fieldmates-"

// WriteTempFile writes data to a file in the system temp directory and returns
// its path. The file name is derived from the content, so writing the same
// bytes twice yields the same path.
func WriteTempFile(data []byte, ext string) (string, error) {
	sum := sha256.Sum256(data)
	name := TempFilePrefix + hex.EncodeToString(sum[:])
	if ext != "" {
		name += "." + ext
	}
	path := filepath.Join(os.TempDir(), name)

	if existing, err := os.ReadFile(path); err == nil && len(existing) == len(data) {
		return path, nil
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", fmt.Errorf("write temp file %q: %w", path, err)
	}
	return path, nil
}
