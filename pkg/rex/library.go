package rex

import (
	"fmt"
	"os"
)

// LibraryName is the base name of the shared library shipped with the SDK.
const LibraryName = "REX Shared Library"

// FindLibrary returns the first existing library candidate inside dir.
func FindLibrary(dir string) (string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return "", fmt.Errorf("SDK directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("SDK path %s is not a directory", dir)
	}

	for _, path := range LibraryCandidates(dir) {
		if fi, err := os.Stat(path); err == nil && !fi.IsDir() {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w in %s", ErrLibraryNotFound, dir)
}
