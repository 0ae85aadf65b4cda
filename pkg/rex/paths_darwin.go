package rex

import (
	"path/filepath"
	"strings"
)

// LibraryCandidates lists where the library may live. dir is either the
// bundle itself or the folder that contains it.
func LibraryCandidates(dir string) []string {
	inBundle := filepath.Join("Contents", "MacOS", LibraryName)
	if strings.HasSuffix(strings.TrimRight(dir, "/"), ".bundle") {
		return []string{filepath.Join(dir, inBundle)}
	}
	return []string{
		filepath.Join(dir, LibraryName+".bundle", inBundle),
		filepath.Join(dir, inBundle),
	}
}
