package rex

import "path/filepath"

// LibraryCandidates lists where the library may live.
func LibraryCandidates(dir string) []string {
	return []string{filepath.Join(dir, LibraryName+".dll")}
}
