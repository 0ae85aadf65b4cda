package rx2

import (
	"fmt"
	"path/filepath"
	"strings"
)

// BaseName strips the extension of the final path element: everything from
// its last '.' on. Dots in directory names are left alone.
func BaseName(path string) string {
	dir, file := filepath.Split(path)
	if i := strings.LastIndexByte(file, '.'); i >= 0 {
		file = file[:i]
	}
	return dir + file
}

// SliceFileName names the file for the slice with SDK index index. Files are
// numbered from 1.
func SliceFileName(base string, index int) string {
	return fmt.Sprintf("%s_slice%03d.wav", base, index+1)
}
