// Package renoise formats slice markers as Renoise Lua commands.
package renoise

import (
	"bufio"
	"fmt"
	"io"
	"os"
)

// MarkerCommand returns the command that inserts a slice marker at frame pos
// of the selected sample.
func MarkerCommand(pos int) string {
	return fmt.Sprintf("renoise.song().selected_sample:insert_slice_marker(%d)", pos)
}

// WriteMarkers writes one command per marker, in order, each terminated by
// a newline.
func WriteMarkers(w io.Writer, markers []int) error {
	bw := bufio.NewWriter(w)
	for _, m := range markers {
		if _, err := fmt.Fprintln(bw, MarkerCommand(m)); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteMarkersFile writes the marker commands to path.
func WriteMarkersFile(path string, markers []int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteMarkers(f, markers); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
