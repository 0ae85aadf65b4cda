package rx2

import (
	"fmt"
	"io"

	"github.com/olivierh59500/rx2decoder/pkg/loop"
	"github.com/olivierh59500/rx2decoder/pkg/renoise"
	"github.com/olivierh59500/rx2decoder/pkg/rex"
)

func printHeader(w io.Writer, info rex.Info) {
	fmt.Fprintln(w, "=== Header Information ===")
	fmt.Fprintf(w, "Channels:          %d\n", info.Channels)
	fmt.Fprintf(w, "Sample Rate:       %d\n", info.SampleRate)
	fmt.Fprintf(w, "Slice Count:       %d\n", info.SliceCount)
	fmt.Fprintf(w, "Tempo:             %d (%.3f BPM)\n", info.Tempo, info.BPM())
	fmt.Fprintf(w, "Original Tempo:    %d (%.3f BPM)\n", info.OriginalTempo, info.OriginalBPM())
	fmt.Fprintf(w, "Loop Length (PPQ): %d\n", info.PPQLength)
	fmt.Fprintf(w, "Time Signature:    %d/%d\n", info.TimeSignNom, info.TimeSignDenom)
	fmt.Fprintf(w, "Bit Depth:         %d\n", info.BitDepth)
	fmt.Fprintln(w, "==========================")
}

func printCreator(w io.Writer, c *rex.CreatorInfo) {
	if c == nil {
		fmt.Fprintln(w, "No creator information available.")
		return
	}
	fmt.Fprintln(w, "=== Creator Information ===")
	fmt.Fprintf(w, "Name:      %s\n", c.Name)
	fmt.Fprintf(w, "Copyright: %s\n", c.Copyright)
	fmt.Fprintf(w, "URL:       %s\n", c.URL)
	fmt.Fprintf(w, "Email:     %s\n", c.Email)
	fmt.Fprintf(w, "FreeText:  %s\n", c.FreeText)
	fmt.Fprintln(w, "===========================")
}

func printSlices(w io.Writer, slices []rex.SliceInfo) {
	fmt.Fprintln(w, "=== Slice Information ===")
	for _, s := range slices {
		fmt.Fprintf(w, "Slice %03d: PPQ Position = %d, Sample Length = %d\n", s.Index+1, s.PPQPos, s.SampleLength)
	}
	fmt.Fprintln(w, "=========================")
}

func printTimeline(w io.Writer, tl loop.Timeline) {
	fmt.Fprintf(w, "Full loop: %.6f seconds, %d frames\n", tl.Duration, tl.TotalFrames)
}

func printMarkers(w io.Writer, markers []int) {
	fmt.Fprintln(w, "Slice marker insertion lines:")
	for _, m := range markers {
		fmt.Fprintln(w, renoise.MarkerCommand(m))
	}
}
