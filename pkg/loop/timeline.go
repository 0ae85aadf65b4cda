// Package loop rebuilds the sample-domain layout of a sliced loop from its
// musical metadata.
//
// The musical length of the loop is authoritative: the total frame count is
// derived from tempo and PPQ length, and every slice offset is a fraction of
// that total. Rounding uses math.Round (nearest, halves away from zero).
package loop

import (
	"errors"
	"fmt"
	"math"

	"github.com/olivierh59500/rx2decoder/pkg/rex"
)

// ErrMalformed reports header values that cannot describe a loop.
var ErrMalformed = errors.New("malformed container")

// Timeline is the computed layout of a loop.
type Timeline struct {
	TotalFrames int
	Duration    float64 // seconds

	// Offsets[i] is where slice i is placed. Markers[i] is the same value
	// clamped to at least 1, because the host treats position 0 as an
	// implicit boundary.
	Offsets []int
	Markers []int
}

// Validate checks the header fields the timeline depends on.
func Validate(info rex.Info) error {
	switch {
	case info.Tempo <= 0:
		return fmt.Errorf("%w: tempo %d", ErrMalformed, info.Tempo)
	case info.PPQLength <= 0:
		return fmt.Errorf("%w: loop length %d PPQ", ErrMalformed, info.PPQLength)
	case info.SampleRate <= 0:
		return fmt.Errorf("%w: sample rate %d", ErrMalformed, info.SampleRate)
	case info.Channels != 1 && info.Channels != 2:
		return fmt.Errorf("%w: %d channels", ErrMalformed, info.Channels)
	}
	return nil
}

// Compute derives the loop length and the slice offsets and markers.
func Compute(info rex.Info, slices []rex.SliceInfo) (Timeline, error) {
	if err := Validate(info); err != nil {
		return Timeline{}, err
	}

	tl := Timeline{
		Duration: Duration(info),
		Offsets:  make([]int, len(slices)),
		Markers:  make([]int, len(slices)),
	}
	tl.TotalFrames = int(math.Round(float64(info.SampleRate) * tl.Duration))

	for i, s := range slices {
		off := Offset(s.PPQPos, info.PPQLength, tl.TotalFrames)
		tl.Offsets[i] = off
		tl.Markers[i] = Marker(off)
	}
	return tl, nil
}

// Duration returns the loop length in seconds.
func Duration(info rex.Info) float64 {
	bpm := float64(info.Tempo) / 1000.0
	quarters := float64(info.PPQLength) / rex.PPQResolution
	return (60.0 / bpm) * quarters
}

// Offset maps a PPQ position onto the frame timeline.
func Offset(ppqPos, ppqLength, totalFrames int) int {
	return int(math.Round(float64(ppqPos) / float64(ppqLength) * float64(totalFrames)))
}

// Marker clamps an offset to the first position the host accepts.
func Marker(offset int) int {
	return max(1, offset)
}
