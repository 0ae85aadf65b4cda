// Package rx2 turns an open REX container into a full-loop WAV file, one WAV
// file per slice and a list of Renoise slice-marker commands.
package rx2

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/olivierh59500/rx2decoder/pkg/loop"
	"github.com/olivierh59500/rx2decoder/pkg/renoise"
	"github.com/olivierh59500/rx2decoder/pkg/rex"
	"github.com/olivierh59500/rx2decoder/pkg/wavfile"
)

// Source is an open container. *rex.Handle implements it.
type Source interface {
	Info() (rex.Info, error)
	Creator() (*rex.CreatorInfo, error)
	SliceInfo(index int) (rex.SliceInfo, error)
	RenderSlice(index, frames int, out [][]float32) error
}

// Options controls what Extract writes.
type Options struct {
	InputPath   string // only used in the metadata report
	OutputPath  string // full-loop WAV; per-slice files are named after it
	MarkersPath string
	MetaPath    string // YAML report, skipped when empty

	WriteSlices bool
	Verify      bool // read the full-loop file back after writing

	Log      *slog.Logger
	Progress io.Writer
}

func (o Options) withDefaults() Options {
	if o.Log == nil {
		o.Log = slog.Default()
	}
	if o.Progress == nil {
		o.Progress = io.Discard
	}
	return o
}

// SliceResult records what happened to one enumerated slice.
type SliceResult struct {
	rex.SliceInfo
	Offset   int
	Marker   int
	Rendered bool
	Placed   int    // frames copied into the full loop
	File     string // empty when no file was written
	Err      error
}

// Result is everything Extract computed.
type Result struct {
	Info     rex.Info
	Creator  *rex.CreatorInfo
	Timeline loop.Timeline
	Slices   []SliceResult
	Loop     *loop.Buffer
}

// Markers returns the emitted marker positions in slice order.
func (r *Result) Markers() []int {
	return r.Timeline.Markers
}

// Extract runs the whole conversion against src. Per-slice failures are
// logged and recorded in the result; header, timeline and full-loop or marker
// write failures are returned.
func Extract(src Source, opts Options) (*Result, error) {
	opts = opts.withDefaults()
	log := opts.Log

	info, err := src.Info()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMetadata, err)
	}
	printHeader(opts.Progress, info)

	res := &Result{Info: info}

	res.Creator, err = src.Creator()
	if err != nil {
		log.Warn("creator info unavailable", "err", err)
		res.Creator = nil
	}
	printCreator(opts.Progress, res.Creator)

	slices := enumerate(src, info, log)
	printSlices(opts.Progress, slices)

	res.Timeline, err = loop.Compute(info, slices)
	if err != nil {
		return res, err
	}
	printTimeline(opts.Progress, res.Timeline)

	res.Loop = loop.NewBuffer(info.Channels, res.Timeline.TotalFrames)
	res.Slices = make([]SliceResult, len(slices))
	base := BaseName(opts.OutputPath)

	for i, s := range slices {
		sr := &res.Slices[i]
		sr.SliceInfo = s
		sr.Offset = res.Timeline.Offsets[i]
		sr.Marker = res.Timeline.Markers[i]
		if sr.Offset >= res.Timeline.TotalFrames {
			log.Debug("slice starts past loop end", "slice", s.Index+1, "offset", sr.Offset)
		}

		scratch := make([][]float32, info.Channels)
		for ch := range scratch {
			scratch[ch] = make([]float32, s.SampleLength)
		}

		if err := src.RenderSlice(s.Index, s.SampleLength, scratch); err != nil {
			sr.Err = fmt.Errorf("%w %d: %w", ErrRender, s.Index+1, err)
			log.Error("render failed", "slice", s.Index+1, "err", err)
			continue
		}
		sr.Rendered = true

		if opts.WriteSlices {
			path := SliceFileName(base, s.Index)
			if err := writeWAV(path, info.SampleRate, scratch, s.SampleLength); err != nil {
				sr.Err = err
				log.Error("failed to write slice file", "path", path, "err", err)
			} else {
				sr.File = path
				fmt.Fprintf(opts.Progress, "Slice %03d saved as %s, marker: %d, length: %d frames\n",
					s.Index+1, path, sr.Marker, s.SampleLength)
			}
		}

		sr.Placed = res.Loop.Place(sr.Offset, scratch)
		fmt.Fprintf(opts.Progress, "Placing slice %03d at output sample index: %d\n", s.Index+1, sr.Offset)
	}

	var errs []error

	if err := writeWAV(opts.OutputPath, info.SampleRate, res.Loop.Channels, res.Loop.Frames); err != nil {
		log.Error("failed to write full loop", "path", opts.OutputPath, "err", err)
		errs = append(errs, err)
	} else {
		fmt.Fprintf(opts.Progress, "Full loop written to: %s\n", opts.OutputPath)
		if opts.Verify {
			if err := Verify(opts.OutputPath, info, res.Loop.Frames); err != nil {
				log.Error("full loop verification failed", "path", opts.OutputPath, "err", err)
				errs = append(errs, err)
			}
		}
	}

	printMarkers(opts.Progress, res.Markers())
	if err := renoise.WriteMarkersFile(opts.MarkersPath, res.Markers()); err != nil {
		log.Error("failed to write marker commands", "path", opts.MarkersPath, "err", err)
		errs = append(errs, fmt.Errorf("%w: %w", ErrWrite, err))
	} else {
		fmt.Fprintf(opts.Progress, "Renoise slice commands written to: %s\n", opts.MarkersPath)
	}

	if opts.MetaPath != "" {
		if err := WriteReport(opts.MetaPath, NewReport(res, opts)); err != nil {
			log.Error("failed to write metadata", "path", opts.MetaPath, "err", err)
			errs = append(errs, fmt.Errorf("%w: %w", ErrWrite, err))
		}
	}

	return res, errors.Join(errs...)
}

// enumerate fetches slice metadata. Slices whose metadata cannot be read or
// is unusable are left out; the others keep their SDK index.
func enumerate(src Source, info rex.Info, log *slog.Logger) []rex.SliceInfo {
	slices := make([]rex.SliceInfo, 0, max(info.SliceCount, 0))
	for i := 0; i < info.SliceCount; i++ {
		s, err := src.SliceInfo(i)
		if err != nil {
			log.Error("slice info failed", "index", i, "err", fmt.Errorf("%w: %w", ErrSliceMeta, err))
			continue
		}
		if s.SampleLength < 0 {
			log.Error("slice info failed", "index", i,
				"err", fmt.Errorf("%w: negative sample length %d", ErrSliceMeta, s.SampleLength))
			continue
		}
		s.Index = i
		slices = append(slices, s)
	}
	return slices
}

func writeWAV(path string, sampleRate int, channels [][]float32, frames int) error {
	buf, err := wavfile.Interleave(sampleRate, channels, frames)
	if err == nil {
		err = wavfile.WriteFile(path, buf)
	}
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	return nil
}

// Verify reads path back and checks it against the header and frame count.
func Verify(path string, info rex.Info, frames int) error {
	buf, err := wavfile.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrVerify, err)
	}

	switch got := buf.Format; {
	case got.NumChannels != info.Channels:
		return fmt.Errorf("%w: %d channels, want %d", ErrVerify, got.NumChannels, info.Channels)
	case got.SampleRate != info.SampleRate:
		return fmt.Errorf("%w: sample rate %d, want %d", ErrVerify, got.SampleRate, info.SampleRate)
	case wavfile.Frames(buf) != frames:
		return fmt.Errorf("%w: %d frames, want %d", ErrVerify, wavfile.Frames(buf), frames)
	}
	return nil
}
