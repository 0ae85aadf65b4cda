package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/mitchellh/go-homedir"

	"github.com/olivierh59500/rx2decoder/pkg/audio"
	"github.com/olivierh59500/rx2decoder/pkg/rex"
	"github.com/olivierh59500/rx2decoder/pkg/rx2"
)

type config struct {
	input, output, markers, sdkDir string

	meta        string
	slices      bool
	verify      bool
	diagnostics bool
	preview     bool
	loops       int
	verbose     bool
	quiet       bool
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run returns the process exit status. Everything acquired here is released
// by defers before it returns.
func run(args []string, stdout, stderr io.Writer) int {
	cfg, err := parseArgs(args, stderr)
	if err != nil {
		return 1
	}

	level := slog.LevelInfo
	if cfg.verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	progress := stdout
	if cfg.quiet {
		progress = io.Discard
	}

	if err := convert(cfg, log, progress); err != nil {
		log.Error("conversion failed", "err", err)
		return 1
	}
	return 0
}

func parseArgs(args []string, stderr io.Writer) (*config, error) {
	cfg := &config{}

	fs := flag.NewFlagSet("rx2decoder", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&cfg.meta, "meta", "", "Write a YAML metadata report to this file")
	fs.BoolVar(&cfg.slices, "slices", true, "Write one WAV file per slice")
	fs.BoolVar(&cfg.verify, "verify", false, "Read the full-loop file back and check it")
	fs.BoolVar(&cfg.diagnostics, "diagnostics", true, "Print SDK directory diagnostics")
	fs.BoolVar(&cfg.preview, "preview", false, "Play the reconstructed loop when done")
	fs.IntVar(&cfg.loops, "loops", 1, "Number of times to play the loop with -preview")
	fs.BoolVar(&cfg.verbose, "v", false, "Verbose logging")
	fs.BoolVar(&cfg.quiet, "q", false, "Suppress progress output")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: rx2decoder [options] input.rx2 output.wav output.txt sdk_path\n\n")
		fmt.Fprintf(stderr, "RX2 decoder - Rebuild REX loops as WAV files and Renoise slice markers\n\n")
		fmt.Fprintf(stderr, "Options:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("%w: %w", rx2.ErrUsage, err)
	}
	if fs.NArg() != 4 {
		fs.Usage()
		return nil, fmt.Errorf("%w: expected 4 arguments, got %d", rx2.ErrUsage, fs.NArg())
	}

	paths := []*string{&cfg.input, &cfg.output, &cfg.markers, &cfg.sdkDir}
	for i, p := range paths {
		expanded, err := homedir.Expand(fs.Arg(i))
		if err != nil {
			return nil, fmt.Errorf("%w: %w", rx2.ErrUsage, err)
		}
		*p = expanded
	}
	if cfg.meta != "" {
		expanded, err := homedir.Expand(cfg.meta)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", rx2.ErrUsage, err)
		}
		cfg.meta = expanded
	}

	return cfg, nil
}

func convert(cfg *config, log *slog.Logger, progress io.Writer) error {
	if cfg.diagnostics {
		diag := rex.Diagnose(cfg.sdkDir)
		if diag.OK() {
			diag.Print(progress)
		}
		for _, problem := range diag.Problems() {
			log.Warn("SDK diagnostics", "problem", problem)
		}
	}

	data, err := os.ReadFile(cfg.input)
	if err != nil {
		return fmt.Errorf("%w: %w", rx2.ErrRead, err)
	}
	fmt.Fprintf(progress, "Loaded RX2 file: %s, size: %d bytes\n", cfg.input, len(data))

	sdk, err := rex.Load(cfg.sdkDir)
	if err != nil {
		return fmt.Errorf("%w: %w", rx2.ErrSDKInit, err)
	}
	defer sdk.Shutdown()
	log.Debug("SDK loaded", "path", sdk.Path())

	handle, err := sdk.Create(data)
	if err != nil {
		return fmt.Errorf("%w: %w", rx2.ErrContainerOpen, err)
	}
	defer handle.Delete()

	res, err := rx2.Extract(handle, rx2.Options{
		InputPath:   cfg.input,
		OutputPath:  cfg.output,
		MarkersPath: cfg.markers,
		MetaPath:    cfg.meta,
		WriteSlices: cfg.slices,
		Verify:      cfg.verify,
		Log:         log,
		Progress:    progress,
	})
	if err != nil {
		return err
	}

	if failed := countFailed(res); failed > 0 {
		log.Warn("some slices were skipped", "failed", failed, "total", len(res.Slices))
	}

	if cfg.preview {
		if err := preview(res, cfg.loops, progress); err != nil {
			log.Warn("preview failed", "err", err)
		}
	}
	return nil
}

func countFailed(res *rx2.Result) int {
	n := 0
	for _, s := range res.Slices {
		if !s.Rendered || errors.Is(s.Err, rx2.ErrWrite) {
			n++
		}
	}
	return n
}

// preview plays the loop in stereo; mono loops are heard on both sides.
func preview(res *rx2.Result, loops int, progress io.Writer) error {
	var out audio.Output
	out, err := audio.NewStreamingOtoOutput()
	if err != nil {
		return err
	}

	const bufferFrames = 2048
	if err := out.Open(res.Info.SampleRate, 2, bufferFrames); err != nil {
		fmt.Fprintf(progress, "Warning: Failed to create audio output (%v)\n", err)
		fmt.Fprintf(progress, "Falling back to timing-based output...\n")
		fallback, err := audio.NewFallbackOutput()
		if err != nil {
			return fmt.Errorf("failed to create fallback output: %w", err)
		}
		if err := fallback.Open(res.Info.SampleRate, 2, bufferFrames); err != nil {
			return err
		}
		out = fallback
	}
	defer out.Close()

	fmt.Fprintf(progress, "Playing loop (%d frames, %d time(s))...\n", res.Loop.Frames, max(loops, 1))
	if err := audio.Play(out, res.Loop.Stereo(), bufferFrames, loops); err != nil {
		return err
	}
	if fallback, ok := out.(*audio.FallbackOutput); ok {
		fmt.Fprintf(progress, "Silent playback finished after %s\n", fallback.Elapsed())
	}
	return nil
}
