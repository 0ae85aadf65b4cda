package rx2

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Report is the YAML metadata written next to the audio files.
type Report struct {
	Source  string         `yaml:"source,omitempty"`
	Header  ReportHeader   `yaml:"header"`
	Creator *ReportCreator `yaml:"creator,omitempty"`
	Loop    ReportLoop     `yaml:"loop"`
	Slices  []ReportSlice  `yaml:"slices"`
}

type ReportHeader struct {
	Channels      int     `yaml:"channels"`
	SampleRate    int     `yaml:"sample_rate"`
	SliceCount    int     `yaml:"slice_count"`
	Tempo         float64 `yaml:"tempo"`
	OriginalTempo float64 `yaml:"original_tempo"`
	PPQLength     int     `yaml:"ppq_length"`
	TimeSignature string  `yaml:"time_signature"`
	BitDepth      int     `yaml:"bit_depth"`
}

type ReportCreator struct {
	Name      string `yaml:"name,omitempty"`
	Copyright string `yaml:"copyright,omitempty"`
	URL       string `yaml:"url,omitempty"`
	Email     string `yaml:"email,omitempty"`
	FreeText  string `yaml:"free_text,omitempty"`
}

type ReportLoop struct {
	File        string  `yaml:"file"`
	TotalFrames int     `yaml:"total_frames"`
	Duration    float64 `yaml:"duration_seconds"`
	Markers     string  `yaml:"markers_file"`
}

type ReportSlice struct {
	Number       int    `yaml:"number"`
	PPQPos       int    `yaml:"ppq_pos"`
	SampleLength int    `yaml:"sample_length"`
	Offset       int    `yaml:"offset"`
	Marker       int    `yaml:"marker"`
	Rendered     bool   `yaml:"rendered"`
	File         string `yaml:"file,omitempty"`
	Error        string `yaml:"error,omitempty"`
}

// NewReport summarizes an extraction.
func NewReport(res *Result, opts Options) *Report {
	info := res.Info
	r := &Report{
		Source: opts.InputPath,
		Header: ReportHeader{
			Channels:      info.Channels,
			SampleRate:    info.SampleRate,
			SliceCount:    info.SliceCount,
			Tempo:         info.BPM(),
			OriginalTempo: info.OriginalBPM(),
			PPQLength:     info.PPQLength,
			TimeSignature: formatTimeSignature(info.TimeSignNom, info.TimeSignDenom),
			BitDepth:      info.BitDepth,
		},
		Loop: ReportLoop{
			File:        opts.OutputPath,
			TotalFrames: res.Timeline.TotalFrames,
			Duration:    res.Timeline.Duration,
			Markers:     opts.MarkersPath,
		},
		Slices: make([]ReportSlice, 0, len(res.Slices)),
	}

	if c := res.Creator; c != nil {
		r.Creator = &ReportCreator{
			Name:      c.Name,
			Copyright: c.Copyright,
			URL:       c.URL,
			Email:     c.Email,
			FreeText:  c.FreeText,
		}
	}

	for _, s := range res.Slices {
		rs := ReportSlice{
			Number:       s.Index + 1,
			PPQPos:       s.PPQPos,
			SampleLength: s.SampleLength,
			Offset:       s.Offset,
			Marker:       s.Marker,
			Rendered:     s.Rendered,
			File:         s.File,
		}
		if s.Err != nil {
			rs.Error = s.Err.Error()
		}
		r.Slices = append(r.Slices, rs)
	}
	return r
}

// WriteReport encodes r as YAML into path.
func WriteReport(path string, r *Report) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	enc := yaml.NewEncoder(f)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		f.Close()
		return err
	}
	if err := enc.Close(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ReadReport decodes a report written by WriteReport.
func ReadReport(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var r Report
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func formatTimeSignature(nom, denom int) string {
	return fmt.Sprintf("%d/%d", nom, denom)
}
