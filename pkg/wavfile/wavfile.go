// Package wavfile writes and reads 32-bit IEEE float WAV files.
package wavfile

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const (
	// FormatIEEEFloat is the WAVE format tag for floating point samples.
	FormatIEEEFloat = 3
	// BitsPerSample is fixed: samples are always float32.
	BitsPerSample = 32
	// HeaderSize is the size of the canonical RIFF/fmt/data header.
	HeaderSize = 44

	bytesPerSample = BitsPerSample / 8
)

var (
	ErrNoFormat    = errors.New("wavfile: buffer has no format")
	ErrTooLarge    = errors.New("wavfile: data exceeds 4 GiB")
	ErrNotFloat    = errors.New("wavfile: not a 32-bit float WAV file")
	ErrShortBuffer = errors.New("wavfile: channel shorter than frame count")
)

// Interleave packs per-channel samples into one frame-ordered buffer:
// frame 0 ch 0, frame 0 ch 1, frame 1 ch 0, ...
func Interleave(sampleRate int, channels [][]float32, frames int) (*audio.Float32Buffer, error) {
	nch := len(channels)
	for _, ch := range channels {
		if len(ch) < frames {
			return nil, ErrShortBuffer
		}
	}

	data := make([]float32, frames*nch)
	for i := 0; i < frames; i++ {
		for ch := 0; ch < nch; ch++ {
			data[i*nch+ch] = channels[ch][i]
		}
	}

	return &audio.Float32Buffer{
		Format: &audio.Format{
			NumChannels: nch,
			SampleRate:  sampleRate,
		},
		Data:           data,
		SourceBitDepth: BitsPerSample,
	}, nil
}

// Frames returns the number of whole frames in buf.
func Frames(buf *audio.Float32Buffer) int {
	if buf.Format == nil || buf.Format.NumChannels == 0 {
		return 0
	}
	return len(buf.Data) / buf.Format.NumChannels
}

// Encode writes buf as a complete WAV stream. Samples are written as they
// are; nothing is scaled or clipped.
func Encode(w io.Writer, buf *audio.Float32Buffer) error {
	if buf.Format == nil {
		return ErrNoFormat
	}

	channels := buf.Format.NumChannels
	sampleRate := buf.Format.SampleRate
	blockAlign := channels * bytesPerSample
	dataSize := uint64(Frames(buf)) * uint64(blockAlign)
	if dataSize+36 > math.MaxUint32 {
		return ErrTooLarge
	}

	header := make([]byte, HeaderSize)
	copy(header[0:4], "RIFF")
	binary.LittleEndian.PutUint32(header[4:8], uint32(36+dataSize))
	copy(header[8:12], "WAVE")
	copy(header[12:16], "fmt ")
	binary.LittleEndian.PutUint32(header[16:20], 16)
	binary.LittleEndian.PutUint16(header[20:22], FormatIEEEFloat)
	binary.LittleEndian.PutUint16(header[22:24], uint16(channels))
	binary.LittleEndian.PutUint32(header[24:28], uint32(sampleRate))
	binary.LittleEndian.PutUint32(header[28:32], uint32(sampleRate*blockAlign))
	binary.LittleEndian.PutUint16(header[32:34], uint16(blockAlign))
	binary.LittleEndian.PutUint16(header[34:36], BitsPerSample)
	copy(header[36:40], "data")
	binary.LittleEndian.PutUint32(header[40:44], uint32(dataSize))

	bw := bufio.NewWriter(w)
	if _, err := bw.Write(header); err != nil {
		return err
	}

	var sample [bytesPerSample]byte
	n := int(dataSize) / bytesPerSample
	for _, v := range buf.Data[:n] {
		binary.LittleEndian.PutUint32(sample[:], math.Float32bits(v))
		if _, err := bw.Write(sample[:]); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteFile creates path and encodes buf into it.
func WriteFile(path string, buf *audio.Float32Buffer) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Encode(f, buf); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}

// Read decodes a float WAV stream written by Encode, or any other
// 32-bit float WAV file.
func Read(r io.ReadSeeker) (*audio.Float32Buffer, error) {
	d := wav.NewDecoder(r)
	if err := d.FwdToPCM(); err != nil {
		return nil, err
	}
	if d.WavAudioFormat != FormatIEEEFloat || d.BitDepth != BitsPerSample {
		return nil, fmt.Errorf("%w: format %d, %d bits", ErrNotFloat, d.WavAudioFormat, d.BitDepth)
	}

	raw := make([]byte, d.PCMLen())
	if _, err := io.ReadFull(d.PCMChunk, raw); err != nil {
		return nil, fmt.Errorf("failed to read PCM data: %w", err)
	}

	data := make([]float32, len(raw)/bytesPerSample)
	for i := range data {
		data[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[i*bytesPerSample:]))
	}

	return &audio.Float32Buffer{
		Format:         d.Format(),
		Data:           data,
		SourceBitDepth: BitsPerSample,
	}, nil
}

// ReadFile opens path and decodes it with Read.
func ReadFile(path string) (*audio.Float32Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Read(f)
}
