package audio

import (
	"errors"
	"sync"
)

// Output interface for audio output implementations. Samples are interleaved
// float32 frames.
type Output interface {
	Open(sampleRate, channels, bufferSize int) error
	Close() error
	Write(samples []float32) error
	IsPlaying() bool
}

// Play streams per-channel samples to out in chunks of bufferFrames frames,
// repeating the whole buffer loops times. The output must already be open
// with len(channels) channels.
func Play(out Output, channels [][]float32, bufferFrames, loops int) error {
	if len(channels) == 0 {
		return errors.New("no channels to play")
	}
	if bufferFrames <= 0 {
		bufferFrames = 2048
	}

	frames := len(channels[0])
	for _, ch := range channels[1:] {
		frames = min(frames, len(ch))
	}

	nch := len(channels)
	chunk := make([]float32, bufferFrames*nch)

	for range max(loops, 1) {
		for start := 0; start < frames; start += bufferFrames {
			n := min(bufferFrames, frames-start)
			for i := 0; i < n; i++ {
				for ch := 0; ch < nch; ch++ {
					chunk[i*nch+ch] = channels[ch][start+i]
				}
			}
			if err := out.Write(chunk[:n*nch]); err != nil {
				return err
			}
		}
	}
	return nil
}

// BufferOutput collects everything written to it. Tests use it to check what
// a preview would have played.
type BufferOutput struct {
	samples  []float32
	channels int
	open     bool
	mu       sync.Mutex
}

// NewBufferOutput creates a new buffer output
func NewBufferOutput() *BufferOutput {
	return &BufferOutput{}
}

// Open starts a new capture, reserving room for bufferSize frames.
func (b *BufferOutput) Open(sampleRate, channels, bufferSize int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.channels = channels
	b.samples = make([]float32, 0, bufferSize*channels)
	b.open = true
	return nil
}

// Close stops the capture. Captured samples stay readable.
func (b *BufferOutput) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.open = false
	return nil
}

// Write appends samples. They are copied because callers reuse their chunk.
func (b *BufferOutput) Write(samples []float32) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.open {
		return errors.New("buffer output not open")
	}

	b.samples = append(b.samples, samples...)
	return nil
}

func (b *BufferOutput) IsPlaying() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.open
}

// Samples returns a copy of the captured interleaved samples.
func (b *BufferOutput) Samples() []float32 {
	b.mu.Lock()
	defer b.mu.Unlock()

	result := make([]float32, len(b.samples))
	copy(result, b.samples)
	return result
}

// Frames returns the number of complete frames captured.
func (b *BufferOutput) Frames() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.channels == 0 {
		return 0
	}
	return len(b.samples) / b.channels
}

// Clear drops the captured samples and keeps the output open.
func (b *BufferOutput) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.samples = b.samples[:0]
}

// Channels returns the channel count the output was opened with.
func (b *BufferOutput) Channels() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.channels
}
