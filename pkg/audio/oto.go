package audio

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
)

const bytesPerSample = 4

var (
	// Global Oto context singleton
	globalOtoMutex sync.Mutex
	globalContext  *oto.Context
	globalRate     int
	globalChannels int
)

// player is the part of *oto.Player the streaming output drives.
type player interface {
	Play()
	IsPlaying() bool
	Close() error
}

// newPlayer creates a player reading from r on the process-wide context.
// Oto allows a single context per process, so every later call must use the
// same rate and channel count.
var newPlayer = func(sampleRate, channels, bufferSize int, r io.Reader) (player, error) {
	globalOtoMutex.Lock()
	defer globalOtoMutex.Unlock()

	if globalContext == nil {
		op := &oto.NewContextOptions{
			SampleRate:   sampleRate,
			ChannelCount: channels,
			Format:       oto.FormatFloat32LE,
			BufferSize:   time.Duration(bufferSize) * time.Second / time.Duration(sampleRate),
		}

		context, ready, err := oto.NewContext(op)
		if err != nil {
			return nil, fmt.Errorf("failed to create oto context: %w", err)
		}

		<-ready
		globalContext = context
		globalRate = sampleRate
		globalChannels = channels
	} else if globalRate != sampleRate || globalChannels != channels {
		return nil, fmt.Errorf("oto context is %d Hz/%d ch, cannot open %d Hz/%d ch",
			globalRate, globalChannels, sampleRate, channels)
	}

	return globalContext.NewPlayer(r), nil
}

// StreamingOtoOutput uses Oto v3 for cross-platform audio
type StreamingOtoOutput struct {
	player player
	writer *io.PipeWriter
	reader *io.PipeReader
	mu     sync.Mutex
	closed bool
	done   chan struct{}
}

// NewStreamingOtoOutput creates a new streaming Oto output
func NewStreamingOtoOutput() (*StreamingOtoOutput, error) {
	return &StreamingOtoOutput{}, nil
}

// Open opens the streaming audio output. Playback starts on its own
// goroutine; Open returns before any sample is written.
func (s *StreamingOtoOutput) Open(sampleRate, channels, bufferSize int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.player != nil {
		return fmt.Errorf("stream already open")
	}

	reader, writer := io.Pipe()
	p, err := newPlayer(sampleRate, channels, bufferSize, reader)
	if err != nil {
		reader.Close()
		return err
	}

	s.reader, s.writer = reader, writer
	s.player = p
	s.closed = false
	s.done = make(chan struct{})

	go s.watch(p, s.done)

	return nil
}

// watch starts the player and closes done once it has drained the pipe.
// On Windows oto fills its buffer inside Play, which blocks until the first
// Write.
func (s *StreamingOtoOutput) watch(p player, done chan struct{}) {
	defer close(done)
	p.Play()
	for p.IsPlaying() {
		time.Sleep(10 * time.Millisecond)
	}
}

// Close signals end of stream, waits for playback to drain and releases the
// player.
func (s *StreamingOtoOutput) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || s.player == nil {
		return nil
	}
	s.closed = true

	// Close writer first to signal EOF
	s.writer.Close()
	<-s.done

	err := s.player.Close()
	s.player = nil
	s.reader.Close()
	s.reader, s.writer = nil, nil
	return err
}

// Write writes interleaved samples to the stream
func (s *StreamingOtoOutput) Write(samples []float32) error {
	s.mu.Lock()
	if s.closed || s.writer == nil {
		s.mu.Unlock()
		return fmt.Errorf("stream not open")
	}
	writer := s.writer
	s.mu.Unlock()

	_, err := writer.Write(float32Bytes(samples))
	return err
}

// IsPlaying returns true if playing
func (s *StreamingOtoOutput) IsPlaying() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.closed && s.player != nil
}

func float32Bytes(samples []float32) []byte {
	buf := make([]byte, len(samples)*bytesPerSample)
	for i, v := range samples {
		binary.LittleEndian.PutUint32(buf[i*bytesPerSample:], math.Float32bits(v))
	}
	return buf
}

// FallbackOutput paces writes in real time without producing sound, for
// systems where no audio device can be opened.
type FallbackOutput struct {
	sampleRate int
	channels   int
	frames     int
	closed     bool
	mu         sync.Mutex
}

func NewFallbackOutput() (*FallbackOutput, error) {
	return &FallbackOutput{}, nil
}

func (f *FallbackOutput) Open(sampleRate, channels, bufferSize int) error {
	if sampleRate <= 0 || channels <= 0 {
		return fmt.Errorf("invalid stream format: %d Hz/%d ch", sampleRate, channels)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.sampleRate = sampleRate
	f.channels = channels
	f.frames = 0
	f.closed = false
	return nil
}

func (f *FallbackOutput) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.closed = true
	return nil
}

// Write sleeps for as long as the samples would take to play.
func (f *FallbackOutput) Write(samples []float32) error {
	f.mu.Lock()
	if f.closed || f.sampleRate == 0 {
		f.mu.Unlock()
		return fmt.Errorf("output closed")
	}
	frames := len(samples) / f.channels
	f.frames += frames
	sampleRate := f.sampleRate
	f.mu.Unlock()

	time.Sleep(time.Duration(frames) * time.Second / time.Duration(sampleRate))
	return nil
}

func (f *FallbackOutput) IsPlaying() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return !f.closed && f.sampleRate != 0
}

// Elapsed is the playback time written since Open.
func (f *FallbackOutput) Elapsed() time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sampleRate == 0 {
		return 0
	}
	return time.Duration(f.frames) * time.Second / time.Duration(f.sampleRate)
}
