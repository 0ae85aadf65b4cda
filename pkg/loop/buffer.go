package loop

// Buffer is the full-loop output: one slice of samples per channel, all of
// the same length, zero until slices are placed.
type Buffer struct {
	Channels [][]float32
	Frames   int
}

// NewBuffer allocates a silent buffer.
func NewBuffer(channels, frames int) *Buffer {
	b := &Buffer{
		Channels: make([][]float32, channels),
		Frames:   frames,
	}
	for ch := range b.Channels {
		b.Channels[ch] = make([]float32, frames)
	}
	return b
}

// Place copies src into the buffer starting at frame offset and returns the
// number of frames written. Frames past the end are dropped. Existing samples
// are overwritten, not mixed.
//
// When src has fewer channels than the buffer, the last source channel feeds
// the remaining ones.
func (b *Buffer) Place(offset int, src [][]float32) int {
	if len(src) == 0 || offset >= b.Frames {
		return 0
	}

	n := 0
	for ch, dst := range b.Channels {
		in := src[min(ch, len(src)-1)]
		start, from := offset, 0
		if start < 0 {
			from = -start
			start = 0
		}
		if from >= len(in) {
			continue
		}
		n = copy(dst[start:], in[from:])
	}
	return n
}

// Stereo returns a two-channel view of the buffer. Mono buffers are aliased:
// both entries share channel 0's storage.
func (b *Buffer) Stereo() [][]float32 {
	switch len(b.Channels) {
	case 0:
		return nil
	case 1:
		return [][]float32{b.Channels[0], b.Channels[0]}
	default:
		return b.Channels[:2]
	}
}
