package loop

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ramp(n int, start float32) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = start + float32(i)
	}
	return out
}

func TestNewBufferIsSilent(t *testing.T) {
	b := NewBuffer(2, 16)
	require.Len(t, b.Channels, 2)
	for _, ch := range b.Channels {
		require.Len(t, ch, 16)
		for _, v := range ch {
			assert.Zero(t, v)
		}
	}
}

func TestPlace(t *testing.T) {
	b := NewBuffer(2, 10)
	n := b.Place(3, [][]float32{ramp(4, 1), ramp(4, 11)})

	assert.Equal(t, 4, n)
	assert.Equal(t, []float32{0, 0, 0, 1, 2, 3, 4, 0, 0, 0}, b.Channels[0])
	assert.Equal(t, []float32{0, 0, 0, 11, 12, 13, 14, 0, 0, 0}, b.Channels[1])
}

func TestPlaceTruncatesAtEnd(t *testing.T) {
	b := NewBuffer(1, 6)

	assert.Equal(t, 2, b.Place(4, [][]float32{ramp(5, 1)}))
	assert.Equal(t, []float32{0, 0, 0, 0, 1, 2}, b.Channels[0])

	// An offset equal to the length writes nothing.
	assert.Equal(t, 0, b.Place(6, [][]float32{ramp(5, 1)}))
	assert.Equal(t, 0, b.Place(100, [][]float32{ramp(5, 1)}))
}

func TestPlaceLaterSliceWins(t *testing.T) {
	b := NewBuffer(1, 8)
	b.Place(0, [][]float32{{1, 1, 1, 1, 1}})
	b.Place(3, [][]float32{{2, 2, 2}})

	assert.Equal(t, []float32{1, 1, 1, 2, 2, 2, 0, 0}, b.Channels[0])
}

func TestPlaceMonoIntoStereo(t *testing.T) {
	b := NewBuffer(2, 4)
	b.Place(1, [][]float32{{5, 6}})

	assert.Equal(t, []float32{0, 5, 6, 0}, b.Channels[0])
	assert.Equal(t, []float32{0, 5, 6, 0}, b.Channels[1])
}

func TestPlaceEmptySource(t *testing.T) {
	b := NewBuffer(2, 4)
	assert.Equal(t, 0, b.Place(0, nil))
	assert.Equal(t, 0, b.Place(0, [][]float32{{}, {}}))
}

func TestUncoveredFramesStayZero(t *testing.T) {
	const frames = 1000
	b := NewBuffer(2, frames)

	windows := []struct{ off, n int }{{0, 100}, {250, 50}, {600, 120}, {990, 40}}
	covered := make([]bool, frames)
	for _, w := range windows {
		b.Place(w.off, [][]float32{ramp(w.n, 1), ramp(w.n, 1)})
		for j := w.off; j < w.off+w.n && j < frames; j++ {
			covered[j] = true
		}
	}

	for ch := range b.Channels {
		for j, v := range b.Channels[ch] {
			if covered[j] {
				assert.NotZero(t, v, "ch %d frame %d", ch, j)
			} else {
				assert.Zero(t, v, "ch %d frame %d", ch, j)
			}
		}
	}
}

func TestStereoAliasesMono(t *testing.T) {
	mono := NewBuffer(1, 3)
	st := mono.Stereo()
	require.Len(t, st, 2)

	mono.Channels[0][1] = 0.5
	assert.Equal(t, float32(0.5), st[0][1])
	assert.Equal(t, float32(0.5), st[1][1])

	stereo := NewBuffer(2, 3)
	st = stereo.Stereo()
	stereo.Channels[1][0] = 0.25
	assert.Equal(t, float32(0.25), st[1][0])
	assert.Zero(t, st[0][0])
}
