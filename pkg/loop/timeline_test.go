package loop

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olivierh59500/rx2decoder/pkg/rex"
)

func slicesAt(lengths []int, positions ...int) []rex.SliceInfo {
	out := make([]rex.SliceInfo, len(positions))
	for i, p := range positions {
		out[i] = rex.SliceInfo{Index: i, PPQPos: p, SampleLength: lengths[i%len(lengths)]}
	}
	return out
}

func TestComputeFourQuarterLoop(t *testing.T) {
	info := rex.Info{Channels: 2, SampleRate: 44100, SliceCount: 4, Tempo: 120000, PPQLength: 61440}

	tl, err := Compute(info, slicesAt([]int{22050}, 0, 15360, 30720, 46080))
	require.NoError(t, err)

	assert.Equal(t, 88200, tl.TotalFrames)
	assert.InDelta(t, 2.0, tl.Duration, 1e-12)
	assert.Equal(t, []int{0, 22050, 44100, 66150}, tl.Offsets)
	assert.Equal(t, []int{1, 22050, 44100, 66150}, tl.Markers)
}

func TestComputeMonoSingleSlice(t *testing.T) {
	info := rex.Info{Channels: 1, SampleRate: 48000, SliceCount: 1, Tempo: 60000, PPQLength: 15360}

	tl, err := Compute(info, slicesAt([]int{48000}, 0))
	require.NoError(t, err)

	assert.Equal(t, 48000, tl.TotalFrames)
	assert.Equal(t, []int{0}, tl.Offsets)
	assert.Equal(t, []int{1}, tl.Markers)
}

func TestComputeNoSlices(t *testing.T) {
	info := rex.Info{Channels: 2, SampleRate: 44100, Tempo: 140000, PPQLength: 15360}

	tl, err := Compute(info, nil)
	require.NoError(t, err)

	assert.Equal(t, 18900, tl.TotalFrames)
	assert.Empty(t, tl.Offsets)
	assert.Empty(t, tl.Markers)
}

func TestComputeLastPulse(t *testing.T) {
	info := rex.Info{Channels: 2, SampleRate: 44100, SliceCount: 2, Tempo: 174000, PPQLength: 30720}

	tl, err := Compute(info, slicesAt([]int{100}, 0, 30719))
	require.NoError(t, err)

	assert.Equal(t, 30414, tl.TotalFrames)
	assert.Equal(t, []int{0, 30413}, tl.Offsets)
	assert.LessOrEqual(t, tl.Offsets[1], tl.TotalFrames)
}

func TestComputeMalformed(t *testing.T) {
	good := rex.Info{Channels: 2, SampleRate: 44100, Tempo: 120000, PPQLength: 61440}

	tests := []struct {
		name   string
		mutate func(*rex.Info)
	}{
		{"zero tempo", func(i *rex.Info) { i.Tempo = 0 }},
		{"negative tempo", func(i *rex.Info) { i.Tempo = -120000 }},
		{"zero loop length", func(i *rex.Info) { i.PPQLength = 0 }},
		{"zero sample rate", func(i *rex.Info) { i.SampleRate = 0 }},
		{"three channels", func(i *rex.Info) { i.Channels = 3 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := good
			tt.mutate(&info)
			_, err := Compute(info, nil)
			assert.ErrorIs(t, err, ErrMalformed)
		})
	}
}

func TestComputeProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	rates := []int{22050, 32000, 44100, 48000, 88200, 96000}

	for iter := 0; iter < 500; iter++ {
		info := rex.Info{
			Channels:   1 + rng.Intn(2),
			SampleRate: rates[rng.Intn(len(rates))],
			Tempo:      20000 + rng.Intn(280000),
			PPQLength:  rex.PPQResolution/4 + rng.Intn(rex.PPQResolution*16),
		}

		n := rng.Intn(32)
		slices := make([]rex.SliceInfo, n)
		pos := 0
		for i := range slices {
			pos += rng.Intn(info.PPQLength/(n+1) + 1)
			if pos >= info.PPQLength {
				pos = info.PPQLength - 1
			}
			slices[i] = rex.SliceInfo{Index: i, PPQPos: pos, SampleLength: rng.Intn(10000)}
		}

		tl, err := Compute(info, slices)
		require.NoError(t, err)

		bpm := float64(info.Tempo) / 1000.0
		want := int(math.Round(float64(info.SampleRate) * (60 / bpm) * (float64(info.PPQLength) / 15360)))
		require.Equal(t, want, tl.TotalFrames)
		require.GreaterOrEqual(t, tl.TotalFrames, 1)

		for i, s := range slices {
			off := int(math.Round(float64(s.PPQPos) / float64(info.PPQLength) * float64(tl.TotalFrames)))
			require.Equal(t, off, tl.Offsets[i])
			require.Equal(t, max(1, off), tl.Markers[i])
			require.LessOrEqual(t, tl.Offsets[i], tl.TotalFrames)
			if i > 0 {
				require.GreaterOrEqual(t, tl.Markers[i], tl.Markers[i-1])
			}
		}
	}
}

func TestMarker(t *testing.T) {
	assert.Equal(t, 1, Marker(0))
	assert.Equal(t, 1, Marker(1))
	assert.Equal(t, 500, Marker(500))
}
