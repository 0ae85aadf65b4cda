package rex

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSDK returns an SDK whose entry points are Go funcs. Slice i renders as
// the constant float32(i) on every channel it is given. The second result
// counts REXDelete calls.
func fakeSDK(t *testing.T) (*SDK, *int) {
	t.Helper()
	deletes := 0

	sdk := &SDK{
		create: func(handle *uintptr, buffer *byte, size int32, _, _ uintptr) int32 {
			if size < 4 {
				return int32(FileCorrupt)
			}
			*handle = 42
			return int32(NoError)
		},
		delete: func(handle *uintptr) {
			deletes++
			*handle = 0
		},
		getInfo: func(handle uintptr, size int32, info *cInfo) int32 {
			require.Equal(t, uintptr(42), handle)
			require.Equal(t, sizeofInfo, size)
			*info = cInfo{Channels: 2, SampleRate: 44100, SliceCount: 3, Tempo: 120000,
				OriginalTempo: 100000, PPQLength: 61440, TimeSignNom: 4, TimeSignDenom: 4, BitDepth: 16}
			return int32(NoError)
		},
		getCreatorInfo: func(handle uintptr, size int32, info *cCreatorInfo) int32 {
			return int32(NoCreatorInfoAvailable)
		},
		getSliceInfo: func(handle uintptr, index, size int32, info *cSliceInfo) int32 {
			if index >= 3 {
				return int32(ImplInvalidSlice)
			}
			*info = cSliceInfo{PPQPos: index * 15360, SampleLength: 100 + index}
			return int32(NoError)
		},
		renderSlice: func(handle uintptr, index, frames int32, outputs *[2]*float32) int32 {
			for _, p := range outputs {
				if p == nil {
					continue
				}
				buf := unsafe.Slice(p, frames)
				for j := range buf {
					buf[j] = float32(index)
				}
			}
			return int32(NoError)
		},
	}
	return sdk, &deletes
}

func TestCreate(t *testing.T) {
	sdk, _ := fakeSDK(t)

	_, err := sdk.Create(nil)
	assert.ErrorIs(t, err, ImplInvalidSize)

	_, err = sdk.Create([]byte{1})
	assert.ErrorIs(t, err, FileCorrupt)

	h, err := sdk.Create([]byte("CAT "))
	require.NoError(t, err)
	assert.Equal(t, uintptr(42), h.ref)
}

func TestHandleInfoAndSlices(t *testing.T) {
	sdk, _ := fakeSDK(t)
	h, err := sdk.Create([]byte("CAT "))
	require.NoError(t, err)

	info, err := h.Info()
	require.NoError(t, err)
	assert.Equal(t, 2, info.Channels)
	assert.Equal(t, 3, info.SliceCount)
	assert.InDelta(t, 120.0, info.BPM(), 1e-9)

	s, err := h.SliceInfo(2)
	require.NoError(t, err)
	assert.Equal(t, SliceInfo{Index: 2, PPQPos: 30720, SampleLength: 102}, s)

	_, err = h.SliceInfo(3)
	assert.ErrorIs(t, err, ImplInvalidSlice)
}

func TestHandleCreatorMissing(t *testing.T) {
	sdk, _ := fakeSDK(t)
	h, err := sdk.Create([]byte("CAT "))
	require.NoError(t, err)

	c, err := h.Creator()
	assert.NoError(t, err)
	assert.Nil(t, c)
}

func TestRenderSlice(t *testing.T) {
	sdk, _ := fakeSDK(t)
	h, err := sdk.Create([]byte("CAT "))
	require.NoError(t, err)

	t.Run("stereo", func(t *testing.T) {
		out := [][]float32{make([]float32, 4), make([]float32, 4)}
		require.NoError(t, h.RenderSlice(2, 4, out))
		assert.Equal(t, []float32{2, 2, 2, 2}, out[0])
		assert.Equal(t, []float32{2, 2, 2, 2}, out[1])
	})

	t.Run("mono", func(t *testing.T) {
		out := [][]float32{make([]float32, 6)}
		require.NoError(t, h.RenderSlice(3, 4, out))
		assert.Equal(t, []float32{3, 3, 3, 3, 0, 0}, out[0])
	})

	t.Run("nil channel", func(t *testing.T) {
		out := [][]float32{nil, make([]float32, 2)}
		require.NoError(t, h.RenderSlice(1, 2, out))
		assert.Nil(t, out[0])
		assert.Equal(t, []float32{1, 1}, out[1])
	})

	t.Run("zero frames", func(t *testing.T) {
		assert.NoError(t, h.RenderSlice(0, 0, [][]float32{nil}))
	})

	t.Run("buffer too small", func(t *testing.T) {
		err := h.RenderSlice(0, 4, [][]float32{make([]float32, 3)})
		assert.ErrorIs(t, err, ImplBufferTooSmall)
	})

	t.Run("channel count", func(t *testing.T) {
		assert.ErrorIs(t, h.RenderSlice(0, 1, nil), ImplInvalidArgument)
		three := [][]float32{{0}, {0}, {0}}
		assert.ErrorIs(t, h.RenderSlice(0, 1, three), ImplInvalidArgument)
	})
}

func TestHandleDelete(t *testing.T) {
	sdk, deletes := fakeSDK(t)
	h, err := sdk.Create([]byte("CAT "))
	require.NoError(t, err)

	h.Delete()
	h.Delete()
	assert.Equal(t, 1, *deletes)

	_, err = h.Info()
	assert.ErrorIs(t, err, ErrClosed)
	_, err = h.Creator()
	assert.ErrorIs(t, err, ErrClosed)
	_, err = h.SliceInfo(0)
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, h.RenderSlice(0, 1, [][]float32{{0}}), ErrClosed)
}
