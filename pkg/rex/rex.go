// Package rex wraps the REX decoder shared library. The library is loaded at
// runtime from a directory supplied by the caller; nothing is linked at build
// time.
package rex

import (
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
)

var (
	// ErrAlreadyLoaded is returned by Load while another SDK is still loaded.
	ErrAlreadyLoaded = errors.New("rex: SDK already loaded")
	// ErrLibraryNotFound is returned when no shared library exists in the SDK directory.
	ErrLibraryNotFound = errors.New("rex: shared library not found")
	// ErrClosed is returned when a deleted handle or a shut down SDK is used.
	ErrClosed = errors.New("rex: handle closed")
)

// The SDK keeps process-wide state, so only one instance may be loaded.
var loaded atomic.Bool

// SDK is a loaded REX shared library.
type SDK struct {
	lib  uintptr
	path string

	open           func() uint8
	close          func()
	create         func(handle *uintptr, buffer *byte, size int32, callback uintptr, userData uintptr) int32
	delete         func(handle *uintptr)
	getInfo        func(handle uintptr, size int32, info *cInfo) int32
	getCreatorInfo func(handle uintptr, size int32, info *cCreatorInfo) int32
	getSliceInfo   func(handle uintptr, index int32, size int32, info *cSliceInfo) int32
	renderSlice    func(handle uintptr, index int32, frames int32, outputs *[2]*float32) int32

	shutdown sync.Once
}

// Load locates the REX shared library inside dir, loads it and initializes it.
// The returned SDK must be released with Shutdown.
func Load(dir string) (*SDK, error) {
	if !loaded.CompareAndSwap(false, true) {
		return nil, ErrAlreadyLoaded
	}

	sdk, err := load(dir)
	if err != nil {
		loaded.Store(false)
		return nil, err
	}
	return sdk, nil
}

func load(dir string) (*SDK, error) {
	path, err := FindLibrary(dir)
	if err != nil {
		return nil, err
	}

	lib, err := openLibrary(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}

	sdk := &SDK{lib: lib, path: path}
	if err := sdk.bind(); err != nil {
		closeLibrary(lib)
		return nil, err
	}

	if sdk.open() == 0 {
		closeLibrary(lib)
		return nil, NotEnoughMemoryForDLL
	}

	return sdk, nil
}

// bind resolves every entry point the adapter uses.
func (s *SDK) bind() error {
	symbols := []struct {
		name string
		fptr any
	}{
		{"Open", &s.open},
		{"Close", &s.close},
		{"REXCreate", &s.create},
		{"REXDelete", &s.delete},
		{"REXGetInfo", &s.getInfo},
		{"REXGetCreatorInfo", &s.getCreatorInfo},
		{"REXGetSliceInfo", &s.getSliceInfo},
		{"REXRenderSlice", &s.renderSlice},
	}

	for _, sym := range symbols {
		addr, err := lookupSymbol(s.lib, sym.name)
		if err != nil {
			return fmt.Errorf("failed to resolve %s in %s: %w", sym.name, s.path, err)
		}
		registerFunc(sym.fptr, addr)
	}
	return nil
}

// Path returns the file the SDK was loaded from.
func (s *SDK) Path() string {
	return s.path
}

// Shutdown uninitializes and unloads the library. Handles must be deleted
// first. Calling Shutdown more than once is a no-op.
func (s *SDK) Shutdown() {
	s.shutdown.Do(func() {
		s.close()
		closeLibrary(s.lib)
		loaded.Store(false)
	})
}

// Create opens a container held in memory. data is retained by the handle
// until Delete.
func (s *SDK) Create(data []byte) (*Handle, error) {
	if len(data) == 0 {
		return nil, ImplInvalidSize
	}

	var ref uintptr
	code := s.create(&ref, &data[0], int32(len(data)), 0, 0)
	runtime.KeepAlive(data)
	if err := status(code); err != nil {
		return nil, err
	}
	if ref == 0 {
		return nil, ImplInvalidHandle
	}

	return &Handle{sdk: s, ref: ref, data: data}, nil
}

// Handle is an open container.
type Handle struct {
	sdk  *SDK
	ref  uintptr
	data []byte
}

// Delete releases the handle. Calling Delete more than once is a no-op.
func (h *Handle) Delete() {
	if h.ref == 0 {
		return
	}
	h.sdk.delete(&h.ref)
	h.ref = 0
	h.data = nil
}

// Info fetches the container header.
func (h *Handle) Info() (Info, error) {
	if h.ref == 0 {
		return Info{}, ErrClosed
	}

	var c cInfo
	if err := status(h.sdk.getInfo(h.ref, sizeofInfo, &c)); err != nil {
		return Info{}, err
	}
	return c.toInfo(), nil
}

// Creator fetches the creator fields. It returns nil, nil when the container
// has none.
func (h *Handle) Creator() (*CreatorInfo, error) {
	if h.ref == 0 {
		return nil, ErrClosed
	}

	var c cCreatorInfo
	err := status(h.sdk.getCreatorInfo(h.ref, sizeofCreatorInfo, &c))
	if errors.Is(err, NoCreatorInfoAvailable) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return c.toCreatorInfo(), nil
}

// SliceInfo fetches metadata for slice index.
func (h *Handle) SliceInfo(index int) (SliceInfo, error) {
	if h.ref == 0 {
		return SliceInfo{}, ErrClosed
	}

	var c cSliceInfo
	if err := status(h.sdk.getSliceInfo(h.ref, int32(index), sizeofSliceInfo, &c)); err != nil {
		return SliceInfo{}, err
	}
	return SliceInfo{
		Index:        index,
		PPQPos:       int(c.PPQPos),
		SampleLength: int(c.SampleLength),
	}, nil
}

// RenderSlice renders frames frames of slice index into out, one buffer per
// channel. Every non-nil buffer must hold at least frames samples; at most two
// channels are used.
func (h *Handle) RenderSlice(index, frames int, out [][]float32) error {
	if h.ref == 0 {
		return ErrClosed
	}
	if len(out) == 0 || len(out) > 2 {
		return ImplInvalidArgument
	}
	if frames == 0 {
		return nil
	}

	var pinner runtime.Pinner
	defer pinner.Unpin()

	outputs := new([2]*float32)
	for ch, buf := range out {
		if buf == nil {
			continue
		}
		if len(buf) < frames {
			return ImplBufferTooSmall
		}
		outputs[ch] = &buf[0]
		pinner.Pin(outputs[ch])
	}
	pinner.Pin(outputs)

	return status(h.sdk.renderSlice(h.ref, int32(index), int32(frames), outputs))
}
