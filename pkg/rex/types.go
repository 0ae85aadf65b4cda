package rex

import (
	"fmt"
	"unsafe"
)

// PPQResolution is the number of pulses per quarter note used by REX files.
const PPQResolution = 15360

// Error is a REX SDK status code. NoError is the only success value.
type Error int32

const (
	NoError                   Error = 1
	OperationAbortedByUser    Error = 2
	NoCreatorInfoAvailable    Error = 3
	NotEnoughMemoryForDLL     Error = 100
	UnableToLoadDLL           Error = 101
	DLLTooOld                 Error = 102
	DLLNotFound               Error = 103
	APITooOld                 Error = 104
	OutOfMemory               Error = 105
	FileCorrupt               Error = 106
	REX2FileTooNew            Error = 107
	FileHasZeroLoopLength     Error = 108
	OSVersionNotSupported     Error = 109
	ImplDLLNotInitialized     Error = 200
	ImplDLLAlreadyInitialized Error = 201
	ImplInvalidHandle         Error = 202
	ImplInvalidSize           Error = 203
	ImplInvalidArgument       Error = 204
	ImplInvalidSlice          Error = 205
	ImplInvalidSampleRate     Error = 206
	ImplBufferTooSmall        Error = 207
	ImplIsBeingPreviewed      Error = 208
	ImplNotBeingPreviewed     Error = 209
	ImplInvalidTempo          Error = 210
	Undefined                 Error = 666
)

var errorNames = map[Error]string{
	NoError:                   "no error",
	OperationAbortedByUser:    "operation aborted by user",
	NoCreatorInfoAvailable:    "no creator info available",
	NotEnoughMemoryForDLL:     "not enough memory for DLL",
	UnableToLoadDLL:           "unable to load DLL",
	DLLTooOld:                 "DLL too old",
	DLLNotFound:               "DLL not found",
	APITooOld:                 "API too old",
	OutOfMemory:               "out of memory",
	FileCorrupt:               "file corrupt",
	REX2FileTooNew:            "REX2 file too new",
	FileHasZeroLoopLength:     "file has zero loop length",
	OSVersionNotSupported:     "OS version not supported",
	ImplDLLNotInitialized:     "DLL not initialized",
	ImplDLLAlreadyInitialized: "DLL already initialized",
	ImplInvalidHandle:         "invalid handle",
	ImplInvalidSize:           "invalid size",
	ImplInvalidArgument:       "invalid argument",
	ImplInvalidSlice:          "invalid slice",
	ImplInvalidSampleRate:     "invalid sample rate",
	ImplBufferTooSmall:        "buffer too small",
	ImplIsBeingPreviewed:      "is being previewed",
	ImplNotBeingPreviewed:     "not being previewed",
	ImplInvalidTempo:          "invalid tempo",
	Undefined:                 "undefined error",
}

func (e Error) Error() string {
	if name, ok := errorNames[e]; ok {
		return fmt.Sprintf("REX error %d: %s", int32(e), name)
	}
	return fmt.Sprintf("REX error %d", int32(e))
}

// status converts a raw return code into a Go error.
func status(code int32) error {
	if Error(code) == NoError {
		return nil
	}
	return Error(code)
}

// Info is the container header.
type Info struct {
	Channels      int
	SampleRate    int
	SliceCount    int
	Tempo         int // BPM * 1000
	OriginalTempo int // BPM * 1000
	PPQLength     int
	TimeSignNom   int
	TimeSignDenom int
	BitDepth      int
}

// BPM returns the tempo in beats per minute.
func (i Info) BPM() float64 { return float64(i.Tempo) / 1000.0 }

// OriginalBPM returns the original tempo in beats per minute.
func (i Info) OriginalBPM() float64 { return float64(i.OriginalTempo) / 1000.0 }

// SliceInfo describes one slice. Index is the SDK slice index and is never
// renumbered, even when earlier slices could not be enumerated.
type SliceInfo struct {
	Index        int
	PPQPos       int
	SampleLength int
}

// CreatorInfo holds the optional free-form creator fields.
type CreatorInfo struct {
	Name      string
	Copyright string
	URL       string
	Email     string
	FreeText  string
}

// C layouts shared with the SDK. All members are 32-bit, so there is no
// padding to worry about.

type cInfo struct {
	Channels      int32
	SampleRate    int32
	SliceCount    int32
	Tempo         int32
	OriginalTempo int32
	PPQLength     int32
	TimeSignNom   int32
	TimeSignDenom int32
	BitDepth      int32
}

type cSliceInfo struct {
	PPQPos       int32
	SampleLength int32
}

const creatorFieldSize = 256

type cCreatorInfo struct {
	Name      [creatorFieldSize]byte
	Copyright [creatorFieldSize]byte
	URL       [creatorFieldSize]byte
	Email     [creatorFieldSize]byte
	FreeText  [creatorFieldSize]byte
}

var (
	sizeofInfo        = int32(unsafe.Sizeof(cInfo{}))
	sizeofSliceInfo   = int32(unsafe.Sizeof(cSliceInfo{}))
	sizeofCreatorInfo = int32(unsafe.Sizeof(cCreatorInfo{}))
)

func (c *cInfo) toInfo() Info {
	return Info{
		Channels:      int(c.Channels),
		SampleRate:    int(c.SampleRate),
		SliceCount:    int(c.SliceCount),
		Tempo:         int(c.Tempo),
		OriginalTempo: int(c.OriginalTempo),
		PPQLength:     int(c.PPQLength),
		TimeSignNom:   int(c.TimeSignNom),
		TimeSignDenom: int(c.TimeSignDenom),
		BitDepth:      int(c.BitDepth),
	}
}

func (c *cCreatorInfo) toCreatorInfo() *CreatorInfo {
	return &CreatorInfo{
		Name:      cString(c.Name[:]),
		Copyright: cString(c.Copyright[:]),
		URL:       cString(c.URL[:]),
		Email:     cString(c.Email[:]),
		FreeText:  cString(c.FreeText[:]),
	}
}

// cString reads a NUL-terminated string out of a fixed-size field.
func cString(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}
