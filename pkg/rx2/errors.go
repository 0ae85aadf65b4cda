package rx2

import (
	"errors"

	"github.com/olivierh59500/rx2decoder/pkg/loop"
)

// Error classes. Callers wrap the underlying cause with %w so both the class
// and the cause can be matched with errors.Is.
var (
	ErrUsage         = errors.New("usage")
	ErrRead          = errors.New("cannot read input")
	ErrSDKInit       = errors.New("SDK initialization failed")
	ErrContainerOpen = errors.New("cannot open container")
	ErrMetadata      = errors.New("cannot read header")
	ErrSliceMeta     = errors.New("cannot read slice info")
	ErrRender        = errors.New("cannot render slice")
	ErrWrite         = errors.New("cannot write output")
	ErrVerify        = errors.New("verification failed")
	ErrMalformed     = loop.ErrMalformed
)
