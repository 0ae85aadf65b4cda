//go:build !darwin && !freebsd && !linux && !netbsd && !windows

package rex

import (
	"errors"
	"runtime"
)

var errUnsupportedOS = errors.New("rex: dynamic loading is not supported on " + runtime.GOOS)

func openLibrary(path string) (uintptr, error) { return 0, errUnsupportedOS }

func closeLibrary(lib uintptr) {}

func lookupSymbol(lib uintptr, name string) (uintptr, error) { return 0, errUnsupportedOS }

func registerFunc(fptr any, addr uintptr) {}
