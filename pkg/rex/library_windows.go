//go:build windows

package rex

import (
	"github.com/ebitengine/purego"
	"golang.org/x/sys/windows"
)

// Windows loads the library through the wide-character API. The UTF-8 path
// is converted to UTF-16 up front so invalid input fails here rather than
// inside the loader.
func openLibrary(path string) (uintptr, error) {
	if _, err := windows.UTF16PtrFromString(path); err != nil {
		return 0, err
	}
	h, err := windows.LoadLibraryEx(path, 0, windows.LOAD_WITH_ALTERED_SEARCH_PATH)
	if err != nil {
		return 0, err
	}
	return uintptr(h), nil
}

func closeLibrary(lib uintptr) {
	windows.FreeLibrary(windows.Handle(lib))
}

func lookupSymbol(lib uintptr, name string) (uintptr, error) {
	return windows.GetProcAddress(windows.Handle(lib), name)
}

func registerFunc(fptr any, addr uintptr) {
	purego.RegisterFunc(fptr, addr)
}
