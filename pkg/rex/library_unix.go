//go:build darwin || freebsd || linux || netbsd

package rex

import "github.com/ebitengine/purego"

// Paths are handed to dlopen as narrow UTF-8 strings.
func openLibrary(path string) (uintptr, error) {
	return purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_LOCAL)
}

func closeLibrary(lib uintptr) {
	purego.Dlclose(lib)
}

func lookupSymbol(lib uintptr, name string) (uintptr, error) {
	return purego.Dlsym(lib, name)
}

func registerFunc(fptr any, addr uintptr) {
	purego.RegisterFunc(fptr, addr)
}
