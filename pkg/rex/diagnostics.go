package rex

import (
	"debug/elf"
	"debug/macho"
	"debug/pe"
	"fmt"
	"io"
	"os"
	"strings"
)

// Report is the result of inspecting an SDK directory before loading it.
type Report struct {
	Dir     string
	Exists  bool
	IsDir   bool
	Library string // empty when no candidate exists
	Missing []string
	Arch    string // architectures the library was built for

	// Platform specific findings.
	Quarantine string
	Signature  string
}

// OK reports whether the directory looks loadable.
func (r *Report) OK() bool {
	return r.Exists && r.IsDir && r.Library != ""
}

// Diagnose inspects dir without loading anything.
func Diagnose(dir string) *Report {
	r := &Report{Dir: dir}

	info, err := os.Stat(dir)
	if err != nil {
		return r
	}
	r.Exists = true
	r.IsDir = info.IsDir()
	if !r.IsDir {
		return r
	}

	for _, path := range LibraryCandidates(dir) {
		if fi, err := os.Stat(path); err == nil && !fi.IsDir() {
			r.Library = path
			break
		}
		r.Missing = append(r.Missing, path)
	}

	if r.Library != "" {
		r.Arch = binaryArch(r.Library)
		platformChecks(r)
	}
	return r
}

// Print writes the report in a human readable form.
func (r *Report) Print(w io.Writer) {
	fmt.Fprintln(w, "--- SDK Diagnostics ---")
	defer fmt.Fprintln(w, "-----------------------")

	switch {
	case !r.Exists:
		fmt.Fprintf(w, "SDK path does not exist: %s\n", r.Dir)
		return
	case !r.IsDir:
		fmt.Fprintf(w, "SDK path is not a directory: %s\n", r.Dir)
		return
	case r.Library == "":
		for _, path := range r.Missing {
			fmt.Fprintf(w, "Library not found at: %s\n", path)
		}
		return
	}

	fmt.Fprintf(w, "Found library: %s\n", r.Library)
	fmt.Fprintf(w, "Architecture: %s\n", r.Arch)
	if r.Quarantine != "" {
		fmt.Fprintf(w, "Quarantine attribute found: %s\n", r.Quarantine)
	}
	if r.Signature != "" {
		fmt.Fprintf(w, "Code signature: %s\n", r.Signature)
	}
}

// Problems lists the findings that can keep the library from loading.
func (r *Report) Problems() []string {
	var out []string
	switch {
	case !r.Exists:
		out = append(out, "SDK path does not exist: "+r.Dir)
	case !r.IsDir:
		out = append(out, "SDK path is not a directory: "+r.Dir)
	case r.Library == "":
		for _, path := range r.Missing {
			out = append(out, "Library not found at: "+path)
		}
	}
	if r.Quarantine != "" {
		out = append(out, "Quarantine attribute found: "+r.Quarantine)
	}
	return out
}

// binaryArch reads the machine type from an ELF, Mach-O (thin or universal)
// or PE header.
func binaryArch(path string) string {
	if f, err := elf.Open(path); err == nil {
		defer f.Close()
		return f.Machine.String()
	}
	if f, err := macho.Open(path); err == nil {
		defer f.Close()
		return f.Cpu.String()
	}
	if f, err := macho.OpenFat(path); err == nil {
		defer f.Close()
		archs := make([]string, 0, len(f.Arches))
		for _, a := range f.Arches {
			archs = append(archs, a.Cpu.String())
		}
		return "universal (" + strings.Join(archs, ", ") + ")"
	}
	if f, err := pe.Open(path); err == nil {
		defer f.Close()
		return fmt.Sprintf("PE machine 0x%04x", f.Machine)
	}
	return "unknown"
}
