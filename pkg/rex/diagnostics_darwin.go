package rex

import (
	"os/exec"
	"path/filepath"
	"strings"

	"golang.org/x/sys/unix"
)

const quarantineAttr = "com.apple.quarantine"

// platformChecks looks for the Gatekeeper quarantine flag and asks codesign
// to verify the bundle, since either one stops dlopen on recent macOS.
func platformChecks(r *Report) {
	bundle := bundleRoot(r.Library)

	buf := make([]byte, 1024)
	if n, err := unix.Getxattr(bundle, quarantineAttr, buf); err == nil && n > 0 {
		r.Quarantine = string(buf[:n])
	}

	out, err := exec.Command("codesign", "--verify", "--deep", "--verbose=4", bundle).CombinedOutput()
	r.Signature = strings.TrimSpace(string(out))
	if err != nil && r.Signature == "" {
		r.Signature = err.Error()
	}
}

// bundleRoot walks from <bundle>/Contents/MacOS/<binary> back up to <bundle>.
func bundleRoot(library string) string {
	return filepath.Dir(filepath.Dir(filepath.Dir(library)))
}
