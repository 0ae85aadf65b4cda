//go:build !darwin

package rex

func platformChecks(r *Report) {}
