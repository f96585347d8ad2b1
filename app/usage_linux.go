//go:build linux

package app

import "golang.org/x/sys/unix"

// peakRSS returns the process high-water resident set size in bytes
func peakRSS() uint64 {
	var rusage unix.Rusage
	if err := unix.Getrusage(unix.RUSAGE_SELF, &rusage); err != nil {
		return 0
	}
	return uint64(rusage.Maxrss) * 1024 // KB to bytes
}
