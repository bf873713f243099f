//go:build linux

package store

import "golang.org/x/sys/unix"

// FreeMemory returns the free physical memory in bytes, or -1 when it
// cannot be determined.
func FreeMemory() int64 {
	var si unix.Sysinfo_t
	if err := unix.Sysinfo(&si); err != nil {
		return -1
	}
	return int64(si.Freeram) * int64(si.Unit)
}
