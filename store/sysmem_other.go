//go:build !linux

package store

// FreeMemory returns -1: the free memory is unknown on this platform and
// documents stay file-backed.
func FreeMemory() int64 {
	return -1
}
