// Package util holds the small helpers shared by the buffer packages.
package util

import (
	"fmt"
	"log"
)

// InternalError reports a broken invariant. Callers treat these as
// programming errors: the process cannot continue with a corrupt line
// list or block map.
func InternalError(s string, err error) {
	log.Panicf("madlines: internal error: %s: %v\n", s, err)
}

// Assert panics with an internal error when cond is false.
func Assert(cond bool, format string, args ...interface{}) {
	if !cond {
		InternalError(fmt.Sprintf(format, args...), nil)
	}
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi int64) int64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
