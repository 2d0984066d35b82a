package util

import "runtime"

// Workers returns how many targets are extracted in parallel.
//
// Formula: min(max(runtime.NumCPU(), 2), 8)
//
// Each worker may hold an open browser tab, so the cap stays low even on
// large machines. An override > 0 is returned as is.
func Workers(override int) int {
	if override > 0 {
		return override
	}

	n := runtime.NumCPU()
	if n < 2 {
		n = 2
	}
	if n > 8 {
		n = 8
	}
	return n
}
