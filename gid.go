package redo

import "runtime"

var goroutinePrefix = []byte("goroutine ")

// gid returns the calling goroutine's id, parsed from the first line of its
// stack ("goroutine N [running]:"). The runtime offers no direct accessor;
// this is how re-entrant dispatch is told apart from a concurrent one, which
// must wait its turn instead of failing.
func gid() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	b := buf[:n]
	if len(b) <= len(goroutinePrefix) {
		return 0
	}
	b = b[len(goroutinePrefix):]
	var id uint64
	for _, c := range b {
		if c < '0' || c > '9' {
			break
		}
		id = id*10 + uint64(c-'0')
	}
	return id
}
