//go:build droptea

package core

// This file must keep its cgo preamble declaration-only: it exports a Go
// function to C, and cgo forbids definitions in the preamble of such files.

/*
#include <stdint.h>
*/
import "C"

import "sync/atomic"

// activeCallback is the one process-wide callback slot read by the trampoline.
var activeCallback atomic.Pointer[rawCallback]

//export dropgateEventTrampoline
func dropgateEventTrampoline(kind C.int, taskID, f1, f2 *C.char, n1, n2 C.uint64_t) {
	p := activeCallback.Load()
	if p == nil {
		return
	}
	(*p)(int(kind), cString(taskID), cString(f1), cString(f2), uint64(n1), uint64(n2))
}

// cString copies a possibly-null C string. The core owns the buffer and only
// guarantees it for the duration of the call, so copying here is mandatory.
func cString(p *C.char) string {
	if p == nil {
		return ""
	}
	return C.GoString(p)
}
