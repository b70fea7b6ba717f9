//go:build droptea

package core

/*
#cgo LDFLAGS: -ldroptea

#include <stdint.h>
#include <stdbool.h>
#include <stdlib.h>

typedef void* droptea_handle;
typedef void (*droptea_callback)(int, const char*, const char*, const char*, uint64_t, uint64_t);

droptea_handle droptea_init(const char* storage_path, uint16_t port, int mode, droptea_callback callback);
void droptea_start_service(droptea_handle ctx, uint16_t port, const char* device_id, bool dev_mode);
void droptea_resolve_request(droptea_handle ctx, const char* task_id, bool accept);
void droptea_free(droptea_handle ctx);

// Defined in callback_droptea.go.
void dropgateEventTrampoline(int kind, const char* task_id, const char* f1, const char* f2, uint64_t n1, uint64_t n2);

static droptea_handle dropgate_init(const char* storage_path, uint16_t port, int mode) {
	return droptea_init(storage_path, port, mode, dropgateEventTrampoline);
}
*/
import "C"

import (
	"errors"
	"unsafe"
)

func newBridge() bridge { return nativeBridge{} }

type nativeBridge struct{}

func (nativeBridge) init(storagePath string, port uint16, mode int, cb rawCallback) (uintptr, error) {
	// C function pointers cannot capture Go closures; the trampoline reads the
	// callback from a process-wide slot. One core per process by contract.
	if !activeCallback.CompareAndSwap(nil, &cb) {
		return 0, errors.New("core already initialized in this process")
	}

	cPath := C.CString(storagePath)
	defer C.free(unsafe.Pointer(cPath))

	h := C.dropgate_init(cPath, C.uint16_t(port), C.int(mode))
	if h == nil {
		activeCallback.Store(nil)
		return 0, errors.New("droptea_init returned null")
	}
	return uintptr(h), nil
}

func (nativeBridge) startService(raw uintptr, port uint16, deviceID string, devMode bool) {
	cID := C.CString(deviceID)
	defer C.free(unsafe.Pointer(cID))
	C.droptea_start_service(C.droptea_handle(unsafe.Pointer(raw)), C.uint16_t(port), cID, C._Bool(devMode))
}

func (nativeBridge) resolveRequest(raw uintptr, taskID string, accept bool) {
	cID := C.CString(taskID)
	defer C.free(unsafe.Pointer(cID))
	C.droptea_resolve_request(C.droptea_handle(unsafe.Pointer(raw)), cID, C._Bool(accept))
}

func (nativeBridge) free(raw uintptr) {
	C.droptea_free(C.droptea_handle(unsafe.Pointer(raw)))
	activeCallback.Store(nil)
}
