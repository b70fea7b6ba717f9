package core

// rawCallback is the binding-level callback shape. The binding layer converts
// C strings to Go strings before invoking it; null pointers arrive as "".
type rawCallback func(kind int, taskID, field1, field2 string, n1, n2 uint64)

// bridge abstracts the four C-ABI entry points so the handle can be exercised
// against a fake in tests. newBridge returns the build-selected implementation.
type bridge interface {
	init(storagePath string, port uint16, mode int, cb rawCallback) (uintptr, error)
	startService(raw uintptr, port uint16, deviceID string, devMode bool)
	resolveRequest(raw uintptr, taskID string, accept bool)
	free(raw uintptr)
}
