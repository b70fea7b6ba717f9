package core

import (
	"fmt"
	"runtime/debug"
	"sync/atomic"

	"dropgate/internal/event"
	logx "dropgate/pkg/logx"
)

// EventFunc receives decoded events. It is invoked on threads owned by the
// core, potentially concurrently, and must not block: stalling here stalls
// the core's own event loop.
type EventFunc func(event.Event)

// Config is handed to the core once, at construction.
type Config struct {
	StoragePath string
	Port        int
	Mode        int // 0 = TLS-TCP, 1 = QUIC, 2 = plain TCP (C-ABI contract)
}

// Handle is the exclusively-owned resource representing the running core.
type Handle struct {
	br  bridge
	log logx.Logger

	raw    uintptr
	closed atomic.Bool
}

// New constructs the core with the given callback. Construction failure is
// the one fatal error of this subsystem; callers exit non-zero on it.
func New(cfg Config, log logx.Logger, onEvent EventFunc) (*Handle, error) {
	return newHandle(newBridge(), cfg, log, onEvent)
}

func newHandle(br bridge, cfg Config, log logx.Logger, onEvent EventFunc) (*Handle, error) {
	if log.IsZero() {
		log = logx.Nop()
	}
	if onEvent == nil {
		return nil, fmt.Errorf("core: event callback is required")
	}

	// The raw callback runs on the core's threads. Nothing may panic back
	// across the boundary; recover here and log.
	cb := func(kind int, taskID, f1, f2 string, n1, n2 uint64) {
		defer func() {
			if r := recover(); r != nil {
				log.Error("panic in core event handler",
					logx.Int("kind", kind),
					logx.Any("panic", r),
					logx.String("stack", string(debug.Stack())))
			}
		}()
		onEvent(event.Decode(kind, taskID, f1, f2, n1, n2))
	}

	raw, err := br.init(cfg.StoragePath, uint16(cfg.Port), cfg.Mode, cb)
	if err != nil {
		return nil, fmt.Errorf("core init: %w", err)
	}
	return &Handle{br: br, log: log, raw: raw}, nil
}

// StartService binds the transport and begins discovery.
func (h *Handle) StartService(port int, deviceID string, devMode bool) {
	if h == nil || h.closed.Load() {
		return
	}
	h.br.startService(h.raw, uint16(port), deviceID, devMode)
}

// ResolveRequest delivers the user's accept/decline decision for a task.
// Safe to call from any thread; the core's resolve entry point is explicitly
// cross-thread (user-interaction signals arrive on UI threads, not the thread
// that emitted the original event). After Close it is a no-op.
func (h *Handle) ResolveRequest(taskID string, accept bool) {
	if h == nil || taskID == "" || h.closed.Load() {
		return
	}
	h.log.Debug("resolving request", logx.String("task", taskID), logx.Bool("accept", accept))
	h.br.resolveRequest(h.raw, taskID, accept)
}

// Close releases the core. Idempotent. Only the owning bootstrap may call it;
// borrowers observe the closed flag instead.
func (h *Handle) Close() {
	if h == nil || !h.closed.CompareAndSwap(false, true) {
		return
	}
	h.br.free(h.raw)
	h.raw = 0
}
