// Package core owns the opaque handle to the external transfer engine.
//
// The engine is a native library reached through four C-ABI entry points and
// one multiplexed callback. This package is the only place raw callback
// fields exist: they are decoded into event.Event values immediately, on the
// core's own thread, before anything downstream sees them.
//
// Ownership: exactly one Handle exists per process, created and released by
// the bootstrap. Everything else holds a borrowed reference and must treat
// the handle as read-only; the closed flag turns late calls from borrowers
// (a notification resolving after shutdown began) into no-ops rather than
// use-after-free.
//
// The real binding is compiled in with the "droptea" build tag; without it a
// stub reports the core unavailable so the host still builds and tests on
// machines without the native library.
package core
