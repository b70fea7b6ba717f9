//go:build !linux

package notifications

import "errors"

// No notification backend on this platform yet; the facade runs degraded
// (info dropped, actionable prompts resolved as declined).
func newBackend() (Backend, error) {
	return nil, errors.New("no notification backend for this platform")
}
