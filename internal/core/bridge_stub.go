//go:build !droptea

package core

import "errors"

// ErrUnavailable is returned when the host was built without the native
// transfer core (no "droptea" build tag).
var ErrUnavailable = errors.New("transfer core not built in: rebuild with -tags droptea and the droptea library installed")

func newBridge() bridge { return stubBridge{} }

type stubBridge struct{}

func (stubBridge) init(string, uint16, int, rawCallback) (uintptr, error) {
	return 0, ErrUnavailable
}

func (stubBridge) startService(uintptr, uint16, string, bool) {}
func (stubBridge) resolveRequest(uintptr, string, bool)       {}
func (stubBridge) free(uintptr)                               {}
