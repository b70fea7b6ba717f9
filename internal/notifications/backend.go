package notifications

import (
	"context"
	"time"
)

// Notification is one submission to the platform service.
type Notification struct {
	AppName  string
	Identity string // application identity, routed as the desktop-entry hint
	Title    string
	Body     string
	Icon     string

	// Actions are ordered; the position of the pressed action is the
	// resolution index (0 accepts).
	Actions []Action

	// Timeout is how long the notification stays up before the platform
	// expires it. Zero lets the platform decide.
	Timeout time.Duration
}

type Action struct {
	Key   string
	Label string
}

// SignalSink receives user-interaction signals from the backend's listener.
type SignalSink interface {
	ActionInvoked(id uint32, key string)
	Closed(id uint32, reason uint32)
}

// Backend is the platform notification service. Post submits (synchronous,
// bounded by ctx — it runs on core-owned callback threads and must never hang
// on an unresponsive server); interaction arrives later through Listen
// (asynchronous).
type Backend interface {
	Post(ctx context.Context, n Notification) (uint32, error)

	// Listen blocks delivering signals to the sink until ctx is canceled
	// (nil return) or the connection breaks (error return; run under a
	// restart-capable supervisor).
	Listen(ctx context.Context, sink SignalSink) error

	Close() error
}
