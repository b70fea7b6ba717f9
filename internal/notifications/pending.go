package notifications

import (
	"sync/atomic"

	logx "dropgate/pkg/logx"
)

// Resolver delivers the user's decision for a task back to the transfer core.
// Implementations must be safe to call from any goroutine: interaction
// signals arrive on the notification listener, not on the thread that emitted
// the original event.
type Resolver interface {
	ResolveRequest(taskID string, accept bool)
}

// The accept action is index 0 by contract; any other action declines.
const acceptIndex = 0

// Pending tracks one displayed actionable notification until its single
// resolution. States: shown, then resolved; every transition is terminal and
// the first one wins.
type Pending struct {
	taskID   string
	resolver Resolver
	log      logx.Logger

	resolved atomic.Bool
}

func newPending(taskID string, resolver Resolver, log logx.Logger) *Pending {
	return &Pending{taskID: taskID, resolver: resolver, log: log}
}

func (p *Pending) TaskID() string { return p.taskID }

// Resolved reports whether a terminal signal has already been consumed.
func (p *Pending) Resolved() bool { return p.resolved.Load() }

// ActionChosen handles an action button press.
func (p *Pending) ActionChosen(index int) {
	p.resolve(index == acceptIndex, "action")
}

// BodyActivated handles a click on the notification body rather than a
// button. Informational only: the prompt stays pending and the dismissal or
// expiry path still resolves it.
func (p *Pending) BodyActivated() {
	p.log.Debug("notification body clicked", logx.String("task", p.taskID))
}

// Dismissed handles user dismissal or expiry. Always a decline; a silent
// timeout must never leave the requesting peer waiting.
func (p *Pending) Dismissed(reason string) {
	p.resolve(false, "dismissed:"+reason)
}

// DisplayFailed handles a prompt that could not be shown at all. Treated as a
// decline for the same reason.
func (p *Pending) DisplayFailed() {
	p.resolve(false, "display_failed")
}

func (p *Pending) resolve(accept bool, via string) {
	// The platform may deliver more than one terminal signal per
	// notification; only the first reaches the core.
	if !p.resolved.CompareAndSwap(false, true) {
		return
	}
	p.log.Info("request resolved",
		logx.String("task", p.taskID),
		logx.Bool("accept", accept),
		logx.String("via", via))
	if p.resolver != nil {
		p.resolver.ResolveRequest(p.taskID, accept)
	}
}
