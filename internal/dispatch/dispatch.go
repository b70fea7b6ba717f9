// Package dispatch is the single entry point for transfer core events. It
// decodes per-kind semantics, drives the notification surface, and fans out to
// local observers over the event bus. Handle runs on core-owned callback
// threads, so every path through it is non-blocking.
package dispatch

import (
	"fmt"

	"golang.org/x/time/rate"

	"dropgate/internal/event"
	"dropgate/internal/eventbus"
	logx "dropgate/pkg/logx"
)

// Notifier is the slice of the notification service the dispatcher needs.
type Notifier interface {
	PostInfo(title, body string)
	PostActionable(title, body, taskID string) bool
}

// The core can emit log lines at chunk frequency during a transfer; cap what
// we forward so the host log stays readable.
const (
	coreLogRate  = rate.Limit(25) // lines per second
	coreLogBurst = 50
)

type Dispatcher struct {
	log      logx.Logger
	notifier Notifier
	bus      eventbus.Bus

	coreLog  *rate.Limiter
	progress *progressTracker
}

func New(log logx.Logger, notifier Notifier, bus eventbus.Bus) *Dispatcher {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Dispatcher{
		log:      log,
		notifier: notifier,
		bus:      bus,
		coreLog:  rate.NewLimiter(coreLogRate, coreLogBurst),
		progress: newProgressTracker(),
	}
}

// Handle consumes one decoded core event. Unknown kinds are ignored silently
// so a newer core never breaks an older host.
func (d *Dispatcher) Handle(e event.Event) {
	switch e.Kind {
	case event.KindLog:
		if d.coreLog.Allow() {
			d.log.Debug("core: " + e.Field1)
		}

	case event.KindPeerFound:
		p := event.ParsePeer(e.TaskID, e.Field1)
		d.log.Info("peer found",
			logx.String("peer", p.ID),
			logx.String("name", p.Name),
			logx.String("addr", p.Addr),
			logx.String("transport", p.Transport))
		d.publish(eventbus.TopicPeerFound, p)

	case event.KindStarted:
		d.log.Info("transfer started",
			logx.String("task", e.TaskID),
			logx.String("detail", e.Field1))

	case event.KindProgress:
		pct, ok := e.Percent()
		if !ok {
			return
		}
		if d.progress.crossed(e.TaskID, pct) {
			d.log.Info("transfer progress",
				logx.String("task", e.TaskID),
				logx.Uint64("percent", pct),
				logx.Uint64("done", e.N1),
				logx.Uint64("total", e.N2))
		}

	case event.KindCompleted:
		d.progress.forget(e.TaskID)
		d.log.Info("transfer completed",
			logx.String("task", e.TaskID),
			logx.String("path", e.Field1))
		d.notifier.PostInfo("File Transfer Complete", "Saved to: "+e.Field1)
		d.publish(eventbus.TopicTransferCompleted, e)

	case event.KindError:
		d.progress.forget(e.TaskID)
		d.log.Error("transfer failed",
			logx.String("task", e.TaskID),
			logx.String("error", e.Field1))
		d.publish(eventbus.TopicTransferError, e)

	case event.KindIncomingRequest:
		req := event.ParseRequest(e.Field1)
		d.log.Info("incoming transfer request",
			logx.String("task", e.TaskID),
			logx.String("file", req.Filename),
			logx.Uint64("size", req.Size),
			logx.String("sender", req.Sender),
			logx.String("device", req.Device))
		d.publish(eventbus.TopicRequestReceived, e)
		d.notifier.PostActionable("Incoming File Transfer", requestBody(req), e.TaskID)

	case event.KindRejected:
		d.progress.forget(e.TaskID)
		d.log.Warn("transfer rejected",
			logx.String("task", e.TaskID),
			logx.String("reason", e.Field1))
		d.notifier.PostInfo("File Transfer Declined", e.Field1)
		d.publish(eventbus.TopicTransferRejected, e)

	case event.KindPeerLost:
		d.log.Info("peer lost", logx.String("peer", e.TaskID))
		d.publish(eventbus.TopicPeerLost, e.TaskID)

	case event.KindDiscoveryStarted:
		d.log.Info("peer discovery started")

	case event.KindServerStarted:
		d.log.Info("transfer server listening", logx.String("port", e.Field1))
	}
}

func (d *Dispatcher) publish(topic string, data any) {
	if d.bus == nil {
		return
	}
	d.bus.Publish(eventbus.Message{Topic: topic, Data: data})
}

// requestBody renders the prompt body, e.g.
// "report.pdf (2.0 KiB) from Alice (LaptopA)".
func requestBody(r event.Request) string {
	return fmt.Sprintf("%s (%s) from %s (%s)",
		r.Filename, formatSize(r.Size), r.Sender, r.Device)
}

func formatSize(n uint64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := uint64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
