package notifications

import (
	"context"
	"fmt"
	"sync"
	"time"

	logx "dropgate/pkg/logx"
)

// Well-known action keys. "default" is what notification servers emit for a
// click on the body rather than a button.
const (
	actionAccept  = "accept"
	actionDecline = "decline"
	actionDefault = "default"
)

// Close reasons from the notification server.
const (
	closedExpired   uint32 = 1
	closedByUser    uint32 = 2
	closedByRequest uint32 = 3
)

// Post runs on core-owned callback threads; bound the round trip to the
// notification server so a hung daemon cannot stall the core's event loop.
const defaultPostTimeout = 2 * time.Second

// Interaction signals can arrive before the Notify reply that tells us the
// notification's id (the server broadcasts signals to every listener). Unknown
// ids are buffered briefly and replayed once the id is registered.
const (
	earlySignalCap = 16
	earlySignalTTL = 2 * time.Second
)

type earlySignal struct {
	at     time.Time
	id     uint32
	action bool // true: ActionInvoked, false: NotificationClosed
	key    string
	reason uint32
}

type Config struct {
	Enabled  bool
	AppName  string
	Identity string
	Icon     string

	InfoTimeout    time.Duration // transient info notifications
	RequestTimeout time.Duration // actionable accept/decline prompts
}

// Service is the notification facade. Initialize once after shell
// registration; Post* methods are safe from any goroutine, including the
// core's callback threads.
type Service struct {
	cfg Config
	log logx.Logger

	mu          sync.Mutex
	backend     Backend
	initialized bool
	ready       bool
	resolver    Resolver
	postTimeout time.Duration

	pending map[uint32]*Pending
	timers  map[uint32]*time.Timer
	early   []earlySignal
}

func New(cfg Config, log logx.Logger) *Service {
	if log.IsZero() {
		log = logx.Nop()
	}
	if cfg.InfoTimeout <= 0 {
		cfg.InfoTimeout = 5 * time.Second
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}
	return &Service{
		cfg:         cfg,
		log:         log,
		postTimeout: defaultPostTimeout,
		pending:     map[uint32]*Pending{},
		timers:      map[uint32]*time.Timer{},
	}
}

// newWithBackend injects a backend; used by tests.
func newWithBackend(cfg Config, log logx.Logger, b Backend) *Service {
	s := New(cfg, log)
	s.backend = b
	return s
}

// SetResolver wires the core in after construction. The facade is built and
// initialized before the core exists (registration must precede the first
// event), so this is deliberately late-bound.
func (s *Service) SetResolver(r Resolver) {
	s.mu.Lock()
	s.resolver = r
	s.mu.Unlock()
}

// Initialize connects the platform backend. Idempotent within the process.
// Returns false when running degraded; the process continues either way, the
// degradation is observable in logs only.
func (s *Service) Initialize() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.initialized {
		return s.ready
	}
	s.initialized = true

	if !s.cfg.Enabled {
		s.log.Info("notifications disabled by config")
		return false
	}
	if s.backend == nil {
		b, err := newBackend()
		if err != nil {
			s.log.Warn("notification backend unavailable; continuing without notifications", logx.Err(err))
			return false
		}
		s.backend = b
	}
	s.ready = true
	s.log.Debug("notification service initialized",
		logx.String("app", s.cfg.AppName),
		logx.String("identity", s.cfg.Identity))
	return true
}

// Ready reports whether notifications will actually be displayed.
func (s *Service) Ready() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ready
}

// Listen blocks serving interaction signals; run under a restart-capable
// supervisor. Returns immediately in degraded mode.
func (s *Service) Listen(ctx context.Context) error {
	s.mu.Lock()
	b := s.backend
	ready := s.ready
	s.mu.Unlock()
	if !ready || b == nil {
		<-ctx.Done()
		return nil
	}
	return b.Listen(ctx, s)
}

// PostInfo submits a fire-and-forget notification. No pending request is
// created; in degraded mode it is a silent no-op.
func (s *Service) PostInfo(title, body string) {
	s.mu.Lock()
	b := s.backend
	ready := s.ready
	s.mu.Unlock()

	if !ready || b == nil {
		s.log.Debug("info notification dropped (degraded)", logx.String("title", title))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.postTimeout)
	defer cancel()
	_, err := b.Post(ctx, Notification{
		AppName:  s.cfg.AppName,
		Identity: s.cfg.Identity,
		Title:    title,
		Body:     body,
		Icon:     s.cfg.Icon,
		Timeout:  s.cfg.InfoTimeout,
	})
	if err != nil {
		s.log.Warn("info notification failed", logx.String("title", title), logx.Err(err))
	}
}

// PostActionable submits an accept/decline prompt and registers exactly one
// pending request for taskID. It returns once the notification has been
// submitted; the resolution arrives later through the signal listener. Every
// failure path (degraded mode, submission error) resolves the request as a
// decline so the requesting peer never hangs.
func (s *Service) PostActionable(title, body, taskID string) bool {
	s.mu.Lock()
	b := s.backend
	ready := s.ready
	r := s.resolver
	s.mu.Unlock()

	p := newPending(taskID, r, s.log)

	if !ready || b == nil {
		s.log.Warn("request prompt dropped (degraded); declining", logx.String("task", taskID))
		p.DisplayFailed()
		return false
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.postTimeout)
	defer cancel()
	id, err := b.Post(ctx, Notification{
		AppName:  s.cfg.AppName,
		Identity: s.cfg.Identity,
		Title:    title,
		Body:     body,
		Icon:     s.cfg.Icon,
		Actions: []Action{
			{Key: actionAccept, Label: "Accept"},
			{Key: actionDecline, Label: "Decline"},
			{Key: actionDefault, Label: "Open"},
		},
		Timeout: s.cfg.RequestTimeout,
	})
	if err != nil {
		s.log.Warn("request prompt failed to display; declining", logx.String("task", taskID), logx.Err(err))
		p.DisplayFailed()
		return false
	}

	s.mu.Lock()
	s.pending[id] = p
	// Failsafe: if the server never emits NotificationClosed (seen with some
	// implementations after session restarts), resolve as a decline anyway.
	s.timers[id] = time.AfterFunc(s.cfg.RequestTimeout+5*time.Second, func() {
		s.expire(id)
	})
	replay := s.takeEarlyLocked(id)
	s.mu.Unlock()

	s.log.Info("request prompt shown",
		logx.Uint64("id", uint64(id)),
		logx.String("task", taskID))

	// Signals that raced the Notify reply were buffered; deliver them now
	// that the id is registered.
	for _, sig := range replay {
		if sig.action {
			s.ActionInvoked(id, sig.key)
		} else {
			s.Closed(id, sig.reason)
		}
	}
	return true
}

// PendingCount reports unresolved prompts; operational signal only.
func (s *Service) PendingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// ActionInvoked implements SignalSink.
func (s *Service) ActionInvoked(id uint32, key string) {
	s.mu.Lock()
	p := s.pending[id]
	if p == nil {
		s.rememberEarlyLocked(earlySignal{id: id, action: true, key: key})
	}
	s.mu.Unlock()
	if p == nil {
		return
	}

	switch key {
	case actionAccept:
		p.ActionChosen(0)
	case actionDefault:
		p.BodyActivated()
	default:
		// Decline and any action key a future server might add.
		p.ActionChosen(1)
	}
	// The entry stays registered until NotificationClosed so a late close
	// signal finds its (already resolved) target instead of a missing id.
}

// Closed implements SignalSink.
func (s *Service) Closed(id uint32, reason uint32) {
	s.mu.Lock()
	p := s.pending[id]
	if p == nil {
		s.rememberEarlyLocked(earlySignal{id: id, reason: reason})
	}
	delete(s.pending, id)
	if t := s.timers[id]; t != nil {
		t.Stop()
		delete(s.timers, id)
	}
	s.mu.Unlock()
	if p == nil {
		return
	}
	p.Dismissed(closeReason(reason))
}

// rememberEarlyLocked buffers a signal for an id we have not registered yet.
// Foreign notifications also land here (the server broadcasts to everyone), so
// the buffer is small and entries age out quickly.
func (s *Service) rememberEarlyLocked(sig earlySignal) {
	sig.at = time.Now()
	cutoff := sig.at.Add(-earlySignalTTL)
	kept := s.early[:0]
	for _, e := range s.early {
		if e.at.After(cutoff) {
			kept = append(kept, e)
		}
	}
	s.early = append(kept, sig)
	if n := len(s.early) - earlySignalCap; n > 0 {
		s.early = s.early[n:]
	}
}

func (s *Service) takeEarlyLocked(id uint32) []earlySignal {
	cutoff := time.Now().Add(-earlySignalTTL)
	var taken []earlySignal
	kept := s.early[:0]
	for _, e := range s.early {
		switch {
		case !e.at.After(cutoff):
		case e.id == id:
			taken = append(taken, e)
		default:
			kept = append(kept, e)
		}
	}
	s.early = kept
	return taken
}

func (s *Service) expire(id uint32) {
	s.mu.Lock()
	p := s.pending[id]
	delete(s.pending, id)
	delete(s.timers, id)
	s.mu.Unlock()
	if p == nil {
		return
	}
	p.Dismissed("failsafe_timeout")
}

// Close resolves anything still pending as declined (shutdown must not leave
// peers waiting) and releases the backend.
func (s *Service) Close() error {
	s.mu.Lock()
	pend := s.pending
	timers := s.timers
	b := s.backend
	s.pending = map[uint32]*Pending{}
	s.timers = map[uint32]*time.Timer{}
	s.backend = nil
	s.ready = false
	s.mu.Unlock()

	for _, t := range timers {
		t.Stop()
	}
	for _, p := range pend {
		p.Dismissed("shutdown")
	}
	if b != nil {
		return b.Close()
	}
	return nil
}

func closeReason(reason uint32) string {
	switch reason {
	case closedExpired:
		return "expired"
	case closedByUser:
		return "user"
	case closedByRequest:
		return "requested"
	default:
		return fmt.Sprintf("reason_%d", reason)
	}
}
