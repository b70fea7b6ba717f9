// Package history records transfer outcomes off the event bus and prunes old
// records on a schedule. It is an observer: losing it (storage unavailable,
// dropped bus messages under load) never affects a transfer.
package history

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"dropgate/internal/event"
	"dropgate/internal/eventbus"
	"dropgate/internal/storage"
	logx "dropgate/pkg/logx"
)

const subscribeBuffer = 64

type Config struct {
	Retention     time.Duration // records older than this are pruned
	PruneSchedule string        // standard 5-field cron expression
}

type Service struct {
	cfg   Config
	store storage.Store
	bus   eventbus.Bus
	log   logx.Logger
	sched cron.Schedule
}

// New builds the history service. The prune schedule is validated here so a
// config typo surfaces at startup, not at the first prune.
func New(cfg Config, store storage.Store, bus eventbus.Bus, log logx.Logger) (*Service, error) {
	if log.IsZero() {
		log = logx.Nop()
	}
	sched, err := cron.ParseStandard(cfg.PruneSchedule)
	if err != nil {
		return nil, err
	}
	return &Service{cfg: cfg, store: store, bus: bus, log: log, sched: sched}, nil
}

// Run consumes outcome messages until ctx is canceled. Meant to run under the
// supervisor.
func (s *Service) Run(ctx context.Context) error {
	if s.store == nil {
		<-ctx.Done()
		return nil
	}

	sub := s.bus.Subscribe(subscribeBuffer)
	defer sub.Close()

	timer := time.NewTimer(time.Until(s.sched.Next(time.Now())))
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case m, ok := <-sub.C:
			if !ok {
				return nil
			}
			s.record(ctx, m)
		case <-timer.C:
			s.prune(ctx)
			timer.Reset(time.Until(s.sched.Next(time.Now())))
		}
	}
}

func (s *Service) record(ctx context.Context, m eventbus.Message) {
	var outcome string
	switch m.Topic {
	case eventbus.TopicTransferCompleted:
		outcome = storage.OutcomeCompleted
	case eventbus.TopicTransferRejected:
		outcome = storage.OutcomeRejected
	case eventbus.TopicTransferError:
		outcome = storage.OutcomeError
	default:
		return
	}

	e, ok := m.Data.(event.Event)
	if !ok {
		return
	}

	rec := storage.TransferRecord{
		At:      m.Time,
		TaskID:  e.TaskID,
		Outcome: outcome,
		Detail:  e.Field1,
	}
	if err := s.store.AppendTransfer(ctx, rec); err != nil {
		s.log.Warn("history append failed",
			logx.String("task", rec.TaskID),
			logx.String("outcome", rec.Outcome),
			logx.Err(err))
	}
}

func (s *Service) prune(ctx context.Context) {
	if s.cfg.Retention <= 0 {
		return
	}
	cutoff := time.Now().Add(-s.cfg.Retention)
	n, err := s.store.PruneTransfers(ctx, cutoff)
	if err != nil {
		s.log.Warn("history prune failed", logx.Err(err))
		return
	}
	if n > 0 {
		s.log.Info("history pruned",
			logx.Int("removed", n),
			logx.Time("cutoff", cutoff))
	}
}
