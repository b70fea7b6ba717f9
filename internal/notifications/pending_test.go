package notifications

import (
	"sync"
	"testing"

	logx "dropgate/pkg/logx"
)

type fakeResolver struct {
	mu    sync.Mutex
	calls []resolution
}

type resolution struct {
	taskID string
	accept bool
}

func (r *fakeResolver) ResolveRequest(taskID string, accept bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, resolution{taskID: taskID, accept: accept})
}

func (r *fakeResolver) snapshot() []resolution {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]resolution, len(r.calls))
	copy(out, r.calls)
	return out
}

func TestPendingResolution(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name       string
		act        func(p *Pending)
		wantCalls  int
		wantAccept bool
	}{
		{
			name:       "accept action",
			act:        func(p *Pending) { p.ActionChosen(0) },
			wantCalls:  1,
			wantAccept: true,
		},
		{
			name:       "decline action",
			act:        func(p *Pending) { p.ActionChosen(1) },
			wantCalls:  1,
			wantAccept: false,
		},
		{
			name:       "dismissed",
			act:        func(p *Pending) { p.Dismissed("user") },
			wantCalls:  1,
			wantAccept: false,
		},
		{
			name:       "display failed",
			act:        func(p *Pending) { p.DisplayFailed() },
			wantCalls:  1,
			wantAccept: false,
		},
		{
			name:      "body click does not resolve",
			act:       func(p *Pending) { p.BodyActivated() },
			wantCalls: 0,
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			r := &fakeResolver{}
			p := newPending("task-1", r, logx.Nop())
			tc.act(p)

			calls := r.snapshot()
			if len(calls) != tc.wantCalls {
				t.Fatalf("resolver calls = %d, want %d", len(calls), tc.wantCalls)
			}
			if tc.wantCalls > 0 {
				if calls[0].taskID != "task-1" {
					t.Fatalf("task = %q, want task-1", calls[0].taskID)
				}
				if calls[0].accept != tc.wantAccept {
					t.Fatalf("accept = %v, want %v", calls[0].accept, tc.wantAccept)
				}
			}
		})
	}
}

func TestPendingFirstSignalWins(t *testing.T) {
	t.Parallel()

	r := &fakeResolver{}
	p := newPending("task-2", r, logx.Nop())

	p.ActionChosen(0)
	p.Dismissed("expired")
	p.ActionChosen(1)
	p.DisplayFailed()

	calls := r.snapshot()
	if len(calls) != 1 {
		t.Fatalf("resolver calls = %d, want 1", len(calls))
	}
	if !calls[0].accept {
		t.Fatal("first signal was accept, resolution flipped to decline")
	}
	if !p.Resolved() {
		t.Fatal("pending not marked resolved")
	}
}

func TestPendingConcurrentSignals(t *testing.T) {
	t.Parallel()

	r := &fakeResolver{}
	p := newPending("task-3", r, logx.Nop())

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				p.ActionChosen(0)
			} else {
				p.Dismissed("race")
			}
		}(i)
	}
	wg.Wait()

	if got := len(r.snapshot()); got != 1 {
		t.Fatalf("resolver calls = %d, want exactly 1", got)
	}
}

func TestPendingNilResolver(t *testing.T) {
	t.Parallel()

	p := newPending("task-4", nil, logx.Nop())
	p.ActionChosen(0) // must not panic
	if !p.Resolved() {
		t.Fatal("pending not resolved")
	}
}
