package dispatch

import (
	"strings"
	"sync"
	"testing"

	"dropgate/internal/event"
	"dropgate/internal/eventbus"
	logx "dropgate/pkg/logx"
)

type fakeNotifier struct {
	mu         sync.Mutex
	infos      [][2]string // title, body
	actionable []struct {
		Title, Body, TaskID string
	}
}

func (n *fakeNotifier) PostInfo(title, body string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.infos = append(n.infos, [2]string{title, body})
}

func (n *fakeNotifier) PostActionable(title, body, taskID string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.actionable = append(n.actionable, struct{ Title, Body, TaskID string }{title, body, taskID})
	return true
}

func drain(t *testing.T, sub *eventbus.Subscription) []eventbus.Message {
	t.Helper()
	var out []eventbus.Message
	for {
		select {
		case m := <-sub.C:
			out = append(out, m)
		default:
			return out
		}
	}
}

func newTestDispatcher() (*Dispatcher, *fakeNotifier, *eventbus.Subscription) {
	n := &fakeNotifier{}
	bus := eventbus.New()
	sub := bus.Subscribe(16)
	return New(logx.Nop(), n, bus), n, sub
}

func TestDispatchCompleted(t *testing.T) {
	t.Parallel()

	d, n, sub := newTestDispatcher()
	d.Handle(event.Event{Kind: event.KindCompleted, TaskID: "t1", Field1: "/home/u/Downloads/report.pdf"})

	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.infos) != 1 {
		t.Fatalf("info notifications = %d, want 1", len(n.infos))
	}
	if n.infos[0][0] != "File Transfer Complete" {
		t.Fatalf("title = %q", n.infos[0][0])
	}
	if n.infos[0][1] != "Saved to: /home/u/Downloads/report.pdf" {
		t.Fatalf("body = %q", n.infos[0][1])
	}

	msgs := drain(t, sub)
	if len(msgs) != 1 || msgs[0].Topic != eventbus.TopicTransferCompleted {
		t.Fatalf("bus messages = %+v, want one on %s", msgs, eventbus.TopicTransferCompleted)
	}
}

func TestDispatchIncomingRequest(t *testing.T) {
	t.Parallel()

	d, n, sub := newTestDispatcher()
	d.Handle(event.Event{
		Kind:   event.KindIncomingRequest,
		TaskID: "t2",
		Field1: "[[REQ]]|report.pdf|2048|Alice|LaptopA",
	})

	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.actionable) != 1 {
		t.Fatalf("actionable notifications = %d, want 1", len(n.actionable))
	}
	a := n.actionable[0]
	if a.TaskID != "t2" {
		t.Fatalf("task = %q", a.TaskID)
	}
	if a.Title != "Incoming File Transfer" {
		t.Fatalf("title = %q", a.Title)
	}
	if a.Body != "report.pdf (2.0 KiB) from Alice (LaptopA)" {
		t.Fatalf("body = %q", a.Body)
	}

	msgs := drain(t, sub)
	if len(msgs) != 1 || msgs[0].Topic != eventbus.TopicRequestReceived {
		t.Fatalf("bus messages = %+v", msgs)
	}
}

func TestDispatchMalformedRequestUsesPlaceholders(t *testing.T) {
	t.Parallel()

	d, n, _ := newTestDispatcher()
	d.Handle(event.Event{Kind: event.KindIncomingRequest, TaskID: "t3", Field1: "garbage-no-delimiter"})

	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.actionable) != 1 {
		t.Fatalf("actionable notifications = %d, want 1", len(n.actionable))
	}
	if !strings.Contains(n.actionable[0].Body, event.Placeholder) {
		t.Fatalf("body %q does not carry placeholder fields", n.actionable[0].Body)
	}
}

func TestDispatchErrorRecordsWithoutNotification(t *testing.T) {
	t.Parallel()

	d, n, sub := newTestDispatcher()
	d.Handle(event.Event{Kind: event.KindError, TaskID: "t4", Field1: "connection reset"})

	n.mu.Lock()
	infos := len(n.infos)
	n.mu.Unlock()
	if infos != 0 {
		t.Fatalf("error event produced %d notifications, want 0", infos)
	}

	msgs := drain(t, sub)
	if len(msgs) != 1 || msgs[0].Topic != eventbus.TopicTransferError {
		t.Fatalf("bus messages = %+v", msgs)
	}
}

func TestDispatchRejected(t *testing.T) {
	t.Parallel()

	d, n, sub := newTestDispatcher()
	d.Handle(event.Event{Kind: event.KindRejected, TaskID: "t5", Field1: "declined by receiver"})

	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.infos) != 1 || n.infos[0][0] != "File Transfer Declined" {
		t.Fatalf("infos = %+v", n.infos)
	}

	msgs := drain(t, sub)
	if len(msgs) != 1 || msgs[0].Topic != eventbus.TopicTransferRejected {
		t.Fatalf("bus messages = %+v", msgs)
	}
}

func TestDispatchProgressZeroTotalIgnored(t *testing.T) {
	t.Parallel()

	d, _, _ := newTestDispatcher()
	d.Handle(event.Event{Kind: event.KindProgress, TaskID: "t6", N1: 10, N2: 0})
	if d.progress.size() != 0 {
		t.Fatal("zero-total progress event recorded tracker state")
	}
}

func TestDispatchTerminalEventsClearProgress(t *testing.T) {
	t.Parallel()

	d, _, _ := newTestDispatcher()
	d.Handle(event.Event{Kind: event.KindProgress, TaskID: "t7", N1: 50, N2: 100})
	if d.progress.size() != 1 {
		t.Fatal("progress event not tracked")
	}
	d.Handle(event.Event{Kind: event.KindCompleted, TaskID: "t7", Field1: "/tmp/f"})
	if d.progress.size() != 0 {
		t.Fatal("completion left progress state behind")
	}
}

func TestDispatchUnknownKindIgnored(t *testing.T) {
	t.Parallel()

	d, n, sub := newTestDispatcher()
	d.Handle(event.Event{Kind: 42, TaskID: "t8", Field1: "future"})

	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.infos) != 0 || len(n.actionable) != 0 {
		t.Fatal("unknown kind reached the notifier")
	}
	if msgs := drain(t, sub); len(msgs) != 0 {
		t.Fatalf("unknown kind published %+v", msgs)
	}
}

func TestFormatSize(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   uint64
		want string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{2048, "2.0 KiB"},
		{5 * 1024 * 1024, "5.0 MiB"},
		{3 * 1024 * 1024 * 1024, "3.0 GiB"},
	}
	for _, tc := range cases {
		if got := formatSize(tc.in); got != tc.want {
			t.Errorf("formatSize(%d) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
