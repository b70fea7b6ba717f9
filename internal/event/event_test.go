package event

import "testing"

func TestDecodeCopiesFields(t *testing.T) {
	t.Parallel()
	ev := Decode(6, "task-1", "[[REQ]]|report.pdf|2048|Alice|LaptopA", "", 0, 0)
	if ev.Kind != KindIncomingRequest {
		t.Fatalf("Kind = %v, want %v", ev.Kind, KindIncomingRequest)
	}
	if ev.TaskID != "task-1" {
		t.Fatalf("TaskID = %q", ev.TaskID)
	}
	if ev.Field1 != "[[REQ]]|report.pdf|2048|Alice|LaptopA" {
		t.Fatalf("Field1 = %q", ev.Field1)
	}
}

func TestKindKnown(t *testing.T) {
	t.Parallel()
	for k := KindLog; k <= KindServerStarted; k++ {
		if !k.Known() {
			t.Fatalf("kind %d should be known", k)
		}
	}
	for _, k := range []Kind{-1, 11, 42, 99} {
		if k.Known() {
			t.Fatalf("kind %d should be unknown", k)
		}
	}
}

func TestPercent(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		done uint64
		tot  uint64
		pct  uint64
		ok   bool
	}{
		{name: "half", done: 50, tot: 100, pct: 50, ok: true},
		{name: "complete", done: 2048, tot: 2048, pct: 100, ok: true},
		{name: "rounds down", done: 1, tot: 3, pct: 33, ok: true},
		{name: "zero total", done: 10, tot: 0, pct: 0, ok: false},
		{name: "zero done", done: 0, tot: 100, pct: 0, ok: true},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			ev := Event{Kind: KindProgress, N1: tt.done, N2: tt.tot}
			pct, ok := ev.Percent()
			if ok != tt.ok || pct != tt.pct {
				t.Fatalf("Percent() = (%d, %v), want (%d, %v)", pct, ok, tt.pct, tt.ok)
			}
		})
	}
}

func TestKindString(t *testing.T) {
	t.Parallel()
	if got := KindIncomingRequest.String(); got != "incoming_request" {
		t.Fatalf("String() = %q", got)
	}
	if got := Kind(77).String(); got != "kind(77)" {
		t.Fatalf("String() = %q", got)
	}
}
