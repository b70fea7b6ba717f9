package dispatch

import "testing"

func TestProgressTrackerDeciles(t *testing.T) {
	t.Parallel()

	tr := newProgressTracker()

	steps := []struct {
		pct  uint64
		want bool
	}{
		{0, true},   // first report always logs
		{3, false},  // same decile
		{9, false},  // still the 0-9 band
		{10, true},  // crossed into 10-19
		{14, false},
		{47, true},  // skipped deciles still log once
		{100, true},
	}
	for _, s := range steps {
		if got := tr.crossed("task-1", s.pct); got != s.want {
			t.Fatalf("crossed(%d) = %v, want %v", s.pct, got, s.want)
		}
	}
}

func TestProgressTrackerPerTask(t *testing.T) {
	t.Parallel()

	tr := newProgressTracker()
	if !tr.crossed("a", 50) {
		t.Fatal("first report for task a did not cross")
	}
	if !tr.crossed("b", 50) {
		t.Fatal("task b shares state with task a")
	}
	if tr.crossed("a", 55) {
		t.Fatal("same decile reported twice for task a")
	}

	tr.forget("a")
	if tr.size() != 1 {
		t.Fatalf("size = %d after forget, want 1", tr.size())
	}
	if !tr.crossed("a", 55) {
		t.Fatal("forgotten task did not reset")
	}
}
