package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	logx "dropgate/pkg/logx"
)

func openTestStore(t *testing.T, dir string) Store {
	t.Helper()
	st, err := Open(Config{Driver: "file", Path: filepath.Join(dir, "hist")}, logx.Nop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if st == nil {
		t.Fatal("expected store, got nil")
	}
	return st
}

func TestOpenDisabled(t *testing.T) {
	t.Parallel()
	for _, driver := range []string{"", "none"} {
		st, err := Open(Config{Driver: driver}, logx.Nop())
		if err != nil || st != nil {
			t.Fatalf("Open(%q) = (%v, %v), want (nil, nil)", driver, st, err)
		}
	}
}

func TestOpenUnknownDriver(t *testing.T) {
	t.Parallel()
	if _, err := Open(Config{Driver: "bolt"}, logx.Nop()); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}

func TestAppendAndRecent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	st := openTestStore(t, t.TempDir())
	defer st.Close()

	now := time.Now()
	recs := []TransferRecord{
		{At: now.Add(-2 * time.Minute), TaskID: "t1", Outcome: OutcomeCompleted, Detail: "/downloads/a.txt"},
		{At: now.Add(-1 * time.Minute), TaskID: "t2", Outcome: OutcomeRejected, Detail: "declined"},
		{At: now, TaskID: "t3", Outcome: OutcomeError, Detail: "io failure"},
	}
	for _, rec := range recs {
		if err := st.AppendTransfer(ctx, rec); err != nil {
			t.Fatalf("AppendTransfer: %v", err)
		}
	}

	got, err := st.RecentTransfers(ctx, 2)
	if err != nil {
		t.Fatalf("RecentTransfers: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].TaskID != "t2" || got[1].TaskID != "t3" {
		t.Fatalf("unexpected order: %q, %q", got[0].TaskID, got[1].TaskID)
	}
}

func TestRecentSurvivesReopen(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	dir := t.TempDir()

	st := openTestStore(t, dir)
	if err := st.AppendTransfer(ctx, TransferRecord{TaskID: "t1", Outcome: OutcomeCompleted}); err != nil {
		t.Fatalf("AppendTransfer: %v", err)
	}
	if err := st.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	st = openTestStore(t, dir)
	defer st.Close()
	got, err := st.RecentTransfers(ctx, 10)
	if err != nil {
		t.Fatalf("RecentTransfers: %v", err)
	}
	if len(got) != 1 || got[0].TaskID != "t1" {
		t.Fatalf("unexpected records: %+v", got)
	}
}

func TestPruneTransfers(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	st := openTestStore(t, t.TempDir())
	defer st.Close()

	now := time.Now()
	old := TransferRecord{At: now.Add(-48 * time.Hour), TaskID: "old", Outcome: OutcomeCompleted}
	fresh := TransferRecord{At: now, TaskID: "fresh", Outcome: OutcomeCompleted}
	for _, rec := range []TransferRecord{old, fresh} {
		if err := st.AppendTransfer(ctx, rec); err != nil {
			t.Fatalf("AppendTransfer: %v", err)
		}
	}

	dropped, err := st.PruneTransfers(ctx, now.Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("PruneTransfers: %v", err)
	}
	if dropped != 1 {
		t.Fatalf("dropped = %d, want 1", dropped)
	}

	got, err := st.RecentTransfers(ctx, 10)
	if err != nil {
		t.Fatalf("RecentTransfers: %v", err)
	}
	if len(got) != 1 || got[0].TaskID != "fresh" {
		t.Fatalf("unexpected records: %+v", got)
	}

	// Appends still work after the rewrite.
	if err := st.AppendTransfer(ctx, TransferRecord{TaskID: "after", Outcome: OutcomeRejected}); err != nil {
		t.Fatalf("AppendTransfer after prune: %v", err)
	}

	dropped, err = st.PruneTransfers(ctx, now.Add(-24*time.Hour))
	if err != nil || dropped != 0 {
		t.Fatalf("second prune = (%d, %v), want (0, nil)", dropped, err)
	}
}
