package storage

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	logx "dropgate/pkg/logx"
)

// maxCached bounds the in-memory tail used to answer RecentTransfers without
// re-reading the file.
const maxCached = 500

// fileStore is a dependency-free persistence backend.
//
// Layout: <prefix>.transfers.jsonl, append-only JSON Lines. Prune rewrites
// the file in place (history volume is small; a transfer host sees at most a
// few records per minute).
type fileStore struct {
	log logx.Logger

	mu sync.Mutex

	path string
	f    *os.File

	// tail holds the most recent records, oldest first.
	tail []TransferRecord
}

func openFile(cfg Config, log logx.Logger) (Store, error) {
	path := strings.TrimSpace(cfg.Path)
	if path == "" {
		return nil, errors.New("storage.path is required for file driver")
	}
	if log.IsZero() {
		log = logx.Nop()
	}

	dir := filepath.Dir(path)
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	full := filepath.Join(dir, base+".transfers.jsonl")

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	tail, err := loadTail(full, maxCached)
	if err != nil {
		return nil, err
	}

	f, err := os.OpenFile(full, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, err
	}

	return &fileStore{log: log, path: full, f: f, tail: tail}, nil
}

func loadTail(path string, limit int) ([]TransferRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	var recs []TransferRecord
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		var rec TransferRecord
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			// A torn final line after a crash is expected; skip it.
			continue
		}
		recs = append(recs, rec)
		if len(recs) > limit {
			recs = recs[len(recs)-limit:]
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return recs, nil
}

func (s *fileStore) AppendTransfer(_ context.Context, rec TransferRecord) error {
	if s == nil || s.f == nil {
		return ErrDisabled
	}
	if rec.At.IsZero() {
		rec.At = time.Now()
	}
	b, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	b = append(b, '\n')

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.f.Write(b); err != nil {
		return err
	}
	s.tail = append(s.tail, rec)
	if len(s.tail) > maxCached {
		s.tail = s.tail[len(s.tail)-maxCached:]
	}
	return nil
}

func (s *fileStore) RecentTransfers(_ context.Context, limit int) ([]TransferRecord, error) {
	if s == nil {
		return nil, ErrDisabled
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.tail)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]TransferRecord, n)
	copy(out, s.tail[len(s.tail)-n:])
	return out, nil
}

func (s *fileStore) PruneTransfers(_ context.Context, olderThan time.Time) (int, error) {
	if s == nil || s.f == nil {
		return 0, ErrDisabled
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := loadTail(s.path, 1<<30)
	if err != nil {
		return 0, err
	}
	kept := all[:0]
	for _, rec := range all {
		if !rec.At.Before(olderThan) {
			kept = append(kept, rec)
		}
	}
	dropped := len(all) - len(kept)
	if dropped == 0 {
		return 0, nil
	}

	// Rewrite atomically: temp file + rename, then reopen the append handle.
	tmp := s.path + ".tmp"
	tf, err := os.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return 0, err
	}
	w := bufio.NewWriter(tf)
	for _, rec := range kept {
		b, err := json.Marshal(rec)
		if err != nil {
			_ = tf.Close()
			return 0, err
		}
		b = append(b, '\n')
		if _, err := w.Write(b); err != nil {
			_ = tf.Close()
			return 0, err
		}
	}
	if err := w.Flush(); err != nil {
		_ = tf.Close()
		return 0, err
	}
	if err := tf.Close(); err != nil {
		return 0, err
	}

	_ = s.f.Close()
	if err := os.Rename(tmp, s.path); err != nil {
		return 0, err
	}
	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return 0, err
	}
	s.f = f

	if len(kept) > maxCached {
		kept = kept[len(kept)-maxCached:]
	}
	s.tail = append([]TransferRecord(nil), kept...)

	s.log.Debug("pruned transfer history", logx.Int("dropped", dropped), logx.Int("kept", len(kept)))
	return dropped, nil
}

func (s *fileStore) Close() error {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.f == nil {
		return nil
	}
	err := s.f.Close()
	s.f = nil
	return err
}
