package services

import (
	"context"
	"errors"
	"sync"
	"testing"
)

type memorySink struct {
	mu      sync.Mutex
	entries []string
	fail    int
}

func (s *memorySink) Log(_ context.Context, actorID, action, entityType, entityID, data string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail > 0 {
		s.fail--
		return errors.New("sink unavailable")
	}
	s.entries = append(s.entries, action)
	return nil
}

func TestAuditRecorderDrainsOnClose(t *testing.T) {
	sink := &memorySink{}
	recorder := NewAuditRecorder(sink, 8)
	recorder.Record("admin-1", "review_submission", "task_submission", "sub-1", map[string]string{"action": "approve"})
	recorder.Record("admin-1", "process_withdrawal", "transaction", "tx-1", nil)
	recorder.Close()

	if len(sink.entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(sink.entries))
	}
	if sink.entries[0] != "review_submission" || sink.entries[1] != "process_withdrawal" {
		t.Fatalf("unexpected entries: %#v", sink.entries)
	}
}

func TestAuditRecorderRetriesTransientFailures(t *testing.T) {
	sink := &memorySink{fail: 2}
	recorder := NewAuditRecorder(sink, 8)
	recorder.Record("admin-1", "review_submission", "task_submission", "sub-1", nil)
	recorder.Close()

	if len(sink.entries) != 1 {
		t.Fatalf("expected the entry after retries, got %#v", sink.entries)
	}
}
