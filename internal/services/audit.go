package services

import (
	"context"
	"encoding/json"
	"log"
	"time"
)

type AuditSink interface {
	Log(ctx context.Context, actorID, action, entityType, entityID, data string) error
}

// AuditLogger is what the state machines depend on. Recording is fire and
// forget: a failed audit write never rolls back the ledger mutation it
// describes.
type AuditLogger interface {
	Record(actorID, action, entityType, entityID string, data map[string]string)
}

type auditEntry struct {
	actorID    string
	action     string
	entityType string
	entityID   string
	data       string
}

// AuditRecorder drains privileged-action records to the audit store on a
// background worker, retrying each write a few times before giving up with
// a log line. Record never blocks the caller.
type AuditRecorder struct {
	sink    AuditSink
	entries chan auditEntry
	done    chan struct{}
}

func NewAuditRecorder(sink AuditSink, buffer int) *AuditRecorder {
	if buffer <= 0 {
		buffer = 256
	}
	r := &AuditRecorder{
		sink:    sink,
		entries: make(chan auditEntry, buffer),
		done:    make(chan struct{}),
	}
	go r.run()
	return r
}

func (r *AuditRecorder) Record(actorID, action, entityType, entityID string, data map[string]string) {
	payload := "{}"
	if len(data) > 0 {
		if encoded, err := json.Marshal(data); err == nil {
			payload = string(encoded)
		}
	}
	entry := auditEntry{
		actorID:    actorID,
		action:     action,
		entityType: entityType,
		entityID:   entityID,
		data:       payload,
	}
	select {
	case r.entries <- entry:
	default:
		log.Printf("audit buffer full, dropping %s %s/%s", action, entityType, entityID)
	}
}

// Close stops accepting entries and drains what is already queued.
func (r *AuditRecorder) Close() {
	close(r.entries)
	<-r.done
}

func (r *AuditRecorder) run() {
	defer close(r.done)
	for entry := range r.entries {
		r.write(entry)
	}
}

func (r *AuditRecorder) write(entry auditEntry) {
	const maxAttempts = 3
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := r.sink.Log(ctx, entry.actorID, entry.action, entry.entityType, entry.entityID, entry.data)
		cancel()
		if err == nil {
			return
		}
		if attempt == maxAttempts {
			log.Printf("audit write failed after %d attempts: %v", maxAttempts, err)
			return
		}
		time.Sleep(time.Duration(attempt) * 100 * time.Millisecond)
	}
}
