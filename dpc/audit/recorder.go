package audit

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"

	dpcErrors "github.com/dpcdirect/dpc-app/dpc/errors"
	"github.com/dpcdirect/dpc-app/dpc/models"
	"github.com/dpcdirect/dpc-app/dpc/utils"
	"github.com/dpcdirect/dpc-app/log"
)

// WriteArgs is the serialized form of a dead-lettered audit write. Exactly
// one of the two fields is set.
type WriteArgs struct {
	Entry         *models.AuditLog         `json:"entry,omitempty"`
	SecurityEntry *models.SecurityAuditLog `json:"security_entry,omitempty"`
}

// Auditor is the write-side surface of the Recorder. Services depend on this
// interface so tests can observe submitted entries synchronously.
type Auditor interface {
	Record(entry models.AuditLog)
	RecordSecurity(entry models.SecurityAuditLog)
}

var _ Auditor = (*Recorder)(nil)

type event struct {
	entry         *models.AuditLog
	securityEntry *models.SecurityAuditLog

	// Non-nil for flush markers; closed once every earlier event is written.
	flushed chan struct{}
}

// Recorder writes audit entries off the caller's request path. A single
// goroutine drains the buffer, so entries submitted by one actor are written
// in submission order. Failed writes are retried with exponential backoff and
// then handed to the dead-letter queue; they never fail the operation that
// produced them.
type Recorder struct {
	repository models.AuditRepository
	deadLetter Enqueuer

	events chan event
	done   chan struct{}

	maxRetries      uint64
	initialInterval time.Duration
}

func NewRecorder(repository models.AuditRepository, deadLetter Enqueuer) *Recorder {
	r := &Recorder{
		repository:      repository,
		deadLetter:      deadLetter,
		events:          make(chan event, utils.GetEnvInt("DPC_AUDIT_BUFFER_SIZE", 256)),
		done:            make(chan struct{}),
		maxRetries:      uint64(utils.GetEnvInt("DPC_AUDIT_MAX_RETRIES", 3)),
		initialInterval: 100 * time.Millisecond,
	}
	go r.run()
	return r
}

// Record submits an operational audit entry. It blocks only when the buffer
// is full.
func (r *Recorder) Record(entry models.AuditLog) {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}
	r.events <- event{entry: &entry}
}

// RecordSecurity submits a security audit entry.
func (r *Recorder) RecordSecurity(entry models.SecurityAuditLog) {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}
	r.events <- event{securityEntry: &entry}
}

// Flush blocks until every entry submitted before the call has been written
// or dead-lettered.
func (r *Recorder) Flush() {
	flushed := make(chan struct{})
	r.events <- event{flushed: flushed}
	<-flushed
}

// Close drains the buffer and stops the writer. The recorder must not be
// used afterwards.
func (r *Recorder) Close() {
	close(r.events)
	<-r.done
}

func (r *Recorder) run() {
	defer close(r.done)
	for e := range r.events {
		if e.flushed != nil {
			close(e.flushed)
			continue
		}
		r.write(e)
	}
}

func (r *Recorder) write(e event) {
	op := func() error {
		var err error
		if e.entry != nil {
			_, err = r.repository.CreateAuditLog(context.Background(), *e.entry)
		} else {
			_, err = r.repository.CreateSecurityAuditLog(context.Background(), *e.securityEntry)
		}
		return err
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = r.initialInterval
	err := backoff.Retry(op, backoff.WithMaxRetries(b, r.maxRetries))
	if err == nil {
		return
	}

	writeErr := &dpcErrors.AuditWriteError{Err: err}
	log.Audit.Warnf("Dead-lettering audit entry after retries: %s", writeErr.Error())
	if err := r.deadLetter.Enqueue(WriteArgs{Entry: e.entry, SecurityEntry: e.securityEntry}); err != nil {
		// Nothing left to do but log; the entry is lost.
		log.Audit.Errorf("Failed to dead-letter audit entry: %s", err.Error())
	}
}

// Success builds an audit entry for a completed operation.
func Success(actor models.Actor, action models.AuditAction, kind models.EntityKind, entityID uint, details map[string]interface{}) models.AuditLog {
	return entry(actor, action, kind, entityID, details, models.AuditStatusSuccess, "")
}

// Failure builds an audit entry for an operation that was attempted and
// rejected or errored.
func Failure(actor models.Actor, action models.AuditAction, kind models.EntityKind, entityID uint, details map[string]interface{}, opErr error) models.AuditLog {
	msg := ""
	if opErr != nil {
		msg = opErr.Error()
	}
	return entry(actor, action, kind, entityID, details, models.AuditStatusError, msg)
}

func entry(actor models.Actor, action models.AuditAction, kind models.EntityKind, entityID uint, details map[string]interface{}, status, errMsg string) models.AuditLog {
	return models.AuditLog{
		ActorID:      actor.ID,
		ActorType:    actor.Type,
		Action:       action,
		EntityKind:   kind,
		EntityID:     entityID,
		Details:      details,
		Status:       status,
		ErrorMessage: errMsg,
		IPAddress:    actor.IPAddress,
		UserAgent:    actor.UserAgent,
		Timestamp:    time.Now().UTC(),
	}
}
