package audit

import (
	"encoding/json"

	"github.com/bgentry/que-go"
)

// QUE_AUDIT_WRITE is the job type consumed by the worker that re-drives
// dead-lettered audit writes.
const QUE_AUDIT_WRITE = "AuditWrite"

// Enqueuer hands failed audit writes to the durable job queue. It is an
// interface so the queue can be mocked for testing.
type Enqueuer interface {
	Enqueue(args WriteArgs) error
}

type queEnqueuer struct {
	client *que.Client
}

// NewEnqueuer wraps a que client for dead-letter inserts.
func NewEnqueuer(client *que.Client) Enqueuer {
	return queEnqueuer{client}
}

func (q queEnqueuer) Enqueue(args WriteArgs) error {
	b, err := json.Marshal(args)
	if err != nil {
		return err
	}
	return q.client.Enqueue(&que.Job{Type: QUE_AUDIT_WRITE, Args: b})
}
