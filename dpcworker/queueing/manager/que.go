package manager

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/bgentry/que-go"
	"github.com/jackc/pgx"
	log "github.com/sirupsen/logrus"

	"github.com/dpcdirect/dpc-app/dpc/audit"
	"github.com/dpcdirect/dpc-app/dpc/database"
	dpcErrors "github.com/dpcdirect/dpc-app/dpc/errors"
	"github.com/dpcdirect/dpc-app/dpc/models"
	"github.com/dpcdirect/dpc-app/dpc/models/postgres"
	"github.com/dpcdirect/dpc-app/dpc/utils"
)

// queue retrieves dead-lettered audit writes using the que client and
// re-drives them into the audit tables.
type queue struct {
	quePool           *que.WorkerPool
	pool              *pgx.ConnPool
	healthCheckCancel context.CancelFunc

	db         *sql.DB
	repository models.AuditRepository
}

// StartQue creates a que-go client and begins listening for items.
// It returns immediately since all of the associated workers are started
// in separate goroutines.
func StartQue(queueDatabaseURL string, numWorkers int) *queue {
	q := &queue{db: database.GetDbConnection()}
	q.repository = postgres.NewRepository(q.db)

	cfg, err := pgx.ParseURI(queueDatabaseURL)
	if err != nil {
		log.Fatal(err)
	}

	q.pool, err = pgx.NewConnPool(pgx.ConnPoolConfig{
		ConnConfig:   cfg,
		AfterConnect: que.PrepareStatements,
	})
	if err != nil {
		log.Fatal(err)
	}

	// Ensure that the connections are valid. Needed until we move to pgx v4
	ctx, cancel := context.WithCancel(context.Background())
	q.healthCheckCancel = cancel
	database.StartHealthCheck(ctx, q.pool, 10*time.Second)

	qc := que.NewClient(q.pool)
	wm := que.WorkMap{
		audit.QUE_AUDIT_WRITE: q.processAuditWrite,
	}

	q.quePool = que.NewWorkerPool(qc, wm, numWorkers)
	q.quePool.Start()

	return q
}

// StopQue cleans up any resources created
func (q *queue) StopQue() {
	q.healthCheckCancel()
	q.quePool.Shutdown()
	q.pool.Close()
	if err := q.db.Close(); err != nil {
		log.Warnf("Failed to close db connection: %s", err.Error())
	}
}

func (q *queue) processAuditWrite(job *que.Job) error {
	ctx := context.Background()

	var args audit.WriteArgs
	if err := json.Unmarshal(job.Args, &args); err != nil {
		// ACK the job because retrying it won't help us be able to deserialize the data
		log.Errorf("Failed to deserialize audit write job %d, removing from queue: %s", job.ID, err.Error())
		return nil
	}

	var err error
	switch {
	case args.Entry != nil:
		_, err = q.repository.CreateAuditLog(ctx, *args.Entry)
	case args.SecurityEntry != nil:
		_, err = q.repository.CreateSecurityAuditLog(ctx, *args.SecurityEntry)
	default:
		// Nothing to write; remove the job.
		log.Errorf("Audit write job %d carries no entry, removing from queue", job.ID)
		return nil
	}
	if err != nil {
		maxRetries := int32(utils.GetEnvInt("DPC_WORKER_MAX_AUDIT_RETRIES", 10))
		if job.ErrorCount >= maxRetries {
			log.Errorf("Audit write job %d failed, retries exhausted, removing from queue: %s", job.ID, err.Error())
			return nil
		}
		// The typed error ends up in que_jobs.last_error for operators.
		return &dpcErrors.AuditWriteError{Err: err}
	}

	return nil
}
