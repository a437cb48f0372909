package database

import (
	"context"
	"time"

	"github.com/jackc/pgx"

	"github.com/dpcdirect/dpc-app/log"
)

// StartHealthCheck verifies the connections in the pool on the supplied
// interval. Needed until we move to pgx v4, which validates connections
// on acquire.
func StartHealthCheck(ctx context.Context, pool *pgx.ConnPool, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				conn, err := pool.Acquire()
				if err != nil {
					log.Worker.Warnf("Failed to acquire queue connection during health check: %s", err.Error())
					continue
				}
				pool.Release(conn)
			}
		}
	}()
}
