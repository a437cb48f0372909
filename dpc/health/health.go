package health

import (
	"database/sql"

	"github.com/dpcdirect/dpc-app/log"
)

type HealthChecker struct {
	db *sql.DB
}

func NewHealthChecker(db *sql.DB) HealthChecker {
	return HealthChecker{db: db}
}

func (h HealthChecker) IsDatabaseOK() (result string, ok bool) {
	if err := h.db.Ping(); err != nil {
		log.API.Errorf("Health check ping error: %s", err.Error())
		return "database ping error", false
	}
	return "ok", true
}
