package database

import (
	"database/sql"
	"log"
	"time"

	_ "github.com/lib/pq"
)

// Variable substitution to support testing.
var LogFatal = log.Fatal

func GetDbConnection() *sql.DB {
	cfg, err := LoadConfig()
	if err != nil {
		LogFatal(err)
	}

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		LogFatal(err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetimeMin) * time.Minute)
	db.SetConnMaxIdleTime(time.Duration(cfg.ConnMaxIdleTime) * time.Minute)

	if pingErr := db.Ping(); pingErr != nil {
		LogFatal(pingErr)
	}
	return db
}
