package dpccli

import (
	"fmt"
	"net/http"
	"time"

	"github.com/bgentry/que-go"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli"

	"github.com/dpcdirect/dpc-app/dpc/audit"
	"github.com/dpcdirect/dpc-app/dpc/constants"
	"github.com/dpcdirect/dpc-app/dpc/database"
	"github.com/dpcdirect/dpc-app/dpc/models/postgres"
	"github.com/dpcdirect/dpc-app/dpc/utils"
	"github.com/dpcdirect/dpc-app/dpc/web"
)

// App Name and usage. Edit them here to prevent breaking tests
const Name = "dpc"
const Usage = "Direct Primary Care enrollment and billing CLI"

func GetApp() *cli.App {
	return setUpApp()
}

func setUpApp() *cli.App {
	app := cli.NewApp()
	app.Name = Name
	app.Usage = Usage
	app.Version = constants.Version
	var migrationPath string
	var steps int
	app.Commands = []cli.Command{
		{
			Name:  "start-api",
			Usage: "Start the API",
			Action: func(c *cli.Context) error {
				cfg, err := database.LoadConfig()
				if err != nil {
					return err
				}

				// Audit dead-letter queue connection
				pgxcfg, err := pgx.ParseURI(cfg.QueueDatabaseURL)
				if err != nil {
					return err
				}
				pgxpool, err := pgx.NewConnPool(pgx.ConnPoolConfig{
					ConnConfig:   pgxcfg,
					AfterConnect: que.PrepareStatements,
				})
				if err != nil {
					log.Fatal(err)
				}
				defer pgxpool.Close()

				db := database.GetDbConnection()
				defer db.Close()

				recorder := audit.NewRecorder(postgres.NewRepository(db),
					audit.NewEnqueuer(que.NewClient(pgxpool)))
				defer recorder.Close()

				fmt.Fprintf(app.Writer, "%s\n", "Starting dpc...")

				srv := &http.Server{
					Handler:      web.NewRouter(db, recorder),
					Addr:         fmt.Sprintf(":%d", utils.GetEnvInt("DPC_API_PORT", 3000)),
					ReadTimeout:  time.Duration(utils.GetEnvInt("API_READ_TIMEOUT", 10)) * time.Second,
					WriteTimeout: time.Duration(utils.GetEnvInt("API_WRITE_TIMEOUT", 20)) * time.Second,
					IdleTimeout:  time.Duration(utils.GetEnvInt("API_IDLE_TIMEOUT", 120)) * time.Second,
				}
				return srv.ListenAndServe()
			},
		},
		{
			Name:     "migrate",
			Category: "Database tools",
			Usage:    "Apply schema migrations",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:        "path",
					Usage:       "Path to the migrations directory",
					Value:       "db/migrations",
					Destination: &migrationPath,
				},
				cli.IntFlag{
					Name:        "steps",
					Usage:       "Number of migrations to apply (0 applies all pending)",
					Destination: &steps,
				},
			},
			Action: func(c *cli.Context) error {
				cfg, err := database.LoadConfig()
				if err != nil {
					return err
				}

				m, err := migrate.New("file://"+migrationPath, cfg.DatabaseURL)
				if err != nil {
					return err
				}
				defer func() {
					if srcErr, dbErr := m.Close(); srcErr != nil || dbErr != nil {
						log.Warnf("Failed to close migration handles: %v %v", srcErr, dbErr)
					}
				}()

				if steps == 0 {
					err = m.Up()
				} else {
					err = m.Steps(steps)
				}
				if err == migrate.ErrNoChange {
					fmt.Fprintf(app.Writer, "%s\n", "No pending migrations.")
					return nil
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(app.Writer, "%s\n", "Migrations applied.")
				return nil
			},
		},
	}
	return app
}
