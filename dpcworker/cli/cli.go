package cli

import (
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli"

	"github.com/dpcdirect/dpc-app/dpc/database"
	"github.com/dpcdirect/dpc-app/dpc/health"
	"github.com/dpcdirect/dpc-app/dpc/utils"
	"github.com/dpcdirect/dpc-app/dpcworker/queueing/manager"
	"github.com/dpcdirect/dpc-app/log"
)

const Name = "dpcworker"
const Usage = "Direct Primary Care audit write worker CLI"

var (
	db *sql.DB
)

func GetApp() *cli.App {
	return setUpApp()
}

func setUpApp() *cli.App {
	app := cli.NewApp()
	app.Name = Name
	app.Usage = Usage
	app.Before = func(c *cli.Context) error {
		db = database.GetDbConnection()
		return nil
	}
	app.Commands = []cli.Command{
		{
			Name:  "start-worker",
			Usage: "Start the worker",
			Action: func(c *cli.Context) error {
				startWorker()
				return nil
			},
		},
		{
			Name:  "health",
			Usage: "Check the worker health",
			Action: func(c *cli.Context) error {
				healthChecker := health.NewHealthChecker(db)
				if _, ok := healthChecker.IsDatabaseOK(); !ok {
					return cli.NewExitError("Worker is unhealthy", 1)
				}
				return nil
			},
		},
	}
	return app
}

func startWorker() {
	fmt.Println("Starting dpcworker...")

	cfg, err := database.LoadConfig()
	if err != nil {
		log.Worker.Fatal(err)
	}

	queue := manager.StartQue(cfg.QueueDatabaseURL, utils.GetEnvInt("WORKER_POOL_SIZE", 4))
	defer queue.StopQue()
	waitForSig()
}

func waitForSig() {
	signalChan := make(chan os.Signal, 1)
	defer close(signalChan)

	signal.Notify(signalChan,
		syscall.SIGINT,
		syscall.SIGTERM,
		syscall.SIGQUIT)

	exitChan := make(chan int)
	defer close(exitChan)

	go func() {
		for {
			s := <-signalChan
			switch s {
			case syscall.SIGINT:
				fmt.Println("interrupt")
				exitChan <- 0
			case syscall.SIGTERM:
				fmt.Println("force stop")
				exitChan <- 0
			case syscall.SIGQUIT:
				fmt.Println("stop and core dump")
				exitChan <- 0
			}
		}
	}()

	code := <-exitChan
	os.Exit(code)
}
