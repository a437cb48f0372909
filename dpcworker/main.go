package main

import (
	"os"

	log "github.com/sirupsen/logrus"

	"github.com/dpcdirect/dpc-app/dpcworker/cli"
)

func main() {
	if err := cli.GetApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
