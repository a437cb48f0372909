package main

import (
	"os"

	log "github.com/sirupsen/logrus"

	"github.com/dpcdirect/dpc-app/dpc/dpccli"
)

func main() {
	if err := dpccli.GetApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
