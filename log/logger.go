package log

import (
	"os"
	"path/filepath"

	"github.com/dpcdirect/dpc-app/conf"
	"github.com/sirupsen/logrus"
)

var (
	API     logrus.FieldLogger
	Audit   logrus.FieldLogger
	Request logrus.FieldLogger

	Worker logrus.FieldLogger
)

func init() {
	API = Logger(logrus.New(), conf.GetEnv("DPC_ERROR_LOG"),
		"api", conf.GetEnv("ENVIRONMENT"))
	Audit = Logger(logrus.New(), conf.GetEnv("DPC_AUDIT_LOG"),
		"api", conf.GetEnv("ENVIRONMENT"))
	Request = Logger(logrus.New(), conf.GetEnv("DPC_REQUEST_LOG"),
		"api", conf.GetEnv("ENVIRONMENT"))

	Worker = Logger(logrus.New(), conf.GetEnv("DPC_WORKER_ERROR_LOG"),
		"worker", conf.GetEnv("ENVIRONMENT"))
}

func Logger(logger *logrus.Logger, outputFile string,
	application, environment string) logrus.FieldLogger {

	if outputFile != "" {
		if file, err := os.OpenFile(filepath.Clean(outputFile), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0640); err == nil {
			logger.SetOutput(file)
		} else {
			logger.Infof("Failed to open output file %s. Will use stderr. %s",
				outputFile, err.Error())
		}
	}

	return logger.WithFields(logrus.Fields{
		"application": application,
		"environment": environment})
}
