package log

import (
	"os"
	"path/filepath"

	"github.com/bcgov/regsearch-app/conf"
	"github.com/sirupsen/logrus"
)

var (
	Search  logrus.FieldLogger
	Request logrus.FieldLogger

	CLI logrus.FieldLogger
)

func init() {
	Search = Logger(logrus.New(), conf.GetEnv("REGSEARCH_ERROR_LOG"),
		"api", conf.GetEnv("ENVIRONMENT"))
	Request = Logger(logrus.New(), conf.GetEnv("REGSEARCH_REQUEST_LOG"),
		"api", conf.GetEnv("ENVIRONMENT"))

	CLI = Logger(logrus.New(), conf.GetEnv("REGSEARCH_CLI_LOG"),
		"cli", conf.GetEnv("ENVIRONMENT"))
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
