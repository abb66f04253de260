package contract

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Logger traces requests and pagination. It stays at warn level unless --debug is set.
var Logger = newLogger()

func newLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetLevel(logrus.WarnLevel)
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return log
}

// ConfigureLogger sets the trace level from the validated config.
func ConfigureLogger(debug bool) {
	if debug {
		Logger.SetLevel(logrus.DebugLevel)
		return
	}
	Logger.SetLevel(logrus.WarnLevel)
}
