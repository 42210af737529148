// Package rlog configures the interpreter's debug-trace logger.
//
// Grounded on golox's use of sirupsen/logrus with a
// t-tomalak/logrus-easy-formatter template: plain, single-line entries to
// stderr, enabled only by the CLI's --debug flag. This is strictly
// diagnostic — interpreted-program output (`print`) always goes straight
// to stdout and never through this logger.
package rlog

import (
	"os"

	"github.com/sirupsen/logrus"
	formatter "github.com/t-tomalak/logrus-easy-formatter"
)

var log = newLogger()

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetLevel(logrus.WarnLevel)
	l.SetFormatter(&formatter.Formatter{
		TimestampFormat: "15:04:05",
		LogFormat:       "[%lvl%] %time% %msg%\n",
	})
	return l
}

// SetDebug raises the logger to debug level when enabled is true, or back
// to warn level otherwise.
func SetDebug(enabled bool) {
	if enabled {
		log.SetLevel(logrus.DebugLevel)
		return
	}
	log.SetLevel(logrus.WarnLevel)
}

func Debugf(format string, args ...any) { log.Debugf(format, args...) }
func Warnf(format string, args ...any)  { log.Warnf(format, args...) }
