package testutil

import (
	"flag"
	"os"
	"sync"

	log "github.com/sirupsen/logrus"
)

var (
	logFile   = ""
	logLevel  = "info"
	logStderr = false

	setupOnce sync.Once
)

func init() {
	flag.StringVar(&logFile, "log-file", logFile, "`file` to use for logging")
	flag.StringVar(&logLevel, "log-level", logLevel,
		"log level: trace, debug, info, warn, error, fatal, or panic")
	flag.BoolVar(&logStderr, "log-stderr", logStderr, "log to standard error")
}

// SetupLogger sends logging to file, unless -log-file or -log-stderr were given on the
// test command line; only the first call in a test binary has any effect.
func SetupLogger(file string) *log.Logger {
	setupOnce.Do(
		func() {
			if !logStderr {
				if logFile != "" {
					file = logFile
				}
				w, err := os.OpenFile(file, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0666)
				if err != nil {
					panic(err)
				}
				log.SetOutput(w)
			}

			ll, err := log.ParseLevel(logLevel)
			if err != nil {
				panic(err)
			}
			log.SetLevel(ll)
			log.WithFields(log.Fields{
				"pid":  os.Getpid(),
				"args": os.Args[1:],
			}).Info("tests starting")
		})
	return log.StandardLogger()
}
