package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/hashicorp/hcl"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/leftmike/nquery/config"
	"github.com/leftmike/nquery/flags"
	"github.com/leftmike/nquery/symbols"
)

var (
	nqueryCmd = &cobra.Command{
		Use:               "nquery",
		Short:             "A SQL query engine",
		Long:              "NQuery binds and runs SQL queries over in-memory and bbolt tables.",
		PersistentPreRunE: nqueryPreRun,
		PersistentPostRun: nqueryPostRun,
		SilenceUsage:      true,
	}

	logFile   = "nquery.log"
	logLevel  = "info"
	logStderr = false
	logWriter io.WriteCloser

	configFile = "nquery.hcl"
	noConfig   = false

	dataFiles = []string{}
	flagArgs  = []string{}

	cfgVars   = map[string]*pflag.Flag{}
	cfg       = map[string]interface{}{}
	flgs      = flags.Default()
	usedFlags = map[string]struct{}{}
	loaded    *config.Loaded
)

func init() {
	log.SetFormatter(&log.TextFormatter{
		DisableLevelTruncation: true,
	})

	fs := nqueryCmd.PersistentFlags()

	fs.StringVar(&logFile, "log-file", logFile, "`file` to use for logging")
	cfgVars["log-file"] = fs.Lookup("log-file")

	fs.StringVar(&logLevel, "log-level", logLevel,
		"log level: trace, debug, info, warn, error, fatal, or panic")
	cfgVars["log-level"] = fs.Lookup("log-level")

	fs.BoolVarP(&logStderr, "log-stderr", "s", logStderr, "log to standard error")

	fs.StringVar(&configFile, "config-file", configFile, "`file` to load config from")
	fs.BoolVar(&noConfig, "no-config", noConfig, "don't load config file")

	fs.StringSliceVar(&dataFiles, "data", dataFiles,
		"catalog `file` (.hcl, .yaml, or .yml) to load; multiple allowed")
	cfgVars["data"] = fs.Lookup("data")

	fs.StringSliceVar(&flagArgs, "flag", flagArgs, "engine flag as `name=value`; multiple allowed")
}

func Execute() error {
	return nqueryCmd.Execute()
}

func nqueryPreRun(cmd *cobra.Command, args []string) error {
	cmd.Flags().Visit(
		func(flg *pflag.Flag) {
			usedFlags[flg.Name] = struct{}{}
		})

	if configFile != "" && !noConfig {
		err := loadConfig()
		if err != nil {
			return fmt.Errorf("nquery: %s", err)
		}
	}

	for _, fa := range flagArgs {
		err := setFlag(fa)
		if err != nil {
			return fmt.Errorf("nquery: %s", err)
		}
	}

	if !logStderr && logFile != "" {
		var err error
		logWriter, err = os.OpenFile(logFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0666)
		if err != nil {
			logWriter = nil
			return fmt.Errorf("nquery: %s", err)
		}
		log.SetOutput(logWriter)
	}

	ll, err := log.ParseLevel(logLevel)
	if err != nil {
		return fmt.Errorf("nquery: %s", err)
	}
	log.SetLevel(ll)

	log.WithField("pid", os.Getpid()).Info("nquery starting")

	loaded, err = config.LoadFiles(symbols.NewDataContext(), dataFiles...)
	if err != nil {
		return fmt.Errorf("nquery: %s", err)
	}
	return nil
}

func nqueryPostRun(cmd *cobra.Command, args []string) {
	if loaded != nil {
		err := loaded.Close()
		if err != nil {
			log.WithField("error", err.Error()).Error("close data")
		}
		loaded = nil
	}

	log.WithField("pid", os.Getpid()).Info("nquery done")

	if logWriter != nil {
		logWriter.Close()
		logWriter = nil
		log.SetOutput(os.Stderr)
	}
}

func dataContext() *symbols.DataContext {
	if loaded == nil {
		return symbols.NewDataContext()
	}
	return loaded.DataContext
}

func setFlag(fa string) error {
	nam, val, ok := strings.Cut(fa, "=")
	if !ok {
		return fmt.Errorf("flag: expected name=value; got %s", fa)
	}
	f, ok := flags.LookupFlag(strings.TrimSpace(nam))
	if !ok {
		return fmt.Errorf("flag: %s not found", nam)
	}
	b, err := strconv.ParseBool(strings.TrimSpace(val))
	if err != nil {
		return fmt.Errorf("flag: %s: %s", nam, err)
	}
	flgs[f] = b
	return nil
}

func loadConfig() error {
	b, err := os.ReadFile(configFile)
	if err != nil {
		if _, ok := usedFlags["config-file"]; !ok && errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}

	err = hcl.Decode(&cfg, string(b))
	if err != nil {
		return err
	}

	for name, val := range cfg {
		if flg, ok := cfgVars[name]; ok {
			if flg == nil {
				continue
			}
			if _, ok := usedFlags[flg.Name]; ok {
				continue
			}
			vals, ok := val.([]interface{})
			if !ok {
				vals = []interface{}{val}
			}
			for _, v := range vals {
				err := flg.Value.Set(fmt.Sprintf("%v", v))
				if err != nil {
					return fmt.Errorf("%s: %s", name, err)
				}
			}
		} else if f, ok := flags.LookupFlag(name); ok {
			b, ok := val.(bool)
			if !ok {
				return fmt.Errorf("%s: expected boolean value; got %v", name, val)
			}
			flgs[f] = b
		} else {
			return fmt.Errorf("%s is not a config variable", name)
		}
	}

	return nil
}
