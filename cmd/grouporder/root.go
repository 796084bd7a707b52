package main

import (
	"io"

	"grouporder/config"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// app carries what every subcommand needs once the root command has run.
type app struct {
	log      *logrus.Logger
	cfg      *config.Config
	logLevel string
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:          "grouporder",
		Short:        "Group ordering service",
		Long:         "Collect what everyone wants from one shop into a single shared order.",
		SilenceUsage: true,
	}
	root.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		return a.setup(cmd.ErrOrStderr())
	}
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "override LOG_LEVEL")

	root.AddCommand(
		newServeCmd(a),
		newMigrateCmd(a),
		newSeedCmd(a),
		newSummaryCmd(a),
		newExportCmd(a),
	)
	return root
}

func (a *app) setup(out io.Writer) error {
	a.log = setupLogger("info", out)
	if a.cfg == nil {
		cfg, err := config.LoadConfig(a.log)
		if err != nil {
			return err
		}
		a.cfg = cfg
	}

	level := a.cfg.LogLevel
	if a.logLevel != "" {
		level = a.logLevel
	}
	logLevel, err := logrus.ParseLevel(level)
	if err != nil {
		logLevel = logrus.InfoLevel
		a.log.Warnf("Invalid LOG_LEVEL '%s', using default: %s", level, logLevel.String())
	}
	a.log.SetLevel(logLevel)
	a.log.Debugf("Log level set to: %s", logLevel.String())
	return nil
}

func setupLogger(level string, out io.Writer) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(out)
	logger.SetFormatter(&logrus.JSONFormatter{})

	logLevel, err := logrus.ParseLevel(level)
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)
	return logger
}
