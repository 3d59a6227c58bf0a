// Package commands provides the CLI commands for runhost.
package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/opencode-ai/runhost/internal/builtin"
	"github.com/opencode-ai/runhost/internal/command"
	"github.com/opencode-ai/runhost/internal/config"
	"github.com/opencode-ai/runhost/internal/logging"
)

var (
	// Version information set at build time
	Version   = "0.1.0"
	BuildTime = "dev"
)

// Global flags
var (
	printLogs bool
	logLevel  string
	logFile   string
	configDir string
)

var rootCmd = &cobra.Command{
	Use:   "runhost",
	Short: "runhost - run commands with graceful cancellation",
	Long: `runhost runs a registered command in the foreground, binding
-Name=Value arguments onto the command's configuration, and stops it
gracefully on CTRL+C.

Run 'runhost commands' to list the available commands and
'runhost usage <command>' to see the arguments a command accepts.`,
	Version:          Version,
	SilenceUsage:     true,
	SilenceErrors:    true,
	TraverseChildren: true,
	Run: func(cmd *cobra.Command, args []string) {
		// If no subcommand, show help
		cmd.Help()
	},
}

func init() {
	// Global flags available to all commands
	rootCmd.PersistentFlags().BoolVar(&printLogs, "print-logs", false, "Print logs to stderr")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (DEBUG|INFO|WARN|ERROR)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Also write JSON logs to this rotating file")
	rootCmd.PersistentFlags().StringVar(&configDir, "config", "", "Directory holding runhost.json/.yaml and .env (default: working directory)")

	// Version template
	rootCmd.SetVersionTemplate(fmt.Sprintf("runhost %s (%s)\n", Version, BuildTime))

	// Add subcommands
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(usageCmd)
	rootCmd.AddCommand(debugCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// GetWorkDir returns the directory from flag or the current directory.
func GetWorkDir(dir string) (string, error) {
	if dir != "" {
		return dir, nil
	}
	return os.Getwd()
}

// app is the state shared by the subcommands.
type app struct {
	config   *config.Config
	logger   zerolog.Logger
	registry *command.Registry
	closer   io.Closer
}

func (a *app) Close() error {
	return a.closer.Close()
}

// setup loads configuration, applies flag overrides and builds the logger
// and the command registry.
func setup(cmd *cobra.Command) (*app, error) {
	workDir, err := GetWorkDir(configDir)
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(workDir)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if logFile != "" {
		cfg.LogFile = logFile
	}

	logCfg := logging.DefaultConfig()
	logCfg.Level = logging.ParseLevel(cfg.LogLevel)
	logCfg.Pretty = cfg.LogPretty
	logCfg.LogFile = cfg.LogFile
	logCfg.Output = io.Discard
	if printLogs {
		logCfg.Output = cmd.ErrOrStderr()
	}
	logger, closer := logging.Open(logCfg)

	registry := command.NewRegistry()
	if err := registry.Register(builtin.Registrations(cmd.OutOrStdout(), logger)...); err != nil {
		closer.Close()
		return nil, err
	}

	return &app{
		config:   cfg,
		logger:   logger,
		registry: registry,
		closer:   closer,
	}, nil
}
