// Command keyreader reads terminal input and resolves it against key
// bindings the way an interactive shell does.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/danielrainer/fish-shell/internal/app"
	"github.com/danielrainer/fish-shell/internal/config"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
)

var (
	configPath string
	logLevel   string
	logFile    string

	cfg      *config.Config
	logger   *zap.Logger
	closeLog = func() {}
)

var rootCmd = &cobra.Command{
	Use:   "keyreader",
	Short: "Resolve terminal key input against shell key bindings",
	Long: `keyreader decodes raw terminal input into keys and resolves key sequences
against a mode-scoped binding table: the longest binding wins, and a
sequence that could still grow waits for more input.

Configuration is read from --config (TOML) and KEYREADER_* variables.`,
	Version:       version + " (" + commit + ")",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("log-level") {
			cfg.Logging.Level = logLevel
		}
		if cmd.Flags().Changed("log-file") {
			cfg.Logging.File = logFile
		}

		logger, closeLog, err = app.NewLogger(app.LoggerConfig{
			Level:  cfg.Logging.Level,
			File:   cfg.Logging.File,
			Output: os.Stderr,
		})
		if err != nil {
			return err
		}
		for _, name := range config.UnknownEnv(os.Environ()) {
			logger.Warn("ignoring unknown environment variable", zap.String("name", name))
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		closeLog()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Configuration file (TOML)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Write logs to this file instead of stderr")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(keysCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(listCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "keyreader:", err)
		os.Exit(1)
	}
}
