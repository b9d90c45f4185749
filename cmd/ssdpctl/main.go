// Ssdpctl announces and discovers services with SSDP.
//
// It sends NOTIFY and M-SEARCH messages on every local IPv4 interface,
// listens on the SSDP multicast group and shows what it receives, either as
// a stream of packets or in an interactive peer monitor.
//
// Usage:
//
//	ssdpctl [command] [flags]
//
// See 'ssdpctl --help' for available commands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/muurk/ssdp/internal/config"
	"github.com/muurk/ssdp/internal/logging"
	"github.com/muurk/ssdp/internal/version"
)

// Global flags and the state built from them before each command runs
var (
	configPath string
	logLevel   string
	logFormat  string
	portFlag   int

	cfg    *config.Config
	logger *zap.Logger
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "ssdpctl",
	Short: "SSDP announce and discovery tool",
	Long: `Announce services and discover peers with SSDP.

Messages are sent to 239.255.255.250 from every local IPv4 interface, one
socket per interface, and replies are read from a shared multicast socket.

Settings come from the config file (see 'ssdpctl config init'); flags
override it.`,
	Version:           version.Version,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	// Disable automatic completion command generation
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default $XDG_CONFIG_HOME/ssdp/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error (default from config or "+logging.LogLevelEnvVar+")")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "console", "Log format: console or callback")
	rootCmd.PersistentFlags().IntVar(&portFlag, "port", 0, "SSDP port (default from config, 1900)")

	rootCmd.AddCommand(versionCmd)
}

// setup loads the configuration and builds the logger
func setup(cmd *cobra.Command, args []string) error {
	path := configPath
	if path == "" {
		p, err := config.GetConfigPath()
		if err != nil {
			return err
		}
		path = p
		configPath = p
	}

	loaded, err := config.Load(path)
	if err != nil {
		return err
	}
	cfg = loaded

	if portFlag != 0 {
		if portFlag < 1 || portFlag > 65535 {
			return fmt.Errorf("--port must be between 1 and 65535, got %d", portFlag)
		}
		cfg.Port = portFlag
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}

	logger, err = newLogger(cfg.LogLevel, logFormat)
	return err
}

func newLogger(level, format string) (*zap.Logger, error) {
	switch format {
	case "console":
		return logging.New(level)
	case "callback":
		if level == "" {
			level = os.Getenv(logging.LogLevelEnvVar)
		}
		if level == "" {
			return zap.NewNop(), nil
		}
		return logging.NewSinkLogger(logging.WriterSink(os.Stderr), level), nil
	default:
		return nil, fmt.Errorf("unknown --log-format %q (expected console or callback)", format)
	}
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	// The version command needs no config file
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "ssdpctl %s\n", version.Full())
		fmt.Fprintf(cmd.OutOrStdout(), "built with %s\n", version.Platform())
	},
}
