package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cloudbeacon/driftlog/internal/config"
	"github.com/cloudbeacon/driftlog/internal/logger"
)

var (
	cfgFile  string
	logLevel string
	noColor  bool

	cfg *config.Config
	log logger.Logger
)

// rootCmd is the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "driftlog",
	Short: "Multi-account AWS resource inventory with change attribution",
	Long: `driftlog assumes IAM roles across an account list, enumerates AWS
resources per account and region, and reconciles the snapshots into a
relational store. Every field-level change is recorded with the actor
that caused it, looked up from CloudTrail events.

  driftlog collect                  # full inventory run
  driftlog collect --services ec2   # one service only
  driftlog events --services ec2    # persist CloudTrail events only`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// Execute runs the CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.driftlog/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(newCollectCommand())
	rootCmd.AddCommand(newEventsCommand())
	rootCmd.AddCommand(newChangesCommand())
	rootCmd.AddCommand(newVersionCommand())
}

func initConfig() error {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	level := cfg.Logging.Level
	if logLevel != "" {
		level = logLevel
	}
	log = logger.New(level)

	return nil
}
