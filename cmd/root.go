// Package cmd provides the command-line interface for the spira tool.
package cmd

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/danielolaszy/spira/internal/logging"
)

// logFile is the open log file when file logging is enabled.
var logFile io.Closer

var rootCmd = &cobra.Command{
	Use:   "spira",
	Short: "Spira shows the requirements, tasks and incidents assigned to you",
	Long: `Spira is a CLI tool that lists the requirements, tasks and incidents
assigned to you in a SpiraTeam instance, shows the detail of any of them,
and opens them in your browser.

Configuration is read from environment variables (SPIRA_URL, SPIRA_USERNAME,
SPIRA_API_KEY, SPIRA_TOKEN, SPIRA_AUTH) or from ~/.spira.yaml.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, err := logLevel(cmd)
		if err != nil {
			return err
		}
		logging.SetupLogger(cmd.ErrOrStderr(), level)
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if logFile != nil {
			err := logFile.Close()
			logFile = nil
			return err
		}
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	// Add persistent flags that will be available to all commands
	rootCmd.PersistentFlags().String("config", "", "Config file (default is $HOME/.spira.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error (default from LOG_LEVEL)")
	rootCmd.PersistentFlags().StringP("output", "o", "text", "Output format: text, yaml, json")

	rootCmd.AddCommand(assignedCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(openCmd)
	rootCmd.AddCommand(browseCmd)
	rootCmd.AddCommand(pingCmd)
}

// logLevel resolves --log-level, falling back to LOG_LEVEL.
func logLevel(cmd *cobra.Command) (logging.LogLevel, error) {
	level, err := cmd.Flags().GetString("log-level")
	if err != nil {
		return "", err
	}
	if level == "" {
		return logging.LevelFromEnv(), nil
	}
	return logging.LogLevel(level), nil
}
