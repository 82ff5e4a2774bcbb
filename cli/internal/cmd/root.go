package cmd

import (
	"fmt"
	"os"

	"github.com/Hicham-Azeroual/chatApplication/cli/pkg/client"
	"github.com/Hicham-Azeroual/chatApplication/cli/pkg/config"
	clierrors "github.com/Hicham-Azeroual/chatApplication/cli/pkg/errors"
	"github.com/Hicham-Azeroual/chatApplication/cli/pkg/logger"
	"github.com/Hicham-Azeroual/chatApplication/cli/pkg/output"
	"github.com/spf13/cobra"
)

var (
	verbose    bool
	configPath string
	outputFmt  string
	apiURL     string
)

var rootCmd = &cobra.Command{
	Use:   "chatctl",
	Short: "chatctl - terminal client for the chat server",
	Long: `chatctl talks to the chat server from the terminal. Sign in, send
direct and group messages, post statuses, manage notifications and watch
realtime events as they arrive.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Init(configPath); err != nil {
			return fmt.Errorf("initializing config: %w", err)
		}
		logger.Init(verbose)

		if cmd.Flags().Changed("output") {
			if !output.ValidateOutputFormat(outputFmt) {
				return clierrors.ValidationError("output", "must be one of text, json, table")
			}
			config.Override("output.format", outputFmt)
		}
		if apiURL != "" {
			config.Override("api.base_url", apiURL)
		}
		client.Init()
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Close()
	},
}

// Execute runs the root command and exits non-zero on failure
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprint(os.Stderr, clierrors.FormatError(err))
		logger.Close()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default: ~/.config/chatapp/cli/config.toml)")
	rootCmd.PersistentFlags().StringVarP(&outputFmt, "output", "o", "text", "Output format: text, json, table")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api", "", "Server base URL, overriding api.base_url")

	rootCmd.AddCommand(authCmd)
	rootCmd.AddCommand(usersCmd)
	rootCmd.AddCommand(messageCmd)
	rootCmd.AddCommand(groupCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(notificationsCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(completionCmd)
}
