package main

import (
	"fmt"
	"os"

	"github.com/Hicham-Azeroual/chatApplication/internal/config"
	"github.com/Hicham-Azeroual/chatApplication/internal/database"
	"github.com/Hicham-Azeroual/chatApplication/internal/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the chat database schema",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := "info"
		if verbose {
			level = "debug"
		}
		return logger.Initialize(level, "")
	},
}

var upCmd = &cobra.Command{
	Use:   "up",
	Short: "Create or update every table and index",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := config.LoadDatabase()
		if err != nil {
			return err
		}

		logger.Log.Info("Connecting to database", zap.String("driver", db.Driver))
		if err := database.Initialize(database.Options{Driver: db.Driver, DSN: db.DSN(), Verbose: verbose}); err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer database.Close()

		if err := database.Migrate(); err != nil {
			return err
		}
		logger.Log.Info("All migrations completed", zap.Int("models", len(database.AllModels())))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log every SQL statement")
	rootCmd.AddCommand(upCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
