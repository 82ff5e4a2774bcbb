package main

import (
	"fmt"
	"os"

	"github.com/Hicham-Azeroual/chatApplication/internal/config"
	"github.com/Hicham-Azeroual/chatApplication/internal/database"
	"github.com/Hicham-Azeroual/chatApplication/internal/logger"
	"github.com/Hicham-Azeroual/chatApplication/internal/seed"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var opts = seed.DefaultOptions()

var rootCmd = &cobra.Command{
	Use:   "seed",
	Short: "Fill or clear a development database",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := logger.Initialize("info", ""); err != nil {
			return err
		}
		db, err := config.LoadDatabase()
		if err != nil {
			return err
		}
		if err := database.Initialize(database.Options{Driver: db.Driver, DSN: db.DSN()}); err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		return database.Migrate()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = database.Close()
	},
}

var devCmd = &cobra.Command{
	Use:   "dev",
	Short: "Seed users, groups, conversations and statuses",
	RunE: func(cmd *cobra.Command, args []string) error {
		if opts.Users < 2 {
			return fmt.Errorf("--users must be at least 2")
		}
		result, err := seed.NewSeeder(database.DB).SeedDev(opts)
		if err != nil {
			return err
		}
		fmt.Printf("Seeded %d users, %d groups, %d messages, %d reactions, %d statuses\n",
			result.Users, result.Groups, result.Messages, result.Reactions, result.Statuses)
		fmt.Printf("Every account uses the password %q\n", seed.DefaultPassword)
		return nil
	},
}

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove every seeded account and its data",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := seed.NewSeeder(database.DB).Clean(); err != nil {
			return err
		}
		logger.Log.Info("Seed data cleaned", zap.String("domain", seed.SeedEmailDomain))
		return nil
	},
}

func init() {
	devCmd.Flags().IntVar(&opts.Users, "users", opts.Users, "Number of accounts")
	devCmd.Flags().IntVar(&opts.Groups, "groups", opts.Groups, "Number of groups")
	devCmd.Flags().IntVar(&opts.MessagesPerPair, "messages", opts.MessagesPerPair, "Messages per conversation")
	devCmd.Flags().IntVar(&opts.StatusesPerUser, "statuses", opts.StatusesPerUser, "Statuses per account")

	rootCmd.AddCommand(devCmd, cleanCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
