package main

import (
	"fmt"

	"github.com/hustlehub/authgate/repositories/postgres"
	"github.com/spf13/cobra"
)

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Profile database commands",
}

var dbInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the profiles table and signup trigger",
	Long: `Creates the user_type enum, the profiles table and the trigger on auth.users
that inserts a profile for every new account. Safe to run more than once.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := postgres.NewDB(cfg.Database, logger)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer db.Close()

		if err := db.InitSchema(cmd.Context()); err != nil {
			return fmt.Errorf("failed to initialize schema: %w", err)
		}

		logger.Info("profile schema initialized")
		return nil
	},
}

var dbPingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Check that the profile database is reachable",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := postgres.NewDB(cfg.Database, logger)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer db.Close()

		if err := db.HealthCheck(cmd.Context()); err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), "database is reachable")
		return nil
	},
}

func init() {
	dbCmd.AddCommand(dbInitCmd)
	dbCmd.AddCommand(dbPingCmd)
}
