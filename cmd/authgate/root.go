package main

import (
	"fmt"

	"github.com/hustlehub/authgate/config"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "authgate",
	Short: "Authentication gateway for the marketplace API",
	Long: `authgate fronts a GoTrue-compatible identity provider. It exposes signup,
signin, signout, session and password reset endpoints, and protects routes
by the role stored in the profiles table.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.New(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		logger, err = initLogger(cfg.Observability.LogLevel, cfg.Observability.LogFormat)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		logger = logger.With(zap.String("environment", cfg.Environment))
		return nil
	},
	// serve is the default command
	RunE: func(cmd *cobra.Command, args []string) error {
		return serveCmd.RunE(cmd, args)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(dbCmd)
}
