package main

import (
	"log/slog"

	"github.com/phrazzld/genflow/internal/config"
	"github.com/phrazzld/genflow/internal/platform/logger"
	"github.com/spf13/cobra"
)

// cli carries the state shared by every command once the root command's
// pre-run hook has loaded it.
type cli struct {
	configPath string
	cfg        *config.Config
	logger     *slog.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	rootCmd := &cobra.Command{
		Use:           "genflowctl",
		Short:         "Operate a genflow deployment",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadFile(c.configPath)
			if err != nil {
				return err
			}
			log, err := logger.Setup(logger.LoggerConfig{
				Level:  cfg.Server.LogLevel,
				Output: cmd.ErrOrStderr(),
			})
			if err != nil {
				return err
			}
			c.cfg = cfg
			c.logger = log
			return nil
		},
	}
	rootCmd.PersistentFlags().StringVar(&c.configPath, "config", "",
		"config file (default ./config.yaml if present)")

	rootCmd.AddCommand(
		newTokenCmd(c),
		newMigrateCmd(c),
		newSnapshotCmd(c),
	)
	return rootCmd
}
