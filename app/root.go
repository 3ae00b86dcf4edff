// Package app implements the main application commands.
package app

import (
	"github.com/spf13/cobra"

	"github.com/mompick/mompick-admin/internal/config"
	"github.com/mompick/mompick-admin/internal/logger"
)

var (
	configPath string // Path to the configuration file
	devMode    bool

	cfg config.Config

	rootCmd = &cobra.Command{
		Use:   "mompick-admin",
		Short: "MomPick Admin is the back office of the MomPick parenting app",
		Long: `MomPick Admin serves the moderation API and admin pages of the MomPick
parenting community, and delivers scheduled push notifications to its users.`,
		Args: cobra.OnlyValidArgs,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			var err error
			if cfg, err = config.ReadConfig(configPath); err != nil {
				return err
			}

			if devMode {
				cfg.DevMode = true
			}

			return logger.Init(cfg.Log)
		},
		SilenceUsage: true,
	}
)

func init() { //nolint: gochecknoinits
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "directory holding main.toml (default ./etc/)")
	rootCmd.PersistentFlags().BoolVar(&devMode, "dev", false, "Enable dev mode")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
