package app

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/mompick/mompick-admin/internal/daemon"
)

func init() { //nolint: gochecknoinits
	startCmd.Flags().BoolVar(
		&browseStatic,
		"browse",
		false,
		"Enable static file browsing (for development purposes only)",
	)

	rootCmd.AddCommand(startCmd)
}

var (
	browseStatic bool

	startCmd = &cobra.Command{
		Use:   "start",
		Short: "Start the admin web service and the notification dispatcher",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if browseStatic {
				cfg.Webserver.BrowseStatic = true
			}

			d, err := daemon.New(contextOf(cmd), &cfg)
			if err != nil {
				return err
			}

			return d.Start()
		},
	}
)

func contextOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}

	return context.Background()
}
