package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mompick/mompick-admin/internal/config"
)

func init() { //nolint: gochecknoinits
	configCmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of TOML")

	rootCmd.AddCommand(configCmd)
}

var (
	asJSON bool

	configCmd = &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration with secrets masked",
		RunE: func(_ *cobra.Command, _ []string) error {
			masked := config.Masked(cfg)

			dump := config.DumpConfig
			if asJSON {
				dump = config.DumpConfigJSON
			}

			out, err := dump(&masked)
			if err != nil {
				return err
			}

			fmt.Print(out)

			return nil
		},
	}
)
