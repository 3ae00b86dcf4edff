package app

import (
	"encoding/json"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/mompick/mompick-admin/internal/daemon"
)

func init() { //nolint: gochecknoinits
	rootCmd.AddCommand(dispatchCmd)
}

var dispatchCmd = &cobra.Command{
	Use:   "dispatch",
	Short: "Deliver the due scheduled notifications once and exit",
	Long: `Runs a single dispatch cycle, for deployments that trigger delivery from
an external scheduler instead of the built-in one. The report is printed as JSON.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		svc, err := daemon.Open(contextOf(cmd), &cfg)
		if err != nil {
			return err
		}

		report, err := svc.Dispatcher.Run(contextOf(cmd))
		if err != nil {
			return err
		}

		log.Info().Int("total", report.Total).Int("processed", report.Processed).
			Int("failed", report.Failed).Msg("dispatch cycle finished")

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")

		return enc.Encode(report)
	},
}
