package commands

import (
	"os"

	"github.com/spf13/cobra"
)

var reportMonth *string

func init() {
	reportMonth = reportCmd.Flags().String("month", "", `Month label such as "Mar 2023" (default DASHBOARD_DEFAULT_MONTH).`)
	rootCmd.AddCommand(reportCmd)
}

var reportCmd = &cobra.Command{
	Use:   `report [--month "Mar 2023"]`,
	Short: "Prints one month of reviews with sentiment to the terminal.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger := setup()
		svc := newDashboardService(cfg, logger, nil)

		view, err := svc.Reviews(cmd.Context(), *reportMonth)
		if err != nil {
			return err
		}
		svc.Insights().Print(os.Stdout, view)
		return nil
	},
}
