package commands

import (
	"optchain-archive/internal/snapshot"

	"github.com/spf13/cobra"
)

var showTickers *[]string

func init() {
	showTickers = showCmd.Flags().StringSlice("ticker", nil, "Only show these tickers.")
	rootCmd.AddCommand(showCmd)
}

var showCmd = &cobra.Command{
	Use:   "show <snapshot.json> [--ticker SPY,QQQ]",
	Short: "Renders a snapshot file as straddle tables.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := snapshot.Read(args[0])
		if err != nil {
			return err
		}
		renderSnapshot(cmd.OutOrStdout(), s, *showTickers)
		return nil
	},
}
