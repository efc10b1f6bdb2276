package commands

import (
	"optchain-archive/internal/catalog"
	"optchain-archive/internal/components/chrono"

	"github.com/spf13/cobra"
)

var historyLimit *int

func init() {
	historyLimit = historyCmd.Flags().Int("limit", 20, "The number of snapshots to list, 0 lists all of them.")
	rootCmd.AddCommand(historyCmd)
}

var historyCmd = &cobra.Command{
	Use:   "history [--limit <n>]",
	Short: "Lists the archived snapshots, most recent first.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := cfg.Catalog.OpenDB()
		if err != nil {
			return err
		}
		defer db.Close()

		entries, err := catalog.New(db, chrono.NewStandardImpl(nil)).List(cmd.Context(), *historyLimit)
		if err != nil {
			return err
		}
		renderCatalog(cmd.OutOrStdout(), entries)
		return nil
	},
}
