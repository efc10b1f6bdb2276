package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(onceCmd)
}

var onceCmd = &cobra.Command{
	Use:   "once",
	Short: "Archives a single snapshot and exits.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		archiver, cleanup := newArchiver()
		defer cleanup()

		err := archiver.Open(cmd.Context())
		if err != nil {
			return fmt.Errorf("open session: %w", err)
		}
		path, err := archiver.Snapshot(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}
