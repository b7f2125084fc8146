package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/steveyegge/projctl/internal/ui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Browse the workspace in a full-screen board",
	Long: `Open a three-pane board of users, projects and tasks.

Press ':' to type a tracker command, enter to open a project or epic, g to
toggle grouping by status, s to save and q to quit. Press ? for all keys.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		sess, err := openSession(ctx, true)
		if err != nil {
			return err
		}
		defer closeSession(ctx, sess)

		return ui.Run(ctx, sess)
	},
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}
