package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/steveyegge/projctl/internal/repl"
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Start the interactive console",
	Long: `Start an interactive console over the workspace.

The console accepts every tracker command (createuser, createproject,
addtasktoproject, changetaskstatus, ...) plus the built-ins help, status,
save and safexit. Tab
completes command names, keywords and known user and project names.

Changes are saved when the console exits, or after every command when
autosave is enabled.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		sess, err := openSession(ctx, true)
		if err != nil {
			return err
		}
		defer closeSession(ctx, sess)

		r, err := repl.New(&repl.Config{
			Session:     sess,
			HistoryFile: cfg.REPL.HistoryPath(workspaceDir),
		})
		if err != nil {
			return fmt.Errorf("failed to create console: %w", err)
		}
		return r.Run(ctx)
	},
}

func init() {
	rootCmd.AddCommand(replCmd)
}
