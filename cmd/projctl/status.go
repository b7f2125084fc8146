package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/steveyegge/projctl/internal/session"
	"github.com/steveyegge/projctl/internal/storage"
	"github.com/steveyegge/projctl/internal/tracker"
	"github.com/steveyegge/projctl/internal/types"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show workspace, store and tracker summary",
	Long:  `Display the store location, saved snapshots, the workspace lock and tracker counts.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		// Read-only: do not take the lock, so status works next to a running console
		sess, err := openSession(ctx, false)
		if err != nil {
			return err
		}
		defer closeSession(ctx, sess)

		return writeStatus(ctx, os.Stdout, sess, workspaceDir)
	},
}

func writeStatus(ctx context.Context, out io.Writer, sess *session.Session, workspace string) error {
	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	green := color.New(color.FgGreen).SprintFunc()
	gray := color.New(color.FgHiBlack).SprintFunc()

	fmt.Fprintf(out, "\n%s\n\n", cyan("=== projctl Status ==="))
	fmt.Fprintf(out, "  Workspace: %s\n", workspace)
	fmt.Fprintf(out, "  Store:     %s\n", sess.Describe())
	if id := sess.LastSnapshotID(); id != "" {
		fmt.Fprintf(out, "  Snapshot:  %s\n", id)
	} else {
		fmt.Fprintf(out, "  Snapshot:  %s\n", gray("none saved"))
	}
	fmt.Fprintln(out)

	fmt.Fprintf(out, "%s\n", yellow("Lock:"))
	lock, err := storage.ReadExclusiveLock(workspace)
	switch {
	case err != nil:
		fmt.Fprintf(out, "  %s\n", gray(err.Error()))
	case lock == nil:
		fmt.Fprintf(out, "  %s\n", gray("not held"))
	default:
		fmt.Fprintf(out, "  %s %s (PID %d on %s)\n", green("●"), lock.Holder, lock.PID, lock.Hostname)
		fmt.Fprintf(out, "    Since:   %s\n", lock.StartedAt.Format("2006-01-02 15:04:05"))
		fmt.Fprintf(out, "    Version: %s\n", lock.Version)
	}
	fmt.Fprintln(out)

	if hs, ok := sess.Store().(storage.HistoryStore); ok {
		entries, err := hs.History(ctx)
		if err != nil {
			return fmt.Errorf("failed to read snapshot history: %w", err)
		}
		fmt.Fprintf(out, "%s\n", yellow("Saved snapshots:"))
		if len(entries) == 0 {
			fmt.Fprintf(out, "  %s\n", gray("none"))
		}
		for _, e := range entries {
			fmt.Fprintf(out, "  %s  %s  v%d\n", e.SavedAt.Local().Format("2006-01-02 15:04:05"), e.ID, e.Version)
		}
		fmt.Fprintln(out)
	}

	var stats tracker.Stats
	_ = sess.View(func(m *tracker.Manager) error {
		stats = m.Stats()
		return nil
	})
	fmt.Fprintf(out, "%s\n", yellow("Tracker:"))
	fmt.Fprintf(out, "  Users:     %d\n", stats.Users)
	fmt.Fprintf(out, "  Projects:  %d\n", stats.Projects)
	fmt.Fprintf(out, "  Tasks:     %d (+%d subtasks)\n", stats.Tasks, stats.Subtasks)
	for _, s := range types.Statuses {
		fmt.Fprintf(out, "    %-18s %d\n", s.Label()+":", stats.ByStatus[s])
	}
	fmt.Fprintln(out)
	return nil
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
